package projection

import (
	"time"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// Per-event-type mutations. Events that reference an account the
// projection has not seen are dropped, not buffered; only AccountOpened
// creates an entry.

func applyAccountOpened(ev cqrs.Event, accounts map[string]*AccountTransactions) error {
	var p domain.AccountOpenedPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		return err
	}
	accounts[ev.AggregateID] = &AccountTransactions{
		AccountID: ev.AggregateID,
		Transactions: []domain.Transaction{{
			Type:   domain.TxAccountOpened,
			Amount: p.InitialDeposit,
			Date:   time.UnixMilli(ev.Timestamp),
		}},
	}
	return nil
}

func applyAccountClosed(ev cqrs.Event, accounts map[string]*AccountTransactions) error {
	appendTransaction(accounts, ev.AggregateID, domain.TxAccountClosed, 0, ev.Timestamp)
	return nil
}

func applyFundsWithdrawn(ev cqrs.Event, accounts map[string]*AccountTransactions) error {
	var p domain.FundsWithdrawnPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		return err
	}
	appendTransaction(accounts, ev.AggregateID, domain.TxFundsWithdrawn, p.Amount, ev.Timestamp)
	return nil
}

func applyFundsDeposited(ev cqrs.Event, accounts map[string]*AccountTransactions) error {
	var p domain.FundsDepositedPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		return err
	}
	appendTransaction(accounts, ev.AggregateID, domain.TxFundsDeposited, p.Amount, ev.Timestamp)
	return nil
}

// applyFundsTransferred touches the source and target entries
// independently; either append is skipped when the entry does not exist.
func applyFundsTransferred(ev cqrs.Event, accounts map[string]*AccountTransactions) error {
	var p domain.FundsTransferredPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		return err
	}
	appendTransaction(accounts, ev.AggregateID, domain.TxTransferOut, p.Amount, ev.Timestamp)
	appendTransaction(accounts, p.ToAccountID, domain.TxTransferIn, p.Amount, ev.Timestamp)
	return nil
}

func appendTransaction(accounts map[string]*AccountTransactions, accountID, txType string, amount float64, timestamp int64) {
	entry, ok := accounts[accountID]
	if !ok {
		return
	}
	entry.Transactions = append(entry.Transactions, domain.Transaction{
		Type:   txType,
		Amount: amount,
		Date:   time.UnixMilli(timestamp),
	})
}
