package domain

import (
	"time"

	"banking-service/cqrs"
)

// Transaction types recorded in account histories.
const (
	TxAccountOpened  = "AccountOpened"
	TxAccountClosed  = "AccountClosed"
	TxFundsWithdrawn = "FundsWithdrawn"
	TxFundsDeposited = "FundsDeposited"
	TxTransferOut    = "TransferOut"
	TxTransferIn     = "TransferIn"
)

// Transaction is one audit record in an account's history. Histories are
// append-only.
type Transaction struct {
	Type   string    `json:"type"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// AccountRepository is the persistence contract for bank accounts.
type AccountRepository = cqrs.Repository[*BankAccount]

// BankAccount is the write-side aggregate. State changes only through its
// methods; every balance-changing call appends exactly one transaction and
// returns the events recording the change. An unopened account is modeled
// as a zero balance, so the aggregate performs no sign check on the
// initial deposit itself.
type BankAccount struct {
	AccountID    string        `json:"accountId"`
	Balance      float64       `json:"balance"`
	IsClosed     bool          `json:"isClosed"`
	Transactions []Transaction `json:"transactions"`
}

func NewBankAccount(accountID string) *BankAccount {
	return &BankAccount{AccountID: accountID}
}

func (a *BankAccount) EntityID() string { return a.AccountID }

// OpenAccount sets the opening balance and records the opening.
func (a *BankAccount) OpenAccount(initialDeposit float64) ([]cqrs.Event, error) {
	if a.Balance != 0 {
		return nil, ErrAlreadyOpened
	}
	a.Balance = initialDeposit
	a.append(TxAccountOpened, initialDeposit)
	return []cqrs.Event{NewAccountOpenedEvent(a.AccountID, initialDeposit, 1)}, nil
}

// CloseAccount flips the closed flag; account data persists and the flag
// never reverts.
func (a *BankAccount) CloseAccount() ([]cqrs.Event, error) {
	if a.IsClosed {
		return nil, ErrAlreadyClosed
	}
	a.IsClosed = true
	a.append(TxAccountClosed, 0)
	return []cqrs.Event{NewAccountClosedEvent(a.AccountID, 1)}, nil
}

// WithdrawFunds decrements the balance. The balance never goes negative.
func (a *BankAccount) WithdrawFunds(amount float64) ([]cqrs.Event, error) {
	if a.IsClosed {
		return nil, ErrAccountClosed
	}
	if a.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	a.Balance -= amount
	a.append(TxFundsWithdrawn, amount)
	return []cqrs.Event{NewFundsWithdrawnEvent(a.AccountID, amount, 1)}, nil
}

// DepositFunds increments the balance.
func (a *BankAccount) DepositFunds(amount float64) ([]cqrs.Event, error) {
	if a.IsClosed {
		return nil, ErrAccountClosed
	}
	a.Balance += amount
	a.append(TxFundsDeposited, amount)
	return []cqrs.Event{NewFundsDepositedEvent(a.AccountID, amount, 1)}, nil
}

// TransferFunds debits the receiver and credits the target in the same
// in-process call, emitting a single event carrying both account ids. The
// two aggregates are persisted separately by the caller; the move is not
// atomic across them.
func (a *BankAccount) TransferFunds(target *BankAccount, amount float64) ([]cqrs.Event, error) {
	if a.IsClosed || target.IsClosed {
		return nil, ErrAccountClosed
	}
	if a.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	a.Balance -= amount
	a.append(TxTransferOut, amount)
	target.Balance += amount
	target.append(TxTransferIn, amount)
	return []cqrs.Event{NewFundsTransferredEvent(a.AccountID, target.AccountID, amount, 1)}, nil
}

func (a *BankAccount) append(txType string, amount float64) {
	a.Transactions = append(a.Transactions, Transaction{
		Type:   txType,
		Amount: amount,
		Date:   time.Now(),
	})
}
