package domain

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
)

func TestOpenAccountSetsBalance(t *testing.T) {
	acc := NewBankAccount("A")
	events, err := acc.OpenAccount(1000)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if acc.Balance != 1000 {
		t.Fatalf("expected balance 1000, got %v", acc.Balance)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != EventAccountOpened {
		t.Fatalf("unexpected event type %s", ev.Type)
	}
	if ev.AggregateID != "A" || ev.AggregateName != "BankAccount" || ev.AggregateVersion != 1 {
		t.Fatalf("unexpected aggregate coordinates: %+v", ev)
	}
	var p AccountOpenedPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.InitialDeposit != 1000 {
		t.Fatalf("expected initialDeposit 1000, got %v", p.InitialDeposit)
	}
	if len(acc.Transactions) != 1 || acc.Transactions[0].Type != TxAccountOpened {
		t.Fatalf("unexpected transactions %+v", acc.Transactions)
	}
}

func TestOpenAccountTwiceFails(t *testing.T) {
	acc := NewBankAccount("A")
	if _, err := acc.OpenAccount(1000); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := acc.OpenAccount(500); !errors.Is(err, ErrAlreadyOpened) {
		t.Fatalf("expected ErrAlreadyOpened, got %v", err)
	}
	if acc.Balance != 1000 {
		t.Fatalf("balance changed to %v", acc.Balance)
	}
}

func TestWithdrawInsufficientFundsLeavesBalance(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(1000)
	if _, err := acc.WithdrawFunds(1001); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if acc.Balance != 1000 {
		t.Fatalf("expected balance 1000, got %v", acc.Balance)
	}
	if len(acc.Transactions) != 1 {
		t.Fatalf("transaction appended on failed withdrawal: %+v", acc.Transactions)
	}
}

func TestWithdrawAfterCloseFails(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(1000)
	if _, err := acc.CloseAccount(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := acc.WithdrawFunds(10); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed, got %v", err)
	}
}

func TestCloseTwiceFails(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(1000)
	acc.CloseAccount()
	if _, err := acc.CloseAccount(); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if !acc.IsClosed {
		t.Fatal("closed flag reverted")
	}
}

func TestDepositIncrementsBalance(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(100)
	events, err := acc.DepositFunds(50)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if acc.Balance != 150 {
		t.Fatalf("expected balance 150, got %v", acc.Balance)
	}
	if len(events) != 1 || events[0].Type != EventFundsDeposited {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestDepositAfterCloseFails(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(100)
	acc.CloseAccount()
	if _, err := acc.DepositFunds(50); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed, got %v", err)
	}
}

func TestTransferFundsMovesBalanceAndEmitsOneEvent(t *testing.T) {
	from := NewBankAccount("A")
	from.OpenAccount(1000)
	to := NewBankAccount("B")
	to.OpenAccount(500)

	events, err := from.TransferFunds(to, 200)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if from.Balance != 800 {
		t.Fatalf("expected source balance 800, got %v", from.Balance)
	}
	if to.Balance != 700 {
		t.Fatalf("expected target balance 700, got %v", to.Balance)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != EventFundsTransferred || ev.AggregateID != "A" {
		t.Fatalf("unexpected event %+v", ev)
	}
	var p FundsTransferredPayload
	if err := sonic.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.ToAccountID != "B" || p.Amount != 200 {
		t.Fatalf("unexpected payload %+v", p)
	}
	if from.Transactions[len(from.Transactions)-1].Type != TxTransferOut {
		t.Fatalf("missing TransferOut on source: %+v", from.Transactions)
	}
	if to.Transactions[len(to.Transactions)-1].Type != TxTransferIn {
		t.Fatalf("missing TransferIn on target: %+v", to.Transactions)
	}
}

func TestTransferFromClosedAccountFails(t *testing.T) {
	from := NewBankAccount("A")
	from.OpenAccount(1000)
	to := NewBankAccount("B")
	to.OpenAccount(500)
	to.CloseAccount()
	if _, err := from.TransferFunds(to, 100); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed, got %v", err)
	}
	if from.Balance != 1000 || to.Balance != 500 {
		t.Fatalf("balances changed: %v %v", from.Balance, to.Balance)
	}
}

func TestTransferInsufficientFundsFails(t *testing.T) {
	from := NewBankAccount("A")
	from.OpenAccount(100)
	to := NewBankAccount("B")
	to.OpenAccount(500)
	if _, err := from.TransferFunds(to, 200); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransactionsAppendInOrder(t *testing.T) {
	acc := NewBankAccount("A")
	acc.OpenAccount(1000)
	acc.WithdrawFunds(100)
	acc.DepositFunds(25)
	acc.CloseAccount()

	want := []string{TxAccountOpened, TxFundsWithdrawn, TxFundsDeposited, TxAccountClosed}
	if len(acc.Transactions) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(acc.Transactions))
	}
	for i, tx := range acc.Transactions {
		if tx.Type != want[i] {
			t.Fatalf("transaction %d: expected %s, got %s", i, want[i], tx.Type)
		}
	}
}
