package domain

import (
	"github.com/bytedance/sonic"

	"banking-service/cqrs"
)

// Event type names. They double as routing keys on the durable bus.
const (
	EventAccountOpened    = "AccountOpened"
	EventAccountClosed    = "AccountClosed"
	EventFundsWithdrawn   = "FundsWithdrawn"
	EventFundsDeposited   = "FundsDeposited"
	EventFundsTransferred = "FundsTransferred"
)

const (
	source        = "bank-account-service"
	aggregateName = "BankAccount"
)

type AccountOpenedPayload struct {
	InitialDeposit float64 `json:"initialDeposit"`
}

type FundsWithdrawnPayload struct {
	Amount float64 `json:"amount"`
}

type FundsDepositedPayload struct {
	Amount float64 `json:"amount"`
}

type FundsTransferredPayload struct {
	ToAccountID string  `json:"toAccountId"`
	Amount      float64 `json:"amount"`
}

func NewAccountOpenedEvent(accountID string, initialDeposit float64, aggregateVersion int) cqrs.Event {
	payload, _ := sonic.Marshal(AccountOpenedPayload{InitialDeposit: initialDeposit})
	return cqrs.NewEvent(EventAccountOpened, source, accountID, aggregateName, aggregateVersion, payload)
}

func NewAccountClosedEvent(accountID string, aggregateVersion int) cqrs.Event {
	payload, _ := sonic.Marshal(struct{}{})
	return cqrs.NewEvent(EventAccountClosed, source, accountID, aggregateName, aggregateVersion, payload)
}

func NewFundsWithdrawnEvent(accountID string, amount float64, aggregateVersion int) cqrs.Event {
	payload, _ := sonic.Marshal(FundsWithdrawnPayload{Amount: amount})
	return cqrs.NewEvent(EventFundsWithdrawn, source, accountID, aggregateName, aggregateVersion, payload)
}

func NewFundsDepositedEvent(accountID string, amount float64, aggregateVersion int) cqrs.Event {
	payload, _ := sonic.Marshal(FundsDepositedPayload{Amount: amount})
	return cqrs.NewEvent(EventFundsDeposited, source, accountID, aggregateName, aggregateVersion, payload)
}

func NewFundsTransferredEvent(fromAccountID, toAccountID string, amount float64, aggregateVersion int) cqrs.Event {
	payload, _ := sonic.Marshal(FundsTransferredPayload{ToAccountID: toAccountID, Amount: amount})
	return cqrs.NewEvent(EventFundsTransferred, source, fromAccountID, aggregateName, aggregateVersion, payload)
}
