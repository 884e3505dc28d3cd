package domain

import (
	"github.com/bytedance/sonic"

	"banking-service/cqrs"
)

// Command type names.
const (
	CmdOpenAccount   = "OpenAccountCommand"
	CmdCloseAccount  = "CloseAccountCommand"
	CmdWithdrawFunds = "WithdrawFundsCommand"
	CmdDepositFunds  = "DepositFundsCommand"
	CmdTransferFunds = "TransferFundsCommand"
)

type OpenAccountPayload struct {
	AccountID      string  `json:"accountId"`
	InitialDeposit float64 `json:"initialDeposit"`
}

type CloseAccountPayload struct {
	AccountID string `json:"accountId"`
}

type WithdrawFundsPayload struct {
	AccountID string  `json:"accountId"`
	Amount    float64 `json:"amount"`
}

type DepositFundsPayload struct {
	AccountID string  `json:"accountId"`
	Amount    float64 `json:"amount"`
}

type TransferFundsPayload struct {
	FromAccountID string  `json:"fromAccountId"`
	ToAccountID   string  `json:"toAccountId"`
	Amount        float64 `json:"amount"`
}

func NewOpenAccountCommand(accountID string, initialDeposit float64) cqrs.Command {
	payload, _ := sonic.Marshal(OpenAccountPayload{AccountID: accountID, InitialDeposit: initialDeposit})
	return cqrs.NewCommand(CmdOpenAccount, source, payload)
}

func NewCloseAccountCommand(accountID string) cqrs.Command {
	payload, _ := sonic.Marshal(CloseAccountPayload{AccountID: accountID})
	return cqrs.NewCommand(CmdCloseAccount, source, payload)
}

func NewWithdrawFundsCommand(accountID string, amount float64) cqrs.Command {
	payload, _ := sonic.Marshal(WithdrawFundsPayload{AccountID: accountID, Amount: amount})
	return cqrs.NewCommand(CmdWithdrawFunds, source, payload)
}

func NewDepositFundsCommand(accountID string, amount float64) cqrs.Command {
	payload, _ := sonic.Marshal(DepositFundsPayload{AccountID: accountID, Amount: amount})
	return cqrs.NewCommand(CmdDepositFunds, source, payload)
}

func NewTransferFundsCommand(fromAccountID, toAccountID string, amount float64) cqrs.Command {
	payload, _ := sonic.Marshal(TransferFundsPayload{FromAccountID: fromAccountID, ToAccountID: toAccountID, Amount: amount})
	return cqrs.NewCommand(CmdTransferFunds, source, payload)
}
