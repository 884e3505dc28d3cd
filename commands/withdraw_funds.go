package commands

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// WithdrawFundsHandler loads the account, processes the withdrawal,
// persists the change and publishes the resulting events.
type WithdrawFundsHandler struct {
	repo domain.AccountRepository
	bus  cqrs.EventBus
}

func NewWithdrawFundsHandler(repo domain.AccountRepository, bus cqrs.EventBus) *WithdrawFundsHandler {
	return &WithdrawFundsHandler{repo: repo, bus: bus}
}

func (h *WithdrawFundsHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	var p domain.WithdrawFundsPayload
	if err := sonic.Unmarshal(cmd.Payload, &p); err != nil {
		return err
	}
	account, err := h.repo.FindByID(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrNotFound
	}
	events, err := account.WithdrawFunds(p.Amount)
	if err != nil {
		return err
	}
	if err := h.repo.Update(ctx, account); err != nil {
		return err
	}
	return publishAll(ctx, h.bus, events)
}
