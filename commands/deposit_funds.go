package commands

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// DepositFundsHandler loads the account, processes the deposit, persists
// the change and publishes the resulting events.
type DepositFundsHandler struct {
	repo domain.AccountRepository
	bus  cqrs.EventBus
}

func NewDepositFundsHandler(repo domain.AccountRepository, bus cqrs.EventBus) *DepositFundsHandler {
	return &DepositFundsHandler{repo: repo, bus: bus}
}

func (h *DepositFundsHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	var p domain.DepositFundsPayload
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
	events, err := account.DepositFunds(p.Amount)
	if err != nil {
		return err
	}
	if err := h.repo.Update(ctx, account); err != nil {
		return err
	}
	return publishAll(ctx, h.bus, events)
}
