package commands

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// CloseAccountHandler loads the account, closes it, persists the change
// and publishes the resulting events.
type CloseAccountHandler struct {
	repo domain.AccountRepository
	bus  cqrs.EventBus
}

func NewCloseAccountHandler(repo domain.AccountRepository, bus cqrs.EventBus) *CloseAccountHandler {
	return &CloseAccountHandler{repo: repo, bus: bus}
}

func (h *CloseAccountHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	var p domain.CloseAccountPayload
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
	events, err := account.CloseAccount()
	if err != nil {
		return err
	}
	if err := h.repo.Update(ctx, account); err != nil {
		return err
	}
	return publishAll(ctx, h.bus, events)
}
