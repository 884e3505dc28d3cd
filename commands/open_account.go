package commands

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// OpenAccountHandler creates a new account aggregate, persists it and
// publishes the resulting events.
type OpenAccountHandler struct {
	repo domain.AccountRepository
	bus  cqrs.EventBus
}

func NewOpenAccountHandler(repo domain.AccountRepository, bus cqrs.EventBus) *OpenAccountHandler {
	return &OpenAccountHandler{repo: repo, bus: bus}
}

func (h *OpenAccountHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	var p domain.OpenAccountPayload
	if err := sonic.Unmarshal(cmd.Payload, &p); err != nil {
		return err
	}
	existing, err := h.repo.FindByID(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyExists
	}
	account := domain.NewBankAccount(p.AccountID)
	events, err := account.OpenAccount(p.InitialDeposit)
	if err != nil {
		return err
	}
	if err := h.repo.Create(ctx, account); err != nil {
		return err
	}
	return publishAll(ctx, h.bus, events)
}
