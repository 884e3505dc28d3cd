package commands

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// TransferFundsHandler loads both accounts, processes the transfer,
// persists both aggregates and publishes the resulting events. The two
// updates are separate writes; a crash between them leaves the debit
// durable without the credit.
type TransferFundsHandler struct {
	repo domain.AccountRepository
	bus  cqrs.EventBus
}

func NewTransferFundsHandler(repo domain.AccountRepository, bus cqrs.EventBus) *TransferFundsHandler {
	return &TransferFundsHandler{repo: repo, bus: bus}
}

func (h *TransferFundsHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	var p domain.TransferFundsPayload
	if err := sonic.Unmarshal(cmd.Payload, &p); err != nil {
		return err
	}
	from, err := h.repo.FindByID(ctx, p.FromAccountID)
	if err != nil {
		return err
	}
	to, err := h.repo.FindByID(ctx, p.ToAccountID)
	if err != nil {
		return err
	}
	if from == nil || to == nil {
		return domain.ErrNotFound
	}
	events, err := from.TransferFunds(to, p.Amount)
	if err != nil {
		return err
	}
	if err := h.repo.Update(ctx, from); err != nil {
		return err
	}
	if err := h.repo.Update(ctx, to); err != nil {
		return err
	}
	return publishAll(ctx, h.bus, events)
}
