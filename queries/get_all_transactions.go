// Package queries contains the read-side handlers. They answer from the
// projection's read model, never from the write-side aggregates.
package queries

import (
	"context"

	"github.com/bytedance/sonic"

	"banking-service/cqrs"
	"banking-service/domain"
)

// TransactionReader serves the transaction history the projection has
// derived from observed events.
type TransactionReader interface {
	Transactions(accountID string) []domain.Transaction
}

// GetAllTransactionsHandler returns the recorded history for one account.
type GetAllTransactionsHandler struct {
	reader TransactionReader
}

func NewGetAllTransactionsHandler(reader TransactionReader) *GetAllTransactionsHandler {
	return &GetAllTransactionsHandler{reader: reader}
}

func (h *GetAllTransactionsHandler) Handle(ctx context.Context, q cqrs.Query) (any, error) {
	var p domain.GetAllTransactionsPayload
	if err := sonic.Unmarshal(q.Payload, &p); err != nil {
		return nil, err
	}
	return h.reader.Transactions(p.AccountID), nil
}
