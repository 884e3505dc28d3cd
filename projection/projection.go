// Package projection folds published domain events into a queryable read
// model. The model is owned entirely by the projection and derived solely
// from observed events; it is never the same object as the write-side
// aggregate and can diverge from it when event delivery fails.
package projection

import (
	"context"
	"sync"

	"banking-service/cqrs"
	"banking-service/domain"
)

// AccountTransactions is one read-model entry, keyed by account id.
type AccountTransactions struct {
	AccountID    string               `json:"accountId"`
	Transactions []domain.Transaction `json:"transactions"`
}

type applyFunc func(ev cqrs.Event, accounts map[string]*AccountTransactions) error

// AccountProjection maps event types to the read-model mutation each one
// performs. It applies no deduplication, so a redelivered event is applied
// again.
type AccountProjection struct {
	mu       sync.RWMutex
	accounts map[string]*AccountTransactions
	handlers map[string]applyFunc
}

func NewAccountProjection() *AccountProjection {
	return &AccountProjection{
		accounts: make(map[string]*AccountTransactions),
		handlers: map[string]applyFunc{
			domain.EventAccountOpened:    applyAccountOpened,
			domain.EventAccountClosed:    applyAccountClosed,
			domain.EventFundsWithdrawn:   applyFundsWithdrawn,
			domain.EventFundsDeposited:   applyFundsDeposited,
			domain.EventFundsTransferred: applyFundsTransferred,
		},
	}
}

// HandleEvent implements cqrs.EventHandler. Events with no registered
// handler are silently ignored.
func (p *AccountProjection) HandleEvent(ctx context.Context, ev cqrs.Event) error {
	apply, ok := p.handlers[ev.Type]
	if !ok {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return apply(ev, p.accounts)
}

// Transactions returns the recorded history for an account, empty when the
// account has not been observed yet.
func (p *AccountProjection) Transactions(accountID string) []domain.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.accounts[accountID]
	if !ok {
		return []domain.Transaction{}
	}
	history := make([]domain.Transaction, len(entry.Transactions))
	copy(history, entry.Transactions)
	return history
}
