package cqrs

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrEntityNotFound is returned by Update when no entity with the given id
// has been created.
var ErrEntityNotFound = errors.New("entity not found")

// Entity is anything the repositories can persist.
type Entity interface {
	EntityID() string
}

// Repository is the persistence contract for aggregates. FindByID returns
// the zero value of T when no entity with the id exists.
type Repository[T Entity] interface {
	Create(ctx context.Context, entity T) error
	FindByID(ctx context.Context, id string) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps entities in a map guarded by a mutex. It stores
// the instances it is given without copying, so callers share them.
type InMemoryRepository[T Entity] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryRepository[T Entity]() *InMemoryRepository[T] {
	return &InMemoryRepository[T]{items: make(map[string]T)}
}

func (r *InMemoryRepository[T]) Create(ctx context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[entity.EntityID()] = entity
	return nil
}

func (r *InMemoryRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entity, ok := r.items[id]
	if !ok {
		var zero T
		return zero, nil
	}
	return entity, nil
}

func (r *InMemoryRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]T, 0, len(r.items))
	for _, entity := range r.items {
		entities = append(entities, entity)
	}
	return entities, nil
}

func (r *InMemoryRepository[T]) Update(ctx context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := entity.EntityID()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("update %s: %w", id, ErrEntityNotFound)
	}
	r.items[id] = entity
	return nil
}

func (r *InMemoryRepository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
