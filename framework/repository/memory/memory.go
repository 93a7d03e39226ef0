// Package memory is an in-process Repository backed by a map.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/km-arc/go-resolver/framework/repository"
)

// Store keeps entities in insertion order. It is safe for concurrent use.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// New returns an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

var _ repository.Repository[struct{ ID int }] = (*Store[struct{ ID int }])(nil)

func (s *Store[T]) GetByID(_ context.Context, id any) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[repository.KeyOf(id)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: id %v", repository.ErrNotFound, id)
	}
	return item, nil
}

func (s *Store[T]) List(_ context.Context, specs ...repository.Spec[T]) ([]T, error) {
	return repository.Apply(s.snapshot(), specs...), nil
}

func (s *Store[T]) Count(ctx context.Context, specs ...repository.Spec[T]) (int, error) {
	items, err := s.List(ctx, specs...)
	return len(items), err
}

func (s *Store[T]) Add(_ context.Context, entity T) (T, error) {
	entity, err := repository.EnsureID(entity)
	if err != nil {
		return entity, err
	}
	key, err := keyOf(entity)
	if err != nil {
		return entity, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; exists {
		return entity, fmt.Errorf("repository: entity %s already exists", key)
	}
	s.items[key] = entity
	s.order = append(s.order, key)
	return entity, nil
}

func (s *Store[T]) Update(_ context.Context, entity T) error {
	key, err := keyOf(entity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		return fmt.Errorf("%w: id %s", repository.ErrNotFound, key)
	}
	s.items[key] = entity
	return nil
}

func (s *Store[T]) Delete(_ context.Context, entity T) error {
	key, err := keyOf(entity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		return fmt.Errorf("%w: id %s", repository.ErrNotFound, key)
	}
	delete(s.items, key)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == key })
	return nil
}

func (s *Store[T]) Untyped() repository.Any {
	return repository.Erase[T](s)
}

func (s *Store[T]) snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

func keyOf(entity any) (string, error) {
	id, err := repository.IDOf(entity)
	if err != nil {
		return "", err
	}
	return repository.KeyOf(id), nil
}
