// Package service is the ServiceBase capability: a thin service over a
// Repository that logs each write.
package service

import (
	"context"
	"fmt"

	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/repository"
)

// Service exposes the entity operations of one type.
type Service[T any] interface {
	Get(ctx context.Context, id any) (T, error)
	List(ctx context.Context, specs ...repository.Spec[T]) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) error
	Remove(ctx context.Context, entity T) error
	Repository() repository.Repository[T]
}

// Base implements Service over a repository. Embed it to add behaviour.
type Base[T any] struct {
	repo repository.Repository[T]
	log  logger.Logger
}

var _ Service[struct{ ID int }] = (*Base[struct{ ID int }])(nil)

// New returns a service over repo. A nil log discards output.
func New[T any](repo repository.Repository[T], log logger.Logger) *Base[T] {
	if log == nil {
		log = logger.Nop{}
	}
	return &Base[T]{repo: repo, log: log}
}

func (s *Base[T]) Repository() repository.Repository[T] { return s.repo }

func (s *Base[T]) Get(ctx context.Context, id any) (T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Base[T]) List(ctx context.Context, specs ...repository.Spec[T]) ([]T, error) {
	return s.repo.List(ctx, specs...)
}

func (s *Base[T]) Create(ctx context.Context, entity T) (T, error) {
	created, err := s.repo.Add(ctx, entity)
	if err != nil {
		s.log.Warnf("create %T: %v", entity, err)
		return created, fmt.Errorf("service: create: %w", err)
	}
	s.log.Debugw("entity created", map[string]any{"type": fmt.Sprintf("%T", entity)})
	return created, nil
}

func (s *Base[T]) Update(ctx context.Context, entity T) error {
	if err := s.repo.Update(ctx, entity); err != nil {
		s.log.Warnf("update %T: %v", entity, err)
		return fmt.Errorf("service: update: %w", err)
	}
	return nil
}

func (s *Base[T]) Remove(ctx context.Context, entity T) error {
	if err := s.repo.Delete(ctx, entity); err != nil {
		s.log.Warnf("remove %T: %v", entity, err)
		return fmt.Errorf("service: remove: %w", err)
	}
	return nil
}
