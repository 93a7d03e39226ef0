// Package repository defines the repository capability handed out by the
// repository factories, in a typed form (Repository[T]) and an untyped form
// (Any) for callers that only know an entity by name.
package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotFound is returned when no entity has the requested id.
	ErrNotFound = errors.New("repository: entity not found")
	// ErrNoIdentity is returned for entity types without an id field.
	ErrNoIdentity = errors.New("repository: entity has no id field")
	// ErrWrongType is returned by Any when handed a value of another type.
	ErrWrongType = errors.New("repository: wrong entity type")
)

// Repository stores entities of type T.
type Repository[T any] interface {
	GetByID(ctx context.Context, id any) (T, error)
	List(ctx context.Context, specs ...Spec[T]) ([]T, error)
	Count(ctx context.Context, specs ...Spec[T]) (int, error)
	// Add stores entity and returns it with its id filled in.
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, entity T) error

	// Untyped returns the same repository behind the Any capability.
	Untyped() Any
}

// Any is Repository without the type parameter. Entities go in and come out
// as T; *T is accepted on input as well.
type Any interface {
	EntityType() reflect.Type
	GetByID(ctx context.Context, id any) (any, error)
	List(ctx context.Context) ([]any, error)
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, entity any) (any, error)
	Update(ctx context.Context, entity any) error
	Delete(ctx context.Context, entity any) error
}

// Erase wraps r as an Any.
func Erase[T any](r Repository[T]) Any {
	return erased[T]{r: r}
}

type erased[T any] struct {
	r Repository[T]
}

func (e erased[T]) EntityType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (e erased[T]) GetByID(ctx context.Context, id any) (any, error) {
	return e.r.GetByID(ctx, id)
}

func (e erased[T]) List(ctx context.Context) ([]any, error) {
	items, err := e.r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func (e erased[T]) Count(ctx context.Context) (int, error) {
	return e.r.Count(ctx)
}

func (e erased[T]) Add(ctx context.Context, entity any) (any, error) {
	v, err := cast[T](entity)
	if err != nil {
		return nil, err
	}
	return e.r.Add(ctx, v)
}

func (e erased[T]) Update(ctx context.Context, entity any) error {
	v, err := cast[T](entity)
	if err != nil {
		return err
	}
	return e.r.Update(ctx, v)
}

func (e erased[T]) Delete(ctx context.Context, entity any) error {
	v, err := cast[T](entity)
	if err != nil {
		return err
	}
	return e.r.Delete(ctx, v)
}

func cast[T any](entity any) (T, error) {
	switch v := entity.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: want %T, got %T", ErrWrongType, zero, entity)
}
