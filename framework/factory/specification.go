package factory

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// SpecificationRepositoryFactory resolves entity names to untyped
// repositories. It is bound to RepositoryShape and takes no shape argument.
type SpecificationRepositoryFactory struct {
	f *Factory
}

// NewSpecificationRepositoryFactory returns a SpecificationRepositoryFactory over c.
func NewSpecificationRepositoryFactory(c Container, r *resolver.Resolver, settings ...Setting) *SpecificationRepositoryFactory {
	return &SpecificationRepositoryFactory{f: New(c, r, RepositoryShape, settings...)}
}

// Get resolves entityName and returns its repository.
func (s *SpecificationRepositoryFactory) Get(entityName string, opts ...Option) (repository.Any, error) {
	inst, err := s.f.GetByName(entityName, opts...)
	if err != nil {
		return nil, err
	}
	return untyped(inst)
}

// ForType returns the repository for rt.
func (s *SpecificationRepositoryFactory) ForType(rt reflect.Type) (repository.Any, error) {
	inst, err := s.f.ForType(rt)
	if err != nil {
		return nil, err
	}
	return untyped(inst)
}

// SpecRepository returns the typed repository for T.
func SpecRepository[T any](s *SpecificationRepositoryFactory) (repository.Repository[T], error) {
	return typed[T, repository.Repository[T]](s.f)
}

// untyped accepts either a repository.Any or a value that can produce one,
// which covers every Repository[T].
func untyped(inst Instance) (repository.Any, error) {
	switch v := inst.Value.(type) {
	case repository.Any:
		return v, nil
	case interface{ Untyped() repository.Any }:
		return v.Untyped(), nil
	}
	return nil, fmt.Errorf("%w: %s is bound to %T, not a repository", resolver.ErrNotRegistered, inst.Key(), inst.Value)
}
