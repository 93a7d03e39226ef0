package factory

import (
	"strings"

	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/resolver"
	"github.com/km-arc/go-resolver/framework/service"
	"github.com/km-arc/go-resolver/framework/shape"
)

// Built-in shapes.
var (
	ServiceShape    = shape.Open("ServiceBase")
	RepositoryShape = shape.Open("RepositoryBase")
)

func label(s shape.Shape) string {
	return strings.ToLower(strings.TrimSuffix(s.Name(), "Base"))
}

// ── ServiceFactory ────────────────────────────────────────────────────────────

// ServiceFactory is a Factory bound to ServiceShape.
type ServiceFactory struct {
	*Factory
}

// NewServiceFactory returns a ServiceFactory over c.
func NewServiceFactory(c Container, r *resolver.Resolver, settings ...Setting) *ServiceFactory {
	return &ServiceFactory{Factory: New(c, r, ServiceShape, settings...)}
}

// Service returns the registered service for T.
func Service[T any](f *ServiceFactory) (service.Service[T], error) {
	return typed[T, service.Service[T]](f.Factory)
}

// ProvideService registers fn as the ServiceShape constructor for T.
func ProvideService[T any](c *container.Container, lifetime container.Lifetime, fn func(c *container.Container) service.Service[T]) error {
	return shape.Provide[T](c, ServiceShape, lifetime, func(c *container.Container) any { return fn(c) })
}

// ── RepositoryFactory ─────────────────────────────────────────────────────────

// RepositoryFactory is a Factory bound to RepositoryShape.
type RepositoryFactory struct {
	*Factory
}

// NewRepositoryFactory returns a RepositoryFactory over c.
func NewRepositoryFactory(c Container, r *resolver.Resolver, settings ...Setting) *RepositoryFactory {
	return &RepositoryFactory{Factory: New(c, r, RepositoryShape, settings...)}
}

// Repository returns the registered repository for T.
func Repository[T any](f *RepositoryFactory) (repository.Repository[T], error) {
	return typed[T, repository.Repository[T]](f.Factory)
}

// ProvideRepository registers fn as the RepositoryShape constructor for T.
func ProvideRepository[T any](c *container.Container, lifetime container.Lifetime, fn func(c *container.Container) repository.Repository[T]) error {
	return shape.Provide[T](c, RepositoryShape, lifetime, func(c *container.Container) any { return fn(c) })
}
