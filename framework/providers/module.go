package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/service"
)

// Entity is one entity type of a module, with everything needed to provide
// its repository and service.
type Entity interface {
	Type() *catalog.Type
	provide(ctx context.Context, app *container.Container, t *catalog.Type, store *Store) error
}

type entityOf[T any] struct {
	t *catalog.Type
}

// EntityOf describes entity type T.
//
//	providers.EntityOf[sales.Order](catalog.WithTable("orders"))
func EntityOf[T any](opts ...catalog.TypeOption) Entity {
	return entityOf[T]{t: catalog.Of[T](opts...)}
}

func (e entityOf[T]) Type() *catalog.Type { return e.t }

func (e entityOf[T]) provide(ctx context.Context, app *container.Container, t *catalog.Type, store *Store) error {
	repo, err := OpenRepository[T](ctx, store, t)
	if err != nil {
		return fmt.Errorf("providers: repository for %s: %w", t, err)
	}
	if err := factory.ProvideRepository[T](app, container.Singleton, func(*container.Container) repository.Repository[T] {
		return repo
	}); err != nil {
		return err
	}
	return factory.ProvideService[T](app, configFrom(app).Lifetime(), func(c *container.Container) service.Service[T] {
		return service.New[T](repo, logFrom(c))
	})
}

// RegisterModule adds a module of entities to the bound catalog and
// provides a repository (on the bound store) and a service for each.
// It needs "catalog" and "store" bound.
func RegisterModule(ctx context.Context, app *container.Container, name string, entities ...Entity) error {
	cat, ok := container.ResolveOK[*catalog.Catalog](app, "catalog")
	if !ok {
		return errors.New("providers: no catalog bound")
	}
	store, ok := container.ResolveOK[*Store](app, "store")
	if !ok {
		return errors.New("providers: no store bound")
	}

	types := make([]*catalog.Type, len(entities))
	for i, e := range entities {
		types[i] = e.Type()
	}
	if err := cat.Register(name, types...); err != nil {
		return err
	}
	mod, _ := cat.Module(name)
	registered := make(map[string]*catalog.Type)
	for _, t := range mod.Types() {
		registered[t.FullName()] = t
	}
	for _, e := range entities {
		if err := e.provide(ctx, app, registered[e.Type().FullName()], store); err != nil {
			return err
		}
	}
	logFrom(app).Infof("module %s: %d entities", mod.Name(), len(entities))
	return nil
}
