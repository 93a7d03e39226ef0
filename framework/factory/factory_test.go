package factory_test

import (
	"bytes"
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/metrics"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/repository/memory"
	"github.com/km-arc/go-resolver/framework/resolver"
	"github.com/km-arc/go-resolver/framework/service"
	"github.com/km-arc/go-resolver/framework/shape"
)

type Order struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

type Invoice struct {
	ID string `json:"id"`
}

// countingContainer records every lookup.
type countingContainer struct {
	*container.Container
	lookups []string
}

func (c *countingContainer) Lookup(abstract string) (any, bool) {
	c.lookups = append(c.lookups, abstract)
	return c.Container.Lookup(abstract)
}

type fixture struct {
	c     *countingContainer
	r     *resolver.Resolver
	store *memory.Store[Order]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.Register("Sales",
		catalog.Of[Order](catalog.WithNamespace("sales")),
		catalog.Of[Invoice](catalog.WithNamespace("sales")),
	))

	c := container.New()
	store := memory.New[Order]()
	require.NoError(t, factory.ProvideRepository[Order](c, container.Singleton,
		func(*container.Container) repository.Repository[Order] { return store }))
	require.NoError(t, factory.ProvideService[Order](c, container.Transient,
		func(c *container.Container) service.Service[Order] { return service.New[Order](store, nil) }))

	return &fixture{c: &countingContainer{Container: c}, r: resolver.New(cat), store: store}
}

func TestGet_ReturnsContainerInstanceForClosedShape(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)

	inst, err := f.Get(factory.RepositoryShape, "order")
	require.NoError(t, err)

	key, _ := shape.KeyFor[Order](factory.RepositoryShape)
	want, _ := fx.c.Container.Lookup(key)
	assert.Same(t, want, inst.Value)
	assert.Same(t, fx.store, inst.Value)
	assert.Equal(t, key, inst.Key())
	assert.Equal(t, "sales.Order", inst.Entity.FullName())
}

func TestGet_Options(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)

	_, err := f.Get(factory.RepositoryShape, "ORDER", factory.InModule("sales"), factory.InNamespace("Sales"))
	assert.NoError(t, err)

	_, err = f.Get(factory.RepositoryShape, "order", factory.InNamespace("crm"))
	assert.ErrorIs(t, err, resolver.ErrEntityNotFound)

	_, err = f.Get(factory.RepositoryShape, "order", factory.InModule("Billing"))
	assert.ErrorIs(t, err, resolver.ErrEntityNotFound, "a missing module is an unresolvable name")
}

func TestGet_UnknownEntity_NoContainerCall(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)

	inst, err := f.Get(factory.RepositoryShape, "Widget")
	assert.ErrorIs(t, err, resolver.ErrEntityNotFound)
	assert.Nil(t, inst.Value)
	assert.Empty(t, fx.c.lookups)
}

func TestGet_InvalidShape_RegardlessOfName(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)
	closed, err := factory.RepositoryShape.Close(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	shapes := map[string]shape.Shape{
		"closed": closed,
		"zero":   {},
		"arity2": shape.OpenN("Pair", 2),
	}
	for name, s := range shapes {
		for _, entity := range []string{"order", "Widget"} {
			t.Run(name+"/"+entity, func(t *testing.T) {
				_, err := f.Get(s, entity)
				assert.ErrorIs(t, err, resolver.ErrInvalidShape)
			})
		}
	}
	assert.Empty(t, fx.c.lookups)
}

func TestGet_NotRegistered(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)

	_, err := f.Get(factory.RepositoryShape, "invoice")
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)
	assert.Len(t, fx.c.lookups, 1)

	_, err = f.Get(shape.Open("AuditBase"), "order")
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)
}

func TestForType(t *testing.T) {
	fx := newFixture(t)
	f := factory.NewRepositoryFactory(fx.c, fx.r)

	inst, err := f.ForType(reflect.TypeOf(&Order{}))
	require.NoError(t, err)
	assert.Same(t, fx.store, inst.Value)
	assert.Nil(t, inst.Entity)

	_, err = f.ForType(nil)
	assert.ErrorIs(t, err, resolver.ErrInvalidShape)

	_, err = f.ForType(reflect.TypeOf(Invoice{}))
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)
}

func TestTypedGetters(t *testing.T) {
	fx := newFixture(t)

	repo, err := factory.Repository[Order](factory.NewRepositoryFactory(fx.c, fx.r))
	require.NoError(t, err)
	assert.Same(t, fx.store, repo)

	svcs := factory.NewServiceFactory(fx.c, fx.r)
	svc, err := factory.Service[Order](svcs)
	require.NoError(t, err)
	created, err := svc.Create(context.Background(), Order{Total: 5})
	require.NoError(t, err)
	got, err := fx.store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Total)

	_, err = factory.Service[Invoice](svcs)
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)

	inst, err := svcs.GetByName("order")
	require.NoError(t, err)
	_, ok := inst.Value.(service.Service[Order])
	assert.True(t, ok)
}

func TestAs_WrongCapability(t *testing.T) {
	fx := newFixture(t)
	key, _ := shape.KeyFor[Invoice](factory.RepositoryShape)
	fx.c.Instance(key, "not a repository")

	_, err := factory.Repository[Invoice](factory.NewRepositoryFactory(fx.c, fx.r))
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)

	_, err = factory.NewSpecificationRepositoryFactory(fx.c, fx.r).Get("invoice")
	assert.ErrorIs(t, err, resolver.ErrNotRegistered)
}

func TestSpecificationRepositoryFactory(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	f := factory.NewSpecificationRepositoryFactory(fx.c, fx.r)

	repo, err := f.Get("Order", factory.InModule("Sales"))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Order{}), repo.EntityType())

	added, err := repo.Add(ctx, &Order{ID: "o-1", Total: 3})
	require.NoError(t, err)
	assert.Equal(t, Order{ID: "o-1", Total: 3}, added)
	n, err := fx.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byType, err := f.ForType(reflect.TypeOf(Order{}))
	require.NoError(t, err)
	got, err := byType.GetByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, added, got)

	typedRepo, err := factory.SpecRepository[Order](f)
	require.NoError(t, err)
	assert.Same(t, fx.store, typedRepo)

	_, err = f.Get("Widget")
	assert.ErrorIs(t, err, resolver.ErrEntityNotFound)
}

func TestFactory_LogsAndCounts(t *testing.T) {
	fx := newFixture(t)
	var buf bytes.Buffer
	rec, err := metrics.NewProm(prometheus.NewRegistry())
	require.NoError(t, err)
	f := factory.NewRepositoryFactory(fx.c, fx.r,
		factory.WithLogger(logger.NewWithWriter("factory", &buf, "debug")),
		factory.WithRecorder(rec),
	)

	_, _ = f.Get(factory.RepositoryShape, "order")
	_, _ = f.Get(factory.RepositoryShape, "Widget")

	assert.Contains(t, buf.String(), `"message":"resolved"`)
	assert.Contains(t, buf.String(), `"message":"resolution failed"`)
	assert.Equal(t, factory.RepositoryShape, f.Shape())
}

func TestGet_ConcurrentCallersAgree(t *testing.T) {
	fx := newFixture(t)
	rec, err := metrics.NewProm(prometheus.NewRegistry())
	require.NoError(t, err)
	f := factory.NewRepositoryFactory(fx.c.Container, fx.r, factory.WithRecorder(rec))
	services := factory.NewServiceFactory(fx.c.Container, fx.r, factory.WithRecorder(rec))

	const n = 32
	repos := make([]any, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst, err := f.Get(factory.RepositoryShape, "order", factory.InModule("sales"))
			if err == nil {
				_, err = services.GetByName("invoice")
			}
			repos[i], errs[i] = inst.Value, err
		}()
	}
	wg.Wait()

	for i := range n {
		assert.Same(t, fx.store, repos[i], "caller %d", i)
		assert.ErrorIs(t, errs[i], resolver.ErrNotRegistered, "caller %d: no Invoice service bound", i)
	}
}
