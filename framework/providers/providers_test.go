package providers_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/entity"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/providers"
	"github.com/km-arc/go-resolver/framework/resolver"
)

type Order struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func boot(t *testing.T, lifetime container.Lifetime, store *providers.Store) *container.Container {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	cfg := &config.Config{}
	cfg.SetDefaults()
	reg.Register(&providers.ConfigServiceProvider{Config: cfg})
	reg.Register(&providers.LogServiceProvider{Logger: logger.Nop{}})
	reg.Register(&providers.MetricsServiceProvider{Registry: prometheus.NewRegistry()})
	reg.Register(&providers.StoreServiceProvider{Store: store})
	reg.Register(&providers.RegistryServiceProvider{Lifetime: lifetime})
	reg.Boot()
	return c
}

func TestRegistryServiceProvider_BindsEverything(t *testing.T) {
	c := boot(t, container.Singleton, nil)

	for _, abstract := range []string{
		"config", "configuration", "logger", "metrics", "metrics.registry", "store",
		"catalog", "resolver", "factory.service", "factory.repository", "factory.specification",
		"decoder.json", "decoder.yaml", "decoder", "entity", "container",
	} {
		assert.True(t, c.Bound(abstract), abstract)
	}

	assert.IsType(t, &resolver.Resolver{}, c.Make("resolver"))
	assert.IsType(t, &entity.Service{}, c.Make("entity"))
	assert.Equal(t, "json", container.Resolve[*decode.Decoder](c, "decoder").Codec().Name())
	assert.Equal(t, "yaml", container.Resolve[*decode.Decoder](c, "decoder.yaml").Codec().Name())
	assert.False(t, c.Bound("db"), "memory store binds no database")
}

func TestRegistryServiceProvider_Lifetimes(t *testing.T) {
	tests := []struct {
		lifetime      container.Lifetime
		sameInRoot    bool
		sameAcrossTwo bool
	}{
		{container.Singleton, true, true},
		{container.Scoped, true, false},
		{container.Transient, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.lifetime.String(), func(t *testing.T) {
			c := boot(t, tt.lifetime, nil)
			a, b := c.NewScope(), c.NewScope()

			assert.Equal(t, tt.sameInRoot, a.Make("factory.repository") == a.Make("factory.repository"))
			assert.Equal(t, tt.sameAcrossTwo, a.Make("factory.repository") == b.Make("factory.repository"))
			assert.Same(t, a.Make("catalog"), b.Make("catalog"), "the catalog is always shared")
		})
	}
}

func TestRegistryServiceProvider_KeepsBoundCatalog(t *testing.T) {
	c := container.New()
	cat := catalog.New()
	c.Instance("catalog", cat)
	reg := container.NewProviderRegistry(c)
	reg.Register(&providers.RegistryServiceProvider{Lifetime: container.Singleton})

	assert.Same(t, cat, c.Make("catalog"))
}

func TestRegisterModule_Memory(t *testing.T) {
	ctx := context.Background()
	c := boot(t, container.Singleton, nil)

	require.NoError(t, providers.RegisterModule(ctx, c, "Sales",
		providers.EntityOf[Order](catalog.WithNamespace("sales")),
		providers.EntityOf[Customer](catalog.WithNamespace("sales")),
	))

	repos := container.Resolve[*factory.SpecificationRepositoryFactory](c, "factory.specification")
	repo, err := repos.Get("order", factory.InModule("Sales"))
	require.NoError(t, err)
	_, err = repo.Add(ctx, Order{ID: "o-1", Total: 9})
	require.NoError(t, err)

	svc, err := factory.Service[Order](container.Resolve[*factory.ServiceFactory](c, "factory.service"))
	require.NoError(t, err)
	got, err := svc.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Total)

	err = providers.RegisterModule(ctx, c, "Sales", providers.EntityOf[Order](catalog.WithNamespace("sales")))
	assert.Error(t, err, "duplicate type")
}

func TestRegisterModule_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := providers.OpenStore("sqlite", filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	c := boot(t, container.Singleton, store)
	assert.True(t, c.Bound("db"))

	require.NoError(t, providers.RegisterModule(ctx, c, "Crm", providers.EntityOf[Customer](catalog.WithTable("Customers"))))

	ents := container.Resolve[*entity.Service](c, "entity")
	added, err := ents.AddEntity(ctx, "customers", "", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	id := added.(Customer).ID

	var n int
	require.NoError(t, store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM "dbo_customers"`).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := ents.GetEntityByID(ctx, "customers", "", id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.(Customer).Name)
}

func TestRegisterModule_NeedsCatalogAndStore(t *testing.T) {
	assert.Error(t, providers.RegisterModule(context.Background(), container.New(), "Sales"))

	c := container.New()
	c.Instance("catalog", catalog.New())
	assert.Error(t, providers.RegisterModule(context.Background(), c, "Sales"))
}

func TestOpenStore(t *testing.T) {
	s, err := providers.OpenStore("memory", "")
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Driver())
	assert.Nil(t, s.DB())
	assert.NoError(t, s.Close())

	_, err = providers.OpenStore("mysql", "")
	assert.Error(t, err)
}

func TestMetricsServiceProvider_CountsBuilds(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := container.New()
	r := container.NewProviderRegistry(c)
	r.Register(&providers.MetricsServiceProvider{Registry: reg})
	r.Register(&providers.RegistryServiceProvider{Lifetime: container.Transient})
	r.Boot()

	c.Make("resolver")
	c.Make("resolver")

	n, err := testutil.GatherAndCount(reg, "container_resolutions_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}

func TestRoutingServiceProvider(t *testing.T) {
	c := container.New()
	container.NewProviderRegistry(c).Register(&providers.RoutingServiceProvider{})
	assert.NotNil(t, c.Make("router"))
}
