package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/entity"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/http/api"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/providers"
	"github.com/km-arc/go-resolver/framework/resolver"
	"github.com/km-arc/go-resolver/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	store  *providers.Store
	routes sync.Once
}

// Option customises New.
type Option func(*options)

type options struct {
	log      logger.Logger
	registry *prometheus.Registry
	catalog  *catalog.Catalog
}

// WithLogger replaces the configured logger.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// WithMetricsRegistry sets the Prometheus registry the application reports to.
func WithMetricsRegistry(r *prometheus.Registry) Option { return func(o *options) { o.registry = r } }

// WithCatalog starts from an existing catalog.
func WithCatalog(c *catalog.Catalog) Option { return func(o *options) { o.catalog = c } }

// New opens the configured store and registers the framework providers.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := providers.OpenStore(cfg.DB.Driver, cfg.DB.Database)
	if err != nil {
		return nil, err
	}

	c := container.New()
	registry := container.NewProviderRegistry(c)
	app := &Application{Container: c, Providers: registry, store: store}

	registry.Register(&providers.ConfigServiceProvider{Config: cfg})
	registry.Register(&providers.LogServiceProvider{Logger: o.log})
	registry.Register(&providers.MetricsServiceProvider{Registry: o.registry})
	registry.Register(&providers.StoreServiceProvider{Store: store})
	registry.Register(&providers.RegistryServiceProvider{Lifetime: cfg.Lifetime(), Catalog: o.catalog})
	registry.Register(&providers.RoutingServiceProvider{})

	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Module adds a module of entity types to the catalog, with a repository and
// a service for each.
//
//	err := application.Module(ctx, "Sales",
//	    providers.EntityOf[sales.Order](),
//	    providers.EntityOf[sales.Customer](catalog.WithTable("customers")),
//	)
func (a *Application) Module(ctx context.Context, name string, entities ...providers.Entity) error {
	return providers.RegisterModule(ctx, a.Container, name, entities...)
}

// Boot runs the Boot() phase on all providers and mounts the routes.
func (a *Application) Boot() {
	a.Providers.Boot()
	a.mountRoutes()
}

func (a *Application) mountRoutes() {
	a.routes.Do(func() {
		r := a.Router()
		reg := container.Resolve[*prometheus.Registry](a.Container, "metrics.registry")
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		api.Register(r, api.Deps{
			Catalog:      a.Catalog(),
			Resolver:     a.Resolver(),
			Repositories: a.Repositories(),
			Decoders: map[string]*decode.Decoder{
				"json": container.Resolve[*decode.Decoder](a.Container, "decoder.json"),
				"yaml": container.Resolve[*decode.Decoder](a.Container, "decoder.yaml"),
			},
			Logger: a.Logger(),
		})
	})
}

// Run boots the application (if needed) and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger().Infof("%s listening on %s [%s]", cfg.App.Name, srv.Addr, cfg.App.Env)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Logger().Infof("shutting down")
		return srv.Shutdown(shutdown)
	}
}

// Close releases the store.
func (a *Application) Close() error {
	return a.store.Close()
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves the application logger.
func (a *Application) Logger() logger.Logger {
	return container.Resolve[logger.Logger](a.Container, "logger")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Catalog resolves the type catalog.
func (a *Application) Catalog() *catalog.Catalog {
	return container.Resolve[*catalog.Catalog](a.Container, "catalog")
}

// Resolver resolves the type resolver.
func (a *Application) Resolver() *resolver.Resolver {
	return container.Resolve[*resolver.Resolver](a.Container, "resolver")
}

// Services resolves the ServiceBase factory.
func (a *Application) Services() *factory.ServiceFactory {
	return container.Resolve[*factory.ServiceFactory](a.Container, "factory.service")
}

// RepositoryFactory resolves the RepositoryBase factory.
func (a *Application) RepositoryFactory() *factory.RepositoryFactory {
	return container.Resolve[*factory.RepositoryFactory](a.Container, "factory.repository")
}

// Repositories resolves the untyped repository factory.
func (a *Application) Repositories() *factory.SpecificationRepositoryFactory {
	return container.Resolve[*factory.SpecificationRepositoryFactory](a.Container, "factory.specification")
}

// Decoder resolves the decoder for the configured codec.
func (a *Application) Decoder() *decode.Decoder {
	return container.Resolve[*decode.Decoder](a.Container, "decoder")
}

// Entities resolves the table-addressed entity service.
func (a *Application) Entities() *entity.Service {
	return container.Resolve[*entity.Service](a.Container, "entity")
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Config().IsLocal() }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
