// Package container is the IoC container and service provider registry the
// resolver builds on.
//
// # Overview
//
// The container owns construction and lifetime of every service the resolver
// hands out. Bindings are keyed by string abstracts; generic shapes closed over
// an entity type use keys such as "RepositoryBase[github.com/acme/sales.Order]"
// (see package shape).
//
// Because Go has no runtime constructor reflection, auto-wiring is replaced by
// explicit factory functions.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot(); everything resolves after this
//  4. Per request: scope := c.NewScope()
//
// # Lifetimes
//
//	// Transient: new instance every Make()
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
//
//	// Singleton: built once on the root, shared with every scope
//	c.Singleton("catalog", func(c *container.Container) any { return catalog.New() })
//
//	// Scoped: built once per scope
//	c.Scoped("unitOfWork", func(c *container.Container) any { return newUnitOfWork() })
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("config", "configuration")
//
// # Resolving
//
//	raw := c.Make("catalog")                          // panics when unbound
//	raw, ok := c.Lookup("catalog")                    // reports absence
//	cat := container.Resolve[*catalog.Catalog](c, "catalog")
//	cat, ok := container.ResolveOK[*catalog.Catalog](c, "catalog")
//
// # Service Providers
//
//	type StoreProvider struct{ container.BaseProvider }
//
//	func (p *StoreProvider) IsDeferred() bool   { return true }
//	func (p *StoreProvider) Provides() []string { return []string{"db"} }
//	func (p *StoreProvider) Register(app *container.Container) {
//	    app.Singleton("db", func(c *container.Container) any { return openDB() })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&StoreProvider{})
//	registry.Boot()
package container
