package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related bindings. Boot is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type RegistryServiceProvider struct{ container.BaseProvider }
//
//	func (p *RegistryServiceProvider) Register(app *container.Container) {
//	    app.Singleton("resolver", func(c *container.Container) any {
//	        return resolver.New(container.Resolve[*catalog.Catalog](c, "catalog"))
//	    })
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Resolving other bindings belongs in Boot.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the abstract keys this provider registers.
	// Only consulted for deferred providers.
	Provides() []string

	// IsDeferred reports whether registration waits until one of the
	// Provides() abstracts is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true
	booted := r.booted
	if !provider.IsDeferred() {
		r.eager = append(r.eager, provider)
	}
	r.mu.Unlock()

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred binds a placeholder for each deferred abstract. The first
// resolution registers the provider for real (replacing the placeholders),
// boots it if the registry already booted, then resolves the real binding.
// Concurrent first resolutions wait for that registration to finish.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	once := &sync.Once{}
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) any {
			once.Do(func() { r.load(provider) })
			if r.app.placeholder(abs) {
				panic(fmt.Sprintf("container: deferred provider %T did not register [%s]", provider, abs))
			}
			return c.Make(abs)
		})
		r.app.markPlaceholder(abs)
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.mu.Lock()
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
}

// Boot calls Boot() on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
