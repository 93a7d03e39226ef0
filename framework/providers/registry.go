package providers

import (
	"strings"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/entity"
	"github.com/km-arc/go-resolver/framework/factory"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// ── RegistryServiceProvider ───────────────────────────────────────────────────

// RegistryServiceProvider registers the resolution services with one
// lifetime. The catalog itself is always a singleton.
//
// Bound abstracts:
//   - "catalog"                → *catalog.Catalog
//   - "resolver"               → *resolver.Resolver
//   - "factory.service"        → *factory.ServiceFactory
//   - "factory.repository"     → *factory.RepositoryFactory
//   - "factory.specification"  → *factory.SpecificationRepositoryFactory
//   - "decoder.json"           → *decode.Decoder (JSON)
//   - "decoder.yaml"           → *decode.Decoder (YAML)
//   - "decoder"                → the decoder named by registry.codec
//   - "entity"                 → *entity.Service
//
// With Scoped, each scope gets its own factories, and they look up shapes
// through that scope.
type RegistryServiceProvider struct {
	container.BaseProvider
	Lifetime container.Lifetime
	// Catalog is bound when set; otherwise an empty catalog is created
	// unless one is already bound.
	Catalog *catalog.Catalog
}

func (p *RegistryServiceProvider) Register(app *container.Container) {
	switch {
	case p.Catalog != nil:
		app.Instance("catalog", p.Catalog)
	case !app.Bound("catalog"):
		app.Instance("catalog", catalog.New())
	}

	lt := p.Lifetime
	app.Register("resolver", lt, func(c *container.Container) any {
		return resolver.New(container.Resolve[*catalog.Catalog](c, "catalog"))
	})
	app.Register("factory.service", lt, func(c *container.Container) any {
		return factory.NewServiceFactory(c, resolverFrom(c), factorySettings(c)...)
	})
	app.Register("factory.repository", lt, func(c *container.Container) any {
		return factory.NewRepositoryFactory(c, resolverFrom(c), factorySettings(c)...)
	})
	app.Register("factory.specification", lt, func(c *container.Container) any {
		return factory.NewSpecificationRepositoryFactory(c, resolverFrom(c), factorySettings(c)...)
	})
	app.Register("decoder.json", lt, func(c *container.Container) any {
		return newDecoder(c, decode.JSON{})
	})
	app.Register("decoder.yaml", lt, func(c *container.Container) any {
		return newDecoder(c, decode.YAML{})
	})
	app.Register("decoder", lt, func(c *container.Container) any {
		if strings.HasPrefix(strings.ToLower(configFrom(c).Registry.Codec), "y") {
			return c.Make("decoder.yaml")
		}
		return c.Make("decoder.json")
	})
	app.Register("entity", lt, func(c *container.Container) any {
		return entity.New(
			container.Resolve[*catalog.Catalog](c, "catalog"),
			container.Resolve[*factory.SpecificationRepositoryFactory](c, "factory.specification"),
			logFrom(c),
		)
	})
}

func resolverFrom(c *container.Container) *resolver.Resolver {
	return container.Resolve[*resolver.Resolver](c, "resolver")
}

func factorySettings(c *container.Container) []factory.Setting {
	return []factory.Setting{factory.WithLogger(logFrom(c)), factory.WithRecorder(recorderFrom(c))}
}

func newDecoder(c *container.Container, codec decode.Codec) *decode.Decoder {
	return decode.New(codec, resolverFrom(c), decode.WithLogger(logFrom(c)), decode.WithRecorder(recorderFrom(c)))
}
