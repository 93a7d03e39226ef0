package providers

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/metrics"
	"github.com/km-arc/go-resolver/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds a loaded configuration.
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	if cfg == nil {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	app.Instance("config", cfg)
	app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the application logger.
//
// Bound abstracts:
//   - "logger"  → logger.Logger, tagged with the application name
type LogServiceProvider struct {
	container.BaseProvider
	// Logger overrides the configured logger, e.g. logger.Nop{} in tests.
	Logger logger.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) {
	override := p.Logger
	app.Singleton("logger", func(c *container.Container) any {
		if override != nil {
			return override
		}
		cfg := configFrom(c)
		return logger.NewFor(cfg.App.Name, cfg.App.Env, cfg.Log.Level)
	})
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus registry and recorder, and
// counts every container build once booted.
//
// Bound abstracts:
//   - "metrics.registry"  → *prometheus.Registry
//   - "metrics"           → *metrics.Prom
type MetricsServiceProvider struct {
	container.BaseProvider
	Registry *prometheus.Registry
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	reg := p.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	app.Instance("metrics.registry", reg)
	app.Singleton("metrics", func(c *container.Container) any {
		prom, err := metrics.NewProm(reg)
		if err != nil {
			panic("providers: " + err.Error())
		}
		return prom
	})
}

func (p *MetricsServiceProvider) Boot(app *container.Container) {
	container.Resolve[*metrics.Prom](app, "metrics").Watch(app)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		return routing.New(logFrom(c))
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func configFrom(c *container.Container) *config.Config {
	if cfg, ok := container.ResolveOK[*config.Config](c, "config"); ok {
		return cfg
	}
	cfg := &config.Config{}
	cfg.SetDefaults()
	return cfg
}

func logFrom(c *container.Container) logger.Logger {
	if l, ok := container.ResolveOK[logger.Logger](c, "logger"); ok {
		return l
	}
	return logger.Nop{}
}

func recorderFrom(c *container.Container) metrics.Recorder {
	if m, ok := container.ResolveOK[*metrics.Prom](c, "metrics"); ok {
		return m
	}
	return metrics.Nop{}
}
