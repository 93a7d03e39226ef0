// Package metrics counts resolutions with Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// Recorder receives one call per factory or decoder operation.
type Recorder interface {
	Observe(operation string, err error)
}

// Nop discards observations.
type Nop struct{}

func (Nop) Observe(string, error) {}

// Prom records resolution outcomes and container builds.
type Prom struct {
	resolutions *prometheus.CounterVec
	builds      *prometheus.CounterVec
}

// NewProm registers the collectors on reg (the default registerer when nil).
// Registering twice on the same registerer reuses the existing collectors.
func NewProm(reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_resolutions_total",
		Help: "Factory and decoder operations by outcome",
	}, []string{"operation", "outcome"})
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "container_resolutions_total",
		Help: "Instances built by the container, by abstract",
	}, []string{"abstract"})

	var err error
	if resolutions, err = register(reg, resolutions); err != nil {
		return nil, err
	}
	if builds, err = register(reg, builds); err != nil {
		return nil, err
	}
	return &Prom{resolutions: resolutions, builds: builds}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// Observe counts one operation under its outcome.
func (p *Prom) Observe(operation string, err error) {
	p.resolutions.WithLabelValues(operation, Outcome(err)).Inc()
}

// Watch counts every instance c builds from now on.
func (p *Prom) Watch(c *container.Container) {
	c.AfterResolving(func(abstract string, _ any) {
		p.builds.WithLabelValues(abstract).Inc()
	})
}

// Outcome maps an error to its failure kind label; nil is "ok".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, resolver.ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, resolver.ErrModuleNotFound):
		return "module_not_found"
	case errors.Is(err, resolver.ErrInvalidShape):
		return "invalid_shape"
	case errors.Is(err, resolver.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, resolver.ErrTypeNotFound):
		return "type_not_found"
	case errors.Is(err, resolver.ErrDecodeFailed):
		return "decode_failed"
	default:
		return "error"
	}
}
