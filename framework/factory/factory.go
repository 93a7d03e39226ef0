// Package factory resolves an entity name, or a Go type, to the instance the
// container holds for a generic shape closed over that type.
//
//	repos := factory.NewRepositoryFactory(c, resolver.New(cat))
//	inst, err := repos.Get(factory.RepositoryShape, "order")
//	// inst.Value is whatever c holds for "RepositoryBase[<pkg>.Order]"
//
// Constructors are registered up front with ProvideService, ProvideRepository
// or shape.Provide. A factory never builds anything itself.
package factory

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/metrics"
	"github.com/km-arc/go-resolver/framework/resolver"
	"github.com/km-arc/go-resolver/framework/shape"
)

// Container is the lookup surface a factory needs; *container.Container
// implements it.
type Container interface {
	Lookup(abstract string) (any, bool)
}

// ── Options ───────────────────────────────────────────────────────────────────

// Option narrows name resolution.
type Option func(*catalog.Identifier)

// InModule restricts resolution to one module.
func InModule(module string) Option {
	return func(id *catalog.Identifier) { id.Module = module }
}

// InNamespace restricts resolution to one namespace.
func InNamespace(namespace string) Option {
	return func(id *catalog.Identifier) { id.Namespace = namespace }
}

// Setting configures a Factory at construction.
type Setting func(*Factory)

// WithLogger sets the logger; resolutions are logged at debug level.
func WithLogger(l logger.Logger) Setting {
	return func(f *Factory) { f.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Setting {
	return func(f *Factory) { f.metrics = r }
}

// ── Factory ───────────────────────────────────────────────────────────────────

// Instance is the result of a resolution.
type Instance struct {
	// Shape is the closed shape whose key was looked up.
	Shape shape.Shape
	// Entity is the catalog entry the name resolved to. It is nil for
	// resolutions by Go type.
	Entity *catalog.Type
	// Value is what the container returned.
	Value any
}

// Key returns the container abstract the instance was looked up under.
func (i Instance) Key() string { return i.Shape.Key() }

// Factory is the shared resolution mechanism. It is safe for concurrent use
// when the container and catalog are.
type Factory struct {
	container Container
	resolver  *resolver.Resolver
	builtin   shape.Shape
	log       logger.Logger
	metrics   metrics.Recorder
}

// New returns a factory whose built-in shape is builtin.
func New(c Container, r *resolver.Resolver, builtin shape.Shape, settings ...Setting) *Factory {
	f := &Factory{
		container: c,
		resolver:  r,
		builtin:   builtin,
		log:       logger.Nop{},
		metrics:   metrics.Nop{},
	}
	for _, s := range settings {
		s(f)
	}
	return f
}

// Shape returns the built-in shape.
func (f *Factory) Shape() shape.Shape { return f.builtin }

// Get resolves entityName and returns the container's instance of s closed
// over the resolved type.
//
// The shape is checked first, so an invalid shape fails with ErrInvalidShape
// whether or not the name resolves. An unresolvable name fails with
// ErrEntityNotFound without consulting the container. A closed shape with no
// binding fails with ErrNotRegistered.
func (f *Factory) Get(s shape.Shape, entityName string, opts ...Option) (Instance, error) {
	inst, err := f.get(s, entityName, opts)
	f.observe("get", s, entityName, err)
	return inst, err
}

// GetByName is Get with the built-in shape.
func (f *Factory) GetByName(entityName string, opts ...Option) (Instance, error) {
	return f.Get(f.builtin, entityName, opts...)
}

// ForType closes the built-in shape over rt directly, skipping name
// resolution.
func (f *Factory) ForType(rt reflect.Type) (Instance, error) {
	inst, err := f.lookup(f.builtin, rt, nil)
	f.observe("for_type", f.builtin, fmt.Sprint(rt), err)
	return inst, err
}

func (f *Factory) get(s shape.Shape, entityName string, opts []Option) (Instance, error) {
	if !s.IsOpen() || s.Arity() != 1 {
		return Instance{}, fmt.Errorf("%w: %s is not an open definition with one type parameter", resolver.ErrInvalidShape, s)
	}
	id := catalog.Identifier{Name: entityName}
	for _, opt := range opts {
		opt(&id)
	}
	t, ok := f.resolver.Resolve(id)
	if !ok {
		return Instance{}, fmt.Errorf("%w: %s", resolver.ErrEntityNotFound, describe(id))
	}
	return f.lookup(s, t.Reflect(), t)
}

func (f *Factory) lookup(s shape.Shape, rt reflect.Type, entity *catalog.Type) (Instance, error) {
	closed, err := s.Close(rt)
	if err != nil {
		return Instance{}, err
	}
	v, ok := f.container.Lookup(closed.Key())
	if !ok {
		return Instance{}, fmt.Errorf("%w: %s", resolver.ErrNotRegistered, closed.Key())
	}
	return Instance{Shape: closed, Entity: entity, Value: v}, nil
}

func (f *Factory) observe(op string, s shape.Shape, target string, err error) {
	f.metrics.Observe(label(f.builtin)+"."+op, err)
	if err != nil {
		f.log.Debugw("resolution failed", map[string]any{"shape": s.String(), "target": target, "error": err.Error()})
		return
	}
	f.log.Debugw("resolved", map[string]any{"shape": s.String(), "target": target})
}

func describe(id catalog.Identifier) string {
	out := fmt.Sprintf("%q", id.Name)
	if id.Namespace != "" {
		out += " in namespace " + id.Namespace
	}
	if id.Module != "" {
		out += " in module " + id.Module
	}
	return out
}

// ── Narrowing ─────────────────────────────────────────────────────────────────

// As narrows an instance to capability S. A value of another type fails
// with ErrNotRegistered: the shape is bound, but not to an S.
func As[S any](inst Instance) (S, error) {
	s, ok := inst.Value.(S)
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: %s is bound to %T, not %s",
			resolver.ErrNotRegistered, inst.Key(), inst.Value, reflect.TypeOf((*S)(nil)).Elem())
	}
	return s, nil
}

// typed looks up the built-in shape closed over T and narrows it to S.
func typed[T, S any](f *Factory) (S, error) {
	var zero S
	inst, err := f.ForType(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	return As[S](inst)
}
