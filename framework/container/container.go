package container

import (
	"fmt"
	"reflect"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
// It receives the container (or scope) the value is being resolved from.
type Factory func(c *Container) any

// Lifetime controls how long a resolved value is reused.
type Lifetime int

const (
	// Transient builds a new value on every resolution.
	Transient Lifetime = iota
	// Singleton builds once per root container.
	Singleton
	// Scoped builds once per scope (see NewScope). Resolving a scoped
	// binding from the root caches it on the root, where scopes never see it.
	Scoped
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// ParseLifetime maps "transient", "singleton" or "scoped" to a Lifetime.
func ParseLifetime(s string) (Lifetime, error) {
	switch s {
	case "transient":
		return Transient, nil
	case "singleton", "":
		return Singleton, nil
	case "scoped":
		return Scoped, nil
	}
	return Transient, fmt.Errorf("container: unknown lifetime %q", s)
}

// binding holds a registered factory and its lifetime.
type binding struct {
	factory  Factory
	lifetime Lifetime
	deferred bool // placeholder bound by ProviderRegistry for a deferred provider
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is a string-keyed IoC container.
//
// It supports:
//   - Bind / Singleton / Scoped / Instance / Alias
//   - Make / Lookup / Resolve (generic)
//   - Scopes sharing the root's bindings and singletons
//   - Resolved event callbacks
//
// A Container is safe for concurrent use. Factories run without holding the
// container lock, so they may resolve their own dependencies.
type Container struct {
	mu sync.RWMutex

	// root is nil for the root container; scopes point at it.
	root *Container

	// abstract → binding (root only)
	bindings map[string]*binding

	// abstract → cached instance (singletons on the root, scoped values per scope)
	instances map[string]any

	// alias → abstract (root only)
	aliases map[string]string

	// resolved callbacks: []func(abstract, instance) (root only)
	afterResolving []func(string, any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
	}
	// factories can reach the container itself
	c.Instance("container", c)
	return c
}

// NewScope returns a child container. It sees every binding of the root,
// shares singletons with it and keeps its own cache for Scoped bindings.
//
//	scope := c.NewScope()
//	repos := scope.Make("factory.specification")
func (c *Container) NewScope() *Container {
	return &Container{root: c.base(), instances: make(map[string]any)}
}

// base returns the root container.
func (c *Container) base() *Container {
	if c.root != nil {
		return c.root
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
func (c *Container) Bind(abstract string, factory Factory) {
	c.Register(abstract, Transient, factory)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	c.Singleton("resolver", func(c *container.Container) any {
//	    return resolver.New(container.Resolve[*catalog.Catalog](c, "catalog"))
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.Register(abstract, Singleton, factory)
}

// Scoped registers a factory whose result is cached once per scope.
func (c *Container) Scoped(abstract string, factory Factory) {
	c.Register(abstract, Scoped, factory)
}

// Register binds factory under abstract with the given lifetime. Bindings
// always land on the root container, even when called on a scope.
// Re-registering drops any cached root instance.
func (c *Container) Register(abstract string, lifetime Lifetime, factory Factory) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	key := root.canonical(abstract)
	delete(root.instances, key)
	root.bindings[key] = &binding{factory: factory, lifetime: lifetime}
}

// Instance registers a pre-built value as a singleton.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(abstract string, instance any) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	key := root.canonical(abstract)
	delete(root.bindings, key)
	root.instances[key] = instance
}

// Alias registers an alternative name for an abstract.
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(abstract, alias string) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	root.aliases[alias] = root.canonical(abstract)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container and panics when nothing is
// bound under it.
//
//	r := c.Make("resolver").(*resolver.Resolver)
func (c *Container) Make(abstract string) any {
	instance, ok := c.Lookup(abstract)
	if !ok {
		panic(fmt.Sprintf("container: no binding registered for [%s]", abstract))
	}
	return instance
}

// Lookup resolves an abstract, reporting false instead of panicking when
// nothing is bound under it.
func (c *Container) Lookup(abstract string) (any, bool) {
	root := c.base()

	root.mu.RLock()
	key := root.canonical(abstract)
	b, bound := root.bindings[key]
	// a scoped value cached on the root belongs to the root only
	if !bound || b.lifetime != Scoped {
		if inst, ok := root.instances[key]; ok {
			root.mu.RUnlock()
			return inst, true
		}
	}
	root.mu.RUnlock()
	if !bound {
		return nil, false
	}

	switch b.lifetime {
	case Singleton:
		return root.build(root, key, b.factory), true
	case Scoped:
		c.mu.RLock()
		inst, cached := c.instances[key]
		c.mu.RUnlock()
		if cached {
			return inst, true
		}
		return c.build(c, key, b.factory), true
	default:
		instance := b.factory(c)
		root.fireAfterResolving(key, instance)
		return instance, true
	}
}

// build runs factory and caches the result on owner. When two callers race,
// the first cached value wins and is returned to both.
func (c *Container) build(owner *Container, key string, f Factory) any {
	instance := f(c)

	owner.mu.Lock()
	if existing, ok := owner.instances[key]; ok {
		owner.mu.Unlock()
		return existing
	}
	owner.instances[key] = instance
	owner.mu.Unlock()

	c.base().fireAfterResolving(key, instance)
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether abstract has a binding or an instance.
func (c *Container) Bound(abstract string) bool {
	root := c.base()
	root.mu.RLock()
	defer root.mu.RUnlock()
	key := root.canonical(abstract)
	_, hasBinding := root.bindings[key]
	_, hasInstance := root.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if the abstract has a cached instance in this
// container (the root for singletons, the scope for scoped bindings).
func (c *Container) Resolved(abstract string) bool {
	key := c.base().canonicalLocked(abstract)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[key]
	return ok
}

// Forget drops the binding and any cached instance of abstract.
func (c *Container) Forget(abstract string) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	key := root.canonical(abstract)
	delete(root.bindings, key)
	delete(root.instances, key)
}

// Flush resets the entire container.
func (c *Container) Flush() {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.bindings = make(map[string]*binding)
	root.instances = make(map[string]any)
	root.aliases = make(map[string]string)
	root.afterResolving = nil
}

// Bindings returns a copy of all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	root := c.base()
	root.mu.RLock()
	defer root.mu.RUnlock()
	out := make([]string, 0, len(root.bindings)+len(root.instances))
	for k := range root.bindings {
		out = append(out, k)
	}
	for k := range root.instances {
		if _, already := root.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// markPlaceholder flags the current binding of abstract as a deferred
// placeholder. Any later Register replaces the binding and clears the flag.
func (c *Container) markPlaceholder(abstract string) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	if b, ok := root.bindings[root.canonical(abstract)]; ok {
		b.deferred = true
	}
}

// placeholder reports whether abstract is still bound to a deferred
// placeholder.
func (c *Container) placeholder(abstract string) bool {
	root := c.base()
	root.mu.RLock()
	defer root.mu.RUnlock()
	b, ok := root.bindings[root.canonical(abstract)]
	return ok && b.deferred
}

func (c *Container) canonicalLocked(abstract string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonical(abstract)
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after any abstract is built.
// Cache hits do not fire it.
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	root := c.base()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.afterResolving = append(root.afterResolving, cb)
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	container.TypeKey(&sales.Order{}) // "github.com/acme/sales.Order"
func TypeKey(v any) string {
	return TypeKeyOf(reflect.TypeOf(v))
}

// TypeKeyOf is TypeKey for a reflect.Type. Pointer types are keyed by their
// element, so T and *T share a key.
func TypeKeyOf(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and asserts the result to T, panicking on a mismatch.
//
//	db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// ResolveOK is like Resolve but returns (T, false) instead of panicking,
// both when nothing is bound and when the bound value is not a T.
func ResolveOK[T any](c *Container, abstract string) (T, bool) {
	instance, ok := c.Lookup(abstract)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
