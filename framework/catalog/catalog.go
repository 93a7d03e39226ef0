package catalog

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Module is a named, ordered group of types.
type Module struct {
	name  string
	types []*Type
}

// Name returns the module name as registered.
func (m *Module) Name() string { return m.name }

// Types returns a copy of the module's types in declaration order.
func (m *Module) Types() []*Type { return slices.Clone(m.types) }

// Catalog is an explicit registry of the types visible to the resolver.
// Types are registered once at startup; lookups scan modules in
// registration order, then types in declaration order, and the first match
// wins.
//
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	modules []*Module
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Register adds types to module, creating the module on first use. Module
// names are case-insensitive. The same type name may live in several
// modules, but a full name may only appear once per module.
func (c *Catalog) Register(module string, types ...*Type) error {
	if module == "" {
		return fmt.Errorf("catalog: module name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.index(module)
	var current []*Type
	name := module
	if idx >= 0 {
		current = c.modules[idx].types
		name = c.modules[idx].name
	}

	pending := make([]*Type, 0, len(types))
	for _, t := range types {
		if t == nil || t.rtype == nil || t.Name == "" {
			return fmt.Errorf("catalog: cannot register an unnamed type in module %q", module)
		}
		for _, existing := range slices.Concat(current, pending) {
			if strings.EqualFold(existing.FullName(), t.FullName()) {
				return fmt.Errorf("catalog: type %q is already registered in module %q", t.FullName(), name)
			}
		}
		registered := *t
		registered.Module = name
		pending = append(pending, &registered)
	}

	// Modules are replaced, never mutated.
	m := &Module{name: name, types: slices.Concat(current, pending)}
	if idx >= 0 {
		c.modules[idx] = m
	} else {
		c.modules = append(c.modules, m)
	}
	return nil
}

// MustRegister is Register that panics on error.
func (c *Catalog) MustRegister(module string, types ...*Type) {
	if err := c.Register(module, types...); err != nil {
		panic(err)
	}
}

// index returns the position of the named module, or -1 (must hold mu).
func (c *Catalog) index(name string) int {
	return slices.IndexFunc(c.modules, func(m *Module) bool {
		return strings.EqualFold(m.name, name)
	})
}

// Modules returns the registered modules in registration order.
func (c *Catalog) Modules() []*Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.modules)
}

// Module looks a module up by name, case-insensitively.
func (c *Catalog) Module(name string) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(name); i >= 0 {
		return c.modules[i], true
	}
	return nil, false
}

// All yields every registered type, module by module. The sequence is a
// snapshot taken when iteration starts and can be ranged over repeatedly.
func (c *Catalog) All() iter.Seq[*Type] {
	return func(yield func(*Type) bool) {
		for _, m := range c.Modules() {
			for _, t := range m.Types() {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// InModule yields the types of one module, reporting false when the module
// does not exist.
func (c *Catalog) InModule(name string) (iter.Seq[*Type], bool) {
	m, ok := c.Module(name)
	if !ok {
		return nil, false
	}
	return slices.Values(m.Types()), true
}

// FindByName returns the first type matching id across all modules.
func (c *Catalog) FindByName(id Identifier) (*Type, bool) {
	return first(c.All(), id.Matches)
}

// FindByNameInModule returns the first type of module matching id. It
// reports false when the module does not exist.
func (c *Catalog) FindByNameInModule(id Identifier, module string) (*Type, bool) {
	types, ok := c.InModule(module)
	if !ok {
		return nil, false
	}
	return first(types, id.Matches)
}

// FindByFullName returns the first type whose FullName equals fullName,
// case-insensitively.
func (c *Catalog) FindByFullName(fullName string) (*Type, bool) {
	return first(c.All(), func(t *Type) bool {
		return strings.EqualFold(t.FullName(), fullName)
	})
}

// FindByReflect returns the first entry describing rt (or its pointer
// element).
func (c *Catalog) FindByReflect(rt reflect.Type) (*Type, bool) {
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return first(c.All(), func(t *Type) bool { return t.rtype == rt })
}

func first(types iter.Seq[*Type], match func(*Type) bool) (*Type, bool) {
	for t := range types {
		if match(t) {
			return t, true
		}
	}
	return nil, false
}
