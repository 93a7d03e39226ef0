// Package resolver turns a type name, optionally narrowed by namespace or
// module, into exactly one catalog entry.
//
// Resolution never fails with an error: absence is reported with a false
// second result and turned into a failure kind (see errors.go) by the
// caller that needed a type. When several types share a name, the first one
// in catalog order wins; pass a module and/or namespace to disambiguate.
package resolver

import "github.com/km-arc/go-resolver/framework/catalog"

// Catalog is the lookup surface the resolver needs; *catalog.Catalog
// implements it.
type Catalog interface {
	FindByName(id catalog.Identifier) (*catalog.Type, bool)
	FindByNameInModule(id catalog.Identifier, module string) (*catalog.Type, bool)
	FindByFullName(fullName string) (*catalog.Type, bool)
	Module(name string) (*catalog.Module, bool)
}

// Resolver resolves names against a Catalog. It holds no state of its own
// and is safe for concurrent use when the catalog is.
type Resolver struct {
	catalog Catalog
}

// New returns a resolver over cat.
func New(cat Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

// TypeByName resolves name across all modules. An empty namespace matches
// any namespace.
func (r *Resolver) TypeByName(name, namespace string) (*catalog.Type, bool) {
	return r.catalog.FindByName(catalog.Identifier{Name: name, Namespace: namespace})
}

// TypeByNameInModule resolves name inside module only. It reports false
// both when the module is missing and when the module has no such type;
// use HasModule to tell the two apart.
func (r *Resolver) TypeByNameInModule(name, module, namespace string) (*catalog.Type, bool) {
	return r.catalog.FindByNameInModule(catalog.Identifier{Name: name, Namespace: namespace}, module)
}

// TypeByFullName resolves a "namespace.Name" string.
func (r *Resolver) TypeByFullName(fullName string) (*catalog.Type, bool) {
	return r.catalog.FindByFullName(fullName)
}

// HasModule reports whether module exists in the catalog.
func (r *Resolver) HasModule(module string) bool {
	_, ok := r.catalog.Module(module)
	return ok
}

// Resolve picks TypeByName or TypeByNameInModule depending on whether
// id.Module is set.
func (r *Resolver) Resolve(id catalog.Identifier) (*catalog.Type, bool) {
	if id.Module != "" {
		return r.TypeByNameInModule(id.Name, id.Module, id.Namespace)
	}
	return r.TypeByName(id.Name, id.Namespace)
}
