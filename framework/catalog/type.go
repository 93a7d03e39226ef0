package catalog

import (
	"path"
	"reflect"
	"strings"
)

// DefaultSchema is the relational schema assumed when a type declares none.
const DefaultSchema = "dbo"

// Identifier names a type by its short name, optionally narrowed by
// namespace and module. Empty fields are "not given".
type Identifier struct {
	Name      string
	Namespace string
	Module    string
}

// Matches reports whether t satisfies id. Every comparison is
// case-insensitive; Namespace and Module only take part when non-empty.
func (id Identifier) Matches(t *Type) bool {
	if !strings.EqualFold(t.Name, id.Name) {
		return false
	}
	if id.Namespace != "" && !strings.EqualFold(t.Namespace, id.Namespace) {
		return false
	}
	if id.Module != "" && !strings.EqualFold(t.Module, id.Module) {
		return false
	}
	return true
}

// Type is a registered, concrete Go type. It is read-only once registered.
type Type struct {
	Name      string
	Namespace string
	Module    string

	// Table and Schema locate the type in a relational store.
	Table  string
	Schema string

	rtype reflect.Type
}

// TypeOption customises a Type built by Of.
type TypeOption func(*Type)

// WithName overrides the Go type name.
func WithName(name string) TypeOption {
	return func(t *Type) { t.Name = name }
}

// WithNamespace overrides the namespace (the package name by default).
func WithNamespace(ns string) TypeOption {
	return func(t *Type) { t.Namespace = ns }
}

// WithTable sets the table name (the type name by default).
func WithTable(table string) TypeOption {
	return func(t *Type) { t.Table = table }
}

// WithSchema sets the schema (DefaultSchema by default).
func WithSchema(schema string) TypeOption {
	return func(t *Type) { t.Schema = schema }
}

// Of describes T. Pointer types describe their element, so Of[*Order] and
// Of[Order] are the same entry.
//
//	cat.MustRegister("Sales", catalog.Of[sales.Order](), catalog.Of[sales.Customer]())
func Of[T any](opts ...TypeOption) *Type {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// TypeFor is Of for a reflect.Type.
func TypeFor(rt reflect.Type, opts ...TypeOption) *Type {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	t := &Type{
		Name:      rt.Name(),
		Namespace: path.Base(rt.PkgPath()),
		Schema:    DefaultSchema,
		rtype:     rt,
	}
	if rt.PkgPath() == "" {
		t.Namespace = ""
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.Table == "" {
		t.Table = t.Name
	}
	return t
}

// FullName is Namespace + "." + Name, or just Name without a namespace.
func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Reflect returns the underlying Go type (never a pointer).
func (t *Type) Reflect() reflect.Type { return t.rtype }

// New returns a pointer to a new zero value of the type.
func (t *Type) New() any {
	return reflect.New(t.rtype).Interface()
}

func (t *Type) String() string {
	if t.Module == "" {
		return t.FullName()
	}
	return t.Module + ":" + t.FullName()
}
