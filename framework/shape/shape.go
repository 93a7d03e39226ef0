// Package shape models generic service definitions such as "RepositoryBase
// of T" without runtime generic instantiation.
//
// An open Shape is closed over a concrete Go type, producing a container
// key. Constructors for every closed shape are registered in the container
// up front with Provide, so resolving "RepositoryBase of Order" is a plain
// lookup of "RepositoryBase[github.com/acme/sales.Order]".
package shape

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// Shape is a named generic definition with a fixed number of type
// parameters. The zero value is not a valid shape.
type Shape struct {
	name   string
	params int
	args   []reflect.Type
}

// Open returns an open shape with a single type parameter.
func Open(name string) Shape {
	return OpenN(name, 1)
}

// OpenN returns an open shape with n type parameters. Factories only accept
// shapes with one parameter; OpenN exists so callers can describe others.
func OpenN(name string, n int) Shape {
	return Shape{name: name, params: n}
}

// Name returns the definition name.
func (s Shape) Name() string { return s.name }

// Arity returns the number of type parameters.
func (s Shape) Arity() int { return s.params }

// Args returns the type arguments of a closed shape.
func (s Shape) Args() []reflect.Type { return append([]reflect.Type(nil), s.args...) }

// IsOpen reports whether s is a named definition still waiting for its
// type arguments.
func (s Shape) IsOpen() bool {
	return s.name != "" && s.params > 0 && len(s.args) == 0
}

// Close binds the type arguments. Pointer arguments are replaced by their
// element, so Close(*Order) and Close(Order) are the same shape.
func (s Shape) Close(args ...reflect.Type) (Shape, error) {
	if !s.IsOpen() {
		return Shape{}, fmt.Errorf("%w: %s is not an open generic definition", resolver.ErrInvalidShape, s)
	}
	if len(args) != s.params {
		return Shape{}, fmt.Errorf("%w: %s takes %d type argument(s), got %d", resolver.ErrInvalidShape, s, s.params, len(args))
	}
	closed := Shape{name: s.name, params: s.params, args: make([]reflect.Type, len(args))}
	for i, a := range args {
		if a == nil {
			return Shape{}, fmt.Errorf("%w: nil type argument for %s", resolver.ErrInvalidShape, s)
		}
		for a.Kind() == reflect.Ptr {
			a = a.Elem()
		}
		closed.args[i] = a
	}
	return closed, nil
}

// Definition returns the open shape a closed shape was built from.
func (s Shape) Definition() Shape {
	return Shape{name: s.name, params: s.params}
}

// Key returns the container abstract for a closed shape, e.g.
// "RepositoryBase[github.com/acme/sales.Order]". Open shapes key as
// "RepositoryBase[]".
func (s Shape) Key() string {
	keys := make([]string, len(s.args))
	for i, a := range s.args {
		keys[i] = container.TypeKeyOf(a)
	}
	return s.name + "[" + strings.Join(keys, ",") + "]"
}

func (s Shape) String() string {
	if s.name == "" {
		return "<invalid shape>"
	}
	if s.IsOpen() {
		return s.name + "[" + strings.Repeat(",", s.params-1) + "]"
	}
	return s.Key()
}

// KeyFor closes s over T and returns the container key.
func KeyFor[T any](s Shape) (string, error) {
	closed, err := s.Close(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return "", err
	}
	return closed.Key(), nil
}

// Provide registers fn in c as the constructor of s closed over T.
//
//	err := shape.Provide[sales.Order](c, factory.RepositoryShape, container.Singleton,
//	    func(c *container.Container) any { return memory.New[sales.Order]() })
func Provide[T any](c *container.Container, s Shape, lifetime container.Lifetime, fn container.Factory) error {
	key, err := KeyFor[T](s)
	if err != nil {
		return err
	}
	c.Register(key, lifetime, fn)
	return nil
}
