package resolver

import "errors"

// Failure kinds shared by the resolver, the factories and the decoders.
// Errors returned by this module wrap exactly one of them; match with
// errors.Is.
var (
	// ErrEntityNotFound: a factory could not resolve an entity name.
	ErrEntityNotFound = errors.New("entity type not found")
	// ErrModuleNotFound: a named module scope does not exist.
	ErrModuleNotFound = errors.New("module not found")
	// ErrInvalidShape: the shape is not an open, single-parameter definition.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrNotRegistered: the container has no binding for the closed shape.
	ErrNotRegistered = errors.New("not registered")
	// ErrTypeNotFound: a decoder could not resolve a type name.
	ErrTypeNotFound = errors.New("type not found")
	// ErrDecodeFailed: the payload could not be decoded, or decoded to null.
	ErrDecodeFailed = errors.New("decode failed")
)
