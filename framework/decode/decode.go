// Package decode turns a payload plus a type (a Go type, or a name resolved
// through the catalog) into a value of that type.
//
// A payload that does not parse, or that parses to null, fails with
// resolver.ErrDecodeFailed.
package decode

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/metrics"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// Setting configures a Decoder at construction.
type Setting func(*Decoder)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Setting {
	return func(d *Decoder) { d.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Setting {
	return func(d *Decoder) { d.metrics = r }
}

// Decoder decodes payloads with one codec. It is safe for concurrent use.
type Decoder struct {
	codec    Codec
	resolver *resolver.Resolver
	log      logger.Logger
	metrics  metrics.Recorder
}

// New returns a decoder. r may be nil when only Decode and DecodeType are
// used.
func New(codec Codec, r *resolver.Resolver, settings ...Setting) *Decoder {
	d := &Decoder{codec: codec, resolver: r, log: logger.Nop{}, metrics: metrics.Nop{}}
	for _, s := range settings {
		s(d)
	}
	return d
}

// Codec returns the decoder's codec.
func (d *Decoder) Codec() Codec { return d.codec }

// Encode marshals v with the decoder's codec.
func (d *Decoder) Encode(v any) ([]byte, error) {
	return d.codec.Marshal(v)
}

// Decode decodes payload into a T.
func Decode[T any](d *Decoder, payload []byte, opts ...Option) (T, error) {
	var holder *T
	err := d.unmarshal(payload, &holder, reflect.TypeOf((*T)(nil)).Elem(), opts)
	d.metrics.Observe("decode.type", err)
	if err != nil {
		var zero T
		return zero, err
	}
	return *holder, nil
}

// DecodeType decodes payload into a new value of rt and returns a pointer to
// it. Pointer types are unwrapped first.
func (d *Decoder) DecodeType(payload []byte, rt reflect.Type, opts ...Option) (any, error) {
	v, err := d.decodeType(payload, rt, opts)
	d.metrics.Observe("decode.type", err)
	return v, err
}

// DecodeName resolves typeName across all modules and decodes payload into
// it. An unresolvable name fails with ErrTypeNotFound.
func (d *Decoder) DecodeName(payload []byte, typeName, namespace string, opts ...Option) (any, error) {
	v, err := d.decodeName(payload, typeName, namespace, opts)
	d.metrics.Observe("decode.name", err)
	return v, err
}

// DecodeInModule is DecodeName restricted to module. A missing module fails
// with ErrModuleNotFound before anything is decoded.
func (d *Decoder) DecodeInModule(payload []byte, typeName, module, namespace string, opts ...Option) (any, error) {
	v, err := d.decodeInModule(payload, typeName, module, namespace, opts)
	d.metrics.Observe("decode.module", err)
	return v, err
}

func (d *Decoder) decodeName(payload []byte, typeName, namespace string, opts []Option) (any, error) {
	if d.resolver == nil {
		return nil, fmt.Errorf("%w: %q (no catalog)", resolver.ErrTypeNotFound, typeName)
	}
	t, ok := d.resolver.TypeByName(typeName, namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %q", resolver.ErrTypeNotFound, typeName)
	}
	return d.decodeType(payload, t.Reflect(), opts)
}

func (d *Decoder) decodeInModule(payload []byte, typeName, module, namespace string, opts []Option) (any, error) {
	if d.resolver == nil || !d.resolver.HasModule(module) {
		return nil, fmt.Errorf("%w: %q", resolver.ErrModuleNotFound, module)
	}
	t, ok := d.resolver.TypeByNameInModule(typeName, module, namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %q in module %s", resolver.ErrTypeNotFound, typeName, module)
	}
	return d.decodeType(payload, t.Reflect(), opts)
}

func (d *Decoder) decodeType(payload []byte, rt reflect.Type, opts []Option) (any, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: nil type", resolver.ErrDecodeFailed)
	}
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	holder := reflect.New(reflect.PointerTo(rt))
	if err := d.unmarshal(payload, holder.Interface(), rt, opts); err != nil {
		return nil, err
	}
	return holder.Elem().Interface(), nil
}

// unmarshal decodes into holder, a **T. A nil *T afterwards means the
// payload was null.
func (d *Decoder) unmarshal(payload []byte, holder any, rt reflect.Type, opts []Option) error {
	if err := d.codec.Unmarshal(payload, holder, buildOptions(opts)); err != nil {
		d.log.Debugf("decode %s as %s: %v", rt, d.codec.Name(), err)
		return fmt.Errorf("%w: %s as %s: %v", resolver.ErrDecodeFailed, rt, d.codec.Name(), err)
	}
	if reflect.ValueOf(holder).Elem().IsNil() {
		return fmt.Errorf("%w: %s payload is null", resolver.ErrDecodeFailed, rt)
	}
	return nil
}

// Canonical returns v as RFC 8785 canonical JSON.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(raw)
}
