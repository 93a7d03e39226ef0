package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// Options control a single decode.
type Options struct {
	// DisallowUnknownFields rejects payload keys with no matching field.
	DisallowUnknownFields bool
}

// Option sets a decode option.
type Option func(*Options)

// Strict rejects unknown fields.
func Strict() Option {
	return func(o *Options) { o.DisallowUnknownFields = true }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Codec is a wire format. Unmarshal decodes payload into the pointer into.
type Codec interface {
	Name() string
	Unmarshal(payload []byte, into any, opts Options) error
	Marshal(v any) ([]byte, error)
}

// CodecByName returns the built-in codec called name ("json" or "yaml").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	}
	return nil, fmt.Errorf("decode: unknown codec %q", name)
}

// ── JSON ──────────────────────────────────────────────────────────────────────

// JSON decodes with encoding/json. Numbers bound to interface fields stay
// json.Number.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Unmarshal(payload []byte, into any, opts Options) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(into); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// ── YAML ──────────────────────────────────────────────────────────────────────

// YAML decodes by converting to JSON, so struct json tags apply.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Unmarshal(payload []byte, into any, opts Options) error {
	useNumber := func(d *json.Decoder) *json.Decoder {
		d.UseNumber()
		return d
	}
	if opts.DisallowUnknownFields {
		return yaml.UnmarshalStrict(payload, into, useNumber)
	}
	return yaml.Unmarshal(payload, into, useNumber)
}

func (YAML) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }
