package catalog

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of t's Go type, titled with its full name.
func Schema(t *Type) ([]byte, error) {
	if t == nil || t.rtype == nil {
		return nil, fmt.Errorf("catalog: cannot generate a schema for an unregistered type")
	}

	r := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	s := r.ReflectFromType(t.rtype)
	s.Title = t.FullName()
	if t.Module != "" {
		s.Description = "module " + t.Module
	}

	out, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("catalog: schema for %s: %w", t, err)
	}
	return out, nil
}
