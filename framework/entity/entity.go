// Package entity manipulates catalog entities addressed by table and schema
// rather than by Go type: create one from a map of values, update it, delete
// it, fetch it by id. Persistence goes through the repository registered for
// the entity's type.
package entity

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// Types enumerates catalog entries; *catalog.Catalog implements it.
type Types interface {
	All() iter.Seq[*catalog.Type]
}

// Repositories hands out the untyped repository for a type;
// *factory.SpecificationRepositoryFactory implements it.
type Repositories interface {
	ForType(rt reflect.Type) (repository.Any, error)
}

// Service is safe for concurrent use when its dependencies are.
type Service struct {
	types Types
	repos Repositories
	log   logger.Logger
}

// New returns an entity service. A nil log discards output.
func New(types Types, repos Repositories, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{types: types, repos: repos, log: log}
}

// EntityType finds the type stored in table. The table name is matched
// case-insensitively; an empty schema matches any schema.
func (s *Service) EntityType(table, schema string) (*catalog.Type, bool) {
	for t := range s.types.All() {
		if !strings.EqualFold(t.Table, table) {
			continue
		}
		if schema == "" || strings.EqualFold(t.Schema, schema) {
			return t, true
		}
	}
	return nil, false
}

// CreateEntity returns a pointer to a new zero value of t.
func (s *Service) CreateEntity(t *catalog.Type) any {
	return t.New()
}

// SetPropertyValue sets the exported field name of the struct entity points
// to. Unknown fields, unexported fields and values of an incompatible type
// are skipped.
func (s *Service) SetPropertyValue(entity any, name string, value any) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return
	}
	f := v.Elem().FieldByName(name)
	if !f.IsValid() || !f.CanSet() || value == nil {
		return
	}
	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(f.Type()):
		f.Set(val)
	case numeric(val.Kind()) && numeric(f.Kind()):
		f.Set(val.Convert(f.Type()))
	default:
		s.log.Debugf("skip %s: %T is not assignable to %s", name, value, f.Type())
	}
}

// SetValues copies values onto entity, matching keys against json tags (or
// field names). Nil values are skipped so they never clear a field.
func (s *Service) SetValues(entity any, values map[string]any) error {
	input := make(map[string]any, len(values))
	for k, v := range values {
		if v != nil {
			input[k] = v
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           entity,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("entity: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("entity: set values on %T: %w", entity, err)
	}
	return nil
}

// AddEntity creates an entity of the type stored in table, fills it from
// values and adds it. It returns the stored entity.
func (s *Service) AddEntity(ctx context.Context, table, schema string, values map[string]any) (any, error) {
	t, repo, err := s.lookup(table, schema)
	if err != nil {
		return nil, err
	}
	entity := s.CreateEntity(t)
	if err := s.SetValues(entity, values); err != nil {
		return nil, err
	}
	added, err := repo.Add(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.log.Infof("added %s", t)
	return added, nil
}

// UpdateEntity applies values to the entity with id and stores it.
func (s *Service) UpdateEntity(ctx context.Context, table, schema string, id any, values map[string]any) error {
	t, repo, err := s.lookup(table, schema)
	if err != nil {
		return err
	}
	current, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	entity := s.CreateEntity(t)
	cv := reflect.ValueOf(current)
	for cv.Kind() == reflect.Ptr {
		if cv.IsNil() {
			return fmt.Errorf("%w: id %v of %s is nil", repository.ErrNotFound, id, t)
		}
		cv = cv.Elem()
	}
	reflect.ValueOf(entity).Elem().Set(cv)
	if err := s.SetValues(entity, values); err != nil {
		return err
	}
	return repo.Update(ctx, entity)
}

// DeleteEntity removes the entity with id.
func (s *Service) DeleteEntity(ctx context.Context, table, schema string, id any) error {
	_, repo, err := s.lookup(table, schema)
	if err != nil {
		return err
	}
	current, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return repo.Delete(ctx, current)
}

// GetEntityByID returns the entity with id.
func (s *Service) GetEntityByID(ctx context.Context, table, schema string, id any) (any, error) {
	_, repo, err := s.lookup(table, schema)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *Service) lookup(table, schema string) (*catalog.Type, repository.Any, error) {
	t, ok := s.EntityType(table, schema)
	if !ok {
		return nil, nil, fmt.Errorf("%w: table %q schema %q", resolver.ErrEntityNotFound, table, schema)
	}
	repo, err := s.repos.ForType(t.Reflect())
	if err != nil {
		return nil, nil, err
	}
	return t, repo, nil
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
