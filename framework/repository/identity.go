package repository

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// IDOf returns the identity of entity: the field tagged `registry:"id"`,
// else the field named ID or Id.
func IDOf(entity any) (any, error) {
	v := reflect.Indirect(reflect.ValueOf(entity))
	f, ok := idField(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoIdentity, entity)
	}
	return f.Interface(), nil
}

// KeyOf formats an id the way stores key entities, so 1, int64(1) and "1"
// address the same entity.
func KeyOf(id any) string {
	return fmt.Sprint(id)
}

// EnsureID assigns a new UUID when the entity's id is an empty string. It
// returns the (possibly updated) entity. Other id kinds are left alone.
func EnsureID[T any](entity T) (T, error) {
	v := reflect.ValueOf(&entity).Elem()
	target := v
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return entity, fmt.Errorf("%w: nil %T", ErrNoIdentity, entity)
		}
		target = v.Elem()
	}
	f, ok := idField(target)
	if !ok {
		return entity, fmt.Errorf("%w: %T", ErrNoIdentity, entity)
	}
	if f.Kind() == reflect.String && f.String() == "" && f.CanSet() {
		f.SetString(uuid.NewString())
	}
	return entity, nil
}

func idField(v reflect.Value) (reflect.Value, bool) {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tag, ok := t.Field(i).Tag.Lookup("registry"); ok && strings.EqualFold(tag, "id") {
			return v.Field(i), true
		}
	}
	for _, name := range []string{"ID", "Id"} {
		if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
			return v.FieldByIndex(sf.Index), true
		}
	}
	return reflect.Value{}, false
}
