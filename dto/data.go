// Package dto implements the transform policy layered over the binder:
// deferred materialization of bound payloads, partial patch updates onto
// existing instances, and outbound serialization to wire-shaped mappings.
package dto

import (
	"reflect"

	"github.com/wirebind/wirebind/binder"
	"github.com/wirebind/wirebind/schema"
)

// Data carries a validated payload for T before materialization, so callers
// can inspect it as builtins, construct a fresh instance, or patch an
// existing one.
type Data[T any] struct {
	values      map[string]any
	descriptors []schema.FieldDescriptor
}

// Bind runs a binding pass for T against the sources and wraps the bound
// values. On validation failure the error is a *binder.BindFailure.
func Bind[T any](b *binder.Binder, src binder.Sources, cfg *schema.Config) (*Data[T], error) {
	descriptors, err := schema.Resolve(reflect.TypeFor[T](), cfg)
	if err != nil {
		return nil, err
	}
	values, err := b.BindValues(descriptors, src)
	if err != nil {
		return nil, err
	}
	return &Data[T]{values: values, descriptors: descriptors}, nil
}

// FromValues wraps already-bound values for T. Intended for tests and for
// callers that run the binder themselves.
func FromValues[T any](values map[string]any, cfg *schema.Config) (*Data[T], error) {
	descriptors, err := schema.Resolve(reflect.TypeFor[T](), cfg)
	if err != nil {
		return nil, err
	}
	return &Data[T]{values: values, descriptors: descriptors}, nil
}

// AsBuiltins returns the bound values as a plain mapping keyed by declared
// field name, with nested structures as nested mappings. The mapping is
// shared with the Data value and must be treated as read-only.
func (d *Data[T]) AsBuiltins() map[string]any {
	return d.values
}

// Has reports whether the named top-level field was present in the input.
func (d *Data[T]) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// CreateInstance materializes a fresh T from the bound values, applying
// declared defaults for absent optional fields.
func (d *Data[T]) CreateInstance() (T, error) {
	var out T
	err := binder.Materialize(&out, d.descriptors, d.values)
	return out, err
}

// ApplyPatch overwrites only the fields present in the bound values,
// leaving every other field of existing untouched, and returns existing.
// An empty payload is a no-op.
func (d *Data[T]) ApplyPatch(existing *T) (*T, error) {
	for i := range d.descriptors {
		desc := &d.descriptors[i]
		if !desc.Bindable() {
			continue
		}
		v, ok := d.values[desc.Name]
		if !ok {
			continue
		}
		if err := binder.AssignField(existing, desc, v); err != nil {
			return nil, err
		}
	}
	return existing, nil
}
