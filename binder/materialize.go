package binder

import (
	"fmt"
	"reflect"

	"github.com/wirebind/wirebind/internal/reflection"
	"github.com/wirebind/wirebind/schema"
)

// Materialize assigns bound values onto target, a non-nil pointer to a
// struct matching the descriptor set. Fields absent from values fall back
// to their declared default; a required bindable field with neither value
// nor default is a ConfigurationError, since a successful bind pass cannot
// produce that state.
func Materialize(target any, descriptors []schema.FieldDescriptor, values map[string]any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("materialize target must be a non-nil pointer, got %T", target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("materialize target must point to a struct, got %s", rv.Kind())
	}
	return assignFields(rv, descriptors, values)
}

// AssignField writes one bound value onto the matching field of target, a
// non-nil struct pointer. Used for patch-style partial updates where only
// present fields are overwritten.
func AssignField(target any, desc *schema.FieldDescriptor, v any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("patch target must be a non-nil pointer, got %T", target)
	}
	return assignValue(rv.Elem().Field(desc.Index), desc, v)
}

func assignFields(rv reflect.Value, descriptors []schema.FieldDescriptor, values map[string]any) error {
	for i := range descriptors {
		desc := &descriptors[i]
		fv := rv.Field(desc.Index)

		v, ok := values[desc.Name]
		if !ok {
			if desc.HasDefault {
				if err := assignValue(fv, desc, desc.Default); err != nil {
					return err
				}
				continue
			}
			if !desc.Optional && desc.Bindable() {
				return &schema.ConfigurationError{
					Category: schema.CategoryInvalidConfig,
					Struct:   reflection.TypeName(rv.Type()),
					Field:    desc.Name,
					Message:  "required field has no bound value and no default",
				}
			}
			continue
		}
		if err := assignValue(fv, desc, v); err != nil {
			return err
		}
	}
	return nil
}

// assignValue writes one bound value into a struct field, allocating
// through pointers and recursing for nested structures and containers.
func assignValue(fv reflect.Value, desc *schema.FieldDescriptor, v any) error {
	if v == nil {
		// explicit null: pointers stay nil, everything else keeps its zero
		return nil
	}
	if desc.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	return assignSpec(fv, &desc.Spec, v)
}

func assignSpec(fv reflect.Value, spec *schema.TypeSpec, v any) error {
	switch spec.Tag {
	case schema.TagStruct:
		nested, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("expected nested values mapping for %s, got %T", spec.GoType, v)
		}
		return assignFields(fv, spec.Fields, nested)
	case schema.TagSlice:
		seq, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected sequence values for %s, got %T", spec.GoType, v)
		}
		out := reflect.MakeSlice(spec.GoType, len(seq), len(seq))
		for i, elem := range seq {
			if err := assignElem(out.Index(i), spec.Elem, elem); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	case schema.TagMap:
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("expected mapping values for %s, got %T", spec.GoType, v)
		}
		out := reflect.MakeMapWithSize(spec.GoType, len(m))
		for k, elem := range m {
			ev := reflect.New(spec.GoType.Elem()).Elem()
			if err := assignElem(ev, spec.Elem, elem); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(spec.GoType.Key()), ev)
		}
		fv.Set(out)
		return nil
	case schema.TagAny:
		fv.Set(reflect.ValueOf(v))
		return nil
	default:
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(fv.Type()) {
			return fmt.Errorf("cannot assign %T to %s", v, fv.Type())
		}
		fv.Set(rv)
		return nil
	}
}

// assignElem handles container elements, which may themselves be pointers.
func assignElem(fv reflect.Value, spec *schema.TypeSpec, v any) error {
	if v == nil {
		return nil
	}
	if fv.Kind() == reflect.Pointer {
		fv.Set(reflect.New(fv.Type().Elem()))
		fv = fv.Elem()
	}
	return assignSpec(fv, spec, v)
}
