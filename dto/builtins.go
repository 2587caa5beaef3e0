package dto

import (
	"fmt"
	"reflect"

	"github.com/wirebind/wirebind/schema"
)

// ToBuiltins serializes a domain instance into a wire-shaped plain mapping,
// honoring the same rename and exclusion rules as inbound binding: keys are
// wire names at every level, excluded and private fields never appear.
func ToBuiltins(instance any, cfg *schema.Config) (map[string]any, error) {
	rv := reflect.Indirect(reflect.ValueOf(instance))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("instance must be a struct or struct pointer, got %T", instance)
	}
	descriptors, err := schema.Resolve(rv.Type(), cfg)
	if err != nil {
		return nil, err
	}
	return builtinsMap(rv, descriptors), nil
}

func builtinsMap(rv reflect.Value, descriptors []schema.FieldDescriptor) map[string]any {
	out := make(map[string]any, len(descriptors))
	for i := range descriptors {
		desc := &descriptors[i]
		if !desc.Visible() {
			continue
		}
		fv := rv.Field(desc.Index)
		if desc.Pointer {
			if fv.IsNil() {
				out[desc.WireName] = nil
				continue
			}
			fv = fv.Elem()
		}
		out[desc.WireName] = builtinsValue(fv, &desc.Spec)
	}
	return out
}

func builtinsValue(fv reflect.Value, spec *schema.TypeSpec) any {
	switch spec.Tag {
	case schema.TagStruct:
		return builtinsMap(fv, spec.Fields)
	case schema.TagSlice:
		out := make([]any, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			out[i] = builtinsElem(fv.Index(i), spec.Elem)
		}
		return out
	case schema.TagMap:
		out := make(map[string]any, fv.Len())
		iter := fv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = builtinsElem(iter.Value(), spec.Elem)
		}
		return out
	default:
		return fv.Interface()
	}
}

func builtinsElem(fv reflect.Value, spec *schema.TypeSpec) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return builtinsValue(fv, spec)
}
