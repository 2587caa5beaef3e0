package binder

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/wirebind/wirebind/internal/coerce"
	"github.com/wirebind/wirebind/schema"
)

const msgFieldRequired = "field required"

// mismatch renders the canonical type-mismatch message.
func mismatch(expected, got string) string {
	return fmt.Sprintf("Expected `%s`, got `%s`", expected, got)
}

// wireTypeName names a decoded JSON value the way clients see it. Integral
// floats read as ints since JSON does not distinguish the two.
func wireTypeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "str"
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return "int"
		}
		return "float"
	case int, int64:
		return "int"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return reflect.TypeOf(v).Kind().String()
	}
}

// coerceString converts a raw string from a query/path/header/cookie bucket
// into the declared scalar type. Containers never reach here; the resolver
// restricts non-body sources to scalars and scalar sequences.
func coerceString(spec *schema.TypeSpec, raw, key string) (any, []ValidationError) {
	fail := func() []ValidationError {
		return []ValidationError{{Key: key, Message: mismatch(spec.Tag.String(), "str")}}
	}

	switch spec.Tag {
	case schema.TagString:
		return reflect.ValueOf(raw).Convert(spec.GoType).Interface(), nil
	case schema.TagBytes:
		return reflect.ValueOf([]byte(raw)).Convert(spec.GoType).Interface(), nil
	case schema.TagInt:
		n, err := strconv.ParseInt(raw, 10, spec.GoType.Bits())
		if err != nil {
			return nil, fail()
		}
		return reflect.ValueOf(n).Convert(spec.GoType).Interface(), nil
	case schema.TagUint:
		n, err := strconv.ParseUint(raw, 10, spec.GoType.Bits())
		if err != nil {
			return nil, fail()
		}
		return reflect.ValueOf(n).Convert(spec.GoType).Interface(), nil
	case schema.TagFloat:
		f, err := strconv.ParseFloat(raw, spec.GoType.Bits())
		if err != nil {
			return nil, fail()
		}
		return reflect.ValueOf(f).Convert(spec.GoType).Interface(), nil
	case schema.TagBool:
		b, err := coerce.Bool(raw)
		if err != nil {
			return nil, fail()
		}
		return reflect.ValueOf(b).Convert(spec.GoType).Interface(), nil
	case schema.TagTime:
		t, err := coerce.Time(raw)
		if err != nil {
			return nil, fail()
		}
		return t, nil
	case schema.TagUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fail()
		}
		return id, nil
	case schema.TagAny:
		return raw, nil
	default:
		return nil, fail()
	}
}

// coerceJSON converts a decoded JSON value into the declared type,
// recursing into sequences, mappings, and nested structures. All failures
// along the subtree are collected, never just the first.
//
//nolint:gocyclo // One arm per semantic type tag.
func (b *Binder) coerceJSON(spec *schema.TypeSpec, v any, key string) (any, []ValidationError) {
	fail := func() []ValidationError {
		return []ValidationError{{Key: key, Message: mismatch(spec.Tag.String(), wireTypeName(v))}}
	}

	switch spec.Tag {
	case schema.TagString:
		s, ok := v.(string)
		if !ok {
			return nil, fail()
		}
		return reflect.ValueOf(s).Convert(spec.GoType).Interface(), nil
	case schema.TagBytes:
		s, ok := v.(string)
		if !ok {
			return nil, fail()
		}
		return reflect.ValueOf([]byte(s)).Convert(spec.GoType).Interface(), nil
	case schema.TagInt:
		n, ok := asInt(v)
		if !ok || reflect.New(spec.GoType).Elem().OverflowInt(n) {
			return nil, fail()
		}
		return reflect.ValueOf(n).Convert(spec.GoType).Interface(), nil
	case schema.TagUint:
		n, ok := asInt(v)
		if !ok || n < 0 || reflect.New(spec.GoType).Elem().OverflowUint(uint64(n)) {
			return nil, fail()
		}
		return reflect.ValueOf(uint64(n)).Convert(spec.GoType).Interface(), nil
	case schema.TagFloat:
		f, ok := asFloat(v)
		if !ok {
			return nil, fail()
		}
		return reflect.ValueOf(f).Convert(spec.GoType).Interface(), nil
	case schema.TagBool:
		bv, ok := v.(bool)
		if !ok {
			return nil, fail()
		}
		return reflect.ValueOf(bv).Convert(spec.GoType).Interface(), nil
	case schema.TagTime:
		s, ok := v.(string)
		if !ok {
			return nil, fail()
		}
		t, err := coerce.Time(s)
		if err != nil {
			return nil, fail()
		}
		return t, nil
	case schema.TagUUID:
		s, ok := v.(string)
		if !ok {
			return nil, fail()
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fail()
		}
		return id, nil
	case schema.TagSlice:
		seq, ok := v.([]any)
		if !ok {
			return nil, fail()
		}
		out := make([]any, 0, len(seq))
		var errs []ValidationError
		for i, elem := range seq {
			ev, eerrs := b.coerceJSON(spec.Elem, elem, key+"."+strconv.Itoa(i))
			if len(eerrs) > 0 {
				errs = append(errs, eerrs...)
				continue
			}
			out = append(out, ev)
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil
	case schema.TagMap:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fail()
		}
		out := make(map[string]any, len(m))
		var errs []ValidationError
		keys := make([]string, 0, len(m))
		for mk := range m {
			keys = append(keys, mk)
		}
		sort.Strings(keys)
		for _, mk := range keys {
			ev, eerrs := b.coerceJSON(spec.Elem, m[mk], key+"."+mk)
			if len(eerrs) > 0 {
				errs = append(errs, eerrs...)
				continue
			}
			out[mk] = ev
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return out, nil
	case schema.TagStruct:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fail()
		}
		return b.bindNested(spec.Fields, m, key)
	case schema.TagAny:
		return v, nil
	default:
		return nil, fail()
	}
}

// asInt accepts decoded JSON integers: float64 with an integral value, or
// the integer types some decoders produce directly. Values outside the
// int64 range are rejected before conversion, which would otherwise wrap.
func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
