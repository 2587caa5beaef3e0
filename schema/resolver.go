package schema

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wirebind/wirebind/internal/coerce"
	"github.com/wirebind/wirebind/internal/reflection"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

type resolver struct {
	cfg  *Config
	root string
	// visiting tracks struct types on the current resolution path so
	// circular references fail instead of recursing forever.
	visiting map[reflect.Type]bool
}

// resolve walks a struct type and produces its ordered descriptor set.
// Callers go through Registry.Resolve, which caches the result.
func resolve(t reflect.Type, cfg *Config) ([]FieldDescriptor, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := reflection.TypeName(t)
	if len(cfg.Include) > 0 && len(cfg.Exclude) > 0 {
		return nil, newConfigError(CategoryInvalidConfig, name, "", "include and exclude are mutually exclusive")
	}
	if t.Kind() != reflect.Struct {
		return nil, newConfigError(CategoryUnsupportedType, name, "", "target must be a struct type, got "+t.Kind().String())
	}

	r := &resolver{
		cfg:      cfg,
		root:     name,
		visiting: make(map[reflect.Type]bool),
	}
	return r.structFields(t, "", 1, newPathTree(cfg.Exclude), newPathTree(cfg.Include))
}

//nolint:gocyclo // Field resolution coordinates every per-field policy; readability preferred.
func (r *resolver) structFields(t reflect.Type, path string, depth int, excl, incl *pathTree) ([]FieldDescriptor, error) {
	if depth > r.cfg.maxDepth() {
		return nil, newConfigError(CategoryMaxDepth, r.root, path, "nested structures exceed max depth "+strconv.Itoa(r.cfg.maxDepth()))
	}
	if r.visiting[t] {
		return nil, newConfigError(CategoryCircularReference, r.root, path, "circular reference to "+reflection.TypeName(t))
	}
	r.visiting[t] = true
	defer delete(r.visiting, t)

	top := path == ""
	descriptors := make([]FieldDescriptor, 0, t.NumField())
	seen := make(map[string]string) // wire name -> declared name

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}

		name, jsonExcluded := declaredName(field)
		fieldPath := joinPath(path, name)

		desc := FieldDescriptor{
			Name:    name,
			GoName:  field.Name,
			Index:   i,
			Exclude: jsonExcluded,
			Private: strings.HasPrefix(name, "_") && !r.cfg.IncludeUnderscoreFields,
		}

		for token := range strings.SplitSeq(field.Tag.Get("dto"), ",") {
			switch strings.TrimSpace(token) {
			case "readonly":
				desc.ReadOnly = true
			case "private":
				desc.Private = true
			}
		}

		terminal, subExcl := excl.lookup(name)
		if terminal {
			desc.Exclude = true
		}
		if incl != nil && !incl.contains(name) {
			desc.Exclude = true
		}
		_, subIncl := incl.lookup(name)

		source, sourceName := sourceInfo(field.Tag)
		desc.Source = source

		required, constraints := splitValidateTag(field.Tag.Get("validate"))
		desc.Constraints = constraints

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			desc.Pointer = true
			ft = ft.Elem()
		}
		spec, err := r.typeSpec(ft, fieldPath, depth, subExcl, subIncl, source)
		if err != nil {
			return nil, err
		}
		desc.Spec = spec

		if text, ok := field.Tag.Lookup("default"); ok {
			def, derr := defaultValue(spec, text)
			if derr != nil {
				return nil, newConfigError(CategoryInvalidDefault, r.root, fieldPath, derr.Error())
			}
			desc.HasDefault = true
			desc.Default = def
		}

		desc.Optional = desc.Pointer || desc.HasDefault ||
			spec.Tag == TagSlice || spec.Tag == TagMap || spec.Tag == TagAny
		if required {
			desc.Optional = false
		}
		if r.cfg.Partial && top {
			desc.Optional = true
		}

		desc.WireName = r.wireName(field, name, sourceName, top)

		if !desc.Exclude && !desc.Private {
			if other, dup := seen[desc.WireName]; dup {
				return nil, newConfigError(CategoryDuplicateWireName, r.root, fieldPath,
					"wire name "+strconv.Quote(desc.WireName)+" already used by field "+strconv.Quote(other))
			}
			seen[desc.WireName] = name
		}

		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

// typeSpec classifies a field type, recursing into containers and nested
// structures. Nested structures and mappings may only bind from the body.
func (r *resolver) typeSpec(t reflect.Type, path string, depth int, excl, incl *pathTree, source Source) (TypeSpec, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	spec := TypeSpec{GoType: t}

	switch {
	case t == timeType:
		spec.Tag = TagTime
		return spec, nil
	case t == uuidType:
		spec.Tag = TagUUID
		return spec, nil
	}

	switch t.Kind() {
	case reflect.String:
		spec.Tag = TagString
	case reflect.Bool:
		spec.Tag = TagBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		spec.Tag = TagInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		spec.Tag = TagUint
	case reflect.Float32, reflect.Float64:
		spec.Tag = TagFloat
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			spec.Tag = TagBytes
			return spec, nil
		}
		if source == SourcePath || source == SourceCookie {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "sequences cannot bind from "+string(source))
		}
		elem, err := r.typeSpec(t.Elem(), path, depth, excl, incl, source)
		if err != nil {
			return spec, err
		}
		if source != SourceBody && elem.Tag == TagStruct {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "structure sequences must bind from the body")
		}
		spec.Tag = TagSlice
		spec.Elem = &elem
	case reflect.Map:
		if source != SourceBody {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "mappings must bind from the body")
		}
		if t.Key().Kind() != reflect.String {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "mapping keys must be strings, got "+t.Key().Kind().String())
		}
		key, err := r.typeSpec(t.Key(), path, depth, nil, nil, source)
		if err != nil {
			return spec, err
		}
		elem, err := r.typeSpec(t.Elem(), path, depth, excl, incl, source)
		if err != nil {
			return spec, err
		}
		spec.Tag = TagMap
		spec.Key = &key
		spec.Elem = &elem
	case reflect.Struct:
		if source != SourceBody {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "nested structures must bind from the body, not "+string(source))
		}
		fields, err := r.structFields(t, path, depth+1, excl, incl)
		if err != nil {
			return spec, err
		}
		spec.Tag = TagStruct
		spec.Fields = fields
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return spec, newConfigError(CategoryUnsupportedType, r.root, path, "non-empty interface "+t.String())
		}
		spec.Tag = TagAny
	default:
		return spec, newConfigError(CategoryUnsupportedType, r.root, path, "unsupported field type "+t.String())
	}

	return spec, nil
}

// wireName applies the rename precedence: explicit rename tag, per-field
// config override (top level only), source tag name, then the strategy.
func (r *resolver) wireName(field reflect.StructField, name, sourceName string, top bool) string {
	if alias := field.Tag.Get("rename"); alias != "" {
		return alias
	}
	if top {
		if alias, ok := r.cfg.RenameFields[name]; ok {
			return alias
		}
	}
	if sourceName != "" {
		return sourceName
	}
	return r.cfg.strategy()(name)
}

// declaredName picks the declared identifier from the json tag, falling back
// to the Go field name. A json "-" marks the field excluded.
func declaredName(field reflect.StructField) (name string, excluded bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	base, _, _ := strings.Cut(tag, ",")
	switch base {
	case "-":
		return field.Name, true
	case "":
		return field.Name, false
	default:
		return base, false
	}
}

// sourceInfo reads the source tags. The tag value doubles as the wire name
// for that source, matching the usual echo binder conventions.
func sourceInfo(tag reflect.StructTag) (Source, string) {
	if v := tag.Get("param"); v != "" {
		return SourcePath, v
	}
	if v := tag.Get("query"); v != "" {
		return SourceQuery, v
	}
	if v := tag.Get("header"); v != "" {
		return SourceHeader, v
	}
	if v := tag.Get("cookie"); v != "" {
		return SourceCookie, v
	}
	return SourceBody, ""
}

// splitValidateTag extracts the binder-owned "required" token from a
// validate tag, returning the remaining constraint expression for the
// validator to evaluate on present values.
func splitValidateTag(tag string) (required bool, constraints string) {
	if tag == "" {
		return false, ""
	}
	kept := make([]string, 0, 4)
	for part := range strings.SplitSeq(tag, ",") {
		switch strings.TrimSpace(part) {
		case "required":
			required = true
		case "omitempty", "":
			// binder semantics already skip absent optional fields
		default:
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return required, strings.Join(kept, ",")
}

// defaultValue coerces a textual default into the concrete field type.
// Defaults are supported for scalar fields only.
func defaultValue(spec TypeSpec, text string) (any, error) {
	switch spec.Tag {
	case TagString:
		return reflect.ValueOf(text).Convert(spec.GoType).Interface(), nil
	case TagBytes:
		return reflect.ValueOf([]byte(text)).Convert(spec.GoType).Interface(), nil
	case TagInt:
		n, err := strconv.ParseInt(text, 10, spec.GoType.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(spec.GoType).Interface(), nil
	case TagUint:
		n, err := strconv.ParseUint(text, 10, spec.GoType.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(spec.GoType).Interface(), nil
	case TagFloat:
		f, err := strconv.ParseFloat(text, spec.GoType.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(f).Convert(spec.GoType).Interface(), nil
	case TagBool:
		b, err := coerce.Bool(text)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(spec.GoType).Interface(), nil
	case TagTime:
		return coerce.Time(text)
	case TagUUID:
		return uuid.Parse(text)
	default:
		return nil, errors.New("default values are only supported for scalar fields")
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
