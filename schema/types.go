// Package schema derives ordered field descriptor sets from struct types.
// A descriptor set is the static binding model for one target structure:
// per-field wire names, sources, optionality, defaults, and transform policy.
// Resolution happens once per distinct (type, config) pair and the result is
// cached for the process lifetime.
package schema

import "reflect"

// Source identifies the request-data bucket a field is read from.
type Source string

// Recognized sources. Body is the implicit default for untagged fields.
const (
	SourceBody   Source = "body"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourceCookie Source = "cookie"
	SourcePath   Source = "path"
)

// TypeTag is the semantic type classification of a field.
type TypeTag int

const (
	TagInvalid TypeTag = iota
	TagString
	TagInt
	TagUint
	TagFloat
	TagBool
	TagBytes
	TagTime
	TagUUID
	TagStruct
	TagSlice
	TagMap
	TagAny
)

// String returns the wire-facing name of the tag, used in mismatch messages.
func (t TypeTag) String() string {
	switch t {
	case TagString:
		return "str"
	case TagInt:
		return "int"
	case TagUint:
		return "uint"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	case TagBytes:
		return "bytes"
	case TagTime:
		return "datetime"
	case TagUUID:
		return "uuid"
	case TagStruct:
		return "object"
	case TagSlice:
		return "array"
	case TagMap:
		return "object"
	case TagAny:
		return "any"
	default:
		return "invalid"
	}
}

// TypeSpec describes the declared type of a field, recursively for
// containers and nested structures.
type TypeSpec struct {
	Tag    TypeTag
	GoType reflect.Type // concrete field type, pointer already unwrapped
	Elem   *TypeSpec    // slice element or map value type
	Key    *TypeSpec    // map key type
	Fields []FieldDescriptor
}

// FieldDescriptor describes one bindable field of a target structure.
type FieldDescriptor struct {
	Name        string // declared name: json tag when present, else Go field name
	WireName    string // name expected in the external representation
	GoName      string // Go struct field name
	Index       int    // struct field index
	Spec        TypeSpec
	Source      Source
	Optional    bool
	HasDefault  bool
	Default     any    // coerced default value, concrete field type
	Exclude     bool   // never bound from input nor written to output
	ReadOnly    bool   // input silently ignored, still serialized outbound
	Private     bool   // underscore convention: hidden both ways
	Constraints string // validate tag minus binder-owned tokens
	Pointer     bool   // declared as *T
}

// Bindable reports whether the field participates in input binding.
func (d *FieldDescriptor) Bindable() bool {
	return !d.Exclude && !d.Private && !d.ReadOnly
}

// Visible reports whether the field appears in outbound representations.
func (d *FieldDescriptor) Visible() bool {
	return !d.Exclude && !d.Private
}
