// Package reflection provides internal type-naming helpers used for cache
// keys and configuration error reporting.
package reflection

import "reflect"

// TypeName returns the fully qualified name of a type, unwrapping pointers.
// Unnamed types fall back to their structural string representation, which
// is stable for a given reflect.Type.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeNameShort returns just the type name without the package path.
func TypeNameShort(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
