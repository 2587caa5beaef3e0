package schema

import "strings"

// ConfigurationError categories.
const (
	CategoryInvalidConfig     = "invalid_config"
	CategoryUnsupportedType   = "unsupported_type"
	CategoryDuplicateWireName = "duplicate_wire_name"
	CategoryCircularReference = "circular_reference"
	CategoryInvalidDefault    = "invalid_default"
	CategoryMaxDepth          = "max_depth_exceeded"
)

// ConfigurationError reports a fatal problem with a structure description or
// its transform policy. It is raised at resolution time, never per request.
type ConfigurationError struct {
	Category string // one of the Category* constants
	Struct   string // fully qualified structure type name
	Field    string // dotted field path, empty for structure-level problems
	Message  string // lowercase description
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, 4)
	if e.Category != "" {
		parts = append(parts, "schema_"+e.Category+":")
	}
	if e.Struct != "" {
		parts = append(parts, e.Struct)
	}
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, " ")
}

func newConfigError(category, structName, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Category: category,
		Struct:   structName,
		Field:    field,
		Message:  message,
	}
}
