package config

import "strings"

// ConfigError categories.
const (
	CategoryMissing = "missing"
	CategoryInvalid = "invalid"
)

// ConfigError reports a configuration problem with actionable guidance.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // "missing" or "invalid"
	Field    string // config field path, e.g. "server.port"
	Message  string // lowercase description
	Action   string // lowercase actionable instruction
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	parts := make([]string, 0, 4)
	if e.Category != "" {
		parts = append(parts, "config_"+e.Category+":")
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	return strings.Join(parts, " ")
}
