// Package config loads runtime configuration for the integration layer
// from defaults, YAML files, and environment variables, in that order of
// precedence (later sources win).
package config

import (
	"github.com/knadh/koanf/v2"

	"github.com/wirebind/wirebind/rename"
	"github.com/wirebind/wirebind/schema"
)

// Config is the root configuration for an application embedding the
// binding engine behind an HTTP surface.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Server  ServerConfig  `koanf:"server"`
	Binding BindingConfig `koanf:"binding"`
	Log     LogConfig     `koanf:"log"`

	k *koanf.Koanf
}

// AppConfig identifies the running application.
type AppConfig struct {
	Name string `koanf:"name"`
	Env  string `koanf:"env"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	BasePath string `koanf:"path.base"`
}

// BindingConfig holds the default transform policy applied to request
// structures that carry no explicit per-DTO configuration.
type BindingConfig struct {
	// RenameStrategy is a built-in strategy name: identity, upper, lower,
	// camel, or pascal.
	RenameStrategy string `koanf:"renamestrategy"`

	// MaxNestedDepth bounds nested structure resolution; zero uses the
	// schema default.
	MaxNestedDepth int `koanf:"maxnesteddepth"`

	// IncludeUnderscoreFields disables the underscore private-field
	// convention.
	IncludeUnderscoreFields bool `koanf:"includeunderscorefields"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// SchemaConfig translates the binding section into a schema transform
// policy.
func (b *BindingConfig) SchemaConfig() (*schema.Config, error) {
	strategy, err := rename.FromName(b.RenameStrategy)
	if err != nil {
		return nil, &ConfigError{
			Category: CategoryInvalid,
			Field:    "binding.renamestrategy",
			Message:  err.Error(),
			Action:   "use one of: identity, upper, lower, camel, pascal",
		}
	}
	return &schema.Config{
		RenameStrategy:          strategy,
		MaxNestedDepth:          b.MaxNestedDepth,
		IncludeUnderscoreFields: b.IncludeUnderscoreFields,
	}, nil
}

// Raw exposes the underlying koanf instance for ad-hoc key access.
func (c *Config) Raw() *koanf.Koanf {
	return c.k
}
