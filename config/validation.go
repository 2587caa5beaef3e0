package config

import (
	"fmt"

	"github.com/wirebind/wirebind/rename"
)

// Validate checks the configuration for values that would fail later in
// surprising places, returning the first problem as a ConfigError.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return &ConfigError{
			Category: CategoryInvalid,
			Field:    "server.port",
			Message:  fmt.Sprintf("port %d is out of range", cfg.Server.Port),
			Action:   "use a port between 1 and 65535",
		}
	}

	if _, err := rename.FromName(cfg.Binding.RenameStrategy); err != nil {
		return &ConfigError{
			Category: CategoryInvalid,
			Field:    "binding.renamestrategy",
			Message:  err.Error(),
			Action:   "use one of: identity, upper, lower, camel, pascal",
		}
	}

	if cfg.Binding.MaxNestedDepth < 0 {
		return &ConfigError{
			Category: CategoryInvalid,
			Field:    "binding.maxnesteddepth",
			Message:  "depth must not be negative",
			Action:   "use zero for the default or a positive bound",
		}
	}

	return nil
}
