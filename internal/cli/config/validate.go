package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
)

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Mapping == "" {
		return fmt.Errorf("mapping is required")
	}
	if _, ok := dialect.Get(c.Dialect); !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)", c.Dialect, strings.Join(dialect.List(), ", "))
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (available: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// ValidateMapping checks that the mapping document exists.
func (c *Config) ValidateMapping() error {
	if _, err := os.Stat(c.Mapping); os.IsNotExist(err) {
		return fmt.Errorf("mapping file does not exist: %s\nHint: create it or use --mapping to specify a different path", c.Mapping)
	}
	return nil
}
