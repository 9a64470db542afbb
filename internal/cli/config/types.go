// Package config provides configuration management for the leapoql CLI.
//
// Configuration is read from defaults, a leapoql.yaml file, LEAPOQL_*
// environment variables and command-line flags, in increasing order of
// precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Mapping is the path of the mapping document.
	Mapping string `koanf:"mapping"`
	// Dialect is the registered name of the target SQL dialect.
	Dialect string `koanf:"dialect"`
	// Shallow selects associated entities by identifier only.
	Shallow      bool   `koanf:"shallow"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	// Check validates generated SQL against a scratch database.
	Check bool `koanf:"check"`
	// Workers bounds concurrent compilations in batch mode.
	Workers int `koanf:"workers"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultMapping = "mapping.yaml"
	DefaultDialect = "ansi"
	DefaultOutput  = "text"
	DefaultWorkers = 4
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{OutputText, OutputJSON, OutputTable}
