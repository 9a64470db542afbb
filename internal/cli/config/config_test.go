package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapoql/internal/testutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapoql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	root := filepath.Dir(cfgPath)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultMapping), cfg.Mapping)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.Shallow)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `mapping: model/orm.yaml
dialect: legacy
shallow: true
output: json
check: true
workers: 2
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "model", "orm.yaml"), cfg.Mapping)
	assert.Equal(t, "legacy", cfg.Dialect)
	assert.True(t, cfg.Shallow)
	assert.Equal(t, OutputJSON, cfg.OutputFormat)
	assert.True(t, cfg.Check)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "dialect: legacy\n")
	t.Setenv("LEAPOQL_DIALECT", "postgres")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "target dialect")
	require.NoError(t, flags.Set("dialect", "sqlite"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "dialect: legacy\nshallow: false\n")
	t.Setenv("LEAPOQL_DIALECT", "postgres")
	t.Setenv("LEAPOQL_SHALLOW", "true")

	// the flag exists but was not set, so env wins
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "target dialect")

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.True(t, cfg.Shallow)
}

func TestLoadConfig_MappingFlagIsRelativeToCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "mapping: from_file.yaml\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("mapping", "", "mapping file")
	require.NoError(t, flags.Set("mapping", "from_flag.yaml"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	want, err := filepath.Abs("from_flag.yaml")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Mapping)
}

func TestLoadConfig_ExpandsMappingEnvVars(t *testing.T) {
	ResetConfig()
	t.Setenv("TEST_MAPPING_DIR", "/etc/orm")
	cfgPath := writeConfig(t, "mapping: ${TEST_MAPPING_DIR}/mapping.yaml\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "/etc/orm/mapping.yaml", cfg.Mapping)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown dialect", "dialect: oracle\n", `unknown dialect "oracle"`},
		{"unknown output", "output: xml\n", `unknown output format "xml"`},
		{"no workers", "workers: 0\n", "workers must be at least 1"},
		{"bad yaml", "dialect: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.Nil(t, GetCurrentConfig())
		})
	}
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "leapoql.yml"), nil, 0600))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Empty(t, findProjectRootUpward(t.TempDir()))
}

func TestValidateMapping(t *testing.T) {
	cfg := &Config{Mapping: filepath.Join(t.TempDir(), "missing.yaml")}
	err := cfg.ValidateMapping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping file does not exist")

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.MappingYAML), 0600))
	cfg.Mapping = path
	assert.NoError(t, cfg.ValidateMapping())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"variable in path", "/path/to/${TEST_VAR_ONE}/file", "/path/to/value_one/file"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	assert.Same(t, logger, GetLogger(WithLogger(context.Background(), logger)))
}
