// Package commands implements the leapoql subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapoql/internal/cli/config"
	"github.com/leapstack-labs/leapoql/internal/cli/output"
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/translator"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg        *config.Config
	Logger     *slog.Logger
	Renderer   *output.Renderer
	Model      *mapping.Model
	Translator *translator.Translator
}

// NewCommandContext loads the mapping model and creates a translator for
// the configured dialect.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutModel(cmd)
	cfg := cmdCtx.Cfg

	if err := cfg.ValidateMapping(); err != nil {
		return nil, err
	}
	model, err := mapping.LoadFile(cfg.Mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	tr, err := translator.New(model, translator.Config{
		Dialect: d,
		Shallow: cfg.Shallow,
		Logger:  cmdCtx.Logger,
	})
	if err != nil {
		return nil, err
	}
	cmdCtx.Logger.Debug("loaded mapping",
		"path", cfg.Mapping,
		"entities", len(model.Entities()),
		"collections", len(model.Collections()),
		"dialect", d.GetName())

	cmdCtx.Model = model
	cmdCtx.Translator = tr
	return cmdCtx, nil
}

// NewCommandContextWithoutModel creates a CommandContext for commands that
// don't need the mapping.
func NewCommandContextWithoutModel(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.OutputFormat),
	}
}

// getConfig returns the loaded configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Mapping:      config.DefaultMapping,
		Dialect:      config.DefaultDialect,
		OutputFormat: config.DefaultOutput,
		Workers:      config.DefaultWorkers,
	}
}
