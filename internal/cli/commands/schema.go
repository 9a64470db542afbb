package commands

import (
	"strings"

	"github.com/leapstack-labs/leapoql/internal/cli/config"
	"github.com/leapstack-labs/leapoql/internal/sqlcheck"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL of the mapped tables",
		Long: `Print CREATE TABLE statements for every table the mapping refers to.

This is the schema generated SQL is validated against with --check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			stmts, err := sqlcheck.Schema(cmdCtx.Model)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.Format() == config.OutputJSON {
				return r.JSON(stmts)
			}
			r.Println(strings.Join(stmts, ";\n") + ";")
			return nil
		},
	}
}
