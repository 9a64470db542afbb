package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapoql/internal/cli/config"
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FunctionInfo describes a dialect function for display.
type FunctionInfo struct {
	Name      string   `json:"name"`
	Aggregate bool     `json:"aggregate"`
	Syntax    string   `json:"syntax"`
	Returns   string   `json:"returns"`
	Aliases   []string `json:"aliases,omitempty"`
}

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the select-clause functions of the dialect",
		Long: `List the functions the configured dialect accepts in select clauses,
with their call syntax and result type.`,
		Example: `  leapoql functions --dialect postgres -o table`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutModel(cmd)
			d, err := dialect.Lookup(cmdCtx.Cfg.Dialect)
			if err != nil {
				return err
			}
			return renderFunctions(cmdCtx, d, describeFunctions(d))
		},
	}
}

func describeFunctions(d *dialect.Dialect) []FunctionInfo {
	aliases := make(map[string][]string)
	for alias, name := range d.Aliases() {
		aliases[name] = append(aliases[name], alias)
	}

	funcs := d.Functions()
	infos := make([]FunctionInfo, len(funcs))
	for i, f := range funcs {
		syntax := f.Name + "(...)"
		switch {
		case !f.HasArguments && f.HasParentheses:
			syntax = f.Name + "()"
		case !f.HasArguments:
			syntax = f.Name
		}
		returns := "argument type"
		if t, ok := f.ReturnType(nil); ok {
			returns = t.Name()
		}
		sort.Strings(aliases[f.Name])
		infos[i] = FunctionInfo{
			Name:      f.Name,
			Aggregate: f.Aggregate,
			Syntax:    syntax,
			Returns:   returns,
			Aliases:   aliases[f.Name],
		}
	}
	return infos
}

func renderFunctions(cmdCtx *CommandContext, d *dialect.Dialect, infos []FunctionInfo) error {
	r := cmdCtx.Renderer
	switch r.Format() {
	case config.OutputJSON:
		return r.JSON(infos)
	case config.OutputTable:
		rows := make([][]string, len(infos))
		for i, info := range infos {
			rows[i] = []string{info.Syntax, kind(info), info.Returns, strings.Join(info.Aliases, ", ")}
		}
		r.Table([]string{"function", "kind", "returns", "aliases"}, rows)
		return nil
	}

	styles := r.Styles()
	titleCaser := cases.Title(language.English)
	r.Println(styles.Header.Render(fmt.Sprintf("%s functions (%d)", titleCaser.String(d.GetName()), len(infos))))
	for _, info := range infos {
		line := fmt.Sprintf("  %-24s %-10s %s", info.Syntax, kind(info), info.Returns)
		if len(info.Aliases) > 0 {
			line += styles.Muted.Render("  aka " + strings.Join(info.Aliases, ", "))
		}
		r.Println(line)
	}
	return nil
}

func kind(info FunctionInfo) string {
	if info.Aggregate {
		return "aggregate"
	}
	return "scalar"
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the registered SQL dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutModel(cmd)
			r := cmdCtx.Renderer

			type dialectInfo struct {
				Name      string `json:"name"`
				JoinStyle string `json:"join_style"`
				Functions int    `json:"functions"`
				Default   bool   `json:"default"`
			}
			var infos []dialectInfo
			for _, name := range dialect.List() {
				d, _ := dialect.Get(name)
				infos = append(infos, dialectInfo{
					Name:      d.GetName(),
					JoinStyle: d.PreferredJoinStyle().String(),
					Functions: len(d.Functions()),
					Default:   d == dialect.Default(),
				})
			}

			switch r.Format() {
			case config.OutputJSON:
				return r.JSON(infos)
			case config.OutputTable:
				rows := make([][]string, len(infos))
				for i, info := range infos {
					rows[i] = []string{info.Name, info.JoinStyle, fmt.Sprint(info.Functions), fmt.Sprint(info.Default)}
				}
				r.Table([]string{"dialect", "joins", "functions", "default"}, rows)
				return nil
			}
			for _, info := range infos {
				marker := " "
				if info.Default {
					marker = "*"
				}
				r.Printf("%s %-10s %s joins, %d functions\n", marker, info.Name, info.JoinStyle, info.Functions)
			}
			return nil
		},
	}
}
