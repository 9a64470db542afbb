package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapoql/internal/cli/config"
	"github.com/leapstack-labs/leapoql/internal/cli/output"
	"github.com/leapstack-labs/leapoql/internal/sqlcheck"
	"github.com/leapstack-labs/leapoql/pkg/translator"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// TranslateOptions holds options for the translate command.
type TranslateOptions struct {
	File  string
	Watch bool
}

// Result is the outcome of compiling one query.
type Result struct {
	*translator.Query

	Index int    `json:"index"`
	Input string `json:"input"`
	Error string `json:"error,omitempty"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [query...]",
		Short: "Translate object queries to SQL",
		Long: `Translate object queries to SQL using the configured mapping and dialect.

Queries are read from the arguments, from a file with --file (one query per
line, blank lines and lines starting with # are skipped) or from stdin with
--file - or a pipe. Batches are compiled concurrently.`,
		Example: `  # Translate one query
  leapoql translate "select p.name from Person p where p.age > :age"

  # Translate a batch and validate the SQL against the mapped schema
  leapoql translate --file queries.oql --check -o table

  # Re-translate whenever the query file or the mapping changes
  leapoql translate --file queries.oql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read queries from file (- for stdin)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-translate when the query file or mapping changes")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, opts *TranslateOptions) error {
	if opts.Watch && (opts.File == "" || opts.File == "-") {
		return fmt.Errorf("--watch requires --file with a path")
	}
	queries, err := collectQueries(cmd, args, opts)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	failed, err := translateAndRender(cmd.Context(), cmdCtx, queries)
	if err != nil {
		return err
	}
	if opts.Watch {
		return watchTranslate(cmd, cmdCtx, args, opts)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}
	return nil
}

func collectQueries(cmd *cobra.Command, args []string, opts *TranslateOptions) ([]string, error) {
	queries := append([]string(nil), args...)
	if opts.File != "" {
		fromFile, err := readQueries(cmd.InOrStdin(), opts.File)
		if err != nil {
			return nil, err
		}
		queries = append(queries, fromFile...)
	}
	if len(queries) == 0 && opts.File == "" && stdinIsPiped(cmd.InOrStdin()) {
		piped, err := readQueries(cmd.InOrStdin(), "-")
		if err != nil {
			return nil, err
		}
		queries = piped
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries given\nHint: pass a query argument or use --file")
	}
	return queries, nil
}

// translateAndRender compiles and renders one batch and returns the number
// of failed queries.
func translateAndRender(ctx context.Context, cmdCtx *CommandContext, queries []string) (int, error) {
	var checker *sqlcheck.Checker
	if cmdCtx.Cfg.Check {
		var err error
		checker, err = sqlcheck.Open(ctx, cmdCtx.Model, cmdCtx.Logger)
		if err != nil {
			return 0, err
		}
		defer func() { _ = checker.Close() }()
	}

	results, err := translateAll(ctx, cmdCtx.Translator, checker, queries, cmdCtx.Cfg.Workers)
	if err != nil {
		return 0, err
	}
	if err := renderResults(cmdCtx.Renderer, results); err != nil {
		return 0, err
	}

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	return failed, nil
}

// watchTranslate re-runs the batch whenever the query file or the mapping
// changes, reloading the mapping when it is the file that changed. It
// stops on interrupt.
func watchTranslate(cmd *cobra.Command, cmdCtx *CommandContext, args []string, opts *TranslateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w, err := newFileWatcher(cmdCtx.Logger, opts.File, cmdCtx.Cfg.Mapping)
	if err != nil {
		return err
	}
	mappingPath := w.key(cmdCtx.Cfg.Mapping)

	r := cmdCtx.Renderer
	r.Println(r.Styles().Muted.Render(fmt.Sprintf("-- watching %s and %s (Ctrl+C to stop)", opts.File, cmdCtx.Cfg.Mapping)))

	return w.Run(ctx, func(changed []string) {
		if slices.Contains(changed, mappingPath) {
			reloaded, err := NewCommandContext(cmd)
			if err != nil {
				r.Errorf("%v", err)
				return
			}
			cmdCtx = reloaded
		}
		queries, err := collectQueries(cmd, args, opts)
		if err != nil {
			r.Errorf("%v", err)
			return
		}
		r.Println("")
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("-- %s", time.Now().Format(time.TimeOnly))))
		if _, err := translateAndRender(ctx, cmdCtx, queries); err != nil {
			r.Errorf("%v", err)
		}
	})
}

// translateAll compiles queries with at most workers in flight. Query
// errors are reported per result; only cancellation aborts the batch.
func translateAll(ctx context.Context, tr *translator.Translator, checker *sqlcheck.Checker, queries []string, workers int) ([]Result, error) {
	results := make([]Result, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, oql := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Result{Index: i + 1, Input: oql}
			q, err := tr.Compile(oql)
			switch {
			case err != nil:
				res.Error = err.Error()
			case checker != nil:
				if err := checker.Check(ctx, q.SQL); err != nil {
					res.Error = err.Error()
				}
				res.Query = q
			default:
				res.Query = q
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readQueries reads one query per line from path, or from stdin for "-".
func readQueries(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // path is user-provided
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}

// stdinIsPiped reports whether r is a redirected standard input rather than
// an interactive terminal.
func stdinIsPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || term.IsTerminal(int(f.Fd())) {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeNamedPipe != 0 || fi.Mode().IsRegular()
}

func renderResults(r *output.Renderer, results []Result) error {
	switch r.Format() {
	case config.OutputJSON:
		return r.JSON(results)
	case config.OutputTable:
		rows := make([][]string, len(results))
		for i, res := range results {
			sql := ""
			if res.Query != nil {
				sql = res.SQL
			}
			rows[i] = []string{strconv.Itoa(res.Index), res.Input, sql, res.Error}
		}
		r.Table([]string{"#", "query", "sql", "error"}, rows)
		return nil
	}

	styles := r.Styles()
	for i, res := range results {
		if len(results) > 1 {
			if i > 0 {
				r.Println("")
			}
			r.Println(styles.Muted.Render(fmt.Sprintf("-- %d: %s", res.Index, res.Input)))
		}
		if res.Query != nil {
			r.Println(styles.SQL.Render(res.SQL))
			if len(res.Parameters) > 0 {
				r.Println(styles.Muted.Render("-- parameters: " + strings.Join(res.Parameters, ", ")))
			}
		}
		if res.Error != "" {
			r.Errorf("%d: %s", res.Index, res.Error)
		}
	}
	return nil
}
