package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapoql/internal/cli/output"
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/translator"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "leapoql> "
	replContinuePrompt = "    ...> "
	replHistoryFile    = ".leapoql_history"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Translate queries interactively",
		Long: `Start an interactive session that translates each query as it is entered.

Queries end with a semicolon and may span several lines. Dot-commands
inspect the mapping and change the target dialect.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	session := newReplSession(cmdCtx)

	historyFile := ""
	if root := cmdCtx.Cfg.ProjectRoot; root != "" {
		historyFile = filepath.Join(root, replHistoryFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(cmdCtx.Model),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("leapoql REPL (mapping: %s, dialect: %s)\n", cmdCtx.Cfg.Mapping, session.translator.Dialect().GetName())
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		quit := session.feed(line)
		if quit {
			return nil
		}
		rl.SetPrompt(session.prompt())
	}
}

// replSession holds the state of an interactive session: the translator
// for the current dialect and the query being entered.
type replSession struct {
	cmdCtx     *CommandContext
	translator *translator.Translator
	shallow    bool
	pending    strings.Builder
}

func newReplSession(cmdCtx *CommandContext) *replSession {
	return &replSession{
		cmdCtx:     cmdCtx,
		translator: cmdCtx.Translator,
		shallow:    cmdCtx.Cfg.Shallow,
	}
}

func (s *replSession) reset() {
	s.pending.Reset()
}

func (s *replSession) prompt() string {
	if s.pending.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

// feed consumes one input line and reports whether the session should end.
func (s *replSession) feed(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if s.pending.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.command(strings.Fields(line))
	}

	s.pending.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.pending.WriteString(" ")
		return false
	}
	query := strings.TrimSpace(strings.TrimSuffix(s.pending.String(), ";"))
	s.pending.Reset()
	if query == "" {
		return false
	}

	res := Result{Index: 1, Input: query}
	q, err := s.translator.Compile(query)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Query = q
	}
	if err := renderResults(s.cmdCtx.Renderer, []Result{res}); err != nil {
		s.cmdCtx.Renderer.Errorf("%v", err)
	}
	return false
}

func (s *replSession) command(parts []string) bool {
	r := s.cmdCtx.Renderer
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(r)

	case ".entities":
		for _, e := range s.cmdCtx.Model.Entities() {
			r.Printf("%-24s %s\n", e.ShortName(), r.Styles().Muted.Render(e.Table))
		}

	case ".functions":
		d := s.translator.Dialect()
		if err := renderFunctions(s.cmdCtx, d, describeFunctions(d)); err != nil {
			r.Errorf("%v", err)
		}

	case ".dialect":
		if len(parts) < 2 {
			r.Println(s.translator.Dialect().GetName())
			return false
		}
		d, err := dialect.Lookup(parts[1])
		if err != nil {
			r.Errorf("%v", err)
			return false
		}
		s.rebuild(d, s.shallow)

	case ".shallow":
		s.rebuild(s.translator.Dialect(), !s.shallow)
		r.Printf("shallow: %v\n", s.shallow)

	default:
		r.Errorf("unknown command: %s (type .help for commands)", parts[0])
	}
	return false
}

func (s *replSession) rebuild(d *dialect.Dialect, shallow bool) {
	tr, err := translator.New(s.cmdCtx.Model, translator.Config{
		Dialect: d,
		Shallow: shallow,
		Logger:  s.cmdCtx.Logger,
	})
	if err != nil {
		s.cmdCtx.Renderer.Errorf("%v", err)
		return
	}
	s.translator = tr
	s.shallow = shallow
}

func printReplHelp(r *output.Renderer) {
	r.Println(`Commands:
  .help            Show this help message
  .entities        List the mapped entities
  .functions       List the functions of the current dialect
  .dialect [name]  Show or change the target dialect
  .shallow         Toggle shallow selection of associations
  .quit / .exit    Exit the REPL

Queries end with a semicolon (;) and may span several lines.`)
}

// newReplCompleter completes dot-commands, dialect names and the entity
// after "from".
func newReplCompleter(model *mapping.Model) *readline.PrefixCompleter {
	var entities []readline.PrefixCompleterInterface
	for _, e := range model.Entities() {
		entities = append(entities, readline.PcItem(e.ShortName()))
	}
	var dialects []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("from", entities...),
		readline.PcItem("select"),
		readline.PcItem(".help"),
		readline.PcItem(".entities"),
		readline.PcItem(".functions"),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".shallow"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
