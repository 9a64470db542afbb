package parser

import (
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// listParser resolves bare alias-rooted paths of a GROUP BY or ORDER BY
// list and passes every other token through unchanged.
type listParser struct {
	clause Clause
	first  bool
}

func (p *listParser) Start(Context) error {
	p.first = true
	return nil
}

func (p *listParser) Token(tok token.Token, ctx Context) error {
	text := tok.Literal
	if tok.IsPath() && ctx.IsAlias(rootName(tok.Literal)) {
		res, err := ResolvePath(ctx, tok.Literal, PathOptions{
			Clause:    p.clause,
			Policy:    PolicyBase,
			JoinStyle: dialect.JoinTheta,
		})
		if err != nil {
			return err
		}
		if err := res.AddJoins(ctx); err != nil {
			return err
		}
		text = strings.Join(res.Columns, ", ")
	}
	if !p.first && tok.Space {
		text = " " + text
	}
	p.first = false
	ctx.Append(p.clause, text)
	return nil
}

func (p *listParser) End(Context) error {
	return nil
}

// GroupByParser compiles a GROUP BY clause. Only bare paths are resolved;
// compound expressions are copied verbatim and left to the database to
// validate.
type GroupByParser struct {
	listParser
}

// NewGroupByParser creates a GROUP BY parser.
func NewGroupByParser() *GroupByParser {
	return &GroupByParser{listParser{clause: ClauseGroupBy}}
}

// OrderByParser compiles an ORDER BY clause with the GROUP BY rules.
type OrderByParser struct {
	listParser
}

// NewOrderByParser creates an ORDER BY parser.
func NewOrderByParser() *OrderByParser {
	return &OrderByParser{listParser{clause: ClauseOrderBy}}
}

// rootName returns the first segment of a dotted path.
func rootName(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
