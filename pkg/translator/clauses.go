package translator

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/parser"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// clauseStart is a clause keyword found at parenthesis depth zero.
type clauseStart struct {
	clause parser.Clause
	tok    token.Token
	body   int // offset of the clause text after the keyword
}

// splitClauses splits a query into the text of its clauses. Clauses must
// appear in SQL order and at most once; FROM is required.
func splitClauses(oql string) (map[parser.Clause]string, error) {
	tokens, err := parser.Tokenize(oql, parser.ModeClause)
	if err != nil {
		return nil, err
	}

	var starts []clauseStart
	depth := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		var (
			clause parser.Clause
			end    = tok
			found  = true
		)
		switch tok.Type {
		case token.LPAREN:
			depth++
			continue
		case token.RPAREN:
			depth--
			continue
		case token.SELECT:
			clause = parser.ClauseSelect
		case token.FROM:
			clause = parser.ClauseFrom
		case token.WHERE:
			clause = parser.ClauseWhere
		case token.HAVING:
			clause = parser.ClauseHaving
		case token.GROUP, token.ORDER:
			// without BY the word is a name, e.g. the entity Order
			if depth > 0 || i+1 >= len(tokens) || tokens[i+1].Type != token.BY {
				continue
			}
			clause = parser.ClauseGroupBy
			if tok.Type == token.ORDER {
				clause = parser.ClauseOrderBy
			}
			i++
			end = tokens[i]
		default:
			found = false
		}
		if !found || depth > 0 {
			continue
		}
		if n := len(starts); n > 0 && starts[n-1].clause >= clause {
			return nil, clauseError(tok, "%s clause is misplaced", clause)
		}
		if len(starts) == 0 && clause != parser.ClauseSelect && clause != parser.ClauseFrom {
			return nil, clauseError(tok, "query must start with select or from")
		}
		starts = append(starts, clauseStart{
			clause: clause,
			tok:    tok,
			body:   end.Pos.Offset + len(end.Literal),
		})
	}

	if len(starts) == 0 || tokens[0].Pos.Offset != starts[0].tok.Pos.Offset {
		return nil, &parser.Error{Kind: parser.KindGrammar, Token: oql, Message: "query must start with select or from"}
	}

	clauses := make(map[parser.Clause]string, len(starts))
	for i, s := range starts {
		stop := len(oql)
		if i+1 < len(starts) {
			stop = starts[i+1].tok.Pos.Offset
		}
		clauses[s.clause] = strings.TrimSpace(oql[s.body:stop])
	}
	if _, ok := clauses[parser.ClauseFrom]; !ok {
		return nil, &parser.Error{Kind: parser.KindGrammar, Token: oql, Message: "from clause is required"}
	}
	return clauses, nil
}

func clauseError(tok token.Token, format string, args ...any) *parser.Error {
	return &parser.Error{
		Kind:    parser.KindGrammar,
		Token:   tok.Literal,
		Pos:     tok.Pos,
		Message: fmt.Sprintf(format, args...),
	}
}
