package parser

// HavingParser compiles a HAVING clause. It shares the WHERE grammar and
// only differs in the output buffer it writes to.
type HavingParser struct {
	*ConditionParser
}

// NewHavingParser creates a HAVING parser.
func NewHavingParser() *HavingParser {
	return &HavingParser{NewConditionParser(ClauseHaving)}
}
