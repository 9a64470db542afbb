package parser

import (
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// Node is a node of the select clause syntax tree.
type Node interface {
	// Token returns the first token of the node.
	Token() token.Token
	selectNode()
}

// SelectClause is a parsed select list.
type SelectClause struct {
	// Modifier is DISTINCT, ALL or the zero token.
	Modifier token.Token
	// Items holds select items separated by Separator nodes.
	Items []Node
}

// PathExpr is a path expression such as p.address.city.
type PathExpr struct {
	Tok token.Token
}

// Literal is SQL text copied to the output as written.
type Literal struct {
	Tok token.Token
}

// Separator is a comma between items or arguments.
type Separator struct {
	Tok token.Token
}

// FunctionCall is a call of a registered SQL function. Args holds the
// argument list as written, including separators and literal text.
type FunctionCall struct {
	Name   token.Token
	Func   *dialect.Function
	Args   []Node
	Parens bool
}

// ConstructorExpr is a constructor result expression, new Class(items).
type ConstructorExpr struct {
	New   token.Token
	Class token.Token
	Args  []Node
}

func (n *PathExpr) Token() token.Token        { return n.Tok }
func (n *Literal) Token() token.Token         { return n.Tok }
func (n *Separator) Token() token.Token       { return n.Tok }
func (n *FunctionCall) Token() token.Token    { return n.Name }
func (n *ConstructorExpr) Token() token.Token { return n.New }

func (*PathExpr) selectNode()        {}
func (*Literal) selectNode()         {}
func (*Separator) selectNode()       {}
func (*FunctionCall) selectNode()    {}
func (*ConstructorExpr) selectNode() {}
