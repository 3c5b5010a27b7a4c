package types

import (
	"fmt"

	"github.com/plc-lang/plc/internal/ast"
)

// Info holds the results of analysis. The AST itself is never modified; each
// slot below is filled exactly once per node.
type Info struct {
	// Types maps every analysed expression to its type.
	Types map[ast.Expr]*Type

	// Variables maps AccessExpr nodes to the variable they resolve to, and
	// Field, DeclarationStmt and ForStmt nodes to the variable they define.
	Variables map[ast.Node]*Variable

	// Functions maps FunctionExpr nodes to the function they resolve to, and
	// Method nodes to the function they define.
	Functions map[ast.Node]*Function
}

// NewInfo returns an empty Info.
func NewInfo() *Info {
	return &Info{
		Types:     make(map[ast.Expr]*Type),
		Variables: make(map[ast.Node]*Variable),
		Functions: make(map[ast.Node]*Function),
	}
}

// TypeOf returns the type of e, or nil if e was not analysed.
func (i *Info) TypeOf(e ast.Expr) *Type { return i.Types[e] }

// VariableOf returns the variable bound to or defined by n.
func (i *Info) VariableOf(n ast.Node) *Variable { return i.Variables[n] }

// FunctionOf returns the function bound to or defined by n.
func (i *Info) FunctionOf(n ast.Node) *Function { return i.Functions[n] }

func (i *Info) recordType(e ast.Expr, t *Type) {
	if _, dup := i.Types[e]; dup {
		panic(fmt.Sprintf("types: type of %T at offset %d recorded twice", e, e.Span().Start))
	}
	i.Types[e] = t
}

func (i *Info) recordVariable(n ast.Node, v *Variable) {
	if _, dup := i.Variables[n]; dup {
		panic(fmt.Sprintf("types: variable of %T at offset %d recorded twice", n, n.Span().Start))
	}
	i.Variables[n] = v
}

func (i *Info) recordFunction(n ast.Node, fn *Function) {
	if _, dup := i.Functions[n]; dup {
		panic(fmt.Sprintf("types: function of %T at offset %d recorded twice", n, n.Span().Start))
	}
	i.Functions[n] = fn
}
