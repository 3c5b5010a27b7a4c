// Package dump renders a syntax tree as YAML, annotated with the types and
// bindings resolved by the analyzer.
package dump

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/types"
)

// Node is the YAML form of one syntax tree node.
type Node struct {
	Kind      string  `yaml:"kind"`
	Name      string  `yaml:"name,omitempty"`
	Operator  string  `yaml:"operator,omitempty"`
	Literal   string  `yaml:"literal,omitempty"`
	Type      string  `yaml:"type,omitempty"`
	Binding   string  `yaml:"binding,omitempty"`
	Params    []Param `yaml:"params,omitempty"`
	Returns   string  `yaml:"returns,omitempty"`
	Receiver  *Node   `yaml:"receiver,omitempty"`
	Left      *Node   `yaml:"left,omitempty"`
	Right     *Node   `yaml:"right,omitempty"`
	Inner     *Node   `yaml:"inner,omitempty"`
	Condition *Node   `yaml:"condition,omitempty"`
	Iterable  *Node   `yaml:"iterable,omitempty"`
	Value     *Node   `yaml:"value,omitempty"`
	Args      []*Node `yaml:"args,omitempty"`
	Fields    []*Node `yaml:"fields,omitempty"`
	Methods   []*Node `yaml:"methods,omitempty"`
	Body      []*Node `yaml:"body,omitempty"`
	Then      []*Node `yaml:"then,omitempty"`
	Else      []*Node `yaml:"else,omitempty"`
	Pos       string  `yaml:"pos,omitempty"`
}

// Param is a method parameter.
type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Write encodes src as YAML. info may be nil, in which case only declared
// types appear.
func Write(w io.Writer, src *ast.Source, info *types.Info) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Build(src, info)); err != nil {
		return fmt.Errorf("failed to encode syntax tree: %w", err)
	}
	return enc.Close()
}

// Build converts src into its YAML form.
func Build(src *ast.Source, info *types.Info) *Node {
	b := builder{info: info}
	n := &Node{Kind: "Source", Pos: pos(src)}
	for _, f := range src.Fields {
		n.Fields = append(n.Fields, b.field(f))
	}
	for _, m := range src.Methods {
		n.Methods = append(n.Methods, b.method(m))
	}
	return n
}

type builder struct {
	info *types.Info
}

func (b builder) field(f *ast.Field) *Node {
	n := &Node{Kind: "Field", Name: f.Name, Type: f.TypeName, Pos: pos(f)}
	b.variable(n, f)
	if f.Value != nil {
		n.Value = b.expr(f.Value)
	}
	return n
}

func (b builder) method(m *ast.Method) *Node {
	n := &Node{Kind: "Method", Name: m.Name, Returns: m.ReturnType, Pos: pos(m)}
	for i, p := range m.Params {
		n.Params = append(n.Params, Param{Name: p, Type: m.ParamTypes[i]})
	}
	if b.info != nil {
		if fn := b.info.FunctionOf(m); fn != nil {
			n.Binding = fn.BindingName
			n.Returns = fn.ReturnType.Name
		}
	}
	n.Body = b.block(m.Body)
	return n
}

func (b builder) block(stmts []ast.Stmt) []*Node {
	var out []*Node
	for _, s := range stmts {
		out = append(out, b.stmt(s))
	}
	return out
}

func (b builder) stmt(s ast.Stmt) *Node {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return &Node{Kind: "Expression", Value: b.expr(s.Expr), Pos: pos(s)}
	case *ast.DeclarationStmt:
		n := &Node{Kind: "Declaration", Name: s.Name, Type: s.TypeName, Pos: pos(s)}
		b.variable(n, s)
		if s.Value != nil {
			n.Value = b.expr(s.Value)
		}
		return n
	case *ast.AssignmentStmt:
		return &Node{Kind: "Assignment", Receiver: b.expr(s.Receiver), Value: b.expr(s.Value), Pos: pos(s)}
	case *ast.IfStmt:
		return &Node{
			Kind:      "If",
			Condition: b.expr(s.Condition),
			Then:      b.block(s.Then),
			Else:      b.block(s.Else),
			Pos:       pos(s),
		}
	case *ast.ForStmt:
		n := &Node{Kind: "For", Name: s.Name, Iterable: b.expr(s.Iterable), Body: b.block(s.Body), Pos: pos(s)}
		b.variable(n, s)
		return n
	case *ast.WhileStmt:
		return &Node{Kind: "While", Condition: b.expr(s.Condition), Body: b.block(s.Body), Pos: pos(s)}
	case *ast.ReturnStmt:
		return &Node{Kind: "Return", Value: b.expr(s.Value), Pos: pos(s)}
	default:
		panic(fmt.Sprintf("dump: unexpected statement %T", s))
	}
}

func (b builder) expr(e ast.Expr) *Node {
	var n *Node
	switch e := e.(type) {
	case *ast.LiteralExpr:
		n = &Node{Kind: "Literal", Literal: e.Raw}
	case *ast.GroupExpr:
		n = &Node{Kind: "Group", Inner: b.expr(e.Inner)}
	case *ast.BinaryExpr:
		n = &Node{Kind: "Binary", Operator: e.Operator, Left: b.expr(e.Left), Right: b.expr(e.Right)}
	case *ast.AccessExpr:
		n = &Node{Kind: "Access", Name: e.Name}
		if e.Receiver != nil {
			n.Receiver = b.expr(e.Receiver)
		}
		if b.info != nil {
			if v := b.info.VariableOf(e); v != nil {
				n.Binding = v.BindingName
			}
		}
	case *ast.FunctionExpr:
		n = &Node{Kind: "Function", Name: e.Name}
		if e.Receiver != nil {
			n.Receiver = b.expr(e.Receiver)
		}
		for _, a := range e.Args {
			n.Args = append(n.Args, b.expr(a))
		}
		if b.info != nil {
			if fn := b.info.FunctionOf(e); fn != nil {
				n.Binding = fn.BindingName
			}
		}
	default:
		panic(fmt.Sprintf("dump: unexpected expression %T", e))
	}
	if b.info != nil {
		if t := b.info.TypeOf(e); t != nil {
			n.Type = t.Name
		}
	}
	n.Pos = pos(e)
	return n
}

// variable fills the resolved type and binding of a declaring node.
func (b builder) variable(n *Node, decl ast.Node) {
	if b.info == nil {
		return
	}
	if v := b.info.VariableOf(decl); v != nil {
		n.Type = v.Type.Name
		n.Binding = v.BindingName
	}
}

func pos(n ast.Node) string {
	sp := n.Span()
	if sp.Line == 0 {
		return ""
	}
	if sp.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", sp.Filename, sp.Line, sp.Column)
	}
	return fmt.Sprintf("%d:%d", sp.Line, sp.Column)
}
