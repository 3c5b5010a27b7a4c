package lsp

import (
	"fmt"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/types"
)

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if resp := decodeParams(msg, &params); resp != nil {
		return resp
	}

	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok || doc.Result == nil {
		return result(msg, nil)
	}
	return result(msg, getHover(doc, params.Position))
}

func getHover(doc *Document, pos Position) *Hover {
	offset := positionToOffset(doc.Content, pos)
	info := doc.Result.Info

	node := nodeAt(doc.Result.Source, offset)
	if node == nil {
		return nil
	}

	var text string
	switch n := node.(type) {
	case *ast.AccessExpr:
		if v := info.VariableOf(n); v != nil {
			text = v.String()
		}
	case *ast.FunctionExpr:
		if fn := info.FunctionOf(n); fn != nil {
			text = signature(fn)
		}
	case *ast.Method:
		if fn := info.FunctionOf(n); fn != nil {
			text = signature(fn)
		}
	case *ast.Field, *ast.DeclarationStmt, *ast.ForStmt:
		if v := info.VariableOf(n); v != nil {
			text = v.String()
		}
	}
	if text == "" {
		expr, ok := node.(ast.Expr)
		if !ok {
			return nil
		}
		t := info.TypeOf(expr)
		if t == nil {
			return nil
		}
		text = t.Name
	}

	r := spanRange(doc.Content, node.Span())
	return &Hover{
		Contents: MarkupContent{Kind: "markdown", Value: "```plc\n" + text + "\n```"},
		Range:    &r,
	}
}

// nodeAt returns the innermost expression containing offset, or failing
// that the innermost declaration.
func nodeAt(src *ast.Source, offset int) ast.Node {
	var expr, decl ast.Node
	ast.Walk(src, func(n ast.Node) bool {
		sp := n.Span()
		if offset < sp.Start || offset >= sp.End {
			return true
		}
		switch n.(type) {
		case ast.Expr:
			if expr == nil || narrower(sp, expr.Span()) {
				expr = n
			}
		case *ast.Field, *ast.DeclarationStmt, *ast.ForStmt, *ast.Method:
			if decl == nil || narrower(sp, decl.Span()) {
				decl = n
			}
		}
		return true
	})
	if expr != nil {
		return expr
	}
	return decl
}

func narrower(a, b lexer.Span) bool {
	return a.End-a.Start < b.End-b.Start
}

func signature(fn *types.Function) string {
	if fn.BindingName != "" && fn.BindingName != fn.Name {
		return fmt.Sprintf("%s\n// binds %s", fn, fn.BindingName)
	}
	return fn.String()
}

func spanRange(content string, sp lexer.Span) Range {
	return Range{
		Start: offsetToPosition(content, sp.Start),
		End:   offsetToPosition(content, sp.End),
	}
}
