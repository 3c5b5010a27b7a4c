package lsp

import (
	"github.com/plc-lang/plc/internal/ast"
)

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if resp := decodeParams(msg, &params); resp != nil {
		return resp
	}

	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok || doc.Result == nil {
		return result(msg, nil)
	}
	return result(msg, findDefinition(doc, params.Position))
}

// findDefinition resolves a variable use to the field, declaration or loop
// that introduced it, and a call to the method it invokes. Builtins and
// parameters have no declaring node and resolve to nothing.
func findDefinition(doc *Document, pos Position) *Location {
	offset := positionToOffset(doc.Content, pos)
	info := doc.Result.Info

	var def ast.Node
	switch n := nodeAt(doc.Result.Source, offset).(type) {
	case *ast.AccessExpr:
		v := info.VariableOf(n)
		if v == nil {
			return nil
		}
		ast.Walk(doc.Result.Source, func(node ast.Node) bool {
			switch node.(type) {
			case *ast.Field, *ast.DeclarationStmt, *ast.ForStmt:
				if info.VariableOf(node) == v {
					def = node
				}
			}
			return def == nil
		})
	case *ast.FunctionExpr:
		fn := info.FunctionOf(n)
		if fn == nil {
			return nil
		}
		for _, m := range doc.Result.Source.Methods {
			if info.FunctionOf(m) == fn {
				def = m
				break
			}
		}
	}
	if def == nil {
		return nil
	}

	return &Location{
		URI:   doc.URI,
		Range: spanRange(doc.Content, def.Span()),
	}
}
