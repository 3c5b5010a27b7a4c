package lsp

import (
	"sort"
	"strings"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/types"
)

// CompletionParams represents completion request parameters.
type CompletionParams struct {
	TextDocumentPositionParams
	Context *CompletionContext `json:"context,omitempty"`
}

type CompletionContext struct {
	TriggerKind      int    `json:"triggerKind"`
	TriggerCharacter string `json:"triggerCharacter,omitempty"`
}

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindMethod   = 2
	completionKindFunction = 3
	completionKindField    = 5
	completionKindVariable = 6
	completionKindClass    = 7
	completionKindKeyword  = 14
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	var params CompletionParams
	if resp := decodeParams(msg, &params); resp != nil {
		return resp
	}

	doc, ok := s.lookup(params.TextDocument.URI)
	if !ok {
		return result(msg, CompletionList{Items: []CompletionItem{}})
	}
	return result(msg, CompletionList{Items: s.getCompletions(doc, params.Position)})
}

func (s *Server) getCompletions(doc *Document, pos Position) []CompletionItem {
	offset := positionToOffset(doc.Content, pos)

	res := doc.Result
	if res == nil && doc.Previous != nil && strings.HasPrefix(doc.Previous.Input, doc.Content[:offset]) {
		res = doc.Previous
	}

	if offset > 0 && doc.Content[offset-1] == '.' && res != nil {
		if t := receiverTypeBefore(res, offset-1); t != nil {
			return memberCompletions(t)
		}
	}

	items := []CompletionItem{}
	if res != nil {
		items = append(items, programCompletions(res)...)
	}
	global := s.opts.Global
	if global == nil {
		global = types.NewGlobalScope()
	}
	for _, fn := range global.Functions() {
		items = append(items, CompletionItem{Label: fn.Name, Kind: completionKindFunction, Detail: fn.String()})
	}

	registry := s.opts.Registry
	if registry == nil {
		registry = types.NewRegistry()
	}
	for _, t := range registry.Types() {
		items = append(items, CompletionItem{Label: t.Name, Kind: completionKindClass})
	}

	keywords := make([]string, 0, len(lexer.Keywords))
	for kw := range lexer.Keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	for _, kw := range keywords {
		items = append(items, CompletionItem{Label: kw, Kind: completionKindKeyword})
	}
	return items
}

// receiverTypeBefore returns the type of the expression ending at dot.
func receiverTypeBefore(res *compile.Result, dot int) *types.Type {
	var found ast.Expr
	ast.Walk(res.Source, func(n ast.Node) bool {
		if e, ok := n.(ast.Expr); ok && e.Span().End == dot {
			if found == nil || e.Span().Start < found.Span().Start {
				found = e
			}
		}
		return true
	})
	if found == nil {
		return nil
	}
	return res.Info.TypeOf(found)
}

func memberCompletions(t *types.Type) []CompletionItem {
	items := []CompletionItem{}
	for _, f := range t.Fields() {
		items = append(items, CompletionItem{Label: f.Name, Kind: completionKindField, Detail: f.Type.Name})
	}
	for _, m := range t.Methods() {
		items = append(items, CompletionItem{Label: m.Name, Kind: completionKindMethod, Detail: m.String()})
	}
	return items
}

// programCompletions lists the fields and methods declared by the program.
func programCompletions(res *compile.Result) []CompletionItem {
	var items []CompletionItem
	for _, f := range res.Source.Fields {
		if v := res.Info.VariableOf(f); v != nil {
			items = append(items, CompletionItem{Label: v.Name, Kind: completionKindVariable, Detail: v.Type.Name})
		}
	}
	for _, m := range res.Source.Methods {
		if fn := res.Info.FunctionOf(m); fn != nil {
			items = append(items, CompletionItem{Label: fn.Name, Kind: completionKindFunction, Detail: fn.String()})
		}
	}
	return items
}
