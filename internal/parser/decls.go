package parser

import (
	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
)

func (p *Parser) parseSource() *ast.Source {
	start := p.currentSpan()

	var (
		fields  []*ast.Field
		methods []*ast.Method
	)
	for !p.AtEnd() {
		switch {
		case p.checkKeyword("LET"):
			fields = append(fields, p.parseField())
		case p.checkKeyword("DEF"):
			methods = append(methods, p.parseMethod())
		default:
			p.errorf("Expected a field (LET) or method (DEF) definition.")
		}
	}

	return ast.NewSource(fields, methods, mergeSpan(start, p.prevSpan()))
}

// parseField parses `LET name ':' type ('=' expr)? ';'`.
func (p *Parser) parseField() *ast.Field {
	start := p.expectKeyword("LET", "Expected 'LET'.").Span

	name := p.expectName("Expected field name after 'LET'.")
	p.expectOperator(":", "Expected ':' after field name.")
	typeName := p.expectName("Expected field type after ':'.")

	var value ast.Expr
	if _, ok := p.matchOperator("="); ok {
		value = p.parseExpr()
	}
	p.expectOperator(";", "Expected ';' after field declaration.")

	return ast.NewField(name.Literal, typeName.Literal, value, mergeSpan(start, p.prevSpan()))
}

// parseMethod parses
// `DEF name '(' (name ':' type (',' name ':' type)*)? ')' (':' type)? DO stmt* END`.
func (p *Parser) parseMethod() *ast.Method {
	start := p.expectKeyword("DEF", "Expected 'DEF'.").Span

	name := p.expectName("Expected method name after 'DEF'.")
	p.expectOperator("(", "Expected '(' after method name.")

	var params, paramTypes []string
	if !p.check(lexer.OPERATOR, ")") {
		for {
			param := p.expectName("Expected parameter name.")
			p.expectOperator(":", "Expected ':' after parameter name.")
			typ := p.expectName("Expected parameter type after ':'.")
			params = append(params, param.Literal)
			paramTypes = append(paramTypes, typ.Literal)

			if _, ok := p.matchOperator(","); !ok {
				break
			}
		}
	}
	p.expectOperator(")", "Expected ')' after parameters.")

	returnType := ""
	if _, ok := p.matchOperator(":"); ok {
		returnType = p.expectName("Expected return type after ':'.").Literal
	}

	p.expectKeyword("DO", "Expected 'DO' after method signature.")
	body := p.parseBlock("END")
	p.expectKeyword("END", "Expected 'END' to close the method.")

	return ast.NewMethod(name.Literal, params, paramTypes, returnType, body, mergeSpan(start, p.prevSpan()))
}

// parseBlock parses statements until one of the terminator keywords or the
// end of the tokens. The terminator is left for the caller to consume.
func (p *Parser) parseBlock(terminators ...string) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.AtEnd() && !p.atKeyword(terminators...) {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

func (p *Parser) atKeyword(words ...string) bool {
	for _, w := range words {
		if p.checkKeyword(w) {
			return true
		}
	}
	return false
}
