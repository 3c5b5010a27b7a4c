package parser

import (
	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
)

func (p *Parser) parseStmt() ast.Stmt {
	tok, ok := p.current()
	if !ok {
		p.errorf("Expected a statement.")
	}

	switch {
	case tok.Is(lexer.IDENTIFIER, "LET"):
		return p.parseDeclarationStmt()
	case tok.Is(lexer.IDENTIFIER, "RETURN"):
		return p.parseReturnStmt()
	case tok.Is(lexer.IDENTIFIER, "IF"):
		return p.parseIfStmt()
	case tok.Is(lexer.IDENTIFIER, "FOR"):
		return p.parseForStmt()
	case tok.Is(lexer.IDENTIFIER, "WHILE"):
		return p.parseWhileStmt()
	case tok.Type == lexer.IDENTIFIER && !lexer.IsKeyword(tok.Literal):
		return p.parseAccessStmt()
	default:
		p.errorf("Expected a statement.")
		panic("unreachable")
	}
}

// parseDeclarationStmt parses `LET name (':' type)? ('=' expr)? ';'`.
func (p *Parser) parseDeclarationStmt() ast.Stmt {
	start := p.expectKeyword("LET", "Expected 'LET'.").Span

	name := p.expectName("Expected variable name after 'LET'.")

	typeName := ""
	if _, ok := p.matchOperator(":"); ok {
		typeName = p.expectName("Expected type after ':'.").Literal
	}

	var value ast.Expr
	if _, ok := p.matchOperator("="); ok {
		value = p.parseExpr()
	}
	p.expectOperator(";", "Expected ';' after declaration.")

	return ast.NewDeclarationStmt(name.Literal, typeName, value, mergeSpan(start, p.prevSpan()))
}

// parseReturnStmt parses `RETURN expr ';'`.
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.expectKeyword("RETURN", "Expected 'RETURN'.").Span

	value := p.parseExpr()
	p.expectOperator(";", "Expected ';' after return value.")

	return ast.NewReturnStmt(value, mergeSpan(start, p.prevSpan()))
}

// parseIfStmt parses `IF expr DO stmt* (ELSE stmt*)? END`.
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.expectKeyword("IF", "Expected 'IF'.").Span

	condition := p.parseExpr()
	p.expectKeyword("DO", "Expected 'DO' after IF condition.")

	then := p.parseBlock("ELSE", "END")

	var els []ast.Stmt
	if _, ok := p.matchKeyword("ELSE"); ok {
		els = p.parseBlock("END")
	}
	p.expectKeyword("END", "Expected 'END' to close the IF statement.")

	return ast.NewIfStmt(condition, then, els, mergeSpan(start, p.prevSpan()))
}

// parseForStmt parses `FOR name IN expr DO stmt* END`.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.expectKeyword("FOR", "Expected 'FOR'.").Span

	name := p.expectName("Expected loop variable after 'FOR'.")
	p.expectKeyword("IN", "Expected 'IN' after loop variable.")
	iterable := p.parseExpr()
	p.expectKeyword("DO", "Expected 'DO' after iterable expression.")

	body := p.parseBlock("END")
	p.expectKeyword("END", "Expected 'END' to close the FOR loop.")

	return ast.NewForStmt(name.Literal, iterable, body, mergeSpan(start, p.prevSpan()))
}

// parseWhileStmt parses `WHILE expr DO stmt* END`.
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.expectKeyword("WHILE", "Expected 'WHILE'.").Span

	condition := p.parseExpr()
	p.expectKeyword("DO", "Expected 'DO' after WHILE condition.")

	body := p.parseBlock("END")
	p.expectKeyword("END", "Expected 'END' to close the WHILE loop.")

	return ast.NewWhileStmt(condition, body, mergeSpan(start, p.prevSpan()))
}

// parseAccessStmt handles identifier-led statements: an access chain
// followed by `= expr ;` is an assignment, a chain ending in a call is an
// expression statement. A bare access chain is not a statement.
func (p *Parser) parseAccessStmt() ast.Stmt {
	start := p.currentSpan()

	target := p.parseAccessChain()

	if _, ok := p.matchOperator("="); ok {
		value := p.parseExpr()
		p.expectOperator(";", "Expected ';' after assignment.")
		return ast.NewAssignmentStmt(target, value, mergeSpan(start, p.prevSpan()))
	}

	if _, isCall := target.(*ast.FunctionExpr); !isCall {
		p.errorf("Expected '=' or a call in statement.")
	}
	p.expectOperator(";", "Expected ';' after function call.")

	return ast.NewExprStmt(target, mergeSpan(start, p.prevSpan()))
}

// parseAccessChain parses a leading identifier (optionally called) followed
// by any number of `.name` / `.name(args)` suffixes.
func (p *Parser) parseAccessChain() ast.Expr {
	name := p.expectName("Expected identifier.")

	var expr ast.Expr
	if _, ok := p.matchOperator("("); ok {
		args := p.parseArgs()
		expr = ast.NewFunctionExpr(nil, name.Literal, args, mergeSpan(name.Span, p.prevSpan()))
	} else {
		expr = ast.NewAccessExpr(nil, name.Literal, name.Span)
	}

	return p.parsePostfix(expr)
}
