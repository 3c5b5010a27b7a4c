package parser

import (
	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
)

// Operator tiers from lowest to highest precedence. Every tier is
// left-associative: parse one operand of the next tier, then loop while the
// current token is an operator of this tier.
var (
	comparisonOperators     = []string{"<", "<=", ">", ">=", "==", "!="}
	additiveOperators       = []string{"+", "-"}
	multiplicativeOperators = []string{"*", "/"}
)

func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	expr := p.parseAnd()
	for {
		op, ok := p.matchKeyword("OR")
		if !ok {
			return expr
		}
		right := p.parseAnd()
		expr = ast.NewBinaryExpr(op.Literal, expr, right, mergeSpan(expr.Span(), right.Span()))
	}
}

func (p *Parser) parseAnd() ast.Expr {
	expr := p.parseComparison()
	for {
		op, ok := p.matchKeyword("AND")
		if !ok {
			return expr
		}
		right := p.parseComparison()
		expr = ast.NewBinaryExpr(op.Literal, expr, right, mergeSpan(expr.Span(), right.Span()))
	}
}

func (p *Parser) parseComparison() ast.Expr {
	return p.parseBinaryTier(comparisonOperators, p.parseAdditive)
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinaryTier(additiveOperators, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryTier(multiplicativeOperators, p.parseSecondary)
}

func (p *Parser) parseBinaryTier(ops []string, next func() ast.Expr) ast.Expr {
	expr := next()
	for {
		op, ok := p.matchOperator(ops...)
		if !ok {
			return expr
		}
		right := next()
		expr = ast.NewBinaryExpr(op.Literal, expr, right, mergeSpan(expr.Span(), right.Span()))
	}
}

// parseSecondary parses a primary expression and its postfix chain.
func (p *Parser) parseSecondary() ast.Expr {
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix folds `.name` and `.name(args)` suffixes onto expr.
func (p *Parser) parsePostfix(expr ast.Expr) ast.Expr {
	for {
		if _, ok := p.matchOperator("."); !ok {
			return expr
		}
		name := p.expectName("Expected identifier after '.'.")
		if _, ok := p.matchOperator("("); ok {
			args := p.parseArgs()
			expr = ast.NewFunctionExpr(expr, name.Literal, args, mergeSpan(expr.Span(), p.prevSpan()))
		} else {
			expr = ast.NewAccessExpr(expr, name.Literal, mergeSpan(expr.Span(), name.Span))
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok, ok := p.current()
	if !ok {
		p.errorf("Expected expression.")
	}

	switch tok.Type {
	case lexer.IDENTIFIER:
		return p.parseIdentifier()
	case lexer.INTEGER:
		return p.parseIntegerLiteral()
	case lexer.DECIMAL:
		return p.parseDecimalLiteral()
	case lexer.CHARACTER:
		return p.parseCharacterLiteral()
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.OPERATOR:
		if tok.Literal == "(" {
			return p.parseGroup()
		}
	}

	p.errorf("Expected expression.")
	panic("unreachable")
}

// parseIdentifier handles NIL, TRUE, FALSE, plain names and receiver-less
// calls.
func (p *Parser) parseIdentifier() ast.Expr {
	tok, _ := p.current()

	switch tok.Literal {
	case "NIL":
		p.advance()
		return ast.NewLiteralExpr(ast.NilLit, tok.Literal, nil, tok.Span)
	case "TRUE", "FALSE":
		p.advance()
		return ast.NewLiteralExpr(ast.BooleanLit, tok.Literal, tok.Literal == "TRUE", tok.Span)
	}

	name := p.expectName("Expected expression.")
	if _, ok := p.matchOperator("("); ok {
		args := p.parseArgs()
		return ast.NewFunctionExpr(nil, name.Literal, args, mergeSpan(name.Span, p.prevSpan()))
	}
	return ast.NewAccessExpr(nil, name.Literal, name.Span)
}

func (p *Parser) parseGroup() ast.Expr {
	start := p.expectOperator("(", "Expected '('.").Span
	inner := p.parseExpr()
	p.expectOperator(")", "Expected ')' after expression.")
	return ast.NewGroupExpr(inner, mergeSpan(start, p.prevSpan()))
}

// parseArgs parses `(expr (',' expr)*)? ')'`; the opening parenthesis has
// already been consumed.
func (p *Parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	if !p.check(lexer.OPERATOR, ")") {
		for {
			args = append(args, p.parseExpr())
			if _, ok := p.matchOperator(","); !ok {
				break
			}
		}
	}
	p.expectOperator(")", "Expected ')' after arguments.")
	return args
}
