package parser

import (
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/plc-lang/plc/internal/ast"
)

// decimalPrecision is the mantissa precision, in bits, of decimal literals.
const decimalPrecision = 128

var unescaper = strings.NewReplacer(
	`\b`, "\b",
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\'`, "'",
	`\"`, `"`,
	`\\`, `\`,
)

func (p *Parser) parseIntegerLiteral() ast.Expr {
	tok := p.advance()
	value, ok := new(big.Int).SetString(tok.Literal, 10)
	if !ok {
		p.pos--
		p.errorf("Invalid integer literal %q.", tok.Literal)
	}
	return ast.NewLiteralExpr(ast.IntegerLit, tok.Literal, value, tok.Span)
}

func (p *Parser) parseDecimalLiteral() ast.Expr {
	tok := p.advance()
	value, _, err := big.ParseFloat(tok.Literal, 10, decimalPrecision, big.ToNearestEven)
	if err != nil {
		p.pos--
		p.errorf("Invalid decimal literal %q.", tok.Literal)
	}
	return ast.NewLiteralExpr(ast.DecimalLit, tok.Literal, value, tok.Span)
}

func (p *Parser) parseCharacterLiteral() ast.Expr {
	tok := p.advance()
	text := unescape(tok.Literal)
	r, size := utf8.DecodeRuneInString(text)
	if text == "" || size != len(text) {
		p.pos--
		p.errorf("Invalid character literal %s.", tok.Literal)
	}
	return ast.NewLiteralExpr(ast.CharacterLit, tok.Literal, r, tok.Span)
}

func (p *Parser) parseStringLiteral() ast.Expr {
	tok := p.advance()
	return ast.NewLiteralExpr(ast.StringLit, tok.Literal, unescape(tok.Literal), tok.Span)
}

// unescape strips the surrounding quotes of a character or string token and
// replaces its escape sequences.
func unescape(raw string) string {
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	return unescaper.Replace(raw)
}
