package parser

import (
	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
)

type Option func(*options)

type options struct {
	filename string
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// Parser implements a recursive descent parser over a finite token slice.
// Invariants:
//   - Lookahead: tokens[pos] is the current token; pos == len(tokens) means
//     the stream is exhausted, which is not itself an error. Only advance
//     moves pos, and it never moves backwards.
//   - Diagnostics: the first unmet expectation aborts the parse. errorf
//     unwinds to the public entry point, which returns the *ParseError.
//   - Spans: every node spans from its first token to the last token it
//     consumed (mergeSpan with prevSpan).
type Parser struct {
	tokens   []lexer.Token
	pos      int
	filename string
}

// New returns a parser over the provided tokens.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Parser{
		tokens:   tokens,
		filename: cfg.filename,
	}
}

// ParseString lexes and parses a whole program.
func ParseString(input string, opts ...Option) (*ast.Source, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	lx := lexer.New(input)
	lx.SetFilename(cfg.filename)
	tokens, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	return New(tokens, opts...).ParseSource()
}

// ParseSource parses `(Field | Method)*` until the tokens run out.
func (p *Parser) ParseSource() (src *ast.Source, err error) {
	defer p.handleBailout(&err)
	return p.parseSource(), nil
}

// ParseStatement parses a single statement starting at the current token.
func (p *Parser) ParseStatement() (stmt ast.Stmt, err error) {
	defer p.handleBailout(&err)
	return p.parseStmt(), nil
}

// ParseExpression parses a single expression starting at the current token.
// Tokens after the expression are left unconsumed.
func (p *Parser) ParseExpression() (expr ast.Expr, err error) {
	defer p.handleBailout(&err)
	return p.parseExpr(), nil
}

// AtEnd reports whether every token has been consumed.
func (p *Parser) AtEnd() bool {
	return p.pos >= len(p.tokens)
}

// current returns the token under examination; ok is false at the end.
func (p *Parser) current() (lexer.Token, bool) {
	if p.AtEnd() {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// check reports whether the current token has the given type and, when
// literal is non-empty, the given text.
func (p *Parser) check(tt lexer.TokenType, literal string) bool {
	tok, ok := p.current()
	if !ok || tok.Type != tt {
		return false
	}
	return literal == "" || tok.Literal == literal
}

func (p *Parser) checkKeyword(word string) bool {
	return p.check(lexer.IDENTIFIER, word)
}

// matchOperator consumes the current token if it is one of ops.
func (p *Parser) matchOperator(ops ...string) (lexer.Token, bool) {
	for _, op := range ops {
		if p.check(lexer.OPERATOR, op) {
			return p.advance(), true
		}
	}
	return lexer.Token{}, false
}

func (p *Parser) matchKeyword(word string) (lexer.Token, bool) {
	if p.checkKeyword(word) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// expect consumes a token of the given type and literal or fails with msg.
func (p *Parser) expect(tt lexer.TokenType, literal, msg string) lexer.Token {
	if p.check(tt, literal) {
		return p.advance()
	}
	p.errorf("%s", msg)
	panic("unreachable")
}

func (p *Parser) expectOperator(op, msg string) lexer.Token {
	return p.expect(lexer.OPERATOR, op, msg)
}

func (p *Parser) expectKeyword(word, msg string) lexer.Token {
	return p.expect(lexer.IDENTIFIER, word, msg)
}

// expectName consumes a non-reserved identifier.
func (p *Parser) expectName(msg string) lexer.Token {
	tok, ok := p.current()
	if !ok || tok.Type != lexer.IDENTIFIER || lexer.IsKeyword(tok.Literal) {
		p.errorf("%s", msg)
	}
	return p.advance()
}

// currentSpan is the span errors are reported at: the current token, or an
// empty span just past the last token once the stream is exhausted.
func (p *Parser) currentSpan() lexer.Span {
	if tok, ok := p.current(); ok {
		return tok.Span
	}
	if len(p.tokens) == 0 {
		return lexer.Span{Filename: p.filename}
	}
	last := p.tokens[len(p.tokens)-1].Span
	return lexer.Span{
		Filename: last.Filename,
		Line:     last.Line,
		Column:   last.Column + (last.End - last.Start),
		Start:    last.End,
		End:      last.End,
	}
}

// prevSpan is the span of the most recently consumed token.
func (p *Parser) prevSpan() lexer.Span {
	if p.pos == 0 {
		return p.currentSpan()
	}
	return p.tokens[p.pos-1].Span
}

// mergeSpan assumes start.End <= end.End and returns a span covering both.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start
	if end.End > span.End {
		span.End = end.End
	}
	return span
}
