package lexer

import (
	"fmt"

	"github.com/plc-lang/plc/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrUnterminatedCharacter
	ErrEmptyCharacter
	ErrInvalidEscape
)

// LexError reports the first malformed token. Lexing stops there.
type LexError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Span.Start)
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexerUnterminatedString
	case ErrUnterminatedCharacter:
		return diag.CodeLexerUnterminatedCharacter
	case ErrEmptyCharacter:
		return diag.CodeLexerEmptyCharacter
	case ErrInvalidEscape:
		return diag.CodeLexerInvalidEscape
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e *LexError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    string
	pos      int // offset of the current byte
	line     int // current line number (1-based)
	column   int // current column number (1-based)
	filename string

	// last is the most recently emitted token; it decides whether a sign
	// starts a number or is a binary operator.
	last *Token
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// SetFilename attributes all emitted spans to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Tokenize lexes the whole input.
func Tokenize(input string) ([]Token, error) {
	return New(input).Tokenize()
}

// Tokenize returns every token of the input or the first lexing error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. ok is false once the input is exhausted.
func (l *Lexer) Next() (tok Token, ok bool, err error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{}, false, nil
	}

	line, column, start := l.line, l.column, l.pos
	ch := l.input[start]

	switch {
	case isLetter(ch) || ch == '_':
		l.lexIdentifier()
		tok = l.makeToken(IDENTIFIER, line, column, start)
	case isDigit(ch):
		tok = l.makeToken(l.lexNumber(), line, column, start)
	case (ch == '+' || ch == '-') && isDigit(l.peekAt(1)) && !l.lastEndsValue():
		l.advance()
		tok = l.makeToken(l.lexNumber(), line, column, start)
	case ch == '\'':
		if err := l.lexCharacter(line, column, start); err != nil {
			return Token{}, false, err
		}
		tok = l.makeToken(CHARACTER, line, column, start)
	case ch == '"':
		if err := l.lexString(line, column, start); err != nil {
			return Token{}, false, err
		}
		tok = l.makeToken(STRING, line, column, start)
	default:
		l.lexOperator()
		tok = l.makeToken(OPERATOR, line, column, start)
	}

	l.last = &tok
	return tok, true, nil
}

func (l *Lexer) makeToken(tt TokenType, line, column, start int) Token {
	return Token{
		Type:    tt,
		Literal: l.input[start:l.pos],
		Span: Span{
			Filename: l.filename,
			Line:     line,
			Column:   column,
			Start:    start,
			End:      l.pos,
		},
	}
}

func (l *Lexer) errorAt(kind LexerErrorKind, msg string, line, column, start int) error {
	return &LexError{
		Kind:    kind,
		Message: msg,
		Span: Span{
			Filename: l.filename,
			Line:     line,
			Column:   column,
			Start:    start,
			End:      l.pos,
		},
	}
}

// advance moves one byte forward, tracking line and column.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\b', '\n', '\r', '\t':
			l.advance()
		default:
			return
		}
	}
}

// lastEndsValue reports whether the previous token can end an operand, in
// which case a following sign is a binary operator.
func (l *Lexer) lastEndsValue() bool {
	if l.last == nil {
		return false
	}
	switch l.last.Type {
	case IDENTIFIER:
		return !IsKeyword(l.last.Literal) || l.last.Literal == "TRUE" || l.last.Literal == "FALSE" || l.last.Literal == "NIL"
	case INTEGER, DECIMAL, CHARACTER, STRING:
		return true
	case OPERATOR:
		return l.last.Literal == ")"
	}
	return false
}

func (l *Lexer) lexIdentifier() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) lexNumber() TokenType {
	for isDigit(l.peekAt(0)) {
		l.advance()
	}
	if l.peekAt(0) == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peekAt(0)) {
			l.advance()
		}
		return DECIMAL
	}
	return INTEGER
}

func (l *Lexer) lexCharacter(line, column, start int) error {
	l.advance() // opening quote
	switch ch := l.peekAt(0); {
	case ch == '\'':
		l.advance()
		return l.errorAt(ErrEmptyCharacter, "empty character literal", line, column, start)
	case ch == 0 || ch == '\n' || ch == '\r':
		return l.errorAt(ErrUnterminatedCharacter, "unterminated character literal", line, column, start)
	case ch == '\\':
		if err := l.lexEscape(line, column, start); err != nil {
			return err
		}
	default:
		l.advanceRune()
	}
	if l.peekAt(0) != '\'' {
		return l.errorAt(ErrUnterminatedCharacter, "unterminated character literal", line, column, start)
	}
	l.advance()
	return nil
}

func (l *Lexer) lexString(line, column, start int) error {
	l.advance() // opening quote
	for {
		switch ch := l.peekAt(0); {
		case ch == '"':
			l.advance()
			return nil
		case ch == 0 || ch == '\n' || ch == '\r':
			return l.errorAt(ErrUnterminatedString, "unterminated string literal", line, column, start)
		case ch == '\\':
			if err := l.lexEscape(line, column, start); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) lexEscape(line, column, start int) error {
	l.advance() // backslash
	switch l.peekAt(0) {
	case 'b', 'n', 'r', 't', '\'', '"', '\\':
		l.advance()
		return nil
	}
	return l.errorAt(ErrInvalidEscape, "invalid escape sequence", line, column, start)
}

// advanceRune consumes a whole UTF-8 sequence so a multi-byte character
// literal stays a single character.
func (l *Lexer) advanceRune() {
	l.advance()
	for l.pos < len(l.input) && l.input[l.pos]&0xC0 == 0x80 {
		l.pos++
	}
}

func (l *Lexer) lexOperator() {
	ch, next := l.peekAt(0), l.peekAt(1)
	switch {
	case (ch == '<' || ch == '>' || ch == '!' || ch == '=') && next == '=':
		l.advance()
	case ch == '&' && next == '&', ch == '|' && next == '|':
		l.advance()
	}
	l.advanceRune()
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
