package lexer

// TokenType represents the type of a token
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // byte offset of the first character
	End      int    // exclusive end offset
}

// Offset returns the source offset the span starts at.
func (s Span) Offset() int { return s.Start }

// Token represents a lexical token. Literal holds the exact source text,
// quotes and escapes included; the parser decodes it.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

// Token type constants. Keywords are not distinguished by the lexer: they
// arrive as IDENTIFIER tokens and the parser reserves them.
const (
	IDENTIFIER TokenType = "IDENTIFIER"
	INTEGER    TokenType = "INTEGER"
	DECIMAL    TokenType = "DECIMAL"
	CHARACTER  TokenType = "CHARACTER"
	STRING     TokenType = "STRING"
	OPERATOR   TokenType = "OPERATOR"
)

// Keywords lists the identifiers the parser treats as reserved words.
var Keywords = map[string]bool{
	"LET":    true,
	"DEF":    true,
	"IF":     true,
	"THEN":   true,
	"DO":     true,
	"ELSE":   true,
	"END":    true,
	"FOR":    true,
	"IN":     true,
	"WHILE":  true,
	"RETURN": true,
	"TRUE":   true,
	"FALSE":  true,
	"NIL":    true,
	"AND":    true,
	"OR":     true,
}

// IsKeyword reports whether the identifier is reserved.
func IsKeyword(ident string) bool {
	return Keywords[ident]
}

// Is reports whether the token has the given type and literal.
func (t Token) Is(tt TokenType, literal string) bool {
	return t.Type == tt && t.Literal == literal
}
