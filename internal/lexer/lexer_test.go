package lexer

import (
	"errors"
	"testing"
)

func TestTokenize_Basic(t *testing.T) {
	input := `LET x: Integer = 10;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENTIFIER, "LET"},
		{IDENTIFIER, "x"},
		{OPERATOR, ":"},
		{IDENTIFIER, "Integer"},
		{OPERATOR, "="},
		{INTEGER, "10"},
		{OPERATOR, ";"},
	}

	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != len(tests) {
		t.Fatalf("expected %d tokens, got %d", len(tests), len(tokens))
	}

	for i, tt := range tests {
		tok := tokens[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenize_Operators(t *testing.T) {
	input := `= + - * / == != < > <= >= && || . ( ) ,`

	expected := []string{"=", "+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">=", "&&", "||", ".", "(", ")", ","}

	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, lit := range expected {
		if tokens[i].Type != OPERATOR || tokens[i].Literal != lit {
			t.Fatalf("step %d - expected operator %q, got %s %q", i, lit, tokens[i].Type, tokens[i].Literal)
		}
	}
}

func TestTokenize_Literals(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{`123`, INTEGER},
		{`-7`, INTEGER},
		{`+7`, INTEGER},
		{`1.50`, DECIMAL},
		{`'c'`, CHARACTER},
		{`'\n'`, CHARACTER},
		{`'é'`, CHARACTER},
		{`"hello\tworld"`, STRING},
		{`""`, STRING},
		{`snake_case-name1`, IDENTIFIER},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if len(tokens) != 1 {
			t.Fatalf("%q: expected 1 token, got %d", tt.input, len(tokens))
		}
		if tokens[0].Type != tt.typ {
			t.Fatalf("%q: expected %s, got %s", tt.input, tt.typ, tokens[0].Type)
		}
		if tokens[0].Literal != tt.input {
			t.Fatalf("%q: expected literal %q, got %q", tt.input, tt.input, tokens[0].Literal)
		}
	}
}

func TestTokenize_SignAfterOperandIsOperator(t *testing.T) {
	tokens, err := Tokenize(`x -1`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if !tokens[1].Is(OPERATOR, "-") {
		t.Fatalf("expected '-' operator, got %s %q", tokens[1].Type, tokens[1].Literal)
	}

	tokens, err = Tokenize(`RETURN -1;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tokens[1].Is(INTEGER, "-1") {
		t.Fatalf("expected signed integer after keyword, got %s %q", tokens[1].Type, tokens[1].Literal)
	}
}

func TestTokenize_DotAfterIntegerIsOperator(t *testing.T) {
	tokens, err := Tokenize(`1.x`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{INTEGER, OPERATOR, IDENTIFIER}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Fatalf("step %d - expected %s, got %s", i, typ, tokens[i].Type)
		}
	}
}

func TestTokenize_Spans(t *testing.T) {
	tokens, err := Tokenize("LET\n  x;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Span{
		{Line: 1, Column: 1, Start: 0, End: 3},
		{Line: 2, Column: 3, Start: 6, End: 7},
		{Line: 2, Column: 4, Start: 7, End: 8},
	}
	for i, span := range want {
		if tokens[i].Span != span {
			t.Fatalf("token %d: expected span %+v, got %+v", i, span, tokens[i].Span)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  LexerErrorKind
		start int
	}{
		{`"abc`, ErrUnterminatedString, 0},
		{"x = \"ab\ncd\"", ErrUnterminatedString, 4},
		{`''`, ErrEmptyCharacter, 0},
		{`'ab'`, ErrUnterminatedCharacter, 0},
		{`"\q"`, ErrInvalidEscape, 0},
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("%q: expected *LexError, got %v", tt.input, err)
		}
		if lexErr.Kind != tt.kind {
			t.Fatalf("%q: expected kind %d, got %d", tt.input, tt.kind, lexErr.Kind)
		}
		if lexErr.Span.Start != tt.start {
			t.Fatalf("%q: expected offset %d, got %d", tt.input, tt.start, lexErr.Span.Start)
		}
	}
}

func TestLexErrorToDiagnostic(t *testing.T) {
	l := New(`"open`)
	l.SetFilename("main.plc")
	_, err := l.Tokenize()

	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %v", err)
	}
	d := lexErr.ToDiagnostic()
	if d.Span.Filename != "main.plc" {
		t.Fatalf("expected filename to be carried, got %q", d.Span.Filename)
	}
	if d.Code == "" || d.Message != "unterminated string literal" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}
