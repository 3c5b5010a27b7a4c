package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageAnalyzer Stage = "analyzer"
	StageCodegen  Stage = "codegen"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// LabeledSpan represents a span with an optional label.
type LabeledSpan struct {
	Span  Span
	Label string // Optional label (e.g., "expected `Integer`, found `String`")
	Style string // "primary" or "secondary" - primary spans are emphasized
}

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerUnterminatedString    Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerUnterminatedCharacter Code = "LEXER_UNTERMINATED_CHARACTER"
	CodeLexerEmptyCharacter        Code = "LEXER_EMPTY_CHARACTER"
	CodeLexerInvalidEscape         Code = "LEXER_INVALID_ESCAPE"

	// Parser errors
	CodeParseExpectedToken Code = "PARSE_EXPECTED_TOKEN"

	// Analyzer errors
	CodeTypeUnknownType             Code = "TYPE_UNKNOWN_TYPE"
	CodeTypeUndefinedVariable       Code = "TYPE_UNDEFINED_VARIABLE"
	CodeTypeUndefinedFunction       Code = "TYPE_UNDEFINED_FUNCTION"
	CodeTypeUnknownField            Code = "TYPE_UNKNOWN_FIELD"
	CodeTypeUnknownMethod           Code = "TYPE_UNKNOWN_METHOD"
	CodeTypeArityMismatch           Code = "TYPE_ARITY_MISMATCH"
	CodeTypeCannotAssign            Code = "TYPE_CANNOT_ASSIGN"
	CodeTypeInvalidOperation        Code = "TYPE_INVALID_OPERATION"
	CodeTypeInvalidAssignmentTarget Code = "TYPE_INVALID_ASSIGNMENT_TARGET"
	CodeTypeInvalidStatement        Code = "TYPE_INVALID_STATEMENT"
	CodeTypeNoEntryPoint            Code = "TYPE_NO_ENTRY_POINT"
	CodeTypeLiteralOutOfRange       Code = "TYPE_LITERAL_OUT_OF_RANGE"
	CodeTypeUnsupportedLiteral      Code = "TYPE_UNSUPPORTED_LITERAL"
	CodeTypeUnknownOperator         Code = "TYPE_UNKNOWN_OPERATOR"
	CodeTypeRedefinition            Code = "TYPE_REDEFINITION"
	CodeTypeMissingType             Code = "TYPE_MISSING_TYPE"
	CodeTypeEmptyBranch             Code = "TYPE_EMPTY_BRANCH"
	CodeTypeReturnOutsideMethod     Code = "TYPE_RETURN_OUTSIDE_METHOD"

	// Codegen errors
	CodeGenUnsupportedType Code = "CODEGEN_UNSUPPORTED_TYPE"
	CodeGenMissingBinding  Code = "CODEGEN_MISSING_BINDING"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if !s.IsValid() {
		if s.Filename != "" {
			return fmt.Sprintf("%s@%d", s.Filename, s.Start)
		}
		return fmt.Sprintf("offset %d", s.Start)
	}
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has line/column information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a compiler diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span // Primary span
	// LabeledSpans allows multiple spans with labels.
	// The first span is treated as primary, others as secondary
	LabeledSpans []LabeledSpan
	Notes        []string // Additional notes to display
	Help         string
}

// Error makes a Diagnostic usable wherever an error is expected.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Span, d.Message)
}

// WithLabeledSpan adds a labeled span to the diagnostic.
func (d Diagnostic) WithLabeledSpan(span Span, label string, style string) Diagnostic {
	if style == "" {
		style = "primary"
	}
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{
		Span:  span,
		Label: label,
		Style: style,
	})
	return d
}

// WithPrimarySpan adds a primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "primary")
}

// WithSecondarySpan adds a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "secondary")
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// Resolve fills in line and column from the byte offset when the producer
// only knew the offset.
func (s Span) Resolve(src string) Span {
	if s.IsValid() || s.Start < 0 || s.Start > len(src) {
		return s
	}
	line, col := 1, 1
	for i := 0; i < s.Start; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	s.Line, s.Column = line, col
	return s
}
