package parser

import (
	"fmt"

	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
)

// ParseError is the single outcome of a failed parse: what was expected and
// where the offending token starts.
type ParseError struct {
	Message string
	Span    lexer.Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Span.Start)
}

// Offset returns the source offset of the offending token.
func (e *ParseError) Offset() int {
	return e.Span.Start
}

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *ParseError) ToDiagnostic() diag.Diagnostic {
	span := diag.Span{
		Filename: e.Span.Filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Start:    e.Span.Start,
		End:      e.Span.End,
	}
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseExpectedToken,
		Message:  e.Message,
		Span:     span,
	}.WithPrimarySpan(span, "")
}

// bailout unwinds the recursive descent to the public entry point.
type bailout struct {
	err *ParseError
}

// errorf aborts the parse with an error at the current token.
func (p *Parser) errorf(format string, args ...any) {
	span := p.currentSpan()
	if span.Filename == "" {
		span.Filename = p.filename
	}
	panic(bailout{err: &ParseError{
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}})
}

// handleBailout turns a bailout into the returned error; any other panic is
// an internal bug and keeps unwinding.
func (p *Parser) handleBailout(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}
