package types

import (
	"fmt"

	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
)

// ErrorKind classifies semantic errors.
type ErrorKind int

const (
	ErrUnknownType ErrorKind = iota
	ErrUndefinedVariable
	ErrUndefinedFunction
	ErrUndefinedField
	ErrUndefinedMethod
	ErrArityMismatch
	ErrNotAssignable
	ErrInvalidOperand
	ErrInvalidAssignmentTarget
	ErrInvalidStatement
	ErrEntryPoint
	ErrLiteralOutOfRange
	ErrUnsupportedLiteral
	ErrUnknownOperator
	ErrRedefinition
	ErrMissingType
	ErrEmptyBranch
	ErrReturnOutsideMethod
)

var errorKindInfo = map[ErrorKind]struct {
	name string
	code diag.Code
}{
	ErrUnknownType:             {"unknown type", diag.CodeTypeUnknownType},
	ErrUndefinedVariable:       {"undefined variable", diag.CodeTypeUndefinedVariable},
	ErrUndefinedFunction:       {"undefined function", diag.CodeTypeUndefinedFunction},
	ErrUndefinedField:          {"undefined field", diag.CodeTypeUnknownField},
	ErrUndefinedMethod:         {"undefined method", diag.CodeTypeUnknownMethod},
	ErrArityMismatch:           {"arity mismatch", diag.CodeTypeArityMismatch},
	ErrNotAssignable:           {"not assignable", diag.CodeTypeCannotAssign},
	ErrInvalidOperand:          {"invalid operand", diag.CodeTypeInvalidOperation},
	ErrInvalidAssignmentTarget: {"invalid assignment target", diag.CodeTypeInvalidAssignmentTarget},
	ErrInvalidStatement:        {"invalid statement", diag.CodeTypeInvalidStatement},
	ErrEntryPoint:              {"no entry point", diag.CodeTypeNoEntryPoint},
	ErrLiteralOutOfRange:       {"literal out of range", diag.CodeTypeLiteralOutOfRange},
	ErrUnsupportedLiteral:      {"unsupported literal", diag.CodeTypeUnsupportedLiteral},
	ErrUnknownOperator:         {"unknown operator", diag.CodeTypeUnknownOperator},
	ErrRedefinition:            {"redefinition", diag.CodeTypeRedefinition},
	ErrMissingType:             {"missing type", diag.CodeTypeMissingType},
	ErrEmptyBranch:             {"empty branch", diag.CodeTypeEmptyBranch},
	ErrReturnOutsideMethod:     {"return outside method", diag.CodeTypeReturnOutsideMethod},
}

func (k ErrorKind) String() string {
	if info, ok := errorKindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a semantic error. The first one raised ends the analysis.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    lexer.Span
	Help    string
}

func (e *Error) Error() string { return e.Message }

// Offset returns the source offset of the offending node.
func (e *Error) Offset() int { return e.Span.Start }

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *Error) ToDiagnostic() diag.Diagnostic {
	span := toDiagSpan(e.Span)
	d := diag.Diagnostic{
		Stage:    diag.StageAnalyzer,
		Severity: diag.SeverityError,
		Code:     errorKindInfo[e.Kind].code,
		Message:  e.Message,
		Span:     span,
		Help:     e.Help,
	}
	if span.IsValid() {
		d = d.WithPrimarySpan(span, "")
	}
	return d
}

func toDiagSpan(span lexer.Span) diag.Span {
	return diag.Span{
		Filename: span.Filename,
		Line:     span.Line,
		Column:   span.Column,
		Start:    span.Start,
		End:      span.End,
	}
}
