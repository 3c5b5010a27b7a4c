// Package codegen emits Java source from an analysed PLC program.
package codegen

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/diag"
	"github.com/plc-lang/plc/internal/lexer"
	"github.com/plc-lang/plc/internal/types"
)

const indentUnit = "    "

// rangeHelper is the Java name of the range builtin, emitted into Main when
// a program iterates over it.
const rangeHelper = "range"

// Generator converts an analysed PLC AST into a Java class named Main.
type Generator struct {
	builder strings.Builder
	info    *types.Info
	indent  int
	returns *types.Type

	// Errors collects problems found while emitting; output produced
	// alongside errors is incomplete.
	Errors []diag.Diagnostic
}

// NewGenerator creates a generator reading resolved types and bindings from
// info.
func NewGenerator(info *types.Info) *Generator {
	return &Generator{info: info}
}

// Generate writes the Java translation of src to w.
func Generate(w io.Writer, src *ast.Source, info *types.Info) error {
	out, err := NewGenerator(info).Generate(src)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Generate returns the Java translation of src, or the first diagnostic
// raised while emitting it.
func (g *Generator) Generate(src *ast.Source) (string, error) {
	g.builder.Reset()
	g.indent = 0
	g.Errors = nil

	g.genSource(src)

	if len(g.Errors) > 0 {
		return "", g.Errors[0]
	}
	return g.builder.String(), nil
}

func (g *Generator) genSource(src *ast.Source) {
	g.line("public class Main {")
	g.blank()

	g.indent++
	for _, field := range src.Fields {
		g.genField(field)
	}
	if len(src.Fields) > 0 {
		g.blank()
	}

	g.line("public static void main(String[] args) {")
	g.indent++
	g.line("System.exit(new Main().main());")
	g.indent--
	g.line("}")
	g.blank()

	if usesRangeHelper(src, g.info) {
		g.genRangeHelper()
		g.blank()
	}

	for _, method := range src.Methods {
		g.genMethod(method)
		g.blank()
	}
	g.indent--

	g.line("}")
}

func (g *Generator) genField(field *ast.Field) {
	v := g.info.VariableOf(field)
	if v == nil {
		g.missing(field.Span(), "field %s has no resolved variable", field.Name)
		return
	}

	decl := g.typeName(v.Type, field.Span()) + " " + v.BindingName
	if field.Value != nil {
		decl += " = " + g.expr(field.Value)
	}
	g.line(decl + ";")
}

func (g *Generator) genMethod(method *ast.Method) {
	fn := g.info.FunctionOf(method)
	if fn == nil {
		g.missing(method.Span(), "method %s has no resolved function", method.Name)
		return
	}

	returns := "void"
	if fn.ReturnType != types.Nil {
		returns = g.typeName(fn.ReturnType, method.Span())
	}

	params := make([]string, len(method.Params))
	for i, name := range method.Params {
		params[i] = g.typeName(fn.ParamTypes[i], method.Span()) + " " + name
	}

	g.returns = fn.ReturnType
	head := fmt.Sprintf("%s %s(%s) {", returns, fn.BindingName, strings.Join(params, ", "))
	g.block(head, method.Body)
	g.returns = nil
}

// usesRangeHelper reports whether src calls a builtin bound to the range
// helper. A program method bound to the same name replaces the helper.
func usesRangeHelper(src *ast.Source, info *types.Info) bool {
	for _, m := range src.Methods {
		if fn := info.FunctionOf(m); fn != nil && fn.BindingName == rangeHelper {
			return false
		}
	}
	for _, call := range ast.Collect[*ast.FunctionExpr](src) {
		if fn := info.FunctionOf(call); call.Receiver == nil && fn != nil && fn.BindingName == rangeHelper {
			return true
		}
	}
	return false
}

func (g *Generator) genRangeHelper() {
	g.line("static Iterable<Integer> " + rangeHelper + "(int start, int end) {")
	g.indent++
	g.line("return () -> java.util.stream.IntStream.range(start, end).iterator();")
	g.indent--
	g.line("}")
}

// block emits head, the statements one level deeper and a closing brace.
// An empty body is closed on the same line.
func (g *Generator) block(head string, body []ast.Stmt) {
	if len(body) == 0 {
		g.line(head + "}")
		return
	}
	g.line(head)
	g.indent++
	for _, stmt := range body {
		g.genStmt(stmt)
	}
	g.indent--
	g.line("}")
}

func (g *Generator) genStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		g.line(g.expr(s.Expr) + ";")

	case *ast.DeclarationStmt:
		v := g.info.VariableOf(s)
		if v == nil {
			g.missing(s.Span(), "declaration of %s has no resolved variable", s.Name)
			return
		}
		decl := g.typeName(v.Type, s.Span()) + " " + v.BindingName
		if s.Value != nil {
			decl += " = " + g.expr(s.Value)
		}
		g.line(decl + ";")

	case *ast.AssignmentStmt:
		g.line(g.expr(s.Receiver) + " = " + g.expr(s.Value) + ";")

	case *ast.IfStmt:
		cond := g.expr(s.Condition)
		if len(s.Else) == 0 {
			g.block("if ("+cond+") {", s.Then)
			return
		}
		g.line("if (" + cond + ") {")
		g.indent++
		for _, inner := range s.Then {
			g.genStmt(inner)
		}
		g.indent--
		g.block("} else {", s.Else)

	case *ast.ForStmt:
		v := g.info.VariableOf(s)
		if v == nil {
			g.missing(s.Span(), "loop variable %s has no resolved variable", s.Name)
			return
		}
		head := fmt.Sprintf("for (%s %s : %s) {", g.typeName(v.Type, s.Span()), v.BindingName, g.expr(s.Iterable))
		g.block(head, s.Body)

	case *ast.WhileStmt:
		g.block("while ("+g.expr(s.Condition)+") {", s.Body)

	case *ast.ReturnStmt:
		if g.returns != types.Nil {
			g.line("return " + g.expr(s.Value) + ";")
			return
		}
		// A void method returns bare; a call value still runs first.
		if call, ok := s.Value.(*ast.FunctionExpr); ok {
			g.line(g.expr(call) + ";")
		}
		g.line("return;")

	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T", stmt))
	}
}

func (g *Generator) expr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literal(e)

	case *ast.GroupExpr:
		return "(" + g.expr(e.Inner) + ")"

	case *ast.BinaryExpr:
		return g.expr(e.Left) + " " + javaOperator(e.Operator) + " " + g.expr(e.Right)

	case *ast.AccessExpr:
		v := g.info.VariableOf(e)
		if v == nil {
			g.missing(e.Span(), "access to %s has no resolved variable", e.Name)
			return e.Name
		}
		if e.Receiver != nil {
			return g.expr(e.Receiver) + "." + v.BindingName
		}
		return v.BindingName

	case *ast.FunctionExpr:
		fn := g.info.FunctionOf(e)
		if fn == nil {
			g.missing(e.Span(), "call to %s has no resolved function", e.Name)
			return e.Name + "()"
		}
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = g.expr(arg)
		}
		call := fn.BindingName + "(" + strings.Join(args, ", ") + ")"
		if e.Receiver != nil {
			return g.expr(e.Receiver) + "." + call
		}
		return call

	default:
		panic(fmt.Sprintf("codegen: unexpected expression %T", expr))
	}
}

func literal(lit *ast.LiteralExpr) string {
	switch lit.Kind {
	case ast.NilLit:
		return "null"
	case ast.BooleanLit:
		if lit.Value == true {
			return "true"
		}
		return "false"
	case ast.IntegerLit:
		if v, ok := lit.Value.(*big.Int); ok {
			return v.String()
		}
	case ast.DecimalLit:
		return strings.TrimPrefix(lit.Raw, "+")
	}
	// Character and string tokens keep their quotes and escapes, which Java
	// accepts unchanged.
	return lit.Raw
}

func javaOperator(op string) string {
	switch op {
	case "AND":
		return "&&"
	case "OR":
		return "||"
	default:
		return op
	}
}

func (g *Generator) typeName(t *types.Type, span lexer.Span) string {
	if t == nil || t.BindingName == "" {
		name := "<nil>"
		if t != nil {
			name = t.Name
		}
		g.errorf(diag.CodeGenUnsupportedType, span, "type %s has no Java binding", name)
		return "Object"
	}
	return t.BindingName
}

func (g *Generator) missing(span lexer.Span, format string, args ...any) {
	g.errorf(diag.CodeGenMissingBinding, span, format, args...)
}

func (g *Generator) errorf(code diag.Code, span lexer.Span, format string, args ...any) {
	dspan := diag.Span{
		Filename: span.Filename,
		Line:     span.Line,
		Column:   span.Column,
		Start:    span.Start,
		End:      span.End,
	}
	d := diag.Diagnostic{
		Stage:    diag.StageCodegen,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     dspan,
	}
	if dspan.IsValid() {
		d = d.WithPrimarySpan(dspan, "")
	}
	g.Errors = append(g.Errors, d)
}

func (g *Generator) line(text string) {
	g.builder.WriteString(strings.Repeat(indentUnit, g.indent))
	g.builder.WriteString(text)
	g.builder.WriteByte('\n')
}

func (g *Generator) blank() {
	g.builder.WriteByte('\n')
}
