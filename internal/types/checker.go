package types

import (
	"fmt"
	"log/slog"

	"github.com/plc-lang/plc/internal/ast"
	"github.com/plc-lang/plc/internal/lexer"
)

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for debug tracing of the analysis.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Checker performs semantic analysis on a parsed program.
//
// A Checker may be reused for several programs but not concurrently: each
// Check call owns a private scope chain rooted at a fresh child of the global
// scope, so the global scope itself is only read.
type Checker struct {
	registry *Registry
	global   *Scope
	logger   *slog.Logger

	info   *Info
	method *Function // function of the method being analysed, nil outside methods
}

// NewChecker creates a checker resolving type names through registry and
// free names through global. Nil arguments select NewRegistry and
// NewGlobalScope.
func NewChecker(registry *Registry, global *Scope, opts ...Option) *Checker {
	if registry == nil {
		registry = NewRegistry()
	}
	if global == nil {
		global = NewGlobalScope()
	}
	c := &Checker{
		registry: registry,
		global:   global,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze checks src against global using the canonical type registry.
func Analyze(src *ast.Source, global *Scope) (*Info, error) {
	return NewChecker(nil, global).Check(src)
}

// Check analyses a whole program: every field, then every method, then the
// main/0 entry point. On error the returned Info is nil.
func (c *Checker) Check(src *ast.Source) (info *Info, err error) {
	c.reset()
	defer c.handleBailout(&err)

	scope := NewScope(c.global)
	for _, field := range src.Fields {
		c.checkField(field, scope)
	}
	for _, method := range src.Methods {
		c.checkMethod(method, scope)
	}
	c.checkEntryPoint(src, scope)

	return c.info, nil
}

// CheckStatement analyses a single statement in a child of scope, outside
// of any method.
func (c *Checker) CheckStatement(stmt ast.Stmt, scope *Scope) (info *Info, err error) {
	c.reset()
	defer c.handleBailout(&err)

	c.checkStmt(stmt, NewScope(c.scopeOrGlobal(scope)))
	return c.info, nil
}

// CheckExpression analyses a single expression in scope and returns its type.
func (c *Checker) CheckExpression(expr ast.Expr, scope *Scope) (typ *Type, info *Info, err error) {
	c.reset()
	defer c.handleBailout(&err)

	typ = c.checkExpr(expr, c.scopeOrGlobal(scope))
	return typ, c.info, nil
}

func (c *Checker) reset() {
	c.info = NewInfo()
	c.method = nil
}

func (c *Checker) scopeOrGlobal(scope *Scope) *Scope {
	if scope == nil {
		return c.global
	}
	return scope
}

func (c *Checker) checkField(field *ast.Field, scope *Scope) {
	typ, ok := c.registry.Lookup(field.TypeName)
	if !ok {
		c.errorf(ErrUnknownType, field.Span(), "Unknown type specified for field: %s", field.TypeName)
	}

	if field.Value != nil {
		c.requireAssignable(typ, c.checkExpr(field.Value, scope), field.Value.Span())
	}

	v := NewVariable(field.Name, field.Name, typ)
	c.define(scope, v, field.Span())
	c.info.recordVariable(field, v)
}

func (c *Checker) checkMethod(method *ast.Method, scope *Scope) {
	params := make([]*Type, len(method.ParamTypes))
	for i, name := range method.ParamTypes {
		typ, ok := c.registry.Lookup(name)
		if !ok {
			c.errorf(ErrUnknownType, method.Span(), "Unknown type specified for parameter %s: %s", method.Params[i], name)
		}
		params[i] = typ
	}

	returns := Nil
	if method.ReturnType != "" {
		typ, ok := c.registry.Lookup(method.ReturnType)
		if !ok {
			c.errorf(ErrUnknownType, method.Span(), "Unknown return type specified for method %s: %s", method.Name, method.ReturnType)
		}
		returns = typ
	}

	fn := NewFunction(method.Name, method.Name, params, returns)
	if err := scope.DefineFunction(fn); err != nil {
		c.errorf(ErrRedefinition, method.Span(), "The method %s is already defined.", fn.Key())
	}
	c.info.recordFunction(method, fn)

	c.logger.Debug("checking method", "method", fn.Key().String(), "returns", returns.Name)

	body := NewScope(scope)
	for i, name := range method.Params {
		c.define(body, NewVariable(name, name, params[i]), method.Span())
	}

	previous := c.method
	c.method = fn
	for _, stmt := range method.Body {
		c.checkStmt(stmt, body)
	}
	c.method = previous
}

func (c *Checker) checkEntryPoint(src *ast.Source, scope *Scope) {
	fn, ok := scope.LookupFunction("main", 0)
	if ok && fn.ReturnType == Integer {
		return
	}
	c.fail(&Error{
		Kind:    ErrEntryPoint,
		Message: "Program does not contain a valid main/0 function.",
		Span:    src.Span(),
		Help:    "define `DEF main(): Integer DO ... END`",
	})
}

// define adds v to scope, reporting a redefinition at span.
func (c *Checker) define(scope *Scope, v *Variable, span lexer.Span) {
	if err := scope.DefineVariable(v); err != nil {
		c.errorf(ErrRedefinition, span, "The variable %s is already defined in this scope.", v.Name)
	}
}

func (c *Checker) requireAssignable(target, source *Type, span lexer.Span) {
	if err := RequireAssignable(target, source); err != nil {
		c.errorf(ErrNotAssignable, span, "%s", err.Error())
	}
}

// bailout unwinds the traversal to the public entry point.
type bailout struct {
	err *Error
}

func (c *Checker) errorf(kind ErrorKind, span lexer.Span, format string, args ...any) {
	c.fail(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span})
}

func (c *Checker) fail(err *Error) {
	panic(bailout{err: err})
}

// handleBailout turns a bailout into the returned error; any other panic is
// an internal bug and keeps unwinding.
func (c *Checker) handleBailout(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		c.logger.Debug("analysis failed", "kind", b.err.Kind.String(), "offset", b.err.Offset())
		c.info = nil
		*err = b.err
	}
}
