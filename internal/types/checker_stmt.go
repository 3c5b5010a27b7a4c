package types

import (
	"fmt"

	"github.com/plc-lang/plc/internal/ast"
)

func (c *Checker) checkBlock(stmts []ast.Stmt, parent *Scope) {
	scope := NewScope(parent)
	for _, stmt := range stmts {
		c.checkStmt(stmt, scope)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt, scope *Scope) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if _, ok := s.Expr.(*ast.FunctionExpr); !ok {
			c.errorf(ErrInvalidStatement, s.Span(), "Only function calls are allowed as expression statements.")
		}
		c.checkExpr(s.Expr, scope)

	case *ast.DeclarationStmt:
		c.checkDeclaration(s, scope)

	case *ast.AssignmentStmt:
		if _, ok := s.Receiver.(*ast.AccessExpr); !ok {
			c.errorf(ErrInvalidAssignmentTarget, s.Receiver.Span(), "Invalid assignment target.")
		}
		target := c.checkExpr(s.Receiver, scope)
		c.requireAssignable(target, c.checkExpr(s.Value, scope), s.Value.Span())

	case *ast.IfStmt:
		if c.checkExpr(s.Condition, scope) != Boolean {
			c.errorf(ErrNotAssignable, s.Condition.Span(), "If statement condition must be of type Boolean.")
		}
		if len(s.Then) == 0 {
			c.errorf(ErrEmptyBranch, s.Span(), "If statement must have at least one then statement.")
		}
		c.checkBlock(s.Then, scope)
		c.checkBlock(s.Else, scope)

	case *ast.ForStmt:
		if c.checkExpr(s.Iterable, scope) != IntegerIterable {
			c.errorf(ErrNotAssignable, s.Iterable.Span(), "The value of a for loop must be an integer iterable.")
		}
		body := NewScope(scope)
		v := NewVariable(s.Name, s.Name, Integer)
		c.define(body, v, s.Span())
		c.info.recordVariable(s, v)
		for _, inner := range s.Body {
			c.checkStmt(inner, body)
		}

	case *ast.WhileStmt:
		if c.checkExpr(s.Condition, scope) != Boolean {
			c.errorf(ErrNotAssignable, s.Condition.Span(), "The condition of a while loop must be a boolean.")
		}
		c.checkBlock(s.Body, scope)

	case *ast.ReturnStmt:
		if c.method == nil {
			c.errorf(ErrReturnOutsideMethod, s.Span(), "Return statement must be inside a method.")
		}
		c.requireAssignable(c.method.ReturnType, c.checkExpr(s.Value, scope), s.Value.Span())

	default:
		panic(fmt.Sprintf("types: unexpected statement %T", stmt))
	}
}

// checkDeclaration analyses the initializer, if any, before defining the
// variable, so the initializer cannot refer to the variable being declared.
func (c *Checker) checkDeclaration(s *ast.DeclarationStmt, scope *Scope) {
	var typ *Type
	switch {
	case s.TypeName != "":
		declared, ok := c.registry.Lookup(s.TypeName)
		if !ok {
			c.errorf(ErrUnknownType, s.Span(), "Unknown type specified: %s", s.TypeName)
		}
		typ = declared
		if s.Value != nil {
			c.requireAssignable(typ, c.checkExpr(s.Value, scope), s.Value.Span())
		}
	case s.Value != nil:
		typ = c.checkExpr(s.Value, scope)
	default:
		c.errorf(ErrMissingType, s.Span(), "Declaration must have either a type or an initializer.")
	}

	v := NewVariable(s.Name, s.Name, typ)
	c.define(scope, v, s.Span())
	c.info.recordVariable(s, v)
}
