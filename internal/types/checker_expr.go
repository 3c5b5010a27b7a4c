package types

import (
	"fmt"
	"math"
	"math/big"

	"github.com/plc-lang/plc/internal/ast"
)

var (
	minInteger = big.NewInt(math.MinInt32)
	maxInteger = big.NewInt(math.MaxInt32)
)

// checkExpr infers the type of expr, records it and returns it.
func (c *Checker) checkExpr(expr ast.Expr, scope *Scope) *Type {
	var typ *Type
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		typ = c.checkLiteral(e)
	case *ast.GroupExpr:
		typ = c.checkExpr(e.Inner, scope)
	case *ast.BinaryExpr:
		typ = c.checkBinary(e, scope)
	case *ast.AccessExpr:
		typ = c.checkAccess(e, scope)
	case *ast.FunctionExpr:
		typ = c.checkCall(e, scope)
	default:
		panic(fmt.Sprintf("types: unexpected expression %T", expr))
	}
	c.info.recordType(expr, typ)
	return typ
}

func (c *Checker) checkLiteral(lit *ast.LiteralExpr) *Type {
	switch lit.Kind {
	case ast.NilLit:
		if lit.Value == nil {
			return Nil
		}
	case ast.BooleanLit:
		if _, ok := lit.Value.(bool); ok {
			return Boolean
		}
	case ast.IntegerLit:
		if v, ok := lit.Value.(*big.Int); ok {
			if v.Cmp(minInteger) < 0 || v.Cmp(maxInteger) > 0 {
				c.errorf(ErrLiteralOutOfRange, lit.Span(), "Integer literal out of range: %s", lit.Raw)
			}
			return Integer
		}
	case ast.DecimalLit:
		if _, ok := lit.Value.(*big.Float); ok {
			return Decimal
		}
	case ast.CharacterLit:
		if _, ok := lit.Value.(rune); ok {
			return Character
		}
	case ast.StringLit:
		if _, ok := lit.Value.(string); ok {
			return String
		}
	}
	c.errorf(ErrUnsupportedLiteral, lit.Span(), "Unsupported literal type.")
	return nil
}

func (c *Checker) checkBinary(bin *ast.BinaryExpr, scope *Scope) *Type {
	left := c.checkExpr(bin.Left, scope)
	right := c.checkExpr(bin.Right, scope)

	switch bin.Operator {
	case "AND", "OR":
		if left != Boolean || right != Boolean {
			c.errorf(ErrInvalidOperand, bin.Span(), "Both operands of %s must be Boolean.", bin.Operator)
		}
		return Boolean

	case "<", "<=", ">", ">=", "==", "!=":
		if left != right || RequireAssignable(Comparable, left) != nil {
			c.errorf(ErrInvalidOperand, bin.Span(),
				"Both operands of %s must be comparable and of the same type, got %s and %s.", bin.Operator, left, right)
		}
		return Boolean

	case "+":
		switch {
		case left == String || right == String:
			return String
		case left == Integer && right == Integer:
			return Integer
		case left == Decimal && right == Decimal:
			return Decimal
		}
		c.errorf(ErrInvalidOperand, bin.Span(), "Invalid types for addition: %s and %s.", left, right)

	case "-", "*", "/":
		switch {
		case left == Integer && right == Integer:
			return Integer
		case left == Decimal && right == Decimal:
			return Decimal
		}
		c.errorf(ErrInvalidOperand, bin.Span(), "Invalid types for arithmetic operator %s: %s and %s.", bin.Operator, left, right)

	default:
		c.errorf(ErrUnknownOperator, bin.Span(), "Unknown operator: %s", bin.Operator)
	}
	return nil
}

func (c *Checker) checkAccess(access *ast.AccessExpr, scope *Scope) *Type {
	var (
		v  *Variable
		ok bool
	)
	if access.Receiver != nil {
		receiver := c.checkExpr(access.Receiver, scope)
		v, ok = receiver.Field(access.Name)
		if !ok {
			c.errorf(ErrUndefinedField, access.Span(), "Field '%s' does not exist on type %s.", access.Name, receiver)
		}
	} else {
		v, ok = scope.LookupVariable(access.Name)
		if !ok {
			c.errorf(ErrUndefinedVariable, access.Span(), "The variable '%s' is not defined.", access.Name)
		}
	}
	c.info.recordVariable(access, v)
	return v.Type
}

func (c *Checker) checkCall(call *ast.FunctionExpr, scope *Scope) *Type {
	var (
		fn *Function
		ok bool
	)
	argc := len(call.Args)
	offset := 0
	if call.Receiver != nil {
		receiver := c.checkExpr(call.Receiver, scope)
		fn, ok = receiver.Method(call.Name, argc)
		if !ok {
			c.errorf(ErrUndefinedMethod, call.Span(), "Method '%s/%d' does not exist on type %s.", call.Name, argc, receiver)
		}
		offset = 1
	} else {
		fn, ok = scope.LookupFunction(call.Name, argc)
		if !ok {
			c.errorf(ErrUndefinedFunction, call.Span(), "The function '%s/%d' is not defined.", call.Name, argc)
		}
	}

	if len(fn.ParamTypes) != argc+offset {
		c.errorf(ErrArityMismatch, call.Span(), "Incorrect number of arguments for '%s': expected %d, got %d.",
			call.Name, len(fn.ParamTypes)-offset, argc)
	}
	for i, arg := range call.Args {
		c.requireAssignable(fn.ParamTypes[i+offset], c.checkExpr(arg, scope), arg.Span())
	}

	c.info.recordFunction(call, fn)
	return fn.ReturnType
}
