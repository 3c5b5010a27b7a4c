package ast

import "github.com/plc-lang/plc/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node. The set of expressions is closed:
// LiteralExpr, GroupExpr, BinaryExpr, AccessExpr and FunctionExpr.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node. The set of statements is closed:
// ExprStmt, DeclarationStmt, AssignmentStmt, IfStmt, ForStmt, WhileStmt
// and ReturnStmt.
type Stmt interface {
	Node
	stmtNode()
}

// Source represents a parsed program: fields first, then methods, each in
// source order.
type Source struct {
	Fields  []*Field
	Methods []*Method
	span    lexer.Span
}

// Span returns the span covering the entire program.
func (s *Source) Span() lexer.Span { return s.span }

// NewSource constructs a program node.
func NewSource(fields []*Field, methods []*Method, span lexer.Span) *Source {
	return &Source{Fields: fields, Methods: methods, span: span}
}

// Field represents a top-level `LET name: Type (= value)?;`.
type Field struct {
	Name     string
	TypeName string
	Value    Expr // nil when there is no initializer
	span     lexer.Span
}

// Span returns the field span.
func (f *Field) Span() lexer.Span { return f.span }

// NewField constructs a field node.
func NewField(name, typeName string, value Expr, span lexer.Span) *Field {
	return &Field{Name: name, TypeName: typeName, Value: value, span: span}
}

// Method represents a `DEF name(params) (: Type)? DO ... END` definition.
type Method struct {
	Name       string
	Params     []string
	ParamTypes []string
	ReturnType string // empty when omitted
	Body       []Stmt
	span       lexer.Span
}

// Span returns the method span.
func (m *Method) Span() lexer.Span { return m.span }

// NewMethod constructs a method node.
func NewMethod(name string, params, paramTypes []string, returnType string, body []Stmt, span lexer.Span) *Method {
	return &Method{
		Name:       name,
		Params:     params,
		ParamTypes: paramTypes,
		ReturnType: returnType,
		Body:       body,
		span:       span,
	}
}

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

// Span returns the statement span.
func (s *ExprStmt) Span() lexer.Span { return s.span }

// NewExprStmt constructs an expression statement node.
func NewExprStmt(expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}

// stmtNode marks ExprStmt as a statement.
func (*ExprStmt) stmtNode() {}

// DeclarationStmt represents a local `LET name (: Type)? (= value)?;`.
type DeclarationStmt struct {
	Name     string
	TypeName string // empty when omitted
	Value    Expr   // nil when omitted
	span     lexer.Span
}

// Span returns the statement span.
func (s *DeclarationStmt) Span() lexer.Span { return s.span }

// NewDeclarationStmt constructs a declaration statement node.
func NewDeclarationStmt(name, typeName string, value Expr, span lexer.Span) *DeclarationStmt {
	return &DeclarationStmt{Name: name, TypeName: typeName, Value: value, span: span}
}

// stmtNode marks DeclarationStmt as a statement.
func (*DeclarationStmt) stmtNode() {}

// AssignmentStmt represents `receiver = value;`.
type AssignmentStmt struct {
	Receiver Expr
	Value    Expr
	span     lexer.Span
}

// Span returns the statement span.
func (s *AssignmentStmt) Span() lexer.Span { return s.span }

// NewAssignmentStmt constructs an assignment statement node.
func NewAssignmentStmt(receiver, value Expr, span lexer.Span) *AssignmentStmt {
	return &AssignmentStmt{Receiver: receiver, Value: value, span: span}
}

// stmtNode marks AssignmentStmt as a statement.
func (*AssignmentStmt) stmtNode() {}

// IfStmt represents `IF cond DO ... (ELSE ...)? END`.
type IfStmt struct {
	Condition Expr
	Then      []Stmt
	Else      []Stmt
	span      lexer.Span
}

// Span returns the statement span.
func (s *IfStmt) Span() lexer.Span { return s.span }

// NewIfStmt constructs an if statement node.
func NewIfStmt(condition Expr, then, els []Stmt, span lexer.Span) *IfStmt {
	return &IfStmt{Condition: condition, Then: then, Else: els, span: span}
}

// stmtNode marks IfStmt as a statement.
func (*IfStmt) stmtNode() {}

// ForStmt represents `FOR name IN iterable DO ... END`.
type ForStmt struct {
	Name     string
	Iterable Expr
	Body     []Stmt
	span     lexer.Span
}

// Span returns the statement span.
func (s *ForStmt) Span() lexer.Span { return s.span }

// NewForStmt constructs a for statement node.
func NewForStmt(name string, iterable Expr, body []Stmt, span lexer.Span) *ForStmt {
	return &ForStmt{Name: name, Iterable: iterable, Body: body, span: span}
}

// stmtNode marks ForStmt as a statement.
func (*ForStmt) stmtNode() {}

// WhileStmt represents `WHILE cond DO ... END`.
type WhileStmt struct {
	Condition Expr
	Body      []Stmt
	span      lexer.Span
}

// Span returns the statement span.
func (s *WhileStmt) Span() lexer.Span { return s.span }

// NewWhileStmt constructs a while statement node.
func NewWhileStmt(condition Expr, body []Stmt, span lexer.Span) *WhileStmt {
	return &WhileStmt{Condition: condition, Body: body, span: span}
}

// stmtNode marks WhileStmt as a statement.
func (*WhileStmt) stmtNode() {}

// ReturnStmt represents `RETURN value;`.
type ReturnStmt struct {
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *ReturnStmt) Span() lexer.Span { return s.span }

// NewReturnStmt constructs a return statement node.
func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

// stmtNode marks ReturnStmt as a statement.
func (*ReturnStmt) stmtNode() {}

// LiteralKind classifies a literal's value.
type LiteralKind int

const (
	NilLit LiteralKind = iota
	BooleanLit
	IntegerLit
	DecimalLit
	CharacterLit
	StringLit
)

func (k LiteralKind) String() string {
	switch k {
	case NilLit:
		return "Nil"
	case BooleanLit:
		return "Boolean"
	case IntegerLit:
		return "Integer"
	case DecimalLit:
		return "Decimal"
	case CharacterLit:
		return "Character"
	case StringLit:
		return "String"
	}
	return "Unknown"
}

// LiteralExpr represents a literal. Value holds the decoded value:
// nil, bool, *big.Int, *big.Float, rune or string depending on Kind.
// Raw is the token text the literal was built from.
type LiteralExpr struct {
	Kind  LiteralKind
	Raw   string
	Value any
	span  lexer.Span
}

// Span returns the literal span.
func (e *LiteralExpr) Span() lexer.Span { return e.span }

// NewLiteralExpr constructs a literal node.
func NewLiteralExpr(kind LiteralKind, raw string, value any, span lexer.Span) *LiteralExpr {
	return &LiteralExpr{Kind: kind, Raw: raw, Value: value, span: span}
}

// exprNode marks LiteralExpr as an expression.
func (*LiteralExpr) exprNode() {}

// GroupExpr represents a parenthesized expression.
type GroupExpr struct {
	Inner Expr
	span  lexer.Span
}

// Span returns the expression span.
func (e *GroupExpr) Span() lexer.Span { return e.span }

// NewGroupExpr constructs a group node.
func NewGroupExpr(inner Expr, span lexer.Span) *GroupExpr {
	return &GroupExpr{Inner: inner, span: span}
}

// exprNode marks GroupExpr as an expression.
func (*GroupExpr) exprNode() {}

// BinaryExpr represents `left op right`. Operator is the source text of the
// operator token (`+`, `<=`, `AND`, ...).
type BinaryExpr struct {
	Operator string
	Left     Expr
	Right    Expr
	span     lexer.Span
}

// Span returns the expression span.
func (e *BinaryExpr) Span() lexer.Span { return e.span }

// NewBinaryExpr constructs a binary expression node.
func NewBinaryExpr(op string, left, right Expr, span lexer.Span) *BinaryExpr {
	return &BinaryExpr{Operator: op, Left: left, Right: right, span: span}
}

// exprNode marks BinaryExpr as an expression.
func (*BinaryExpr) exprNode() {}

// AccessExpr represents `name` or `receiver.name`.
type AccessExpr struct {
	Receiver Expr // nil for a plain name
	Name     string
	span     lexer.Span
}

// Span returns the expression span.
func (e *AccessExpr) Span() lexer.Span { return e.span }

// NewAccessExpr constructs an access node.
func NewAccessExpr(receiver Expr, name string, span lexer.Span) *AccessExpr {
	return &AccessExpr{Receiver: receiver, Name: name, span: span}
}

// exprNode marks AccessExpr as an expression.
func (*AccessExpr) exprNode() {}

// FunctionExpr represents `name(args)` or `receiver.name(args)`.
type FunctionExpr struct {
	Receiver Expr // nil for a plain call
	Name     string
	Args     []Expr
	span     lexer.Span
}

// Span returns the expression span.
func (e *FunctionExpr) Span() lexer.Span { return e.span }

// NewFunctionExpr constructs a call node.
func NewFunctionExpr(receiver Expr, name string, args []Expr, span lexer.Span) *FunctionExpr {
	return &FunctionExpr{Receiver: receiver, Name: name, Args: args, span: span}
}

// exprNode marks FunctionExpr as an expression.
func (*FunctionExpr) exprNode() {}
