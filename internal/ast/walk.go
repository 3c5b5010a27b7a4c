package ast

import "fmt"

// Walk traverses the AST starting from node in source order, calling fn for
// each node. If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Source:
		for _, field := range n.Fields {
			Walk(field, fn)
		}
		for _, method := range n.Methods {
			Walk(method, fn)
		}

	case *Field:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *Method:
		walkStmts(n.Body, fn)

	case *ExprStmt:
		Walk(n.Expr, fn)

	case *DeclarationStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *AssignmentStmt:
		Walk(n.Receiver, fn)
		Walk(n.Value, fn)

	case *IfStmt:
		Walk(n.Condition, fn)
		walkStmts(n.Then, fn)
		walkStmts(n.Else, fn)

	case *ForStmt:
		Walk(n.Iterable, fn)
		walkStmts(n.Body, fn)

	case *WhileStmt:
		Walk(n.Condition, fn)
		walkStmts(n.Body, fn)

	case *ReturnStmt:
		Walk(n.Value, fn)

	case *GroupExpr:
		Walk(n.Inner, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *AccessExpr:
		if n.Receiver != nil {
			Walk(n.Receiver, fn)
		}

	case *FunctionExpr:
		if n.Receiver != nil {
			Walk(n.Receiver, fn)
		}
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *LiteralExpr:
		// No children to traverse

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", node))
	}
}

func walkStmts(stmts []Stmt, fn func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, fn)
	}
}

// Collect returns every node of type T under root, in source order.
func Collect[T Node](root Node) []T {
	var out []T
	Walk(root, func(n Node) bool {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}
