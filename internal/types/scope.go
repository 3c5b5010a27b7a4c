package types

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicate is returned when a name is defined twice in the same scope or
// on the same type.
var ErrDuplicate = errors.New("already defined")

// FuncKey identifies a function by name and arity.
type FuncKey struct {
	Name  string
	Arity int
}

func (k FuncKey) String() string { return fmt.Sprintf("%s/%d", k.Name, k.Arity) }

// Scope represents a lexical scope. Definitions shadow those of ancestor
// scopes; a scope never holds two variables with one name or two functions
// with one key.
type Scope struct {
	parent    *Scope
	variables map[string]*Variable
	functions map[FuncKey]*Function
}

// NewScope creates a new scope with an optional parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:    parent,
		variables: make(map[string]*Variable),
		functions: make(map[FuncKey]*Function),
	}
}

// NewGlobalScope returns a root scope holding the print/1 builtin.
func NewGlobalScope() *Scope {
	s := NewScope(nil)
	_ = s.DefineFunction(NewFunction("print", "System.out.println", []*Type{Any}, Nil))
	return s
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// DefineVariable adds v to this scope.
func (s *Scope) DefineVariable(v *Variable) error {
	if _, exists := s.variables[v.Name]; exists {
		return fmt.Errorf("%w: variable %q", ErrDuplicate, v.Name)
	}
	s.variables[v.Name] = v
	return nil
}

// DefineFunction adds fn to this scope under (name, arity).
func (s *Scope) DefineFunction(fn *Function) error {
	key := fn.Key()
	if _, exists := s.functions[key]; exists {
		return fmt.Errorf("%w: function %s", ErrDuplicate, key)
	}
	s.functions[key] = fn
	return nil
}

// LookupVariable finds a variable in the current scope or any parent scope.
func (s *Scope) LookupVariable(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupFunction finds a function by name and arity in the current scope or
// any parent scope.
func (s *Scope) LookupFunction(name string, arity int) (*Function, bool) {
	key := FuncKey{Name: name, Arity: arity}
	for cur := s; cur != nil; cur = cur.parent {
		if fn, ok := cur.functions[key]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Functions returns every function visible from s, nearest definition first
// when keys collide, sorted by name then arity.
func (s *Scope) Functions() []*Function {
	seen := make(map[FuncKey]bool)
	var out []*Function
	for cur := s; cur != nil; cur = cur.parent {
		for key, fn := range cur.functions {
			if !seen[key] {
				seen[key] = true
				out = append(out, fn)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity() < out[j].Arity()
	})
	return out
}
