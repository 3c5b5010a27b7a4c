package types

import (
	"fmt"
	"strings"
)

// Type is a named type. Types are compared by identity: two *Type values
// denote the same type only if they are the same pointer.
type Type struct {
	Name        string
	BindingName string

	fields      map[string]*Variable
	fieldOrder  []string
	methods     map[FuncKey]*Function
	methodOrder []FuncKey
}

// NewType returns a type with no fields or methods.
func NewType(name, bindingName string) *Type {
	return &Type{
		Name:        name,
		BindingName: bindingName,
		fields:      make(map[string]*Variable),
		methods:     make(map[FuncKey]*Function),
	}
}

func (t *Type) String() string { return t.Name }

// Canonical types.
var (
	Any             = NewType("Any", "Object")
	Nil             = NewType("Nil", "Void")
	Boolean         = NewType("Boolean", "boolean")
	Integer         = NewType("Integer", "int")
	Decimal         = NewType("Decimal", "double")
	Character       = NewType("Character", "char")
	String          = NewType("String", "String")
	Comparable      = NewType("Comparable", "Comparable")
	IntegerIterable = NewType("IntegerIterable", "Iterable<Integer>")
)

// Builtins lists the canonical types in registration order.
func Builtins() []*Type {
	return []*Type{Any, Nil, Boolean, Integer, Decimal, Character, String, Comparable, IntegerIterable}
}

// Field returns the field called name.
func (t *Type) Field(name string) (*Variable, bool) {
	v, ok := t.fields[name]
	return v, ok
}

// Method returns the method called name taking arity explicit arguments.
func (t *Type) Method(name string, arity int) (*Function, bool) {
	fn, ok := t.methods[FuncKey{Name: name, Arity: arity}]
	return fn, ok
}

// Fields returns the fields in definition order.
func (t *Type) Fields() []*Variable {
	out := make([]*Variable, 0, len(t.fieldOrder))
	for _, name := range t.fieldOrder {
		out = append(out, t.fields[name])
	}
	return out
}

// Methods returns the methods in definition order.
func (t *Type) Methods() []*Function {
	out := make([]*Function, 0, len(t.methodOrder))
	for _, key := range t.methodOrder {
		out = append(out, t.methods[key])
	}
	return out
}

// DefineField adds a field to the type.
func (t *Type) DefineField(v *Variable) error {
	if _, exists := t.fields[v.Name]; exists {
		return fmt.Errorf("%w: field %q on type %s", ErrDuplicate, v.Name, t.Name)
	}
	t.fields[v.Name] = v
	t.fieldOrder = append(t.fieldOrder, v.Name)
	return nil
}

// DefineMethod adds a bound method to the type. fn.ParamTypes[0] is the
// receiver, so the method is keyed by the number of remaining parameters.
func (t *Type) DefineMethod(fn *Function) error {
	if len(fn.ParamTypes) == 0 {
		return fmt.Errorf("method %q on type %s has no receiver parameter", fn.Name, t.Name)
	}
	key := FuncKey{Name: fn.Name, Arity: len(fn.ParamTypes) - 1}
	if _, exists := t.methods[key]; exists {
		return fmt.Errorf("%w: method %s on type %s", ErrDuplicate, key, t.Name)
	}
	t.methods[key] = fn
	t.methodOrder = append(t.methodOrder, key)
	return nil
}

// nilValue is the neutral placeholder held by every Variable's value slot.
type nilValue struct{}

func (nilValue) String() string { return "NIL" }

// NilValue is the value slot of every Variable. The front end never
// evaluates programs, so the slot is reserved.
var NilValue any = nilValue{}

// Variable is a resolved variable, field or parameter binding.
type Variable struct {
	Name        string
	BindingName string
	Type        *Type
	Value       any
}

// NewVariable returns a variable holding NilValue.
func NewVariable(name, bindingName string, typ *Type) *Variable {
	return &Variable{Name: name, BindingName: bindingName, Type: typ, Value: NilValue}
}

func (v *Variable) String() string {
	return v.Name + ": " + v.Type.Name
}

// Function is a resolved function or bound method.
type Function struct {
	Name        string
	BindingName string
	ParamTypes  []*Type
	ReturnType  *Type
}

// NewFunction returns a function symbol.
func NewFunction(name, bindingName string, params []*Type, returns *Type) *Function {
	return &Function{Name: name, BindingName: bindingName, ParamTypes: params, ReturnType: returns}
}

// Arity is the length of the parameter type list.
func (f *Function) Arity() int { return len(f.ParamTypes) }

// Key identifies the function within a scope.
func (f *Function) Key() FuncKey { return FuncKey{Name: f.Name, Arity: f.Arity()} }

func (f *Function) String() string {
	params := make([]string, len(f.ParamTypes))
	for i, p := range f.ParamTypes {
		params[i] = p.Name
	}
	return fmt.Sprintf("%s(%s): %s", f.Name, strings.Join(params, ", "), f.ReturnType.Name)
}
