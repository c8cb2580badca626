package chunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/embervm/ember/lang/ast"
)

// Value is the interface implemented by every RuntimeValue variant: Null,
// Number, Boolean, String, Array, Object and Function. Values are deep
// cloned (see Clone) when stored into a variable slot, bound as a call
// argument or returned, so no two live call frames ever alias the same Array
// or Object through their slots.
type Value interface {
	// String returns the value's textual representation, used by PRINT,
	// TO_STRING and string concatenation.
	String() string
	// Type names the value's runtime type, used in type-mismatch diagnostics.
	Type() string
	// Clone returns a deep copy of the value, used when a value is stored into
	// a variable slot, bound as an argument or returned.
	Clone() Value
	// Truthy reports whether the value is truthy per language semantics:
	// null and false are falsy, zero is falsy, the empty string and the
	// empty array are falsy, everything else is truthy.
	Truthy() bool
}

// Null is the sole null value.
type Null struct{}

func (Null) String() string { return "null" }
func (Null) Type() string   { return "null" }
func (Null) Clone() Value   { return Null{} }
func (Null) Truthy() bool   { return false }

// Number is a double-precision float value.
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}
func (Number) Type() string { return "number" }
func (n Number) Clone() Value { return n }
func (n Number) Truthy() bool { return n != 0 }

// Boolean is a true/false value.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Boolean) Type() string   { return "boolean" }
func (b Boolean) Clone() Value { return b }
func (b Boolean) Truthy() bool { return bool(b) }

// String is a UTF-8 text value.
type String string

func (s String) String() string  { return string(s) }
func (String) Type() string      { return "string" }
func (s String) Clone() Value    { return s }
func (s String) Truthy() bool    { return len(s) > 0 }

// Array is an ordered, mutable sequence of values.
type Array struct {
	Elems []Value
}

func NewArray() *Array { return &Array{} }

func (a *Array) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*Array) Type() string { return "array" }
func (a *Array) Clone() Value {
	out := &Array{Elems: make([]Value, len(a.Elems))}
	for i, e := range a.Elems {
		out.Elems[i] = e.Clone()
	}
	return out
}
func (a *Array) Truthy() bool { return len(a.Elems) > 0 }

// Push appends v to the array, matching ARRAY_PUSH's "append value to array
// below" stack effect.
func (a *Array) Push(v Value) { a.Elems = append(a.Elems, v) }

// Property is a single (key, value) pair of an Object, kept in insertion
// order; see Object for the ordering invariant.
type Property struct {
	Key   string
	Value Value
}

// Object is an ordered mapping from unique string keys to values: a
// vector-of-pairs rather than a hash table, so that iteration order always
// matches insertion order regardless of key content.
type Object struct {
	Props []Property
}

func NewObject() *Object { return &Object{} }

func (o *Object) String() string {
	parts := make([]string, len(o.Props))
	for i, p := range o.Props {
		parts[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (*Object) Type() string { return "object" }
func (o *Object) Clone() Value {
	out := &Object{Props: make([]Property, len(o.Props))}
	for i, p := range o.Props {
		out.Props[i] = Property{Key: p.Key, Value: p.Value.Clone()}
	}
	return out
}
func (o *Object) Truthy() bool { return true }

// Get returns the value bound to key and true, or Null{} and false if key is
// not present. A missing key is not an error at this layer: GET_PROPERTY
// recovers it into Null with a warning, per the spec's single non-fatal
// error case.
func (o *Object) Get(key string) (Value, bool) {
	for _, p := range o.Props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Null{}, false
}

// Set inserts key:value if key is new (appending at the end, preserving
// declaration order) or updates it in place if key already exists.
func (o *Object) Set(key string, v Value) {
	for i, p := range o.Props {
		if p.Key == key {
			o.Props[i].Value = v
			return
		}
	}
	o.Props = append(o.Props, Property{Key: key, Value: v})
}

// CopyFrom merges every property of src into o, in src's order, overwriting
// any of o's properties that share a key. Used by COPY_PROPERTIES to apply a
// mixin.
func (o *Object) CopyFrom(src *Object) {
	for _, p := range src.Props {
		o.Set(p.Key, p.Value.Clone())
	}
}

// Keys returns the object's property names in declaration order, used by
// GET_KEYS.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Props))
	for i, p := range o.Props {
		keys[i] = p.Key
	}
	return keys
}

// FunctionKind distinguishes a host-provided Builtin from a script-defined
// User function.
type FunctionKind uint8

const (
	// BuiltinFunc is a callable implemented by the host environment, e.g.
	// print.
	BuiltinFunc FunctionKind = iota
	// UserFunc is a script-defined function, compiled/interpreted from a
	// FunctionDef node.
	UserFunc
)

// BuiltinImpl is the Go implementation of a Builtin function value.
type BuiltinImpl func(args []Value) (Value, error)

// Function is a callable value: either a host Builtin or a script-defined
// User function. A User function's body outlives no particular Function
// value — all call sites that resolve the same name share one UserFunction
// record, created once at FunctionDef compilation/interpretation time.
type Function struct {
	Kind   FunctionKind
	Name   string
	Params []string // ordered parameter names

	// StartIP is the bytecode offset of the function body, valid only when
	// Kind == UserFunc and the function was produced by the compiler.
	StartIP int

	// Node is the function's body, valid only when Kind == UserFunc and the
	// function was produced by the tree-walking interpreter rather than the
	// compiler: lang/interp evaluates Node directly instead of dispatching
	// through StartIP.
	Node *ast.FunctionDefExpr

	// Closure is the defining environment captured at FunctionDef evaluation
	// time, valid only alongside Node. Declared as interface{} (rather than
	// a concrete *interp.Environment) so this package has no dependency on
	// lang/interp; lang/interp type-asserts it back on every call.
	Closure interface{}

	// Builtin is the host implementation, valid only when Kind ==
	// BuiltinFunc.
	Builtin BuiltinImpl
}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s/%d>", f.Name, len(f.Params))
}
func (*Function) Type() string { return "function" }
func (f *Function) Clone() Value {
	// Function values are immutable once built (shared across call sites by
	// design, see UserFunction lifecycle), so Clone returns the same
	// pointer rather than duplicating it.
	return f
}
func (f *Function) Truthy() bool { return true }
