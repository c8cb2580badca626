// Package vm implements the stack-based virtual machine that executes a
// compiled chunk.Chunk: a flat operand stack, GlobalSlots module-level
// variable slots, and a real per-call frame of LocalSlots locals pushed on
// CALL/CALL_METHOD and popped on RETURN — the call-frame model spec.md §9
// recommends in place of the reference implementation's single aliased
// locals window, so recursive and re-entrant calls behave correctly.
package vm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/embervm/ember/lang/chunk"
	"github.com/embervm/ember/lang/symtab"
)

// RuntimeError is a fault raised while executing a chunk: a failed type
// assumption, an out-of-range index, division by zero, a call through a
// non-function value, or exceeding a configured Limits bound. Unlike a
// token.Error, it carries no source position — the chunk format (spec.md
// §4.7) has no line table mapping bytecode offsets back to source, only the
// bytecode offset where the fault occurred.
type RuntimeError struct {
	IP  int
	Op  chunk.Opcode
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %04d (%s): %s", e.IP, e.Op, e.Msg)
}

// Limits bounds a single Run: execution aborts with a RuntimeError once
// either is exceeded, so a runaway or malicious script can't hang or
// exhaust memory. A zero field takes DefaultMaxSteps or
// DefaultMaxCallDepth, a depth generous enough for ordinary recursive
// scripts.
type Limits struct {
	MaxSteps     int // instructions executed; 0 means DefaultMaxSteps
	MaxCallDepth int // nested CALL/CALL_METHOD frames; 0 means DefaultMaxCallDepth
}

const (
	DefaultMaxSteps     = 10_000_000
	DefaultMaxCallDepth = 1024
)

// Option configures a VM constructed by New.
type Option func(*VM)

// WithStdout overrides PRINT's destination (default os.Stdout).
func WithStdout(w io.Writer) Option { return func(v *VM) { v.stdout = w } }

// WithStderr overrides the destination for non-fatal runtime warnings, such
// as a missing property recovering to null (default os.Stderr).
func WithStderr(w io.Writer) Option { return func(v *VM) { v.stderr = w } }

// WithTrace enables a one-line-per-executed-instruction trace written to w,
// mirroring the teacher's debug-flag trace output.
func WithTrace(w io.Writer) Option { return func(v *VM) { v.trace = w } }

// WithLimits overrides the default execution Limits.
func WithLimits(l Limits) Option { return func(v *VM) { v.limits = l } }

// frame is one call's locals window and the instruction pointer execution
// resumes at in the caller once this frame returns.
type frame struct {
	locals   [symtab.LocalSlots]chunk.Value
	returnIP int
}

// VM executes a single chunk.Chunk from offset 0. Each Run creates a fresh
// VM; a VM is not reused across runs.
type VM struct {
	chunk   *chunk.Chunk
	globals [symtab.GlobalSlots]chunk.Value
	stack   []chunk.Value
	frames  []*frame

	stdout io.Writer
	stderr io.Writer
	trace  io.Writer
	limits Limits

	steps int
}

// New constructs a VM ready to Run c.
func New(c *chunk.Chunk, opts ...Option) *VM {
	v := &VM{
		chunk:  c,
		stdout: os.Stdout,
		stderr: os.Stderr,
		limits: Limits{MaxSteps: DefaultMaxSteps, MaxCallDepth: DefaultMaxCallDepth},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.limits.MaxSteps <= 0 {
		v.limits.MaxSteps = DefaultMaxSteps
	}
	if v.limits.MaxCallDepth <= 0 {
		v.limits.MaxCallDepth = DefaultMaxCallDepth
	}
	for i := range v.globals {
		v.globals[i] = chunk.Null{}
	}
	return v
}

// Run executes c to completion (an EOF instruction, or the outermost
// RETURN) and reports the first RuntimeError encountered, if any.
func Run(c *chunk.Chunk, opts ...Option) error {
	v := New(c, opts...)
	return v.run()
}

func (v *VM) push(val chunk.Value) { v.stack = append(v.stack, val) }

func (v *VM) pop() chunk.Value {
	n := len(v.stack) - 1
	val := v.stack[n]
	v.stack = v.stack[:n]
	return val
}

func (v *VM) peek() chunk.Value { return v.stack[len(v.stack)-1] }

func (v *VM) fault(ip int, op chunk.Opcode, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{IP: ip, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// currentLocals returns the locals window of the active call frame, i.e.
// the frame most recently pushed by CALL/CALL_METHOD (or the implicit
// module-level frame if no call is active).
func (v *VM) currentLocals() *[symtab.LocalSlots]chunk.Value {
	return &v.frames[len(v.frames)-1].locals
}

func (v *VM) getVar(idx uint16) chunk.Value {
	if idx < symtab.GlobalSlots {
		return v.globals[idx]
	}
	return v.currentLocals()[idx-symtab.GlobalSlots]
}

func (v *VM) setVar(idx uint16, val chunk.Value) {
	if idx < symtab.GlobalSlots {
		v.globals[idx] = val
		return
	}
	v.currentLocals()[idx-symtab.GlobalSlots] = val
}

func (v *VM) run() error {
	// The module body itself runs in an implicit frame so LOAD_VAR/STORE_VAR
	// and `this` addressing work uniformly whether or not any user call is
	// active; RETURN executed with only this frame left halts the program.
	v.frames = append(v.frames, &frame{})
	for i := range v.frames[0].locals {
		v.frames[0].locals[i] = chunk.Null{}
	}

	code := v.chunk.Code
	pc := 0
	for {
		if pc >= len(code) {
			return nil
		}
		v.steps++
		if v.steps > v.limits.MaxSteps {
			return v.fault(pc, chunk.Opcode(code[pc]), "exceeded step limit (%d)", v.limits.MaxSteps)
		}

		ip := pc
		op := chunk.Opcode(code[pc])
		pc++

		if v.trace != nil {
			fmt.Fprintf(v.trace, "%04d %s\n", ip, op)
		}

		switch op {
		case chunk.NOOP:

		case chunk.EOF:
			return nil

		case chunk.POP:
			v.pop()

		case chunk.DUP:
			v.push(v.peek())

		case chunk.SWAP:
			n := len(v.stack)
			v.stack[n-1], v.stack[n-2] = v.stack[n-2], v.stack[n-1]

		case chunk.LOAD_CONST:
			idx := code[pc]
			pc++
			v.push(v.chunk.Constants[idx].Clone())

		case chunk.LOAD_VAR:
			idx := be16(code, pc)
			pc += 2
			// Arrays and objects are pushed by reference: SET_PROPERTY,
			// SET_INDEX and SET_NESTED_PROPERTY mutate through this same
			// pointer, so the write lands in the variable's slot without a
			// separate write-back. STORE_VAR still clones on assignment, so
			// `b = a` does not alias a and b.
			v.push(v.getVar(idx))

		case chunk.STORE_VAR:
			idx := be16(code, pc)
			pc += 2
			v.setVar(idx, v.pop().Clone())

		case chunk.ADD, chunk.SUB, chunk.MUL, chunk.DIV, chunk.MOD:
			if err := v.execArith(ip, op); err != nil {
				return err
			}

		case chunk.NEG:
			n, ok := v.pop().(chunk.Number)
			if !ok {
				return v.fault(ip, op, "operand must be a number")
			}
			v.push(-n)

		case chunk.NOT:
			v.push(chunk.Boolean(!v.pop().Truthy()))

		case chunk.EQ:
			b, a := v.pop(), v.pop()
			v.push(chunk.Boolean(valuesEqual(a, b)))

		case chunk.NEQ:
			b, a := v.pop(), v.pop()
			v.push(chunk.Boolean(!valuesEqual(a, b)))

		case chunk.LT, chunk.GT, chunk.LTE, chunk.GTE:
			if err := v.execCompare(ip, op); err != nil {
				return err
			}

		case chunk.AND:
			b, a := v.pop(), v.pop()
			v.push(chunk.Boolean(a.Truthy() && b.Truthy()))

		case chunk.OR:
			b, a := v.pop(), v.pop()
			v.push(chunk.Boolean(a.Truthy() || b.Truthy()))

		case chunk.JUMP_IF_FALSE:
			dist := be16(code, pc)
			pc += 2
			if !v.pop().Truthy() {
				pc += int(dist)
			}

		case chunk.JUMP:
			dist := be16(code, pc)
			pc += 2
			pc += int(dist)

		case chunk.LOOP:
			dist := be16(code, pc)
			pc += 2
			pc -= int(dist)

		case chunk.CALL:
			funcIdx, argc := code[pc], code[pc+1]
			pc += 2
			next, err := v.execCall(ip, funcIdx, argc, pc)
			if err != nil {
				return err
			}
			pc = next

		case chunk.CALL_METHOD:
			argc := code[pc]
			pc++
			next, err := v.execCallMethod(ip, argc, pc)
			if err != nil {
				return err
			}
			pc = next

		case chunk.RETURN:
			rv := v.pop()
			if len(v.frames) <= 1 {
				return nil
			}
			fr := v.frames[len(v.frames)-1]
			v.frames = v.frames[:len(v.frames)-1]
			pc = fr.returnIP
			v.push(rv.Clone())

		case chunk.PRINT:
			fmt.Fprintln(v.stdout, v.pop().String())
			v.push(chunk.Null{})

		case chunk.NEW_ARRAY:
			v.push(chunk.NewArray())

		case chunk.ARRAY_PUSH:
			val := v.pop()
			arr, ok := v.peek().(*chunk.Array)
			if !ok {
				return v.fault(ip, op, "cannot push onto a non-array")
			}
			arr.Push(val.Clone())

		case chunk.GET_INDEX:
			idxVal, arrVal := v.pop(), v.pop()
			elem, err := v.getIndex(ip, op, arrVal, idxVal)
			if err != nil {
				return err
			}
			v.push(elem)

		case chunk.SET_INDEX:
			val, idxVal := v.pop(), v.pop()
			arr, ok := v.peek().(*chunk.Array)
			if !ok {
				return v.fault(ip, op, "cannot index-assign into a non-array")
			}
			idx, ok := idxVal.(chunk.Number)
			if !ok || int(idx) < 0 || int(idx) >= len(arr.Elems) {
				return v.fault(ip, op, "array index out of range")
			}
			arr.Elems[int(idx)] = val.Clone()

		case chunk.NEW_OBJECT:
			v.push(chunk.NewObject())

		case chunk.GET_PROPERTY:
			keyVal, objVal := v.pop(), v.pop()
			val, err := v.getProperty(ip, op, objVal, keyVal)
			if err != nil {
				return err
			}
			v.push(val)

		case chunk.SET_PROPERTY:
			val, keyVal := v.pop(), v.pop()
			obj, ok := v.peek().(*chunk.Object)
			if !ok {
				return v.fault(ip, op, "cannot set a property on a non-object")
			}
			key, ok := keyVal.(chunk.String)
			if !ok {
				return v.fault(ip, op, "property key must be a string")
			}
			obj.Set(string(key), val.Clone())

		case chunk.SET_NESTED_PROPERTY:
			val, pathVal := v.pop(), v.pop()
			obj, ok := v.peek().(*chunk.Object)
			if !ok {
				return v.fault(ip, op, "cannot set a nested property on a non-object")
			}
			path, ok := pathVal.(chunk.String)
			if !ok {
				return v.fault(ip, op, "nested property path must be a string")
			}
			if err := setNestedProperty(obj, string(path), val.Clone()); err != nil {
				return v.fault(ip, op, "%s", err)
			}

		case chunk.COPY_PROPERTIES:
			srcVal := v.pop()
			dst, ok := v.peek().(*chunk.Object)
			if !ok {
				return v.fault(ip, op, "mixin target must be an object")
			}
			src, ok := srcVal.(*chunk.Object)
			if !ok {
				return v.fault(ip, op, "mixin source must be an object")
			}
			dst.CopyFrom(src)

		case chunk.GET_KEYS:
			val := v.pop()
			keys, err := getKeys(ip, op, val)
			if err != nil {
				return err
			}
			v.push(keys)

		case chunk.GET_LENGTH:
			val := v.pop()
			n, err := getLength(ip, op, val)
			if err != nil {
				return err
			}
			v.push(n)

		case chunk.TO_STRING:
			v.push(chunk.String(v.pop().String()))

		default:
			return v.fault(ip, op, "unimplemented opcode")
		}
	}
}

func be16(code []byte, pc int) uint16 {
	return uint16(code[pc])<<8 | uint16(code[pc+1])
}

func (v *VM) execArith(ip int, op chunk.Opcode) error {
	b, a := v.pop(), v.pop()

	if op == chunk.ADD {
		as, aIsStr := a.(chunk.String)
		bs, bIsStr := b.(chunk.String)
		if aIsStr || bIsStr {
			left, right := a.String(), b.String()
			if aIsStr {
				left = string(as)
			}
			if bIsStr {
				right = string(bs)
			}
			v.push(chunk.String(left + right))
			return nil
		}
	}

	an, aOK := a.(chunk.Number)
	bn, bOK := b.(chunk.Number)
	if !aOK || !bOK {
		return v.fault(ip, op, "operands must be numbers, got %s and %s", a.Type(), b.Type())
	}
	switch op {
	case chunk.ADD:
		v.push(an + bn)
	case chunk.SUB:
		v.push(an - bn)
	case chunk.MUL:
		v.push(an * bn)
	case chunk.DIV:
		if bn == 0 {
			return v.fault(ip, op, "division by zero")
		}
		v.push(an / bn)
	case chunk.MOD:
		if bn == 0 {
			return v.fault(ip, op, "division by zero")
		}
		v.push(chunk.Number(int64(an) % int64(bn)))
	}
	return nil
}

func (v *VM) execCompare(ip int, op chunk.Opcode) error {
	b, a := v.pop(), v.pop()

	if as, ok := a.(chunk.String); ok {
		bs, ok := b.(chunk.String)
		if !ok {
			return v.fault(ip, op, "cannot compare string with %s", b.Type())
		}
		v.push(chunk.Boolean(compareOrdered(op, strings.Compare(string(as), string(bs)))))
		return nil
	}

	an, aOK := a.(chunk.Number)
	bn, bOK := b.(chunk.Number)
	if !aOK || !bOK {
		return v.fault(ip, op, "operands must both be numbers or both be strings, got %s and %s", a.Type(), b.Type())
	}
	cmp := 0
	switch {
	case an < bn:
		cmp = -1
	case an > bn:
		cmp = 1
	}
	v.push(chunk.Boolean(compareOrdered(op, cmp)))
	return nil
}

func compareOrdered(op chunk.Opcode, cmp int) bool {
	switch op {
	case chunk.LT:
		return cmp < 0
	case chunk.GT:
		return cmp > 0
	case chunk.LTE:
		return cmp <= 0
	case chunk.GTE:
		return cmp >= 0
	}
	return false
}

// execCall handles named CALL: constants[funcIdx] holds the function's
// start-IP as a Number (see compiler.compileFunctionDefStmt). It returns
// that start-IP, the pc execution continues at; the new frame records
// nextIP as the address RETURN comes back to.
func (v *VM) execCall(ip int, funcIdx, argc byte, nextIP int) (int, error) {
	if len(v.frames) >= v.limits.MaxCallDepth {
		return 0, v.fault(ip, chunk.CALL, "exceeded max call depth (%d)", v.limits.MaxCallDepth)
	}
	if int(funcIdx) >= len(v.chunk.Constants) {
		return 0, v.fault(ip, chunk.CALL, "invalid function constant index %d", funcIdx)
	}
	startVal, ok := v.chunk.Constants[funcIdx].(chunk.Number)
	if !ok {
		return 0, v.fault(ip, chunk.CALL, "constant %d is not a callable function descriptor", funcIdx)
	}

	fr := &frame{returnIP: nextIP}
	for i := range fr.locals {
		fr.locals[i] = chunk.Null{}
	}
	if err := v.bindArgs(ip, fr, int(argc)); err != nil {
		return 0, err
	}
	v.frames = append(v.frames, fr)
	return int(startVal), nil
}

// execCallMethod pops argc args, then the method Function value, then the
// receiver object, and jumps into the method's body with `this` bound to
// the receiver.
func (v *VM) execCallMethod(ip int, argc byte, nextIP int) (int, error) {
	if len(v.frames) >= v.limits.MaxCallDepth {
		return 0, v.fault(ip, chunk.CALL_METHOD, "exceeded max call depth (%d)", v.limits.MaxCallDepth)
	}

	fr := &frame{returnIP: nextIP}
	for i := range fr.locals {
		fr.locals[i] = chunk.Null{}
	}
	if err := v.bindArgs(ip, fr, int(argc)); err != nil {
		return 0, err
	}

	methodVal := v.pop()
	fn, ok := methodVal.(*chunk.Function)
	if !ok {
		return 0, v.fault(ip, chunk.CALL_METHOD, "property is not callable (%s)", methodVal.Type())
	}
	if fn.Kind == chunk.BuiltinFunc {
		return 0, v.fault(ip, chunk.CALL_METHOD, "builtin methods are not supported")
	}
	if fn.StartIP == 0 {
		// A body always starts after its skip JUMP, so 0 marks a Function
		// reloaded by chunk.ReadChunk, whose body was not serialized.
		return 0, v.fault(ip, chunk.CALL_METHOD, "function body not available after deserialization")
	}
	receiver := v.pop()
	fr.locals[symtab.ThisSlot-symtab.GlobalSlots] = receiver.Clone()
	v.frames = append(v.frames, fr)
	return fn.StartIP, nil
}

// bindArgs pops argc values in LIFO order and assigns them to fr's
// parameter slots in declared order: the compiler emits arguments in
// reverse so the first pop yields parameter 0.
func (v *VM) bindArgs(ip int, fr *frame, argc int) error {
	if len(v.stack) < argc {
		return v.fault(ip, chunk.CALL, "stack underflow binding call arguments")
	}
	for i := 0; i < argc; i++ {
		fr.locals[1+i] = v.pop().Clone()
	}
	return nil
}

func (v *VM) getIndex(ip int, op chunk.Opcode, arrVal, idxVal chunk.Value) (chunk.Value, error) {
	arr, ok := arrVal.(*chunk.Array)
	if !ok {
		return nil, v.fault(ip, op, "cannot index a non-array (%s)", arrVal.Type())
	}
	idx, ok := idxVal.(chunk.Number)
	if !ok {
		return nil, v.fault(ip, op, "array index must be a number")
	}
	i := int(idx)
	if i < 0 || i >= len(arr.Elems) {
		return nil, v.fault(ip, op, "array index out of range (%d, length %d)", i, len(arr.Elems))
	}
	return arr.Elems[i].Clone(), nil
}

// getProperty looks up key on obj. A missing key is the single non-fatal
// runtime condition the spec calls out: it recovers to Null with a warning
// on vm.stderr rather than aborting the program.
func (v *VM) getProperty(ip int, op chunk.Opcode, objVal, keyVal chunk.Value) (chunk.Value, error) {
	obj, ok := objVal.(*chunk.Object)
	if !ok {
		return nil, v.fault(ip, op, "cannot read a property of a non-object (%s)", objVal.Type())
	}
	key, ok := keyVal.(chunk.String)
	if !ok {
		return nil, v.fault(ip, op, "property key must be a string")
	}
	val, found := obj.Get(string(key))
	if !found {
		fmt.Fprintf(v.stderr, "warning: property %q not found, recovered to null\n", string(key))
		return chunk.Null{}, nil
	}
	return val.Clone(), nil
}

func setNestedProperty(obj *chunk.Object, path string, val chunk.Value) error {
	segments := strings.Split(path, ".")
	cur := obj
	for _, seg := range segments[:len(segments)-1] {
		next, found := cur.Get(seg)
		if !found {
			return fmt.Errorf("nested property path %q: %q not found", path, seg)
		}
		nextObj, ok := next.(*chunk.Object)
		if !ok {
			return fmt.Errorf("nested property path %q: %q is not an object", path, seg)
		}
		cur = nextObj
	}
	cur.Set(segments[len(segments)-1], val)
	return nil
}

func getKeys(ip int, op chunk.Opcode, val chunk.Value) (chunk.Value, error) {
	out := chunk.NewArray()
	switch v := val.(type) {
	case *chunk.Array:
		for i := range v.Elems {
			out.Push(chunk.Number(i))
		}
	case *chunk.Object:
		for _, k := range v.Keys() {
			out.Push(chunk.String(k))
		}
	default:
		return nil, &RuntimeError{IP: ip, Op: op, Msg: fmt.Sprintf("cannot get keys of a %s", val.Type())}
	}
	return out, nil
}

func getLength(ip int, op chunk.Opcode, val chunk.Value) (chunk.Value, error) {
	switch v := val.(type) {
	case *chunk.Array:
		return chunk.Number(len(v.Elems)), nil
	case *chunk.Object:
		return chunk.Number(len(v.Props)), nil
	case chunk.String:
		return chunk.Number(len(v)), nil
	default:
		return nil, &RuntimeError{IP: ip, Op: op, Msg: fmt.Sprintf("cannot get length of a %s", val.Type())}
	}
}

// valuesEqual implements EQ/NEQ's structural-equality contract: two Arrays
// or Objects are equal when their elements/properties are, recursively;
// two Functions are equal only when they are the same value (there is
// exactly one live Function per FunctionDef, per chunk.Function.Clone).
func valuesEqual(a, b chunk.Value) bool {
	switch av := a.(type) {
	case chunk.Null:
		_, ok := b.(chunk.Null)
		return ok
	case chunk.Number:
		bv, ok := b.(chunk.Number)
		return ok && av == bv
	case chunk.Boolean:
		bv, ok := b.(chunk.Boolean)
		return ok && av == bv
	case chunk.String:
		bv, ok := b.(chunk.String)
		return ok && av == bv
	case *chunk.Array:
		bv, ok := b.(*chunk.Array)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *chunk.Object:
		bv, ok := b.(*chunk.Object)
		if !ok || len(av.Props) != len(bv.Props) {
			return false
		}
		for _, p := range av.Props {
			other, found := bv.Get(p.Key)
			if !found || !valuesEqual(p.Value, other) {
				return false
			}
		}
		return true
	case *chunk.Function:
		bv, ok := b.(*chunk.Function)
		return ok && av == bv
	}
	return false
}
