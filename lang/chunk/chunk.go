package chunk

import "encoding/binary"

// Chunk is a compiled unit: a flat instruction stream plus its constant
// pool. The compiler owns a Chunk while building it; the VM borrows it
// read-only for the duration of a run.
type Chunk struct {
	Code      []byte
	Constants []Value
}

// New returns an empty Chunk ready for the compiler to emit into.
func New() *Chunk {
	return &Chunk{}
}

// EmitByte appends a single raw byte (an opcode or an operand byte) and
// returns its offset in Code.
func (c *Chunk) EmitByte(b byte) int {
	c.Code = append(c.Code, b)
	return len(c.Code) - 1
}

// EmitOp appends an opcode with no operand.
func (c *Chunk) EmitOp(op Opcode) int {
	return c.EmitByte(byte(op))
}

// EmitOpU8 appends an opcode followed by a single u8 operand.
func (c *Chunk) EmitOpU8(op Opcode, arg byte) int {
	off := c.EmitOp(op)
	c.EmitByte(arg)
	return off
}

// EmitOpU16 appends an opcode followed by a big-endian u16 operand.
func (c *Chunk) EmitOpU16(op Opcode, arg uint16) int {
	off := c.EmitOp(op)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], arg)
	c.Code = append(c.Code, buf[:]...)
	return off
}

// AddConstant appends v to the constant pool and returns its index. The
// spec permits but does not require de-duplication; this implementation
// always appends, keeping the compiler's constant-folding decisions
// explicit rather than silently shared.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// EmitConstant adds v to the pool and emits LOAD_CONST<u8> for it. The pool
// index must fit in a byte; the compiler is responsible for keeping a
// single function body's constant count within that range.
func (c *Chunk) EmitConstant(v Value) int {
	idx := c.AddConstant(v)
	c.EmitOpU8(LOAD_CONST, byte(idx))
	return idx
}

// EmitCall appends CALL with its two u8 operands: the constant-pool index
// of the function's start-IP and the argument count.
func (c *Chunk) EmitCall(funcIdx, argc byte) int {
	off := c.EmitOp(CALL)
	c.EmitByte(funcIdx)
	c.EmitByte(argc)
	return off
}

// EmitJump appends op followed by a two-byte placeholder and returns the
// offset of the placeholder, to be filled in later by PatchJump.
func (c *Chunk) EmitJump(op Opcode) int {
	c.EmitOp(op)
	site := len(c.Code)
	c.Code = append(c.Code, 0, 0)
	return site
}

// PatchJump writes the forward distance from just after the jump's operand
// to the current end of Code into the placeholder at site.
func (c *Chunk) PatchJump(site int) {
	dist := len(c.Code) - (site + 2)
	binary.BigEndian.PutUint16(c.Code[site:site+2], uint16(dist))
}

// EmitLoop appends LOOP followed by the backward distance from just after
// its own operand to loopStart.
func (c *Chunk) EmitLoop(loopStart int) {
	c.EmitOp(LOOP)
	site := len(c.Code)
	c.Code = append(c.Code, 0, 0)
	dist := (site + 2) - loopStart
	binary.BigEndian.PutUint16(c.Code[site:site+2], uint16(dist))
}

// Len returns the current length of the code stream, used by the compiler
// to record jump-back targets (loop-start labels).
func (c *Chunk) Len() int { return len(c.Code) }
