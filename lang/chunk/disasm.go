package chunk

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble renders every instruction in c.Code as a human-readable
// listing, one line per instruction, in the spirit of the teacher's asm.go
// textual dump but addressed by raw byte offset instead of a named-section
// assembly format: this format exists purely for golden-file compiler tests
// and diagnostics, never for (de)serialization.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for off := 0; off < len(c.Code); {
		off = disassembleInstr(&b, c, off)
	}
	return b.String()
}

func disassembleInstr(b *strings.Builder, c *Chunk, off int) int {
	op := Opcode(c.Code[off])
	width := OperandWidth(op)

	fmt.Fprintf(b, "%04d %-20s", off, op)
	switch width {
	case 0:
		b.WriteByte('\n')
		return off + 1
	case 1:
		arg := c.Code[off+1]
		if op == LOAD_CONST && int(arg) < len(c.Constants) {
			fmt.Fprintf(b, " %3d ; %s\n", arg, c.Constants[arg])
		} else {
			fmt.Fprintf(b, " %3d\n", arg)
		}
		return off + 2
	case 2:
		if op == CALL {
			// CALL packs two u8 operands (funcIdx, argc) rather than one u16.
			funcIdx, argc := c.Code[off+1], c.Code[off+2]
			fmt.Fprintf(b, " %3d %3d\n", funcIdx, argc)
			return off + 3
		}
		arg := binary.BigEndian.Uint16(c.Code[off+1 : off+3])
		switch op {
		case JUMP, JUMP_IF_FALSE:
			fmt.Fprintf(b, " %5d -> %d\n", arg, off+3+int(arg))
		case LOOP:
			fmt.Fprintf(b, " %5d -> %d\n", arg, off+3-int(arg))
		default:
			fmt.Fprintf(b, " %5d\n", arg)
		}
		return off + 3
	default:
		b.WriteByte('\n')
		return off + 1
	}
}
