package chunk

import "gopkg.in/yaml.v3"

// instrDump is one disassembled instruction in DumpYAML's output: same
// addressing scheme as Disassemble (raw byte offset), but structured for a
// developer tool or test fixture to diff field-by-field instead of
// line-by-line.
type instrDump struct {
	Offset  int     `yaml:"offset"`
	Op      string  `yaml:"op"`
	Operand *uint16 `yaml:"operand,omitempty"`
	Const   *string `yaml:"const,omitempty"`
}

type chunkDump struct {
	Instructions []instrDump `yaml:"instructions"`
	Constants    []string    `yaml:"constants"`
}

// DumpYAML renders c as a YAML document: every instruction with its raw
// operand and, where it names one, the constant it refers to, followed by
// the constant pool in declaration order. This is a developer-facing debug
// aid with no bearing on the binary format WriteChunk/ReadChunk produce —
// it exists for embedders without a cmd-less way to eyeball a compiled
// chunk, e.g. a test fixture or a REPL's `:dump` command.
func DumpYAML(c *Chunk) ([]byte, error) {
	dump := chunkDump{Constants: make([]string, len(c.Constants))}
	for i, v := range c.Constants {
		dump.Constants[i] = v.String()
	}
	for off := 0; off < len(c.Code); {
		op := Opcode(c.Code[off])
		width := OperandWidth(op)
		entry := instrDump{Offset: off, Op: op.String()}
		switch width {
		case 1:
			arg := uint16(c.Code[off+1])
			entry.Operand = &arg
			if op == LOAD_CONST && int(arg) < len(c.Constants) {
				s := c.Constants[arg].String()
				entry.Const = &s
			}
			off += 2
		case 2:
			arg := uint16(c.Code[off+1])<<8 | uint16(c.Code[off+2])
			entry.Operand = &arg
			off += 3
		default:
			off++
		}
		dump.Instructions = append(dump.Instructions, entry)
	}
	return yaml.Marshal(dump)
}
