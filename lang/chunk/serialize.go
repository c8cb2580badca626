package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Constant pool tags, written as a u32 ahead of each constant's payload.
const (
	tagNumber   uint32 = iota
	tagBool
	tagNull
	tagString
	tagFunction
)

// Function-value sub-tags, written as an i32 ahead of a FUNCTION constant's
// payload. Only UserFunc values are ever serialized: a Builtin has no
// meaningful on-disk representation and the compiler never places one in a
// chunk's constant pool.
const (
	funcTypeUser int32 = iota
)

// WriteChunk writes c to w in the format documented by the language spec:
// i32 code_count, i32 const_count, the raw code bytes, then const_count
// tagged constants. Numbers are native-endian (little-endian, matching the
// common host architectures this VM targets) f64 values. The format is
// intentionally versionless, per the spec's non-goal of chunk-format
// stability across versions.
func WriteChunk(c *Chunk, w io.Writer) error {
	if err := writeI32(w, int32(len(c.Code))); err != nil {
		return err
	}
	if err := writeI32(w, int32(len(c.Constants))); err != nil {
		return err
	}
	if _, err := w.Write(c.Code); err != nil {
		return err
	}
	for _, v := range c.Constants {
		if err := writeConstant(w, v); err != nil {
			return err
		}
	}
	return nil
}

func writeConstant(w io.Writer, v Value) error {
	switch val := v.(type) {
	case Number:
		if err := writeU32(w, tagNumber); err != nil {
			return err
		}
		return writeF64(w, float64(val))
	case Boolean:
		if err := writeU32(w, tagBool); err != nil {
			return err
		}
		b := byte(0)
		if val {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case Null:
		return writeU32(w, tagNull)
	case String:
		if err := writeU32(w, tagString); err != nil {
			return err
		}
		return writeString(w, string(val))
	case *Function:
		if err := writeU32(w, tagFunction); err != nil {
			return err
		}
		if err := writeI32(w, funcTypeUser); err != nil {
			return err
		}
		if err := writeString(w, val.Name); err != nil {
			return err
		}
		if err := writeI32(w, int32(len(val.Params))); err != nil {
			return err
		}
		for _, p := range val.Params {
			if err := writeString(w, p); err != nil {
				return err
			}
		}
		// has_body: the body itself is never serialized (a loader without
		// the originating AST cannot re-execute a user function), but the
		// flag is written for forward compatibility with a loader that
		// chooses to carry the start-IP out-of-band.
		return writeI32(w, 1)
	default:
		return fmt.Errorf("chunk: cannot serialize constant of type %s", v.Type())
	}
}

// ReadChunk reads a Chunk previously written by WriteChunk. It rejects
// unknown constant tags.
func ReadChunk(r io.Reader) (*Chunk, error) {
	codeCount, err := readI32(r)
	if err != nil {
		return nil, err
	}
	constCount, err := readI32(r)
	if err != nil {
		return nil, err
	}
	code := make([]byte, codeCount)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, fmt.Errorf("chunk: reading code: %w", err)
	}

	consts := make([]Value, constCount)
	for i := range consts {
		v, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("chunk: reading constant %d: %w", i, err)
		}
		consts[i] = v
	}
	return &Chunk{Code: code, Constants: consts}, nil
}

func readConstant(r io.Reader) (Value, error) {
	tag, err := readU32(r)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNumber:
		f, err := readF64(r)
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case tagBool:
		var buf [1]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return Boolean(buf[0] != 0), nil
	case tagNull:
		return Null{}, nil
	case tagString:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case tagFunction:
		funcType, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if funcType != funcTypeUser {
			return nil, fmt.Errorf("chunk: unknown function type tag %d", funcType)
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		pcount, err := readI32(r)
		if err != nil {
			return nil, err
		}
		params := make([]string, pcount)
		for i := range params {
			p, err := readString(r)
			if err != nil {
				return nil, err
			}
			params[i] = p
		}
		if _, err := readI32(r); err != nil { // has_body flag, ignored on load
			return nil, err
		}
		return &Function{Kind: UserFunc, Name: name, Params: params}, nil
	default:
		return nil, fmt.Errorf("chunk: unknown constant tag %d", tag)
	}
}

func writeI32(w io.Writer, v int32) error  { return binary.Write(w, binary.LittleEndian, v) }
func writeU32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }
func writeF64(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, math.Float64bits(v))
}

func readI32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readF64(r io.Reader) (float64, error) {
	var bits uint64
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeI32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readI32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
