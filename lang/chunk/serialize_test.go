package chunk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripScalars(t *testing.T) {
	c := New()
	c.AddConstant(Number(42.5))
	c.AddConstant(Boolean(true))
	c.AddConstant(Null{})
	c.AddConstant(String("hi"))
	c.EmitOpU8(LOAD_CONST, 0)
	c.EmitOp(PRINT)

	var buf bytes.Buffer
	require.NoError(t, WriteChunk(c, &buf))

	got, err := ReadChunk(&buf)
	require.NoError(t, err)
	require.Equal(t, c.Code, got.Code)
	require.Equal(t, Number(42.5), got.Constants[0])
	require.Equal(t, Boolean(true), got.Constants[1])
	require.Equal(t, Null{}, got.Constants[2])
	require.Equal(t, String("hi"), got.Constants[3])
}

func TestRoundTripFunctionDropsBody(t *testing.T) {
	c := New()
	c.AddConstant(&Function{Kind: UserFunc, Name: "add", Params: []string{"a", "b"}, StartIP: 10})

	var buf bytes.Buffer
	require.NoError(t, WriteChunk(c, &buf))

	got, err := ReadChunk(&buf)
	require.NoError(t, err)
	fn := got.Constants[0].(*Function)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
	// StartIP is not part of the on-disk format: the spec's FUNCTION tag
	// carries name/params only, so a reloaded chunk cannot call this
	// function without the compiler having inlined its body elsewhere in
	// Code and the caller tracking the IP out of band.
	require.Equal(t, 0, fn.StartIP)
}

func TestReadChunkRejectsUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeI32(&buf, 0))
	require.NoError(t, writeI32(&buf, 1))
	require.NoError(t, writeU32(&buf, 99))

	_, err := ReadChunk(&buf)
	require.Error(t, err)
}

func TestDisassemble(t *testing.T) {
	c := New()
	c.EmitConstant(Number(1))
	c.EmitOp(PRINT)
	out := Disassemble(c, "test")
	require.Contains(t, out, "load_const")
	require.Contains(t, out, "print")
}
