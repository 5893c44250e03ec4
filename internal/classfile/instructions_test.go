package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeInstructionsRoundTrip(t *testing.T) {
	// aload_0; invokespecial #2; return
	code := []byte{0x2a, 0xb7, 0x00, 0x02, 0xb1}
	instrs, err := DecodeInstructions(code)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, Opcode(0x2a), instrs[0].Opcode)
	assert.Equal(t, OpInvokeSpecial, instrs[1].Opcode)
	assert.Equal(t, 1, instrs[1].Offset)
	assert.Equal(t, Opcode(0xb1), instrs[2].Opcode) // return

	idx, ok := instrs[1].ConstantPoolIndex()
	require.True(t, ok)
	assert.Equal(t, uint16(2), idx)

	assert.Equal(t, code, EncodeInstructions(instrs))
}

func TestSetConstantPoolIndexRewritesOperand(t *testing.T) {
	in := &Instruction{Opcode: OpInvokeStatic, Operand: []byte{0x00, 0x05}}
	in.SetConstantPoolIndex(0x0102)
	idx, ok := in.ConstantPoolIndex()
	require.True(t, ok)
	assert.Equal(t, uint16(0x0102), idx)
}

func TestConstantPoolIndexFalseForPlainOpcodes(t *testing.T) {
	in := &Instruction{Opcode: Opcode(0x2a)} // aload_0, no operand
	_, ok := in.ConstantPoolIndex()
	assert.False(t, ok)
}

func TestDecodeInstructionsDetectsTruncatedStream(t *testing.T) {
	// invokestatic needs 2 operand bytes but only 1 is present.
	_, err := DecodeInstructions([]byte{0xb8, 0x00})
	assert.Error(t, err)
}

func TestDecodeInstructionsHandlesWideIinc(t *testing.T) {
	// wide iinc index(2) const(2)
	code := []byte{0xc4, 0x84, 0x00, 0x01, 0x00, 0x02}
	instrs, err := DecodeInstructions(code)
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, OpWide, instrs[0].Opcode)
	assert.Len(t, instrs[0].Operand, 5)
}
