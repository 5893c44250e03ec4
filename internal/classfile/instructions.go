package classfile

import "fmt"

// Instruction is one decoded bytecode instruction: its opcode, the byte
// offset it starts at (needed for tableswitch/lookupswitch padding and
// for branch target arithmetic), and its raw operand bytes.
type Instruction struct {
	Offset  int
	Opcode  Opcode
	Operand []byte
}

// Uint16At reads a big-endian uint16 operand starting at byte off within
// the instruction's operand bytes — the shape of a constant-pool index
// operand shared by ldc_w/getfield/invoke*/new/checkcast/instanceof.
func (in *Instruction) Uint16At(off int) uint16 {
	return uint16(in.Operand[off])<<8 | uint16(in.Operand[off+1])
}

// PutUint16At overwrites a big-endian uint16 operand in place — used to
// rewrite a constant-pool index to point at a remapped entry without
// otherwise touching the instruction stream.
func (in *Instruction) PutUint16At(off int, v uint16) {
	in.Operand[off] = byte(v >> 8)
	in.Operand[off+1] = byte(v)
}

// ConstantPoolIndex returns the constant-pool index this instruction
// references, for the opcodes where that's a single well-defined value
// (call sites, field access, class references, ldc/ldc_w/ldc2_w).
// The second return is false for instructions without exactly one.
func (in *Instruction) ConstantPoolIndex() (uint16, bool) {
	switch in.Opcode {
	case OpLdc:
		return uint16(in.Operand[0]), true
	case OpLdcW, OpLdc2W:
		return in.Uint16At(0), true
	case OpGetStatic, OpPutStatic, OpGetField, OpPutField,
		OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic, OpInvokeInterface,
		OpInvokeDynamic, OpNew, OpANewArray, OpCheckCast, OpInstanceOf:
		return in.Uint16At(0), true
	}
	return 0, false
}

// SetConstantPoolIndex rewrites the index returned by ConstantPoolIndex
// in place.
func (in *Instruction) SetConstantPoolIndex(idx uint16) {
	switch in.Opcode {
	case OpLdc:
		in.Operand[0] = byte(idx)
	case OpLdcW, OpLdc2W:
		in.PutUint16At(0, idx)
	default:
		in.PutUint16At(0, idx)
	}
}

// instructionLength returns the total length in bytes (opcode + operand)
// of the instruction starting at code[pc], per JVMS ยง6.5's per-opcode
// operand shapes. tableswitch/lookupswitch pad to the next 4-byte
// boundary measured from the start of the instruction; wide has two
// shapes depending on the opcode it modifies; multianewarray always
// takes exactly 3 operand bytes.
func instructionLength(code []byte, pc int) (int, error) {
	if pc >= len(code) {
		return 0, fmt.Errorf("classfile: instruction offset %d out of range", pc)
	}
	op := Opcode(code[pc])

	switch op {
	case OpTableSwitch:
		pad := (4 - (pc+1)%4) % 4
		base := pc + 1 + pad
		if base+12 > len(code) {
			return 0, fmt.Errorf("classfile: truncated tableswitch at %d", pc)
		}
		low := int32(be32(code[base+4:]))
		high := int32(be32(code[base+8:]))
		n := int(high-low) + 1
		if n < 0 {
			return 0, fmt.Errorf("classfile: invalid tableswitch range at %d", pc)
		}
		return 1 + pad + 12 + 4*n, nil
	case OpLookupSwitch:
		pad := (4 - (pc+1)%4) % 4
		base := pc + 1 + pad
		if base+8 > len(code) {
			return 0, fmt.Errorf("classfile: truncated lookupswitch at %d", pc)
		}
		npairs := int(be32(code[base+4:]))
		if npairs < 0 {
			return 0, fmt.Errorf("classfile: invalid lookupswitch count at %d", pc)
		}
		return 1 + pad + 8 + 8*npairs, nil
	case OpWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("classfile: truncated wide at %d", pc)
		}
		if Opcode(code[pc+1]) == 0x84 { // iinc
			return 6, nil
		}
		return 4, nil
	case 0xc5: // multianewarray
		return 4, nil
	}

	switch operandSizeTable[op] {
	case sizeNone:
		return 1, nil
	case sizeOne:
		return 2, nil
	case sizeTwo:
		return 3, nil
	case sizeFour:
		return 5, nil
	default:
		return 0, fmt.Errorf("classfile: unhandled opcode %#x at offset %d", op, pc)
	}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// DecodeInstructions walks a Code attribute's raw bytecode into a
// sequence of Instructions, the shared primitive the remapper uses to
// find call-site/field/class constant-pool references to rewrite and
// the widener uses to detect invokespecial call sites that need
// promoting to invokevirtual after their target is widened.
func DecodeInstructions(code []byte) ([]*Instruction, error) {
	var out []*Instruction
	pc := 0
	for pc < len(code) {
		length, err := instructionLength(code, pc)
		if err != nil {
			return nil, err
		}
		if pc+length > len(code) {
			return nil, fmt.Errorf("classfile: instruction at %d overruns code (len %d)", pc, len(code))
		}
		in := &Instruction{
			Offset:  pc,
			Opcode:  Opcode(code[pc]),
			Operand: append([]byte(nil), code[pc+1:pc+length]...),
		}
		out = append(out, in)
		pc += length
	}
	return out, nil
}

// EncodeInstructions serializes a decoded instruction sequence back into
// raw bytecode. Instructions must retain their original Offset/length
// shape (tableswitch/lookupswitch padding, wide forms) — EncodeInstructions
// concatenates each opcode and its operand bytes as they are, it never
// re-lays-out the stream, so offsets and branch targets stay valid as long
// as callers only rewrite operands in place (e.g. via PutUint16At).
func EncodeInstructions(instrs []*Instruction) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, byte(in.Opcode))
		out = append(out, in.Operand...)
	}
	return out
}
