package classfile

// Opcode is a single JVM instruction opcode (JVMS ยง6.5).
type Opcode uint8

// The subset of opcodes the remapper and access widener actually act on:
// call-site opcodes (for INVOKESPECIAL -> INVOKEVIRTUAL promotion when a
// private method is widened), LDC family (bootstrap method handle
// constants), and INVOKEDYNAMIC (lambda/method-reference detection).
const (
	OpLdc            Opcode = 0x12
	OpLdcW           Opcode = 0x13
	OpLdc2W          Opcode = 0x14
	OpGetStatic      Opcode = 0xb2
	OpPutStatic      Opcode = 0xb3
	OpGetField       Opcode = 0xb4
	OpPutField       Opcode = 0xb5
	OpInvokeVirtual  Opcode = 0xb6
	OpInvokeSpecial  Opcode = 0xb7
	OpInvokeStatic   Opcode = 0xb8
	OpInvokeInterface Opcode = 0xb9
	OpInvokeDynamic  Opcode = 0xba
	OpNew            Opcode = 0xbb
	OpANewArray      Opcode = 0xbd
	OpCheckCast      Opcode = 0xc0
	OpInstanceOf     Opcode = 0xc1
	OpWide           Opcode = 0xc4
	OpTableSwitch    Opcode = 0xaa
	OpLookupSwitch   Opcode = 0xab
)

// operandSize classifies most opcodes by their fixed operand length in
// bytes, mirroring the no-operand/single/double/quad bucket lookup
// tables of a hashed-bytecode classifier: a linear bytecode scan can
// skip most instructions by bucket alone. tableswitch, lookupswitch,
// wide, and multianewarray don't fit a fixed bucket and are handled
// specially by instructionLength in instructions.go.
type operandSize int

const (
	sizeNone operandSize = iota
	sizeOne
	sizeTwo
	sizeFour
	sizeVariable
)

var operandSizeTable = buildOperandSizeTable()

func buildOperandSizeTable() [256]operandSize {
	var t [256]operandSize

	noOperand := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b,
		0x0c, 0x0d, 0x0e, 0x0f, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20, 0x21,
		0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d,
		0x2e, 0x2f, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x3b, 0x3c, 0x3d, 0x3e,
		0x3f, 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49, 0x4a,
		0x4b, 0x4c, 0x4d, 0x4e, 0x4f, 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56,
		0x57, 0x58, 0x59, 0x5a, 0x5b, 0x5c, 0x5d, 0x5e, 0x5f, 0x60, 0x61, 0x62,
		0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69, 0x6a, 0x6b, 0x6c, 0x6d, 0x6e,
		0x6f, 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79, 0x7a,
		0x7b, 0x7c, 0x7d, 0x7e, 0x7f, 0x80, 0x81, 0x82, 0x83, 0x85, 0x86, 0x87,
		0x88, 0x89, 0x8a, 0x8b, 0x8c, 0x8d, 0x8e, 0x8f, 0x90, 0x91, 0x92, 0x93,
		0x94, 0x95, 0x96, 0x97, 0x98, 0xac, 0xad, 0xae, 0xaf, 0xb0, 0xb1, 0xbe,
		0xbf, 0xc2, 0xc3,
	}
	single := []byte{0xbc, 0x10, 0x12, 0x15, 0x16, 0x17, 0x18, 0x19, 0x36, 0x37, 0x38, 0x39, 0x3a, 0xa9}
	double := []byte{
		0x99, 0x9a, 0x9b, 0x9c, 0x9d, 0x9e, 0x9f, 0xa0, 0xa1, 0xa2, 0xa3, 0xa4,
		0xa5, 0xa6, 0xa7, 0xa8, 0xc6, 0xc7, 0x11, 0x84, 0x13, 0x14, 0xb2, 0xb3,
		0xb4, 0xb5, 0xb6, 0xb7, 0xb8, 0xbb, 0xbd, 0xc0, 0xc1,
	}
	quad := []byte{0xc8, 0xc9, 0xba, 0xb9}
	variable := []byte{0xaa, 0xab, 0xc4, 0xc5}

	for _, b := range noOperand {
		t[b] = sizeNone
	}
	for _, b := range single {
		t[b] = sizeOne
	}
	for _, b := range double {
		t[b] = sizeTwo
	}
	for _, b := range quad {
		t[b] = sizeFour
	}
	for _, b := range variable {
		t[b] = sizeVariable
	}
	return t
}

// isCallsiteOpcode reports whether op is one of the instructions whose
// first two operand bytes index a Methodref/InterfaceMethodref constant,
// the set the remapper rewrites and the widener promotes.
func isCallsiteOpcode(op Opcode) bool {
	switch op {
	case OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic, OpInvokeInterface:
		return true
	}
	return false
}

// isFieldOpcode reports whether op's two operand bytes index a
// Fieldref constant.
func isFieldOpcode(op Opcode) bool {
	switch op {
	case OpGetStatic, OpPutStatic, OpGetField, OpPutField:
		return true
	}
	return false
}

// isClassRefOpcode reports whether op's two operand bytes index a
// Class constant directly (new/anewarray/checkcast/instanceof), as
// opposed to indexing it indirectly through a Methodref/Fieldref.
func isClassRefOpcode(op Opcode) bool {
	switch op {
	case OpNew, OpANewArray, OpCheckCast, OpInstanceOf:
		return true
	}
	return false
}
