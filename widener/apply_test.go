package widener

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swind/go-jvmmap/internal/classfile"
)

// buildTarget constructs a minimal "a/b/Target" class file with one
// private instance method foo()V whose body calls itself via
// invokespecial (javac's own shape for a call to a private method),
// and one private final field value:I.
func buildTarget(t *testing.T) *classfile.ClassFile {
	cp := classfile.NewConstantPool()
	thisIdx := cp.AddClass("a/b/Target")

	methodNameIdx := cp.AddUtf8("foo")
	methodDescIdx := cp.AddUtf8("()V")
	methodNatIdx := cp.AddNameAndType("foo", "()V")
	methodRefIdx := cp.Add(classfile.MethodrefInfo{ClassIndex: thisIdx, NameAndTypeIndex: methodNatIdx})

	code := []byte{byte(classfile.OpInvokeSpecial), byte(methodRefIdx >> 8), byte(methodRefIdx), 0xb1}
	codeAttr := &classfile.CodeAttr{MaxStack: 1, MaxLocals: 1, Code: code}
	info, err := codeAttr.EncodeCode()
	assert.NoError(t, err)
	codeNameIdx := cp.AddUtf8("Code")

	method := &classfile.MemberInfo{
		AccessFlags:     classfile.AccPrivate,
		NameIndex:       methodNameIdx,
		DescriptorIndex: methodDescIdx,
		Attributes:      []*classfile.Attribute{{NameIndex: codeNameIdx, Info: info}},
	}

	fieldNameIdx := cp.AddUtf8("value")
	fieldDescIdx := cp.AddUtf8("I")
	field := &classfile.MemberInfo{
		AccessFlags:     classfile.AccPrivate | classfile.AccFinal,
		NameIndex:       fieldNameIdx,
		DescriptorIndex: fieldDescIdx,
	}

	return &classfile.ClassFile{
		ConstantPool: cp,
		AccessFlags:  0,
		ThisClass:    thisIdx,
		Methods:      []*classfile.MemberInfo{method},
		Fields:       []*classfile.MemberInfo{field},
	}
}

func widenedTree() Tree {
	w := New(2, "named")
	w.addClass("a/b/Target", Accessible)
	w.addMethod("a/b/Target", "foo", "()V", Accessible)
	w.addField("a/b/Target", "value", "I", Mutable)
	return ToTree(w)
}

func TestApplyToClassWidensClassFieldAndMethod(t *testing.T) {
	cf := buildTarget(t)
	tree := widenedTree()

	assert.NoError(t, ApplyToClass(cf, tree))

	assert.True(t, cf.AccessFlags.IsPublic())
	assert.True(t, cf.Methods[0].AccessFlags.IsPublic())
	assert.False(t, cf.Methods[0].AccessFlags.IsPrivate())
	assert.True(t, cf.Fields[0].AccessFlags.IsPrivate())
	assert.False(t, cf.Fields[0].AccessFlags.IsFinal())
}

func TestApplyToClassPromotesInvokespecialOnWidenedMethod(t *testing.T) {
	cf := buildTarget(t)
	tree := widenedTree()

	assert.NoError(t, ApplyToClass(cf, tree))

	code, ok, err := cf.Code(cf.Methods[0])
	assert.NoError(t, err)
	assert.True(t, ok)
	instrs, err := classfile.DecodeInstructions(code.Code)
	assert.NoError(t, err)
	assert.Equal(t, classfile.OpInvokeVirtual, instrs[0].Opcode)
}

func TestApplyToClassLeavesUnrelatedClassAlone(t *testing.T) {
	cf := buildTarget(t)
	tree := ToTree(New(2, "named")) // empty tree, no entry for a/b/Target

	assert.NoError(t, ApplyToClass(cf, tree))
	assert.False(t, cf.AccessFlags.IsPublic())
	assert.True(t, cf.Methods[0].AccessFlags.IsPrivate())
}

func TestApplyToClassAndApplyVisitorAgree(t *testing.T) {
	cf1 := buildTarget(t)
	cf2 := buildTarget(t)
	tree := widenedTree()

	assert.NoError(t, ApplyToClass(cf1, tree))
	assert.NoError(t, ApplyVisitor(cf2, tree, Visitor{}))

	assert.Equal(t, cf1.AccessFlags, cf2.AccessFlags)
	assert.Equal(t, cf1.Methods[0].AccessFlags, cf2.Methods[0].AccessFlags)
	assert.Equal(t, cf1.Fields[0].AccessFlags, cf2.Fields[0].AccessFlags)

	code1, _, _ := cf1.Code(cf1.Methods[0])
	code2, _, _ := cf2.Code(cf2.Methods[0])
	assert.Equal(t, code1.Code, code2.Code)
}

func TestApplyVisitorInvokesHooks(t *testing.T) {
	cf := buildTarget(t)
	tree := widenedTree()

	var classVisited, methodVisited, fieldVisited bool
	v := Visitor{
		VisitClass:  func(owner string, flags classfile.AccessFlags) { classVisited = true },
		VisitMethod: func(owner, name, desc string, flags classfile.AccessFlags) { methodVisited = true },
		VisitField:  func(owner, name, desc string, flags classfile.AccessFlags) { fieldVisited = true },
	}
	assert.NoError(t, ApplyVisitor(cf, tree, v))
	assert.True(t, classVisited)
	assert.True(t, methodVisited)
	assert.True(t, fieldVisited)
}
