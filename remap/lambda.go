package remap

import (
	"fmt"

	"github.com/swind/go-jvmmap/internal/classfile"
	"github.com/swind/go-jvmmap/mapping"
)

// lambdaMetafactoryOwner is the bootstrap owner every javac-generated
// lambda/method-reference invokedynamic site resolves to.
const lambdaMetafactoryOwner = "java/lang/invoke/LambdaMetafactory"

func isLambdaMetafactory(owner, name string) bool {
	return owner == lambdaMetafactoryOwner && (name == "metafactory" || name == "altMetafactory")
}

// MapInvokeDynamicName resolves the synthetic interface method name an
// invokedynamic instruction targets. For a LambdaMetafactory bootstrap
// (the case javac emits for every lambda and method reference), the
// functional interface the call site implements is the instruction's own
// return type, and the method to remap is looked up against the erased
// descriptor carried as the bootstrap's first argument (a MethodType
// constant) — not the invokedynamic instruction's own descriptor, which
// describes the captured-variable/factory shape, not the interface
// method being implemented. Any other bootstrap leaves the name
// unchanged: it isn't a name javac expects callers to resolve by
// interface dispatch.
func (r *LoaderSimpleRemapper) MapInvokeDynamicName(cf *classfile.ClassFile, insnName, insnDesc string, bsmAttrIndex uint16) (string, error) {
	bsms, ok, err := cf.BootstrapMethods()
	if err != nil {
		return "", err
	}
	if !ok || int(bsmAttrIndex) >= len(bsms) {
		return insnName, nil
	}
	bsm := bsms[bsmAttrIndex]

	kind, owner, name, _, err := cf.ConstantPool.MethodHandleRef(bsm.MethodRefIndex)
	if err != nil {
		return insnName, nil
	}
	if kind != classfile.RefInvokeStatic || !isLambdaMetafactory(owner, name) {
		return insnName, nil
	}
	if len(bsm.Arguments) == 0 {
		return insnName, nil
	}

	methodDesc, err := methodTypeDescriptor(cf.ConstantPool, bsm.Arguments[0])
	if err != nil {
		return insnName, nil
	}

	returnTypeInternalName := mapping.ReturnTypeInternalName(insnDesc)
	if returnTypeInternalName == "" {
		return insnName, nil
	}

	return r.MapMethodName(returnTypeInternalName, insnName, methodDesc), nil
}

// methodTypeDescriptor resolves a CONSTANT_MethodType_info's descriptor
// string.
func methodTypeDescriptor(cp *classfile.ConstantPool, idx uint16) (string, error) {
	e, err := cp.Get(idx)
	if err != nil {
		return "", err
	}
	mt, ok := e.(classfile.MethodTypeInfo)
	if !ok {
		return "", fmt.Errorf("remap: constant pool index %d is not MethodType", idx)
	}
	return cp.Utf8(mt.DescriptorIndex)
}
