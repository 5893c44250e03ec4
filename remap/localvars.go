package remap

import (
	"encoding/binary"

	"github.com/swind/go-jvmmap/internal/classfile"
)

const (
	localVariableTableAttributeName     = "LocalVariableTable"
	localVariableTypeTableAttributeName = "LocalVariableTypeTable"
)

// remapLocalVariableAttrs rewrites the descriptor entries of a Code
// attribute's LocalVariableTable and the signature entries of its
// LocalVariableTypeTable (JVMS ยง4.7.13/ยง4.7.14) — the last place a type
// reference can hide that the constant-pool-level rewrites in
// class_remap.go don't already reach, since both tables are fixed-width
// records of Utf8 indices rather than Class entries.
func remapLocalVariableAttrs(cp *classfile.ConstantPool, attrs []*classfile.Attribute, r *LoaderSimpleRemapper) error {
	for _, a := range attrs {
		name, err := cp.Utf8(a.NameIndex)
		if err != nil {
			continue
		}
		switch name {
		case localVariableTableAttributeName:
			if err := rewriteLocalVariableTable(cp, a, r); err != nil {
				return err
			}
		case localVariableTypeTableAttributeName:
			if err := rewriteLocalVariableTypeTable(cp, a, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// each entry: start_pc(2) length(2) name_index(2) descriptor/signature_index(2) index(2)
const localVariableEntrySize = 10

func rewriteLocalVariableTable(cp *classfile.ConstantPool, a *classfile.Attribute, r *LoaderSimpleRemapper) error {
	return rewriteLocalVariableEntries(cp, a, func(desc string) string {
		return remapDescriptorString(r, desc)
	})
}

func rewriteLocalVariableTypeTable(cp *classfile.ConstantPool, a *classfile.Attribute, r *LoaderSimpleRemapper) error {
	return rewriteLocalVariableEntries(cp, a, func(sig string) string {
		mapped, ok := r.MapSignature(sig)
		if !ok {
			return sig
		}
		return mapped
	})
}

func rewriteLocalVariableEntries(cp *classfile.ConstantPool, a *classfile.Attribute, rewrite func(string) string) error {
	if len(a.Info) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(a.Info))
	if len(a.Info) < 2+count*localVariableEntrySize {
		return nil
	}
	for i := 0; i < count; i++ {
		off := 2 + i*localVariableEntrySize
		descIdxOff := off + 6
		descIdx := binary.BigEndian.Uint16(a.Info[descIdxOff:])
		desc, err := cp.Utf8(descIdx)
		if err != nil {
			continue
		}
		mapped := rewrite(desc)
		if mapped == desc {
			continue
		}
		newIdx := cp.AddUtf8(mapped)
		binary.BigEndian.PutUint16(a.Info[descIdxOff:], newIdx)
	}
	return nil
}
