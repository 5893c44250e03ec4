package classfile

// AccessFlags holds the access_flags bitmask shared by ClassFile,
// field_info, and method_info (JVMS ยง4.1/ยง4.5/ยง4.6 — the bit positions
// overlap across all three, only the legal combinations differ).
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // classes
	AccSynchronized AccessFlags = 0x0020 // methods
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040 // methods
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080 // methods
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) has(bit AccessFlags) bool { return f&bit != 0 }

func (f AccessFlags) IsPublic() bool       { return f.has(AccPublic) }
func (f AccessFlags) IsPrivate() bool      { return f.has(AccPrivate) }
func (f AccessFlags) IsProtected() bool    { return f.has(AccProtected) }
func (f AccessFlags) IsStatic() bool       { return f.has(AccStatic) }
func (f AccessFlags) IsFinal() bool        { return f.has(AccFinal) }
func (f AccessFlags) IsSuper() bool        { return f.has(AccSuper) }
func (f AccessFlags) IsSynchronized() bool { return f.has(AccSynchronized) }
func (f AccessFlags) IsVolatile() bool     { return f.has(AccVolatile) }
func (f AccessFlags) IsBridge() bool       { return f.has(AccBridge) }
func (f AccessFlags) IsTransient() bool    { return f.has(AccTransient) }
func (f AccessFlags) IsVarargs() bool      { return f.has(AccVarargs) }
func (f AccessFlags) IsNative() bool       { return f.has(AccNative) }
func (f AccessFlags) IsInterface() bool    { return f.has(AccInterface) }
func (f AccessFlags) IsAbstract() bool     { return f.has(AccAbstract) }
func (f AccessFlags) IsSynthetic() bool    { return f.has(AccSynthetic) }
func (f AccessFlags) IsAnnotation() bool   { return f.has(AccAnnotation) }
func (f AccessFlags) IsEnum() bool         { return f.has(AccEnum) }
func (f AccessFlags) IsModule() bool       { return f.has(AccModule) }

// WithSynthetic returns f with the synthetic bit set. Neither the widener
// nor the remapper calls it; neither introduces new members.
func (f AccessFlags) WithSynthetic() AccessFlags { return f | AccSynthetic }

// Promoted returns f with private/protected cleared and public set,
// the access-widener's core member-level transform (spec.md widener
// "widen" operation): a widened member must be at least as visible
// as its narrowest caller from another package.
func (f AccessFlags) Promoted() AccessFlags {
	return (f &^ (AccPrivate | AccProtected)) | AccPublic
}

// WithoutFinal clears the final bit, the widener's "remove final" half
// of widening a member.
func (f AccessFlags) WithoutFinal() AccessFlags { return f &^ AccFinal }
