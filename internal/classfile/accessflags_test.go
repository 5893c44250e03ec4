package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessFlagsQueries(t *testing.T) {
	f := AccPublic | AccFinal | AccSynthetic
	assert.True(t, f.IsPublic())
	assert.True(t, f.IsFinal())
	assert.True(t, f.IsSynthetic())
	assert.False(t, f.IsPrivate())
	assert.False(t, f.IsStatic())
}

func TestPromotedClearsPrivateAndProtectedSetsPublic(t *testing.T) {
	f := AccPrivate | AccFinal
	p := f.Promoted()
	assert.True(t, p.IsPublic())
	assert.False(t, p.IsPrivate())
	assert.True(t, p.IsFinal(), "Promoted only touches visibility bits")
}

func TestWithoutFinalClearsOnlyFinal(t *testing.T) {
	f := AccPublic | AccFinal
	out := f.WithoutFinal()
	assert.True(t, out.IsPublic())
	assert.False(t, out.IsFinal())
}

func TestWithSyntheticSetsSyntheticBit(t *testing.T) {
	f := AccPublic
	out := f.WithSynthetic()
	assert.True(t, out.IsSynthetic())
	assert.True(t, out.IsPublic())
}

func TestOverlappingBitsDifferByContext(t *testing.T) {
	// AccSuper/AccSynchronized and AccVolatile/AccBridge and
	// AccTransient/AccVarargs intentionally share bit positions; only the
	// surrounding member kind disambiguates them.
	assert.Equal(t, AccSuper, AccSynchronized)
	assert.Equal(t, AccVolatile, AccBridge)
	assert.Equal(t, AccTransient, AccVarargs)
}
