package asn1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagEqual(t *testing.T) {
	a := Tag{Class: ClassContextSpecific, Number: 0, Constructed: false}
	b := Tag{Class: ClassContextSpecific, Number: 0, Constructed: false}
	c := Tag{Class: ClassContextSpecific, Number: 0, Constructed: true}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "[APPLICATION 17]", Tag{Class: ClassApplication, Number: 17}.String())
	assert.Equal(t, "[CONTEXT-SPECIFIC 8]", Tag{Class: ClassContextSpecific, Number: 8}.String())
	assert.Equal(t, "[UNIVERSAL 16] constructed", Tag{Class: ClassUniversal, Number: 16, Constructed: true}.String())
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "UNIVERSAL", ClassUniversal.String())
	assert.Equal(t, "PRIVATE", ClassPrivate.String())
	assert.Equal(t, "INVALID", Class(4).String())
}
