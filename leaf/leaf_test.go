package leaf

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOIDRoundTrip(t *testing.T) {
	tests := map[string]ObjectIdentifier{
		"sha256WithRSAEncryption": {1, 2, 840, 113549, 1, 1, 11},
		"commonName":    {2, 5, 4, 3},
		"ecdsaWithSHA256": {1, 2, 840, 10045, 4, 3, 2},
		"arc1eq2highArc2": {2, 999, 3},
	}
	for name, oid := range tests {
		t.Run(name, func(t *testing.T) {
			content, err := EncodeOID(oid)
			require.NoError(t, err)
			got, err := DecodeOID(content)
			require.NoError(t, err)
			assert.Equal(t, oid, got)
		})
	}
}

func TestDecodeOIDSplitBoundary(t *testing.T) {
	// The packed first value 153 (2*40+73) must decode as arc1=2, arc2=73
	// (153-80), not (153/40, 153%40) = (3, 33); this is the case the naive
	// divide-and-mod decomposition gets wrong once the packed value reaches 120.
	content, err := EncodeOID(ObjectIdentifier{2, 73})
	require.NoError(t, err)
	got, err := DecodeOID(content)
	require.NoError(t, err)
	assert.Equal(t, ObjectIdentifier{2, 73}, got)
}

func TestEncodeOIDRejectsInvalidArcs(t *testing.T) {
	_, err := EncodeOID(ObjectIdentifier{3, 1})
	assert.Error(t, err)
	_, err = EncodeOID(ObjectIdentifier{1, 40})
	assert.Error(t, err)
	_, err = EncodeOID(ObjectIdentifier{1})
	assert.Error(t, err)
}

func TestIntegerRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, -129, 1 << 40} {
		want := big.NewInt(v)
		content, err := EncodeInteger(want)
		require.NoError(t, err)
		got, err := DecodeInteger(content)
		require.NoError(t, err)
		assert.Equal(t, 0, want.Cmp(got.(*big.Int)))
	}
}

func TestBooleanRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		content, err := EncodeBoolean(v)
		require.NoError(t, err)
		got, err := DecodeBoolean(content)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Equal(t, []byte{0xff}, mustEncodeBoolean(t, true))
	assert.Equal(t, []byte{0x00}, mustEncodeBoolean(t, false))
}

func mustEncodeBoolean(t *testing.T, v bool) []byte {
	t.Helper()
	b, err := EncodeBoolean(v)
	require.NoError(t, err)
	return b
}

func TestBooleanDecodeAcceptsAnyNonZeroAsTrue(t *testing.T) {
	got, err := DecodeBoolean([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestPrintableStringRejectsInvalidCharacters(t *testing.T) {
	_, err := DecodePrintableString([]byte("hello_world"))
	assert.Error(t, err)
	_, err = EncodePrintableString("hello_world")
	assert.Error(t, err)

	got, err := DecodePrintableString([]byte("Hello, World"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", got)
}

func TestIA5StringRejectsNonASCII(t *testing.T) {
	_, err := DecodeIA5String([]byte("café"))
	assert.Error(t, err)

	got, err := DecodeIA5String([]byte("cafe"))
	require.NoError(t, err)
	assert.Equal(t, "cafe", got)
}

func TestNumericStringRejectsLetters(t *testing.T) {
	_, err := DecodeNumericString([]byte("12a3"))
	assert.Error(t, err)

	got, err := DecodeNumericString([]byte("123 456"))
	require.NoError(t, err)
	assert.Equal(t, "123 456", got)
}

func TestUTF8StringRejectsInvalidEncoding(t *testing.T) {
	_, err := DecodeUTF8String([]byte{0xff, 0xfe})
	assert.Error(t, err)

	got, err := DecodeUTF8String([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}
