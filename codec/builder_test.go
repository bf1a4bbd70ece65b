package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AokiApp/tlv-sub001/asn1"
	"github.com/AokiApp/tlv-sub001/schema"
)

func TestBuildRejectsTopLevelRepeated(t *testing.T) {
	element := utf8Primitive("item")
	s := schema.Repeated("items", schema.RepeatedOptions{}, element)
	_, err := NewBuilder(s).Build([]any{"a"})
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInvalidTag, cerr.Kind)
}

func TestBuildMissingRequired(t *testing.T) {
	name := utf8Primitive("name")
	s := schema.Constructed("rec", schema.ConstructedOptions{
		TagClass: asn1.ClassUniversal, TagNumber: asn1.TagSequence,
	}, name)

	_, err := NewBuilder(s).Build(Record{})
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindMissingRequiredBuild, cerr.Kind)
}

func TestBuildElidesDefaultValue(t *testing.T) {
	flag := schema.Primitive("flag", schema.PrimitiveOptions{
		TagClass: asn1.ClassUniversal, TagNumber: asn1.TagBoolean,
		HasDefault: true, DefaultValue: []byte{0x00},
	}, nil, nil)
	s := schema.Constructed("rec", schema.ConstructedOptions{
		TagClass: asn1.ClassUniversal, TagNumber: asn1.TagSequence,
	}, flag)

	out, err := NewBuilder(s).Build(Record{"flag": []byte{0x00}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x00}, out)

	out, err = NewBuilder(s).Build(Record{"flag": []byte{0xff}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x03, 0x01, 0x01, 0xff}, out)
}

func TestBuildNonArrayForRepeated(t *testing.T) {
	element := utf8Primitive("item")
	items := schema.Repeated("items", schema.RepeatedOptions{}, element)
	s := schema.Constructed("rec", schema.ConstructedOptions{
		TagClass: asn1.ClassUniversal, TagNumber: asn1.TagSequence,
	}, items)

	_, err := NewBuilder(s).Build(Record{"items": "not a slice"})
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindNonArrayForRepeated, cerr.Kind)
}

// Universal property: round-trip on DER-valid input.
func TestRoundTripDERValidInput(t *testing.T) {
	s := sequenceE3()
	wire := []byte{0x30, 0x0A, 0x0C, 0x05, 0x41, 0x6c, 0x69, 0x63, 0x65, 0x02, 0x01, 0x1E}

	value, err := NewParser(s).Parse(wire)
	require.NoError(t, err)

	out, err := NewBuilder(s).Build(value)
	require.NoError(t, err)
	assert.Equal(t, wire, out)
}

// Universal property: idempotence of encode (parse after build reproduces
// the original value, modulo default elision).
func TestIdempotenceOfEncode(t *testing.T) {
	s := sequenceE3()
	record := Record{"name": "Bob", "age": int64(42)}

	wire, err := NewBuilder(s).Build(record)
	require.NoError(t, err)

	value, err := NewParser(s).Parse(wire)
	require.NoError(t, err)
	got := value.(Record)
	assert.Equal(t, "Bob", got["name"])
	assert.Equal(t, int64(42), got["age"])
	_, hasNick := got["nick"]
	assert.False(t, hasNick)
}

// Universal property: DER SET canonicalization on build is independent of
// input-record iteration order (Go map iteration order is randomized, so
// this exercises the property directly rather than relying on map order).
func TestSetCanonicalizationIndependentOfInputOrder(t *testing.T) {
	s := setE4()
	a, err := NewBuilder(s).Build(Record{"low": int64(0), "high": int64(0)})
	require.NoError(t, err)
	b, err := NewBuilder(s).Build(Record{"high": int64(0), "low": int64(0)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
