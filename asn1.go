// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the identifier types shared by every layer of this
// module: the ASN.1 tag class, the tag number, and the combined tag identity
// used to match schema fields against wire data. See [Rec. ITU-T X.680] for
// the formal definitions.
//
// Encoding and decoding of TLV headers under the Basic/Distinguished
// Encoding Rules is implemented by the tlv package. The schema model that
// gives tags meaning (SEQUENCE, SET, CHOICE, SEQUENCE OF) lives in the
// schema package. The engine that walks a schema against a byte buffer
// lives in the codec package.
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import "strconv"

// Class is the two-bit namespace of an ASN.1 tag. See Rec. ITU-T X.680,
// §8.1 for the formal meaning of each value.
type Class uint8

// The four ASN.1 tag classes.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// String returns the name of c as used in ASN.1 notation, or "INVALID" for
// an out-of-range value.
func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "UNIVERSAL"
	case ClassApplication:
		return "APPLICATION"
	case ClassContextSpecific:
		return "CONTEXT-SPECIFIC"
	case ClassPrivate:
		return "PRIVATE"
	default:
		return "INVALID"
	}
}

// MaxTagNumber is the largest tag number this module will encode or decode.
// The specification allows an implementation to declare a native bound
// instead of the full 2^53-1 required for compatibility with JavaScript
// consumers; this is the 32-bit bound declared for this (Go) target. A tag
// number observed on the wire that exceeds this bound is rejected rather
// than silently truncated.
const MaxTagNumber = 1<<32 - 1

// Tag is the triple (class, number, constructed) that identifies an ASN.1
// data value. Two tags are equal iff all three components match; the
// constructed bit is part of the identity because a primitive and a
// constructed encoding of the same class/number never interchange on the
// wire.
type Tag struct {
	Class       Class
	Number      uint64
	Constructed bool
}

// Equal reports whether t and other identify the same tag.
func (t Tag) Equal(other Tag) bool {
	return t.Class == other.Class && t.Number == other.Number && t.Constructed == other.Constructed
}

// String returns a human-readable rendering of t, e.g. "[APPLICATION 5]" or
// "[UNIVERSAL 16] constructed".
func (t Tag) String() string {
	s := "[" + t.Class.String() + " " + strconv.FormatUint(t.Number, 10) + "]"
	if t.Constructed {
		s += " constructed"
	}
	return s
}

// Universal tag numbers relevant to this module, as assigned in Rec. ITU-T
// X.680, §8, Table 1. Codecs for the string/number/time types themselves are
// external collaborators (see the package doc); these constants exist so
// schemas can name their tags without magic numbers.
const (
	TagEndOfContents    uint64 = 0
	TagBoolean          uint64 = 1
	TagInteger          uint64 = 2
	TagBitString        uint64 = 3
	TagOctetString      uint64 = 4
	TagNull             uint64 = 5
	TagOID              uint64 = 6
	TagObjectDescriptor uint64 = 7
	TagExternal         uint64 = 8
	TagReal             uint64 = 9
	TagEnumerated       uint64 = 10
	TagEmbeddedPDV      uint64 = 11
	TagUTF8String       uint64 = 12
	TagRelativeOID      uint64 = 13
	TagSequence         uint64 = 16
	TagSet              uint64 = 17
	TagNumericString    uint64 = 18
	TagPrintableString  uint64 = 19
	TagTeletexString    uint64 = 20
	TagVideotexString   uint64 = 21
	TagIA5String        uint64 = 22
	TagUTCTime          uint64 = 23
	TagGeneralizedTime  uint64 = 24
	TagGraphicString    uint64 = 25
	TagVisibleString    uint64 = 26
	TagGeneralString    uint64 = 27
	TagUniversalString  uint64 = 28
	TagCharacterString  uint64 = 29
	TagBMPString        uint64 = 30
)
