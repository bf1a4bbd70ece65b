// Package vlq implements the base-128 variable-length-quantity encoding used
// by BER for tag numbers greater than 30 (§8.1.2.4 of Rec. ITU-T X.690): each
// byte carries 7 bits of the value, most-significant group first, and the
// high bit of every byte but the last is set to signal continuation.
package vlq

import (
	"errors"
	"io"
	"math/bits"
)

var errOverflow = errors.New("vlq: value too large for target type")

// Read parses an unsigned VLQ from r. The maximum allowed value is bounded by
// the size of T; a value that would not fit returns errOverflow.
//
// If r returns io.EOF on the first read, the returned error is io.EOF; if it
// returns io.EOF in the middle of a multi-byte value, the returned error is
// io.ErrUnexpectedEOF.
func Read[T ~uint | ~uint32 | ~uint64](r io.ByteReader) (T, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	ret := T(b & 0x7f)
	numBits := bits.Len8(b & 0x7f)

	for b&0x80 != 0 {
		if b, err = r.ReadByte(); err != nil {
			break
		}
		ret <<= 7
		ret |= T(b & 0x7f)

		if numBits == 0 {
			numBits = bits.Len8(b & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > bitSize(ret) {
			return 0, errOverflow
		}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return ret, err
}

func bitSize[T ~uint | ~uint32 | ~uint64](v T) int {
	switch any(v).(type) {
	case uint32:
		return 32
	default:
		return 64
	}
}

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T ~uint | ~uint32 | ~uint64](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Write encodes i as a VLQ into w. Any error returned by w is returned by
// this function.
func Write[T ~uint | ~uint32 | ~uint64](w io.ByteWriter, i T) (n int, err error) {
	l := Length(i)

	j := l - 1
	for ; j >= 0 && err == nil; j-- {
		b := byte(i>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		err = w.WriteByte(b)
	}

	return l - 1 - j, err
}
