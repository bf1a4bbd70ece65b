package tlv

// CompareUnsignedLex compares a and b byte-by-byte as unsigned octet
// strings. It returns a negative number if a < b, zero if a == b, and a
// positive number if a > b. When one is a prefix of the other, the shorter
// one compares smaller. This is the ordering DER uses to canonicalize SET
// member order: ascending CompareUnsignedLex over each member's full TLV
// encoding (tag, length, and content octets together).
func CompareUnsignedLex(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
