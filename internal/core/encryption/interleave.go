package encryption

import "fmt"

// Interleave merges a and b by alternating elements (a[0], b[0], a[1], b[1], ...)
// and appends whatever is left of the longer slice once the shorter runs out.
func Interleave(a, b []byte) []byte {
	merged := make([]byte, 0, len(a)+len(b))
	i := 0
	for ; i < len(a) && i < len(b); i++ {
		merged = append(merged, a[i], b[i])
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[i:]...)
}

// Deinterleave splits a slice produced by Interleave back into its two inputs,
// given the length of the first one.
func Deinterleave(merged []byte, lenA int) ([]byte, []byte, error) {
	if lenA < 0 || lenA > len(merged) {
		return nil, nil, fmt.Errorf("deinterleave: first length %d out of range for %d bytes", lenA, len(merged))
	}
	lenB := len(merged) - lenA
	a := make([]byte, 0, lenA)
	b := make([]byte, 0, lenB)

	i := 0
	for ; len(a) < lenA && len(b) < lenB; i += 2 {
		a = append(a, merged[i])
		b = append(b, merged[i+1])
	}
	if len(a) < lenA {
		a = append(a, merged[i:]...)
	} else {
		b = append(b, merged[i:]...)
	}
	return a, b, nil
}
