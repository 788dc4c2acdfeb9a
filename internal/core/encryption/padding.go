package encryption

// Value appended by Pad. Encoded characters are always even, so it can't be
// confused with data.
const padByte = 0xFF

// Pad returns b extended with 0xFF bytes up to the next multiple of the DES block
// size. Input that is already aligned is returned unchanged.
func Pad(b []byte) []byte {
	n := (BlockSize - len(b)%BlockSize) % BlockSize
	padded := make([]byte, len(b), len(b)+n)
	copy(padded, b)
	for i := 0; i < n; i++ {
		padded = append(padded, padByte)
	}
	return padded
}

// Unpad returns a slice of b without the trailing 0xFF bytes.
func Unpad(b []byte) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != padByte {
			return b[:i+1]
		}
	}
	return []byte{}
}
