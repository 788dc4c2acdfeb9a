// DES block cipher, written out table by table so that the key schedule and
// the round function can be checked against the published description.
//
// Blocks and keys are expanded into bit vectors (one byte per bit, most
// significant bit first) and every step is a table lookup over those vectors.
package encryption

// BlockSize is the DES block size in bytes.
const BlockSize = 8

const (
	rounds      = 16
	halfKeyBits = 28
)

type desCipher struct {
	subkeys [rounds][]byte
}

func newDESCipher(key []byte) (*desCipher, error) {
	if len(key) != KeySize {
		return nil, InvalidKeyLengthError(len(key))
	}
	c := &desCipher{}
	c.generateSubkeys(key)
	return c, nil
}

// Builds the 16 48-bit round keys in round order. C and D keep rotating left
// from one round to the next; decryption just walks the result backwards.
func (c *desCipher) generateSubkeys(key []byte) {
	cd := permute(toBits(key), permutedChoice1[:])
	left, right := cd[:halfKeyBits], cd[halfKeyBits:]

	for i := 0; i < rounds; i++ {
		left = rotateLeft(left, keyRotations[i])
		right = rotateLeft(right, keyRotations[i])
		c.subkeys[i] = permute(concatBits(left, right), permutedChoice2[:])
	}
}

// encryptBlock encrypts the 8-byte block src into dst.
func (c *desCipher) encryptBlock(dst, src []byte) {
	c.crypt(dst, src, false)
}

// decryptBlock decrypts the 8-byte block src into dst.
func (c *desCipher) decryptBlock(dst, src []byte) {
	c.crypt(dst, src, true)
}

func (c *desCipher) crypt(dst, src []byte, decrypt bool) {
	block := permute(toBits(src[:BlockSize]), initialPermutation[:])
	left, right := block[:32], block[32:]

	for i := 0; i < rounds; i++ {
		subkey := c.subkeys[i]
		if decrypt {
			subkey = c.subkeys[rounds-1-i]
		}
		left, right = right, xorBits(feistel(right, subkey), left)
	}

	// The halves are not swapped back after the last round.
	packBits(dst, permute(concatBits(right, left), finalPermutation[:]))
}

// feistel is the DES round function f(R, K).
func feistel(right, subkey []byte) []byte {
	mixed := xorBits(permute(right, expansion[:]), subkey)

	substituted := make([]byte, 32)
	for g := 0; g < 8; g++ {
		b := mixed[g*6 : g*6+6]
		// Row from the outer bits, column from the inner four.
		index := b[0]*32 + b[5]*16 + b[1]*8 + b[2]*4 + b[3]*2 + b[4]
		v := sBoxes[g][index]
		for j := 0; j < 4; j++ {
			substituted[g*4+j] = (v >> (3 - j)) & 1
		}
	}
	return permute(substituted, roundPermutation[:])
}

// permute builds a new bit vector where output bit i is input bit table[i]-1.
func permute(bits []byte, table []byte) []byte {
	out := make([]byte, len(table))
	for i, source := range table {
		out[i] = bits[source-1]
	}
	return out
}

func rotateLeft(bits []byte, n int) []byte {
	rotated := make([]byte, len(bits))
	copy(rotated, bits[n:])
	copy(rotated[len(bits)-n:], bits[:n])
	return rotated
}

func xorBits(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func concatBits(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// toBits expands b into one byte per bit, most significant bit first.
func toBits(b []byte) []byte {
	bits := make([]byte, len(b)*8)
	for i, v := range b {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (v >> (7 - j)) & 1
		}
	}
	return bits
}

// packBits is the inverse of toBits, writing len(bits)/8 bytes into dst.
func packBits(dst []byte, bits []byte) {
	for i := 0; i < len(bits)/8; i++ {
		var v byte
		for j := 0; j < 8; j++ {
			v = v<<1 | bits[i*8+j]
		}
		dst[i] = v
	}
}
