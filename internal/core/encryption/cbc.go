package encryption

// CBCEncrypt encrypts plaintext with DES in CBC mode using an all-zero IV.
// plaintext must already be padded to a multiple of BlockSize.
func CBCEncrypt(plaintext, key []byte) ([]byte, error) {
	return cbc(plaintext, key, false)
}

// CBCDecrypt reverses CBCEncrypt.
func CBCDecrypt(ciphertext, key []byte) ([]byte, error) {
	return cbc(ciphertext, key, true)
}

func cbc(in, key []byte, decrypt bool) ([]byte, error) {
	if len(in)%BlockSize != 0 {
		return nil, ErrUnalignedInput
	}
	c, err := newDESCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(in))
	prev := make([]byte, BlockSize)
	scratch := make([]byte, BlockSize)

	for i := 0; i < len(in); i += BlockSize {
		src, dst := in[i:i+BlockSize], out[i:i+BlockSize]
		if decrypt {
			c.decryptBlock(dst, src)
			xorInto(dst, prev)
			prev = src
		} else {
			copy(scratch, src)
			xorInto(scratch, prev)
			c.encryptBlock(dst, scratch)
			prev = dst
		}
	}
	return out, nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
