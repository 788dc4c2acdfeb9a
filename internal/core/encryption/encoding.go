package encryption

const (
	minTerminalChar = 32
	maxTerminalChar = 127
)

// EncodeCharacter maps a printable ASCII character onto the 7-bit code used by
// the terminal encoding, shifted left by one so the low bit is always 0.
// position is only used to describe the failure.
func EncodeCharacter(c byte, position int) (byte, error) {
	if c < minTerminalChar || c > maxTerminalChar {
		return 0, &InvalidCharacterError{Char: c, Position: position}
	}
	return (c - minTerminalChar) << 1, nil
}

// EncodeString encodes every byte of s, stopping at the first invalid character.
func EncodeString(s string) ([]byte, error) {
	encoded := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b, err := EncodeCharacter(s[i], i)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
	}
	return encoded, nil
}

// DecodeCharacter reverses EncodeCharacter.
func DecodeCharacter(b byte) (byte, error) {
	if b&1 != 0 || b > (maxTerminalChar-minTerminalChar)<<1 {
		return 0, ErrMalformedCredential
	}
	return b>>1 + minTerminalChar, nil
}

func decodeString(encoded []byte) (string, error) {
	decoded := make([]byte, len(encoded))
	for i, b := range encoded {
		c, err := DecodeCharacter(b)
		if err != nil {
			return "", err
		}
		decoded[i] = c
	}
	return string(decoded), nil
}
