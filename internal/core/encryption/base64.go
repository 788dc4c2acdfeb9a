package encryption

import "fmt"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const base64Pad = '='

// EncodeBase64 encodes b with the standard alphabet and '=' padding. Output is
// never wrapped.
func EncodeBase64(b []byte) string {
	out := make([]byte, 0, (len(b)+2)/3*4)

	i := 0
	for ; i+3 <= len(b); i += 3 {
		v := uint(b[i])<<16 | uint(b[i+1])<<8 | uint(b[i+2])
		out = append(out,
			base64Alphabet[v>>18&0x3F],
			base64Alphabet[v>>12&0x3F],
			base64Alphabet[v>>6&0x3F],
			base64Alphabet[v&0x3F],
		)
	}

	switch len(b) - i {
	case 1:
		v := uint(b[i]) << 16
		out = append(out, base64Alphabet[v>>18&0x3F], base64Alphabet[v>>12&0x3F], base64Pad, base64Pad)
	case 2:
		v := uint(b[i])<<16 | uint(b[i+1])<<8
		out = append(out, base64Alphabet[v>>18&0x3F], base64Alphabet[v>>12&0x3F], base64Alphabet[v>>6&0x3F], base64Pad)
	}
	return string(out)
}

// DecodeBase64 reverses EncodeBase64. Input must be padded and canonical: the
// bits dropped in front of '=' padding have to be zero, so every byte sequence
// has exactly one accepted encoding.
func DecodeBase64(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("base64: invalid length %d", len(s))
	}
	out := make([]byte, 0, len(s)/4*3)

	for i := 0; i < len(s); i += 4 {
		var v uint
		pad := 0
		for j := 0; j < 4; j++ {
			c := s[i+j]
			if c == base64Pad && i+4 == len(s) && j >= 2 {
				pad++
				v <<= 6
				continue
			}
			if pad > 0 {
				return nil, fmt.Errorf("base64: illegal data at offset %d", i+j)
			}
			idx := base64Index(c)
			if idx < 0 {
				return nil, fmt.Errorf("base64: illegal character %q at offset %d", c, i+j)
			}
			v = v<<6 | uint(idx)
		}
		if dropped := v & (1<<(8*pad) - 1); dropped != 0 {
			return nil, fmt.Errorf("base64: non-zero trailing bits at offset %d", i+3-pad)
		}
		out = append(out, byte(v>>16), byte(v>>8), byte(v))
		out = out[:len(out)-pad]
	}
	return out, nil
}

func base64Index(c byte) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 26
	case c >= '0' && c <= '9':
		return int(c-'0') + 52
	case c == '+':
		return 62
	case c == '/':
		return 63
	}
	return -1
}
