package encryption

import (
	"errors"
	"strconv"
)

var (
	// ErrUnalignedInput is returned by the CBC functions when the input is not a
	// whole number of 8-byte blocks.
	ErrUnalignedInput = errors.New("encryption: input length is not a multiple of the block size")
	// ErrMalformedCredential is returned when an encrypted credential string cannot
	// be decoded back into an identifier and password.
	ErrMalformedCredential = errors.New("encryption: malformed terminal credential")
)

// InvalidCharacterError reports a character outside of the printable ASCII range
// accepted by the terminal encoding.
type InvalidCharacterError struct {
	Char     byte
	Position int
}

func (e *InvalidCharacterError) Error() string {
	return "encryption: invalid character " + strconv.QuoteRuneToASCII(rune(e.Char)) +
		" (0x" + strconv.FormatUint(uint64(e.Char), 16) + ") at position " + strconv.Itoa(e.Position)
}

// InvalidKeyLengthError is returned when a terminal or transmit key is not exactly
// 8 bytes long. The value is the length that was supplied.
type InvalidKeyLengthError int

func (k InvalidKeyLengthError) Error() string {
	return "encryption: invalid key size " + strconv.Itoa(int(k))
}
