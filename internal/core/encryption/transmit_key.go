package encryption

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// KeySize is the length in bytes of both the terminal key and the transmit key.
const KeySize = 8

// TerminalKey is the static secret shared between a terminal and the backend.
type TerminalKey [KeySize]byte

// ParseTerminalKey decodes a hex-encoded terminal key as it appears in
// configuration, e.g. "1C1C1C1C1C1C1C1C".
func ParseTerminalKey(s string) (TerminalKey, error) {
	var key TerminalKey
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return key, fmt.Errorf("decoding terminal key: %w", err)
	}
	if len(b) != KeySize {
		return key, InvalidKeyLengthError(len(b))
	}
	copy(key[:], b)
	return key, nil
}

func (k TerminalKey) String() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}

// DeriveTransmitKey mixes the terminal key with clientTime to produce the key
// used for a single credential:
//
//	T[0] = sec ^ K[0]    T[4] = day ^ K[4]
//	T[1] = yy  ^ K[1]    T[5] = month ^ K[5]
//	T[2] = hour ^ K[2]   T[6] = min ^ K[6]
//	T[3] = sec ^ K[3]    T[7] = day ^ K[7]
//
// The fields are read in clientTime's own location. Whether that is local time
// or UTC has to match what the backend does and is up to the caller.
func DeriveTransmitKey(terminalKey []byte, clientTime time.Time) ([]byte, error) {
	if len(terminalKey) != KeySize {
		return nil, InvalidKeyLengthError(len(terminalKey))
	}
	year, month, day := clientTime.Date()
	hour, minute, sec := clientTime.Clock()

	return []byte{
		byte(sec) ^ terminalKey[0],
		byte(year%100) ^ terminalKey[1],
		byte(hour) ^ terminalKey[2],
		byte(sec) ^ terminalKey[3],
		byte(day) ^ terminalKey[4],
		byte(month) ^ terminalKey[5],
		byte(minute) ^ terminalKey[6],
		byte(day) ^ terminalKey[7],
	}, nil
}
