package encryption

import (
	"fmt"
	"time"
)

// GenerateTerminalPassword produces the encPassword value a terminal sends to the
// authentication backend. The identifier and password are encoded, interleaved
// and padded, then DES-CBC encrypted under a transmit key derived from
// terminalKey and clientTime, and finally Base64 encoded.
//
// The same clientTime has to travel with the request so the backend can derive
// the same transmit key.
func GenerateTerminalPassword(id, password string, clientTime time.Time, terminalKey []byte) (string, error) {
	encodedID, err := EncodeString(id)
	if err != nil {
		return "", err
	}
	encodedPassword, err := EncodeString(password)
	if err != nil {
		return "", err
	}
	plaintext := Pad(Interleave(encodedID, encodedPassword))

	transmitKey, err := DeriveTransmitKey(terminalKey, clientTime)
	if err != nil {
		return "", err
	}
	ciphertext, err := CBCEncrypt(plaintext, transmitKey)
	if err != nil {
		return "", err
	}
	return EncodeBase64(ciphertext), nil
}

// RecoverTerminalPassword is the backend side of GenerateTerminalPassword. The
// identifier travels in the clear next to encPassword, so its length is known
// and is enough to split the decrypted payload back into id and password.
func RecoverTerminalPassword(encPassword string, idLen int, clientTime time.Time, terminalKey []byte) (string, string, error) {
	transmitKey, err := DeriveTransmitKey(terminalKey, clientTime)
	if err != nil {
		return "", "", err
	}
	ciphertext, err := DecodeBase64(encPassword)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if len(ciphertext) == 0 {
		return "", "", ErrMalformedCredential
	}
	plaintext, err := CBCDecrypt(ciphertext, transmitKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	merged := Unpad(plaintext)
	if len(plaintext)-len(merged) >= BlockSize {
		return "", "", ErrMalformedCredential
	}
	encodedID, encodedPassword, err := Deinterleave(merged, idLen)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	id, err := decodeString(encodedID)
	if err != nil {
		return "", "", err
	}
	password, err := decodeString(encodedPassword)
	if err != nil {
		return "", "", err
	}
	return id, password, nil
}
