package encryption

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeCharacter(t *testing.T) {
	tests := map[string]struct {
		c       byte
		want    byte
		wantErr bool
	}{
		"unit_separator": {c: 31, wantErr: true},
		"space":          {c: ' ', want: 0x00},
		"uppercase":      {c: 'U', want: 0x6A},
		"tilde":          {c: '~', want: 0xBC},
		"delete":         {c: 127, want: 0xBE},
		"high_bit":       {c: 128, wantErr: true},
		"nul":            {c: 0, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := EncodeCharacter(tt.c, 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeCharacter(%d) error = %v, wantErr %v", tt.c, err, tt.wantErr)
			}
			if tt.wantErr {
				var charErr *InvalidCharacterError
				if !errors.As(err, &charErr) {
					t.Fatalf("expected *InvalidCharacterError, got %T", err)
				}
				if charErr.Char != tt.c || charErr.Position != 3 {
					t.Errorf("expected error for %d at 3, got %d at %d", tt.c, charErr.Char, charErr.Position)
				}
				return
			}
			if got != tt.want {
				t.Errorf("EncodeCharacter(%d) = %#x, want %#x", tt.c, got, tt.want)
			}
			if got&1 != 0 {
				t.Errorf("expected low bit of %#x to be clear", got)
			}
		})
	}
}

func TestEncodeString(t *testing.T) {
	got, err := EncodeString("UserId")
	if err != nil {
		t.Fatalf("EncodeString() returned an unexpected error: %v", err)
	}
	if diff := cmp.Diff([]byte{0x6A, 0xA6, 0x8A, 0xA4, 0x52, 0x88}, got); diff != "" {
		t.Errorf("EncodeString() generated the wrong bytes; diff:\n%s", diff)
	}

	_, err = EncodeString("pass\tword")
	var charErr *InvalidCharacterError
	if !errors.As(err, &charErr) {
		t.Fatalf("expected *InvalidCharacterError, got %v", err)
	}
	if charErr.Char != '\t' || charErr.Position != 4 {
		t.Errorf("expected tab at position 4, got %q at %d", charErr.Char, charErr.Position)
	}

	// Multi-byte UTF-8 is rejected on its first byte.
	if _, err := EncodeString("naïve"); !errors.As(err, &charErr) || charErr.Position != 2 {
		t.Errorf("expected non-ASCII input to fail at position 2, got %v", err)
	}
}

func TestDecodeCharacter(t *testing.T) {
	for c := 32; c <= 127; c++ {
		encoded, err := EncodeCharacter(byte(c), 0)
		if err != nil {
			t.Fatalf("EncodeCharacter(%d) returned an unexpected error: %v", c, err)
		}
		decoded, err := DecodeCharacter(encoded)
		if err != nil {
			t.Fatalf("DecodeCharacter(%#x) returned an unexpected error: %v", encoded, err)
		}
		if decoded != byte(c) {
			t.Errorf("DecodeCharacter(EncodeCharacter(%d)) = %d", c, decoded)
		}
	}

	for _, b := range []byte{0x01, 0xC0, padByte} {
		if _, err := DecodeCharacter(b); !errors.Is(err, ErrMalformedCredential) {
			t.Errorf("DecodeCharacter(%#x) expected ErrMalformedCredential, got %v", b, err)
		}
	}
}
