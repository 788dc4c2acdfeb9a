package encryption

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
)

var cmpEmptyEqualsNil = cmpopts.EquateEmpty()

// Time and key of the self-check the legacy terminals ran at startup.
var (
	referenceTime = time.Date(2021, time.January, 28, 11, 53, 17, 0, time.UTC)
	referenceKey  = []byte{0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C, 0x1C}
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}
