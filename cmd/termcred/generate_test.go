package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dcrodman/termcred/internal/core/encryption"
)

func Test_traceStages(t *testing.T) {
	key, err := encryption.ParseTerminalKey("1C1C1C1C1C1C1C1C")
	if err != nil {
		t.Fatalf("ParseTerminalKey() returned an unexpected error: %v", err)
	}
	clientTime := time.Date(2021, time.January, 28, 11, 53, 17, 0, time.UTC)

	got, err := traceStages("UserId", "Password", clientTime, key)
	if err != nil {
		t.Fatalf("traceStages() returned an unexpected error: %v", err)
	}

	if got.EncPassword != "JdidvOxahyWS5knbDUxI8g==" {
		t.Errorf("EncPassword = %s", got.EncPassword)
	}
	if diff := cmp.Diff([]byte{0x0d, 0x09, 0x17, 0x0d, 0x00, 0x1d, 0x29, 0x00}, got.TransmitKey); diff != "" {
		t.Errorf("TransmitKey is wrong; diff:\n%s", diff)
	}
	if len(got.Padded) != 16 || len(got.Interleaved) != 14 {
		t.Errorf("expected 14 interleaved bytes padded to 16, got %d and %d", len(got.Interleaved), len(got.Padded))
	}
	if got.ClientTime != "2021-01-28T11:53:17Z" {
		t.Errorf("ClientTime = %s", got.ClientTime)
	}

	if _, err := traceStages("User\x00", "Password", clientTime, key); err == nil {
		t.Errorf("expected an error for an invalid identifier")
	}
}

func TestGenerateCommand(t *testing.T) {
	ConfigFlag = t.TempDir()
	IDFlag, PasswordFlag = "UserId", "Password"
	TimeFlag, KeyFlag = "2021-01-28T11:53:17Z", "1C1C1C1C1C1C1C1C"
	JSONFlag, TerminalFlag = false, ""

	var out bytes.Buffer
	generateCmd.SetOut(&out)
	if err := GenerateCommand(generateCmd, nil); err != nil {
		t.Fatalf("GenerateCommand() returned an unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "JdidvOxahyWS5knbDUxI8g==" {
		t.Errorf("GenerateCommand() printed %q", got)
	}

	out.Reset()
	JSONFlag, TerminalFlag = true, "T-1"
	if err := GenerateCommand(generateCmd, nil); err != nil {
		t.Fatalf("GenerateCommand() returned an unexpected error: %v", err)
	}
	for _, want := range []string{`"encPassword": "JdidvOxahyWS5knbDUxI8g=="`, `"terminalId": "T-1"`, `"clientTime": "2021-01-28T11:53:17Z"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %s in output:\n%s", want, out.String())
		}
	}

	KeyFlag = ""
	if err := GenerateCommand(generateCmd, nil); err == nil {
		t.Errorf("expected an error without a terminal key")
	}
}
