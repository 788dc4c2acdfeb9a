package data

import (
	"testing"
)

func TestTerminals(t *testing.T) {
	db := setUpDatabase(t)

	if found, err := FindTerminal(db, "T-100"); err != nil || found != nil {
		t.Fatalf("expected no terminal, got %v, %v", found, err)
	}

	terminal := &Terminal{TerminalID: "T-100", Key: "1C1C1C1C1C1C1C1C", Active: true}
	if err := CreateTerminal(db, terminal); err != nil {
		t.Fatalf("CreateTerminal() returned an unexpected error: %v", err)
	}
	if err := CreateTerminal(db, &Terminal{TerminalID: "T-100", Key: "00"}); err == nil {
		t.Errorf("expected a duplicate terminal ID to be rejected")
	}

	found, err := FindTerminal(db, "T-100")
	if err != nil {
		t.Fatalf("FindTerminal() returned an unexpected error: %v", err)
	}
	if found == nil || found.Key != terminal.Key || !found.Active || found.ID != terminal.ID {
		t.Fatalf("FindTerminal() returned %+v, want %+v", found, terminal)
	}

	found.Active = false
	if err := UpdateTerminal(db, found); err != nil {
		t.Fatalf("UpdateTerminal() returned an unexpected error: %v", err)
	}
	if disabled, _ := FindTerminal(db, "T-100"); disabled == nil || disabled.Active {
		t.Fatalf("expected the terminal to be stored as inactive, got %+v", disabled)
	}

	if err := DeleteTerminal(db, found); err != nil {
		t.Fatalf("DeleteTerminal() returned an unexpected error: %v", err)
	}
	if found, _ := FindTerminal(db, "T-100"); found != nil {
		t.Errorf("expected the terminal to be deleted")
	}
	if err := CreateTerminal(db, &Terminal{TerminalID: "T-100", Key: "1C1C1C1C1C1C1C1C"}); err != nil {
		t.Errorf("expected the terminal ID to be reusable after delete, got %v", err)
	}
}
