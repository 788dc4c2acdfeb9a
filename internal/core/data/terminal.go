package data

import (
	"errors"

	"gorm.io/gorm"
)

// Terminal is a device allowed to submit encrypted credentials. Key holds the
// hex-encoded terminal key shared with it.
type Terminal struct {
	gorm.Model

	TerminalID string `gorm:"uniqueIndex; not null"`
	Key        string `gorm:"not null"`
	Active     bool
}

// FindTerminal returns the terminal registered under terminalID or nil if there
// is no match.
func FindTerminal(db *gorm.DB, terminalID string) (*Terminal, error) {
	var terminal Terminal
	err := db.Where("terminal_id = ?", terminalID).First(&terminal).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &terminal, nil
}

// CreateTerminal persists the Terminal record to the database.
func CreateTerminal(db *gorm.DB, terminal *Terminal) error {
	return db.Create(terminal).Error
}

// UpdateTerminal saves every field of terminal.
func UpdateTerminal(db *gorm.DB, terminal *Terminal) error {
	return db.Save(terminal).Error
}

// DeleteTerminal permanently removes a terminal so its ID can be registered again.
func DeleteTerminal(db *gorm.DB, terminal *Terminal) error {
	return db.Unscoped().Delete(terminal).Error
}
