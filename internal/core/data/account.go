package data

import (
	"errors"

	"gorm.io/gorm"
)

// Account contains the login information of a user that signs in through a terminal.
type Account struct {
	gorm.Model

	Username string `gorm:"uniqueIndex; not null"`
	Password string `gorm:"not null"`
	Banned   bool   `gorm:"default:false"`
}

// FindAccountByUsername searches for an account with the specified username, returning the
// *Account instance if found or nil if there is no match.
func FindAccountByUsername(db *gorm.DB, username string) (*Account, error) {
	var account Account
	err := db.Where("username = ?", username).First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

// CreateAccount persists the Account record to the database.
func CreateAccount(db *gorm.DB, account *Account) error {
	return db.Create(account).Error
}

// UpdateAccount saves every field of account.
func UpdateAccount(db *gorm.DB, account *Account) error {
	return db.Save(account).Error
}

// DeleteAccount soft-deletes an Account record from the database.
func DeleteAccount(db *gorm.DB, account *Account) error {
	return db.Delete(account).Error
}

// PermanentlyDeleteAccount permanently deletes an Account record from the database.
func PermanentlyDeleteAccount(db *gorm.DB, account *Account) error {
	return db.Unscoped().Delete(account).Error
}
