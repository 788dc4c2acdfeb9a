package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/dcrodman/termcred/internal/core/data"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by the registry tables in db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindTerminal(ctx context.Context, terminalID string) (*data.Terminal, error) {
	return data.FindTerminal(s.db.WithContext(ctx), terminalID)
}

func (s *gormStore) FindAccount(ctx context.Context, username string) (*data.Account, error) {
	return data.FindAccountByUsername(s.db.WithContext(ctx), username)
}
