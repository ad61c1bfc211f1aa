// Package credentials persists the bearer credential and the denormalised
// user record in the local metadata table. Both values are written and
// removed in one transaction, never independently.
package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/cryptox"
	"github.com/dmitrijs2005/lifelink/internal/dbx"
)

// ErrCorrupt is returned by Load when only one of the two values is present
// or a value cannot be decoded.
var ErrCorrupt = errors.New("stored credential is corrupt")

type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
}

// NewStore returns a store over db. The token is sealed with sealer before
// it touches the disk.
func NewStore(db *sql.DB, sealer *cryptox.Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

// Load returns the persisted credential, or (nil, nil) when none is stored.
func (s *Store) Load(ctx context.Context) (*models.Credential, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	sealed, err := repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return nil, err
	}
	rawUser, err := repo.Get(ctx, common.UserStorageKey)
	if err != nil {
		return nil, err
	}

	switch {
	case sealed == nil && rawUser == nil:
		return nil, nil
	case sealed == nil || rawUser == nil:
		return nil, fmt.Errorf("%w: token and user must both be present", ErrCorrupt)
	}

	token, err := s.sealer.Open(sealed, []byte(common.TokenStorageKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var user models.UserRecord
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, fmt.Errorf("%w: user: %w", ErrCorrupt, err)
	}

	return &models.Credential{Token: string(token), User: user}, nil
}

// Save writes the token and the user record together.
func (s *Store) Save(ctx context.Context, cred models.Credential) error {
	sealed, err := s.sealer.Seal([]byte(cred.Token), []byte(common.TokenStorageKey))
	if err != nil {
		return err
	}
	rawUser, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			common.TokenStorageKey: sealed,
			common.UserStorageKey:  rawUser,
		})
	})
}

// SaveUser replaces the stored user record, leaving the token alone. It
// refuses to write a user when no token is stored.
func (s *Store) SaveUser(ctx context.Context, user models.UserRecord) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		tok, err := repo.Get(ctx, common.TokenStorageKey)
		if err != nil {
			return err
		}
		if tok == nil {
			return fmt.Errorf("save user: %w", common.ErrorNotFound)
		}
		return repo.Set(ctx, common.UserStorageKey, rawUser)
	})
}

// Clear removes both values.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.TokenStorageKey, common.UserStorageKey)
	})
}
