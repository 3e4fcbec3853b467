// Package tokens caches the launcher session between CLI invocations.
package tokens

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/launchserver/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/launchserver/internal/dbx"
)

var ErrNoSession = errors.New("not logged in")

const (
	keyUsername     = "username"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

type Tokens struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

type Cache struct {
	db *sql.DB
}

func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Save replaces the cached session atomically.
func (c *Cache) Save(ctx context.Context, t Tokens) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			keyUsername:     t.Username,
			keyAccessToken:  t.AccessToken,
			keyRefreshToken: t.RefreshToken,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns ErrNoSession when nothing was saved.
func (c *Cache) Load(ctx context.Context) (*Tokens, error) {
	all, err := metadata.NewSQLiteRepository(c.db).List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all[keyUsername]) == 0 || len(all[keyAccessToken]) == 0 {
		return nil, ErrNoSession
	}
	return &Tokens{
		Username:     string(all[keyUsername]),
		AccessToken:  string(all[keyAccessToken]),
		RefreshToken: string(all[keyRefreshToken]),
	}, nil
}

func (c *Cache) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(c.db).Clear(ctx)
}
