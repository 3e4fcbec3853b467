// Package store is the local identity store: users and hardware records.
//
// Implementations return common.ErrorNotFound for missing rows and wrap
// every other backend failure in common.ErrProviderUnavailable.
package store

import (
	"context"

	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
)

type Store interface {
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByUUID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// ApplyLogin writes every field of upd at once or none of them.
	ApplyLogin(ctx context.Context, id uuid.UUID, upd models.LoginUpdate) error

	HardwareByID(ctx context.Context, id int64) (*models.HardwareRecord, error)
	// BindHardware resolves a hardware record by public key, then by
	// fingerprint, creating it when absent, and connects it to the user.
	// A banned record yields common.ErrHardwareBanned and nothing is written.
	BindHardware(ctx context.Context, userID uuid.UUID, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error)
	SetHardwareBanned(ctx context.Context, id int64, banned bool) error
	UsersByHardware(ctx context.Context, id int64) ([]*models.User, error)
}
