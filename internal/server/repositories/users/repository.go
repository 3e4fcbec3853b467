package users

import (
	"context"

	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the user half of the local identity store.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByUUID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateGameToken(ctx context.Context, id uuid.UUID, token string) error
	UpdateExternalToken(ctx context.Context, id uuid.UUID, token string) error
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error
	SetHardware(ctx context.Context, id uuid.UUID, hardwareID int64) error
	ListByHardware(ctx context.Context, hardwareID int64) ([]*models.User, error)
}
