// Package hwid enforces hardware bans at session creation and binds client
// hardware reports to users.
package hwid

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
)

// Proof is the hardware-report payload a client sends.
type Proof struct {
	PublicKey []byte
	Info      models.HardwareInfo
}

// Store is the subset of the identity store the guard needs.
type Store interface {
	HardwareByID(ctx context.Context, id int64) (*models.HardwareRecord, error)
	BindHardware(ctx context.Context, userID uuid.UUID, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error)
}

type Guard struct {
	store   Store
	enabled bool
	logger  logging.Logger
}

func NewGuard(store Store, enabled bool, logger logging.Logger) *Guard {
	return &Guard{store: store, enabled: enabled, logger: logger}
}

func (g *Guard) Enabled() bool { return g.enabled }

// Check fails with common.ErrHardwareBanned when the user's bound hardware
// record is banned. Users without a record pass.
func (g *Guard) Check(ctx context.Context, user *models.User) error {
	if !g.enabled || user.HardwareID == nil {
		return nil
	}

	rec, err := g.store.HardwareByID(ctx, *user.HardwareID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	if rec.Banned {
		g.logger.Warn(ctx, "banned hardware rejected", "username", user.Username, "hwid", rec.ID)
		return common.ErrHardwareBanned
	}
	return nil
}

// Bind resolves or creates the hardware record described by proof and
// connects it to user. It is never called implicitly by authorization.
func (g *Guard) Bind(ctx context.Context, user *models.User, proof Proof) (*models.HardwareRecord, error) {
	if !g.enabled {
		return nil, fmt.Errorf("%w: hardware tracking disabled", common.ErrProviderUnavailable)
	}

	rec, err := g.store.BindHardware(ctx, user.ID, proof.Info, proof.PublicKey)
	if err != nil {
		if errors.Is(err, common.ErrHardwareBanned) {
			g.logger.Warn(ctx, "banned hardware report", "username", user.Username)
			return nil, err
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		if errors.Is(err, common.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	id := rec.ID
	user.HardwareID = &id
	g.logger.Info(ctx, "hardware bound", "username", user.Username, "hwid", rec.ID)
	return rec, nil
}
