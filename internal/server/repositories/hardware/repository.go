package hardware

import (
	"context"

	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

// Repository is the hardware half of the local identity store.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.HardwareRecord, error)
	GetByPublicKey(ctx context.Context, key []byte) (*models.HardwareRecord, error)
	GetByInfo(ctx context.Context, info models.HardwareInfo) (*models.HardwareRecord, error)
	Create(ctx context.Context, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error)
	AddPublicKey(ctx context.Context, id int64, key []byte) error
	SetBanned(ctx context.Context, id int64, banned bool) error
}
