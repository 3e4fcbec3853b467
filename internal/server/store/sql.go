package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/dbx"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	timeout     time.Duration
}

func NewSQLStore(db *sql.DB, m repomanager.RepositoryManager, timeout time.Duration) *SQLStore {
	return &SQLStore{db: db, repomanager: m, timeout: timeout}
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// mapErr keeps taxonomy errors and hides everything else behind
// ErrProviderUnavailable.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrHardwareBanned),
		errors.Is(err, common.ErrUserExists):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
}

func (s *SQLStore) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, login)
	return u, mapErr(err)
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.repomanager.Users(s.db).GetUserByUsername(ctx, username)
	return u, mapErr(err)
}

func (s *SQLStore) UserByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.repomanager.Users(s.db).GetUserByUUID(ctx, id)
	return u, mapErr(err)
}

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	return u, mapErr(err)
}

func (s *SQLStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return mapErr(s.repomanager.Users(s.db).UpdatePassword(ctx, id, passwordHash))
}

func (s *SQLStore) ApplyLogin(ctx context.Context, id uuid.UUID, upd models.LoginUpdate) error {
	if upd.Empty() {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		if upd.GameToken != "" {
			if err := users.UpdateGameToken(ctx, id, upd.GameToken); err != nil {
				return err
			}
		}
		if upd.ExternalToken != "" {
			if err := users.UpdateExternalToken(ctx, id, upd.ExternalToken); err != nil {
				return err
			}
		}
		if upd.Roles != nil {
			return users.UpdateRoles(ctx, id, upd.Roles)
		}
		return nil
	})
	return mapErr(err)
}

func (s *SQLStore) HardwareByID(ctx context.Context, id int64) (*models.HardwareRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r, err := s.repomanager.Hardware(s.db).GetByID(ctx, id)
	return r, mapErr(err)
}

func (s *SQLStore) BindHardware(ctx context.Context, userID uuid.UUID, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rec *models.HardwareRecord
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		hw := s.repomanager.Hardware(tx)

		found, err := hw.GetByPublicKey(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			found, err = hw.GetByInfo(ctx, info)
		}
		switch {
		case errors.Is(err, common.ErrorNotFound):
			rec, err = hw.Create(ctx, info, key)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if found.Banned {
				return common.ErrHardwareBanned
			}
			if len(key) > 0 && !bytes.Equal(found.PublicKey, key) {
				if err := hw.AddPublicKey(ctx, found.ID, key); err != nil {
					return err
				}
				found.PublicKey = key
			}
			rec = found
		}

		return s.repomanager.Users(tx).SetHardware(ctx, userID, rec.ID)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return rec, nil
}

func (s *SQLStore) SetHardwareBanned(ctx context.Context, id int64, banned bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return mapErr(s.repomanager.Hardware(s.db).SetBanned(ctx, id, banned))
}

func (s *SQLStore) UsersByHardware(ctx context.Context, id int64) ([]*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	users, err := s.repomanager.Users(s.db).ListByHardware(ctx, id)
	return users, mapErr(err)
}
