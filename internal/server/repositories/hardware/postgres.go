// Package hardware stores machine fingerprints and their ban flags.
package hardware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/dbx"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

const hardwareColumns = `id, bitness, total_memory, logical_processors, physical_processors,
		processor_max_freq, battery, hw_disk_id, display_id, baseboard_serial_number,
		graphic_card, public_key, banned`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanRecord(row *sql.Row) (*models.HardwareRecord, error) {
	var r models.HardwareRecord
	err := row.Scan(&r.ID, &r.Info.Bitness, &r.Info.TotalMemory, &r.Info.LogicalProcessors,
		&r.Info.PhysicalProcessors, &r.Info.ProcessorMaxFreq, &r.Info.Battery, &r.Info.HwDiskID,
		&r.Info.DisplayID, &r.Info.BaseboardSerialNumber, &r.Info.GraphicCard, &r.PublicKey, &r.Banned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &r, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.HardwareRecord, error) {
	return scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+hardwareColumns+` FROM hardware WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByPublicKey(ctx context.Context, key []byte) (*models.HardwareRecord, error) {
	if len(key) == 0 {
		return nil, common.ErrorNotFound
	}
	return scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+hardwareColumns+` FROM hardware WHERE public_key = $1 LIMIT 1`, key))
}

// GetByInfo matches on the stable identifiers of the fingerprint: the disk
// id, or the baseboard serial when the disk id is absent.
func (r *PostgresRepository) GetByInfo(ctx context.Context, info models.HardwareInfo) (*models.HardwareRecord, error) {
	if info.HwDiskID == "" && info.BaseboardSerialNumber == "" {
		return nil, common.ErrorNotFound
	}
	return scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+hardwareColumns+` FROM hardware
		 WHERE ($1 <> '' AND hw_disk_id = $1) OR ($2 <> '' AND baseboard_serial_number = $2)
		 ORDER BY id LIMIT 1`,
		info.HwDiskID, info.BaseboardSerialNumber))
}

func (r *PostgresRepository) Create(ctx context.Context, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error) {
	query :=
		`INSERT INTO hardware (bitness, total_memory, logical_processors, physical_processors,
		 processor_max_freq, battery, hw_disk_id, display_id, baseboard_serial_number, graphic_card, public_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id
		 `

	rec := &models.HardwareRecord{Info: info, PublicKey: key}
	err := r.db.QueryRowContext(ctx, query,
		info.Bitness, info.TotalMemory, info.LogicalProcessors, info.PhysicalProcessors,
		info.ProcessorMaxFreq, info.Battery, info.HwDiskID, info.DisplayID,
		info.BaseboardSerialNumber, info.GraphicCard, key,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddPublicKey(ctx context.Context, id int64, key []byte) error {
	return r.update(ctx, `UPDATE hardware SET public_key = $2 WHERE id = $1`, id, key)
}

func (r *PostgresRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	return r.update(ctx, `UPDATE hardware SET banned = $2 WHERE id = $1`, id, banned)
}
