package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hwCols = []string{"id", "bitness", "total_memory", "logical_processors", "physical_processors",
	"processor_max_freq", "battery", "hw_disk_id", "display_id", "baseboard_serial_number",
	"graphic_card", "public_key", "banned"}

func newSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db, repomanager.NewPostgresRepositoryManager(), time.Second), mock
}

func TestSQLStore_UserByLogin_Errors(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectQuery(`FROM users WHERE LOWER`).WillReturnError(sql.ErrNoRows)
	_, err := s.UserByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(`FROM users WHERE LOWER`).WillReturnError(errors.New("conn reset"))
	_, err = s.UserByLogin(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
	assert.Equal(t, common.CodeProviderUnavailable, common.Code(err))
}

func TestSQLStore_BindHardware_Creates(t *testing.T) {
	s, mock := newSQLStore(t)
	userID := uuid.New()
	info := models.HardwareInfo{HwDiskID: "disk-1"}

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE public_key = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`hw_disk_id = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO hardware`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(`UPDATE users SET hwid_id = \$2 WHERE id = \$1`).
		WithArgs(userID, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := s.BindHardware(context.Background(), userID, info, []byte("pk"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_BindHardware_BannedWritesNothing(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE public_key = \$1`).
		WillReturnRows(sqlmock.NewRows(hwCols).
			AddRow(int64(3), 64, int64(0), 0, 0, int64(0), false, "disk-1", nil, "", "", []byte("old"), true))
	mock.ExpectRollback()

	_, err := s.BindHardware(context.Background(), uuid.New(), models.HardwareInfo{}, []byte("old"))
	assert.ErrorIs(t, err, common.ErrHardwareBanned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_BindHardware_AddsKeyToFingerprintMatch(t *testing.T) {
	s, mock := newSQLStore(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE public_key = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`hw_disk_id = \$1`).
		WillReturnRows(sqlmock.NewRows(hwCols).
			AddRow(int64(8), 64, int64(0), 0, 0, int64(0), false, "disk-1", nil, "", "", nil, false))
	mock.ExpectExec(`UPDATE hardware SET public_key`).
		WithArgs(int64(8), []byte("new")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET hwid_id`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := s.BindHardware(context.Background(), userID, models.HardwareInfo{HwDiskID: "disk-1"}, []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), rec.PublicKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetHardwareBanned(t *testing.T) {
	s, mock := newSQLStore(t)
	mock.ExpectExec(`UPDATE hardware SET banned`).
		WithArgs(int64(2), true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetHardwareBanned(context.Background(), 2, true))
}

func TestSQLStore_ApplyLogin_OneTransaction(t *testing.T) {
	s, mock := newSQLStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET game_token`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET external_token`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET roles`).
		WithArgs(id, "player,vip").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.ApplyLogin(context.Background(), id, models.LoginUpdate{
		GameToken:     "g",
		ExternalToken: "x",
		Roles:         []string{"player", "vip"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ApplyLogin_RollsBack(t *testing.T) {
	s, mock := newSQLStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET game_token`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET external_token`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := s.ApplyLogin(context.Background(), uuid.New(), models.LoginUpdate{GameToken: "g", ExternalToken: "x"})
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ApplyLogin_EmptyIsNoop(t *testing.T) {
	s, mock := newSQLStore(t)
	require.NoError(t, s.ApplyLogin(context.Background(), uuid.New(), models.LoginUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}
