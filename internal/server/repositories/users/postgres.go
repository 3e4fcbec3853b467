package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/dbx"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const userColumns = `id, username, password_hash, totp_secret, roles, hwid_id, game_token, external_token, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u        models.User
		totp     sql.NullString
		roles    string
		hwid     sql.NullInt64
		game     sql.NullString
		external sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &totp, &roles, &hwid, &game, &external, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.TOTPSecret = totp.String
	u.Roles = models.SplitRoles(roles)
	if hwid.Valid {
		id := hwid.Int64
		u.HardwareID = &id
	}
	u.GameToken = game.String
	u.ExternalToken = external.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts user. A non-nil user.ID is kept so identities confirmed by
// a remote service can be stored under their external UUID.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, password_hash, totp_secret, roles)
		 VALUES (COALESCE($1, gen_random_uuid()), $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	id := uuid.NullUUID{UUID: user.ID, Valid: user.ID != uuid.Nil}
	err := r.db.QueryRowContext(ctx, query,
		id, user.Username, user.PasswordHash, nullString(user.TOTPSecret), models.JoinRoles(user.Roles),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", common.ErrUserExists, user.Username)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetUserByLogin matches the login case-insensitively.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, login)
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresRepository) GetUserByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
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

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) UpdateGameToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.exec(ctx, `UPDATE users SET game_token = $2 WHERE id = $1`, id, nullString(token))
}

func (r *PostgresRepository) UpdateExternalToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.exec(ctx, `UPDATE users SET external_token = $2 WHERE id = $1`, id, nullString(token))
}

func (r *PostgresRepository) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	return r.exec(ctx, `UPDATE users SET roles = $2 WHERE id = $1`, id, models.JoinRoles(roles))
}

func (r *PostgresRepository) SetHardware(ctx context.Context, id uuid.UUID, hardwareID int64) error {
	return r.exec(ctx, `UPDATE users SET hwid_id = $2 WHERE id = $1`, id, hardwareID)
}

func (r *PostgresRepository) ListByHardware(ctx context.Context, hardwareID int64) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE hwid_id = $1 ORDER BY username`, hardwareID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
