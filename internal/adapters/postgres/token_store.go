// Package postgres provides a Postgres-backed token cell for the UI server.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/target/interview-ui/internal/adapters/jwtclaims"
)

// ErrInvalidBrowserID is returned when the browser id is not a UUID.
var ErrInvalidBrowserID = errors.New("browser id must be a uuid")

// TokenStore persists one browser's token in the ui_tokens table.
type TokenStore struct {
	db        *sql.DB
	browserID uuid.UUID
}

// NewTokenStore binds a token cell to browserID.
func NewTokenStore(db *sql.DB, browserID string) (*TokenStore, error) {
	id, err := uuid.Parse(browserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBrowserID, err)
	}
	return &TokenStore{db: db, browserID: id}, nil
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM ui_tokens WHERE browser_id = $1`, s.browserID,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	var expiresAt *time.Time
	if exp, ok := jwtclaims.ExpiresAt(token); ok {
		expiresAt = &exp
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ui_tokens (browser_id, token, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (browser_id) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		s.browserID, token, expiresAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ui_tokens WHERE browser_id = $1`, s.browserID); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// PurgeExpired deletes cells whose token expired before now. Restore already
// erases expired cells lazily; this only reclaims rows of browsers that never return.
func PurgeExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM ui_tokens WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return n, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedTable:
			return fmt.Errorf("save token: ui_tokens table missing, run migrations: %w", err)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("save token: rejected by constraint %s: %w", pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("save token: %w", err)
}
