package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const getSessionByUserID = `-- name: GetSessionByUserID
SELECT user_id, last_login, refresh_token, refresh_expires_at
FROM user_sessions
WHERE user_id = $1
`

func (r *SessionRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSessionByUserID, userID)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const getSessionByUserIDAndToken = `-- name: GetSessionByUserIDAndToken
SELECT user_id, last_login, refresh_token, refresh_expires_at
FROM user_sessions
WHERE user_id = $1 AND refresh_token = $2
`

func (r *SessionRepo) GetByUserIDAndToken(ctx context.Context, userID uuid.UUID, token string) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSessionByUserIDAndToken, userID, token)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const upsertSession = `-- name: UpsertSession
INSERT INTO user_sessions (user_id, last_login, refresh_token, refresh_expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET last_login = EXCLUDED.last_login,
    refresh_token = EXCLUDED.refresh_token,
    refresh_expires_at = EXCLUDED.refresh_expires_at
RETURNING user_id, last_login, refresh_token, refresh_expires_at
`

func (r *SessionRepo) Upsert(ctx context.Context, session models.Session) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, upsertSession, session.UserID, session.LastLogin, session.RefreshToken, session.RefreshExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const rotateSession = `-- name: RotateSession
UPDATE user_sessions
SET refresh_token = $3, refresh_expires_at = $4
WHERE user_id = $1 AND refresh_token = $2
RETURNING user_id, last_login, refresh_token, refresh_expires_at
`

// Rotate swaps refresh token only if oldToken is still the stored one.
// The WHERE clause is the guard: a token that was rotated away (or never
// existed) matches no row, so the presented value can't win twice.
func (r *SessionRepo) Rotate(ctx context.Context, userID uuid.UUID, oldToken string, newToken string, expiresAt time.Time) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, rotateSession, userID, oldToken, newToken, expiresAt)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.UserID, &s.LastLogin, &s.RefreshToken, &s.RefreshExpiresAt)
	return s, err
}
