package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/models"
	"github.com/avelinsk/authgate/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (username, password_hash, role, birth_date)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, username, password_hash, role, birth_date
`

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, params.Username, params.PasswordHash, params.Role, params.BirthDate)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
	}

	return user, err
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, username, password_hash, role, birth_date
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT id, created_at, username, password_hash, role, birth_date
FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.PasswordHash, &u.Role, &u.BirthDate)
	return u, err
}
