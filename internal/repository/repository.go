package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelinsk/authgate/internal/models"
)

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Role         string
	BirthDate    *time.Time
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Session repository interface
// A user owns at most one session row; there is nothing to append, only overwrite
type SessionRepo interface {
	// Get session by owner
	// If no session exists must return apperrors.ErrSessionNotFound
	GetByUserID(ctx context.Context, userID uuid.UUID) (models.Session, error)

	// Get session by owner and the exact refresh token it stores
	// Must return apperrors.ErrSessionNotFound on any mismatch, without
	// telling apart "no session" from "wrong token"
	GetByUserIDAndToken(ctx context.Context, userID uuid.UUID, token string) (models.Session, error)

	// Create the session on first login or overwrite it on later ones
	// Overwriting revokes whatever refresh token the row held before
	Upsert(ctx context.Context, session models.Session) (models.Session, error)

	// Replace oldToken with newToken only if oldToken is still the stored one
	// (compare-and-swap, so two concurrent refreshes can't both win)
	// Must return apperrors.ErrSessionNotFound if oldToken is not current
	Rotate(ctx context.Context, userID uuid.UUID, oldToken string, newToken string, expiresAt time.Time) (models.Session, error)
}

type PostRepo interface {
	CreatePost(ctx context.Context, title string, text string, author string) (models.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// Storage combines repositories that share one underlying connection
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	Post() PostRepo

	// Run fn within a database transaction
	// The storage passed to fn operates on the transaction connection
	InTx(ctx context.Context, fn func(Storage) error) error
}
