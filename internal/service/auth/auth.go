package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/models"
	"github.com/avelinsk/authgate/internal/repository"
	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
)

const defaultRefreshTokenTTL = 720 * time.Hour

// Structurally valid bcrypt digest that matches no password.
// Login compares against it when the username is unknown, so a miss
// costs the same as a wrong password and usernames can't be probed.
const unknownUserHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Config struct {
	// Hasher to use during registration or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Refresh token lifetime
	// If not set than default is used
	RefreshTokenTTL time.Duration
}

type RegisterParams struct {
	Username  string
	Password  string
	Role      string
	BirthDate *time.Time
}

// Auth service: register, login and refresh-rotation flows
type AuthService struct {
	signer     *tokensigner.Signer
	hasher     PasswordHasher
	refreshTTL time.Duration
	storage    repository.Storage
}

func NewService(cfg Config, signer *tokensigner.Signer, storage repository.Storage) (*AuthService, error) {
	if signer == nil || storage == nil {
		return nil, errors.New("signer and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}

	return &AuthService{
		signer:     signer,
		hasher:     hasher,
		refreshTTL: cfg.RefreshTokenTTL,
		storage:    storage,
	}, nil
}

// Register creates the user and nothing else: no tokens, no session.
// The caller logs in afterwards to get a pair.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Username:     params.Username,
		PasswordHash: hash,
		Role:         params.Role,
		BirthDate:    params.BirthDate,
	})
	if err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies the password and issues a fresh token pair.
// Upserting the session revokes any refresh token the user held before:
// one live session per user, a new login kicks other devices out.
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(unknownUserHash, password)
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, fmt.Errorf("error while loading user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, s.storage, user, time.Now().Truncate(time.Second))
}

// Refresh trades an expired (or still valid) access token plus the current
// refresh token for a brand new pair. The presented refresh token is spent
// by the rotation whether or not the caller ever uses the new one.
func (s *AuthService) Refresh(ctx context.Context, access string, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	// Expiry deliberately not checked here: a just-expired access token is
	// the expected input. Signature and algorithm are still enforced.
	claims, err := s.signer.ParseExpired(access)
	if err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	user, err := s.storage.User().GetUserByUsername(ctx, claims.Username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, fmt.Errorf("error while loading user. Err: %w", err)
	}

	now := time.Now().Truncate(time.Second)

	// Lookup, expiry check and rotation share one transaction, and the
	// rotation itself is a compare-and-swap on the old token. A failed
	// refresh leaves the session row untouched.
	err = s.storage.InTx(ctx, func(store repository.Storage) error {
		session, err := store.Session().GetByUserIDAndToken(ctx, user.ID, refresh)
		if err != nil {
			return err
		}

		if !session.RefreshExpiresAt.After(now) {
			return apperrors.ErrRefreshTokenExpired
		}

		newRefresh, err := NewRefreshToken()
		if err != nil {
			return err
		}

		newAccess, err := s.signer.Issue(user)
		if err != nil {
			return err
		}

		refreshExpiresAt := now.Add(s.refreshTTL)
		if _, err := store.Session().Rotate(ctx, user.ID, refresh, newRefresh, refreshExpiresAt); err != nil {
			return err
		}

		pair = models.TokenPair{
			Access:  newAccess,
			Refresh: models.IssuedToken{Value: newRefresh, ExpiresAt: refreshExpiresAt},
		}
		return nil
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

func (s *AuthService) issuePair(ctx context.Context, store repository.Storage, user models.User, now time.Time) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.signer.Issue(user)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := NewRefreshToken()
	if err != nil {
		return pair, err
	}

	refreshExpiresAt := now.Add(s.refreshTTL)
	_, err = store.Session().Upsert(ctx, models.Session{
		UserID:           user.ID,
		LastLogin:        now,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving session. Err: %w", err)
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: refreshExpiresAt},
	}, nil
}
