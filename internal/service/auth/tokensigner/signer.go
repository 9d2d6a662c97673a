package tokensigner

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avelinsk/authgate/internal/models"
)

const (
	defaultAccessTokenTTL = 15 * time.Minute
	defaultSigningMethod  = "HS256"

	birthDateLayout = "2006-01-02"
)

var (
	// Signature mismatch, wrong or missing MAC algorithm, malformed token,
	// or a token without the username claim
	ErrTokenInvalid = errors.New("access token invalid")

	// Signature is fine but the token lifetime is over
	ErrTokenExpired = errors.New("access token expired")
)

// Claims carried by an access token
// Closed struct on purpose: an open claim bag would let callers smuggle
// arbitrary keys into a signed artifact
type AccessClaims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	Role      string `json:"role"`
	BirthDate string `json:"birth_date,omitempty"`
}

// Signer config with sensible defaults
type Config struct {
	// Secret key to sign access token payload
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration
}

type Signer struct {
	// Secret key to sign access token
	key string

	// JWT MAC algorithm
	alg jwt.SigningMethod

	// Access token lifetime
	accessTTL time.Duration
}

func New(cfg Config) (*Signer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %s", cfg.Alg)
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}

	return &Signer{
		key:       cfg.SecretKey,
		alg:       alg,
		accessTTL: cfg.AccessTTL,
	}, nil
}

// Issue builds a signed access token carrying the user's identity claims.
// Validity of the result is stateless: signature plus expiry, no storage.
func (s *Signer) Issue(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(s.accessTTL)

	birthDate := ""
	if user.BirthDate != nil {
		birthDate = user.BirthDate.Format(birthDateLayout)
	}

	token := jwt.NewWithClaims(
		s.alg,
		AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Username:  user.Username,
			Role:      user.Role,
			BirthDate: birthDate,
		},
	)

	signed, err := token.SignedString([]byte(s.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, MAC algorithm and expiry, in that order.
// This is the only parse mode authorization code is allowed to see.
func (s *Signer) Parse(access string) (AccessClaims, error) {
	return s.parse(access)
}

// ParseExpired verifies signature and MAC algorithm but not the lifetime.
// It exists for exactly one caller: the refresh flow, where a naturally
// expired access token still serves as proof of identity. Keep it away
// from any authorization decision.
func (s *Signer) ParseExpired(access string) (AccessClaims, error) {
	return s.parse(access, jwt.WithoutClaimsValidation())
}

func (s *Signer) parse(access string, opts ...jwt.ParserOption) (AccessClaims, error) {
	claims := &AccessClaims{}

	opts = append(opts, jwt.WithValidMethods([]string{s.alg.Alg()}))
	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(s.key), nil },
		opts...,
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return AccessClaims{}, fmt.Errorf("error while validating token. Err: %w", ErrTokenExpired)
	case err != nil:
		return AccessClaims{}, fmt.Errorf("error while parsing token. Err: %w", ErrTokenInvalid)
	case claims.Username == "":
		return AccessClaims{}, fmt.Errorf("token carries no username claim. Err: %w", ErrTokenInvalid)
	default:
		return *claims, nil
	}
}
