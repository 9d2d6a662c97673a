package tokensigner

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelinsk/authgate/internal/models"
)

func mustParseDate(value string) *time.Time {
	dt, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &dt
}

func Test_Signer(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:        uuid.New(),
		Username:  "testuser",
		Role:      "admin",
		BirthDate: mustParseDate("1990-05-20"),
	}

	newSigner := func(t *testing.T, ttl time.Duration) *Signer {
		s, err := New(Config{SecretKey: "test-secret-key", AccessTTL: ttl})
		require.NoError(t, err, "signer should be created without errors")
		return s
	}

	t.Run("new defaults", func(t *testing.T) {
		s, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err)

		require.Equal(t, "secret", s.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, s.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultSigningMethod, s.alg.Alg(), "default signing method should be set")
	})

	t.Run("new requires secret", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("issue and parse round trip", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		issued, err := s.Issue(testUser)
		require.NoError(t, err)
		require.NotEmpty(t, issued.Value)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, time.Second)

		claims, err := s.Parse(issued.Value)
		require.NoError(t, err)

		assert.Equal(t, "testuser", claims.Username)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "1990-05-20", claims.BirthDate)
		assert.NotEmpty(t, claims.ID, "token has to has jti")
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
		assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt.Time, 0)
	})

	t.Run("optional claims may be empty", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		issued, err := s.Issue(models.User{ID: uuid.New(), Username: "plain"})
		require.NoError(t, err)

		claims, err := s.Parse(issued.Value)
		require.NoError(t, err)

		assert.Equal(t, "plain", claims.Username)
		assert.Empty(t, claims.Role)
		assert.Empty(t, claims.BirthDate)
	})

	t.Run("tampered signature rejected", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		issued, err := s.Issue(testUser)
		require.NoError(t, err)

		parts := strings.Split(issued.Value, ".")
		require.Len(t, parts, 3)

		// Flip one letter of the signature
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err = s.Parse(tampered)
		require.ErrorIs(t, err, ErrTokenInvalid)

		// Relaxed mode does not relax the signature check
		_, err = s.ParseExpired(tampered)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)
		other, err := New(Config{SecretKey: "other-secret-key"})
		require.NoError(t, err)

		issued, err := other.Issue(testUser)
		require.NoError(t, err)

		_, err = s.Parse(issued.Value)
		require.ErrorIs(t, err, ErrTokenInvalid)

		_, err = s.ParseExpired(issued.Value)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		s := newSigner(t, -time.Second)

		issued, err := s.Issue(testUser)
		require.NoError(t, err)

		_, err = s.Parse(issued.Value)
		require.ErrorIs(t, err, ErrTokenExpired, "strict parse must fail on expiry")

		claims, err := s.ParseExpired(issued.Value)
		require.NoError(t, err, "relaxed parse must accept just expired token")
		assert.Equal(t, "testuser", claims.Username)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			},
			Username: "testuser",
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Parse(token)
		require.ErrorIs(t, err, ErrTokenInvalid)

		_, err = s.ParseExpired(token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("substituted MAC algorithm rejected", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		// Same key, different HMAC flavor: must not pass for HS256 signer
		foreign := jwt.NewWithClaims(jwt.SigningMethodHS384, AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			},
			Username: "testuser",
		})
		token, err := foreign.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = s.Parse(token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token without username rejected", func(t *testing.T) {
		s := newSigner(t, 15*time.Minute)

		anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		})
		token, err := anonymous.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = s.Parse(token)
		require.ErrorIs(t, err, ErrTokenInvalid)

		_, err = s.ParseExpired(token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})
}
