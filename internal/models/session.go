package models

import (
	"time"

	"github.com/google/uuid"
)

// Session holds the single active refresh token of a user.
// One row per user: every login or refresh overwrites the token in place,
// so a value issued earlier (for example to another device) stops working.
type Session struct {
	UserID           uuid.UUID
	LastLogin        time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
