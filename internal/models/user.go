package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Username     string
	PasswordHash string

	// Optional attributes set at registration and immutable after
	Role      string
	BirthDate *time.Time
}
