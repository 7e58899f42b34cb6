package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a time-bounded grant of authenticated access tied to one user.
// Rows are never updated in place: they are created at login/registration and
// deleted by logout, password change, or the expiry sweep.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"-" db:"token"` // Bearer credential, never echoed back in session payloads
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
