package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID               uuid.UUID  `json:"id" db:"user_id"`               // Primary key
	Username             string     `json:"username" db:"username"`        // Unique username, stored lower-cased
	Email                string     `json:"email" db:"email"`              // Unique email, stored lower-cased
	PasswordHash         string     `json:"-" db:"password_hash"`          // Hashed password, never serialized
	PasswordResetCode    *string    `json:"-" db:"password_reset_code"`    // Pending 6-digit reset code, nil when no reset is pending
	PasswordResetExpires *time.Time `json:"-" db:"password_reset_expires"` // Reset code expiry, set and cleared together with the code
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`    // Creation timestamp
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`    // Last update timestamp
}

// User is the public view of a user record, safe to return to callers.
type User struct {
	UserID    uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public converts a database record to its public view.
func (u *UserDB) Public() *User {
	return &User{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
