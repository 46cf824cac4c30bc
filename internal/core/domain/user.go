package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        string    `db:"id"` // UUID
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Password  string    `db:"password"` // bcrypt hashed
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewUser(username, email, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(username),
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
