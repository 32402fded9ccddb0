package user

import (
	"time"

	"github.com/google/uuid"

	"dsa-tracker/internal/database"
)

// ProgressEntry statuses.
const (
	StatusSolved   = "solved"
	StatusUnsolved = "unsolved"
)

// ProgressEntry is one user's state for one problem in one sheet.
// The stored shape is shared with the persistence layer.
type ProgressEntry = database.ProgressEntry

type User struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"` // Never expose password hash in JSON
	IsVerified     bool            `json:"is_verified"`
	OTPCode        *string         `json:"-"`
	OTPExpires     *time.Time      `json:"-"`
	SolvedProblems []ProgressEntry `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
