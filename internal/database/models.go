package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Problem is a subdocument of a sheet's problems JSONB column.
// IDs are assigned server-side and stay stable across reorders.
type Problem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Difficulty string    `json:"difficulty"`
	Topic      string    `json:"topic"`
}

// ProgressEntry is a subdocument of a user's solved_problems JSONB column.
// At most one entry exists per (sheet_id, problem_id) pair.
type ProgressEntry struct {
	SheetID    uuid.UUID  `json:"sheet_id"`
	ProblemID  uuid.UUID  `json:"problem_id"`
	Status     string     `json:"status"`
	IsStarred  bool       `json:"is_starred"`
	Notes      string     `json:"notes"`
	DateSolved *time.Time `json:"date_solved,omitempty"`
}

type Sheet struct {
	bun.BaseModel `bun:"table:sheets,alias:s"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title       string    `bun:"title,notnull,unique"`
	Description string    `bun:"description"`
	Type        string    `bun:"type,notnull"`
	Problems    []Problem `bun:"problems,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email          string          `bun:"email,notnull,unique"`
	PasswordHash   string          `bun:"password_hash,notnull"`
	IsVerified     bool            `bun:"is_verified,notnull,default:false"`
	OTPCode        *string         `bun:"otp_code"`
	OTPExpires     *time.Time      `bun:"otp_expires"`
	SolvedProblems []ProgressEntry `bun:"solved_problems,type:jsonb"`
	CreatedAt      time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}
