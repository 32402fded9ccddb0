package sheet

import (
	"time"

	"github.com/google/uuid"

	"dsa-tracker/internal/database"
)

// Sheet types.
const (
	TypeDefault = "default"
	TypeCustom  = "custom"
)

// Problem difficulties.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Problem is one catalog entry within a sheet. The stored shape is
// shared with the persistence layer.
type Problem = database.Problem

type Sheet struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Problems    []Problem `json:"problems"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidDifficulty reports whether d is one of the known difficulty levels
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}
