package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dsa-tracker/internal/logging"
)

var ErrTitleRequired = errors.New("title is required")

// Catalog is the persistence surface the service needs
type Catalog interface {
	Create(ctx context.Context, title, description, sheetType string, problems []Problem) (*Sheet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error)
	Update(ctx context.Context, s *Sheet) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProgressCleaner strips a deleted sheet's entries from user overlays
type ProgressCleaner interface {
	RemoveSheetEntries(ctx context.Context, sheetID uuid.UUID) error
}

// Service handles custom sheet CRUD
type Service struct {
	catalog  Catalog
	progress ProgressCleaner
	logger   *logging.Logger
}

func NewService(catalog Catalog, progress ProgressCleaner, logger *logging.Logger) *Service {
	return &Service{
		catalog:  catalog,
		progress: progress,
		logger:   logger,
	}
}

// ProblemInput is a problem supplied by the client. A zero ID means a new
// problem; known IDs are kept so existing overlay entries stay attached.
type ProblemInput struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Difficulty string    `json:"difficulty"`
	Topic      string    `json:"topic"`
}

// CreateInput is the payload for creating a custom sheet
type CreateInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Problems    []ProblemInput `json:"problems"`
}

// UpdateInput is a partial sheet update; nil fields are left untouched
type UpdateInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Problems    *[]ProblemInput `json:"problems"`
}

// Create adds a new custom sheet to the catalog
func (s *Service) Create(ctx context.Context, input CreateInput) (*Sheet, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	created, err := s.catalog.Create(ctx, title, input.Description, TypeCustom, buildProblems(input.Problems))
	if err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	return created, nil
}

// Update applies a partial update to an existing sheet
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Sheet, error) {
	existing, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		existing.Title = title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Problems != nil {
		existing.Problems = buildProblems(*input.Problems)
	}

	if err := s.catalog.Update(ctx, existing); err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			return nil, ErrDuplicateTitle
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update sheet: %w", err)
	}

	return existing, nil
}

// Delete removes a sheet and cleans up every user's overlay entries for it
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.catalog.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete sheet: %w", err)
	}

	if err := s.progress.RemoveSheetEntries(ctx, id); err != nil {
		// The catalog row is already gone; the stale entries are unreachable
		// but should not fail the request.
		s.logger.Warn("failed to clean up overlay entries for deleted sheet",
			"sheet_id", id,
			"error", err.Error(),
		)
	}

	return nil
}

// buildProblems assigns stable IDs and defaults difficulty to Easy
func buildProblems(inputs []ProblemInput) []Problem {
	problems := make([]Problem, 0, len(inputs))
	for _, in := range inputs {
		difficulty := in.Difficulty
		if !ValidDifficulty(difficulty) {
			difficulty = DifficultyEasy
		}
		id := in.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		problems = append(problems, Problem{
			ID:         id,
			Title:      in.Title,
			Link:       in.Link,
			Difficulty: difficulty,
			Topic:      in.Topic,
		})
	}
	return problems
}
