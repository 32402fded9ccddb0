package sheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dsa-tracker/internal/database"
)

var (
	ErrNotFound       = errors.New("sheet not found")
	ErrDuplicateTitle = errors.New("sheet title already exists")
)

// Repository handles catalog persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new sheet into the catalog
func (r *Repository) Create(ctx context.Context, title, description, sheetType string, problems []Problem) (*Sheet, error) {
	if problems == nil {
		problems = []Problem{}
	}

	dbSheet := &database.Sheet{
		Title:       title,
		Description: description,
		Type:        sheetType,
		Problems:    problems,
	}

	_, err := r.db.NewInsert().
		Model(dbSheet).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	return mapDBSheetToModel(dbSheet), nil
}

// GetByID retrieves a sheet by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error) {
	dbSheet := new(database.Sheet)
	err := r.db.NewSelect().
		Model(dbSheet).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sheet by id: %w", err)
	}

	return mapDBSheetToModel(dbSheet), nil
}

// List retrieves every sheet in the catalog
func (r *Repository) List(ctx context.Context) ([]Sheet, error) {
	var dbSheets []database.Sheet
	err := r.db.NewSelect().
		Model(&dbSheets).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	sheets := make([]Sheet, 0, len(dbSheets))
	for i := range dbSheets {
		sheets = append(sheets, *mapDBSheetToModel(&dbSheets[i]))
	}

	return sheets, nil
}

// ExistsDefault reports whether a default sheet with the given title is
// already seeded
func (r *Repository) ExistsDefault(ctx context.Context, title string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*database.Sheet)(nil)).
		Where("title = ?", title).
		Where("type = ?", TypeDefault).
		Count(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check default sheet: %w", err)
	}

	return count > 0, nil
}

// Update replaces the stored sheet's mutable fields
func (r *Repository) Update(ctx context.Context, s *Sheet) error {
	dbSheet := &database.Sheet{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Type:        s.Type,
		Problems:    s.Problems,
	}

	result, err := r.db.NewUpdate().
		Model(dbSheet).
		Column("title", "description", "problems").
		Set("updated_at = NOW()").
		WherePK().
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to update sheet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a sheet from the catalog
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Sheet)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBSheetToModel converts database model to domain model
func mapDBSheetToModel(dbs *database.Sheet) *Sheet {
	problems := dbs.Problems
	if problems == nil {
		problems = []Problem{}
	}

	return &Sheet{
		ID:          dbs.ID,
		Title:       dbs.Title,
		Description: dbs.Description,
		Type:        dbs.Type,
		Problems:    problems,
		CreatedAt:   dbs.CreatedAt,
		UpdatedAt:   dbs.UpdatedAt,
	}
}
