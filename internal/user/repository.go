package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"dsa-tracker/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified user with a pending OTP code
func (r *Repository) Create(ctx context.Context, email, passwordHash, otpCode string, otpExpires time.Time) (*User, error) {
	dbUser := &database.User{
		Email:          email,
		PasswordHash:   passwordHash,
		IsVerified:     false,
		OTPCode:        &otpCode,
		OTPExpires:     &otpExpires,
		SolvedProblems: []database.ProgressEntry{},
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// SetOTP stores a fresh one-time code and its expiry on an unverified user
func (r *Repository) SetOTP(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("otp_code = ?", code).
		Set("otp_expires = ?", expires).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("is_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
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

// MarkVerified marks a user as verified and clears the pending OTP
func (r *Repository) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_verified = ?", true).
		Set("otp_code = ?", nil).
		Set("otp_expires = ?", nil).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark user as verified: %w", err)
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

// UpdateProgress persists the full progress overlay back onto the user row
func (r *Repository) UpdateProgress(ctx context.Context, userID uuid.UUID, entries []ProgressEntry) error {
	if entries == nil {
		entries = []ProgressEntry{}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal progress entries: %w", err)
	}

	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("solved_problems = ?", string(payload)).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
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

// RemoveSheetEntries strips a deleted sheet's entries from every user's
// overlay so no orphaned progress rows are left behind.
func (r *Repository) RemoveSheetEntries(ctx context.Context, sheetID uuid.UUID) error {
	match := fmt.Sprintf(`[{"sheet_id": %q}]`, sheetID.String())

	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("solved_problems = COALESCE((SELECT jsonb_agg(entry) FROM jsonb_array_elements(solved_problems) AS entry WHERE entry->>'sheet_id' <> ?), '[]'::jsonb)", sheetID.String()).
		Set("updated_at = NOW()").
		Where("solved_problems @> ?", match).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to remove sheet entries: %w", err)
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:             dbu.ID,
		Email:          dbu.Email,
		PasswordHash:   dbu.PasswordHash,
		IsVerified:     dbu.IsVerified,
		OTPCode:        dbu.OTPCode,
		OTPExpires:     dbu.OTPExpires,
		SolvedProblems: dbu.SolvedProblems,
		CreatedAt:      dbu.CreatedAt,
		UpdatedAt:      dbu.UpdatedAt,
	}
}
