package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"dsa-tracker/internal/sheet"
	"dsa-tracker/internal/user"
)

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrInvalidProblemIdx = errors.New("invalid problem index")
)

// SheetStore is the catalog surface the service reads from
type SheetStore interface {
	List(ctx context.Context) ([]sheet.Sheet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*sheet.Sheet, error)
}

// UserStore is the overlay surface the service reads and writes
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateProgress(ctx context.Context, userID uuid.UUID, entries []user.ProgressEntry) error
}

// Service computes per-user progress over the shared catalog
type Service struct {
	sheets SheetStore
	users  UserStore
	now    func() time.Time
}

func NewService(sheets SheetStore, users UserStore) *Service {
	return &Service{
		sheets: sheets,
		users:  users,
		now:    time.Now,
	}
}

// SheetSummary is one row of the sheet listing: catalog metadata plus the
// requesting user's solve percentage, without problem bodies.
type SheetSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	ProblemsCount int       `json:"problemsCount"`
	Progress      int       `json:"progress"`
}

// ProblemView is a catalog problem merged with the user's overlay state
type ProblemView struct {
	Index      int       `json:"index"`
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Difficulty string    `json:"difficulty"`
	Topic      string    `json:"topic"`
	Solved     bool      `json:"solved"`
	IsStarred  bool      `json:"isStarred"`
	Notes      string    `json:"notes"`
}

// SheetDetail is a sheet with its problems projected through the overlay
type SheetDetail struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        string        `json:"type"`
	Problems    []ProblemView `json:"problems"`
}

// ToggleInput carries the optional mutations for one problem; nil fields
// are left untouched.
type ToggleInput struct {
	ProblemIndex int     `json:"problemIndex"`
	Solved       *bool   `json:"solved"`
	Star         *bool   `json:"star"`
	Note         *string `json:"note"`
}

// ActivityReport is a sparse day-to-count histogram over the trailing year
type ActivityReport struct {
	Start  string         `json:"start"`
	End    string         `json:"end"`
	Counts map[string]int `json:"counts"`
}

type entryKey struct {
	sheetID   uuid.UUID
	problemID uuid.UUID
}

// ListSheets returns every sheet with the user's solve percentage
func (s *Service) ListSheets(ctx context.Context, userID uuid.UUID) ([]SheetSummary, error) {
	sheets, err := s.sheets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	solvedBySheet := make(map[uuid.UUID]int)
	for _, entry := range u.SolvedProblems {
		if entry.Status == user.StatusSolved {
			solvedBySheet[entry.SheetID]++
		}
	}

	summaries := make([]SheetSummary, 0, len(sheets))
	for _, sh := range sheets {
		total := len(sh.Problems)
		summaries = append(summaries, SheetSummary{
			ID:            sh.ID,
			Title:         sh.Title,
			Description:   sh.Description,
			Type:          sh.Type,
			ProblemsCount: total,
			Progress:      progressPercent(solvedBySheet[sh.ID], total),
		})
	}

	return summaries, nil
}

// GetSheet returns a sheet's problems in catalog order, each merged with
// the user's overlay entry or defaults when none exists
func (s *Service) GetSheet(ctx context.Context, userID, sheetID uuid.UUID) (*SheetDetail, error) {
	sh, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, sheet.ErrNotFound) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	overlay := make(map[entryKey]user.ProgressEntry)
	for _, entry := range u.SolvedProblems {
		if entry.SheetID == sh.ID {
			overlay[entryKey{entry.SheetID, entry.ProblemID}] = entry
		}
	}

	problems := make([]ProblemView, 0, len(sh.Problems))
	for idx, p := range sh.Problems {
		view := ProblemView{
			Index:      idx,
			ID:         p.ID,
			Title:      p.Title,
			Link:       p.Link,
			Difficulty: p.Difficulty,
			Topic:      p.Topic,
		}
		if entry, ok := overlay[entryKey{sh.ID, p.ID}]; ok {
			view.Solved = entry.Status == user.StatusSolved
			view.IsStarred = entry.IsStarred
			view.Notes = entry.Notes
		}
		problems = append(problems, view)
	}

	return &SheetDetail{
		ID:          sh.ID,
		Title:       sh.Title,
		Description: sh.Description,
		Type:        sh.Type,
		Problems:    problems,
	}, nil
}

// Toggle applies the fields present in the input to the user's entry for
// the problem at the given catalog position, creating the entry on first
// touch, and writes the whole overlay back.
func (s *Service) Toggle(ctx context.Context, userID, sheetID uuid.UUID, input ToggleInput) error {
	sh, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, sheet.ErrNotFound) {
			return ErrSheetNotFound
		}
		return fmt.Errorf("failed to load sheet: %w", err)
	}

	if input.ProblemIndex < 0 || input.ProblemIndex >= len(sh.Problems) {
		return ErrInvalidProblemIdx
	}
	problem := sh.Problems[input.ProblemIndex]

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	entries := u.SolvedProblems
	key := entryKey{sh.ID, problem.ID}

	pos := -1
	for i := range entries {
		if (entryKey{entries[i].SheetID, entries[i].ProblemID}) == key {
			pos = i
			break
		}
	}
	if pos == -1 {
		entries = append(entries, user.ProgressEntry{
			SheetID:   sh.ID,
			ProblemID: problem.ID,
			Status:    user.StatusUnsolved,
		})
		pos = len(entries) - 1
	}

	if input.Solved != nil {
		if *input.Solved {
			now := s.now().UTC()
			entries[pos].Status = user.StatusSolved
			entries[pos].DateSolved = &now
		} else {
			entries[pos].Status = user.StatusUnsolved
			entries[pos].DateSolved = nil
		}
	}
	if input.Star != nil {
		entries[pos].IsStarred = *input.Star
	}
	if input.Note != nil {
		entries[pos].Notes = *input.Note
	}

	if err := s.users.UpdateProgress(ctx, userID, entries); err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}

	return nil
}

// Activity buckets the user's solves of the trailing 365 days by UTC
// calendar day for heatmap rendering
func (s *Service) Activity(ctx context.Context, userID uuid.UUID) (*ActivityReport, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := s.now().UTC()
	start := now.AddDate(0, 0, -364)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	counts := make(map[string]int)
	for _, entry := range u.SolvedProblems {
		if entry.Status != user.StatusSolved || entry.DateSolved == nil {
			continue
		}
		d := entry.DateSolved.UTC()
		if d.Before(startDay) || d.After(now) {
			continue
		}
		counts[d.Format("2006-01-02")]++
	}

	return &ActivityReport{
		Start:  startDay.Format("2006-01-02"),
		End:    now.Format("2006-01-02"),
		Counts: counts,
	}, nil
}

// progressPercent is round(100 * solved / total); 0 when the sheet is empty
func progressPercent(solved, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(solved) * 100 / float64(total)))
}
