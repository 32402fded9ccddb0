package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"dsa-tracker/internal/sheet"
	"dsa-tracker/internal/user"
)

type fakeSheetStore struct {
	sheets []sheet.Sheet
}

func (f *fakeSheetStore) List(ctx context.Context) ([]sheet.Sheet, error) {
	return f.sheets, nil
}

func (f *fakeSheetStore) GetByID(ctx context.Context, id uuid.UUID) (*sheet.Sheet, error) {
	for i := range f.sheets {
		if f.sheets[i].ID == id {
			return &f.sheets[i], nil
		}
	}
	return nil, sheet.ErrNotFound
}

type fakeUserStore struct {
	user *user.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, user.ErrNotFound
	}
	cp := *f.user
	cp.SolvedProblems = append([]user.ProgressEntry(nil), f.user.SolvedProblems...)
	return &cp, nil
}

func (f *fakeUserStore) UpdateProgress(ctx context.Context, userID uuid.UUID, entries []user.ProgressEntry) error {
	if f.user == nil || f.user.ID != userID {
		return user.ErrNotFound
	}
	f.user.SolvedProblems = entries
	return nil
}

func newTestSheet(title string, problemCount int) sheet.Sheet {
	problems := make([]sheet.Problem, 0, problemCount)
	for i := 0; i < problemCount; i++ {
		problems = append(problems, sheet.Problem{
			ID:         uuid.New(),
			Title:      "p",
			Link:       "https://example.com",
			Difficulty: sheet.DifficultyEasy,
			Topic:      "Array",
		})
	}
	return sheet.Sheet{
		ID:       uuid.New(),
		Title:    title,
		Type:     sheet.TypeDefault,
		Problems: problems,
	}
}

func newTestService(sheets ...sheet.Sheet) (*Service, *fakeUserStore, uuid.UUID) {
	users := &fakeUserStore{user: &user.User{ID: uuid.New(), SolvedProblems: []user.ProgressEntry{}}}
	svc := NewService(&fakeSheetStore{sheets: sheets}, users)
	return svc, users, users.user.ID
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestListSheetsEmptySheetHasZeroProgress(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Empty", 0))

	summaries, err := svc.ListSheets(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Progress != 0 {
		t.Fatalf("expected progress 0 for empty sheet, got %d", summaries[0].Progress)
	}
	if summaries[0].ProblemsCount != 0 {
		t.Fatalf("expected problemsCount 0, got %d", summaries[0].ProblemsCount)
	}
}

func TestListSheetsRoundsProgress(t *testing.T) {
	// 1 of 3 solved: round(100/3) = 33
	sh := newTestSheet("Blind 75", 3)
	svc, users, userID := newTestService(sh)

	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 0, Solved: boolPtr(true)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}

	summaries, err := svc.ListSheets(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summaries[0].Progress != 33 {
		t.Fatalf("expected progress 33, got %d", summaries[0].Progress)
	}

	// solving a second gives round(200/3) = 67
	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 1, Solved: boolPtr(true)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	summaries, err = svc.ListSheets(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summaries[0].Progress != 67 {
		t.Fatalf("expected progress 67, got %d", summaries[0].Progress)
	}
	if len(users.user.SolvedProblems) != 2 {
		t.Fatalf("expected 2 overlay entries, got %d", len(users.user.SolvedProblems))
	}
}

func TestToggleSolveUnsolveClearsDateSolved(t *testing.T) {
	sh := newTestSheet("Sheet", 1)
	svc, users, userID := newTestService(sh)

	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 0, Solved: boolPtr(true)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	entry := users.user.SolvedProblems[0]
	if entry.Status != user.StatusSolved {
		t.Fatalf("expected solved status, got %q", entry.Status)
	}
	if entry.DateSolved == nil {
		t.Fatalf("expected dateSolved to be stamped")
	}

	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 0, Solved: boolPtr(false)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	entry = users.user.SolvedProblems[0]
	if entry.Status != user.StatusUnsolved {
		t.Fatalf("expected unsolved status, got %q", entry.Status)
	}
	if entry.DateSolved != nil {
		t.Fatalf("expected dateSolved to be cleared")
	}
}

func TestToggleKeepsAtMostOneEntryPerProblem(t *testing.T) {
	sh := newTestSheet("Sheet", 2)
	svc, users, userID := newTestService(sh)

	// three mutations of the same problem must not duplicate its entry
	for _, input := range []ToggleInput{
		{ProblemIndex: 0, Solved: boolPtr(true)},
		{ProblemIndex: 0, Star: boolPtr(true)},
		{ProblemIndex: 0, Note: strPtr("two pointers")},
	} {
		if err := svc.Toggle(context.Background(), userID, sh.ID, input); err != nil {
			t.Fatalf("unexpected toggle error: %v", err)
		}
	}

	if len(users.user.SolvedProblems) != 1 {
		t.Fatalf("expected 1 overlay entry, got %d", len(users.user.SolvedProblems))
	}
	entry := users.user.SolvedProblems[0]
	if entry.Status != user.StatusSolved || !entry.IsStarred || entry.Notes != "two pointers" {
		t.Fatalf("entry did not accumulate partial updates: %+v", entry)
	}
}

func TestToggleErrors(t *testing.T) {
	sh := newTestSheet("Sheet", 1)
	svc, _, userID := newTestService(sh)

	tests := []struct {
		name    string
		sheetID uuid.UUID
		index   int
		wantErr error
	}{
		{name: "unknown sheet", sheetID: uuid.New(), index: 0, wantErr: ErrSheetNotFound},
		{name: "negative index", sheetID: sh.ID, index: -1, wantErr: ErrInvalidProblemIdx},
		{name: "index past end", sheetID: sh.ID, index: 1, wantErr: ErrInvalidProblemIdx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Toggle(context.Background(), userID, tt.sheetID, ToggleInput{ProblemIndex: tt.index, Solved: boolPtr(true)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetSheetMergesOverlay(t *testing.T) {
	sh := newTestSheet("Sheet", 3)
	svc, _, userID := newTestService(sh)

	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 0, Solved: boolPtr(true)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	if err := svc.Toggle(context.Background(), userID, sh.ID, ToggleInput{ProblemIndex: 1, Star: boolPtr(true)}); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}

	detail, err := svc.GetSheet(context.Background(), userID, sh.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %d", len(detail.Problems))
	}

	p0, p1, p2 := detail.Problems[0], detail.Problems[1], detail.Problems[2]
	if !p0.Solved || p0.IsStarred {
		t.Fatalf("problem 0: want solved only, got %+v", p0)
	}
	if p1.Solved || !p1.IsStarred {
		t.Fatalf("problem 1: want starred only, got %+v", p1)
	}
	if p2.Solved || p2.IsStarred || p2.Notes != "" {
		t.Fatalf("problem 2: want defaults, got %+v", p2)
	}
	for i, p := range detail.Problems {
		if p.Index != i {
			t.Fatalf("expected index %d, got %d", i, p.Index)
		}
	}
}

func TestGetSheetNotFound(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Sheet", 1))

	if _, err := svc.GetSheet(context.Background(), userID, uuid.New()); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestActivityBucketsByUTCDay(t *testing.T) {
	sh := newTestSheet("Sheet", 1)
	svc, users, userID := newTestService(sh)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	day := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	sameDay := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	tooOld := now.AddDate(-2, 0, 0)

	problemID := sh.Problems[0].ID
	users.user.SolvedProblems = []user.ProgressEntry{
		{SheetID: sh.ID, ProblemID: problemID, Status: user.StatusSolved, DateSolved: &day},
		{SheetID: sh.ID, ProblemID: uuid.New(), Status: user.StatusSolved, DateSolved: &sameDay},
		{SheetID: sh.ID, ProblemID: uuid.New(), Status: user.StatusSolved, DateSolved: &tooOld},
		{SheetID: sh.ID, ProblemID: uuid.New(), Status: user.StatusUnsolved, DateSolved: &day},
	}

	report, err := svc.Activity(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Counts["2024-01-01"] != 2 {
		t.Fatalf("expected 2 solves on 2024-01-01, got %d", report.Counts["2024-01-01"])
	}
	if len(report.Counts) != 1 {
		t.Fatalf("expected a single bucket, got %v", report.Counts)
	}
	if report.End != "2024-06-15" {
		t.Fatalf("unexpected end date: %s", report.End)
	}
	if report.Start != now.AddDate(0, 0, -364).Format("2006-01-02") {
		t.Fatalf("unexpected start date: %s", report.Start)
	}
}

func TestActivityEmptyOverlay(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Sheet", 1))

	report, err := svc.Activity(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Counts) != 0 {
		t.Fatalf("expected empty counts, got %v", report.Counts)
	}
}
