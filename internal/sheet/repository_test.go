package sheet

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"dsa-tracker/internal/database"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func sheetRow(id uuid.UUID, title, sheetType string, problems string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "description", "type", "problems", "created_at", "updated_at"}).
		AddRow(id.String(), title, "desc", sheetType, []byte(problems), now, now)
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	problemID := uuid.New()

	mock.ExpectQuery(`INSERT INTO "sheets"`).
		WillReturnRows(sheetRow(id, "My Sheet", TypeCustom,
			`[{"id":"`+problemID.String()+`","title":"Two Sum","link":"","difficulty":"easy","topic":"Array"}]`))

	created, err := repo.Create(context.Background(), "My Sheet", "desc", TypeCustom, []Problem{
		{ID: problemID, Title: "Two Sum", Difficulty: DifficultyEasy, Topic: "Array"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID != id {
		t.Errorf("expected id %s, got %s", id, created.ID)
	}
	if len(created.Problems) != 1 || created.Problems[0].ID != problemID {
		t.Errorf("unexpected problems: %+v", created.Problems)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryCreateDuplicateTitle(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "sheets"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "sheets_title_key"`))

	_, err := repo.Create(context.Background(), "My Sheet", "", TypeCustom, nil)
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("expected ErrDuplicateTitle, got %v", err)
	}
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM "sheets"`).
		WillReturnRows(sheetRow(id, "Blind 75", TypeDefault, `[]`))

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Blind 75" || got.Type != TypeDefault {
		t.Errorf("unexpected sheet: %+v", got)
	}
	if got.Problems == nil {
		t.Errorf("expected non-nil problems slice")
	}
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT .+ FROM "sheets"`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "type", "problems", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), "Blind 75", "", TypeDefault, []byte(`[]`), now, now).
		AddRow(uuid.NewString(), "Custom", "", TypeCustom, []byte(`[]`), now, now)
	mock.ExpectQuery(`SELECT .+ FROM "sheets"`).WillReturnRows(rows)

	sheets, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(sheets))
	}
	if sheets[0].Title != "Blind 75" || sheets[1].Title != "Custom" {
		t.Errorf("unexpected order: %+v", sheets)
	}
}

func TestRepositoryExistsDefault(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{name: "exists", count: 1, want: true},
		{name: "missing", count: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectQuery(`SELECT count`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			got, err := repo.ExistsDefault(context.Background(), "Blind 75")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRepositoryUpdate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "sheets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &Sheet{
		ID:       uuid.New(),
		Title:    "Renamed",
		Type:     TypeCustom,
		Problems: []Problem{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRepositoryUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "sheets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &Sheet{ID: uuid.New(), Title: "Renamed"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM "sheets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRepositoryDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM "sheets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
