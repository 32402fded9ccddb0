package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dsa-tracker/internal/auth"
)

// newTestRouter wires the handler behind chi routing with the given user
// already authenticated
func newTestRouter(h *Handler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), auth.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/sheets", h.ListSheets)
	r.Get("/sheets/{sheetID}", h.GetSheet)
	r.Post("/sheets/{sheetID}/toggle", h.Toggle)
	r.Get("/activity", h.Activity)
	return r
}

func TestHandlerListSheets(t *testing.T) {
	sh := newTestSheet("Blind 75", 3)
	svc, _, userID := newTestService(sh)
	router := newTestRouter(NewHandler(svc), userID)

	req := httptest.NewRequest(http.MethodGet, "/sheets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var summaries []SheetSummary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Title != "Blind 75" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
	if summaries[0].ProblemsCount != 3 {
		t.Fatalf("expected problemsCount 3, got %d", summaries[0].ProblemsCount)
	}
}

func TestHandlerGetSheetNotFound(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Sheet", 1))
	router := newTestRouter(NewHandler(svc), userID)

	req := httptest.NewRequest(http.MethodGet, "/sheets/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerGetSheetBadID(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Sheet", 1))
	router := newTestRouter(NewHandler(svc), userID)

	req := httptest.NewRequest(http.MethodGet, "/sheets/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerToggle(t *testing.T) {
	sh := newTestSheet("Sheet", 2)
	svc, users, userID := newTestService(sh)
	router := newTestRouter(NewHandler(svc), userID)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "solve first problem", body: `{"problemIndex":0,"solved":true}`, wantStatus: http.StatusOK},
		{name: "index out of range", body: `{"problemIndex":5,"solved":true}`, wantStatus: http.StatusBadRequest},
		{name: "missing index", body: `{"solved":true}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"problemIndex":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sheets/"+sh.ID.String()+"/toggle", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: want %d, got %d (body %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	if len(users.user.SolvedProblems) != 1 {
		t.Fatalf("expected exactly one overlay entry, got %d", len(users.user.SolvedProblems))
	}
}

func TestHandlerActivity(t *testing.T) {
	svc, _, userID := newTestService(newTestSheet("Sheet", 1))
	router := newTestRouter(NewHandler(svc), userID)

	req := httptest.NewRequest(http.MethodGet, "/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var report ActivityReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Start == "" || report.End == "" {
		t.Fatalf("expected start and end dates, got %+v", report)
	}
}
