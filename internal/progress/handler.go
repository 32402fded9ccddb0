package progress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dsa-tracker/internal/auth"
	"dsa-tracker/internal/httputil"
	"dsa-tracker/internal/logging"
)

// Handler contains HTTP handlers for progress-aware read and toggle endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MessageResponse is a plain confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ToggleRequest is the toggle endpoint's body. ProblemIndex is required;
// a body without it is rejected rather than defaulting to problem 0.
type ToggleRequest struct {
	ProblemIndex *int    `json:"problemIndex"`
	Solved       *bool   `json:"solved"`
	Star         *bool   `json:"star"`
	Note         *string `json:"note"`
}

// ListSheets handles the sheet listing with per-user progress
// @Summary      List sheets
// @Description  List every sheet with the caller's solve percentage
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} SheetSummary
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /sheets [get]
func (h *Handler) ListSheets(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	summaries, err := h.service.ListSheets(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list sheets", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list sheets", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, summaries, http.StatusOK)
}

// GetSheet handles the sheet detail view
// @Summary      Get sheet detail
// @Description  Get a sheet's problems merged with the caller's solved/starred/notes state
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sheet ID"
// @Success      200 {object} SheetDetail
// @Failure      404 {object} httputil.ErrorResponse "Sheet not found"
// @Router       /sheets/{id} [get]
func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	sheetID, err := uuid.Parse(chi.URLParam(r, "sheetID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		return
	}

	detail, err := h.service.GetSheet(r.Context(), userID, sheetID)
	if err != nil {
		if errors.Is(err, ErrSheetNotFound) {
			httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get sheet", "sheet_id", sheetID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get sheet", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, detail, http.StatusOK)
}

// Toggle handles progress mutations for one problem
// @Summary      Toggle problem state
// @Description  Update solved/starred/notes for the problem at the given index
// @Tags         sheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sheet ID"
// @Param        request body ToggleRequest true "Fields to apply"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid problem index"
// @Failure      404 {object} httputil.ErrorResponse "Sheet not found"
// @Router       /sheets/{id}/toggle [post]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	sheetID, err := uuid.Parse(chi.URLParam(r, "sheetID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid toggle request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.ProblemIndex == nil {
		httputil.RespondErrorWithCode(w, "problem index is required", httputil.CodeInvalidProblemIndex, http.StatusBadRequest)
		return
	}

	input := ToggleInput{
		ProblemIndex: *req.ProblemIndex,
		Solved:       req.Solved,
		Star:         req.Star,
		Note:         req.Note,
	}

	if err := h.service.Toggle(r.Context(), userID, sheetID, input); err != nil {
		switch {
		case errors.Is(err, ErrSheetNotFound):
			httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		case errors.Is(err, ErrInvalidProblemIdx):
			httputil.RespondErrorWithCode(w, "invalid problem index", httputil.CodeInvalidProblemIndex, http.StatusBadRequest)
		default:
			logger.Error("failed to toggle problem", "sheet_id", sheetID, "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update progress", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "updated"}, http.StatusOK)
}

// Activity handles the solve-count histogram
// @Summary      Solve activity
// @Description  Per-day solve counts over the trailing 365 days
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ActivityReport
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /activity [get]
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	report, err := h.service.Activity(r.Context(), userID)
	if err != nil {
		logger.Error("failed to compute activity", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to compute activity", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, report, http.StatusOK)
}
