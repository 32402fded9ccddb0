package sheet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dsa-tracker/internal/httputil"
	"dsa-tracker/internal/logging"
)

// Handler contains HTTP handlers for sheet CRUD endpoints
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

// Create handles custom sheet creation
// @Summary      Create a custom sheet
// @Description  Create a custom sheet with an optional initial problem list
// @Tags         sheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Sheet fields"
// @Success      201 {object} Sheet
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /sheets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.Warn("invalid create sheet request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeTitleRequired, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateTitle):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeDuplicateTitle, http.StatusBadRequest)
		default:
			logger.Error("failed to create sheet", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to create sheet", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("sheet created", "sheet_id", created.ID, "title", created.Title)
	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update handles partial sheet updates
// @Summary      Update a sheet
// @Description  Apply a partial update to a sheet's title, description, or problems
// @Tags         sheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sheet ID"
// @Param        request body UpdateInput true "Fields to update"
// @Success      200 {object} Sheet
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      404 {object} httputil.ErrorResponse "Sheet not found"
// @Router       /sheets/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sheetID, err := uuid.Parse(chi.URLParam(r, "sheetID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		return
	}

	var input UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.Warn("invalid update sheet request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), sheetID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		case errors.Is(err, ErrTitleRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeTitleRequired, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateTitle):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeDuplicateTitle, http.StatusBadRequest)
		default:
			logger.Error("failed to update sheet", "sheet_id", sheetID, "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update sheet", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles sheet deletion
// @Summary      Delete a sheet
// @Description  Delete a sheet and remove its entries from every user's progress
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sheet ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Sheet not found"
// @Router       /sheets/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sheetID, err := uuid.Parse(chi.URLParam(r, "sheetID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), sheetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "sheet not found", httputil.CodeSheetNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete sheet", "sheet_id", sheetID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete sheet", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("sheet deleted", "sheet_id", sheetID)
	httputil.RespondJSON(w, MessageResponse{Message: "sheet deleted"}, http.StatusOK)
}
