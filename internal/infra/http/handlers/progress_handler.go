package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
	"github.com/xavierca1/taskflow/internal/progression"
	"github.com/xavierca1/taskflow/internal/usecase"
)

type ProgressReader interface {
	Execute(ctx context.Context, userID string) (*progression.Progress, error)
}

type XPAwarder interface {
	Execute(ctx context.Context, input usecase.AwardXPInput) (*usecase.AwardXPOutput, error)
}

type ProgressResetter interface {
	Execute(ctx context.Context, userID string) (*progression.Progress, error)
}

type ProgressHandler struct {
	reader   ProgressReader
	awarder  XPAwarder
	resetter ProgressResetter
}

func NewProgressHandler(reader ProgressReader, awarder XPAwarder, resetter ProgressResetter) *ProgressHandler {
	return &ProgressHandler{reader: reader, awarder: awarder, resetter: resetter}
}

// Get trata GET /me/progress
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	progress, err := h.reader.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Award trata POST /me/xp
func (h *ProgressHandler) Award(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input usecase.AwardXPInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.UserID = userID

	out, err := h.awarder.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordXPAward(input.Amount, out.LeveledUp)
	writeJSON(w, http.StatusOK, out)
}

// Reset trata POST /me/reset
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	progress, err := h.resetter.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
