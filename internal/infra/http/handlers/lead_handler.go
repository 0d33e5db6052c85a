package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/usecase"
)

type LeadGetter interface {
	Execute(ctx context.Context, id string) (*usecase.LeadDetailsOutput, error)
}

type LeadLister interface {
	Execute(ctx context.Context, input usecase.ListLeadsInput) ([]*entity.Lead, error)
}

type LeadStatusUpdater interface {
	Execute(ctx context.Context, id, rawStatus string) (*entity.Lead, error)
}

type LeadHandler struct {
	getter  LeadGetter
	lister  LeadLister
	updater LeadStatusUpdater
}

func NewLeadHandler(getter LeadGetter, lister LeadLister, updater LeadStatusUpdater) *LeadHandler {
	return &LeadHandler{getter: getter, lister: lister, updater: updater}
}

type ListLeadsResponse struct {
	Leads []*entity.Lead `json:"leads"`
	Count int            `json:"count"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status"`
}

// List trata GET /leads?status=&limit=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	input := usecase.ListLeadsInput{Status: r.URL.Query().Get("status")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		input.Limit = limit
	}

	leads, err := h.lister.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{Leads: leads, Count: len(leads)})
}

// Get trata GET /leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.getter.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateStatus trata PATCH /leads/{id}/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.updater.Execute(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
