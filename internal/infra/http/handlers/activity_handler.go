package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/taskflow/internal/entity"
	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
	"github.com/xavierca1/taskflow/internal/usecase"
)

type ActivityRecorder interface {
	Execute(ctx context.Context, input usecase.RecordActivityInput) (*usecase.RecordActivityOutput, error)
}

type ActivityHandler struct {
	recorder ActivityRecorder
}

func NewActivityHandler(recorder ActivityRecorder) *ActivityHandler {
	return &ActivityHandler{recorder: recorder}
}

type RecordActivityResponse struct {
	Success  bool                 `json:"success"`
	Activity *entity.LeadActivity `json:"activity"`
	LeadID   string               `json:"leadId"`
}

// Record trata POST /activities. IP, user agent e referrer vêm dos headers.
func (h *ActivityHandler) Record(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecordActivityInput
	if !decodeJSON(w, r, &input) {
		return
	}

	input.IPAddress = middleware.ClientIP(r)
	input.UserAgent = r.UserAgent()
	input.Referrer = r.Referer()

	out, err := h.recorder.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordActivity(string(out.Activity.Type), out.ScoreDelta, out.LeadCreated)

	writeJSON(w, http.StatusOK, RecordActivityResponse{
		Success:  true,
		Activity: out.Activity,
		LeadID:   out.LeadID,
	})
}
