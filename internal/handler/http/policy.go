package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	policyservice "github.com/kintai-cloud/kintai-backend-go/internal/service/policy"
)

type PolicyHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	policyService *policyservice.Service
}

func NewPolicyHandler(policyService *policyservice.Service) PolicyHandler {
	return &policyHandlerImpl{
		policyService: policyService,
	}
}

// Get implements PolicyHandler.
func (h *policyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.policyService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements PolicyHandler.
func (h *policyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req policy.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode policy update body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.policyService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company policy updated", resp)
}
