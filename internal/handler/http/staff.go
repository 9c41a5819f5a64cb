package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	staffservice "github.com/kintai-cloud/kintai-backend-go/internal/service/staff"
)

type StaffHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type staffHandlerImpl struct {
	staffService *staffservice.Service
}

func NewStaffHandler(staffService *staffservice.Service) StaffHandler {
	return &staffHandlerImpl{
		staffService: staffService,
	}
}

// Create implements StaffHandler.
func (h *staffHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req staff.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode staff create body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.staffService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Staff member created", resp)
}

// Get implements StaffHandler.
func (h *staffHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.staffService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements StaffHandler.
func (h *staffHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.staffService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements StaffHandler.
func (h *staffHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req staff.UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode staff update body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.staffService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Staff member updated", resp)
}

// Delete implements StaffHandler.
func (h *staffHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.staffService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Staff member deleted", nil)
}
