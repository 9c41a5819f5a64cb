package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	holidayservice "github.com/kintai-cloud/kintai-backend-go/internal/service/holiday"
)

type HolidayHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService *holidayservice.Service
}

func NewHolidayHandler(holidayService *holidayservice.Service) HolidayHandler {
	return &holidayHandlerImpl{
		holidayService: holidayService,
	}
}

// calendarKind resolves the {kind} route segment; anything other than the two
// known calendars falls back to the company one being absent, i.e. not found.
func calendarKind(r *http.Request) (holiday.Kind, bool) {
	switch chi.URLParam(r, "kind") {
	case string(holiday.KindPublic):
		return holiday.KindPublic, true
	case string(holiday.KindCompany):
		return holiday.KindCompany, true
	default:
		return "", false
	}
}

// Create implements HolidayHandler.
func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := calendarKind(r)
	if !ok {
		response.NotFound(w, "Unknown holiday calendar")
		return
	}

	var req holiday.UpsertHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode holiday create body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.holidayService.Create(r.Context(), kind, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created", resp)
}

// List implements HolidayHandler.
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := calendarKind(r)
	if !ok {
		response.NotFound(w, "Unknown holiday calendar")
		return
	}

	resp, err := h.holidayService.List(r.Context(), kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements HolidayHandler.
func (h *holidayHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := calendarKind(r)
	if !ok {
		response.NotFound(w, "Unknown holiday calendar")
		return
	}

	var req holiday.UpsertHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode holiday update body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.holidayService.Update(r.Context(), kind, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday updated", resp)
}

// Delete implements HolidayHandler.
func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := calendarKind(r)
	if !ok {
		response.NotFound(w, "Unknown holiday calendar")
		return
	}

	if err := h.holidayService.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted", nil)
}
