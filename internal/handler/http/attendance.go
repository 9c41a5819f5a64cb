package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/jwt"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	RestStart(w http.ResponseWriter, r *http.Request)
	RestEnd(w http.ResponseWriter, r *http.Request)
	GetDay(w http.ResponseWriter, r *http.Request)
	GetMonth(w http.ResponseWriter, r *http.Request)
	GetStaffMonth(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	SubmitChangeRequest(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	recordService attendance.RecordService
}

func NewAttendanceHandler(recordService attendance.RecordService) AttendanceHandler {
	return &attendanceHandlerImpl{
		recordService: recordService,
	}
}

// decodeClock binds a clock-action body to the caller's own staff identity.
// The staff_id claim always wins over whatever the body carries.
func decodeClock(r *http.Request) (attendance.ClockRequest, bool) {
	claims, ok := jwt.FromContext(r.Context())
	if !ok {
		return attendance.ClockRequest{}, false
	}

	var req attendance.ClockRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("Failed to decode clock request body", "error", err)
			return attendance.ClockRequest{}, false
		}
	}
	req.StaffID = claims.StaffID
	return req, true
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClock(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked in", resp)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClock(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out", resp)
}

// RestStart implements AttendanceHandler.
func (h *attendanceHandlerImpl) RestStart(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClock(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.RestStart(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Rest started", resp)
}

// RestEnd implements AttendanceHandler.
func (h *attendanceHandlerImpl) RestEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClock(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.RestEnd(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Rest ended", resp)
}

// GetDay implements AttendanceHandler. Returns the caller's own record for
// ?date=YYYY-MM-DD, defaulting to today when the parameter is absent is the
// client's job; the server requires the date.
func (h *attendanceHandlerImpl) GetDay(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing bearer token")
		return
	}

	resp, err := h.recordService.GetDay(r.Context(), claims.StaffID, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetMonth implements AttendanceHandler. The caller's own month view.
func (h *attendanceHandlerImpl) GetMonth(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing bearer token")
		return
	}

	resp, err := h.recordService.GetMonth(r.Context(), attendance.MonthFilter{
		StaffID: claims.StaffID,
		Month:   r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetStaffMonth implements AttendanceHandler. Approver view of any staff
// member's month.
func (h *attendanceHandlerImpl) GetStaffMonth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.recordService.GetMonth(r.Context(), attendance.MonthFilter{
		StaffID: chi.URLParam(r, "staffId"),
		Month:   r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode update request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.recordService.UpdateRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated", resp)
}

// SubmitChangeRequest implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitChangeRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing bearer token")
		return
	}

	var req attendance.SubmitChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode change request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RecordID = chi.URLParam(r, "id")
	req.StaffID = claims.StaffID

	resp, err := h.recordService.SubmitChangeRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Change request submitted", resp)
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReview(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.ApproveChangeRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request approved", resp)
}

// Reject implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReview(r)
	if !ok {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recordService.RejectChangeRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request rejected", resp)
}

// ListPending implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	resp, err := h.recordService.ListPendingChangeRequests(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func decodeReview(r *http.Request) (attendance.ReviewRequest, bool) {
	var req attendance.ReviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("Failed to decode review request body", "error", err)
			return attendance.ReviewRequest{}, false
		}
	}
	req.RecordID = chi.URLParam(r, "id")
	return req, true
}
