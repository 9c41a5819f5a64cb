package response

import (
	"errors"
	"net/http"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance store errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrRecordConflict):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrRevisionMismatch):
		Conflict(w, "Attendance record was modified by someone else, reload and retry")

	// Clock action errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Start time is already recorded for this day")
	case errors.Is(err, attendance.ErrNotClockedIn):
		BadRequest(w, "Start time is not recorded yet", nil)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "End time is already recorded for this day")
	case errors.Is(err, attendance.ErrRestAlreadyOpen):
		Conflict(w, "A rest interval is already open")
	case errors.Is(err, attendance.ErrRestNotOpen):
		BadRequest(w, "No open rest interval to close", nil)
	case errors.Is(err, attendance.ErrRestInconsistent):
		Conflict(w, err.Error())

	// Change request errors
	case errors.Is(err, attendance.ErrNoPendingRequest):
		NotFound(w, "Record has no pending change request")
	case errors.Is(err, attendance.ErrChangeRequestProcessed):
		Conflict(w, "Change request has already been processed")
	case errors.Is(err, attendance.ErrChangeRequestIncomplete):
		BadRequest(w, "Change request proposes no field values", nil)

	// Staff domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff member not found")
	case errors.Is(err, staff.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrDateExists):
		Conflict(w, "A holiday already exists on that date")

	// Policy domain errors
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Company policy not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
