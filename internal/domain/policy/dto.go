package policy

import (
	"strconv"

	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

type UpdatePolicyRequest struct {
	ExpectedStart         string       `json:"expected_start"` // "HH:MM"
	ExpectedEnd           string       `json:"expected_end"`   // "HH:MM"
	GraceMinutes          int          `json:"grace_minutes"`
	AutoBreakAfterMinutes int          `json:"auto_break_after_minutes"`
	QuickInputs           []QuickInput `json:"quick_inputs"`
}

func (r *UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidTimeOfDay(r.ExpectedStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "expected_start",
			Message: "expected_start must be in HH:MM format",
		})
	}

	if !validator.IsValidTimeOfDay(r.ExpectedEnd) {
		errs = append(errs, validator.ValidationError{
			Field:   "expected_end",
			Message: "expected_end must be in HH:MM format",
		})
	}

	if r.GraceMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_minutes",
			Message: "grace_minutes must not be negative",
		})
	}

	if r.AutoBreakAfterMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "auto_break_after_minutes",
			Message: "auto_break_after_minutes must not be negative",
		})
	}

	for i, qi := range r.QuickInputs {
		if validator.IsEmpty(qi.Label) || !validator.IsValidTimeOfDay(qi.Start) || !validator.IsValidTimeOfDay(qi.End) {
			errs = append(errs, validator.ValidationError{
				Field:   "quick_inputs",
				Message: "quick input " + strconv.Itoa(i) + " needs a label and HH:MM start/end times",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PolicyResponse struct {
	ExpectedStart         string       `json:"expected_start"`
	ExpectedEnd           string       `json:"expected_end"`
	GraceMinutes          int          `json:"grace_minutes"`
	AutoBreakAfterMinutes int          `json:"auto_break_after_minutes"`
	QuickInputs           []QuickInput `json:"quick_inputs"`
	UpdatedAt             string       `json:"updated_at"`
}
