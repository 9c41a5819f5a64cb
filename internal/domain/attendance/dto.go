package attendance

import (
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK ACTION DTOs
// ========================================

// ClockRequest covers clock-in, clock-out, rest-start and rest-end. At is an
// optional ISO8601 timestamp for terminals that sync later; when empty the
// server time is used.
type ClockRequest struct {
	StaffID        string `json:"staff_id"`
	At             string `json:"at,omitempty"`
	GoDirectly     bool   `json:"go_directly_flag,omitempty"`
	ReturnDirectly bool   `json:"return_directly_flag,omitempty"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if r.At != "" {
		if _, valid := validator.IsValidDateTime(r.At); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "at",
				Message: "at must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Time resolves the effective action timestamp.
func (r *ClockRequest) Time(now time.Time) time.Time {
	if r.At == "" {
		return now
	}
	t, _ := validator.IsValidDateTime(r.At)
	return t
}

// ========================================
// RECORD DTOs
// ========================================

type RestView struct {
	Start *string `json:"start_time"`
	End   *string `json:"end_time"`
}

type HourlyLeaveView struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

type SystemCommentView struct {
	Comment   string `json:"comment"`
	Confirmed bool   `json:"confirmed"`
	CreatedAt string `json:"created_at"`
}

type ChangeRequestView struct {
	ID            string  `json:"id"`
	Reason        string  `json:"reason"`
	Completed     bool    `json:"completed"`
	ReviewComment *string `json:"review_comment,omitempty"`
	RequestedAt   string  `json:"requested_at"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
}

type RecordResponse struct {
	ID             string              `json:"id"`
	StaffID        string              `json:"staff_id"`
	StaffName      *string             `json:"staff_name,omitempty"`
	WorkDate       string              `json:"work_date"`
	StartTime      *string             `json:"start_time,omitempty"`
	EndTime        *string             `json:"end_time,omitempty"`
	Rests          []RestView          `json:"rests"`
	GoDirectly     bool                `json:"go_directly_flag"`
	ReturnDirectly bool                `json:"return_directly_flag"`
	PaidHoliday    bool                `json:"paid_holiday_flag"`
	SpecialHoliday bool                `json:"special_holiday_flag"`
	Absent         bool                `json:"absent_flag"`
	DeemedHoliday  bool                `json:"is_deemed_holiday"`
	SubstituteDate *string             `json:"substitute_holiday_date,omitempty"`
	Remarks        string              `json:"remarks"`
	SystemComments []SystemCommentView `json:"system_comments"`
	HourlyLeaves   []HourlyLeaveView   `json:"hourly_paid_holiday_times"`
	ChangeRequests []ChangeRequestView `json:"change_requests"`
	Revision       int                 `json:"revision"`
	Status         string              `json:"status"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

type MonthResponse struct {
	StaffID string           `json:"staff_id"`
	Month   string           `json:"month"`
	Days    []RecordResponse `json:"days"`
}

// UpdateRecordRequest is the admin/approver edit path. Revision must carry
// the value the editor last saw; a mismatch surfaces as a conflict instead
// of a silent overwrite.
type UpdateRecordRequest struct {
	ID             string  `json:"-"`
	Revision       int     `json:"revision"`
	StartTime      *string `json:"start_time,omitempty"` // ISO8601, "" clears
	EndTime        *string `json:"end_time,omitempty"`
	GoDirectly     *bool   `json:"go_directly_flag,omitempty"`
	ReturnDirectly *bool   `json:"return_directly_flag,omitempty"`
	PaidHoliday    *bool   `json:"paid_holiday_flag,omitempty"`
	SpecialHoliday *bool   `json:"special_holiday_flag,omitempty"`
	Absent         *bool   `json:"absent_flag,omitempty"`
	DeemedHoliday  *bool   `json:"is_deemed_holiday,omitempty"`
	SubstituteDate *string `json:"substitute_holiday_date,omitempty"` // YYYY-MM-DD, "" clears
	Remarks        *string `json:"remarks,omitempty"`
	Rests          []struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	} `json:"rests,omitempty"`
	HourlyLeaves []struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	} `json:"hourly_paid_holiday_times,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Revision < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "revision",
			Message: "revision is required and must be at least 1",
		})
	}

	errs = append(errs, validateOptionalTimestamp("start_time", r.StartTime)...)
	errs = append(errs, validateOptionalTimestamp("end_time", r.EndTime)...)

	if r.SubstituteDate != nil && *r.SubstituteDate != "" {
		if _, valid := validator.IsValidDate(*r.SubstituteDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "substitute_holiday_date",
				Message: "substitute_holiday_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// CHANGE REQUEST DTOs
// ========================================

// SubmitChangeRequest proposes corrections to a record. Field semantics
// mirror the merge rules: omitted means no opinion, an empty string (or an
// empty array) asks for the field to be cleared.
type SubmitChangeRequest struct {
	RecordID       string  `json:"-"`
	StaffID        string  `json:"staff_id"`
	Reason         string  `json:"reason"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	GoDirectly     *bool   `json:"go_directly_flag,omitempty"`
	ReturnDirectly *bool   `json:"return_directly_flag,omitempty"`
	PaidHoliday    *bool   `json:"paid_holiday_flag,omitempty"`
	SpecialHoliday *bool   `json:"special_holiday_flag,omitempty"`
	SubstituteDate *string `json:"substitute_holiday_date,omitempty"`
	Remarks        *string `json:"remarks,omitempty"`
	Rests          []struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	} `json:"rests,omitempty"`
	HourlyLeaves []struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	} `json:"hourly_paid_holiday_times,omitempty"`
}

func (r *SubmitChangeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	errs = append(errs, validateOptionalTimestamp("start_time", r.StartTime)...)
	errs = append(errs, validateOptionalTimestamp("end_time", r.EndTime)...)

	if r.SubstituteDate != nil && *r.SubstituteDate != "" {
		if _, valid := validator.IsValidDate(*r.SubstituteDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "substitute_holiday_date",
				Message: "substitute_holiday_date must be in YYYY-MM-DD format",
			})
		}
	}

	if !r.proposesAnything() {
		errs = append(errs, validator.ValidationError{
			Field:   "request",
			Message: "at least one field value must be proposed",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *SubmitChangeRequest) proposesAnything() bool {
	return r.StartTime != nil || r.EndTime != nil ||
		r.GoDirectly != nil || r.ReturnDirectly != nil ||
		r.PaidHoliday != nil || r.SpecialHoliday != nil ||
		r.SubstituteDate != nil || r.Remarks != nil ||
		r.Rests != nil || r.HourlyLeaves != nil
}

// ReviewRequest carries the approver's decision on the pending change
// request. Comment is optional.
type ReviewRequest struct {
	RecordID string  `json:"-"`
	Revision int     `json:"revision"`
	Comment  *string `json:"comment,omitempty"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type MonthFilter struct {
	StaffID string `json:"staff_id"`
	Month   string `json:"month"` // YYYY-MM
}

func (f *MonthFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if _, err := time.Parse("2006-01", f.Month); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// validateOptionalTimestamp accepts nil (no opinion) and the exact empty
// string (explicit clear); any other value must parse. Whitespace-only input
// is rejected here so it cannot slip through and be treated as a clear.
func validateOptionalTimestamp(field string, value *string) validator.ValidationErrors {
	if value == nil || *value == "" {
		return nil
	}
	if _, valid := validator.IsValidDateTime(*value); !valid {
		return validator.ValidationErrors{{
			Field:   field,
			Message: field + " must be an ISO8601 timestamp",
		}}
	}
	return nil
}
