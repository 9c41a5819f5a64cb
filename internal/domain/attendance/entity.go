package attendance

import (
	"time"
)

// Record is one attendance record for a (staff, work date) pair. At most one
// record exists per pair; the repository fails with ErrRecordConflict when the
// backing store violates that.
type Record struct {
	ID             string
	StaffID        string
	WorkDate       time.Time // date component only
	StartTime      *time.Time
	EndTime        *time.Time
	Rests          []Rest
	GoDirectly     bool
	ReturnDirectly bool
	PaidHoliday    bool
	SpecialHoliday bool
	Absent         bool
	DeemedHoliday  bool
	SubstituteDate *time.Time
	Remarks        string
	SystemComments []SystemComment
	HourlyLeaves   []HourlyLeave
	ChangeRequests []ChangeRequest
	Histories      []History
	Revision       int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	StaffName *string
}

// Rest is a recorded break. The last entry may have a nil End, meaning the
// staff member is resting right now.
type Rest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// HourlyLeave is a partial-day paid-leave interval inside a work day.
type HourlyLeave struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SystemComment is a system-generated annotation on a record, e.g. the
// automatic lunch break being skipped. Confirmed is set once a person has
// seen it.
type SystemComment struct {
	Comment   string    `json:"comment"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// History is an append-only snapshot of a record's mutable fields taken
// immediately before an update was applied.
type History struct {
	ID             string
	RecordID       string
	StartTime      *time.Time
	EndTime        *time.Time
	Rests          []Rest
	GoDirectly     bool
	ReturnDirectly bool
	PaidHoliday    bool
	SpecialHoliday bool
	Absent         bool
	DeemedHoliday  bool
	SubstituteDate *time.Time
	Remarks        string
	HourlyLeaves   []HourlyLeave
	Revision       int
	CreatedAt      time.Time
}

// ChangeRequest is a staff-submitted proposal to correct a record. A nil
// pointer field means the request has no opinion on that field; the Clear*
// flags (and, for strings and slices, an explicitly empty value) mean the
// request asks for the field to be emptied.
type ChangeRequest struct {
	ID       string
	RecordID string
	StaffID  string

	StartTime           *time.Time
	ClearStartTime      bool
	EndTime             *time.Time
	ClearEndTime        bool
	GoDirectly          *bool
	ReturnDirectly      *bool
	Remarks             *string
	Rests               []Rest
	PaidHoliday         *bool
	SpecialHoliday      *bool
	SubstituteDate      *time.Time
	ClearSubstituteDate bool
	HourlyLeaves        []HourlyLeave

	Reason        string
	Completed     bool
	ReviewComment *string
	RequestedAt   time.Time
	ReviewedAt    *time.Time
}

// PendingChangeRequest returns the first incomplete change request, which is
// the one surfaced to the approver.
func (r *Record) PendingChangeRequest() *ChangeRequest {
	for i := range r.ChangeRequests {
		if !r.ChangeRequests[i].Completed {
			return &r.ChangeRequests[i]
		}
	}
	return nil
}

// HasPendingChangeRequest reports whether any change request on the record is
// still awaiting review.
func (r *Record) HasPendingChangeRequest() bool {
	return r.PendingChangeRequest() != nil
}

// OpenRest returns the index of the single open rest interval, or -1 when no
// interval is open. More than one open interval means the record is broken;
// the second return value reports whether the rest list is consistent.
func (r *Record) OpenRest() (int, bool) {
	idx := -1
	open := 0
	for i := range r.Rests {
		if r.Rests[i].End == nil {
			idx = i
			open++
		}
	}
	return idx, open <= 1
}

// IsEmpty reports whether the record carries nothing to judge: no times, no
// rests, no leave intervals, and no day-type flags.
func (r *Record) IsEmpty() bool {
	return r.StartTime == nil && r.EndTime == nil &&
		len(r.Rests) == 0 && len(r.HourlyLeaves) == 0 &&
		!r.GoDirectly && !r.ReturnDirectly &&
		!r.PaidHoliday && !r.SpecialHoliday && !r.Absent && !r.DeemedHoliday &&
		r.SubstituteDate == nil
}

// Snapshot captures the record's mutable fields as a history entry.
func (r *Record) Snapshot(at time.Time) History {
	return History{
		RecordID:       r.ID,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Rests:          r.Rests,
		GoDirectly:     r.GoDirectly,
		ReturnDirectly: r.ReturnDirectly,
		PaidHoliday:    r.PaidHoliday,
		SpecialHoliday: r.SpecialHoliday,
		Absent:         r.Absent,
		DeemedHoliday:  r.DeemedHoliday,
		SubstituteDate: r.SubstituteDate,
		Remarks:        r.Remarks,
		HourlyLeaves:   r.HourlyLeaves,
		Revision:       r.Revision,
		CreatedAt:      at,
	}
}
