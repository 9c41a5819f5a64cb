package attendance

import (
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
)

// Status is the display state derived for one day's attendance.
type Status string

const (
	StatusNone       Status = "none"
	StatusOk         Status = "ok"
	StatusWorking    Status = "working"
	StatusLate       Status = "late"
	StatusError      Status = "error"
	StatusRequesting Status = "requesting"
)

// ClassifyInput is an immutable snapshot of everything the classifier needs.
// Calendars arrive as prepared date sets and the policy is passed explicitly,
// so classification is deterministic and free of ambient reads.
type ClassifyInput struct {
	Record          *Record
	WorkDate        time.Time
	Staff           staff.Staff
	Holidays        holiday.DateSet
	CompanyHolidays holiday.DateSet
	Policy          policy.Policy
	Today           time.Time // the caller's current date, date component only
}

// Classify derives exactly one status for a day. It never fails: any record
// state that does not cleanly match a rule degrades to StatusError, because an
// incomplete attendance record must surface rather than hide behind Ok.
//
// The rules run in precedence order and the first match wins. A pending
// change request outranks everything else; the underlying fields may look
// broken only because the correction has not landed yet, and showing Error
// underneath a pending request would mislead the approver.
func Classify(in ClassifyInput) Status {
	rec := in.Record

	if rec != nil && rec.HasPendingChangeRequest() {
		return StatusRequesting
	}

	workDate := in.WorkDate
	if rec != nil {
		workDate = rec.WorkDate
	}
	dayOff := in.isDayOff(rec, workDate)
	past := beforeDay(workDate, in.Today)

	if rec == nil || rec.IsEmpty() {
		if past && !dayOff {
			return StatusError
		}
		return StatusNone
	}

	if rec.StartTime != nil && rec.EndTime == nil && sameDay(workDate, in.Today) {
		return StatusWorking
	}

	if rec.StartTime == nil || rec.EndTime == nil {
		if dayOff {
			return StatusOk
		}
		if past {
			return StatusError
		}
		return StatusNone
	}

	// Incoherence wins over lateness: a broken record must surface as
	// Error, not hide behind a plausible-looking Late.
	if !coherent(rec) {
		return StatusError
	}

	if in.isLate(rec, workDate) {
		return StatusLate
	}

	return StatusOk
}

// isDayOff reports whether the work date is a declared non-working day for
// this staff member: an excusing flag on the record, a calendar holiday, or a
// default weekend for weekday-type staff. Shift staff have no default
// weekend.
func (in ClassifyInput) isDayOff(rec *Record, workDate time.Time) bool {
	if rec != nil {
		if rec.PaidHoliday || rec.SpecialHoliday || rec.Absent || rec.DeemedHoliday {
			return true
		}
		if rec.SubstituteDate != nil {
			return true
		}
	}
	if in.Holidays.Has(workDate) || in.CompanyHolidays.Has(workDate) {
		return true
	}
	if in.Staff.WorkType != staff.WorkTypeShift {
		wd := workDate.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return false
}

func (in ClassifyInput) isLate(rec *Record, workDate time.Time) bool {
	if rec.GoDirectly || rec.PaidHoliday {
		return false
	}
	expected, ok := in.Policy.ExpectedStartOn(workDate)
	if !ok {
		return false
	}
	grace := time.Duration(in.Policy.GraceMinutes) * time.Minute
	start := time.Date(workDate.Year(), workDate.Month(), workDate.Day(),
		rec.StartTime.Hour(), rec.StartTime.Minute(), rec.StartTime.Second(), 0, workDate.Location())
	return start.After(expected.Add(grace))
}

// coherent checks the internal consistency of a fully populated record: start
// before end, every rest closed and ordered, hourly leaves well-formed.
func coherent(rec *Record) bool {
	if rec.StartTime != nil && rec.EndTime != nil && !rec.StartTime.Before(*rec.EndTime) {
		return false
	}
	for _, rest := range rec.Rests {
		if rest.Start == nil || rest.End == nil {
			return false
		}
		if !rest.Start.Before(*rest.End) {
			return false
		}
	}
	for _, hl := range rec.HourlyLeaves {
		if !hl.Start.Before(hl.End) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
