package attendance

import "errors"

// Attendance domain errors
var (
	// Store errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrRecordConflict   = errors.New("more than one attendance record exists for the same staff and work date")
	ErrRevisionMismatch = errors.New("attendance record was modified by someone else")

	// Clock action errors
	ErrAlreadyClockedIn  = errors.New("start time is already recorded for this day")
	ErrNotClockedIn      = errors.New("start time is not recorded yet")
	ErrAlreadyClockedOut = errors.New("end time is already recorded for this day")
	ErrRestAlreadyOpen   = errors.New("a rest interval is already open")
	ErrRestNotOpen       = errors.New("no open rest interval to close")
	ErrRestInconsistent  = errors.New("more than one rest interval is open")

	// Change request errors
	ErrNoPendingRequest        = errors.New("record has no pending change request")
	ErrChangeRequestProcessed  = errors.New("change request has already been approved or rejected")
	ErrChangeRequestIncomplete = errors.New("change request proposes no field values")
)
