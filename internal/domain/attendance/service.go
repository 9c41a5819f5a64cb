package attendance

import (
	"context"
)

// RecordService defines the attendance lifecycle operations. Records are
// created lazily by the first clock action of a day; everything afterwards
// funnels through the store's optimistic update.
type RecordService interface {
	// ClockIn records the start of a work day, creating the day's record when
	// none exists yet.
	ClockIn(ctx context.Context, req ClockRequest) (RecordResponse, error)

	// ClockOut records the end of a work day.
	ClockOut(ctx context.Context, req ClockRequest) (RecordResponse, error)

	// RestStart opens a rest interval.
	RestStart(ctx context.Context, req ClockRequest) (RecordResponse, error)

	// RestEnd closes the single open rest interval.
	RestEnd(ctx context.Context, req ClockRequest) (RecordResponse, error)

	// GetDay retrieves one day's record with its classified status. A missing
	// record is not an error; the response then carries only the derived
	// status for the empty day.
	GetDay(ctx context.Context, staffID string, workDate string) (RecordResponse, error)

	// GetMonth retrieves a staff member's month of records, each classified.
	GetMonth(ctx context.Context, filter MonthFilter) (MonthResponse, error)

	// UpdateRecord applies an admin/approver edit under the revision check.
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (RecordResponse, error)

	// SubmitChangeRequest files a correction proposal against a record.
	SubmitChangeRequest(ctx context.Context, req SubmitChangeRequest) (RecordResponse, error)

	// ApproveChangeRequest merges the pending proposal into the record and
	// completes it.
	ApproveChangeRequest(ctx context.Context, req ReviewRequest) (RecordResponse, error)

	// RejectChangeRequest completes the pending proposal without touching the
	// record's substantive fields.
	RejectChangeRequest(ctx context.Context, req ReviewRequest) (RecordResponse, error)

	// ListPendingChangeRequests returns the approver's queue.
	ListPendingChangeRequests(ctx context.Context) ([]RecordResponse, error)
}
