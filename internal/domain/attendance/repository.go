package attendance

import (
	"context"
	"time"
)

// RecordRepository defines data access for attendance records. Change
// requests and histories travel with the record they belong to.
type RecordRepository interface {
	// FetchOne retrieves the record for (staffID, workDate). Zero matches is
	// (nil, nil) — not found is not an error on this path. More than one
	// match is an upstream integrity violation and fails with
	// ErrRecordConflict; the repository never silently picks one.
	FetchOne(ctx context.Context, staffID string, workDate time.Time) (*Record, error)

	// GetByID retrieves one record by id, ErrRecordNotFound when missing.
	GetByID(ctx context.Context, id string) (Record, error)

	// Create persists a new record with revision forced to 1 regardless of
	// the caller-supplied value. The only path that originates a record.
	Create(ctx context.Context, rec Record) (Record, error)

	// Update applies an optimistic-concurrency write: the row is updated only
	// where its stored revision equals rec.Revision, the pre-update field
	// values are appended to the history log in the same transaction, and the
	// persisted revision becomes rec.Revision+1. A stale revision fails with
	// ErrRevisionMismatch; the caller must re-fetch and redecide, never
	// blindly retry.
	Update(ctx context.Context, rec Record) (Record, error)

	// ListByMonth retrieves a staff member's records for one calendar month,
	// ordered by work date.
	ListByMonth(ctx context.Context, staffID string, from, to time.Time) ([]Record, error)

	// AddChangeRequest appends a pending change request to a record.
	AddChangeRequest(ctx context.Context, req ChangeRequest) (ChangeRequest, error)

	// ListPendingChangeRequests retrieves all records that currently carry an
	// incomplete change request, for the approver's queue.
	ListPendingChangeRequests(ctx context.Context) ([]Record, error)
}
