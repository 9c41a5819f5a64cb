package attendance

import (
	"time"
)

// MergeApprove computes the record state after an approver accepts the
// pending change request. For each correctable field the proposed value wins
// when the request has one; otherwise the record's current value stays. A
// field is only emptied when the request explicitly asked for it (a Clear
// flag, an empty string, or an empty non-nil slice) — a request with no
// opinion never drops a value.
//
// Every pending change request on the record is marked completed with the
// reviewer's comment, so a stray duplicate request cannot linger and keep the
// record in the requesting state. The returned record carries the same
// revision it came in with; persisting it through the store's Update applies
// the usual optimistic-concurrency check and history append.
func MergeApprove(rec Record, comment string, reviewedAt time.Time) (Record, error) {
	req := rec.PendingChangeRequest()
	if req == nil {
		return Record{}, ErrNoPendingRequest
	}

	rec.StartTime = mergeTime(rec.StartTime, req.StartTime, req.ClearStartTime)
	rec.EndTime = mergeTime(rec.EndTime, req.EndTime, req.ClearEndTime)
	rec.SubstituteDate = mergeTime(rec.SubstituteDate, req.SubstituteDate, req.ClearSubstituteDate)
	rec.GoDirectly = mergeBool(rec.GoDirectly, req.GoDirectly)
	rec.ReturnDirectly = mergeBool(rec.ReturnDirectly, req.ReturnDirectly)
	rec.PaidHoliday = mergeBool(rec.PaidHoliday, req.PaidHoliday)
	rec.SpecialHoliday = mergeBool(rec.SpecialHoliday, req.SpecialHoliday)
	rec.Remarks = mergeString(rec.Remarks, req.Remarks)
	rec.Rests = mergeRests(rec.Rests, req.Rests)
	rec.HourlyLeaves = mergeHourlyLeaves(rec.HourlyLeaves, req.HourlyLeaves)

	completeAll(&rec, comment, reviewedAt)
	return rec, nil
}

// MergeReject completes the pending change request(s) with the reviewer's
// comment and leaves every substantive attendance field exactly as it was.
func MergeReject(rec Record, comment string, reviewedAt time.Time) (Record, error) {
	if rec.PendingChangeRequest() == nil {
		return Record{}, ErrNoPendingRequest
	}
	completeAll(&rec, comment, reviewedAt)
	return rec, nil
}

func completeAll(rec *Record, comment string, reviewedAt time.Time) {
	for i := range rec.ChangeRequests {
		if rec.ChangeRequests[i].Completed {
			continue
		}
		rec.ChangeRequests[i].Completed = true
		rec.ChangeRequests[i].ReviewedAt = &reviewedAt
		if comment != "" {
			c := comment
			rec.ChangeRequests[i].ReviewComment = &c
		}
	}
}

// mergeTime: proposed value wins, an explicit clear empties the field, and a
// nil proposal keeps the current value.
func mergeTime(current, proposed *time.Time, clear bool) *time.Time {
	if clear {
		return nil
	}
	if proposed != nil {
		return proposed
	}
	return current
}

func mergeBool(current bool, proposed *bool) bool {
	if proposed != nil {
		return *proposed
	}
	return current
}

// mergeString: an empty proposed string is an explicit clear, nil is no
// opinion.
func mergeString(current string, proposed *string) string {
	if proposed != nil {
		return *proposed
	}
	return current
}

// mergeRests: a nil slice is no opinion, an empty non-nil slice clears the
// rests.
func mergeRests(current, proposed []Rest) []Rest {
	if proposed != nil {
		return proposed
	}
	return current
}

func mergeHourlyLeaves(current, proposed []HourlyLeave) []HourlyLeave {
	if proposed != nil {
		return proposed
	}
	return current
}
