package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func baseRecord(monday time.Time) Record {
	return Record{
		ID:        "rec1",
		StaffID:   "s1",
		WorkDate:  monday,
		StartTime: clock(monday, 9, 0),
		EndTime:   clock(monday, 18, 0),
		Rests: []Rest{
			{Start: clock(monday, 12, 0), End: clock(monday, 13, 0)},
		},
		Remarks:  "client visit",
		Revision: 3,
	}
}

func TestMergeApproveProposedWins(t *testing.T) {
	monday := date(2025, time.June, 2)
	reviewedAt := time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC)

	rec := baseRecord(monday)
	rec.ChangeRequests = []ChangeRequest{{
		ID:        "cr1",
		RecordID:  "rec1",
		StartTime: clock(monday, 8, 30),
		Remarks:   strPtr("forgot to clock in"),
		Reason:    "arrived earlier than recorded",
	}}

	merged, err := MergeApprove(rec, "looks right", reviewedAt)
	require.NoError(t, err)

	// proposed values replace the current ones
	assert.Equal(t, clock(monday, 8, 30), merged.StartTime)
	assert.Equal(t, "forgot to clock in", merged.Remarks)

	// fields the request had no opinion on keep their values
	assert.Equal(t, clock(monday, 18, 0), merged.EndTime)
	assert.Len(t, merged.Rests, 1)

	require.Len(t, merged.ChangeRequests, 1)
	cr := merged.ChangeRequests[0]
	assert.True(t, cr.Completed)
	require.NotNil(t, cr.ReviewComment)
	assert.Equal(t, "looks right", *cr.ReviewComment)
	require.NotNil(t, cr.ReviewedAt)
	assert.Equal(t, reviewedAt, *cr.ReviewedAt)

	// revision travels unchanged; the store bumps it on persist
	assert.Equal(t, 3, merged.Revision)
}

func TestMergeApproveExplicitClear(t *testing.T) {
	monday := date(2025, time.June, 2)
	reviewedAt := time.Now().UTC()

	rec := baseRecord(monday)
	sub := date(2025, time.June, 9)
	rec.SubstituteDate = &sub
	rec.ChangeRequests = []ChangeRequest{{
		ID:                  "cr1",
		ClearEndTime:        true,
		ClearSubstituteDate: true,
		Remarks:             strPtr(""),
		Rests:               []Rest{},
		Reason:              "did not actually work that day",
	}}

	merged, err := MergeApprove(rec, "", reviewedAt)
	require.NoError(t, err)

	assert.Nil(t, merged.EndTime)
	assert.Nil(t, merged.SubstituteDate)
	assert.Equal(t, "", merged.Remarks)
	assert.Empty(t, merged.Rests)

	// start time had no clear flag and no proposal, so it survives
	assert.Equal(t, clock(monday, 9, 0), merged.StartTime)

	// an empty comment does not overwrite the nil review comment
	assert.Nil(t, merged.ChangeRequests[0].ReviewComment)
}

func TestMergeApproveNoOpinionKeepsValues(t *testing.T) {
	monday := date(2025, time.June, 2)

	rec := baseRecord(monday)
	rec.GoDirectly = true
	rec.ChangeRequests = []ChangeRequest{{
		ID:             "cr1",
		ReturnDirectly: boolPtr(true),
		Reason:         "left straight from the site",
	}}

	merged, err := MergeApprove(rec, "ok", time.Now().UTC())
	require.NoError(t, err)

	assert.True(t, merged.ReturnDirectly)
	// nil proposal leaves the current flag alone
	assert.True(t, merged.GoDirectly)
	assert.Equal(t, clock(monday, 9, 0), merged.StartTime)
}

func TestMergeApproveCompletesEveryPendingRequest(t *testing.T) {
	monday := date(2025, time.June, 2)

	rec := baseRecord(monday)
	rec.ChangeRequests = []ChangeRequest{
		{ID: "cr1", StartTime: clock(monday, 8, 0), Reason: "first"},
		{ID: "cr2", StartTime: clock(monday, 8, 15), Reason: "duplicate"},
		{ID: "cr0", Completed: true, Reason: "already done"},
	}

	merged, err := MergeApprove(rec, "approved", time.Now().UTC())
	require.NoError(t, err)

	// the first pending request is the one merged
	assert.Equal(t, clock(monday, 8, 0), merged.StartTime)

	for _, cr := range merged.ChangeRequests {
		assert.True(t, cr.Completed, "request %s should be completed", cr.ID)
	}
}

func TestMergeApproveNoPendingRequest(t *testing.T) {
	rec := baseRecord(date(2025, time.June, 2))

	_, err := MergeApprove(rec, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNoPendingRequest)

	rec.ChangeRequests = []ChangeRequest{{ID: "cr1", Completed: true}}
	_, err = MergeApprove(rec, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestMergeRejectLeavesFieldsUntouched(t *testing.T) {
	monday := date(2025, time.June, 2)
	reviewedAt := time.Now().UTC()

	rec := baseRecord(monday)
	rec.ChangeRequests = []ChangeRequest{{
		ID:        "cr1",
		StartTime: clock(monday, 7, 0),
		Remarks:   strPtr("rewrite everything"),
		Reason:    "suspicious",
	}}

	merged, err := MergeReject(rec, "does not match the gate logs", reviewedAt)
	require.NoError(t, err)

	assert.Equal(t, clock(monday, 9, 0), merged.StartTime)
	assert.Equal(t, "client visit", merged.Remarks)

	cr := merged.ChangeRequests[0]
	assert.True(t, cr.Completed)
	require.NotNil(t, cr.ReviewComment)
	assert.Equal(t, "does not match the gate logs", *cr.ReviewComment)
}

func TestMergeRejectNoPendingRequest(t *testing.T) {
	rec := baseRecord(date(2025, time.June, 2))

	_, err := MergeReject(rec, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}
