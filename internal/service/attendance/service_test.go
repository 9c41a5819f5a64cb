package attendance

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
)

// memRecordRepo is an in-memory attendance.RecordRepository with the same
// revision and history semantics as the postgres implementation.
type memRecordRepo struct {
	records map[string]*attendance.Record
	nextID  int
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: make(map[string]*attendance.Record)}
}

func (m *memRecordRepo) newID() string {
	m.nextID++
	return "id-" + strconv.Itoa(m.nextID)
}

func copyRecord(rec attendance.Record) attendance.Record {
	out := rec
	out.Rests = append([]attendance.Rest(nil), rec.Rests...)
	out.SystemComments = append([]attendance.SystemComment(nil), rec.SystemComments...)
	out.HourlyLeaves = append([]attendance.HourlyLeave(nil), rec.HourlyLeaves...)
	out.ChangeRequests = append([]attendance.ChangeRequest(nil), rec.ChangeRequests...)
	out.Histories = append([]attendance.History(nil), rec.Histories...)
	return out
}

func (m *memRecordRepo) FetchOne(ctx context.Context, staffID string, workDate time.Time) (*attendance.Record, error) {
	var found []*attendance.Record
	for _, rec := range m.records {
		if rec.StaffID == staffID && rec.WorkDate.Equal(workDate) {
			found = append(found, rec)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		rec := copyRecord(*found[0])
		return &rec, nil
	default:
		return nil, fmt.Errorf("%d records: %w", len(found), attendance.ErrRecordConflict)
	}
}

func (m *memRecordRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return copyRecord(*rec), nil
}

func (m *memRecordRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = m.newID()
	rec.Revision = 1
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	stored := copyRecord(rec)
	m.records[rec.ID] = &stored
	return rec, nil
}

func (m *memRecordRepo) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	current, ok := m.records[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if current.Revision != rec.Revision {
		return attendance.Record{}, attendance.ErrRevisionMismatch
	}

	histories := append(current.Histories, current.Snapshot(time.Now().UTC()))
	rec.Revision++
	rec.UpdatedAt = time.Now().UTC()
	rec.Histories = histories

	stored := copyRecord(rec)
	m.records[rec.ID] = &stored
	return rec, nil
}

func (m *memRecordRepo) ListByMonth(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range m.records {
		if rec.StaffID == staffID && !rec.WorkDate.Before(from) && rec.WorkDate.Before(to) {
			out = append(out, copyRecord(*rec))
		}
	}
	return out, nil
}

func (m *memRecordRepo) AddChangeRequest(ctx context.Context, req attendance.ChangeRequest) (attendance.ChangeRequest, error) {
	rec, ok := m.records[req.RecordID]
	if !ok {
		return attendance.ChangeRequest{}, attendance.ErrRecordNotFound
	}
	req.ID = m.newID()
	rec.ChangeRequests = append(rec.ChangeRequests, req)
	return req, nil
}

func (m *memRecordRepo) ListPendingChangeRequests(ctx context.Context) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range m.records {
		if rec.HasPendingChangeRequest() {
			out = append(out, copyRecord(*rec))
		}
	}
	return out, nil
}

type memStaffRepo struct {
	staffs map[string]staff.Staff
}

func (m *memStaffRepo) Create(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	m.staffs[s.ID] = s
	return s, nil
}

func (m *memStaffRepo) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	s, ok := m.staffs[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return s, nil
}

func (m *memStaffRepo) List(ctx context.Context) ([]staff.Staff, error) { return nil, nil }
func (m *memStaffRepo) Update(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	return s, nil
}
func (m *memStaffRepo) Delete(ctx context.Context, id string) error { return nil }

type memHolidayRepo struct {
	holidays map[holiday.Kind][]holiday.Holiday
}

func (m *memHolidayRepo) Create(ctx context.Context, kind holiday.Kind, h holiday.Holiday) (holiday.Holiday, error) {
	m.holidays[kind] = append(m.holidays[kind], h)
	return h, nil
}

func (m *memHolidayRepo) GetByID(ctx context.Context, kind holiday.Kind, id string) (holiday.Holiday, error) {
	return holiday.Holiday{}, holiday.ErrHolidayNotFound
}

func (m *memHolidayRepo) List(ctx context.Context, kind holiday.Kind) ([]holiday.Holiday, error) {
	return m.holidays[kind], nil
}

func (m *memHolidayRepo) ListRange(ctx context.Context, kind holiday.Kind, from, to time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range m.holidays[kind] {
		if !h.HolidayDate.Before(from) && h.HolidayDate.Before(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memHolidayRepo) Update(ctx context.Context, kind holiday.Kind, h holiday.Holiday) (holiday.Holiday, error) {
	return h, nil
}

func (m *memHolidayRepo) Delete(ctx context.Context, kind holiday.Kind, id string) error {
	return nil
}

type memPolicyRepo struct {
	policy *policy.Policy
}

func (m *memPolicyRepo) Get(ctx context.Context) (policy.Policy, error) {
	if m.policy == nil {
		return policy.Policy{}, policy.ErrPolicyNotFound
	}
	return *m.policy, nil
}

func (m *memPolicyRepo) Save(ctx context.Context, p policy.Policy) (policy.Policy, error) {
	m.policy = &p
	return p, nil
}

type fixture struct {
	service attendance.RecordService
	records *memRecordRepo
	staffs  *memStaffRepo
	policy  *memPolicyRepo
}

func newFixture() *fixture {
	records := newMemRecordRepo()
	staffs := &memStaffRepo{staffs: map[string]staff.Staff{
		"s1": {ID: "s1", Name: "Hanako Sato", WorkType: staff.WorkTypeWeekday, Role: staff.RoleStaff},
	}}
	holidays := &memHolidayRepo{holidays: make(map[holiday.Kind][]holiday.Holiday)}
	pol := &memPolicyRepo{}

	return &fixture{
		service: NewRecordService(nil, records, staffs, holidays, pol),
		records: records,
		staffs:  staffs,
		policy:  pol,
	}
}

// todayAt builds an RFC3339 timestamp for today's date at the given clock
// time, so clock actions always land on the current work date.
func todayAt(h, min int) string {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), h, min, 0, 0, time.UTC).Format(time.RFC3339)
}

func TestClockInCreatesRecordLazily(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, resp.Revision)
	require.NotNil(t, resp.StartTime)
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, string(attendance.StatusWorking), resp.Status)
	require.NotNil(t, resp.StaffName)
	assert.Equal(t, "Hanako Sato", *resp.StaffName)
}

func TestClockInTwiceFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	_, err = f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 5)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockInUnknownStaff(t *testing.T) {
	f := newFixture()

	_, err := f.service.ClockIn(context.Background(), attendance.ClockRequest{StaffID: "ghost"})
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}

func TestClockOutRequiresClockIn(t *testing.T) {
	f := newFixture()

	_, err := f.service.ClockOut(context.Background(), attendance.ClockRequest{StaffID: "s1", At: todayAt(18, 0)})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestFullDayFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	_, err = f.service.RestStart(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(12, 0)})
	require.NoError(t, err)

	// a second open rest is rejected
	_, err = f.service.RestStart(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(12, 30)})
	assert.ErrorIs(t, err, attendance.ErrRestAlreadyOpen)

	_, err = f.service.RestEnd(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(13, 0)})
	require.NoError(t, err)

	_, err = f.service.RestEnd(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(13, 5)})
	assert.ErrorIs(t, err, attendance.ErrRestNotOpen)

	resp, err := f.service.ClockOut(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(18, 0)})
	require.NoError(t, err)

	require.NotNil(t, resp.EndTime)
	require.Len(t, resp.Rests, 1)
	assert.NotNil(t, resp.Rests[0].Start)
	assert.NotNil(t, resp.Rests[0].End)
	// a rest was recorded, so no skipped-break comment
	assert.Empty(t, resp.SystemComments)
	// clock-in, rest-start, rest-end, clock-out
	assert.Equal(t, 4, resp.Revision)
}

func TestClockOutAppendsSkippedBreakComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	resp, err := f.service.ClockOut(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(18, 0)})
	require.NoError(t, err)

	require.Len(t, resp.SystemComments, 1)
	assert.False(t, resp.SystemComments[0].Confirmed)
}

func TestClockOutClosesOpenRest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)
	_, err = f.service.RestStart(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(12, 0)})
	require.NoError(t, err)

	resp, err := f.service.ClockOut(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(18, 0)})
	require.NoError(t, err)

	require.Len(t, resp.Rests, 1)
	require.NotNil(t, resp.Rests[0].End)
	endOfRest, _ := time.Parse(time.RFC3339, *resp.Rests[0].End)
	endOfDay, _ := time.Parse(time.RFC3339, *resp.EndTime)
	assert.True(t, endOfRest.Equal(endOfDay))
}

func TestUpdateRecordRevisionGuard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	end := todayAt(18, 0)
	resp, err := f.service.UpdateRecord(ctx, attendance.UpdateRecordRequest{
		ID:       created.ID,
		Revision: created.Revision,
		EndTime:  &end,
	})
	require.NoError(t, err)
	assert.Equal(t, created.Revision+1, resp.Revision)
	require.NotNil(t, resp.EndTime)

	// replaying the same edit with the stale revision conflicts
	_, err = f.service.UpdateRecord(ctx, attendance.UpdateRecordRequest{
		ID:       created.ID,
		Revision: created.Revision,
		EndTime:  &end,
	})
	assert.ErrorIs(t, err, attendance.ErrRevisionMismatch)

	// the pre-update state was snapshotted
	stored, err := f.records.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Histories, 1)
	assert.Nil(t, stored.Histories[0].EndTime)
	assert.Equal(t, created.Revision, stored.Histories[0].Revision)
}

func TestUpdateRecordClearsWithEmptyString(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	empty := ""
	resp, err := f.service.UpdateRecord(ctx, attendance.UpdateRecordRequest{
		ID:        created.ID,
		Revision:  created.Revision,
		StartTime: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.StartTime)
}

func TestChangeRequestLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 30)})
	require.NoError(t, err)

	proposed := todayAt(8, 45)
	submitted, err := f.service.SubmitChangeRequest(ctx, attendance.SubmitChangeRequest{
		RecordID:  created.ID,
		StaffID:   "s1",
		Reason:    "badge reader was down, entered through the loading dock",
		StartTime: &proposed,
	})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusRequesting), submitted.Status)
	require.Len(t, submitted.ChangeRequests, 1)
	assert.False(t, submitted.ChangeRequests[0].Completed)

	pending, err := f.service.ListPendingChangeRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)

	comment := "confirmed with security"
	approved, err := f.service.ApproveChangeRequest(ctx, attendance.ReviewRequest{
		RecordID: created.ID,
		Comment:  &comment,
	})
	require.NoError(t, err)

	require.NotNil(t, approved.StartTime)
	assert.Equal(t, proposed, *approved.StartTime)
	require.Len(t, approved.ChangeRequests, 1)
	assert.True(t, approved.ChangeRequests[0].Completed)
	assert.Equal(t, created.Revision+1, approved.Revision)

	// the queue is empty again
	pending, err = f.service.ListPendingChangeRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// approving again fails: nothing is pending
	_, err = f.service.ApproveChangeRequest(ctx, attendance.ReviewRequest{RecordID: created.ID})
	assert.ErrorIs(t, err, attendance.ErrNoPendingRequest)
}

func TestSubmitChangeRequestForeignRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.staffs.staffs["s2"] = staff.Staff{ID: "s2", Name: "Taro Suzuki", WorkType: staff.WorkTypeWeekday, Role: staff.RoleStaff}

	created, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	// another staff member cannot file a request against this record
	proposed := todayAt(8, 0)
	_, err = f.service.SubmitChangeRequest(ctx, attendance.SubmitChangeRequest{
		RecordID:  created.ID,
		StaffID:   "s2",
		Reason:    "covering a shift swap",
		StartTime: &proposed,
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	rec, err := f.records.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.ChangeRequests)
	assert.False(t, rec.HasPendingChangeRequest())
}

func TestRejectChangeRequestKeepsFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 30)})
	require.NoError(t, err)
	originalStart := *created.StartTime

	proposed := todayAt(7, 0)
	_, err = f.service.SubmitChangeRequest(ctx, attendance.SubmitChangeRequest{
		RecordID:  created.ID,
		StaffID:   "s1",
		Reason:    "started very early",
		StartTime: &proposed,
	})
	require.NoError(t, err)

	rejected, err := f.service.RejectChangeRequest(ctx, attendance.ReviewRequest{RecordID: created.ID})
	require.NoError(t, err)

	require.NotNil(t, rejected.StartTime)
	assert.Equal(t, originalStart, *rejected.StartTime)
	require.Len(t, rejected.ChangeRequests, 1)
	assert.True(t, rejected.ChangeRequests[0].Completed)
}

func TestGetMonthCoversEveryDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	require.NoError(t, err)

	now := time.Now().UTC()
	month := now.Format("2006-01")

	resp, err := f.service.GetMonth(ctx, attendance.MonthFilter{StaffID: "s1", Month: month})
	require.NoError(t, err)

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, 0).Sub(first).Hours() / 24
	assert.Len(t, resp.Days, int(daysInMonth))

	var withRecord int
	for _, day := range resp.Days {
		if day.ID != "" {
			withRecord++
			assert.Equal(t, now.Format("2006-01-02"), day.WorkDate)
		}
	}
	assert.Equal(t, 1, withRecord)
}

func TestGetDayWithoutRecord(t *testing.T) {
	f := newFixture()

	// a far-future day has no record and classifies as none
	resp, err := f.service.GetDay(context.Background(), "s1", "2099-01-04")
	require.NoError(t, err)
	assert.Empty(t, resp.ID)
	assert.Equal(t, string(attendance.StatusNone), resp.Status)
}

func TestFetchOneConflictSurfaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// two rows for the same staff and day is a data fault, not a state
	now := time.Now().UTC()
	workDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := f.records.Create(ctx, attendance.Record{StaffID: "s1", WorkDate: workDate})
		require.NoError(t, err)
	}

	_, err := f.service.ClockIn(ctx, attendance.ClockRequest{StaffID: "s1", At: todayAt(9, 0)})
	assert.ErrorIs(t, err, attendance.ErrRecordConflict)
}
