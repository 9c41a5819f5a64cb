package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
	"github.com/kintai-cloud/kintai-backend-go/internal/repository/postgresql"
)

var (
	testDB     *database.DB
	testDBOnce sync.Once
)

// getTestDB connects once per run and skips the calling test when no test
// database is configured.
func getTestDB(t *testing.T) *database.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		var err error
		testDB, err = database.NewPostgreSQLDB(dsn, 4)
		if err != nil {
			panic("Failed to connect to test database: " + err.Error())
		}
		if err := testDB.Migrate(context.Background(), "../../../../migrations"); err != nil {
			panic("Failed to migrate test database: " + err.Error())
		}
	})
	return testDB
}

func truncateTables(t *testing.T, db *database.DB) {
	ctx := context.Background()
	for _, table := range []string{"attendance_records", "staffs", "holidays", "company_policy"} {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}

func createTestStaff(t *testing.T, ctx context.Context, db *database.DB) staff.Staff {
	repo := postgresql.NewStaffRepository(db)
	member, err := repo.Create(ctx, staff.Staff{
		Name:     "Test Staff",
		Email:    "test-staff@example.com",
		WorkType: staff.WorkTypeWeekday,
		Role:     staff.RoleStaff,
	})
	require.NoError(t, err)
	return member
}

func TestRecordRepositoryRoundTrip(t *testing.T) {
	db := getTestDB(t)
	truncateTables(t, db)
	ctx := context.Background()

	member := createTestStaff(t, ctx, db)
	repo := postgresql.NewRecordRepository(db)

	workDate := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, attendance.Record{
		StaffID:   member.ID,
		WorkDate:  workDate,
		StartTime: &start,
		Rests: []attendance.Rest{
			{Start: &start},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Revision)

	fetched, err := repo.FetchOne(ctx, member.ID, workDate)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.ID, fetched.ID)
	require.NotNil(t, fetched.StartTime)
	assert.True(t, fetched.StartTime.Equal(start))
	require.Len(t, fetched.Rests, 1)
	assert.Nil(t, fetched.Rests[0].End)

	missing, err := repo.FetchOne(ctx, member.ID, workDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordRepositoryRevisionGuard(t *testing.T) {
	db := getTestDB(t)
	truncateTables(t, db)
	ctx := context.Background()

	member := createTestStaff(t, ctx, db)
	repo := postgresql.NewRecordRepository(db)

	workDate := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Record{StaffID: member.ID, WorkDate: workDate})
	require.NoError(t, err)

	end := time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC)
	created.EndTime = &end
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Revision)

	// replaying with the stale revision conflicts
	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, attendance.ErrRevisionMismatch)

	// the pre-update state is on the history
	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Histories, 1)
	assert.Nil(t, reloaded.Histories[0].EndTime)
	assert.Equal(t, 1, reloaded.Histories[0].Revision)
}

func TestRecordRepositoryDuplicateDetection(t *testing.T) {
	db := getTestDB(t)
	truncateTables(t, db)
	ctx := context.Background()

	member := createTestStaff(t, ctx, db)
	repo := postgresql.NewRecordRepository(db)

	workDate := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := repo.Create(ctx, attendance.Record{StaffID: member.ID, WorkDate: workDate})
		require.NoError(t, err)
	}

	_, err := repo.FetchOne(ctx, member.ID, workDate)
	assert.ErrorIs(t, err, attendance.ErrRecordConflict)
}

func TestChangeRequestPersistence(t *testing.T) {
	db := getTestDB(t)
	truncateTables(t, db)
	ctx := context.Background()

	member := createTestStaff(t, ctx, db)
	repo := postgresql.NewRecordRepository(db)

	workDate := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Record{StaffID: member.ID, WorkDate: workDate})
	require.NoError(t, err)

	proposedStart := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	cr, err := repo.AddChangeRequest(ctx, attendance.ChangeRequest{
		RecordID:     created.ID,
		StaffID:      member.ID,
		StartTime:    &proposedStart,
		ClearEndTime: true,
		Reason:       "forgot to clock in",
		RequestedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cr.ID)

	pending, err := repo.ListPendingChangeRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Len(t, pending[0].ChangeRequests, 1)

	got := pending[0].ChangeRequests[0]
	require.NotNil(t, got.StartTime)
	assert.True(t, got.StartTime.Equal(proposedStart))
	assert.True(t, got.ClearEndTime)
	assert.False(t, got.Completed)

	// completing the request through Update empties the queue
	rec, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	rec.ChangeRequests[0].Completed = true
	_, err = repo.Update(ctx, rec)
	require.NoError(t, err)

	pending, err = repo.ListPendingChangeRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
