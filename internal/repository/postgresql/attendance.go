package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
)

type recordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `
	r.id, r.staff_id, r.work_date, r.start_time, r.end_time, r.rests,
	r.go_directly, r.return_directly, r.paid_holiday, r.special_holiday,
	r.absent, r.deemed_holiday, r.substitute_date, r.remarks,
	r.system_comments, r.hourly_leaves, r.revision, r.created_at, r.updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.StaffID, &rec.WorkDate, &rec.StartTime, &rec.EndTime, &rec.Rests,
		&rec.GoDirectly, &rec.ReturnDirectly, &rec.PaidHoliday, &rec.SpecialHoliday,
		&rec.Absent, &rec.DeemedHoliday, &rec.SubstituteDate, &rec.Remarks,
		&rec.SystemComments, &rec.HourlyLeaves, &rec.Revision, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// FetchOne implements attendance.RecordRepository.
func (r *recordRepository) FetchOne(ctx context.Context, staffID string, workDate time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.staff_id = $1
		  AND r.work_date = $2
	`

	rows, err := q.Query(ctx, query, staffID, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		// fall through
	default:
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		return nil, fmt.Errorf("%w: ids %s", attendance.ErrRecordConflict, strings.Join(ids, ", "))
	}

	rec := records[0]
	if err := r.attachRelations(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID implements attendance.RecordRepository.
func (r *recordRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `,
			s.name AS staff_name
		FROM attendance_records r
		LEFT JOIN staffs s ON s.id = r.staff_id
		WHERE r.id = $1
	`

	var rec attendance.Record
	err := q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.StaffID, &rec.WorkDate, &rec.StartTime, &rec.EndTime, &rec.Rests,
		&rec.GoDirectly, &rec.ReturnDirectly, &rec.PaidHoliday, &rec.SpecialHoliday,
		&rec.Absent, &rec.DeemedHoliday, &rec.SubstituteDate, &rec.Remarks,
		&rec.SystemComments, &rec.HourlyLeaves, &rec.Revision, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.StaffName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	if err := r.attachRelations(ctx, &rec); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

// Create implements attendance.RecordRepository.
func (r *recordRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	// Revision always starts at 1; whatever the caller supplied is ignored.
	rec.Revision = 1

	query := `
		INSERT INTO attendance_records (
			staff_id, work_date, start_time, end_time, rests,
			go_directly, return_directly, paid_holiday, special_holiday,
			absent, deemed_holiday, substitute_date, remarks,
			system_comments, hourly_leaves, revision
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.StaffID,
		rec.WorkDate,
		rec.StartTime,
		rec.EndTime,
		jsonSlice(rec.Rests),
		rec.GoDirectly,
		rec.ReturnDirectly,
		rec.PaidHoliday,
		rec.SpecialHoliday,
		rec.Absent,
		rec.DeemedHoliday,
		rec.SubstituteDate,
		rec.Remarks,
		jsonSlice(rec.SystemComments),
		jsonSlice(rec.HourlyLeaves),
		rec.Revision,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// Update implements attendance.RecordRepository. The revision condition is
// part of the UPDATE's WHERE clause, so the stale-write check is enforced by
// the database rather than by a re-fetch-then-compare on the client.
func (r *recordRepository) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	var updated attendance.Record

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		current, err := r.lockCurrent(ctx, rec.ID)
		if err != nil {
			return err
		}
		if current.Revision != rec.Revision {
			return fmt.Errorf("stored revision %d, submitted revision %d: %w",
				current.Revision, rec.Revision, attendance.ErrRevisionMismatch)
		}

		if err := r.appendHistory(ctx, current.Snapshot(time.Now().UTC())); err != nil {
			return err
		}

		query := `
			UPDATE attendance_records SET
				start_time = $1, end_time = $2, rests = $3,
				go_directly = $4, return_directly = $5,
				paid_holiday = $6, special_holiday = $7,
				absent = $8, deemed_holiday = $9,
				substitute_date = $10, remarks = $11,
				system_comments = $12, hourly_leaves = $13,
				revision = revision + 1, updated_at = NOW()
			WHERE id = $14 AND revision = $15
			RETURNING revision, updated_at
		`

		err = q.QueryRow(ctx, query,
			rec.StartTime, rec.EndTime, jsonSlice(rec.Rests),
			rec.GoDirectly, rec.ReturnDirectly,
			rec.PaidHoliday, rec.SpecialHoliday,
			rec.Absent, rec.DeemedHoliday,
			rec.SubstituteDate, rec.Remarks,
			jsonSlice(rec.SystemComments), jsonSlice(rec.HourlyLeaves),
			rec.ID, rec.Revision,
		).Scan(&rec.Revision, &rec.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrRevisionMismatch
			}
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		// Change-request bookkeeping travels with the record.
		for _, cr := range rec.ChangeRequests {
			if cr.ID == "" {
				continue
			}
			_, err := q.Exec(ctx, `
				UPDATE attendance_change_requests
				SET completed = $1, review_comment = $2, reviewed_at = $3
				WHERE id = $4
			`, cr.Completed, cr.ReviewComment, cr.ReviewedAt, cr.ID)
			if err != nil {
				return fmt.Errorf("failed to update change request %s: %w", cr.ID, err)
			}
		}

		updated = rec
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	if err := r.attachRelations(ctx, &updated); err != nil {
		return attendance.Record{}, err
	}
	return updated, nil
}

func (r *recordRepository) lockCurrent(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.id = $1
		FOR UPDATE
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to lock attendance record: %w", err)
	}
	return rec, nil
}

func (r *recordRepository) appendHistory(ctx context.Context, h attendance.History) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO attendance_histories (
			record_id, start_time, end_time, rests,
			go_directly, return_directly, paid_holiday, special_holiday,
			absent, deemed_holiday, substitute_date, remarks,
			hourly_leaves, revision, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		h.RecordID, h.StartTime, h.EndTime, jsonSlice(h.Rests),
		h.GoDirectly, h.ReturnDirectly, h.PaidHoliday, h.SpecialHoliday,
		h.Absent, h.DeemedHoliday, h.SubstituteDate, h.Remarks,
		jsonSlice(h.HourlyLeaves), h.Revision, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append attendance history: %w", err)
	}
	return nil
}

// ListByMonth implements attendance.RecordRepository.
func (r *recordRepository) ListByMonth(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records r
		WHERE r.staff_id = $1
		  AND r.work_date >= $2
		  AND r.work_date < $3
		ORDER BY r.work_date ASC
	`

	rows, err := q.Query(ctx, query, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	if err := r.attachChangeRequests(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// AddChangeRequest implements attendance.RecordRepository.
func (r *recordRepository) AddChangeRequest(ctx context.Context, req attendance.ChangeRequest) (attendance.ChangeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_change_requests (
			record_id, staff_id, proposal, reason, completed, requested_at
		) VALUES ($1, $2, $3, $4, false, $5)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		req.RecordID, req.StaffID, newProposal(req), req.Reason, req.RequestedAt,
	).Scan(&req.ID)
	if err != nil {
		return attendance.ChangeRequest{}, fmt.Errorf("failed to create change request: %w", err)
	}

	return req, nil
}

// ListPendingChangeRequests implements attendance.RecordRepository.
func (r *recordRepository) ListPendingChangeRequests(ctx context.Context) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ` + recordColumns + `
		FROM attendance_records r
		JOIN attendance_change_requests c ON c.record_id = r.id
		WHERE c.completed = false
		ORDER BY r.work_date ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending change requests: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	if err := r.attachChangeRequests(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) attachRelations(ctx context.Context, rec *attendance.Record) error {
	records := []attendance.Record{*rec}
	if err := r.attachChangeRequests(ctx, records); err != nil {
		return err
	}
	histories, err := r.loadHistories(ctx, rec.ID)
	if err != nil {
		return err
	}
	records[0].Histories = histories
	*rec = records[0]
	return nil
}

func (r *recordRepository) attachChangeRequests(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT id, record_id, staff_id, proposal, reason, completed,
			review_comment, requested_at, reviewed_at
		FROM attendance_change_requests
		WHERE record_id = ANY($1)
		ORDER BY requested_at ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query change requests: %w", err)
	}
	defer rows.Close()

	byRecord := make(map[string][]attendance.ChangeRequest)
	for rows.Next() {
		var cr attendance.ChangeRequest
		var prop proposal
		err := rows.Scan(
			&cr.ID, &cr.RecordID, &cr.StaffID, &prop, &cr.Reason, &cr.Completed,
			&cr.ReviewComment, &cr.RequestedAt, &cr.ReviewedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan change request: %w", err)
		}
		prop.apply(&cr)
		byRecord[cr.RecordID] = append(byRecord[cr.RecordID], cr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read change requests: %w", err)
	}

	for i := range records {
		records[i].ChangeRequests = byRecord[records[i].ID]
	}
	return nil
}

func (r *recordRepository) loadHistories(ctx context.Context, recordID string) ([]attendance.History, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, record_id, start_time, end_time, rests,
			go_directly, return_directly, paid_holiday, special_holiday,
			absent, deemed_holiday, substitute_date, remarks,
			hourly_leaves, revision, created_at
		FROM attendance_histories
		WHERE record_id = $1
		ORDER BY created_at ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance histories: %w", err)
	}
	defer rows.Close()

	var histories []attendance.History
	for rows.Next() {
		var h attendance.History
		err := rows.Scan(
			&h.ID, &h.RecordID, &h.StartTime, &h.EndTime, &h.Rests,
			&h.GoDirectly, &h.ReturnDirectly, &h.PaidHoliday, &h.SpecialHoliday,
			&h.Absent, &h.DeemedHoliday, &h.SubstituteDate, &h.Remarks,
			&h.HourlyLeaves, &h.Revision, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance history: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance histories: %w", err)
	}

	return histories, nil
}

// proposal is the jsonb shape of a change request's proposed values. Slices
// deliberately have no omitempty: an empty array is an explicit clear and
// must survive the round trip, while null stays "no opinion".
type proposal struct {
	StartTime           *time.Time                `json:"start_time"`
	ClearStartTime      bool                      `json:"clear_start_time"`
	EndTime             *time.Time                `json:"end_time"`
	ClearEndTime        bool                      `json:"clear_end_time"`
	GoDirectly          *bool                     `json:"go_directly"`
	ReturnDirectly      *bool                     `json:"return_directly"`
	Remarks             *string                   `json:"remarks"`
	Rests               []attendance.Rest         `json:"rests"`
	PaidHoliday         *bool                     `json:"paid_holiday"`
	SpecialHoliday      *bool                     `json:"special_holiday"`
	SubstituteDate      *time.Time                `json:"substitute_date"`
	ClearSubstituteDate bool                      `json:"clear_substitute_date"`
	HourlyLeaves        []attendance.HourlyLeave  `json:"hourly_leaves"`
}

func newProposal(req attendance.ChangeRequest) proposal {
	return proposal{
		StartTime:           req.StartTime,
		ClearStartTime:      req.ClearStartTime,
		EndTime:             req.EndTime,
		ClearEndTime:        req.ClearEndTime,
		GoDirectly:          req.GoDirectly,
		ReturnDirectly:      req.ReturnDirectly,
		Remarks:             req.Remarks,
		Rests:               req.Rests,
		PaidHoliday:         req.PaidHoliday,
		SpecialHoliday:      req.SpecialHoliday,
		SubstituteDate:      req.SubstituteDate,
		ClearSubstituteDate: req.ClearSubstituteDate,
		HourlyLeaves:        req.HourlyLeaves,
	}
}

func (p proposal) apply(cr *attendance.ChangeRequest) {
	cr.StartTime = p.StartTime
	cr.ClearStartTime = p.ClearStartTime
	cr.EndTime = p.EndTime
	cr.ClearEndTime = p.ClearEndTime
	cr.GoDirectly = p.GoDirectly
	cr.ReturnDirectly = p.ReturnDirectly
	cr.Remarks = p.Remarks
	cr.Rests = p.Rests
	cr.PaidHoliday = p.PaidHoliday
	cr.SpecialHoliday = p.SpecialHoliday
	cr.SubstituteDate = p.SubstituteDate
	cr.ClearSubstituteDate = p.ClearSubstituteDate
	cr.HourlyLeaves = p.HourlyLeaves
}

// jsonSlice keeps jsonb columns non-null: a nil slice is stored as [].
func jsonSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
