package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

type RecordServiceImpl struct {
	db *database.DB
	attendance.RecordRepository
	staff.StaffRepository
	holiday.HolidayRepository
	policy.PolicyRepository
}

func NewRecordService(
	db *database.DB,
	recordRepository attendance.RecordRepository,
	staffRepository staff.StaffRepository,
	holidayRepository holiday.HolidayRepository,
	policyRepository policy.PolicyRepository,
) attendance.RecordService {
	return &RecordServiceImpl{
		db:                db,
		RecordRepository:  recordRepository,
		StaffRepository:   staffRepository,
		HolidayRepository: holidayRepository,
		PolicyRepository:  policyRepository,
	}
}

const (
	dateLayout = "2006-01-02"
)

// timePtrToString safely converts a *time.Time to an ISO8601 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func datePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClockIn implements attendance.RecordService.
func (s *RecordServiceImpl) ClockIn(ctx context.Context, req attendance.ClockRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	at := req.Time(time.Now().UTC())
	workDate := dateOnly(at)

	member, err := s.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.FetchOne(ctx, req.StaffID, workDate)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if rec == nil {
		created, err := s.RecordRepository.Create(ctx, attendance.Record{
			StaffID:    req.StaffID,
			WorkDate:   workDate,
			StartTime:  &at,
			GoDirectly: req.GoDirectly,
		})
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		return s.respondDay(ctx, member, &created, workDate)
	}

	if rec.StartTime != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyClockedIn
	}

	rec.StartTime = &at
	rec.GoDirectly = rec.GoDirectly || req.GoDirectly

	updated, err := s.RecordRepository.Update(ctx, *rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, workDate)
}

// ClockOut implements attendance.RecordService. A still-open rest interval is
// closed at the clock-out time rather than rejected; leaving it open would
// make the record incoherent with no way for the staff member to repair it
// from the clock screen.
func (s *RecordServiceImpl) ClockOut(ctx context.Context, req attendance.ClockRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	at := req.Time(time.Now().UTC())
	workDate := dateOnly(at)

	member, err := s.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.FetchOne(ctx, req.StaffID, workDate)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec == nil || rec.StartTime == nil {
		return attendance.RecordResponse{}, attendance.ErrNotClockedIn
	}
	if rec.EndTime != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyClockedOut
	}

	if idx, consistent := rec.OpenRest(); !consistent {
		return attendance.RecordResponse{}, attendance.ErrRestInconsistent
	} else if idx >= 0 {
		rec.Rests[idx].End = &at
	}

	rec.EndTime = &at
	rec.ReturnDirectly = rec.ReturnDirectly || req.ReturnDirectly

	pol := s.policyOrDefault(ctx)
	threshold := time.Duration(pol.AutoBreakAfterMinutes) * time.Minute
	if threshold > 0 && len(rec.Rests) == 0 && at.Sub(*rec.StartTime) >= threshold {
		rec.SystemComments = append(rec.SystemComments, attendance.SystemComment{
			Comment: fmt.Sprintf(
				"no rest was recorded although the working time exceeded %d minutes",
				pol.AutoBreakAfterMinutes,
			),
			CreatedAt: at,
		})
	}

	updated, err := s.RecordRepository.Update(ctx, *rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, workDate)
}

// RestStart implements attendance.RecordService.
func (s *RecordServiceImpl) RestStart(ctx context.Context, req attendance.ClockRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	at := req.Time(time.Now().UTC())
	workDate := dateOnly(at)

	member, err := s.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.FetchOne(ctx, req.StaffID, workDate)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec == nil || rec.StartTime == nil {
		return attendance.RecordResponse{}, attendance.ErrNotClockedIn
	}
	if rec.EndTime != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyClockedOut
	}

	idx, consistent := rec.OpenRest()
	if !consistent {
		return attendance.RecordResponse{}, attendance.ErrRestInconsistent
	}
	if idx >= 0 {
		return attendance.RecordResponse{}, attendance.ErrRestAlreadyOpen
	}

	rec.Rests = append(rec.Rests, attendance.Rest{Start: &at})

	updated, err := s.RecordRepository.Update(ctx, *rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, workDate)
}

// RestEnd implements attendance.RecordService.
func (s *RecordServiceImpl) RestEnd(ctx context.Context, req attendance.ClockRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	at := req.Time(time.Now().UTC())
	workDate := dateOnly(at)

	member, err := s.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.FetchOne(ctx, req.StaffID, workDate)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec == nil || rec.StartTime == nil {
		return attendance.RecordResponse{}, attendance.ErrNotClockedIn
	}

	idx, consistent := rec.OpenRest()
	if !consistent {
		return attendance.RecordResponse{}, attendance.ErrRestInconsistent
	}
	if idx < 0 {
		return attendance.RecordResponse{}, attendance.ErrRestNotOpen
	}

	rec.Rests[idx].End = &at

	updated, err := s.RecordRepository.Update(ctx, *rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, workDate)
}

// GetDay implements attendance.RecordService.
func (s *RecordServiceImpl) GetDay(ctx context.Context, staffID string, workDate string) (attendance.RecordResponse, error) {
	day, valid := validator.IsValidDate(workDate)
	if !valid {
		return attendance.RecordResponse{}, validator.ValidationErrors{{
			Field:   "work_date",
			Message: "work_date must be in YYYY-MM-DD format",
		}}
	}

	member, err := s.StaffRepository.GetByID(ctx, staffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.FetchOne(ctx, staffID, day)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, rec, day)
}

// GetMonth implements attendance.RecordService. Every calendar day of the
// month gets an entry, classified even when no record exists for it.
func (s *RecordServiceImpl) GetMonth(ctx context.Context, filter attendance.MonthFilter) (attendance.MonthResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MonthResponse{}, err
	}
	from, _ := time.ParseInLocation("2006-01", filter.Month, time.UTC)
	to := from.AddDate(0, 1, 0)

	member, err := s.StaffRepository.GetByID(ctx, filter.StaffID)
	if err != nil {
		return attendance.MonthResponse{}, err
	}

	records, err := s.RecordRepository.ListByMonth(ctx, filter.StaffID, from, to)
	if err != nil {
		return attendance.MonthResponse{}, err
	}

	env, err := s.classifyEnv(ctx, from, to)
	if err != nil {
		return attendance.MonthResponse{}, err
	}

	byDate := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byDate[rec.WorkDate.Format(dateLayout)] = rec
	}

	days := make([]attendance.RecordResponse, 0, 31)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if rec, ok := byDate[day.Format(dateLayout)]; ok {
			days = append(days, toRecordResponse(rec, env.classify(&rec, day, member)))
			continue
		}
		days = append(days, emptyDayResponse(filter.StaffID, day, env.classify(nil, day, member)))
	}

	return attendance.MonthResponse{
		StaffID: filter.StaffID,
		Month:   filter.Month,
		Days:    days,
	}, nil
}

// UpdateRecord implements attendance.RecordService.
func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if req.StartTime != nil {
		rec.StartTime = parseOptionalTime(*req.StartTime)
	}
	if req.EndTime != nil {
		rec.EndTime = parseOptionalTime(*req.EndTime)
	}
	if req.GoDirectly != nil {
		rec.GoDirectly = *req.GoDirectly
	}
	if req.ReturnDirectly != nil {
		rec.ReturnDirectly = *req.ReturnDirectly
	}
	if req.PaidHoliday != nil {
		rec.PaidHoliday = *req.PaidHoliday
	}
	if req.SpecialHoliday != nil {
		rec.SpecialHoliday = *req.SpecialHoliday
	}
	if req.Absent != nil {
		rec.Absent = *req.Absent
	}
	if req.DeemedHoliday != nil {
		rec.DeemedHoliday = *req.DeemedHoliday
	}
	if req.SubstituteDate != nil {
		rec.SubstituteDate = parseOptionalDate(*req.SubstituteDate)
	}
	if req.Remarks != nil {
		rec.Remarks = *req.Remarks
	}
	if req.Rests != nil {
		rests := make([]attendance.Rest, 0, len(req.Rests))
		for _, rv := range req.Rests {
			rest := attendance.Rest{}
			if rv.StartTime != nil {
				rest.Start = parseOptionalTime(*rv.StartTime)
			}
			if rv.EndTime != nil {
				rest.End = parseOptionalTime(*rv.EndTime)
			}
			rests = append(rests, rest)
		}
		rec.Rests = rests
	}
	if req.HourlyLeaves != nil {
		leaves := make([]attendance.HourlyLeave, 0, len(req.HourlyLeaves))
		for _, lv := range req.HourlyLeaves {
			start, okStart := validator.IsValidDateTime(lv.StartTime)
			end, okEnd := validator.IsValidDateTime(lv.EndTime)
			if !okStart || !okEnd {
				return attendance.RecordResponse{}, validator.ValidationErrors{{
					Field:   "hourly_paid_holiday_times",
					Message: "hourly leave times must be ISO8601 timestamps",
				}}
			}
			leaves = append(leaves, attendance.HourlyLeave{Start: start, End: end})
		}
		rec.HourlyLeaves = leaves
	}

	rec.Revision = req.Revision

	updated, err := s.RecordRepository.Update(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	member, err := s.StaffRepository.GetByID(ctx, updated.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, updated.WorkDate)
}

// SubmitChangeRequest implements attendance.RecordService.
func (s *RecordServiceImpl) SubmitChangeRequest(ctx context.Context, req attendance.SubmitChangeRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.GetByID(ctx, req.RecordID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	// Staff may only file requests against their own records. Not-found
	// rather than forbidden, so record IDs cannot be probed across staff.
	if rec.StaffID != req.StaffID {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}

	cr := attendance.ChangeRequest{
		RecordID:       rec.ID,
		StaffID:        req.StaffID,
		Reason:         req.Reason,
		GoDirectly:     req.GoDirectly,
		ReturnDirectly: req.ReturnDirectly,
		PaidHoliday:    req.PaidHoliday,
		SpecialHoliday: req.SpecialHoliday,
		Remarks:        req.Remarks,
		RequestedAt:    time.Now().UTC(),
	}

	if req.StartTime != nil {
		cr.StartTime = parseOptionalTime(*req.StartTime)
		cr.ClearStartTime = cr.StartTime == nil
	}
	if req.EndTime != nil {
		cr.EndTime = parseOptionalTime(*req.EndTime)
		cr.ClearEndTime = cr.EndTime == nil
	}
	if req.SubstituteDate != nil {
		cr.SubstituteDate = parseOptionalDate(*req.SubstituteDate)
		cr.ClearSubstituteDate = cr.SubstituteDate == nil
	}
	if req.Rests != nil {
		rests := make([]attendance.Rest, 0, len(req.Rests))
		for _, rv := range req.Rests {
			rest := attendance.Rest{}
			if rv.StartTime != nil {
				rest.Start = parseOptionalTime(*rv.StartTime)
			}
			if rv.EndTime != nil {
				rest.End = parseOptionalTime(*rv.EndTime)
			}
			rests = append(rests, rest)
		}
		cr.Rests = rests
	}
	if req.HourlyLeaves != nil {
		leaves := make([]attendance.HourlyLeave, 0, len(req.HourlyLeaves))
		for _, lv := range req.HourlyLeaves {
			start, okStart := validator.IsValidDateTime(lv.StartTime)
			end, okEnd := validator.IsValidDateTime(lv.EndTime)
			if !okStart || !okEnd {
				return attendance.RecordResponse{}, validator.ValidationErrors{{
					Field:   "hourly_paid_holiday_times",
					Message: "hourly leave times must be ISO8601 timestamps",
				}}
			}
			leaves = append(leaves, attendance.HourlyLeave{Start: start, End: end})
		}
		cr.HourlyLeaves = leaves
	}

	created, err := s.RecordRepository.AddChangeRequest(ctx, cr)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	rec.ChangeRequests = append(rec.ChangeRequests, created)

	member, err := s.StaffRepository.GetByID(ctx, rec.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &rec, rec.WorkDate)
}

// ApproveChangeRequest implements attendance.RecordService.
func (s *RecordServiceImpl) ApproveChangeRequest(ctx context.Context, req attendance.ReviewRequest) (attendance.RecordResponse, error) {
	return s.review(ctx, req, attendance.MergeApprove)
}

// RejectChangeRequest implements attendance.RecordService.
func (s *RecordServiceImpl) RejectChangeRequest(ctx context.Context, req attendance.ReviewRequest) (attendance.RecordResponse, error) {
	return s.review(ctx, req, attendance.MergeReject)
}

func (s *RecordServiceImpl) review(
	ctx context.Context,
	req attendance.ReviewRequest,
	merge func(attendance.Record, string, time.Time) (attendance.Record, error),
) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.RecordRepository.GetByID(ctx, req.RecordID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if req.Revision > 0 && req.Revision != rec.Revision {
		return attendance.RecordResponse{}, attendance.ErrRevisionMismatch
	}

	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}

	merged, err := merge(rec, comment, time.Now().UTC())
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	updated, err := s.RecordRepository.Update(ctx, merged)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	member, err := s.StaffRepository.GetByID(ctx, updated.StaffID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.respondDay(ctx, member, &updated, updated.WorkDate)
}

// ListPendingChangeRequests implements attendance.RecordService. Every record
// in the queue has a pending request, so classification is Requesting by
// construction and is not recomputed.
func (s *RecordServiceImpl) ListPendingChangeRequests(ctx context.Context) ([]attendance.RecordResponse, error) {
	records, err := s.RecordRepository.ListPendingChangeRequests(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]*string)
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		name, ok := names[rec.StaffID]
		if !ok {
			member, err := s.StaffRepository.GetByID(ctx, rec.StaffID)
			if err != nil && !errors.Is(err, staff.ErrStaffNotFound) {
				return nil, err
			}
			if err == nil {
				name = &member.Name
			}
			names[rec.StaffID] = name
		}
		rec.StaffName = name
		responses = append(responses, toRecordResponse(rec, attendance.StatusRequesting))
	}

	return responses, nil
}

// classifyEnv snapshots the classifier's read dependencies for a date range.
type classifyEnv struct {
	holidays        holiday.DateSet
	companyHolidays holiday.DateSet
	policy          policy.Policy
	today           time.Time
}

func (e classifyEnv) classify(rec *attendance.Record, workDate time.Time, member staff.Staff) attendance.Status {
	return attendance.Classify(attendance.ClassifyInput{
		Record:          rec,
		WorkDate:        workDate,
		Staff:           member,
		Holidays:        e.holidays,
		CompanyHolidays: e.companyHolidays,
		Policy:          e.policy,
		Today:           e.today,
	})
}

func (s *RecordServiceImpl) classifyEnv(ctx context.Context, from, to time.Time) (classifyEnv, error) {
	public, err := s.HolidayRepository.ListRange(ctx, holiday.KindPublic, from, to)
	if err != nil {
		return classifyEnv{}, err
	}
	company, err := s.HolidayRepository.ListRange(ctx, holiday.KindCompany, from, to)
	if err != nil {
		return classifyEnv{}, err
	}
	return classifyEnv{
		holidays:        holiday.NewDateSet(public),
		companyHolidays: holiday.NewDateSet(company),
		policy:          s.policyOrDefault(ctx),
		today:           dateOnly(time.Now().UTC()),
	}, nil
}

func (s *RecordServiceImpl) policyOrDefault(ctx context.Context) policy.Policy {
	pol, err := s.PolicyRepository.Get(ctx)
	if err != nil {
		return policy.Default()
	}
	return pol
}

func (s *RecordServiceImpl) respondDay(ctx context.Context, member staff.Staff, rec *attendance.Record, workDate time.Time) (attendance.RecordResponse, error) {
	env, err := s.classifyEnv(ctx, workDate, workDate.AddDate(0, 0, 1))
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	status := env.classify(rec, workDate, member)

	if rec == nil {
		return emptyDayResponse(member.ID, workDate, status), nil
	}
	if rec.StaffName == nil {
		rec.StaffName = &member.Name
	}
	return toRecordResponse(*rec, status), nil
}

func parseOptionalTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(value)
	if !ok {
		return nil
	}
	return &t
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, ok := validator.IsValidDate(value)
	if !ok {
		return nil
	}
	return &t
}

func emptyDayResponse(staffID string, workDate time.Time, status attendance.Status) attendance.RecordResponse {
	return attendance.RecordResponse{
		StaffID:        staffID,
		WorkDate:       workDate.Format(dateLayout),
		Rests:          []attendance.RestView{},
		SystemComments: []attendance.SystemCommentView{},
		HourlyLeaves:   []attendance.HourlyLeaveView{},
		ChangeRequests: []attendance.ChangeRequestView{},
		Status:         string(status),
	}
}

func toRecordResponse(rec attendance.Record, status attendance.Status) attendance.RecordResponse {
	rests := make([]attendance.RestView, 0, len(rec.Rests))
	for _, rest := range rec.Rests {
		rests = append(rests, attendance.RestView{
			Start: timePtrToString(rest.Start),
			End:   timePtrToString(rest.End),
		})
	}

	comments := make([]attendance.SystemCommentView, 0, len(rec.SystemComments))
	for _, sc := range rec.SystemComments {
		comments = append(comments, attendance.SystemCommentView{
			Comment:   sc.Comment,
			Confirmed: sc.Confirmed,
			CreatedAt: sc.CreatedAt.Format(time.RFC3339),
		})
	}

	leaves := make([]attendance.HourlyLeaveView, 0, len(rec.HourlyLeaves))
	for _, hl := range rec.HourlyLeaves {
		leaves = append(leaves, attendance.HourlyLeaveView{
			Start: hl.Start.Format(time.RFC3339),
			End:   hl.End.Format(time.RFC3339),
		})
	}

	requests := make([]attendance.ChangeRequestView, 0, len(rec.ChangeRequests))
	for _, cr := range rec.ChangeRequests {
		requests = append(requests, attendance.ChangeRequestView{
			ID:            cr.ID,
			Reason:        cr.Reason,
			Completed:     cr.Completed,
			ReviewComment: cr.ReviewComment,
			RequestedAt:   cr.RequestedAt.Format(time.RFC3339),
			ReviewedAt:    timePtrToString(cr.ReviewedAt),
		})
	}

	return attendance.RecordResponse{
		ID:             rec.ID,
		StaffID:        rec.StaffID,
		StaffName:      rec.StaffName,
		WorkDate:       rec.WorkDate.Format(dateLayout),
		StartTime:      timePtrToString(rec.StartTime),
		EndTime:        timePtrToString(rec.EndTime),
		Rests:          rests,
		GoDirectly:     rec.GoDirectly,
		ReturnDirectly: rec.ReturnDirectly,
		PaidHoliday:    rec.PaidHoliday,
		SpecialHoliday: rec.SpecialHoliday,
		Absent:         rec.Absent,
		DeemedHoliday:  rec.DeemedHoliday,
		SubstituteDate: datePtrToString(rec.SubstituteDate),
		Remarks:        rec.Remarks,
		SystemComments: comments,
		HourlyLeaves:   leaves,
		ChangeRequests: requests,
		Revision:       rec.Revision,
		Status:         string(status),
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      rec.UpdatedAt.Format(time.RFC3339),
	}
}
