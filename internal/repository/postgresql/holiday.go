package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepository) Create(ctx context.Context, kind holiday.Kind, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (kind, holiday_date, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, kind, h.HolidayDate, h.Name).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.Holiday{}, holiday.ErrDateExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return h, nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepository) GetByID(ctx context.Context, kind holiday.Kind, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, holiday_date, name, created_at, updated_at
		FROM holidays
		WHERE kind = $1 AND id = $2
	`

	var h holiday.Holiday
	err := q.QueryRow(ctx, query, kind, id).
		Scan(&h.ID, &h.HolidayDate, &h.Name, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to get holiday by ID: %w", err)
	}

	return h, nil
}

// List implements holiday.HolidayRepository.
func (r *holidayRepository) List(ctx context.Context, kind holiday.Kind) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, holiday_date, name, created_at, updated_at
		FROM holidays
		WHERE kind = $1
		ORDER BY holiday_date ASC
	`

	rows, err := q.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	return collectHolidays(rows)
}

// ListRange implements holiday.HolidayRepository.
func (r *holidayRepository) ListRange(ctx context.Context, kind holiday.Kind, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, holiday_date, name, created_at, updated_at
		FROM holidays
		WHERE kind = $1
		  AND holiday_date >= $2
		  AND holiday_date < $3
		ORDER BY holiday_date ASC
	`

	rows, err := q.Query(ctx, query, kind, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	return collectHolidays(rows)
}

// Update implements holiday.HolidayRepository.
func (r *holidayRepository) Update(ctx context.Context, kind holiday.Kind, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE holidays
		SET holiday_date = $1, name = $2, updated_at = NOW()
		WHERE kind = $3 AND id = $4
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, h.HolidayDate, h.Name, kind, h.ID).
		Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		if isUniqueViolation(err) {
			return holiday.Holiday{}, holiday.ErrDateExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to update holiday: %w", err)
	}

	return h, nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepository) Delete(ctx context.Context, kind holiday.Kind, id string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM holidays WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if result.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}

	return nil
}

func collectHolidays(rows pgx.Rows) ([]holiday.Holiday, error) {
	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		err := rows.Scan(&h.ID, &h.HolidayDate, &h.Name, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read holidays: %w", err)
	}
	return holidays, nil
}
