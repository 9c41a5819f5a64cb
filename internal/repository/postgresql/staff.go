package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

// Create implements staff.StaffRepository.
func (r *staffRepository) Create(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO staffs (name, email, work_type, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, s.Name, s.Email, s.WorkType, s.Role).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrEmailExists
		}
		return staff.Staff{}, fmt.Errorf("failed to create staff: %w", err)
	}

	return s, nil
}

// GetByID implements staff.StaffRepository.
func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, work_type, role, created_at, updated_at
		FROM staffs
		WHERE id = $1
	`

	var s staff.Staff
	err := q.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.WorkType, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff by ID: %w", err)
	}

	return s, nil
}

// List implements staff.StaffRepository.
func (r *staffRepository) List(ctx context.Context) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, work_type, role, created_at, updated_at
		FROM staffs
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query staffs: %w", err)
	}
	defer rows.Close()

	var staffs []staff.Staff
	for rows.Next() {
		var s staff.Staff
		err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.WorkType, &s.Role, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staffs = append(staffs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read staffs: %w", err)
	}

	return staffs, nil
}

// Update implements staff.StaffRepository.
func (r *staffRepository) Update(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE staffs
		SET name = $1, email = $2, work_type = $3, role = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, s.Name, s.Email, s.WorkType, s.Role, s.ID).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		if isUniqueViolation(err) {
			return staff.Staff{}, staff.ErrEmailExists
		}
		return staff.Staff{}, fmt.Errorf("failed to update staff: %w", err)
	}

	return s, nil
}

// Delete implements staff.StaffRepository.
func (r *staffRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM staffs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	if result.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
