package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}

// Get implements policy.PolicyRepository.
func (r *policyRepository) Get(ctx context.Context) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, expected_start, expected_end, grace_minutes,
			auto_break_after_minutes, quick_inputs, created_at, updated_at
		FROM company_policy
	`

	var p policy.Policy
	err := q.QueryRow(ctx, query).Scan(
		&p.ID, &p.ExpectedStart, &p.ExpectedEnd, &p.GraceMinutes,
		&p.AutoBreakAfterMinutes, &p.QuickInputs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, fmt.Errorf("failed to get company policy: %w", err)
	}

	return p, nil
}

// Save implements policy.PolicyRepository. The table holds a single row,
// pinned by the singleton column's unique constraint.
func (r *policyRepository) Save(ctx context.Context, p policy.Policy) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO company_policy (
			singleton, expected_start, expected_end, grace_minutes,
			auto_break_after_minutes, quick_inputs
		) VALUES (true, $1, $2, $3, $4, $5)
		ON CONFLICT (singleton) DO UPDATE SET
			expected_start = EXCLUDED.expected_start,
			expected_end = EXCLUDED.expected_end,
			grace_minutes = EXCLUDED.grace_minutes,
			auto_break_after_minutes = EXCLUDED.auto_break_after_minutes,
			quick_inputs = EXCLUDED.quick_inputs,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ExpectedStart, p.ExpectedEnd, p.GraceMinutes,
		p.AutoBreakAfterMinutes, jsonSlice(p.QuickInputs),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return policy.Policy{}, fmt.Errorf("failed to save company policy: %w", err)
	}

	return p, nil
}
