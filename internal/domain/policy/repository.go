package policy

import "context"

// PolicyRepository manages the single company policy row.
type PolicyRepository interface {
	// Get retrieves the current policy, ErrPolicyNotFound when the company
	// has not been provisioned yet.
	Get(ctx context.Context) (Policy, error)

	// Save inserts or replaces the policy.
	Save(ctx context.Context, p Policy) (Policy, error)
}
