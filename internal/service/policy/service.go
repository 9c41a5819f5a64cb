package policy

import (
	"context"
	"errors"
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/policy"
)

// Service exposes the company policy. Get falls back to the defaults when
// the company has not saved a policy yet, so the clock screen always has
// expected hours and quick inputs to show.
type Service struct {
	policy.PolicyRepository
}

func NewService(repo policy.PolicyRepository) *Service {
	return &Service{PolicyRepository: repo}
}

func (s *Service) Get(ctx context.Context) (policy.PolicyResponse, error) {
	pol, err := s.PolicyRepository.Get(ctx)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return toResponse(policy.Default()), nil
		}
		return policy.PolicyResponse{}, err
	}
	return toResponse(pol), nil
}

func (s *Service) Update(ctx context.Context, req policy.UpdatePolicyRequest) (policy.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return policy.PolicyResponse{}, err
	}

	saved, err := s.PolicyRepository.Save(ctx, policy.Policy{
		ExpectedStart:         req.ExpectedStart,
		ExpectedEnd:           req.ExpectedEnd,
		GraceMinutes:          req.GraceMinutes,
		AutoBreakAfterMinutes: req.AutoBreakAfterMinutes,
		QuickInputs:           req.QuickInputs,
	})
	if err != nil {
		return policy.PolicyResponse{}, err
	}
	return toResponse(saved), nil
}

func toResponse(pol policy.Policy) policy.PolicyResponse {
	resp := policy.PolicyResponse{
		ExpectedStart:         pol.ExpectedStart,
		ExpectedEnd:           pol.ExpectedEnd,
		GraceMinutes:          pol.GraceMinutes,
		AutoBreakAfterMinutes: pol.AutoBreakAfterMinutes,
		QuickInputs:           pol.QuickInputs,
	}
	if !pol.UpdatedAt.IsZero() {
		resp.UpdatedAt = pol.UpdatedAt.Format(time.RFC3339)
	}
	if resp.QuickInputs == nil {
		resp.QuickInputs = []policy.QuickInput{}
	}
	return resp
}
