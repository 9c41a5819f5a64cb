package staff

import (
	"context"
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
)

// Service wraps staff CRUD; there is no interface on top because nothing
// swaps the implementation.
type Service struct {
	staff.StaffRepository
}

func NewService(repo staff.StaffRepository) *Service {
	return &Service{StaffRepository: repo}
}

func (s *Service) Create(ctx context.Context, req staff.CreateStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}

	created, err := s.StaffRepository.Create(ctx, staff.Staff{
		Name:     req.Name,
		Email:    req.Email,
		WorkType: staff.WorkType(req.WorkType),
		Role:     staff.Role(req.Role),
	})
	if err != nil {
		return staff.StaffResponse{}, err
	}

	return toResponse(created), nil
}

func (s *Service) Get(ctx context.Context, id string) (staff.StaffResponse, error) {
	member, err := s.StaffRepository.GetByID(ctx, id)
	if err != nil {
		return staff.StaffResponse{}, err
	}
	return toResponse(member), nil
}

func (s *Service) List(ctx context.Context) ([]staff.StaffResponse, error) {
	members, err := s.StaffRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]staff.StaffResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, toResponse(member))
	}
	return responses, nil
}

func (s *Service) Update(ctx context.Context, req staff.UpdateStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}

	member, err := s.StaffRepository.GetByID(ctx, req.ID)
	if err != nil {
		return staff.StaffResponse{}, err
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.WorkType != nil {
		member.WorkType = staff.WorkType(*req.WorkType)
	}
	if req.Role != nil {
		member.Role = staff.Role(*req.Role)
	}

	updated, err := s.StaffRepository.Update(ctx, member)
	if err != nil {
		return staff.StaffResponse{}, err
	}
	return toResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.StaffRepository.Delete(ctx, id)
}

func toResponse(member staff.Staff) staff.StaffResponse {
	return staff.StaffResponse{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		WorkType:  string(member.WorkType),
		Role:      string(member.Role),
		CreatedAt: member.CreatedAt.Format(time.RFC3339),
		UpdatedAt: member.UpdatedAt.Format(time.RFC3339),
	}
}
