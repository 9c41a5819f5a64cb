package holiday

import (
	"context"
	"time"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/holiday"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

// Service manages both the public and company holiday calendars; Kind picks
// the calendar on every call.
type Service struct {
	holiday.HolidayRepository
}

func NewService(repo holiday.HolidayRepository) *Service {
	return &Service{HolidayRepository: repo}
}

const dateLayout = "2006-01-02"

func (s *Service) Create(ctx context.Context, kind holiday.Kind, req holiday.UpsertHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	date, _ := validator.IsValidDate(req.HolidayDate)

	created, err := s.HolidayRepository.Create(ctx, kind, holiday.Holiday{
		HolidayDate: date,
		Name:        req.Name,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return toResponse(created), nil
}

func (s *Service) List(ctx context.Context, kind holiday.Kind) ([]holiday.HolidayResponse, error) {
	holidays, err := s.HolidayRepository.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	responses := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, toResponse(h))
	}
	return responses, nil
}

func (s *Service) Update(ctx context.Context, kind holiday.Kind, req holiday.UpsertHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	date, _ := validator.IsValidDate(req.HolidayDate)

	updated, err := s.HolidayRepository.Update(ctx, kind, holiday.Holiday{
		ID:          req.ID,
		HolidayDate: date,
		Name:        req.Name,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return toResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, kind holiday.Kind, id string) error {
	return s.HolidayRepository.Delete(ctx, kind, id)
}

func toResponse(h holiday.Holiday) holiday.HolidayResponse {
	return holiday.HolidayResponse{
		ID:          h.ID,
		HolidayDate: h.HolidayDate.Format(dateLayout),
		Name:        h.Name,
		CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   h.UpdatedAt.Format(time.RFC3339),
	}
}
