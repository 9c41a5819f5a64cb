package holiday

import (
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

type UpsertHolidayRequest struct {
	ID          string `json:"-"`
	HolidayDate string `json:"holiday_date"` // YYYY-MM-DD
	Name        string `json:"name"`
}

func (r *UpsertHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.HolidayDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "holiday_date",
			Message: "holiday_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HolidayResponse struct {
	ID          string `json:"id"`
	HolidayDate string `json:"holiday_date"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
