package staff

import (
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/validator"
)

type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	WorkType string `json:"work_type"`
	Role     string `json:"role"`
}

func (r *CreateStaffRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid address",
		})
	}

	if !validator.IsInSlice(r.WorkType, []string{string(WorkTypeWeekday), string(WorkTypeShift)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_type",
			Message: "work_type must be one of: weekday, shift",
		})
	}

	if !validator.IsInSlice(r.Role, []string{string(RoleStaff), string(RoleApprover), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: staff, approver, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateStaffRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	WorkType *string `json:"work_type,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (r *UpdateStaffRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid address",
		})
	}

	if r.WorkType != nil && !validator.IsInSlice(*r.WorkType, []string{string(WorkTypeWeekday), string(WorkTypeShift)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_type",
			Message: "work_type must be one of: weekday, shift",
		})
	}

	if r.Role != nil && !validator.IsInSlice(*r.Role, []string{string(RoleStaff), string(RoleApprover), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: staff, approver, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StaffResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	WorkType  string `json:"work_type"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
