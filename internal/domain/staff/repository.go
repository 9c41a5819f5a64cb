package staff

import "context"

type StaffRepository interface {
	Create(ctx context.Context, s Staff) (Staff, error)

	// GetByID retrieves one staff member, ErrStaffNotFound when missing.
	GetByID(ctx context.Context, id string) (Staff, error)

	List(ctx context.Context) ([]Staff, error)
	Update(ctx context.Context, s Staff) (Staff, error)
	Delete(ctx context.Context, id string) error
}
