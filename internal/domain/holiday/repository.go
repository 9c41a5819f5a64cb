package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, kind Kind, h Holiday) (Holiday, error)
	GetByID(ctx context.Context, kind Kind, id string) (Holiday, error)
	List(ctx context.Context, kind Kind) ([]Holiday, error)

	// ListRange retrieves holidays with from <= date < to, for building the
	// classifier's date sets.
	ListRange(ctx context.Context, kind Kind, from, to time.Time) ([]Holiday, error)

	Update(ctx context.Context, kind Kind, h Holiday) (Holiday, error)
	Delete(ctx context.Context, kind Kind, id string) error
}
