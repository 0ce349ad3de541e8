package store

import (
	"context"

	"github.com/formansean/ufo-timline/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (memory, sqlite).
type Store interface {
	Events() Events
	Close() error
}

// ListQuery narrows and pages an event listing. A zero value lists
// everything.
type ListQuery struct {
	Category model.Category
	Search   string
	Limit    int
	Offset   int
}

// Events is the event collection. Create mints an ID when the event has
// none and validates before writing; lookups are by surrogate ID.
type Events interface {
	All(ctx context.Context) ([]model.Event, error)
	List(ctx context.Context, q ListQuery) (events []model.Event, total int, err error)
	Get(ctx context.Context, id string) (*model.Event, error)
	Create(ctx context.Context, ev *model.Event) (*model.Event, error)
	Update(ctx context.Context, ev *model.Event) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	// Rate applies vote deltas to the engagement counters. A fresh vote
	// is (+1, 0) or (0, +1); switching an earlier vote pairs the new +1
	// with a -1 on the opposite counter. Counters never drop below zero.
	Rate(ctx context.Context, id string, likeDelta, dislikeDelta int) (*model.Event, error)
}
