package services

import (
	"context"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/store"
)

// EventService orchestrates event use cases over the store.
type EventService struct {
	store store.Store
}

func NewEventService(s store.Store) *EventService {
	return &EventService{store: s}
}

// EventPage is one page of a listing plus the paging envelope.
type EventPage struct {
	Events     []model.Event `json:"events"`
	TotalCount int           `json:"totalCount"`
	HasMore    bool          `json:"hasMore"`
}

// List returns one page of events matching q.
func (s *EventService) List(ctx context.Context, q store.ListQuery) (*EventPage, error) {
	events, total, err := s.store.Events().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &EventPage{
		Events:     events,
		TotalCount: total,
		HasMore:    q.Offset+len(events) < total,
	}, nil
}

// All returns the full dataset for the filter engine and views.
func (s *EventService) All(ctx context.Context) ([]model.Event, error) {
	return s.store.Events().All(ctx)
}

func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.store.Events().Get(ctx, id)
}

func (s *EventService) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	return s.store.Events().Create(ctx, ev)
}

func (s *EventService) Update(ctx context.Context, ev *model.Event) (*model.Event, error) {
	return s.store.Events().Update(ctx, ev)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.store.Events().Delete(ctx, id)
}

// Rate records a one-shot like or dislike and returns the updated counts.
func (s *EventService) Rate(ctx context.Context, id string, like bool) (*model.Event, error) {
	if like {
		return s.store.Events().Rate(ctx, id, 1, 0)
	}
	return s.store.Events().Rate(ctx, id, 0, 1)
}

// SubmitRating adapts the store's delta semantics to the session layer's
// optimistic-update hook, so a vote switch lands as one write.
func (s *EventService) SubmitRating(ctx context.Context, id string, likeDelta, dislikeDelta int) (likes, dislikes int, err error) {
	ev, err := s.store.Events().Rate(ctx, id, likeDelta, dislikeDelta)
	if err != nil {
		return 0, 0, err
	}
	return ev.Likes, ev.Dislikes, nil
}
