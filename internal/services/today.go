package services

import (
	"context"
	"time"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/selection"
	"github.com/formansean/ufo-timline/internal/store"
)

// TodayService surfaces events whose anniversary falls on a given day.
type TodayService struct {
	store store.Store
}

func NewTodayService(s store.Store) *TodayService {
	return &TodayService{store: s}
}

// OnThisDay returns events that happened on now's month and day, oldest
// first. Undated events never match.
func (s *TodayService) OnThisDay(ctx context.Context, now time.Time) ([]model.Event, error) {
	events, err := s.store.Events().All(ctx)
	if err != nil {
		return nil, err
	}
	var matched []model.Event
	for i := range events {
		when, err := events[i].When()
		if err != nil {
			continue
		}
		if when.Month() == now.Month() && when.Day() == now.Day() {
			matched = append(matched, events[i])
		}
	}
	return selection.Chronological(matched), nil
}

// TodayPage is the on-this-day view model: matches oldest first with years
// elapsed, plus the highest-scoring match featured.
type TodayPage struct {
	Events   []TodayEvent `json:"events"`
	Featured *model.Event `json:"featured,omitempty"`
}

type TodayEvent struct {
	model.Event
	YearsAgo int `json:"yearsAgo"`
}

func (s *TodayService) Page(ctx context.Context, now time.Time) (*TodayPage, error) {
	matched, err := s.OnThisDay(ctx, now)
	if err != nil {
		return nil, err
	}
	page := &TodayPage{Events: make([]TodayEvent, 0, len(matched))}
	best := -1.0
	for i := range matched {
		when, err := matched[i].When()
		if err != nil {
			continue
		}
		page.Events = append(page.Events, TodayEvent{
			Event:    matched[i],
			YearsAgo: now.Year() - when.Year(),
		})
		if score := matched[i].Score(); score > best {
			best = score
			page.Featured = &matched[i]
		}
	}
	return page, nil
}
