package services

import (
	"context"
	"time"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/store"
)

// Stats summarizes the dataset for the admin dashboard.
type Stats struct {
	Total      int                    `json:"total"`
	ByCategory map[model.Category]int `json:"byCategory"`
	WithCoords int                    `json:"withCoordinates"`
	DeepDives  int                    `json:"deepDives"`
	Undated    int                    `json:"undated"`
	MostRecent *model.Event           `json:"mostRecent,omitempty"`
}

// StatsService computes dataset summaries.
type StatsService struct {
	store store.Store
}

func NewStatsService(s store.Store) *StatsService {
	return &StatsService{store: s}
}

func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	events, err := s.store.Events().All(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{
		Total:      len(events),
		ByCategory: make(map[model.Category]int),
	}
	var latest time.Time
	for i := range events {
		ev := events[i]
		out.ByCategory[ev.Category]++
		if _, _, ok := ev.Coordinates(); ok {
			out.WithCoords++
		}
		if ev.HasDeepDive() {
			out.DeepDives++
		}
		when, err := ev.When()
		if err != nil {
			out.Undated++
			continue
		}
		if when.After(latest) {
			latest = when
			out.MostRecent = &events[i]
		}
	}
	return out, nil
}
