package donut

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formansean/ufo-timline/internal/filter"
	"github.com/formansean/ufo-timline/internal/model"
)

func evts(cats ...model.Category) []model.Event {
	out := make([]model.Event, len(cats))
	for i, c := range cats {
		out[i] = model.Event{Category: c}
	}
	return out
}

func TestAggregateAngles(t *testing.T) {
	st := filter.NewState()
	events := evts(
		model.CategoryMajorEvents, model.CategoryMajorEvents, model.CategoryMajorEvents,
		model.CategoryTech,
	)

	snap := Aggregate(events, st, 100)
	require.Len(t, snap.Segments, 2)
	assert.Equal(t, 4, snap.Total)
	assert.InDelta(t, 60.0, snap.InnerRadius, 1e-9)

	first := snap.Segments[0]
	second := snap.Segments[1]
	assert.Equal(t, model.CategoryMajorEvents, first.Category)
	assert.InDelta(t, 0, first.StartAngle, 1e-9)
	assert.InDelta(t, 2*math.Pi*0.75, first.EndAngle, 1e-9)
	assert.InDelta(t, first.EndAngle, second.StartAngle, 1e-9)
	assert.InDelta(t, 2*math.Pi, second.EndAngle, 1e-9)
	assert.Equal(t, model.CategoryColors[first.Category].Base, first.Color)
}

func TestAggregateCanonicalOrderNotCountOrder(t *testing.T) {
	st := filter.NewState()
	// Tech outnumbers Major Events but Major Events is earlier
	// in the fixed category order, so it still comes first.
	events := evts(
		model.CategoryTech, model.CategoryTech, model.CategoryTech,
		model.CategoryMajorEvents,
	)

	snap := Aggregate(events, st, 100)
	require.Len(t, snap.Segments, 2)
	assert.Equal(t, model.CategoryMajorEvents, snap.Segments[0].Category)
	assert.Equal(t, model.CategoryTech, snap.Segments[1].Category)
}

func TestAggregateSkipsInactiveCategories(t *testing.T) {
	st := filter.NewState()
	st = st.ToggleCategory(model.CategoryTech)

	snap := Aggregate(evts(model.CategoryMajorEvents, model.CategoryTech), st, 100)
	require.Len(t, snap.Segments, 1)
	assert.Equal(t, model.CategoryMajorEvents, snap.Segments[0].Category)
	assert.Equal(t, 1, snap.Total)
}

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil, filter.NewState(), 100)
	assert.Empty(t, snap.Segments)
	assert.Zero(t, snap.Total)
}

func TestInterpolateSharedSegments(t *testing.T) {
	st := filter.NewState()
	prev := Aggregate(evts(model.CategoryMajorEvents, model.CategoryTech), st, 100)
	next := Aggregate(evts(
		model.CategoryMajorEvents, model.CategoryMajorEvents, model.CategoryMajorEvents,
		model.CategoryTech,
	), st, 100)

	mid := Interpolate(prev, next, 0.5)
	require.Len(t, mid.Segments, 2)
	// Major Events moves from a half ring toward three quarters.
	wantEnd := (prev.Segments[0].EndAngle + next.Segments[0].EndAngle) / 2
	assert.InDelta(t, wantEnd, mid.Segments[0].EndAngle, 1e-9)
	assert.Equal(t, 3, mid.Total)

	assert.InDelta(t, next.Segments[0].EndAngle, Interpolate(prev, next, 1).Segments[0].EndAngle, 1e-9)
	assert.InDelta(t, prev.Segments[0].EndAngle, Interpolate(prev, next, 0).Segments[0].EndAngle, 1e-9)
}

func TestInterpolateEnteringSegmentGrows(t *testing.T) {
	st := filter.NewState()
	prev := Aggregate(evts(model.CategoryMajorEvents), st, 100)
	next := Aggregate(evts(model.CategoryMajorEvents, model.CategoryTech), st, 100)

	start := Interpolate(prev, next, 0)
	require.Len(t, start.Segments, 2)
	entering := start.Segments[1]
	assert.Equal(t, model.CategoryTech, entering.Category)
	assert.InDelta(t, entering.StartAngle, entering.EndAngle, 1e-9)

	half := Interpolate(prev, next, 0.5).Segments[1]
	assert.Greater(t, half.EndAngle-half.StartAngle, 0.0)
}

func TestInterpolateExitingSegmentCollapses(t *testing.T) {
	st := filter.NewState()
	prev := Aggregate(evts(model.CategoryMajorEvents, model.CategoryTech), st, 100)
	next := Aggregate(evts(model.CategoryMajorEvents), st, 100)

	done := Interpolate(prev, next, 1)
	require.Len(t, done.Segments, 2)
	exiting := done.Segments[1]
	assert.Equal(t, model.CategoryTech, exiting.Category)
	assert.InDelta(t, exiting.StartAngle, exiting.EndAngle, 1e-9)
}
