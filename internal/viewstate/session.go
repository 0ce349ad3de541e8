// Package viewstate holds the per-session interaction state: the active
// filters, the selection, the timeline transform, the globe driver, and
// the favorites profile. Every mutation goes through a session method so
// the visible event set is recomputed exactly once per change and all
// views derive from the same snapshot.
package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/formansean/ufo-timline/internal/donut"
	"github.com/formansean/ufo-timline/internal/favorites"
	"github.com/formansean/ufo-timline/internal/filter"
	"github.com/formansean/ufo-timline/internal/globe"
	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/selection"
	"github.com/formansean/ufo-timline/internal/timeline"
)

// SearchDebounceDelay is the quiet period before a typed search term is
// committed to the filter state.
const SearchDebounceDelay = 300 * time.Millisecond

// Source supplies the current full event set. Sessions re-fetch it
// wholesale on every recompute so a reloaded dataset is picked up without
// session churn.
type Source func() []model.Event

// RatingSubmitter persists vote deltas and returns the authoritative
// counts. A fresh vote is (+1, 0) or (0, +1); a switched vote pairs the
// +1 with a -1 on the counter being abandoned.
type RatingSubmitter interface {
	SubmitRating(ctx context.Context, eventID string, likeDelta, dislikeDelta int) (likes, dislikes int, err error)
}

type ratingCounts struct {
	likes    int
	dislikes int
}

// Session is one client's view state. All methods are safe for
// concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	source   Source
	state    filter.State
	visible  []model.Event
	ratings  map[string]ratingCounts
	votes    map[string]bool
	favs     *favorites.Registry
	favPath  string
	sel      *selection.Coordinator
	axis     timeline.Axis
	tr       timeline.Transform
	driver   *globe.Driver
	debounce *filter.Debouncer
	version  uint64
	touched  time.Time
}

// NewSession builds a session over source with a timeline of the given
// pixel width and a globe of the given size.
func NewSession(id string, source Source, width, globeSize float64, now time.Time) *Session {
	s := &Session{
		ID:      id,
		source:  source,
		state:   filter.NewState(),
		ratings: make(map[string]ratingCounts),
		votes:   make(map[string]bool),
		favs:    favorites.NewRegistry(),
		axis:    timeline.NewAxis(width, now),
		tr:      timeline.Identity,
		driver:  globe.NewDriver(globeSize, now),
		touched: now,
	}
	s.sel = selection.NewCoordinator(s.driver)
	s.debounce = filter.NewDebouncer(SearchDebounceDelay, s.commitSearch)
	s.mu.Lock()
	s.recompute()
	s.mu.Unlock()
	return s
}

// recompute re-fetches the dataset, applies the rating overlay and the
// current filter state, and bumps the version. Callers hold s.mu.
func (s *Session) recompute() {
	events := s.source()
	if len(s.ratings) > 0 {
		patched := make([]model.Event, len(events))
		copy(patched, events)
		for i := range patched {
			if rc, ok := s.ratings[patched[i].ID]; ok {
				patched[i].Likes = rc.likes
				patched[i].Dislikes = rc.dislikes
			}
		}
		events = patched
	}
	s.visible = filter.Apply(events, s.state, s.favs)
	s.version++
}

// Version increments on every visible-set change. Pollers compare it to
// skip redundant redraws.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Visible returns a copy of the current filtered, score-ordered event set.
func (s *Session) Visible() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.visible))
	copy(out, s.visible)
	return out
}

// FilterState returns the current filter snapshot.
func (s *Session) FilterState() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Touch records activity for idle expiry.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// SetSearch schedules term for commit after the debounce window. Rapid
// keystrokes collapse into one recompute.
func (s *Session) SetSearch(term string) { s.debounce.Set(term) }

// FlushSearch commits any pending search term immediately.
func (s *Session) FlushSearch() { s.debounce.Flush() }

func (s *Session) commitSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithSearch(term)
	s.recompute()
}

// ToggleCategory flips one category's active flag.
func (s *Session) ToggleCategory(c model.Category) {
	s.mutate(func() { s.state = s.state.ToggleCategory(c) })
}

// SoloCategory activates exactly one category.
func (s *Session) SoloCategory(c model.Category) {
	s.mutate(func() { s.state = s.state.SoloCategory(c) })
}

// AllCategories reactivates every category.
func (s *Session) AllCategories() {
	s.mutate(func() { s.state = s.state.AllCategories() })
}

// ToggleCraftType flips one craft-type filter value.
func (s *Session) ToggleCraftType(t string) {
	s.mutate(func() { s.state = s.state.ToggleCraftType(t) })
}

// ToggleEntityType flips one entity-type filter value.
func (s *Session) ToggleEntityType(t string) {
	s.mutate(func() { s.state = s.state.ToggleEntityType(t) })
}

// ToggleFavoriteColor flips one favorites color in the filter.
func (s *Session) ToggleFavoriteColor(c favorites.Color) {
	s.mutate(func() { s.state = s.state.ToggleFavoriteColor(c) })
}

func (s *Session) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.recompute()
}

// adoptFavorites replaces the registry with saved marks and keeps
// writing changes back to path.
func (s *Session) adoptFavorites(r *favorites.Registry, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favs = r
	s.favPath = path
	s.recompute()
}

// ToggleFavorite marks the event with color, or unmarks it when it
// already carries that color. Marking with a different color moves it.
// With persistence configured the updated marks are written through
// before the call returns.
func (s *Session) ToggleFavorite(color favorites.Color, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.favs.ColorOf(eventID); ok && cur == color {
		s.favs.Unmark(eventID)
	} else if err := s.favs.Mark(color, eventID); err != nil {
		return err
	}
	if s.favPath != "" {
		if err := s.favs.Save(s.favPath); err != nil {
			return errors.Wrap(err, "save favorites")
		}
	}
	s.recompute()
	return nil
}

// Favorites exposes the session's favorites registry for persistence.
func (s *Session) Favorites() *favorites.Registry { return s.favs }

// Select makes the visible event with the given ID active and recenters
// the globe on it.
func (s *Session) Select(eventID string, now time.Time) error {
	s.mu.Lock()
	var target *model.Event
	for i := range s.visible {
		if s.visible[i].ID == eventID {
			target = &s.visible[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return errors.Wrapf(model.ErrNotFound, "event %q not in visible set", eventID)
	}
	ev := *target
	s.version++
	s.mu.Unlock()

	s.sel.Select(ev, now)
	return nil
}

// ClearSelection deselects and resumes globe auto-rotation.
func (s *Session) ClearSelection(now time.Time) {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
	s.sel.Clear(now)
}

// Selected returns the active event ID, or "".
func (s *Session) Selected() string { return s.sel.Selected() }

// SelectNext advances the selection chronologically. At the last visible
// event it is a no-op and reports false.
func (s *Session) SelectNext(now time.Time) bool {
	next := s.sel.Next(s.Visible())
	if next == nil {
		return false
	}
	return s.Select(next.ID, now) == nil
}

// SelectPrev is SelectNext's mirror.
func (s *Session) SelectPrev(now time.Time) bool {
	prev := s.sel.Prev(s.Visible())
	if prev == nil {
		return false
	}
	return s.Select(prev.ID, now) == nil
}

// Rate applies a like or dislike optimistically, then submits it. The
// session holds one vote per event: repeating the same vote is a no-op,
// and voting the other way moves the vote, adjusting both counters. On
// submission failure the counts and the vote revert and the error is
// returned.
func (s *Session) Rate(ctx context.Context, submit RatingSubmitter, eventID string, like bool) error {
	s.mu.Lock()
	var cur *model.Event
	for i := range s.visible {
		if s.visible[i].ID == eventID {
			cur = &s.visible[i]
			break
		}
	}
	if cur == nil {
		s.mu.Unlock()
		return errors.Wrapf(model.ErrNotFound, "event %q not in visible set", eventID)
	}
	prevVote, voted := s.votes[eventID]
	if voted && prevVote == like {
		s.mu.Unlock()
		return nil
	}
	likeDelta, dislikeDelta := 0, 0
	if like {
		likeDelta = 1
	} else {
		dislikeDelta = 1
	}
	if voted {
		// Moving the vote takes the earlier one back.
		if prevVote {
			likeDelta--
		} else {
			dislikeDelta--
		}
	}
	prev, hadPrev := s.ratings[eventID]
	s.ratings[eventID] = ratingCounts{
		likes:    cur.Likes + likeDelta,
		dislikes: cur.Dislikes + dislikeDelta,
	}
	s.votes[eventID] = like
	s.recompute()
	s.mu.Unlock()

	likes, dislikes, err := submit.SubmitRating(ctx, eventID, likeDelta, dislikeDelta)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if hadPrev {
			s.ratings[eventID] = prev
		} else {
			delete(s.ratings, eventID)
		}
		if voted {
			s.votes[eventID] = prevVote
		} else {
			delete(s.votes, eventID)
		}
		s.recompute()
		return errors.Wrap(err, "submit rating")
	}
	s.ratings[eventID] = ratingCounts{likes: likes, dislikes: dislikes}
	s.recompute()
	return nil
}

// Globe exposes the rotation driver for drag, zoom, and tick handling.
func (s *Session) Globe() *globe.Driver { return s.driver }

// TimelineZoom applies one discrete wheel step about the viewport center.
func (s *Session) TimelineZoom(in bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr = s.tr.WheelZoom(in, s.axis.Width)
}

// TimelinePan shifts the view horizontally by dx pixels.
func (s *Session) TimelinePan(dx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr = s.tr.Pan(dx).Clamp(s.axis.Width)
}

// TimelineZoomToDecade frames one decade edge to edge.
func (s *Session) TimelineZoomToDecade(decade int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr = s.axis.ZoomToDecade(decade)
}

// TimelineTransform returns the current zoom/pan transform.
func (s *Session) TimelineTransform() timeline.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr
}

// TimelineView lays out the visible events on the timeline.
func (s *Session) TimelineView(height float64) timeline.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	favColor := func(id string) (string, bool) {
		c, ok := s.favs.ColorOf(id)
		return string(c), ok
	}
	return timeline.Layout(s.visible, s.state, s.sel.Selected(), s.axis, s.tr, height, favColor)
}

// GlobeView projects the visible events plus the favorite connection
// arcs under the current rotation.
func (s *Session) GlobeView() GlobeView {
	s.mu.Lock()
	visible := s.visible
	state := s.state
	s.mu.Unlock()

	proj := s.driver.Projection()
	return GlobeView{
		Projection: proj,
		Points:     globe.Points(visible, proj),
		Arcs:       globe.ConnectionArcs(visible, s.favs, state.FavoritesOnly),
		State:      s.driver.State().String(),
	}
}

// GlobeView is the render model for the globe pane.
type GlobeView struct {
	Projection globe.Projection `json:"projection"`
	Points     []globe.Point    `json:"points"`
	Arcs       []globe.Arc      `json:"arcs"`
	State      string           `json:"state"`
}

// DonutView aggregates the visible set into category ring segments.
func (s *Session) DonutView(outerRadius float64) donut.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return donut.Aggregate(s.visible, s.state, outerRadius)
}

// Close releases the session's timers.
func (s *Session) Close() { s.debounce.Stop() }
