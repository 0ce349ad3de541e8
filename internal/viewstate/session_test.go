package viewstate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formansean/ufo-timline/internal/favorites"
	"github.com/formansean/ufo-timline/internal/globe"
	"github.com/formansean/ufo-timline/internal/model"
)

func fixtureEvents() []model.Event {
	return []model.Event{
		{
			ID: "roswell", Title: "Roswell Crash", Category: model.CategoryMajorEvents,
			Date: "July 8, 1947", Credibility: "90", Notoriety: "95",
			Latitude: "33.3943", Longitude: "-104.5230", Likes: 10, Dislikes: 2,
		},
		{
			ID: "phoenix", Title: "Phoenix Lights", Category: model.CategoryMassSighting,
			Date: "March 13, 1997", Credibility: "80", Notoriety: "85",
			Latitude: "33.4484", Longitude: "-112.0740",
		},
		{
			ID: "pascagoula", Title: "Pascagoula Abduction", Category: model.CategoryAbduction,
			Date: "October 11, 1973", Credibility: "60", Notoriety: "70",
		},
	}
}

func newTestSession() *Session {
	events := fixtureEvents()
	return NewSession("test", func() []model.Event { return events }, 1000, 500, time.Now())
}

func TestVisibleDefaultsToScoreOrder(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	visible := s.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "roswell", visible[0].ID)
	assert.Equal(t, "phoenix", visible[1].ID)
	assert.Equal(t, "pascagoula", visible[2].ID)
}

func TestToggleCategoryRecomputesAndBumpsVersion(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	before := s.Version()
	s.ToggleCategory(model.CategoryMajorEvents)

	assert.Greater(t, s.Version(), before)
	for _, ev := range s.Visible() {
		assert.NotEqual(t, "roswell", ev.ID)
	}
}

func TestFavoriteRoundTrip(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	require.NoError(t, s.ToggleFavorite(favorites.Yellow, "phoenix"))
	s.ToggleFavoriteColor(favorites.Yellow)

	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "phoenix", visible[0].ID)

	// Toggling the same color again unmarks, emptying the filtered view.
	require.NoError(t, s.ToggleFavorite(favorites.Yellow, "phoenix"))
	assert.Empty(t, s.Visible())
}

func TestToggleFavoriteMovesBetweenColors(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	require.NoError(t, s.ToggleFavorite(favorites.Yellow, "phoenix"))
	require.NoError(t, s.ToggleFavorite(favorites.Red, "phoenix"))

	c, ok := s.Favorites().ColorOf("phoenix")
	require.True(t, ok)
	assert.Equal(t, favorites.Red, c)
}

type stubSubmitter struct {
	err      error
	likes    int
	dislikes int
	calls    int
}

func (s *stubSubmitter) SubmitRating(_ context.Context, _ string, likeDelta, dislikeDelta int) (int, int, error) {
	s.calls++
	if s.err != nil {
		return 0, 0, s.err
	}
	s.likes += likeDelta
	s.dislikes += dislikeDelta
	return s.likes, s.dislikes, nil
}

func findVisible(t *testing.T, s *Session, id string) model.Event {
	t.Helper()
	for _, ev := range s.Visible() {
		if ev.ID == id {
			return ev
		}
	}
	t.Fatalf("event %q not visible", id)
	return model.Event{}
}

func TestRateSuccessAdoptsAuthoritativeCounts(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	sub := &stubSubmitter{likes: 10, dislikes: 2}

	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))

	ev := findVisible(t, s, "roswell")
	assert.Equal(t, 11, ev.Likes)
	assert.Equal(t, 2, ev.Dislikes)
	assert.Equal(t, 1, sub.calls)
}

func TestRateRepeatVoteIsNoOp(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	sub := &stubSubmitter{likes: 10, dislikes: 2}

	// The session holds one vote per event; repeats neither submit nor
	// bump the counter again.
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))

	ev := findVisible(t, s, "roswell")
	assert.Equal(t, 11, ev.Likes)
	assert.Equal(t, 2, ev.Dislikes)
	assert.Equal(t, 1, sub.calls)
}

func TestRateSwitchMovesVote(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	sub := &stubSubmitter{likes: 10, dislikes: 2}

	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", false))

	ev := findVisible(t, s, "roswell")
	assert.Equal(t, 10, ev.Likes)
	assert.Equal(t, 3, ev.Dislikes)
	assert.Equal(t, 2, sub.calls)

	// The moved vote is now the held vote.
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", false))
	assert.Equal(t, 2, sub.calls)
}

func TestRateFailureRevertsVote(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	sub := &stubSubmitter{likes: 10, dislikes: 2, err: errors.New("backend down")}

	require.Error(t, s.Rate(context.Background(), sub, "roswell", true))

	// The failed vote is not held, so retrying submits again.
	sub.err = nil
	require.NoError(t, s.Rate(context.Background(), sub, "roswell", true))
	ev := findVisible(t, s, "roswell")
	assert.Equal(t, 11, ev.Likes)
	assert.Equal(t, 2, sub.calls)
}

func TestRateFailureReverts(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	sub := &stubSubmitter{err: errors.New("backend down")}

	err := s.Rate(context.Background(), sub, "roswell", true)
	require.Error(t, err)

	ev := findVisible(t, s, "roswell")
	assert.Equal(t, 10, ev.Likes)
	assert.Equal(t, 2, ev.Dislikes)
}

func TestRateUnknownEvent(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	err := s.Rate(context.Background(), &stubSubmitter{}, "nope", true)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSearchDebounceCollapses(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	s.SetSearch("ph")
	s.SetSearch("pho")
	s.SetSearch("phoenix")

	assert.Eventually(t, func() bool {
		v := s.Visible()
		return len(v) == 1 && v[0].ID == "phoenix"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "phoenix", s.FilterState().Search)
}

func TestSelectTweensAndClearResumes(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	now := time.Now()

	require.NoError(t, s.Select("roswell", now))
	assert.Equal(t, "roswell", s.Selected())
	assert.Equal(t, globe.StateTweening, s.Globe().State())

	s.ClearSelection(now)
	assert.Empty(t, s.Selected())
	assert.Equal(t, globe.StateAutoRotating, s.Globe().State())
}

func TestSelectNextPrevChronological(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	now := time.Now()

	require.NoError(t, s.Select("roswell", now)) // 1947, earliest
	require.True(t, s.SelectNext(now))
	assert.Equal(t, "pascagoula", s.Selected()) // 1973

	require.True(t, s.SelectNext(now))
	assert.Equal(t, "phoenix", s.Selected()) // 1997, last

	assert.False(t, s.SelectNext(now))
	assert.Equal(t, "phoenix", s.Selected())

	require.True(t, s.SelectPrev(now))
	assert.Equal(t, "pascagoula", s.Selected())
}

func TestSelectNotVisible(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	s.ToggleCategory(model.CategoryMajorEvents)
	err := s.Select("roswell", time.Now())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTimelineViewReflectsSessionState(t *testing.T) {
	s := newTestSession()
	defer s.Close()
	require.NoError(t, s.ToggleFavorite(favorites.Orange, "phoenix"))
	require.NoError(t, s.Select("phoenix", time.Now()))

	view := s.TimelineView(400)
	var found bool
	for _, row := range view.Rows {
		for _, m := range row.Marks {
			if m.EventID == "phoenix" {
				found = true
				assert.True(t, m.Selected)
				assert.Equal(t, string(favorites.Orange), m.Favorite)
			}
		}
	}
	assert.True(t, found)
}

func TestGlobeViewSkipsUnlocatedEvents(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	view := s.GlobeView()
	for _, p := range view.Points {
		assert.NotEqual(t, "pascagoula", p.EventID)
	}
}

func TestDonutViewCountsVisible(t *testing.T) {
	s := newTestSession()
	defer s.Close()

	snap := s.DonutView(100)
	assert.Equal(t, 3, snap.Total)
	assert.InDelta(t, 60.0, snap.InnerRadius, 1e-9)
}

func TestManagerLifecycle(t *testing.T) {
	events := fixtureEvents()
	m := NewManager(func() []model.Event { return events }, 1000, 500, time.Minute)
	now := time.Now()

	s, err := m.Create(now)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, ok := m.Get(s.ID, now)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("missing", now)
	assert.False(t, ok)

	// Still fresh after half a TTL, gone after exceeding it.
	assert.Zero(t, m.Sweep(now.Add(30*time.Second)))
	assert.Equal(t, 1, m.Sweep(now.Add(2*time.Minute)))
	assert.Zero(t, m.Len())
}

func TestManagerDelete(t *testing.T) {
	m := NewManager(func() []model.Event { return nil }, 1000, 500, time.Minute)
	s, err := m.Create(time.Now())
	require.NoError(t, err)
	m.Delete(s.ID)
	assert.Zero(t, m.Len())
}

func TestManagerPersistsFavoritesAcrossRestart(t *testing.T) {
	events := fixtureEvents()
	source := func() []model.Event { return events }
	path := filepath.Join(t.TempDir(), "favorites.json")

	m := NewManager(source, 1000, 500, time.Minute)
	m.PersistFavorites(path)
	s, err := m.Create(time.Now())
	require.NoError(t, err)
	require.NoError(t, s.ToggleFavorite(favorites.Orange, "roswell"))
	require.NoError(t, s.ToggleFavorite(favorites.Red, "phoenix"))
	m.Delete(s.ID)

	// A manager built over the same file sees the saved marks.
	m2 := NewManager(source, 1000, 500, time.Minute)
	m2.PersistFavorites(path)
	s2, err := m2.Create(time.Now())
	require.NoError(t, err)
	defer s2.Close()

	c, ok := s2.Favorites().ColorOf("roswell")
	require.True(t, ok)
	assert.Equal(t, favorites.Orange, c)
	c, ok = s2.Favorites().ColorOf("phoenix")
	require.True(t, ok)
	assert.Equal(t, favorites.Red, c)

	// Unmarking writes through as well.
	require.NoError(t, s2.ToggleFavorite(favorites.Red, "phoenix"))
	saved, err := favorites.Load(path)
	require.NoError(t, err)
	_, ok = saved.ColorOf("phoenix")
	assert.False(t, ok)
}
