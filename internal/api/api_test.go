package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formansean/ufo-timline/internal/auth"
	"github.com/formansean/ufo-timline/internal/metrics"
	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/services"
	"github.com/formansean/ufo-timline/internal/store/memory"
	"github.com/formansean/ufo-timline/internal/viewstate"
)

type testEnv struct {
	server *httptest.Server
	store  *memory.Store
	admin  *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := memory.NewFromEvents([]model.Event{
		{Title: "Roswell Crash", Category: model.CategoryMajorEvents, Date: "July 8, 1947",
			Credibility: "90", Notoriety: "95", Latitude: "33.3943", Longitude: "-104.5230"},
		{Title: "Phoenix Lights", Category: model.CategoryMassSighting, Date: "March 13, 1997",
			Credibility: "80", Notoriety: "85", Latitude: "33.4484", Longitude: "-112.0740"},
		{Title: "Pascagoula Abduction", Category: model.CategoryAbduction, Date: "October 11, 1973",
			Credibility: "60", Notoriety: "70"},
	})
	require.NoError(t, err)

	events := services.NewEventService(st)
	adminSt := memory.New()
	tokens := auth.NewTokenAuthorizer("admin", "test-password", time.Hour)
	sessions := viewstate.NewManager(func() []model.Event {
		all, err := st.Events().All(context.Background())
		if err != nil {
			return nil
		}
		return all
	}, 1000, 500, time.Minute)

	router := NewRouter(Deps{
		Events:     events,
		Today:      services.NewTodayService(st),
		Stats:      services.NewStatsService(st),
		Tokens:     tokens,
		Authorizer: auth.Chain{auth.NewMockAuthorizer(), tokens},
		Sessions:   sessions,
		Metrics:    metrics.New(),

		AdminEvents: services.NewEventService(adminSt),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: st, admin: adminSt}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListAndGetEvents(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, "GET", "/api/events?limit=2", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[services.EventPage](t, raw)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.HasMore)

	resp, raw = env.do(t, "GET", "/api/events/"+page.Events[0].ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[model.Event](t, raw)
	assert.Equal(t, page.Events[0].Title, got.Title)
}

func TestGetEventWithNonUUIDID(t *testing.T) {
	env := newTestEnv(t)

	// Imported datasets carry their own ID shapes.
	_, err := env.store.Events().Create(context.Background(), &model.Event{
		ID: "bluebook-case-12", Title: "Lubbock Lights", Category: model.CategoryMassSighting,
		Date: "August 25, 1951",
	})
	require.NoError(t, err)

	resp, raw := env.do(t, "GET", "/api/events/bluebook-case-12", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lubbock Lights", decode[model.Event](t, raw).Title)

	resp, raw = env.do(t, "POST", "/api/events/bluebook-case-12/rate", map[string]bool{"like": true}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, raw)["likes"])
}

func TestListEventsRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "GET", "/api/events?category=Nonsense", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventCRUDRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	newEvent := model.Event{Title: "Kecksburg", Category: model.CategorySighting, Date: "December 9, 1965"}
	resp, _ := env.do(t, "POST", "/api/events", newEvent, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Login, then create, update, delete.
	resp, raw := env.do(t, "POST", "/api/admin/login", map[string]string{
		"username": "admin", "password": "test-password",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[map[string]string](t, raw)["token"]
	require.NotEmpty(t, token)

	resp, raw = env.do(t, "POST", "/api/events", newEvent, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Event](t, raw)
	require.NotEmpty(t, created.ID)

	created.Witnesses = "several"
	resp, raw = env.do(t, "PUT", "/api/events/"+created.ID, created, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "several", decode[model.Event](t, raw).Witnesses)

	resp, _ = env.do(t, "DELETE", "/api/events/"+created.ID, nil, token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, "GET", "/api/events/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "POST", "/api/events",
		model.Event{Title: "bad", Category: "Nonsense", Date: "May 1, 1950"},
		auth.LocalDevToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminLoginFailure(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "POST", "/api/admin/login", map[string]string{
		"username": "admin", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, "GET", "/api/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw := env.do(t, "GET", "/api/admin/stats", nil, auth.LocalDevToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[services.Stats](t, raw)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.WithCoords)
}

func TestRateEvent(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, "GET", "/api/events?limit=1", nil, "")
	id := decode[services.EventPage](t, raw).Events[0].ID

	resp, raw := env.do(t, "POST", "/api/events/"+id+"/rate", map[string]bool{"like": true}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, raw)
	assert.EqualValues(t, 1, out["likes"])

	resp, _ = env.do(t, "POST", "/api/events/"+id+"/rate", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionFilterFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, "POST", "/api/sessions", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sid := decode[map[string]any](t, raw)["sessionId"].(string)
	base := "/api/sessions/" + sid

	// All three seed events visible by default, sorted by score.
	resp, raw = env.do(t, "GET", base+"/events", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var visible struct {
		Events []model.Event `json:"events"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &visible))
	require.Equal(t, 3, visible.Count)
	assert.Equal(t, "Roswell Crash", visible.Events[0].Title)

	// Toggling a category hides its row.
	resp, _ = env.do(t, "POST", base+"/categories/toggle",
		map[string]any{"category": "Major Events"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, raw = env.do(t, "GET", base+"/events", nil, "")
	require.NoError(t, json.Unmarshal(raw, &visible))
	assert.Equal(t, 2, visible.Count)

	// Search commits after the debounce window.
	resp, _ = env.do(t, "POST", base+"/search", map[string]any{"term": "phoenix", "flush": true}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Eventually(t, func() bool {
		_, raw := env.do(t, "GET", base+"/events", nil, "")
		var v struct {
			Count int `json:"count"`
		}
		return json.Unmarshal(raw, &v) == nil && v.Count == 1
	}, time.Second, 20*time.Millisecond)
}

func TestSessionSelectionAndViews(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, "POST", "/api/sessions", nil, "")
	sid := decode[map[string]any](t, raw)["sessionId"].(string)
	base := "/api/sessions/" + sid

	_, raw = env.do(t, "GET", base+"/events", nil, "")
	var visible struct {
		Events []model.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(raw, &visible))
	roswell := visible.Events[0].ID

	resp, raw := env.do(t, "POST", base+"/selection", map[string]string{"eventId": roswell}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, roswell, decode[map[string]any](t, raw)["selected"])

	// Chronological step: Roswell (1947) -> Pascagoula (1973).
	resp, raw = env.do(t, "POST", base+"/selection/next", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[map[string]any](t, raw)
	assert.Equal(t, true, state["moved"])

	resp, raw = env.do(t, "GET", base+"/timeline?height=400", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tl struct {
		Rows []struct {
			Category string `json:"category"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &tl))
	assert.Len(t, tl.Rows, len(model.Categories))

	resp, raw = env.do(t, "GET", base+"/globe", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var gv struct {
		Points []struct {
			EventID string `json:"eventId"`
		} `json:"points"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &gv))
	assert.Len(t, gv.Points, 2) // Pascagoula has no coordinates

	resp, raw = env.do(t, "GET", base+"/donut", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dn struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &dn))
	assert.Equal(t, 3, dn.Total)

	resp, _ = env.do(t, "DELETE", base+"/selection", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionFavoritesAndRating(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, "POST", "/api/sessions", nil, "")
	sid := decode[map[string]any](t, raw)["sessionId"].(string)
	base := "/api/sessions/" + sid

	_, raw = env.do(t, "GET", base+"/events", nil, "")
	var visible struct {
		Events []model.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(raw, &visible))
	target := visible.Events[1].ID

	resp, _ := env.do(t, "POST", base+"/favorites/toggle",
		map[string]string{"color": "yellow", "eventId": target}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = env.do(t, "POST", base+"/favorites/filter", map[string]string{"color": "yellow"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, raw)["visible"])

	// Rating through the session persists to the store.
	resp, _ = env.do(t, "POST", base+"/rate", map[string]any{"eventId": target, "like": true}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, raw = env.do(t, "GET", "/api/events/"+target, nil, "")
	assert.Equal(t, 1, decode[model.Event](t, raw).Likes)
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "GET", "/api/sessions/nope/events", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	defer BindServiceHealth(func() bool { return false })

	BindServiceHealth(func() bool { return true })
	resp, raw := env.do(t, "GET", "/api/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, raw)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ufo-timeline", body["service"])
	if _, err := time.Parse(time.RFC3339, fmt.Sprint(body["timestamp"])); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", body["timestamp"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, "GET", "/api/events", nil, "")
	resp, raw := env.do(t, "GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestAdminMirrorIsIndependentOfPublicStore(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, "GET", "/api/admin/events", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The mirror starts empty while the public store holds the seed data.
	resp, raw := env.do(t, "GET", "/api/admin/events", nil, auth.LocalDevToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, decode[services.EventPage](t, raw).TotalCount)

	newEvent := model.Event{Title: "Levelland", Category: model.CategorySighting, Date: "November 2, 1957"}
	resp, raw = env.do(t, "POST", "/api/admin/events", newEvent, auth.LocalDevToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Event](t, raw)
	require.NotEmpty(t, created.ID)

	resp, raw = env.do(t, "GET", "/api/admin/events/"+created.ID, nil, auth.LocalDevToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Levelland", decode[model.Event](t, raw).Title)

	// Writes to the mirror land in the mirror store and never leak into
	// the public surface.
	mirrored, err := env.admin.Events().All(context.Background())
	require.NoError(t, err)
	require.Len(t, mirrored, 1)

	resp, raw = env.do(t, "GET", "/api/events", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[services.EventPage](t, raw).TotalCount)

	resp, _ = env.do(t, "DELETE", "/api/admin/events/"+created.ID, nil, auth.LocalDevToken)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
