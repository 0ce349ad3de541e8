package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/formansean/ufo-timline/internal/api/respond"
	"github.com/formansean/ufo-timline/internal/favorites"
	"github.com/formansean/ufo-timline/internal/metrics"
	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/viewstate"
)

// SessionHandler drives per-client view state: filters, selection,
// timeline and globe interaction, favorites, and ratings.
type SessionHandler struct {
	sessions *viewstate.Manager
	ratings  viewstate.RatingSubmitter
	met      *metrics.Metrics
}

func NewSessionHandler(sessions *viewstate.Manager, ratings viewstate.RatingSubmitter, met *metrics.Metrics) *SessionHandler {
	return &SessionHandler{sessions: sessions, ratings: ratings, met: met}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *viewstate.Session {
	id := mux.Vars(r)["sessionId"]
	s, ok := h.sessions.Get(id, time.Now())
	if !ok {
		respond.WriteNotFound(w, "unknown session")
		return nil
	}
	return s
}

func (h *SessionHandler) trackSessions() {
	if h.met != nil {
		h.met.SetActiveSessions(h.sessions.Len())
	}
}

// stateOf summarizes a session for polling clients.
func stateOf(s *viewstate.Session) map[string]interface{} {
	st := s.FilterState()
	active := make([]model.Category, 0)
	active = append(active, st.ActiveCategories()...)
	return map[string]interface{}{
		"sessionId":  s.ID,
		"version":    s.Version(),
		"search":     st.Search,
		"categories": active,
		"selected":   s.Selected(),
		"visible":    len(s.Visible()),
	}
}

// CreateSession POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(time.Now())
	if err != nil {
		respond.WriteInternalError(w, "failed to create session")
		return
	}
	h.trackSessions()
	respond.WriteJSON(w, http.StatusCreated, stateOf(s))
}

// GetSession GET /api/sessions/{sessionId}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// DeleteSession DELETE /api/sessions/{sessionId}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(mux.Vars(r)["sessionId"])
	h.trackSessions()
	w.WriteHeader(http.StatusNoContent)
}

// VisibleEvents GET /api/sessions/{sessionId}/events
func (h *SessionHandler) VisibleEvents(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	visible := s.Visible()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events":  visible,
		"count":   len(visible),
		"version": s.Version(),
	})
}

// SetSearch POST /api/sessions/{sessionId}/search
func (h *SessionHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Term  string `json:"term"`
		Flush bool   `json:"flush,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	s.SetSearch(req.Term)
	if req.Flush {
		s.FlushSearch()
	}
	w.WriteHeader(http.StatusAccepted)
}

// ToggleCategory POST /api/sessions/{sessionId}/categories/toggle
func (h *SessionHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Category model.Category `json:"category"`
		Solo     bool           `json:"solo,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if !model.ValidCategory(req.Category) {
		respond.WriteBadRequest(w, "unknown category")
		return
	}
	if req.Solo {
		s.SoloCategory(req.Category)
	} else {
		s.ToggleCategory(req.Category)
	}
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// AllCategories POST /api/sessions/{sessionId}/categories/all
func (h *SessionHandler) AllCategories(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.AllCategories()
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// ToggleCraftType POST /api/sessions/{sessionId}/craft/toggle
func (h *SessionHandler) ToggleCraftType(w http.ResponseWriter, r *http.Request) {
	h.toggleValue(w, r, func(s *viewstate.Session, v string) { s.ToggleCraftType(v) })
}

// ToggleEntityType POST /api/sessions/{sessionId}/entities/toggle
func (h *SessionHandler) ToggleEntityType(w http.ResponseWriter, r *http.Request) {
	h.toggleValue(w, r, func(s *viewstate.Session, v string) { s.ToggleEntityType(v) })
}

func (h *SessionHandler) toggleValue(w http.ResponseWriter, r *http.Request, apply func(*viewstate.Session, string)) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == "" {
		respond.WriteBadRequest(w, "body must carry a value")
		return
	}
	apply(s, req.Value)
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// ToggleFavorite POST /api/sessions/{sessionId}/favorites/toggle
func (h *SessionHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Color   favorites.Color `json:"color"`
		EventID string          `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		respond.WriteBadRequest(w, "body must carry color and eventId")
		return
	}
	if err := s.ToggleFavorite(req.Color, req.EventID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// ToggleFavoriteFilter POST /api/sessions/{sessionId}/favorites/filter
func (h *SessionHandler) ToggleFavoriteFilter(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Color favorites.Color `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if !favorites.ValidColor(req.Color) {
		respond.WriteBadRequest(w, "unknown favorite color")
		return
	}
	s.ToggleFavoriteColor(req.Color)
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// Select POST /api/sessions/{sessionId}/selection
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		respond.WriteBadRequest(w, "body must carry an eventId")
		return
	}
	if err := s.Select(req.EventID, time.Now()); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// ClearSelection DELETE /api/sessions/{sessionId}/selection
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.ClearSelection(time.Now())
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// StepSelection POST /api/sessions/{sessionId}/selection/next and /prev
func (h *SessionHandler) StepSelection(forward bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.session(w, r)
		if s == nil {
			return
		}
		now := time.Now()
		var moved bool
		if forward {
			moved = s.SelectNext(now)
		} else {
			moved = s.SelectPrev(now)
		}
		out := stateOf(s)
		out["moved"] = moved
		respond.WriteJSON(w, http.StatusOK, out)
	}
}

// Rate POST /api/sessions/{sessionId}/rate
func (h *SessionHandler) Rate(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		EventID string `json:"eventId"`
		Like    *bool  `json:"like"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" || req.Like == nil {
		respond.WriteBadRequest(w, "body must carry eventId and like")
		return
	}
	if err := s.Rate(r.Context(), h.ratings, req.EventID, *req.Like); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if h.met != nil {
		h.met.RatingRecorded(*req.Like)
	}
	respond.WriteJSON(w, http.StatusOK, stateOf(s))
}

// TimelineView GET /api/sessions/{sessionId}/timeline?height=
func (h *SessionHandler) TimelineView(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	height := 400.0
	if raw := r.URL.Query().Get("height"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			respond.WriteBadRequest(w, "invalid height")
			return
		}
		height = v
	}
	respond.WriteJSON(w, http.StatusOK, s.TimelineView(height))
}

// TimelineZoom POST /api/sessions/{sessionId}/timeline/zoom
func (h *SessionHandler) TimelineZoom(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		In bool `json:"in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	s.TimelineZoom(req.In)
	respond.WriteJSON(w, http.StatusOK, s.TimelineTransform())
}

// TimelinePan POST /api/sessions/{sessionId}/timeline/pan
func (h *SessionHandler) TimelinePan(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Dx float64 `json:"dx"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	s.TimelinePan(req.Dx)
	respond.WriteJSON(w, http.StatusOK, s.TimelineTransform())
}

// TimelineDecade POST /api/sessions/{sessionId}/timeline/decade
func (h *SessionHandler) TimelineDecade(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Decade int `json:"decade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Decade == 0 {
		respond.WriteBadRequest(w, "body must carry a decade")
		return
	}
	s.TimelineZoomToDecade(req.Decade)
	respond.WriteJSON(w, http.StatusOK, s.TimelineTransform())
}

// GlobeView GET /api/sessions/{sessionId}/globe
func (h *SessionHandler) GlobeView(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.Globe().Advance(time.Now())
	respond.WriteJSON(w, http.StatusOK, s.GlobeView())
}

// GlobeDrag POST /api/sessions/{sessionId}/globe/drag
func (h *SessionHandler) GlobeDrag(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		Phase string  `json:"phase"` // "begin", "move", "end"
		Dx    float64 `json:"dx,omitempty"`
		Dy    float64 `json:"dy,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	now := time.Now()
	switch req.Phase {
	case "begin":
		s.Globe().BeginDrag(now)
	case "move":
		s.Globe().Drag(req.Dx, req.Dy)
	case "end":
		s.Globe().EndDrag(now)
	default:
		respond.WriteBadRequest(w, "phase must be begin, move, or end")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GlobeZoom POST /api/sessions/{sessionId}/globe/zoom
func (h *SessionHandler) GlobeZoom(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req struct {
		In bool `json:"in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	s.Globe().Zoom(req.In)
	w.WriteHeader(http.StatusAccepted)
}

// DonutView GET /api/sessions/{sessionId}/donut?radius=
func (h *SessionHandler) DonutView(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	radius := 120.0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			respond.WriteBadRequest(w, "invalid radius")
			return
		}
		radius = v
	}
	respond.WriteJSON(w, http.StatusOK, s.DonutView(radius))
}
