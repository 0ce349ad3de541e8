package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/formansean/ufo-timline/internal/api/respond"
	"github.com/formansean/ufo-timline/internal/metrics"
	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/services"
	"github.com/formansean/ufo-timline/internal/store"
)

// EventHandler is a thin HTTP transport over the event service.
type EventHandler struct {
	svc   *services.EventService
	today *services.TodayService
	met   *metrics.Metrics
}

func NewEventHandler(svc *services.EventService, today *services.TodayService, met *metrics.Metrics) *EventHandler {
	return &EventHandler{svc: svc, today: today, met: met}
}

// ListEvents GET /api/events?category=&search=&limit=&offset=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := store.ListQuery{
		Category: model.Category(r.URL.Query().Get("category")),
		Search:   r.URL.Query().Get("search"),
	}
	if q.Category != "" && !model.ValidCategory(q.Category) {
		respond.WriteBadRequest(w, "unknown category")
		return
	}
	var err error
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	if q.Offset, err = queryInt(r, "offset"); err != nil {
		respond.WriteBadRequest(w, "invalid offset")
		return
	}

	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// GetEvent GET /api/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Get(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

// CreateEvent POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Create(r.Context(), &ev)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateEvent PUT /api/events/{eventId}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	ev.ID = mux.Vars(r)["eventId"]
	out, err := h.svc.Update(r.Context(), &ev)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEvent DELETE /api/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RateEvent POST /api/events/{eventId}/rate
func (h *EventHandler) RateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Like *bool `json:"like"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Like == nil {
		respond.WriteBadRequest(w, "body must carry a like flag")
		return
	}
	ev, err := h.svc.Rate(r.Context(), mux.Vars(r)["eventId"], *req.Like)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if h.met != nil {
		h.met.RatingRecorded(*req.Like)
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":       ev.ID,
		"likes":    ev.Likes,
		"dislikes": ev.Dislikes,
	})
}

// TodayEvents GET /api/events/today
func (h *EventHandler) TodayEvents(w http.ResponseWriter, r *http.Request) {
	page, err := h.today.Page(r.Context(), time.Now())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events":   page.Events,
		"featured": page.Featured,
		"count":    len(page.Events),
	})
}
