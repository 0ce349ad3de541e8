package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/formansean/ufo-timline/internal/api/recovery"
	"github.com/formansean/ufo-timline/internal/auth"
	"github.com/formansean/ufo-timline/internal/metrics"
	"github.com/formansean/ufo-timline/internal/services"
	"github.com/formansean/ufo-timline/internal/viewstate"
)

// Deps carries the wired services the router exposes.
type Deps struct {
	Events     *services.EventService
	Today      *services.TodayService
	Stats      *services.StatsService
	Tokens     *auth.TokenAuthorizer
	Authorizer auth.Authorizer
	Sessions   *viewstate.Manager
	Metrics    *metrics.Metrics

	// AdminEvents, when set, serves the /api/admin/events mirror against
	// the persisted store. Nil skips the mirror routes.
	AdminEvents *services.EventService
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	if d.Metrics != nil {
		router.Use(instrument(d.Metrics))
	}

	eventHandler := NewEventHandler(d.Events, d.Today, d.Metrics)
	adminHandler := NewAdminHandler(d.Tokens, d.Stats)
	sessionHandler := NewSessionHandler(d.Sessions, d.Events, d.Metrics)
	healthHandler := NewHealthHandler()

	// Health and metrics
	router.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}

	// Public event endpoints. Fixed paths register before {eventId} so
	// mux matches them first; imported datasets may carry IDs of any
	// shape, so the parameter stays unconstrained.
	router.HandleFunc("/api/events", eventHandler.ListEvents).Methods("GET")
	router.HandleFunc("/api/events/today", eventHandler.TodayEvents).Methods("GET")
	router.HandleFunc("/api/events/{eventId}", eventHandler.GetEvent).Methods("GET")
	router.HandleFunc("/api/events/{eventId}/rate", eventHandler.RateEvent).Methods("POST")

	// Admin surface: login plus guarded mutations
	router.HandleFunc("/api/admin/login", adminHandler.Login).Methods("POST")
	router.HandleFunc("/api/admin/logout", adminHandler.Logout).Methods("POST")
	router.HandleFunc("/api/admin/stats", RequireAuth(d.Authorizer, adminHandler.Stats)).Methods("GET")
	router.HandleFunc("/api/events", RequireAuth(d.Authorizer, eventHandler.CreateEvent)).Methods("POST")
	router.HandleFunc("/api/events/{eventId}", RequireAuth(d.Authorizer, eventHandler.UpdateEvent)).Methods("PUT")
	router.HandleFunc("/api/events/{eventId}", RequireAuth(d.Authorizer, eventHandler.DeleteEvent)).Methods("DELETE")

	// Admin mirror with equivalent CRUD semantics against the persisted store
	if d.AdminEvents != nil {
		mirror := NewEventHandler(d.AdminEvents, nil, d.Metrics)
		router.HandleFunc("/api/admin/events", RequireAuth(d.Authorizer, mirror.ListEvents)).Methods("GET")
		router.HandleFunc("/api/admin/events", RequireAuth(d.Authorizer, mirror.CreateEvent)).Methods("POST")
		router.HandleFunc("/api/admin/events/{eventId}", RequireAuth(d.Authorizer, mirror.GetEvent)).Methods("GET")
		router.HandleFunc("/api/admin/events/{eventId}", RequireAuth(d.Authorizer, mirror.UpdateEvent)).Methods("PUT")
		router.HandleFunc("/api/admin/events/{eventId}", RequireAuth(d.Authorizer, mirror.DeleteEvent)).Methods("DELETE")
	}

	// View-state sessions
	router.HandleFunc("/api/sessions", sessionHandler.CreateSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}", sessionHandler.GetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}", sessionHandler.DeleteSession).Methods("DELETE")
	router.HandleFunc("/api/sessions/{sessionId}/events", sessionHandler.VisibleEvents).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}/search", sessionHandler.SetSearch).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/categories/toggle", sessionHandler.ToggleCategory).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/categories/all", sessionHandler.AllCategories).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/craft/toggle", sessionHandler.ToggleCraftType).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/entities/toggle", sessionHandler.ToggleEntityType).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/favorites/toggle", sessionHandler.ToggleFavorite).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/favorites/filter", sessionHandler.ToggleFavoriteFilter).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/selection", sessionHandler.Select).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/selection", sessionHandler.ClearSelection).Methods("DELETE")
	router.HandleFunc("/api/sessions/{sessionId}/selection/next", sessionHandler.StepSelection(true)).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/selection/prev", sessionHandler.StepSelection(false)).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/rate", sessionHandler.Rate).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/timeline", sessionHandler.TimelineView).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}/timeline/zoom", sessionHandler.TimelineZoom).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/timeline/pan", sessionHandler.TimelinePan).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/timeline/decade", sessionHandler.TimelineDecade).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/globe", sessionHandler.GlobeView).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}/globe/drag", sessionHandler.GlobeDrag).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/globe/zoom", sessionHandler.GlobeZoom).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/donut", sessionHandler.DonutView).Methods("GET")

	return router
}

// instrument records request counts and latency per route template.
func instrument(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.WrapHandler(route, next).ServeHTTP(w, r)
		})
	}
}
