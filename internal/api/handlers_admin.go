package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/formansean/ufo-timline/internal/api/respond"
	"github.com/formansean/ufo-timline/internal/auth"
	"github.com/formansean/ufo-timline/internal/services"
)

// AdminHandler serves the login flow and the protected dataset views.
type AdminHandler struct {
	tokens *auth.TokenAuthorizer
	stats  *services.StatsService
}

func NewAdminHandler(tokens *auth.TokenAuthorizer, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{tokens: tokens, stats: stats}
}

// Login POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	token, err := h.tokens.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractToken(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return
	}
	h.tokens.Logout(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

// Stats GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, stats)
}

// RequireAuth guards admin routes with a bearer-token check.
func RequireAuth(authorizer auth.Authorizer, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractToken(r)
		if err != nil {
			respond.WriteUnauthorized(w, err.Error())
			return
		}
		if _, err := authorizer.Authorize(r.Context(), token); err != nil {
			respond.WriteUnauthorized(w, err.Error())
			return
		}
		next(w, r)
	}
}
