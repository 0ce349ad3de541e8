// Package recovery converts handler panics into JSON 500 responses so a
// bad event payload or session race never kills the server.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/formansean/ufo-timline/internal/api/respond"
)

// Middleware recovers panics from downstream handlers, logs the request
// context and stack, and answers HTTP 500 in the standard error shape.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error().
				Interface("panic", rec).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote", r.RemoteAddr).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			respond.WriteInternalError(w, "unexpected server error")
		}()
		next.ServeHTTP(w, r)
	})
}
