package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Recover transforma panic em 500 genérico; o detalhe fica só no log.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			event := log.Error().Interface("panic", rec).Str("method", r.Method).Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context()))
			if traceID := TraceID(r); traceID != "" {
				event = event.Str("trace_id", traceID)
			}
			event.Bytes("stack", debug.Stack()).Msg("panic recuperado")

			writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		}()
		next.ServeHTTP(w, r)
	})
}
