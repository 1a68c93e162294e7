package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// WithRecover wraps an http.Handler and recovers from panics,
// answering with the 500 page instead of crashing the server.
func WithRecover(next http.Handler, onPanic http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Recovered from panic", "panic", rec, "method", r.Method, "path", r.URL.Path)
				onPanic(w, r)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Instrument logs every request and records it in the request metrics.
func (h *Handler) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		elapsed := time.Since(start)
		h.metrics.ObserveRequest(r.Pattern, r.Method, sw.status, elapsed)
		h.log.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", elapsed)
	})
}
