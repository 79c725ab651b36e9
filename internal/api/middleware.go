package api

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"shareit/internal/identity"
	"shareit/internal/logging"
	"shareit/internal/metrics"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func (s *HTTPServer) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				w.Header().Set("Connection", "close")
				logging.FromContext(r.Context(), s.logger).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("Panic while serving request")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID reuses the gateway's X-Request-Id or mints a new one and
// stores a request-scoped logger in the context.
func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		reqLogger := s.logger.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(reqLogger.WithContext(r.Context())))
	})
}

func (s *HTTPServer) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.ObserveHTTP(recorder.route, r.Method, recorder.status, dur)

		event := logging.FromContext(r.Context(), s.logger).Info()
		if recorder.status >= http.StatusInternalServerError {
			event = logging.FromContext(r.Context(), s.logger).Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", recorder.route).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r) {
			metrics.IncRateLimited()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identify stores the caller id in the context. Handlers that need it
// call identity.Require.
func (s *HTTPServer) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := identity.Parse(r.Header)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ok {
			r = r.WithContext(identity.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	route  string
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
