package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/logging"
	"shareit/internal/service"

	"github.com/justinas/alice"
	"github.com/rs/zerolog"
)

// Services groups the business services served over HTTP.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Bookings *service.BookingService
	Requests *service.RequestService
}

// Pinger reports storage readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPServer exposes the ShareIt REST API of the server tier.
type HTTPServer struct {
	cfg      config.ServerConfig
	services Services
	db       Pinger
	logger   *zerolog.Logger
	limiter  *rateLimiter
	mux      *http.ServeMux
	handler  http.Handler
	server   *http.Server
}

func NewHTTPServer(cfg config.ServerConfig, services Services, db Pinger, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		services: services,
		db:       db,
		logger:   logging.Component(logger, "http_server"),
		limiter:  newRateLimiter(cfg.RateLimit),
		mux:      http.NewServeMux(),
	}

	srv.routes()

	srv.handler = alice.New(
		srv.recoverPanic,
		srv.requestID,
		srv.logRequest,
		srv.rateLimit,
		srv.identify,
	).Then(srv.mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() {
	s.handle("GET /healthz", s.handleHealth)
	s.handle("GET /readyz", s.handleReady)

	s.handle("POST /users", s.handleCreateUser)
	s.handle("GET /users", s.handleListUsers)
	s.handle("GET /users/{id}", s.handleGetUser)
	s.handle("PATCH /users/{id}", s.handleUpdateUser)
	s.handle("DELETE /users/{id}", s.handleDeleteUser)

	s.handle("POST /items", s.handleCreateItem)
	s.handle("GET /items", s.handleListOwnerItems)
	s.handle("GET /items/search", s.handleSearchItems)
	s.handle("GET /items/{id}", s.handleGetItem)
	s.handle("PATCH /items/{id}", s.handleUpdateItem)
	s.handle("DELETE /items/{id}", s.handleDeleteItem)
	s.handle("POST /items/{id}/comment", s.handleAddComment)

	s.handle("POST /bookings", s.handleCreateBooking)
	s.handle("GET /bookings", s.handleListBookerBookings)
	s.handle("GET /bookings/owner", s.handleListOwnerBookings)
	s.handle("GET /bookings/{bookingId}", s.handleGetBooking)
	s.handle("PATCH /bookings/{bookingId}", s.handleApproveBooking)

	s.handle("POST /requests", s.handleCreateRequest)
	s.handle("GET /requests", s.handleListOwnRequests)
	s.handle("GET /requests/all", s.handleListOtherRequests)
	s.handle("GET /requests/{id}", s.handleGetRequest)

	s.handle("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// handle registers h and records the matched pattern for access logs and metrics.
func (s *HTTPServer) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := w.(*statusRecorder); ok {
			rec.route = pattern
		}
		h(w, r)
	})
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			logging.FromContext(r.Context(), s.logger).Error().Err(err).Msg("Readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
