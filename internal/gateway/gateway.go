// Package gateway is the validating front tier. It checks payloads and
// query parameters and forwards valid requests to the server unchanged.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Upstream is the server tier as seen by the gateway.
type Upstream interface {
	Forward(ctx context.Context, fr ForwardRequest) (*UpstreamResponse, error)
	Ping(ctx context.Context) error
}

type Gateway struct {
	cfg      config.GatewayConfig
	upstream Upstream
	limiter  domain.RateLimitStore
	logger   *zerolog.Logger
	engine   *gin.Engine
	server   *http.Server
}

// New builds the gateway. limiter may be nil to disable rate limiting.
func New(cfg config.GatewayConfig, upstream Upstream, limiter domain.RateLimitStore, logger *zerolog.Logger) (*Gateway, error) {
	if err := registerBindingValidations(time.Now); err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:      cfg,
		upstream: upstream,
		limiter:  limiter,
		logger:   logging.Component(logger, "gateway"),
	}

	engine := gin.New()
	_ = engine.SetTrustedProxies(nil)
	engine.Use(gin.CustomRecovery(g.recoverPanic), g.requestID(), g.logRequest())
	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", identityHeader, requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	engine.Use(g.rateLimit())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	g.engine = engine
	g.routes()

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Timeout + 5*time.Second,
	}
	return g, nil
}

func (g *Gateway) routes() {
	r := g.engine

	r.GET("/healthz", g.health)
	r.GET("/readyz", g.ready)

	r.POST("/users", g.createUser)
	r.GET("/users", g.passThrough)
	r.GET("/users/:id", g.withPathID("id"), g.passThrough)
	r.PATCH("/users/:id", g.withPathID("id"), g.updateUser)
	r.DELETE("/users/:id", g.withPathID("id"), g.passThrough)

	r.POST("/items", g.requireSharer, g.createItem)
	r.GET("/items", g.requireSharer, g.withPage, g.passThrough)
	r.GET("/items/search", g.withPage, g.passThrough)
	r.GET("/items/:id", g.withPathID("id"), g.optionalSharer, g.passThrough)
	r.PATCH("/items/:id", g.requireSharer, g.withPathID("id"), g.updateItem)
	r.DELETE("/items/:id", g.withPathID("id"), g.passThrough)
	r.POST("/items/:id/comment", g.requireSharer, g.withPathID("id"), g.addComment)

	r.POST("/bookings", g.requireSharer, g.createBooking)
	r.GET("/bookings", g.requireSharer, g.withState, g.withPage, g.passThrough)
	r.GET("/bookings/owner", g.requireSharer, g.withState, g.withPage, g.passThrough)
	r.GET("/bookings/:bookingId", g.requireSharer, g.withPathID("bookingId"), g.passThrough)
	r.PATCH("/bookings/:bookingId", g.requireSharer, g.withPathID("bookingId"), g.withApproved, g.passThrough)

	r.POST("/requests", g.requireSharer, g.createRequest)
	r.GET("/requests", g.requireSharer, g.passThrough)
	r.GET("/requests/all", g.requireSharer, g.withPage, g.passThrough)
	r.GET("/requests/:id", g.requireSharer, g.withPathID("id"), g.passThrough)
}

// Handler returns the gin engine.
func (g *Gateway) Handler() http.Handler {
	return g.engine
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Msg("Gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (g *Gateway) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := g.upstream.Ping(ctx); err != nil {
		g.requestLogger(c).Warn().Err(err).Msg("Server tier not ready")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
