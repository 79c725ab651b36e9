package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/identity"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	identityHeader  = identity.Header
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

func (g *Gateway) requestLogger(c *gin.Context) *zerolog.Logger {
	return logging.FromContext(c.Request.Context(), g.logger)
}

func (g *Gateway) recoverPanic(c *gin.Context, rec any) {
	g.requestLogger(c).Error().Interface("panic", rec).Msg("Panic while serving request")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (g *Gateway) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		reqLogger := g.logger.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))
		c.Next()
	}
}

func (g *Gateway) logRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveHTTP(c.FullPath(), c.Request.Method, status, dur)

		event := g.requestLogger(c).Info()
		if status >= http.StatusInternalServerError {
			event = g.requestLogger(c).Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("duration", dur).
			Msg("http request")
	}
}

// rateLimit applies a fixed window per sharer, or per client IP for
// anonymous calls. Store failures let the request through.
func (g *Gateway) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := g.cfg.RateLimit
		if g.limiter == nil || limit.Requests <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if raw := strings.TrimSpace(c.GetHeader(identityHeader)); raw != "" {
			key = "user:" + raw
		}

		allowed, err := g.limiter.CheckRateLimit(c.Request.Context(), key, limit.Requests, limit.Window)
		if err != nil {
			g.requestLogger(c).Warn().Err(err).Str("key", key).Msg("Rate limit check failed")
			c.Next()
			return
		}
		if !allowed {
			metrics.IncRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// requireSharer rejects requests without a numeric X-Sharer-User-Id.
func (g *Gateway) requireSharer(c *gin.Context) {
	_, ok, err := identity.Parse(c.Request.Header)
	switch {
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case !ok:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": identity.ErrMissing.Error()})
	default:
		c.Next()
	}
}

// optionalSharer accepts a missing header but not a malformed one.
func (g *Gateway) optionalSharer(c *gin.Context) {
	if _, _, err := identity.Parse(c.Request.Header); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (g *Gateway) withPathID(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := strconv.ParseInt(c.Param(name), 10, 64); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a number"})
			return
		}
		c.Next()
	}
}

// withPage validates the optional from/size pagination parameters.
func (g *Gateway) withPage(c *gin.Context) {
	errs := map[string]string{}
	if raw, ok := c.GetQuery("from"); ok {
		from, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs["from"] = "must be a number"
		case from < 0:
			errs["from"] = "must be greater than or equal to 0"
		}
	}
	if raw, ok := c.GetQuery("size"); ok {
		size, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs["size"] = "must be a number"
		case size <= 0:
			errs["size"] = "must be greater than 0"
		}
	}
	if len(errs) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	c.Next()
}

func (g *Gateway) withState(c *gin.Context) {
	if _, err := models.ParseBookingState(c.Query("state")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (g *Gateway) withApproved(c *gin.Context) {
	if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "approved must be true or false"})
		return
	}
	c.Next()
}
