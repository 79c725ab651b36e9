package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (g *Gateway) createUser(c *gin.Context) {
	var req models.NewUser
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) updateUser(c *gin.Context) {
	var req models.UserUpdate
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) createItem(c *gin.Context) {
	var req models.NewItem
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) updateItem(c *gin.Context) {
	var req models.ItemUpdate
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) addComment(c *gin.Context) {
	var req models.NewComment
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) createBooking(c *gin.Context) {
	var req models.NewBooking
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

func (g *Gateway) createRequest(c *gin.Context) {
	var req models.NewItemRequest
	if g.bindBody(c, &req) {
		g.passThrough(c)
	}
}

// bindBody decodes and validates the JSON body, keeping the raw bytes
// for forwarding. It writes the 400 response itself on failure.
func (g *Gateway) bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		if fields, ok := fieldErrors(err); ok {
			g.requestLogger(c).Debug().Interface("errors", fields).Msg("Validation failed")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": fields})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// passThrough forwards the request and copies the server reply verbatim.
func (g *Gateway) passThrough(c *gin.Context) {
	var body []byte
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		body, _ = raw.([]byte)
	}

	resp, err := g.upstream.Forward(c.Request.Context(), ForwardRequest{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Query:     c.Request.URL.Query(),
		UserID:    strings.TrimSpace(c.GetHeader(identityHeader)),
		RequestID: c.GetString(requestIDKey),
		Body:      body,
	})
	if err != nil {
		status := http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		g.requestLogger(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Upstream call failed")
		c.JSON(status, gin.H{"error": "server unavailable"})
		return
	}

	if len(resp.Body) == 0 {
		c.Status(resp.Status)
		return
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.Status, contentType, resp.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
