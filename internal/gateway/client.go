package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shareit/internal/identity"
)

// ServerClient forwards validated requests to the server tier.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// UpstreamResponse is a server reply passed back to the caller as is.
type UpstreamResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// ForwardRequest describes one proxied call.
type ForwardRequest struct {
	Method    string
	Path      string
	Query     url.Values
	UserID    string
	RequestID string
	Body      []byte
}

func NewServerClient(baseURL string, timeout time.Duration) *ServerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ServerClient) Forward(ctx context.Context, fr ForwardRequest) (*UpstreamResponse, error) {
	endpoint := c.baseURL + fr.Path
	if len(fr.Query) > 0 {
		endpoint += "?" + fr.Query.Encode()
	}

	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}

	req, err := http.NewRequestWithContext(ctx, fr.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if fr.UserID != "" {
		req.Header.Set(identity.Header, fr.UserID)
	}
	if fr.RequestID != "" {
		req.Header.Set(requestIDHeader, fr.RequestID)
	}

	return c.do(req)
}

// Ping checks server readiness.
func (c *ServerClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("server not ready: http %d", resp.Status)
	}
	return nil
}

func (c *ServerClient) do(req *http.Request) (*UpstreamResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return &UpstreamResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
