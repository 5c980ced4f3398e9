// Package gateway talks to the remote REST store (a PostgREST-style
// `/rest/v1/{resource}` API).
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"rulegate/internal/core"
)

// DefaultTimeout bounds a single outbound call when Config.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Config describes how to reach the store
type Config struct {
	// BaseURL is the store root, e.g. "https://xyz.supabase.co"
	BaseURL string
	// Key is sent both as the apikey header and as the bearer token
	Key string
	// Timeout bounds each outbound call
	Timeout time.Duration
}

// Response is a successful store answer. Body is valid JSON, or empty.
type Response struct {
	Status int
	Body   []byte
}

// Empty reports whether the store sent no body
func (r *Response) Empty() bool {
	return len(bytes.TrimSpace(r.Body)) == 0
}

// Gateway performs exactly one store call per Request. It never retries,
// paginates or caches.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// New creates a Gateway
func New(cfg Config, log *zap.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// URL returns the endpoint for a resource
func (g *Gateway) URL(resource string) string {
	return g.cfg.BaseURL + "/rest/v1/" + resource
}

// Get fetches a resource
func (g *Gateway) Get(ctx context.Context, resource string) (*Response, error) {
	return g.Request(ctx, http.MethodGet, resource, nil)
}

// Post writes body to a resource and returns the created representation
func (g *Gateway) Post(ctx context.Context, resource string, body interface{}) (*Response, error) {
	return g.Request(ctx, http.MethodPost, resource, body)
}

// Request sends a GET or POST to the store. Any failure is a *core.GatewayError:
// store error statuses keep their code, transport failures use 500.
func (g *Gateway) Request(ctx context.Context, method, resource string, body interface{}) (*Response, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, core.NewTransportError(fmt.Errorf("unsupported method %s", method))
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, core.NewTransportError(fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	url := g.URL(resource)
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, core.NewTransportError(fmt.Errorf("failed to create request: %w", err))
	}
	for key, values := range g.buildHeaders() {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	g.log.Debug("store request", zap.String("method", method), zap.String("url", url))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.Warn("store request failed", zap.String("url", url), zap.Error(err))
		return nil, core.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	g.log.Debug("store response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		gerr := handleHTTPError(resp.StatusCode, respBody)
		g.log.Warn("store returned error", zap.Int("status", gerr.Status), zap.String("message", gerr.Message))
		return nil, gerr
	}

	out := &Response{Status: resp.StatusCode, Body: respBody}
	if !out.Empty() && !sonic.Valid(respBody) {
		return nil, core.NewTransportError(fmt.Errorf("malformed response body from %s", url))
	}
	return out, nil
}

// buildHeaders returns the fixed header set every store call carries
func (g *Gateway) buildHeaders() http.Header {
	headers := make(http.Header)
	headers.Set("apikey", g.cfg.Key)
	headers.Set("Authorization", "Bearer "+g.cfg.Key)
	headers.Set("Content-Type", "application/json")
	headers.Set("Prefer", "return=representation")
	return headers
}

// handleHTTPError prefers the body's non-null "message" field and falls back to the raw text
func handleHTTPError(statusCode int, body []byte) *core.GatewayError {
	msg := string(body)
	if gjson.ValidBytes(body) {
		root := gjson.ParseBytes(body)
		if root.IsObject() {
			if m := root.Get("message"); m.Exists() && m.Type != gjson.Null {
				msg = m.String()
			}
		}
	}
	return &core.GatewayError{Status: statusCode, Message: msg}
}
