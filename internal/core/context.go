package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey struct{}

// RequestContext carries per-request state through handlers and the core components
type RequestContext struct {
	context.Context
	RequestID string
	StartTime time.Time
	Log       *zap.Logger
}

// NewRequestContext creates a RequestContext with a fresh request id.
// The logger is scoped with the request id so callers don't repeat it.
func NewRequestContext(ctx context.Context, logger *zap.Logger) *RequestContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &RequestContext{
		Context:   ctx,
		RequestID: id,
		StartTime: time.Now(),
		Log:       logger.With(zap.String("request_id", id)),
	}
}

// WithRequestContext stores rc in ctx
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, or a detached one
// with a no-op logger when none is present.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return rc
	}
	return NewRequestContext(ctx, nil)
}

// Elapsed returns the time since the request started
func (c *RequestContext) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}
