// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil reads and writes the per-request values keyed in ctxkey.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/rankboard/internal/platform/ctxkey"
	"github.com/taibuivan/rankboard/internal/platform/sec"
)

// # Request Tracing

// WithRequestID attaches the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request logger. Authentication replaces it with a
// child carrying member_id.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default] for
// background work such as authctl commands.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithPrincipal records the member a token resolved to.
func WithPrincipal(ctx context.Context, principal sec.Principal) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPrincipal, principal)
}

// GetPrincipal returns the resolved member, or nil when the request carried
// no access token.
func GetPrincipal(ctx context.Context) sec.Principal {
	principal, ok := ctx.Value(ctxkey.KeyPrincipal).(sec.Principal)
	if !ok {
		return nil
	}
	return principal
}
