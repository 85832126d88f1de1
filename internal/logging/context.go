// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scopeKey struct{}

// scope is the logging state carried by a context. Ids are attached by Ctx,
// so a stored logger must not carry them already.
type scope struct {
	logger        *zerolog.Logger
	correlationID string
	requestID     string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// GenerateCorrelationID returns the first 8 characters of a UUID. Every
// sync run and every API request gets one.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.correlationID = id })
}

func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns "" when ctx has none.
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = id })
}

// RequestIDFromContext returns "" when ctx has none.
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithLogger stores logger as the base for Ctx.
//
//nolint:gocritic // zerolog.Logger is passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return withScope(ctx, func(s *scope) { s.logger = &logger })
}

// LoggerFromContext returns the stored logger, or the global one.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l := scopeFrom(ctx).logger; l != nil {
		return *l
	}
	return Logger()
}

// Ctx returns the context logger with correlation_id and request_id attached.
//
//	logging.Ctx(ctx).Info().Int64("character_id", id).Msg("Contacts updated")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeFrom(ctx)
	base := Logger()
	if s.logger != nil {
		base = *s.logger
	}
	if s.correlationID == "" && s.requestID == "" {
		return &base
	}
	c := base.With()
	if s.correlationID != "" {
		c = c.Str("correlation_id", s.correlationID)
	}
	if s.requestID != "" {
		c = c.Str("request_id", s.requestID)
	}
	l := c.Logger()
	return &l
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
