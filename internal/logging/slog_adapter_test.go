// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Handle(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		wantLevel string
	}{
		{"info level", slog.LevelInfo, `"level":"info"`},
		{"warn level", slog.LevelWarn, `"level":"warn"`},
		{"error level", slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewSlogHandlerWithLogger(zerolog.New(&buf))

			record := slog.NewRecord(time.Now(), tt.level, "supervisor event", 0)
			if err := handler.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			output := buf.String()
			if !strings.Contains(output, tt.wantLevel) {
				t.Errorf("output missing %s: %s", tt.wantLevel, output)
			}
			if !strings.Contains(output, "supervisor event") {
				t.Errorf("output missing message: %s", output)
			}
		})
	}
}

func TestSlogHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	var handler slog.Handler = NewSlogHandlerWithLogger(zerolog.New(&buf))
	handler = handler.WithAttrs([]slog.Attr{slog.String("service", "scheduler")})
	handler = handler.WithGroup("restart")

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "service restarted", 0)
	record.AddAttrs(slog.Int("count", 3), slog.Duration("backoff", time.Second))
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{`"service":"scheduler"`, `"restart.count":3`, `"restart.backoff"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
	if strings.Contains(output, "restart.service") {
		t.Errorf("attribute added before the group was grouped: %s", output)
	}
}

func TestSlogHandler_NestedGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "nested", 0)
	record.AddAttrs(slog.Group("esi", slog.String("endpoint", "contacts"), slog.Bool("cached", true)))
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"esi.endpoint":"contacts"`) || !strings.Contains(output, `"esi.cached":true`) {
		t.Errorf("group attributes not flattened: %s", output)
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := zerologLevel(tt.level); got != tt.want {
			t.Errorf("zerologLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())

	NewSlogLogger().Info("through slog", "alliance_id", int64(99))

	if !strings.Contains(buf.String(), `"alliance_id":99`) {
		t.Errorf("expected slog attribute in zerolog output: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"component":"supervisor"`) {
		t.Errorf("expected supervisor component: %s", buf.String())
	}
}
