// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setEnv isolates the process environment for a config load.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	os.Clearenv()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Sync.MinStanding != 0.1 {
		t.Errorf("Sync.MinStanding = %v, want 0.1", cfg.Sync.MinStanding)
	}
	if cfg.Sync.AddWarTargets {
		t.Error("Sync.AddWarTargets should be false by default")
	}
	if !cfg.Sync.ReplaceContacts {
		t.Error("Sync.ReplaceContacts should be true by default")
	}
	if cfg.Sync.WarTargetsLabelName != "WAR TARGETS" {
		t.Errorf("Sync.WarTargetsLabelName = %q, want WAR TARGETS", cfg.Sync.WarTargetsLabelName)
	}
	if cfg.Sync.DeleteBatchSize != 20 || cfg.Sync.WriteBatchSize != 100 {
		t.Errorf("batch sizes = %d/%d, want 20/100", cfg.Sync.DeleteBatchSize, cfg.Sync.WriteBatchSize)
	}
	if cfg.ESI.BaseURL != "https://esi.evetech.net/latest" {
		t.Errorf("ESI.BaseURL = %q", cfg.ESI.BaseURL)
	}
	if cfg.Dispatch.Transport != "memory" {
		t.Errorf("Dispatch.Transport = %q, want memory", cfg.Dispatch.Transport)
	}
	if cfg.Database.Path != "/data/standingsync.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8740 {
		t.Errorf("Server.Port = %d, want 8740", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"STANDINGSSYNC_CHAR_MIN_STANDING", "sync.min_standing"},
		{"STANDINGSSYNC_ADD_WAR_TARGETS", "sync.add_war_targets"},
		{"STANDINGSSYNC_REPLACE_CONTACTS", "sync.replace_contacts"},
		{"STANDINGSSYNC_WAR_TARGETS_LABEL_NAME", "sync.war_targets_label_name"},
		{"DUCKDB_PATH", "database.path"},
		{"TOKEN_ENCRYPTION_SECRET", "security.encryption_secret"},
		{"EVE_CLIENT_ID", "sso.client_id"},
		{"DISPATCH_TRANSPORT", "dispatch.transport"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
	origPaths := DefaultConfigPaths
	DefaultConfigPaths = []string{filepath.Join(tmpDir, "also-missing.yaml")}
	defer func() { DefaultConfigPaths = origPaths }()
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	setEnv(t, map[string]string{
		"TOKEN_ENCRYPTION_SECRET":         testSecret,
		"STANDINGSSYNC_CHAR_MIN_STANDING": "5",
		"STANDINGSSYNC_ADD_WAR_TARGETS":   "true",
		"STANDINGSSYNC_REPLACE_CONTACTS":  "false",
		"SYNC_INTERVAL":                   "10m",
		"HTTP_PORT":                       "9000",
		"LOG_LEVEL":                       "debug",
	})

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Sync.MinStanding != 5 {
		t.Errorf("Sync.MinStanding = %v, want 5", cfg.Sync.MinStanding)
	}
	if !cfg.Sync.AddWarTargets {
		t.Error("Sync.AddWarTargets = false, want true")
	}
	if cfg.Sync.ReplaceContacts {
		t.Error("Sync.ReplaceContacts = true, want false")
	}
	if cfg.Sync.Interval != 10*time.Minute {
		t.Errorf("Sync.Interval = %v, want 10m", cfg.Sync.Interval)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Sync.WriteBatchSize != 100 {
		t.Errorf("Sync.WriteBatchSize = %d, want default 100", cfg.Sync.WriteBatchSize)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
sync:
  min_standing: 0.5
  war_targets_label_name: "HOSTILES"
dispatch:
  workers: 8
security:
  encryption_secret: "` + testSecret + `"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	setEnv(t, map[string]string{ConfigPathEnvVar: path, "DISPATCH_WORKERS": "2"})

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Sync.MinStanding != 0.5 {
		t.Errorf("Sync.MinStanding = %v, want 0.5", cfg.Sync.MinStanding)
	}
	if cfg.Sync.WarTargetsLabelName != "HOSTILES" {
		t.Errorf("Sync.WarTargetsLabelName = %q, want HOSTILES", cfg.Sync.WarTargetsLabelName)
	}
	if cfg.Dispatch.Workers != 2 {
		t.Errorf("Dispatch.Workers = %d, want 2 (env overrides file)", cfg.Dispatch.Workers)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{}, "TOKEN_ENCRYPTION_SECRET"},
		{"short secret", map[string]string{"TOKEN_ENCRYPTION_SECRET": "short"}, "at least"},
		{
			"min standing out of range",
			map[string]string{"TOKEN_ENCRYPTION_SECRET": testSecret, "STANDINGSSYNC_CHAR_MIN_STANDING": "11"},
			"STANDINGSSYNC_CHAR_MIN_STANDING",
		},
		{
			"delete batch too large",
			map[string]string{"TOKEN_ENCRYPTION_SECRET": testSecret, "SYNC_DELETE_BATCH_SIZE": "21"},
			"SYNC_DELETE_BATCH_SIZE",
		},
		{
			"unknown transport",
			map[string]string{"TOKEN_ENCRYPTION_SECRET": testSecret, "DISPATCH_TRANSPORT": "kafka"},
			"DISPATCH_TRANSPORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
