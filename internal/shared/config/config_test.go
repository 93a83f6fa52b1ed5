package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BDA_PROJECT_NAME", "")
	t.Setenv("BDA_POLL_INTERVAL", "")
	t.Setenv("INPUT_SUFFIXES", "")

	cfg := Load()

	if cfg.ProjectName != defaultProjectName {
		t.Fatalf("ProjectName = %q, want %q", cfg.ProjectName, defaultProjectName)
	}
	if cfg.ProjectStage != "LIVE" {
		t.Fatalf("ProjectStage = %q, want LIVE", cfg.ProjectStage)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("PollInterval = %s, want 10s", cfg.PollInterval)
	}
	if len(cfg.InputSuffixes) != 7 {
		t.Fatalf("InputSuffixes = %v, want 7 entries", cfg.InputSuffixes)
	}
	if cfg.WaitForCompletion {
		t.Fatalf("expected fire-and-forget default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BDA_PROJECT_NAME", "claims")
	t.Setenv("BDA_PROJECT_STAGE", "dev")
	t.Setenv("BDA_POLL_INTERVAL", "2s")
	t.Setenv("BDA_POLL_TIMEOUT", "1m")
	t.Setenv("BDA_POLL_MAX_ATTEMPTS", "12")
	t.Setenv("BDA_WAIT_FOR_COMPLETION", "true")
	t.Setenv("BDA_BLUEPRINTS", "well-report, ,casing-summary")
	t.Setenv("INPUT_SUFFIXES", ".PDF,.png")

	cfg := Load()

	if cfg.ProjectName != "claims" {
		t.Fatalf("ProjectName = %q", cfg.ProjectName)
	}
	if cfg.ProjectStage != "DEVELOPMENT" {
		t.Fatalf("ProjectStage = %q, want DEVELOPMENT", cfg.ProjectStage)
	}
	if cfg.PollInterval != 2*time.Second || cfg.PollTimeout != time.Minute {
		t.Fatalf("poll settings = %s/%s", cfg.PollInterval, cfg.PollTimeout)
	}
	if cfg.PollMaxAttempts != 12 {
		t.Fatalf("PollMaxAttempts = %d", cfg.PollMaxAttempts)
	}
	if !cfg.WaitForCompletion {
		t.Fatalf("expected WaitForCompletion")
	}
	if len(cfg.Blueprints) != 2 || cfg.Blueprints[1] != "casing-summary" {
		t.Fatalf("Blueprints = %v", cfg.Blueprints)
	}
	if cfg.InputSuffixes[0] != ".pdf" {
		t.Fatalf("InputSuffixes = %v, want lower-cased", cfg.InputSuffixes)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("BDA_POLL_QUERY_RETRIES", "many")
	t.Setenv("BDA_POLL_TIMEOUT", "forever")

	cfg := Load()

	if cfg.PollQueryRetries != 3 {
		t.Fatalf("PollQueryRetries = %d, want default 3", cfg.PollQueryRetries)
	}
	if cfg.PollTimeout != defaultPollTimeout {
		t.Fatalf("PollTimeout = %s, want default", cfg.PollTimeout)
	}
}

func TestParseEnvLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		wantKey string
		wantVal string
		wantOK  bool
	}{
		{name: "plain", line: "A=b", wantKey: "A", wantVal: "b", wantOK: true},
		{name: "quoted", line: `BUCKET_NAME="docs"`, wantKey: "BUCKET_NAME", wantVal: "docs", wantOK: true},
		{name: "export", line: "export LOG_LEVEL=DEBUG", wantKey: "LOG_LEVEL", wantVal: "DEBUG", wantOK: true},
		{name: "comment", line: "# A=b", wantOK: false},
		{name: "no equals", line: "JUSTAKEY", wantOK: false},
		{name: "empty key", line: "=value", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, val, ok := parseEnvLine(tt.line)
			if ok != tt.wantOK || key != tt.wantKey || val != tt.wantVal {
				t.Fatalf("parseEnvLine(%q) = %q, %q, %v", tt.line, key, val, ok)
			}
		})
	}
}
