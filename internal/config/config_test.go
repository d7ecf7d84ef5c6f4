package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  name: gatekeeper
  user: gk
  password: gk
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Pipeline.MotionThreshold != 35 {
		t.Errorf("Pipeline.MotionThreshold = %v, want 35", cfg.Pipeline.MotionThreshold)
	}
	if cfg.Pipeline.Cooldown != 5*time.Second {
		t.Errorf("Pipeline.Cooldown = %v, want 5s", cfg.Pipeline.Cooldown)
	}
	if cfg.Pipeline.SamplePeriod != time.Second {
		t.Errorf("Pipeline.SamplePeriod = %v, want 1s", cfg.Pipeline.SamplePeriod)
	}
	if cfg.Pipeline.MinPlateLength != 6 {
		t.Errorf("Pipeline.MinPlateLength = %d, want 6", cfg.Pipeline.MinPlateLength)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_key: secret
pipeline:
  motion_threshold: 50
  cooldown: 10s
recognition:
  endpoint: http://anpr:5000/recognize
  timeout: 3s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.APIKey != "secret" {
		t.Errorf("Server.APIKey = %q, want secret", cfg.Server.APIKey)
	}
	if cfg.Pipeline.MotionThreshold != 50 {
		t.Errorf("Pipeline.MotionThreshold = %v, want 50", cfg.Pipeline.MotionThreshold)
	}
	if cfg.Pipeline.Cooldown != 10*time.Second {
		t.Errorf("Pipeline.Cooldown = %v, want 10s", cfg.Pipeline.Cooldown)
	}
	if cfg.Recognition.Timeout != 3*time.Second {
		t.Errorf("Recognition.Timeout = %v, want 3s", cfg.Recognition.Timeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
pipeline:
  motion_threshold: 50
`)

	t.Setenv("GK_SERVER_PORT", "7070")
	t.Setenv("GK_MOTION_THRESHOLD", "42.5")
	t.Setenv("GK_COOLDOWN_MS", "2500")
	t.Setenv("GK_RECOGNITION_ENDPOINT", "http://override:5000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Pipeline.MotionThreshold != 42.5 {
		t.Errorf("Pipeline.MotionThreshold = %v, want 42.5", cfg.Pipeline.MotionThreshold)
	}
	if cfg.Pipeline.Cooldown != 2500*time.Millisecond {
		t.Errorf("Pipeline.Cooldown = %v, want 2.5s", cfg.Pipeline.Cooldown)
	}
	if cfg.Recognition.Endpoint != "http://override:5000" {
		t.Errorf("Recognition.Endpoint = %q", cfg.Recognition.Endpoint)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "gk", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/gk?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
