package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Panel.ReconnectDelay != 2*time.Second || cfg.Panel.RefreshInterval != 2*time.Second {
		t.Fatalf("unexpected panel timings: %+v", cfg.Panel)
	}
	if cfg.Device.Port != "8080" || cfg.Device.DBPath != "bell.db" {
		t.Fatalf("unexpected device defaults: %+v", cfg.Device)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bell.yml")
	body := []byte("panel:\n  host: bell.local\n  reconnect_delay: 500ms\ndevice:\n  port: \"9090\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BELL_DEVICE_PORT", "7070")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Panel.Host != "bell.local" {
		t.Errorf("host = %q", cfg.Panel.Host)
	}
	if cfg.Panel.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("reconnect delay = %s", cfg.Panel.ReconnectDelay)
	}
	if cfg.Device.Port != "7070" {
		t.Errorf("env override not applied, port = %q", cfg.Device.Port)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Panel:  PanelConfig{Host: "bell.local", ReconnectDelay: time.Second, RefreshInterval: time.Second},
		Device: DeviceConfig{Tick: time.Second, WSInterval: time.Second},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.Panel.Host = " "
	if err := bad.Validate(); err == nil {
		t.Errorf("empty host accepted")
	}

	bad = base
	bad.Panel.ReconnectDelay = 0
	if err := bad.Validate(); err == nil {
		t.Errorf("zero reconnect delay accepted")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
