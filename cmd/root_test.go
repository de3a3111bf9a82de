package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellalarm/internal/config"
	"bellalarm/internal/models"
	"bellalarm/internal/panel"
	"bellalarm/internal/service"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "bellalarm", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.SilenceUsage)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["panel"])
	assert.True(t, names["simulate"])

	require.NotNil(t, root.PersistentFlags().Lookup("config"))
	require.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

// stubRun replaces the RunE of a subcommand so nothing is started.
func stubRun(t *testing.T, root *cobra.Command, name string) {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			c.RunE = func(*cobra.Command, []string) error { return nil }
			return
		}
	}
	t.Fatalf("no %s command", name)
}

func TestRootCommand_FlagsOverrideConfig(t *testing.T) {
	chdir(t, t.TempDir()) // no configs/config.yml here

	a := &app{v: config.New()}
	root := newRootCmdFor(a)
	stubRun(t, root, "panel")
	root.SetArgs([]string{"--log-level", "debug", "panel", "--host", "bell.local:9000"})
	require.NoError(t, root.Execute())

	require.NotNil(t, a.cfg)
	assert.Equal(t, "bell.local:9000", a.cfg.Panel.Host)
	assert.Equal(t, "debug", a.cfg.Log.Level)
	assert.Equal(t, config.DefaultReconnectDelay, a.cfg.Panel.ReconnectDelay)
}

func TestRootCommand_MissingExplicitConfigFails(t *testing.T) {
	root := newRootCmd()
	stubRun(t, root, "panel")
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yml"), "panel"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestRootCommand_LoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.yml")
	require.NoError(t, os.WriteFile(path, []byte("panel:\n  host: device.lan\n"), 0o644))

	a := &app{v: config.New()}
	root := newRootCmdFor(a)
	stubRun(t, root, "simulate")
	root.SetArgs([]string{"--config", path, "simulate", "--port", "9999", "--db", "x.db"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "device.lan", a.cfg.Panel.Host)
	assert.Equal(t, "9999", a.cfg.Device.Port)
	assert.Equal(t, "x.db", a.cfg.Device.DBPath)
}

func TestRenderLine(t *testing.T) {
	p := panel.New()
	require.NoError(t, p.Apply(models.DeviceStatus{MotorButtonOn: true, AlarmTime: "06:30", MotorStatus: models.MotorRunning}))

	line := renderLine(p)
	assert.Contains(t, line, "motor=checked")
	assert.Contains(t, line, "alarm=-")
	assert.Contains(t, line, "alarm_time=06:30")
	assert.Contains(t, line, "bell="+models.BellClassRunning)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunHeadless_PrintsDeviceStatus(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(models.DeviceStatus{AlarmButtonOn: true, AlarmTime: "05:45", MotorStatus: models.MotorStopping})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		Log: config.LogConfig{Level: "error"},
		Panel: config.PanelConfig{
			Host:            strings.TrimPrefix(srv.URL, "http://"),
			ReconnectDelay:  50 * time.Millisecond,
			RefreshInterval: time.Second,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runHeadless(ctx, cfg, out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "alarm_time=05:45")
	}, 3*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "bell="+models.BellClassStopping)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runHeadless did not stop")
	}
}

func TestSimulatorDefaultsMatchConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, service.DefaultRingDuration, cfg.Device.RingDuration)
	assert.Equal(t, service.DefaultStopDuration, cfg.Device.StopDuration)
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
