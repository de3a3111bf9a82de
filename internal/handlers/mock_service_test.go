package handlers

import (
	"context"
	"sync"
	"time"

	"bellalarm/internal/models"
	"bellalarm/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDevice struct {
	mu      sync.Mutex
	resp    models.DeviceStatus
	err     error
	intents []models.UserIntent
	mon     *mockMonitoring // receives the applied status when set
}

func (m *mockDevice) Apply(ctx context.Context, intent models.UserIntent) (models.DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents = append(m.intents, intent)
	if m.err != nil {
		return models.DeviceStatus{}, m.err
	}
	st := m.resp
	if st == (models.DeviceStatus{}) {
		st = models.DeviceStatus{
			MotorButtonOn: intent.MotorButtonOn,
			AlarmButtonOn: intent.AlarmButtonOn,
			AlarmTime:     intent.AlarmTime,
		}
	}
	if m.mon != nil {
		m.mon.set(st)
	}
	return st, nil
}

func (m *mockDevice) applied() []models.UserIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserIntent(nil), m.intents...)
}

type mockMonitoring struct {
	mu    sync.Mutex
	state models.DeviceStatus
	err   error
	calls int
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

func (m *mockMonitoring) set(st models.DeviceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st
}

// stubEventRepo backs a real EventLogService so filter validation runs.
type stubEventRepo struct {
	events   []models.DeviceEvent
	err      error
	calls    int
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (r *stubEventRepo) Append(ctx context.Context, e models.DeviceEvent) error { return nil }

func (r *stubEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	r.calls++
	r.lastFrom, r.lastTo, r.lastType = from, to, typ
	return r.events, r.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
