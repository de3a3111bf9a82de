package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellalarm/internal/models"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// deviceServer is a stand-in for the bell firmware's /ws endpoint.
type deviceServer struct {
	*httptest.Server
	accepts  atomic.Int32
	received chan []byte
	handle   func(conn *websocket.Conn)
}

func newDeviceServer(t *testing.T, handle func(conn *websocket.Conn)) *deviceServer {
	t.Helper()
	ds := &deviceServer{received: make(chan []byte, 16), handle: handle}
	ds.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		ds.accepts.Add(1)
		ds.handle(conn)
	}))
	t.Cleanup(ds.Close)
	return ds
}

// drain forwards every frame the panel sends until the socket closes.
func (ds *deviceServer) drain(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ds.received <- data
	}
}

func (ds *deviceServer) host() string {
	return strings.TrimPrefix(ds.URL, "http://")
}

// fakeTimers replaces the reconnect timer so tests control when it fires.
type fakeTimers struct {
	mu         sync.Mutex
	delays     []time.Duration
	chans      []chan time.Time
	pending    int
	maxPending int
}

func (f *fakeTimers) newTimer(d time.Duration) (<-chan time.Time, func() bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := make(chan time.Time, 1)
	f.delays = append(f.delays, d)
	f.chans = append(f.chans, c)
	f.pending++
	if f.pending > f.maxPending {
		f.maxPending = f.pending
	}
	stopped := false
	return c, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !stopped {
			stopped = true
			f.pending--
		}
		return true
	}
}

func (f *fakeTimers) armed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delays)
}

func (f *fakeTimers) fire(i int) {
	f.mu.Lock()
	c := f.chans[i]
	f.pending--
	f.mu.Unlock()
	c <- time.Now()
}

func startManager(t *testing.T, m *Manager) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Connect(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(waitFor):
			t.Errorf("Connect did not return after cancel")
		}
	})
	return cancel
}

func TestURL(t *testing.T) {
	assert.Equal(t, "ws://bell.local/ws", URL("bell.local"))
	assert.Equal(t, "ws://10.0.0.7:8080/ws", URL("10.0.0.7:8080"))
}

func TestManager_DeliversStatuses(t *testing.T) {
	frame := `{"motorButtonOn":true,"alarmButtonOn":false,"alarmTime":"06:15","motorStatus":1}`
	ds := newDeviceServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		_, _, _ = conn.ReadMessage()
	})

	got := make(chan models.DeviceStatus, 1)
	m := New(URL(ds.host()))
	m.OnStatus(func(st models.DeviceStatus) { got <- st })
	startManager(t, m)

	select {
	case st := <-got:
		assert.Equal(t, models.DeviceStatus{
			MotorButtonOn: true,
			AlarmTime:     "06:15",
			MotorStatus:   models.MotorRunning,
		}, st)
	case <-time.After(waitFor):
		t.Fatal("no status delivered")
	}
	assert.Equal(t, Open, m.State())
}

func TestManager_DropsMalformedFrames(t *testing.T) {
	ds := newDeviceServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"motorStatus":9}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"alarmTime":"05:00","motorStatus":2}`))
		_, _, _ = conn.ReadMessage()
	})

	got := make(chan models.DeviceStatus, 4)
	m := New(URL(ds.host()))
	m.OnStatus(func(st models.DeviceStatus) { got <- st })
	startManager(t, m)

	select {
	case st := <-got:
		assert.Equal(t, "05:00", st.AlarmTime)
		assert.Equal(t, models.MotorStopping, st.MotorStatus)
	case <-time.After(waitFor):
		t.Fatal("valid frame after malformed ones was not delivered")
	}
	assert.Empty(t, got)
	assert.Equal(t, Open, m.State(), "bad frames must not drop the connection")
}

func TestManager_SendRequiresOpen(t *testing.T) {
	m := New("ws://127.0.0.1:1/ws")
	err := m.Send(models.UserIntent{MotorButtonOn: true})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestManager_SendWritesIntentFrame(t *testing.T) {
	var ds *deviceServer
	ds = newDeviceServer(t, func(conn *websocket.Conn) { ds.drain(conn) })

	m := New(URL(ds.host()))
	startManager(t, m)
	require.Eventually(t, func() bool { return m.State() == Open }, waitFor, tick)

	intent := models.UserIntent{MotorButtonOn: true, AlarmButtonOn: false, AlarmTime: "07:30"}
	require.NoError(t, m.Send(intent))

	select {
	case data := <-ds.received:
		assert.JSONEq(t, `{"motorButtonOn":true,"alarmButtonOn":false,"alarmTime":"07:30"}`, string(data))
		var back models.UserIntent
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, intent, back)
	case <-time.After(waitFor):
		t.Fatal("device did not receive the intent")
	}
}

func TestManager_ReconnectsAfterFixedDelay(t *testing.T) {
	// The device hangs up on every connection right away.
	ds := newDeviceServer(t, func(conn *websocket.Conn) {})

	timers := &fakeTimers{}
	m := New(URL(ds.host()))
	m.timer = timers.newTimer

	var mu sync.Mutex
	var states []State
	m.OnStateChange(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	startManager(t, m)

	require.Eventually(t, func() bool { return timers.armed() == 1 }, waitFor, tick)
	assert.Equal(t, int32(1), ds.accepts.Load())
	assert.Equal(t, Disconnected, m.State())

	// Nothing dials again until the timer fires.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), ds.accepts.Load())
	assert.Equal(t, 1, timers.armed())

	timers.fire(0)
	require.Eventually(t, func() bool { return ds.accepts.Load() == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return timers.armed() == 2 }, waitFor, tick)

	timers.fire(1)
	require.Eventually(t, func() bool { return timers.armed() == 3 }, waitFor, tick)

	timers.mu.Lock()
	defer timers.mu.Unlock()
	for _, d := range timers.delays {
		assert.Equal(t, DefaultReconnectDelay, d)
	}
	assert.Equal(t, 1, timers.maxPending, "never two reconnect timers at once")

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(states), 6)
	assert.Equal(t, []State{Connecting, Open, Disconnected, Connecting, Open, Disconnected}, states[:6])
}

func TestManager_RetriesFailedDialsForever(t *testing.T) {
	ds := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(ds.URL, "http://")
	ds.Close()

	timers := &fakeTimers{}
	m := New(URL(host), WithReconnectDelay(500*time.Millisecond))
	m.timer = timers.newTimer
	startManager(t, m)

	for i := 0; i < 5; i++ {
		require.Eventually(t, func() bool { return timers.armed() == i+1 }, waitFor, tick)
		timers.fire(i)
	}
	require.Eventually(t, func() bool { return timers.armed() == 6 }, waitFor, tick)

	timers.mu.Lock()
	defer timers.mu.Unlock()
	for _, d := range timers.delays {
		assert.Equal(t, 500*time.Millisecond, d)
	}
	assert.Equal(t, 1, timers.maxPending)
}

func TestManager_ConnectTwiceFails(t *testing.T) {
	ds := newDeviceServer(t, func(conn *websocket.Conn) { _, _, _ = conn.ReadMessage() })
	m := New(URL(ds.host()))
	startManager(t, m)
	require.Eventually(t, func() bool { return m.State() == Open }, waitFor, tick)

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestManager_CancelStopsLoop(t *testing.T) {
	closed := make(chan struct{})
	ds := newDeviceServer(t, func(conn *websocket.Conn) {
		_, _, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			close(closed)
		}
	})

	m := New(URL(ds.host()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Connect(ctx) }()
	require.Eventually(t, func() bool { return m.State() == Open }, waitFor, tick)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Connect did not return")
	}
	select {
	case <-closed:
	case <-time.After(waitFor):
		t.Fatal("device did not see a normal close")
	}
	assert.Equal(t, Disconnected, m.State())
	assert.ErrorIs(t, m.Send(models.UserIntent{}), ErrNotConnected)
}
