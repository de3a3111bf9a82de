// Package gateway owns the panel's WebSocket connection to the bell device.
//
// A Manager runs the connection lifecycle
//
//	Disconnected -> Connecting -> Open -> Disconnected -> (fixed delay) -> Connecting ...
//
// for as long as its context lives. There is no retry limit and no backoff:
// every close or failed dial arms exactly one reconnect timer with the same
// delay. Inbound frames are decoded as device statuses and handed to the
// registered callbacks; outbound intents are written with Send.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bellalarm/internal/logger"
	"bellalarm/internal/models"
)

const (
	// DefaultReconnectDelay is the fixed pause between a close and the next dial.
	DefaultReconnectDelay = 2 * time.Second

	writeWait  = 10 * time.Second
	closeWait  = time.Second
	maxMsgSize = 1 << 12 // 4 KB
	wsPath     = "/ws"
)

var (
	ErrNotConnected   = errors.New("gateway: not connected")
	ErrAlreadyRunning = errors.New("gateway: connect loop already running")
)

// URL builds the gateway address for a device host ("bell.local" or "10.0.0.7:8080").
func URL(host string) string {
	u := url.URL{Scheme: "ws", Host: host, Path: wsPath}
	return u.String()
}

// timerFunc arms a one-shot timer and returns its channel and a stop function.
type timerFunc func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Option configures a Manager.
type Option func(*Manager)

func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithHandshakeTimeout bounds the opening handshake. Zero keeps it unbounded.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(m *Manager) { m.dialer.HandshakeTimeout = d }
}

// Manager is the connection manager. Its methods are safe for concurrent use.
type Manager struct {
	url    string
	dialer *websocket.Dialer
	delay  time.Duration
	log    *logger.Logger
	timer  timerFunc

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	running        bool
	statusHandlers []func(models.DeviceStatus)
	stateHandlers  []func(State)
}

// New returns a Manager for the gateway at rawURL. It does not dial until
// Connect is called.
func New(rawURL string, opts ...Option) *Manager {
	m := &Manager{
		url:    rawURL,
		dialer: &websocket.Dialer{Proxy: websocket.DefaultDialer.Proxy},
		delay:  DefaultReconnectDelay,
		log:    logger.Nop(),
		timer:  realTimer,
		state:  Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnStatus registers a callback for every decoded device status.
// Callbacks run on the read goroutine and should hand work off quickly.
func (m *Manager) OnStatus(fn func(models.DeviceStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusHandlers = append(m.statusHandlers, fn)
}

// OnStateChange registers a callback for lifecycle transitions.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateHandlers = append(m.stateHandlers, fn)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect runs the lifecycle until ctx is cancelled and then returns ctx's
// error. Only one Connect may run per Manager.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	for {
		m.session(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		// The only place a reconnect timer is armed, so at most one is pending.
		fire, stop := m.timer(m.delay)
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case <-fire:
		}
	}
}

// Send writes intent as one JSON text frame.
func (m *Manager) Send(intent models.UserIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Open || m.conn == nil {
		return ErrNotConnected
	}
	_ = m.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := m.conn.WriteJSON(intent); err != nil {
		return fmt.Errorf("send intent: %w", err)
	}
	return nil
}

// session performs one dial and, when it succeeds, reads until the socket
// closes. It always leaves the manager Disconnected.
func (m *Manager) session(ctx context.Context) {
	m.setState(Connecting, nil)
	m.log.Infow("ws_connecting", "url", m.url)

	conn, _, err := m.dialer.DialContext(ctx, m.url, nil)
	if err != nil {
		m.log.Warnw("ws_dial_failed", "url", m.url, "err", err)
		m.setState(Disconnected, nil)
		return
	}
	conn.SetReadLimit(maxMsgSize)

	m.setState(Open, conn)
	m.log.Infow("ws_open", "url", m.url)

	stop := context.AfterFunc(ctx, func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		_ = conn.Close()
	})
	defer stop()

	err = m.readLoop(conn)
	_ = conn.Close()

	m.setState(Disconnected, nil)
	m.log.Infow("ws_closed", "url", m.url, "err", err)
}

func (m *Manager) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var st models.DeviceStatus
		if err := json.Unmarshal(data, &st); err != nil {
			m.log.Errorw("ws_decode_failed", "err", err, "frame", string(data))
			continue
		}
		m.dispatch(st)
	}
}

func (m *Manager) dispatch(st models.DeviceStatus) {
	m.mu.Lock()
	handlers := append([]func(models.DeviceStatus){}, m.statusHandlers...)
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(st)
	}
}

// setState records the transition and the live connection, then notifies
// listeners outside the lock.
func (m *Manager) setState(s State, conn *websocket.Conn) {
	m.mu.Lock()
	m.state = s
	m.conn = conn
	handlers := append([]func(State){}, m.stateHandlers...)
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(s)
	}
}
