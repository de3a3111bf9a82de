package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bellalarm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Upgrader for HTTP -> WebSocket. The panel may be served from any origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect serves the device gateway: DeviceStatus frames out, UserIntent
// frames in. A status is pushed on connect, whenever it changes and right
// after every applied intent.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	ctx := c.Request.Context()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine applies intents and detects disconnects.
	done := make(chan struct{})
	applied := make(chan struct{}, 1)
	go h.startReader(ctx, conn, done, applied)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send initial status immediately.
	last, err := h.sendStatus(ctx, conn)
	if err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	// Writer/select loop; the only goroutine writing to conn.
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-applied:
			if last, err = h.sendStatus(ctx, conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			st, err := h.services.Monitoring.GetStatus(ctx)
			if err != nil {
				if h.log != nil {
					h.log.Errorw("ws_get_status_failed", "err", err)
				}
				continue
			}
			if st == last {
				continue
			}
			if err := writeStatus(conn, st); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
			last = st
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := h.wsInterval
	if interval <= 0 {
		interval = defaultInterval
	}

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader decodes intent frames and applies them. Undecodable or
// rejected intents are logged and skipped; the connection stays open.
func (h *Handler) startReader(ctx context.Context, conn *websocket.Conn, done chan<- struct{}, applied chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}

		var intent models.UserIntent
		if err := json.Unmarshal(data, &intent); err != nil {
			if h.log != nil {
				h.log.Warnw("ws_intent_decode_failed", "err", err, "bytes", len(data))
			}
			continue
		}

		if _, err := h.services.Device.Apply(ctx, intent); err != nil {
			if h.log != nil {
				if errors.Is(err, models.ErrInvalidAlarmTime) {
					h.log.Warnw("ws_intent_rejected", "err", err, "alarm_time", intent.AlarmTime)
				} else {
					h.log.Errorw("ws_intent_apply_failed", "err", err)
				}
			}
			continue
		}

		select {
		case applied <- struct{}{}:
		default: // a push is already pending
		}
	}
}

// sendStatus fetches and writes the current status.
func (h *Handler) sendStatus(ctx context.Context, conn *websocket.Conn) (models.DeviceStatus, error) {
	st, err := h.services.Monitoring.GetStatus(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_status_failed", "err", err)
		}
		return models.DeviceStatus{}, err
	}
	return st, writeStatus(conn, st)
}

func writeStatus(conn *websocket.Conn, st models.DeviceStatus) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(st)
}
