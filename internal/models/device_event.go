package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event types recorded by the device simulator.
const (
	EventIntent        = "INTENT"
	EventMotorStart    = "MOTOR_START"
	EventMotorStopping = "MOTOR_STOPPING"
	EventMotorStopped  = "MOTOR_STOPPED"
	EventAlarm         = "ALARM"
)

var ErrUnknownEventType = errors.New("unknown event type")

// ParseEventType canonicalizes s (case and surrounding spaces are ignored)
// and rejects anything that is not one of the Event* types.
func ParseEventType(s string) (string, error) {
	typ := strings.ToUpper(strings.TrimSpace(s))
	switch typ {
	case EventIntent, EventMotorStart, EventMotorStopping, EventMotorStopped, EventAlarm:
		return typ, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
}

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // INTENT | MOTOR_START | MOTOR_STOPPING | MOTOR_STOPPED | ALARM
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
