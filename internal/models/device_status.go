package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MotorStatus is the physical state of the bell mechanism as reported by the device.
type MotorStatus int

const (
	MotorStopped MotorStatus = iota
	MotorRunning
	MotorStopping
)

// Bell indicator classes, one per motor status.
const (
	BellClassStopped  = "stopped_bell"
	BellClassRunning  = "running_bell"
	BellClassStopping = "stopping_bell"
)

var (
	ErrUnknownMotorStatus = errors.New("unknown motor status")
	ErrInvalidAlarmTime   = errors.New("invalid alarm time: expected HH:MM")
)

func (s MotorStatus) String() string {
	switch s {
	case MotorStopped:
		return "stopped"
	case MotorRunning:
		return "running"
	case MotorStopping:
		return "stopping"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// BellClass returns the indicator class for the status.
func (s MotorStatus) BellClass() (string, error) {
	switch s {
	case MotorStopped:
		return BellClassStopped, nil
	case MotorRunning:
		return BellClassRunning, nil
	case MotorStopping:
		return BellClassStopping, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownMotorStatus, int(s))
	}
}

// Valid reports whether s is one of the three known states.
func (s MotorStatus) Valid() bool {
	return s >= MotorStopped && s <= MotorStopping
}

// UnmarshalJSON accepts only the integers 0, 1 and 2.
func (s *MotorStatus) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode motor status: %w", err)
	}
	v := MotorStatus(n)
	if !v.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMotorStatus, n)
	}
	*s = v
	return nil
}

// DeviceStatus is the frame the device pushes over the gateway.
type DeviceStatus struct {
	MotorButtonOn bool        `json:"motorButtonOn"`
	AlarmButtonOn bool        `json:"alarmButtonOn"`
	AlarmTime     string      `json:"alarmTime"`   // HH:MM
	MotorStatus   MotorStatus `json:"motorStatus"` // 0 stopped, 1 running, 2 stopping
}

// UserIntent is the frame the panel sends back to the device.
type UserIntent struct {
	MotorButtonOn bool   `json:"motorButtonOn"`
	AlarmButtonOn bool   `json:"alarmButtonOn"`
	AlarmTime     string `json:"alarmTime"`
}

// ParseAlarmTime splits an "HH:MM" alarm time into hour and minute.
func ParseAlarmTime(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, ErrInvalidAlarmTime
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidAlarmTime
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidAlarmTime
	}
	return hour, minute, nil
}
