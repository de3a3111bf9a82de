package service

import (
	"time"

	"bellalarm/internal/logger"
)

const (
	DefaultStopDuration = 3 * time.Second
	DefaultRingDuration = 30 * time.Second
)

// SimulatorParams tunes the simulated motor.
type SimulatorParams struct {
	StopDuration time.Duration // Stopping -> Stopped
	RingDuration time.Duration // how long an alarm keeps the motor running
	Log          *logger.Logger
}

func (p SimulatorParams) withDefaults() SimulatorParams {
	if p.StopDuration <= 0 {
		p.StopDuration = DefaultStopDuration
	}
	if p.RingDuration <= 0 {
		p.RingDuration = DefaultRingDuration
	}
	if p.Log == nil {
		p.Log = logger.Nop()
	}
	return p
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "INTENT", "MOTOR_START", "MOTOR_STOPPING", "MOTOR_STOPPED", "ALARM"
}
