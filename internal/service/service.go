package service

import (
	"context"
	"sync"
	"time"

	"bellalarm/internal/models"
	"bellalarm/internal/repository"
)

// Device applies user intents to the simulated bell device.
type Device interface {
	Apply(ctx context.Context, intent models.UserIntent) (models.DeviceStatus, error)
}

// Monitoring exposes the read-only device status.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.DeviceStatus, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Simulator runs the background loop that advances the motor and fires the alarm.
// Stop via context cancellation for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Device
	Monitoring
	EventLog
	Simulator
}

// NewService wires the repository layer into concrete services. Device and
// Simulator both rewrite the single state row and share one lock for it.
func NewService(repos *repository.Repository, p SimulatorParams) *Service {
	stateMu := new(sync.Mutex)
	return &Service{
		Device:     NewDeviceService(repos.StateRepo, repos.EventRepo, stateMu),
		Monitoring: NewMonitoringService(repos.StateRepo),
		EventLog:   NewEventLogService(repos.EventRepo),
		Simulator:  NewSimulatorService(repos.StateRepo, repos.EventRepo, stateMu, p),
	}
}
