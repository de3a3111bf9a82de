package service

import (
	"context"
	"sync"
	"time"

	"bellalarm/internal/models"
	"bellalarm/internal/repository"
)

const dayLayout = "2006-01-02"

// SimulatorService advances the device state over time.
type SimulatorService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	stateMu   *sync.Mutex
	params    SimulatorParams
}

// NewSimulatorService returns a simulator; zero params fall back to defaults.
// stateMu is the lock shared with DeviceService; nil gets a private one.
func NewSimulatorService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, stateMu *sync.Mutex, p SimulatorParams) *SimulatorService {
	if stateMu == nil {
		stateMu = new(sync.Mutex)
	}
	return &SimulatorService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		stateMu:   stateMu,
		params:    p.withDefaults(),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := s.Step(ctx, now); err != nil && ctx.Err() == nil {
				s.params.Log.Warnw("simulator_step_failed", "err", err)
			}
		}
	}
}

// Step applies one tick at wall-clock now (alarm times are compared in
// now's location). It reports whether the state changed.
func (s *SimulatorService) Step(ctx context.Context, now time.Time) (bool, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return false, err
	}
	// Initialize state if empty
	if st.ID == 0 {
		return true, s.stateRepo.Save(ctx, baselineState(now))
	}

	var events []models.DeviceEvent
	if ev, ok := s.finishStopping(&st, now); ok {
		events = append(events, ev)
	}
	events = append(events, s.fireAlarm(&st, now)...)
	if ev, ok := s.stopRinging(&st, now); ok {
		events = append(events, ev)
	}

	if len(events) == 0 {
		return false, nil
	}

	st.UpdatedAt = now.UTC()
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return false, err
	}
	for _, ev := range events {
		ev.OccurredAt = now.UTC()
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			return true, err
		}
	}
	return true, nil
}

// finishStopping moves Stopping to Stopped once StopDuration has passed.
func (s *SimulatorService) finishStopping(st *models.DeviceState, now time.Time) (models.DeviceEvent, bool) {
	if st.MotorStatus != models.MotorStopping || now.Sub(st.StatusChangedAt) < s.params.StopDuration {
		return models.DeviceEvent{}, false
	}
	st.MotorStatus = models.MotorStopped
	st.StatusChangedAt = now.UTC()
	return models.DeviceEvent{
		Type:        models.EventMotorStopped,
		Description: "Motor stopped",
	}, true
}

// fireAlarm rings the bell when the alarm is enabled and the clock shows
// the alarm time. It fires at most once per calendar day.
func (s *SimulatorService) fireAlarm(st *models.DeviceState, now time.Time) []models.DeviceEvent {
	if !st.AlarmButtonOn {
		return nil
	}
	hour, minute, err := models.ParseAlarmTime(st.AlarmTime)
	if err != nil || now.Hour() != hour || now.Minute() != minute {
		return nil
	}
	today := now.Format(dayLayout)
	if st.LastFiredOn == today {
		return nil
	}

	st.LastFiredOn = today
	st.MotorButtonOn = true
	events := []models.DeviceEvent{{
		Type:        models.EventAlarm,
		Description: "Alarm fired",
		Metadata:    map[string]any{"alarmTime": st.AlarmTime},
	}}
	if st.MotorStatus != models.MotorRunning {
		st.MotorStatus = models.MotorRunning
		st.StatusChangedAt = now.UTC()
		st.Ringing = true
		events = append(events, models.DeviceEvent{
			Type:        models.EventMotorStart,
			Description: "Motor started by alarm",
		})
	}
	return events
}

// stopRinging turns the motor off after an alarm has rung for RingDuration.
func (s *SimulatorService) stopRinging(st *models.DeviceState, now time.Time) (models.DeviceEvent, bool) {
	if !st.Ringing || st.MotorStatus != models.MotorRunning || now.Sub(st.StatusChangedAt) < s.params.RingDuration {
		return models.DeviceEvent{}, false
	}
	st.Ringing = false
	st.MotorButtonOn = false
	st.MotorStatus = models.MotorStopping
	st.StatusChangedAt = now.UTC()
	return models.DeviceEvent{
		Type:        models.EventMotorStopping,
		Description: "Alarm finished ringing",
	}, true
}
