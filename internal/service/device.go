package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bellalarm/internal/models"
	"bellalarm/internal/repository"
)

// DefaultAlarmTime is reported before anything was ever set.
const DefaultAlarmTime = "07:00"

type DeviceService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	stateMu   *sync.Mutex
	now       func() time.Time
}

// NewDeviceService returns the intent applier. stateMu guards the
// load-modify-save of the state row and must be shared with the simulator
// writing the same row; nil gets a private lock.
func NewDeviceService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, stateMu *sync.Mutex) *DeviceService {
	if stateMu == nil {
		stateMu = new(sync.Mutex)
	}
	return &DeviceService{stateRepo: stateRepo, eventRepo: eventRepo, stateMu: stateMu, now: time.Now}
}

// baselineState is the device as it powers up: motor stopped, alarm off.
func baselineState(now time.Time) models.DeviceState {
	return models.DeviceState{
		ID:              1, // DB schema enforces single-row state with id=1
		AlarmTime:       DefaultAlarmTime,
		MotorStatus:     models.MotorStopped,
		StatusChangedAt: now.UTC(),
		UpdatedAt:       now.UTC(),
	}
}

// Apply stores the buttons and alarm time of intent and moves the motor:
// on while Stopped or Stopping starts it, off while Running begins stopping.
// An empty alarm time keeps the stored one; a panel that has not received a
// status yet sends its toggles that way.
func (s *DeviceService) Apply(ctx context.Context, intent models.UserIntent) (models.DeviceStatus, error) {
	keepTime := strings.TrimSpace(intent.AlarmTime) == ""
	if !keepTime {
		if _, _, err := models.ParseAlarmTime(intent.AlarmTime); err != nil {
			return models.DeviceStatus{}, fmt.Errorf("apply intent: %w", err)
		}
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	now := s.now()
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	if st.ID == 0 {
		st = baselineState(now)
	}

	st.MotorButtonOn = intent.MotorButtonOn
	st.AlarmButtonOn = intent.AlarmButtonOn
	if !keepTime {
		st.AlarmTime = intent.AlarmTime
	}
	st.UpdatedAt = now.UTC()

	var motorEvent *models.DeviceEvent
	switch {
	case intent.MotorButtonOn && st.MotorStatus != models.MotorRunning:
		st.MotorStatus = models.MotorRunning
		st.StatusChangedAt = now.UTC()
		st.Ringing = false
		motorEvent = &models.DeviceEvent{Type: models.EventMotorStart, Description: "Motor started by user"}
	case !intent.MotorButtonOn && st.MotorStatus == models.MotorRunning:
		st.MotorStatus = models.MotorStopping
		st.StatusChangedAt = now.UTC()
		st.Ringing = false
		motorEvent = &models.DeviceEvent{Type: models.EventMotorStopping, Description: "Motor stopping by user"}
	}

	if err := s.stateRepo.Save(ctx, st); err != nil {
		return models.DeviceStatus{}, err
	}

	if err := s.eventRepo.Append(ctx, models.DeviceEvent{
		OccurredAt:  now.UTC(),
		Type:        models.EventIntent,
		Description: "User intent applied",
		Metadata: map[string]any{
			"motorButtonOn": intent.MotorButtonOn,
			"alarmButtonOn": intent.AlarmButtonOn,
			"alarmTime":     st.AlarmTime,
		},
	}); err != nil {
		return models.DeviceStatus{}, err
	}
	if motorEvent != nil {
		motorEvent.OccurredAt = now.UTC()
		if err := s.eventRepo.Append(ctx, *motorEvent); err != nil {
			return models.DeviceStatus{}, err
		}
	}

	return st.Status(), nil
}
