package service

import (
	"context"
	"time"

	"bellalarm/internal/models"
	"bellalarm/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo}
}

// GetStatus returns the latest persisted device status.
// If no state is persisted yet, returns the power-up baseline.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.DeviceStatus, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	if state.ID == 0 {
		return baselineState(time.Now()).Status(), nil
	}
	return state.Status(), nil
}
