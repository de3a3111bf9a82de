package service

import (
	"context"
	"errors"
	"strings"

	"bellalarm/internal/models"
	"bellalarm/internal/repository"
)

var (
	// ErrInvalidTimeRange is returned when From is after To.
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	// ErrUnknownEventType is returned for a type filter that names no event.
	ErrUnknownEventType = models.ErrUnknownEventType
)

// EventLogService reads the bell's event history.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// List returns the events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error) {
	f, err := f.canonical()
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, f.From, f.To, f.Type)
}

// canonical puts both bounds in UTC and the type into its Event* spelling.
func (f LogFilter) canonical() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	if strings.TrimSpace(f.Type) == "" {
		f.Type = ""
		return f, nil
	}
	typ, err := models.ParseEventType(f.Type)
	if err != nil {
		return LogFilter{}, err
	}
	f.Type = typ
	return f, nil
}
