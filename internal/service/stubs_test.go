package service

import (
	"context"
	"time"

	"bellalarm/internal/models"
)

// memStateRepo keeps a single state row in memory.
type memStateRepo struct {
	state   models.DeviceState
	loadErr error
	saveErr error
	saves   []models.DeviceState
}

func (s *memStateRepo) Load(ctx context.Context) (models.DeviceState, error) {
	return s.state, s.loadErr
}

func (s *memStateRepo) Save(ctx context.Context, st models.DeviceState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, st)
	s.state = st
	return nil
}

// memEventRepo records appended events and the last List filter.
type memEventRepo struct {
	appends   []models.DeviceEvent
	appendErr error

	listErr   error
	listCalls int
	listFrom  time.Time
	listTo    time.Time
	listType  string
}

func (e *memEventRepo) Append(ctx context.Context, ev models.DeviceEvent) error {
	if e.appendErr != nil {
		return e.appendErr
	}
	e.appends = append(e.appends, ev)
	return nil
}

func (e *memEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	e.listCalls++
	e.listFrom, e.listTo, e.listType = from, to, typ
	if e.listErr != nil {
		return nil, e.listErr
	}
	return e.appends, nil
}

func (e *memEventRepo) types() []string {
	out := make([]string, 0, len(e.appends))
	for _, ev := range e.appends {
		out = append(out, ev.Type)
	}
	return out
}
