package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bellalarm/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	deviceStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO device_state (id, motor_on, alarm_on, alarm_time, motor_status, status_changed_at, ringing, last_fired_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			motor_on=excluded.motor_on,
			alarm_on=excluded.alarm_on,
			alarm_time=excluded.alarm_time,
			motor_status=excluded.motor_status,
			status_changed_at=excluded.status_changed_at,
			ringing=excluded.ringing,
			last_fired_on=excluded.last_fired_on,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, motor_on, alarm_on, alarm_time, motor_status, status_changed_at, ringing, last_fired_on, updated_at
		FROM device_state WHERE id=?
	`
)

// utcOrNow normalizes t to UTC, substituting now for the zero time.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Save updates or inserts the device_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.DeviceState) error {
	if !state.MotorStatus.Valid() {
		return fmt.Errorf("save device state: %w: %d", models.ErrUnknownMotorStatus, int(state.MotorStatus))
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		deviceStateRowID,
		state.MotorButtonOn,
		state.AlarmButtonOn,
		state.AlarmTime,
		int(state.MotorStatus),
		utcOrNow(state.StatusChangedAt),
		state.Ringing,
		state.LastFiredOn,
		utcOrNow(state.UpdatedAt),
	)
	return err
}

// Load fetches the single device_state row (id=1). A zero state (ID 0)
// means nothing was stored yet.
func (r *StateSQLite) Load(ctx context.Context) (models.DeviceState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, deviceStateRowID)

	var (
		s      models.DeviceState
		status int
	)
	if err := row.Scan(
		&s.ID,
		&s.MotorButtonOn,
		&s.AlarmButtonOn,
		&s.AlarmTime,
		&status,
		&s.StatusChangedAt,
		&s.Ringing,
		&s.LastFiredOn,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceState{}, nil // no state yet
		}
		return models.DeviceState{}, err
	}

	s.MotorStatus = models.MotorStatus(status)
	if !s.MotorStatus.Valid() {
		return models.DeviceState{}, fmt.Errorf("load device state: %w: %d", models.ErrUnknownMotorStatus, status)
	}
	s.StatusChangedAt = s.StatusChangedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
