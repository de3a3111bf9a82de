package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bellalarm/internal/models"
)

// EventSQLite is the append-only bell history in device_events.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `
		INSERT INTO device_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`

	selectEventsSQL = `SELECT id, occurred_at, type, message, meta FROM device_events`
)

// Append stores e under its canonical type. A missing EventID or
// OccurredAt is filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.DeviceEvent) error {
	typ, err := models.ParseEventType(e.Type)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	meta, err := encodeMeta(e.Metadata)
	if err != nil {
		return fmt.Errorf("append %s event: %w", typ, err)
	}

	_, err = r.db.ExecContext(ctx, insertEventSQL, e.EventID, utcOrNow(e.OccurredAt), typ, e.Description, meta)
	return err
}

// List returns events inside [from, to], oldest first. Zero bounds and an
// empty typ do not filter.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	q, args := eventsQuery(from, to, typ)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DeviceEvent{}
	for rows.Next() {
		var (
			ev   models.DeviceEvent
			meta sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Metadata = decodeMeta(meta)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func eventsQuery(from, to time.Time, typ string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ != "" {
		where = append(where, "type = ?")
		args = append(args, typ)
	}

	q := selectEventsSQL
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q + " ORDER BY occurred_at ASC", args
}

// encodeMeta returns nil for events without metadata so the column stays NULL.
func encodeMeta(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodeMeta keeps the raw text when the column does not hold valid JSON.
func decodeMeta(ns sql.NullString) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return ns.String
	}
	return v
}
