package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"auth_service/internal/models"

	"github.com/google/uuid"
)

// eventTimeLayout is fixed width so string comparison in SQL orders like time.
const eventTimeLayout = "2006-01-02 15:04:05.000000000"

const insertEventSQL = `INSERT INTO auth_events (id, occurred_at, type, username, user_id, message) VALUES (?, ?, ?, ?, ?, ?)`

const selectEventsSQL = `SELECT id, occurred_at, type, username, user_id, message FROM auth_events`

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *EventSQLite) Append(ctx context.Context, e models.AuthEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var userID sql.NullInt64
	if e.UserID > 0 {
		userID = sql.NullInt64{Int64: int64(e.UserID), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		formatEventTime(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Username,
		userID,
		e.Description,
	)
	if err != nil {
		return fmt.Errorf("insert auth event %q: %w", e.Type, err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.AuthEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, formatEventTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, formatEventTime(to))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query auth events: %w", err)
	}
	defer rows.Close()

	out := make([]models.AuthEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.AuthEvent
			occurredAt string
			userID     sql.NullInt64
		)
		if err := rows.Scan(&ev.EventID, &occurredAt, &ev.Type, &ev.Username, &userID, &ev.Description); err != nil {
			return nil, fmt.Errorf("scan auth event: %w", err)
		}
		if ev.OccurredAt, err = time.Parse(eventTimeLayout, occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		if userID.Valid {
			ev.UserID = int(userID.Int64)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth events: %w", err)
	}
	return out, nil
}

func formatEventTime(t time.Time) string {
	return t.UTC().Format(eventTimeLayout)
}
