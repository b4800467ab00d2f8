package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity represents an append-only record stored in activities.
// UserID and MedicineID are optional references; zero means absent.
type Activity struct {
	UserID     int64
	MedicineID int64
	Type       string
	Message    string
	Meta       map[string]any
	At         time.Time
}

// ActivityRecorder abstracts the activity log for services.
type ActivityRecorder interface {
	Record(ctx context.Context, act Activity) error
}

// ActivityLogger writes records into the activities table.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the activity entry. Entries are never updated or deleted.
func (l *ActivityLogger) Record(ctx context.Context, act Activity) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if act.Type == "" || act.Message == "" {
		return errors.New("activity requires type and message")
	}
	if act.At.IsZero() {
		act.At = time.Now()
	}
	metaJSON, err := json.Marshal(act.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO activities (user_id, medicine_id, activity_type, message, meta, created_at)
		 VALUES (NULLIF($1::bigint, 0), NULLIF($2::bigint, 0), $3, $4, $5, $6)`,
		act.UserID, act.MedicineID, act.Type, act.Message, metaJSON, act.At)
	return err
}
