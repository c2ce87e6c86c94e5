package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"svitlo-ua/internal/models"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate creates the schema if it doesn't exist.
func (db *DB) Migrate(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS alarm_events (
		id           BIGSERIAL PRIMARY KEY,
		event_id     UUID UNIQUE NOT NULL,
		region_id    TEXT NOT NULL,
		region_name  TEXT NOT NULL DEFAULT '',
		active       BOOLEAN NOT NULL,
		alert_types  TEXT[] NOT NULL DEFAULT '{}',
		timestamp    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_alarm_events_region_time
		ON alarm_events (region_id, timestamp DESC);
	`
	_, err := db.Pool.Exec(ctx, sql)
	return err
}

// InsertAlarmEvent stores a state change. Re-inserting the same event ID is a
// no-op and reports false.
func (db *DB) InsertAlarmEvent(ctx context.Context, e *models.AlarmEvent) (bool, error) {
	types := e.AlertTypes
	if types == nil {
		types = []string{}
	}
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO alarm_events (event_id, region_id, region_name, active, alert_types, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.RegionID, e.RegionName, e.Active, types, e.Timestamp)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetAlarmHistory returns events within a time range, oldest first.
// An empty regionID matches every region.
func (db *DB) GetAlarmHistory(ctx context.Context, regionID string, from, to time.Time) ([]*models.AlarmEvent, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, event_id::text, region_id, region_name, active, alert_types, timestamp
		FROM alarm_events
		WHERE ($1 = '' OR region_id = $1) AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC
	`, regionID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.AlarmEvent
	for rows.Next() {
		var e models.AlarmEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.RegionID, &e.RegionName, &e.Active, &e.AlertTypes, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
