package models

import "time"

// AlarmEvent is a historical record of a region's alarm being raised or cleared.
type AlarmEvent struct {
	ID         int64     `json:"id" db:"id"`
	EventID    string    `json:"event_id" db:"event_id"`
	RegionID   string    `json:"region_id" db:"region_id"`
	RegionName string    `json:"region_name" db:"region_name"`
	Active     bool      `json:"active" db:"active"`
	AlertTypes []string  `json:"alert_types" db:"alert_types"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}
