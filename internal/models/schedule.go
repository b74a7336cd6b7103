// internal/models/schedule.go
package models

import (
	"fmt"
	"time"
)

// ScheduleEntry is one time-of-day slot.
type ScheduleEntry struct {
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Enabled bool `json:"enabled"`
}

// ParseScheduleEntry parses an "HH:MM" time of day.
func ParseScheduleEntry(hhmm string, enabled bool) (ScheduleEntry, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return ScheduleEntry{}, fmt.Errorf("invalid time of day %q, expected HH:MM", hhmm)
	}
	return ScheduleEntry{Hour: t.Hour(), Minute: t.Minute(), Enabled: enabled}, nil
}

func (e ScheduleEntry) String() string {
	return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute)
}

// CronSpec returns a five field cron expression firing once a day at the entry.
func (e ScheduleEntry) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", e.Minute, e.Hour)
}
