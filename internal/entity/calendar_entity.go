package entity

import (
	"fmt"
	"time"
)

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventCompleted EventStatus = "completed"
)

const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04"
)

type CalendarEvent struct {
	Id             string      `json:"id"`
	Title          string      `json:"title"`
	Date           string      `json:"date"` // YYYY-MM-DD
	Time           string      `json:"time"` // HH:MM
	Description    string      `json:"description"`
	Status         EventStatus `json:"status"`
	Prerequisites  []string    `json:"prerequisites"`
	ExecutionSteps []string    `json:"execution_steps"`
}

// StartsAt resolves the event's date and time in loc.
func (e CalendarEvent) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(EventDateLayout+" "+EventTimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s has invalid date/time: %w", e.Id, err)
	}
	return t, nil
}
