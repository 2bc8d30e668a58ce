package entity

import (
	"time"
)

// Reminder is a fired notification for one (event, lead-time bucket) pair.
type Reminder struct {
	Id         string    `json:"id"` // {eventId}-{bucketLabel}
	UserId     string    `json:"user_id"`
	EventId    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EventTime  time.Time `json:"event_time"`
	RemindAt   time.Time `json:"remind_at"`
	Bucket     string    `json:"bucket"`
}
