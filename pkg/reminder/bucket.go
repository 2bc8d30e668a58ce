package reminder

import (
	"time"

	"ai-assistant-be/internal/entity"
)

// Bucket is a lead time before an event at which one reminder fires.
type Bucket struct {
	Label string
	Lead  time.Duration
}

// Buckets are checked longest lead first.
var Buckets = []Bucket{
	{Label: "1d", Lead: 24 * time.Hour},
	{Label: "6h", Lead: 6 * time.Hour},
	{Label: "1h", Lead: time.Hour},
	{Label: "30m", Lead: 30 * time.Minute},
	{Label: "15m", Lead: 15 * time.Minute},
}

// Key identifies a reminder. It never changes for an (event, bucket) pair, even
// if the event is moved later.
func Key(eventId, bucketLabel string) string {
	return eventId + "-" + bucketLabel
}

// Due lists the reminders whose threshold now has crossed. Completed events,
// events in the past and events with an unreadable date are skipped. Already
// fired keys are not filtered here.
func Due(userId string, events []entity.CalendarEvent, now time.Time, loc *time.Location) []entity.Reminder {
	var due []entity.Reminder
	for _, ev := range events {
		if ev.Status != entity.EventPending {
			continue
		}
		startsAt, err := ev.StartsAt(loc)
		if err != nil || !startsAt.After(now) {
			continue
		}
		for _, b := range Buckets {
			remindAt := startsAt.Add(-b.Lead)
			if now.Before(remindAt) {
				continue
			}
			due = append(due, entity.Reminder{
				Id:         Key(ev.Id, b.Label),
				UserId:     userId,
				EventId:    ev.Id,
				EventTitle: ev.Title,
				EventTime:  startsAt,
				RemindAt:   remindAt,
				Bucket:     b.Label,
			})
		}
	}
	return due
}
