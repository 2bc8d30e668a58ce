package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-assistant-be/internal/entity"
)

func (e *Executor) scheduleEvent(ctx context.Context, args map[string]any) Result {
	title := stringArg(args, "title")
	date := stringArg(args, "date")
	clock := stringArg(args, "time")
	if title == "" {
		return fail("title is required")
	}

	event := entity.CalendarEvent{
		Id:          e.newId(),
		Title:       title,
		Date:        date,
		Time:        clock,
		Description: stringArg(args, "description"),
		Status:      entity.EventPending,
	}
	startsAt, err := event.StartsAt(e.loc)
	if err != nil {
		return fail(fmt.Sprintf("invalid date or time %q %q, expected YYYY-MM-DD and HH:MM", date, clock))
	}

	var locale string
	if _, r := e.update(ctx, func(s *entity.AppState) error {
		locale = s.Settings.Locale
		s.CalendarEvents = append(s.CalendarEvents, event)
		return nil
	}); r != nil {
		return *r
	}

	return ok(fmt.Sprintf("Event %q scheduled for %s.", title, FormatDateTime(startsAt, locale)))
}

func (e *Executor) markEventAsCompleted(ctx context.Context, args map[string]any) Result {
	title := stringArg(args, "title")
	if title == "" {
		return fail("title is required")
	}

	var (
		matched          entity.CalendarEvent
		alreadyCompleted bool
	)
	if _, r := e.update(ctx, func(s *entity.AppState) error {
		idx := -1
		for i, ev := range s.CalendarEvents {
			if !strings.EqualFold(strings.TrimSpace(ev.Title), title) {
				continue
			}
			// A pending match wins over an already completed one
			if idx == -1 || (s.CalendarEvents[idx].Status != entity.EventPending && ev.Status == entity.EventPending) {
				idx = i
			}
		}
		if idx == -1 {
			return failf(fmt.Sprintf("no event titled %q was found", title))
		}
		alreadyCompleted = s.CalendarEvents[idx].Status == entity.EventCompleted
		s.CalendarEvents[idx].Status = entity.EventCompleted
		matched = s.CalendarEvents[idx]
		return nil
	}); r != nil {
		return *r
	}

	if alreadyCompleted {
		return ok(fmt.Sprintf("Event %q was already completed.", matched.Title))
	}
	return ok(fmt.Sprintf("Event %q marked as completed.", matched.Title))
}

func (e *Executor) listEvents(ctx context.Context, args map[string]any) Result {
	date := stringArg(args, "date")
	if date == "" {
		date = e.now().In(e.loc).Format(entity.EventDateLayout)
	}
	day, err := time.ParseInLocation(entity.EventDateLayout, date, e.loc)
	if err != nil {
		return fail(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	s, err := e.store.Load(ctx)
	if err != nil {
		return fail(fmt.Sprintf("could not load calendar: %v", err))
	}
	locale := s.Settings.Locale

	var events []entity.CalendarEvent
	for _, ev := range s.CalendarEvents {
		if ev.Date == date {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return ok(fmt.Sprintf("No events scheduled for %s.", FormatDate(day, locale)))
	}

	// HH:MM sorts lexically
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		clock := ev.Time
		if t, err := ev.StartsAt(e.loc); err == nil {
			clock = FormatTime(t, locale)
		}
		line := fmt.Sprintf("%s %s (%s)", clock, ev.Title, ev.Status)
		if ev.Description != "" {
			line += ": " + ev.Description
		}
		lines = append(lines, line)
	}
	return ok(fmt.Sprintf("Events on %s: %s.", FormatDate(day, locale), strings.Join(lines, "; ")))
}
