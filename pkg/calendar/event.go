package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceCustom  Recurrence = "custom"
)

// Palette lists the display colors an event may carry. The first entry is the default.
var Palette = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6", "#EC4899", "#14B8A6", "#F97316",
}

const timeLayout = "15:04"

// Event is a base calendar record as kept by the EventStore.
type Event struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Date           civil.Date `json:"date"`
	Time           string     `json:"time,omitempty"` // HH:MM, empty means all-day
	Description    string     `json:"description"`
	Recurrence     Recurrence `json:"recurrence"`
	CustomInterval int        `json:"customInterval,omitempty"`
	Color          string     `json:"color"`
}

// Draft holds the user-editable fields of an Event.
type Draft struct {
	Title          string
	Date           civil.Date
	Time           string
	Description    string
	Recurrence     Recurrence
	CustomInterval int
	Color          string
}

// Draft returns the editable fields of e.
func (e Event) Draft() Draft {
	return Draft{
		Title:          e.Title,
		Date:           e.Date,
		Time:           e.Time,
		Description:    e.Description,
		Recurrence:     e.Recurrence,
		CustomInterval: e.CustomInterval,
		Color:          e.Color,
	}
}

// IsRecurring reports whether the event produces derived occurrences.
func (e Event) IsRecurring() bool {
	return e.Recurrence != RecurrenceNone && e.Recurrence != ""
}

// Interval returns the custom recurrence stride in days; non-positive values count as 1.
func (e Event) Interval() int {
	if e.CustomInterval < 1 {
		return 1
	}
	return e.CustomInterval
}

// normalize validates the draft and fills defaults. The returned draft is safe to store.
func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Draft{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if !d.Date.IsValid() {
		return Draft{}, fmt.Errorf("%w: invalid date %q", ErrValidation, d.Date.String())
	}
	d.Time = strings.TrimSpace(d.Time)
	if d.Time != "" {
		t, err := time.Parse(timeLayout, d.Time)
		if err != nil {
			return Draft{}, fmt.Errorf("%w: time %q must be in HH:MM format", ErrValidation, d.Time)
		}
		// "9:00" and "09:00" must compare equal in conflict checks
		d.Time = t.Format(timeLayout)
	}

	switch d.Recurrence {
	case "":
		d.Recurrence = RecurrenceNone
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
	default:
		return Draft{}, fmt.Errorf("%w: unknown recurrence %q", ErrValidation, d.Recurrence)
	}
	if d.Recurrence == RecurrenceCustom {
		if d.CustomInterval < 1 {
			d.CustomInterval = 1
		}
	} else {
		d.CustomInterval = 0
	}

	if d.Color == "" {
		d.Color = Palette[0]
	} else if !slices.Contains(Palette, strings.ToUpper(d.Color)) {
		return Draft{}, fmt.Errorf("%w: color %q is not in the palette", ErrValidation, d.Color)
	} else {
		d.Color = strings.ToUpper(d.Color)
	}
	return d, nil
}

func (d Draft) toEvent(id string) Event {
	return Event{
		ID:             id,
		Title:          d.Title,
		Date:           d.Date,
		Time:           d.Time,
		Description:    d.Description,
		Recurrence:     d.Recurrence,
		CustomInterval: d.CustomInterval,
		Color:          d.Color,
	}
}
