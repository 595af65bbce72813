package event_bus

const (
	CalendarEventCreatedType     EventType = "calendar.event.created"
	CalendarEventUpdatedType     EventType = "calendar.event.updated"
	CalendarEventDeletedType     EventType = "calendar.event.deleted"
	CalendarEventRescheduledType EventType = "calendar.event.rescheduled"
)

// CalendarEventChanged is published after a base event mutation has been persisted.
type CalendarEventChanged struct {
	EventID string
	Title   string
	Date    string // YYYY-MM-DD
	// OccurrenceID and FromDate are set for reschedules only.
	OccurrenceID string
	FromDate     string
}
