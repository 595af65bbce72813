package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/internal/event_bus"
)

// SubscribeAuditLog logs every committed calendar mutation.
func SubscribeAuditLog(bus *event_bus.EventBus) {
	for _, eventType := range []event_bus.EventType{
		event_bus.CalendarEventCreatedType,
		event_bus.CalendarEventUpdatedType,
		event_bus.CalendarEventDeletedType,
		event_bus.CalendarEventRescheduledType,
	} {
		event_bus.SubscribeTyped(bus, eventType, func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
			fields := log.Fields{
				"event_id": e.Data.EventID,
				"title":    e.Data.Title,
				"date":     e.Data.Date,
			}
			if e.Data.OccurrenceID != "" {
				fields["occurrence_id"] = e.Data.OccurrenceID
				fields["from_date"] = e.Data.FromDate
			}
			log.WithFields(fields).Info(string(e.Type))
			return nil
		})
	}
}
