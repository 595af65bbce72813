package calendar

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/internal/event_bus"
)

// Reschedule moves occ to target. Moving a series occurrence materializes a standalone
// event on target and leaves the series untouched; moving a base event changes its date.
// Conflicts at the target block the move unless force is set. Only occ.ID is read from
// occ; the fields come from the current store contents.
func (s *Service) Reschedule(ctx context.Context, occ Occurrence, target civil.Date, force bool) (Outcome, error) {
	return s.RescheduleByID(ctx, occ.ID, target, force)
}

// RescheduleByID resolves id against the current store and reschedules it.
func (s *Service) RescheduleByID(ctx context.Context, id OccurrenceID, target civil.Date, force bool) (Outcome, error) {
	if !target.IsValid() {
		return Outcome{}, fmt.Errorf("%w: invalid target date %q", ErrValidation, target.String())
	}
	occ, err := s.Resolve(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	if !force {
		if conflicts := s.Conflicts(ctx, Slot{Date: target, Time: occ.Time}, occ.ID); len(conflicts) > 0 {
			log.Debugf("reschedule of %s to %s blocked by %d conflicts", occ.ID, target, len(conflicts))
			return Outcome{Conflicts: conflicts}, nil
		}
	}

	if occ.IsRecurring {
		draft := Draft{
			Title:       occ.Title,
			Date:        target,
			Time:        occ.Time,
			Description: occ.Description,
			Recurrence:  RecurrenceNone,
			Color:       occ.Color,
		}
		event, err := s.store.Create(ctx, draft)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to materialize occurrence %s: %w", occ.ID, err)
		}
		s.publishRescheduled(ctx, occ, event)
		return Outcome{Event: event, Materialized: true}, nil
	}

	draft := occ.Event.Draft()
	draft.Date = target
	event, err := s.store.Update(ctx, occ.ID.EventID(), draft)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to move event %s: %w", occ.ID.EventID(), err)
	}
	s.publishRescheduled(ctx, occ, event)
	return Outcome{Event: event}, nil
}

func (s *Service) publishRescheduled(ctx context.Context, occ Occurrence, event Event) {
	s.publish(ctx, event_bus.CalendarEventRescheduledType, event_bus.CalendarEventChanged{
		EventID:      event.ID,
		Title:        event.Title,
		Date:         event.Date.String(),
		OccurrenceID: occ.ID.String(),
		FromDate:     occ.Date.String(),
	})
}
