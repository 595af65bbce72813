package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/internal/event_bus"
	"github.com/klokku/eventcal/internal/utils"
)

// Outcome is the result of a mutation that is subject to conflict checks. When Conflicts
// is non-empty nothing was changed and Event is zero; the caller may repeat the call with
// force to apply it anyway.
type Outcome struct {
	Event     Event
	Conflicts []Occurrence
	// Materialized is set when a reschedule created a standalone copy of a series occurrence.
	Materialized bool
}

func (o Outcome) Conflicted() bool {
	return len(o.Conflicts) > 0
}

type Service struct {
	store       *EventStore
	expander    *Expander
	clock       utils.Clock
	bus         *event_bus.EventBus
	horizonDays int
}

type ServiceOption func(*Service)

// WithHorizonDays expands recurring events this many days past today instead of one year.
func WithHorizonDays(days int) ServiceOption {
	return func(s *Service) { s.horizonDays = days }
}

func WithClock(clock utils.Clock) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithEventBus publishes every committed mutation on bus.
func WithEventBus(bus *event_bus.EventBus) ServiceOption {
	return func(s *Service) { s.bus = bus }
}

func NewService(store *EventStore, expander *Expander, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		expander: expander,
		clock:    &utils.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Horizon is the last date recurring events are expanded to.
func (s *Service) Horizon() civil.Date {
	if s.horizonDays > 0 {
		return civil.DateOf(s.clock.Now()).AddDays(s.horizonDays)
	}
	return DefaultHorizon(s.clock)
}

func (s *Service) Today() civil.Date {
	return civil.DateOf(s.clock.Now())
}

func (s *Service) BaseEvents(ctx context.Context) []Event {
	return s.store.List(ctx)
}

// AllEvents returns every base event and every derived occurrence up to the horizon.
func (s *Service) AllEvents(ctx context.Context) []Occurrence {
	return slices.Collect(s.expander.All(s.store.List(ctx), s.Horizon()))
}

// Conflicts returns the occurrences sitting in slot, other than exclude.
func (s *Service) Conflicts(ctx context.Context, slot Slot, exclude OccurrenceID) []Occurrence {
	return FindConflicts(s.expander.All(s.store.List(ctx), s.Horizon()), slot, exclude)
}

func (s *Service) Create(ctx context.Context, draft Draft, force bool) (Outcome, error) {
	d, err := draft.normalize()
	if err != nil {
		return Outcome{}, err
	}
	if !force {
		if conflicts := s.Conflicts(ctx, Slot{Date: d.Date, Time: d.Time}, OccurrenceID{}); len(conflicts) > 0 {
			log.Debugf("create of %q blocked by %d conflicts", d.Title, len(conflicts))
			return Outcome{Conflicts: conflicts}, nil
		}
	}

	event, err := s.store.Create(ctx, d)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create event: %w", err)
	}
	s.publish(ctx, event_bus.CalendarEventCreatedType, event_bus.CalendarEventChanged{EventID: event.ID, Title: event.Title, Date: event.Date.String()})
	return Outcome{Event: event}, nil
}

func (s *Service) Update(ctx context.Context, id string, draft Draft, force bool) (Outcome, error) {
	d, err := draft.normalize()
	if err != nil {
		return Outcome{}, err
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return Outcome{}, err
	}
	if !force {
		if conflicts := s.Conflicts(ctx, Slot{Date: d.Date, Time: d.Time}, BaseID(id)); len(conflicts) > 0 {
			log.Debugf("update of %s blocked by %d conflicts", id, len(conflicts))
			return Outcome{Conflicts: conflicts}, nil
		}
	}

	event, err := s.store.Update(ctx, id, d)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.publish(ctx, event_bus.CalendarEventUpdatedType, event_bus.CalendarEventChanged{EventID: event.ID, Title: event.Title, Date: event.Date.String()})
	return Outcome{Event: event}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		// deleting an unknown event is not an error
		log.Debugf("delete of unknown event %s ignored", id)
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.publish(ctx, event_bus.CalendarEventDeletedType, event_bus.CalendarEventChanged{EventID: id, Title: existing.Title, Date: existing.Date.String()})
	return nil
}

// Resolve rebuilds the occurrence an id refers to from the current store contents.
func (s *Service) Resolve(ctx context.Context, id OccurrenceID) (Occurrence, error) {
	base, err := s.store.Get(ctx, id.EventID())
	if err != nil {
		return Occurrence{}, err
	}
	if !id.Derived() {
		return baseOccurrence(base), nil
	}
	for occ := range s.expander.Expand(base, s.Horizon()) {
		if occ.Date == id.Date() {
			return occ, nil
		}
		if id.Date().Before(occ.Date) {
			break
		}
	}
	return Occurrence{}, fmt.Errorf("%w: event %s has no occurrence on %s", ErrNotFound, base.ID, id.Date())
}

// Month returns the 42 grid cells of a month view with the occurrences on each date.
func (s *Service) Month(ctx context.Context, year int, month time.Month) []DayCell {
	grid := GridFor(year, month)
	byDate := make(map[civil.Date][]Occurrence, len(grid))
	for occ := range s.expander.All(s.store.List(ctx), s.Horizon()) {
		if occ.Date.Before(grid[0]) || grid[len(grid)-1].Before(occ.Date) {
			continue
		}
		byDate[occ.Date] = append(byDate[occ.Date], occ)
	}

	cells := make([]DayCell, 0, len(grid))
	for _, date := range grid {
		occurrences := byDate[date]
		sortOccurrences(occurrences)
		cells = append(cells, DayCell{
			Date:        date,
			InMonth:     InMonth(date, year, month),
			Today:       IsToday(date, s.clock),
			Occurrences: occurrences,
		})
	}
	return cells
}

// DayCell is one date of a month view.
type DayCell struct {
	Date        civil.Date   `json:"date"`
	InMonth     bool         `json:"inMonth"`
	Today       bool         `json:"today"`
	Occurrences []Occurrence `json:"events"`
}

func (s *Service) publish(ctx context.Context, eventType event_bus.EventType, data event_bus.CalendarEventChanged) {
	if s.bus == nil {
		return
	}
	// the mutation is already committed, handler failures are only logged
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}
