package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/eventcal/pkg/kvstore"
)

// DefaultStorageKey is the key the event list is persisted under.
const DefaultStorageKey = "calendarEvents"

// EventStore owns the base events and writes the whole list through to persistence on
// every successful mutation.
type EventStore struct {
	mu     sync.RWMutex
	kv     kvstore.Store
	key    string
	events []Event
	newId  func() string
}

func NewEventStore(kv kvstore.Store, key string) *EventStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &EventStore{kv: kv, key: key, newId: uuid.NewString}
}

// Load replaces the in-memory list with the persisted one. A missing, unreadable or
// malformed value loads as an empty calendar.
func (s *EventStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
	raw, found, err := s.kv.Read(ctx, s.key)
	if err != nil {
		log.Warnf("could not read stored events under %q, starting empty: %v", s.key, err)
		return
	}
	if !found || raw == "" {
		log.Debugf("no stored events under %q", s.key)
		return
	}
	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		log.Warnf("stored events under %q are malformed, starting empty: %v", s.key, err)
		return
	}
	s.events = events
	log.Infof("loaded %d events", len(events))
}

func (s *EventStore) List(ctx context.Context) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.events == nil {
		return []Event{}
	}
	return slices.Clone(s.events)
}

func (s *EventStore) Get(ctx context.Context, id string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.events[idx], nil
}

func (s *EventStore) Create(ctx context.Context, draft Draft) (Event, error) {
	d, err := draft.normalize()
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := d.toEvent(s.newId())
	next := append(slices.Clone(s.events), event)
	if err := s.commit(ctx, next); err != nil {
		return Event{}, err
	}
	return event, nil
}

func (s *EventStore) Update(ctx context.Context, id string, draft Draft) (Event, error) {
	d, err := draft.normalize()
	if err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	event := d.toEvent(id)
	next := slices.Clone(s.events)
	next[idx] = event
	if err := s.commit(ctx, next); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Delete removes the event. Deleting an unknown id is a no-op.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		log.Debugf("event %s not found, nothing to delete", id)
		return nil
	}
	next := slices.Delete(slices.Clone(s.events), idx, idx+1)
	return s.commit(ctx, next)
}

// commit persists next and only then makes it the current list. Caller must hold the lock.
func (s *EventStore) commit(ctx context.Context, next []Event) error {
	if next == nil {
		next = []Event{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		err := fmt.Errorf("could not serialize events: %w", err)
		log.Error(err)
		return err
	}
	if err := s.kv.Write(ctx, s.key, string(data)); err != nil {
		err := fmt.Errorf("could not persist events: %w", err)
		log.Error(err)
		return err
	}
	s.events = next
	return nil
}

func (s *EventStore) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(e Event) bool { return e.ID == id })
}
