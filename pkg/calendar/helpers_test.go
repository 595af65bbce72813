package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/klokku/eventcal/internal/utils"
	"github.com/klokku/eventcal/pkg/kvstore"
)

func mustDate(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func collectDates(occurrences []Occurrence) []string {
	dates := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		dates = append(dates, occ.Date.String())
	}
	return dates
}

// setupServiceTest returns a service over an empty in-memory store with the clock pinned
// to 2024-01-01 noon, so the default horizon is 2025-01-01.
func setupServiceTest(t *testing.T) (*Service, context.Context, *kvstore.MemoryStore) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	store := NewEventStore(kv, "")
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(store, NewExpander(), WithClock(clock))
	return service, context.Background(), kv
}

func mustCreate(t *testing.T, s *Service, ctx context.Context, draft Draft) Event {
	t.Helper()
	outcome, err := s.Create(ctx, draft, true)
	if err != nil {
		t.Fatalf("failed to create %q: %v", draft.Title, err)
	}
	return outcome.Event
}

// failingStore fails every write.
type failingStore struct {
	readErr error
}

func (f *failingStore) Read(ctx context.Context, key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return "", false, nil
}

func (f *failingStore) Write(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}
