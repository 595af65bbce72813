package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klokku/eventcal/internal/event_bus"
	"github.com/klokku/eventcal/internal/utils"
	"github.com/klokku/eventcal/pkg/kvstore"
)

func TestService_Create(t *testing.T) {
	t.Run("should create event when slot is free", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)

		outcome, err := service.Create(ctx, Draft{Title: "Review", Date: mustDate("2024-03-05"), Time: "14:00"}, false)

		require.NoError(t, err)
		assert.False(t, outcome.Conflicted())
		assert.NotEmpty(t, outcome.Event.ID)
		assert.Len(t, service.BaseEvents(ctx), 1)
	})

	t.Run("should report conflicts and change nothing", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		existing := mustCreate(t, service, ctx, Draft{Title: "Review", Date: mustDate("2024-03-05"), Time: "14:00"})

		outcome, err := service.Create(ctx, Draft{Title: "Interview", Date: mustDate("2024-03-05"), Time: "14:00"}, false)

		require.NoError(t, err)
		require.True(t, outcome.Conflicted())
		assert.Equal(t, BaseID(existing.ID), outcome.Conflicts[0].ID)
		assert.Empty(t, outcome.Event.ID)
		assert.Len(t, service.BaseEvents(ctx), 1)
	})

	t.Run("should create despite conflicts when forced", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		mustCreate(t, service, ctx, Draft{Title: "Review", Date: mustDate("2024-03-05"), Time: "14:00"})

		outcome, err := service.Create(ctx, Draft{Title: "Interview", Date: mustDate("2024-03-05"), Time: "14:00"}, true)

		require.NoError(t, err)
		assert.False(t, outcome.Conflicted())
		assert.Len(t, service.BaseEvents(ctx), 2)
	})

	t.Run("should report conflicts with derived occurrences", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		standup := mustCreate(t, service, ctx, Draft{Title: "Standup", Date: mustDate("2024-01-01"), Time: "09:00", Recurrence: RecurrenceDaily})

		outcome, err := service.Create(ctx, Draft{Title: "Dentist", Date: mustDate("2024-01-10"), Time: "09:00"}, false)

		require.NoError(t, err)
		require.Len(t, outcome.Conflicts, 1)
		assert.Equal(t, DerivedID(standup.ID, mustDate("2024-01-10")), outcome.Conflicts[0].ID)
	})

	t.Run("should reject invalid draft before checking conflicts", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)

		_, err := service.Create(ctx, Draft{Title: "", Date: mustDate("2024-03-05")}, true)

		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, service.BaseEvents(ctx))
	})
}

func TestService_Update(t *testing.T) {
	t.Run("should update in place", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		created := mustCreate(t, service, ctx, Draft{Title: "Review", Date: mustDate("2024-03-05"), Time: "14:00"})

		outcome, err := service.Update(ctx, created.ID, Draft{Title: "Review v2", Date: mustDate("2024-03-05"), Time: "14:00"}, false)

		require.NoError(t, err)
		assert.False(t, outcome.Conflicted())
		assert.Equal(t, created.ID, outcome.Event.ID)
		assert.Equal(t, "Review v2", outcome.Event.Title)
	})

	t.Run("should report own derived occurrence at the new slot", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		standup := mustCreate(t, service, ctx, Draft{Title: "Standup", Date: mustDate("2024-01-01"), Time: "09:00", Recurrence: RecurrenceDaily})
		draft := Draft{Title: "Standup", Date: mustDate("2024-01-03"), Time: "09:00", Recurrence: RecurrenceDaily}

		outcome, err := service.Update(ctx, standup.ID, draft, false)

		require.NoError(t, err)
		require.Len(t, outcome.Conflicts, 1)
		assert.Equal(t, DerivedID(standup.ID, mustDate("2024-01-03")), outcome.Conflicts[0].ID)
		stored, err := service.store.Get(ctx, standup.ID)
		require.NoError(t, err)
		assert.Equal(t, mustDate("2024-01-01"), stored.Date)

		forced, err := service.Update(ctx, standup.ID, draft, true)

		require.NoError(t, err)
		assert.False(t, forced.Conflicted())
		assert.Equal(t, mustDate("2024-01-03"), forced.Event.Date)
	})

	t.Run("should report conflicts with other events", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		review := mustCreate(t, service, ctx, Draft{Title: "Review", Date: mustDate("2024-03-05"), Time: "14:00"})
		other := mustCreate(t, service, ctx, Draft{Title: "Interview", Date: mustDate("2024-03-06"), Time: "14:00"})

		outcome, err := service.Update(ctx, other.ID, Draft{Title: "Interview", Date: mustDate("2024-03-05"), Time: "14:00"}, false)

		require.NoError(t, err)
		require.Len(t, outcome.Conflicts, 1)
		assert.Equal(t, BaseID(review.ID), outcome.Conflicts[0].ID)
		stored, err := service.store.Get(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, mustDate("2024-03-06"), stored.Date)
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)

		_, err := service.Update(ctx, "missing", Draft{Title: "Review", Date: mustDate("2024-03-05")}, false)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should validate before looking up the id", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)

		_, err := service.Update(ctx, "missing", Draft{Title: "  ", Date: mustDate("2024-03-05")}, false)

		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestService_LongRunningSeriesIsVisibleToday(t *testing.T) {
	store := NewEventStore(kvstore.NewMemoryStore(), "")
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)}
	service := NewService(store, NewExpander(), WithClock(clock))
	ctx := context.Background()
	commute := mustCreate(t, service, ctx, Draft{Title: "Commute", Date: mustDate("2010-01-01"), Time: "08:00", Recurrence: RecurrenceDaily})

	today := service.EventsOn(ctx, mustDate("2026-10-17"))
	require.Len(t, today, 1)
	assert.Equal(t, DerivedID(commute.ID, mustDate("2026-10-17")), today[0].ID)

	outcome, err := service.Create(ctx, Draft{Title: "Dentist", Date: mustDate("2026-10-17"), Time: "08:00"}, false)

	require.NoError(t, err)
	require.Len(t, outcome.Conflicts, 1)
	assert.Equal(t, DerivedID(commute.ID, mustDate("2026-10-17")), outcome.Conflicts[0].ID)
	assert.Len(t, service.BaseEvents(ctx), 1)
}

func TestService_Delete(t *testing.T) {
	t.Run("should remove the series with its occurrences", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)
		standup := mustCreate(t, service, ctx, Draft{Title: "Standup", Date: mustDate("2024-01-01"), Recurrence: RecurrenceDaily})
		kept := mustCreate(t, service, ctx, Draft{Title: "Dentist", Date: mustDate("2024-01-05")})
		require.Greater(t, len(service.AllEvents(ctx)), 300)

		require.NoError(t, service.Delete(ctx, standup.ID))

		all := service.AllEvents(ctx)
		require.Len(t, all, 1)
		assert.Equal(t, BaseID(kept.ID), all[0].ID)
	})

	t.Run("should ignore unknown ids", func(t *testing.T) {
		service, ctx, _ := setupServiceTest(t)

		assert.NoError(t, service.Delete(ctx, "missing"))
	})
}

func TestService_Resolve(t *testing.T) {
	service, ctx, _ := setupServiceTest(t)
	standup := mustCreate(t, service, ctx, Draft{Title: "Standup", Date: mustDate("2024-01-01"), Recurrence: RecurrenceWeekly})

	t.Run("base id", func(t *testing.T) {
		occ, err := service.Resolve(ctx, BaseID(standup.ID))
		require.NoError(t, err)
		assert.Equal(t, BaseID(standup.ID), occ.ID)
		assert.False(t, occ.IsRecurring)
	})

	t.Run("derived id on a series date", func(t *testing.T) {
		occ, err := service.Resolve(ctx, DerivedID(standup.ID, mustDate("2024-01-15")))
		require.NoError(t, err)
		assert.True(t, occ.IsRecurring)
		assert.Equal(t, mustDate("2024-01-15"), occ.Date)
	})

	t.Run("derived id off the series", func(t *testing.T) {
		_, err := service.Resolve(ctx, DerivedID(standup.ID, mustDate("2024-01-16")))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("derived id of a deleted series", func(t *testing.T) {
		_, err := service.Resolve(ctx, DerivedID("missing", mustDate("2024-01-15")))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Horizon(t *testing.T) {
	store := NewEventStore(kvstore.NewMemoryStore(), "")
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}

	assert.Equal(t, mustDate("2025-01-01"), NewService(store, NewExpander(), WithClock(clock)).Horizon())
	assert.Equal(t, mustDate("2024-01-31"), NewService(store, NewExpander(), WithClock(clock), WithHorizonDays(30)).Horizon())
}

func TestService_Horizon_MovesWithClock(t *testing.T) {
	store := NewEventStore(kvstore.NewMemoryStore(), "")
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(store, NewExpander(), WithClock(clock), WithHorizonDays(2))
	ctx := context.Background()
	mustCreate(t, service, ctx, Draft{Title: "Standup", Date: mustDate("2024-01-01"), Recurrence: RecurrenceDaily})
	require.Len(t, service.AllEvents(ctx), 3)

	clock.SetNow(time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC))

	assert.Len(t, service.AllEvents(ctx), 5)
}

func TestService_Month(t *testing.T) {
	service, ctx, _ := setupServiceTest(t)
	mustCreate(t, service, ctx, Draft{Title: "Payday", Date: mustDate("2024-01-31"), Recurrence: RecurrenceMonthly})
	mustCreate(t, service, ctx, Draft{Title: "Dentist", Date: mustDate("2024-02-14"), Time: "10:00"})
	mustCreate(t, service, ctx, Draft{Title: "Breakfast", Date: mustDate("2024-02-14"), Time: "08:00"})

	cells := service.Month(ctx, 2024, time.February)

	require.Len(t, cells, GridCells)
	assert.Equal(t, mustDate("2024-01-28"), cells[0].Date)
	assert.False(t, cells[0].InMonth)

	byDate := map[string]DayCell{}
	for _, cell := range cells {
		byDate[cell.Date.String()] = cell
	}
	assert.True(t, byDate["2024-02-01"].InMonth)
	assert.Equal(t, []string{"Payday"}, titles(byDate["2024-01-31"].Occurrences))
	assert.Equal(t, []string{"Payday"}, titles(byDate["2024-02-29"].Occurrences))
	assert.Equal(t, []string{"Breakfast", "Dentist"}, titles(byDate["2024-02-14"].Occurrences))
	assert.Empty(t, byDate["2024-02-15"].Occurrences)
}

func TestService_Month_MarksToday(t *testing.T) {
	service, ctx, _ := setupServiceTest(t)

	cells := service.Month(ctx, 2024, time.January)

	var today []string
	for _, cell := range cells {
		if cell.Today {
			today = append(today, cell.Date.String())
		}
	}
	assert.Equal(t, []string{"2024-01-01"}, today)
}

func TestService_PublishesMutations(t *testing.T) {
	bus := event_bus.NewEventBus()
	var received []event_bus.EventType
	for _, eventType := range []event_bus.EventType{
		event_bus.CalendarEventCreatedType,
		event_bus.CalendarEventUpdatedType,
		event_bus.CalendarEventDeletedType,
	} {
		bus.Subscribe(eventType, func(e event_bus.Event) error {
			received = append(received, e.Type)
			return nil
		})
	}
	store := NewEventStore(kvstore.NewMemoryStore(), "")
	service := NewService(store, NewExpander(), WithEventBus(bus))
	ctx := context.Background()

	created := mustCreate(t, service, ctx, Draft{Title: "Review", Date: mustDate("2024-03-05")})
	_, err := service.Update(ctx, created.ID, Draft{Title: "Review", Date: mustDate("2024-03-06")}, true)
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, created.ID))
	require.NoError(t, service.Delete(ctx, created.ID))

	assert.Equal(t, []event_bus.EventType{
		event_bus.CalendarEventCreatedType,
		event_bus.CalendarEventUpdatedType,
		event_bus.CalendarEventDeletedType,
	}, received)
}

func titles(occurrences []Occurrence) []string {
	out := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, occ.Title)
	}
	return out
}
