package app

import (
	"context"

	"github.com/klokku/eventcal/internal/config"
	"github.com/klokku/eventcal/internal/event_bus"
	"github.com/klokku/eventcal/internal/utils"
	"github.com/klokku/eventcal/pkg/calendar"
	"github.com/klokku/eventcal/pkg/kvstore"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Storage      kvstore.Store
	closeStorage func()

	EventStore      *calendar.EventStore
	Expander        *calendar.Expander
	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler
}

// BuildDependencies opens storage, loads the stored events and wires the calendar.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	SubscribeAuditLog(deps.EventBus)

	store, closeStorage, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	deps.Storage = store
	deps.closeStorage = closeStorage

	deps.EventStore = calendar.NewEventStore(deps.Storage, cfg.Storage.Key)
	deps.EventStore.Load(ctx)
	deps.Expander = calendar.NewExpander()
	deps.CalendarService = calendar.NewService(deps.EventStore, deps.Expander,
		calendar.WithClock(deps.Clock),
		calendar.WithEventBus(deps.EventBus),
		calendar.WithHorizonDays(cfg.Calendar.HorizonDays),
	)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	return deps, nil
}

// Close releases the storage backend.
func (d *Dependencies) Close() {
	if d.closeStorage != nil {
		d.closeStorage()
	}
}
