package planner

import (
	"log/slog"
	"time"
)

// EventType represents different phases of an optimization run
type EventType string

const (
	EventStatsBuilt       EventType = "stats_built"
	EventAccessPathChosen EventType = "access_path_chosen"
	EventSubsetPlanned    EventType = "subset_planned"
	EventPlanChosen       EventType = "plan_chosen"
)

// Event represents one lifecycle event of an optimization run
type Event struct {
	Type      EventType   // Type of event
	BuildID   string      // Plan build ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (relation, subset mask, cost)
}

// Observer interface for event subscribers
// Observers receive events at major optimization phases
type Observer interface {
	OnEvent(event Event)
}

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
// It logs each event with structured fields for easy filtering and analysis
func (lo *LoggingObserver) OnEvent(event Event) {
	lo.logger.Debug("optimizer_lifecycle",
		"event", event.Type,
		"build_id", event.BuildID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}

// notify fans an event out to a possibly-nil observer
func notify(obs Observer, buildID string, t EventType, data interface{}) {
	if obs == nil {
		return
	}
	obs.OnEvent(Event{
		Type:      t,
		BuildID:   buildID,
		Timestamp: time.Now(),
		Data:      data,
	})
}
