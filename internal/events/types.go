// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Simulation lifecycle
	SimulationCompleted EventType = "SIMULATION_COMPLETED"
	SimulationFailed    EventType = "SIMULATION_FAILED"

	// Export step
	RunExported EventType = "RUN_EXPORTED"
	RunUploaded EventType = "RUN_UPLOADED"

	// Housekeeping
	RunsExpired   EventType = "RUNS_EXPIRED"
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
