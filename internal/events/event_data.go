package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SimulationCompletedData contains data for SimulationCompleted events
type SimulationCompletedData struct {
	RunID          string  `json:"run_id"`
	Portfolio      string  `json:"portfolio"`
	PolicyCount    int     `json:"policy_count"`
	SimulatedYears int     `json:"simulated_years"`
	Mean           float64 `json:"mean"`
	VaR995         float64 `json:"var_995"`
	DurationMs     int64   `json:"duration_ms"`
}

// EventType returns the event type for SimulationCompletedData
func (d *SimulationCompletedData) EventType() EventType {
	return SimulationCompleted
}

// SimulationFailedData contains data for SimulationFailed events
type SimulationFailedData struct {
	Portfolio string `json:"portfolio"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// EventType returns the event type for SimulationFailedData
func (d *SimulationFailedData) EventType() EventType {
	return SimulationFailed
}

// RunExportedData contains data for RunExported events
type RunExportedData struct {
	RunID  string `json:"run_id"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}

// EventType returns the event type for RunExportedData
func (d *RunExportedData) EventType() EventType {
	return RunExported
}

// RunUploadedData contains data for RunUploaded events
type RunUploadedData struct {
	RunID  string `json:"run_id"`
	Format string `json:"format"`
	Key    string `json:"key"`
}

// EventType returns the event type for RunUploadedData
func (d *RunUploadedData) EventType() EventType {
	return RunUploaded
}

// RunsExpiredData contains data for RunsExpired events
type RunsExpiredData struct {
	Deleted int64 `json:"deleted"`
}

// EventType returns the event type for RunsExpiredData
func (d *RunsExpiredData) EventType() EventType {
	return RunsExpired
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
