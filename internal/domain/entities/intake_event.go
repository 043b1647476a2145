package entities

import "time"

// IntakeEventType identifies what happened in a session.
type IntakeEventType string

const (
	// IntakeEventTurnProcessed fires after every accepted turn.
	IntakeEventTurnProcessed IntakeEventType = "turn_processed"
	// IntakeEventCaseReady fires when a session first crosses the readiness
	// threshold.
	IntakeEventCaseReady IntakeEventType = "case_ready"
)

// IntakeEvent is published on the event bus so downstream consumers (twin
// search warm-up, dashboards) can react to intake progress.
type IntakeEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      IntakeEventType `json:"type"`
	Percent   int             `json:"percent"`
	Phase     IntakePhase     `json:"phase"`
	Timestamp time.Time       `json:"timestamp"`
}
