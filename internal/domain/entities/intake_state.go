package entities

import (
	"time"

	"github.com/google/uuid"
)

// IntakePhase is the orchestrator's coarse state.
type IntakePhase string

const (
	// PhaseGreeting is the initial phase: seed message, empty profile.
	PhaseGreeting IntakePhase = "greeting"
	// PhaseExtracting and PhasePatching are transient micro-phases surfaced to
	// callers while a turn resolves; a settled state never carries them.
	PhaseExtracting IntakePhase = "extracting"
	PhasePatching   IntakePhase = "patching"
	// PhaseQuestioning means the profile is below the readiness threshold.
	PhaseQuestioning IntakePhase = "questioning"
	// PhaseReady means the profile crossed the threshold with no extra fields.
	PhaseReady IntakePhase = "ready"
	// PhaseExpanded means the threshold was crossed and the schema had to be
	// extended with at least one extra field.
	PhaseExpanded IntakePhase = "expanded"
)

const greetingText = "Hi, I'm the CaseTwin intake assistant. Tell me about the patient — age, " +
	"presenting complaint, relevant history — or upload an imaging study and clinical notes, " +
	"and I'll build the case profile as we go."

// IntakeState is the complete per-session orchestrator state: one case
// profile, one append-only message log, the current phase, the field currently
// being asked about, and the readiness flag. It is exclusively owned by the
// session that created it; turns must be serialized by the caller.
type IntakeState struct {
	SessionID       string      `json:"session_id"`
	Profile         CaseProfile `json:"profile"`
	Messages        []Message   `json:"messages"`
	Phase           IntakePhase `json:"phase"`
	CurrentQuestion string      `json:"current_question,omitempty"`
	ReadyToProceed  bool        `json:"ready_to_proceed"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewIntakeState creates a fresh session state with an empty profile and the
// single greeting message.
func NewIntakeState(sessionID string) *IntakeState {
	now := time.Now().UTC()
	return &IntakeState{
		SessionID: sessionID,
		Phase:     PhaseGreeting,
		Messages: []Message{
			{
				ID:        uuid.NewString(),
				Role:      RoleAssistant,
				Kind:      KindText,
				Content:   greetingText,
				CreatedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so a turn can be applied without mutating the
// caller's state.
func (s *IntakeState) Clone() *IntakeState {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Profile = *s.Profile.Clone()
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return &clone
}

// Append adds a message to the log.
func (s *IntakeState) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}
