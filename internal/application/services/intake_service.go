package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

// TurnInput is one unit of user input: free text and/or uploaded files.
type TurnInput struct {
	Text  string
	Files []entities.FileRef
}

const (
	degradedNotice = "I couldn't reach the extraction service this turn, so the case profile is unchanged. " +
		"Everything you shared is saved in the conversation — feel free to continue or try again."
	ctaNotice = "The case profile has enough detail to work with. You can proceed to find twin cases " +
		"whenever you're ready, or keep adding detail to sharpen the match."
)

// IntakeService is the turn processor: it accepts one user turn at a time,
// runs extraction, merges the result into the session's case profile, scores
// completeness, and appends the assistant's responses to the conversation log.
//
// Turns against the same state must be serialized by the caller; the service
// itself holds no per-session state and always returns a fresh IntakeState.
type IntakeService struct {
	extractor providers.ExtractionProvider
	eventBus  providers.EventBus
}

// NewIntakeService creates a new intake turn processor.
func NewIntakeService(extractor providers.ExtractionProvider) *IntakeService {
	return &IntakeService{extractor: extractor}
}

// SetEventBus enables case-ready event publication.
func (s *IntakeService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// ProcessTurn applies one user turn to the given state and returns the new
// state. An empty turn (no text, no files) is a defined no-op that returns the
// state unchanged. Extraction failure is recovered locally: the previous
// profile is kept, the turn is still logged, and no error reaches the caller.
func (s *IntakeService) ProcessTurn(ctx context.Context, state *entities.IntakeState, input TurnInput) (*entities.IntakeState, error) {
	if state == nil {
		return nil, apperrors.NewValidationError("intake state is required")
	}
	if s.extractor == nil {
		return nil, apperrors.NewInternalError("intake service has no extraction provider", nil)
	}

	text := strings.TrimSpace(input.Text)
	if text == "" && len(input.Files) == 0 {
		// Defined idempotence guarantee, not an error.
		return state, nil
	}

	now := time.Now().UTC()
	next := state.Clone()

	userKind := entities.KindText
	if text == "" {
		userKind = entities.KindFile
	}
	next.Append(entities.Message{
		ID:          uuid.NewString(),
		Role:        entities.RoleUser,
		Kind:        userKind,
		Content:     text,
		Attachments: input.Files,
		CreatedAt:   now,
	})

	var images, dicoms []entities.FileRef
	var notes *entities.FileRef
	for i := range input.Files {
		file := input.Files[i]
		switch {
		case file.IsImage():
			images = append(images, file)
		case file.IsDICOM():
			dicoms = append(dicoms, file)
		default:
			// One notes document per turn; further attachments are ignored.
			if notes == nil {
				notes = &input.Files[i]
			}
		}
	}

	previous := &state.Profile
	before := ScoreProfile(previous)

	extracted, err := s.extractor.Extract(ctx, providers.ExtractionInput{
		Images: images,
		Dicoms: dicoms,
		Text:   text,
		Notes:  notes,
	})
	if err != nil {
		return s.degradeTurn(state, next, before, now, err), nil
	}

	merged := MergeProfiles(previous, extracted)
	if len(images) > 0 && merged.Study.ImageURL == "" {
		merged.Study.ImageURL = images[0].LocalURL()
	}
	next.Profile = *merged

	after := ScoreProfile(merged)
	changed := DiffProfiles(previous, merged)
	extraChanged := DiffExtraFields(previous, merged)
	followup := NextFollowup(merged, after.Percent)

	notice := ""
	switch {
	case len(changed) > 0:
		notice = "I captured: " + strings.Join(changed, ", ") + "."
		if len(extraChanged) > 0 {
			notice += " I additionally captured: " + strings.Join(extraChanged, ", ") + "."
		}
		next.Append(entities.Message{
			ID:        uuid.NewString(),
			Role:      entities.RoleAssistant,
			Kind:      entities.KindPatch,
			Content:   notice,
			Fields:    changed,
			CreatedAt: now,
		})
	case len(extraChanged) > 0:
		notice = "I additionally captured: " + strings.Join(extraChanged, ", ") + "."
		next.Append(entities.Message{
			ID:        uuid.NewString(),
			Role:      entities.RoleAssistant,
			Kind:      entities.KindExpansion,
			Content:   notice,
			Fields:    extraChanged,
			CreatedAt: now,
		})
	}

	next.Append(entities.Message{
		ID:         uuid.NewString(),
		Role:       entities.RoleAssistant,
		Kind:       entities.KindCompleteness,
		Content:    fmt.Sprintf("Case profile is %d%% complete (%d of %d fields).", after.Percent, after.FilledCount, after.TotalCount),
		Confidence: float64(after.Percent),
		CreatedAt:  now,
	})

	assistantText := followup.Message
	if notice != "" {
		assistantText = notice + " " + followup.Message
	}
	next.Append(entities.Message{
		ID:        uuid.NewString(),
		Role:      entities.RoleAssistant,
		Kind:      entities.KindText,
		Content:   assistantText,
		CreatedAt: now,
	})

	crossedThreshold := !IsReady(before.Percent) && IsReady(after.Percent)
	if crossedThreshold {
		next.Append(entities.Message{
			ID:        uuid.NewString(),
			Role:      entities.RoleAssistant,
			Kind:      entities.KindCTA,
			Content:   ctaNotice,
			CreatedAt: now,
		})
	}

	next.Phase = phaseFor(after.Percent, merged)
	next.CurrentQuestion = firstOrEmpty(followup.PriorityFields)
	next.ReadyToProceed = IsReady(after.Percent)
	next.UpdatedAt = now

	if crossedThreshold {
		s.publishCaseReady(ctx, next, after.Percent)
	}

	return next, nil
}

// degradeTurn finishes a turn whose extraction call failed: the previous
// profile is retained untouched, the user's message stays logged, and the
// assistant explains without fabricating data.
func (s *IntakeService) degradeTurn(state, next *entities.IntakeState, before CompletenessScore, now time.Time, cause error) *entities.IntakeState {
	observability.GetLogger().Warn().
		Err(cause).
		Str("session_id", state.SessionID).
		Msg("extraction failed; keeping previous case profile")

	followup := NextFollowup(&next.Profile, before.Percent)
	next.Append(entities.Message{
		ID:        uuid.NewString(),
		Role:      entities.RoleAssistant,
		Kind:      entities.KindText,
		Content:   degradedNotice + " " + followup.Message,
		CreatedAt: now,
	})

	// Score is unchanged, so the pre-turn phase carries over.
	next.Phase = state.Phase
	next.CurrentQuestion = firstOrEmpty(followup.PriorityFields)
	next.ReadyToProceed = IsReady(before.Percent)
	next.UpdatedAt = now
	return next
}

func (s *IntakeService) publishCaseReady(ctx context.Context, state *entities.IntakeState, percent int) {
	if s.eventBus == nil {
		return
	}
	event := &entities.IntakeEvent{
		ID:        uuid.NewString(),
		SessionID: state.SessionID,
		Type:      entities.IntakeEventCaseReady,
		Percent:   percent,
		Phase:     state.Phase,
		Timestamp: time.Now().UTC(),
	}
	for _, channel := range []string{providers.EventChannelCaseReady, providers.GetSessionChannel(state.SessionID)} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			observability.GetLogger().Warn().
				Err(err).
				Str("channel", channel).
				Msg("failed to publish case-ready event")
		}
	}
}

func phaseFor(percent int, p *entities.CaseProfile) entities.IntakePhase {
	if !IsReady(percent) {
		return entities.PhaseQuestioning
	}
	if len(p.ExtraFields) > 0 {
		return entities.PhaseExpanded
	}
	return entities.PhaseReady
}

func firstOrEmpty(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
