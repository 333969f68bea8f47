package service

import (
	"context"
	"fmt"
	"log"
)

// messageModerator is the external moderation capability. Satisfied by
// GeminiService; tests substitute stubs.
type messageModerator interface {
	ModerateMessage(ctx context.Context, text string) (*ModerationVerdict, error)
}

// ModerationService gates user-submitted text before it enters shared
// state. Policy is fail-open: when the capability errors out, the text is
// admitted unflagged and the error is surfaced as an advisory warning,
// so an outage never silences the chat.
type ModerationService struct {
	moderator messageModerator
}

// NewModerationService creates a new moderation service.
func NewModerationService(moderator messageModerator) *ModerationService {
	return &ModerationService{moderator: moderator}
}

// Review returns the verdict for text. The second return value is the
// advisory warning for the fail-open case; the verdict itself is always
// usable.
func (s *ModerationService) Review(ctx context.Context, text string) (*ModerationVerdict, error) {
	verdict, err := s.moderator.ModerateMessage(ctx, text)
	if err != nil {
		log.Printf("[Moderation] check failed, admitting message unmoderated: %v", err)
		return &ModerationVerdict{Flagged: false}, fmt.Errorf("moderation unavailable: %w", err)
	}
	return verdict, nil
}
