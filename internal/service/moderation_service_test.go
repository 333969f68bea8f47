package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModerator struct {
	verdict *ModerationVerdict
	err     error
}

func (s *stubModerator) ModerateMessage(ctx context.Context, text string) (*ModerationVerdict, error) {
	return s.verdict, s.err
}

func TestReview_PassesVerdictThrough(t *testing.T) {
	svc := NewModerationService(&stubModerator{
		verdict: &ModerationVerdict{Flagged: true, Reason: "hate speech"},
	})

	verdict, warn := svc.Review(context.Background(), "some text")
	require.NotNil(t, verdict)
	assert.NoError(t, warn)
	assert.True(t, verdict.Flagged)
	assert.Equal(t, "hate speech", verdict.Reason)
}

func TestReview_FailOpenOnError(t *testing.T) {
	upstream := errors.New("upstream timeout")
	svc := NewModerationService(&stubModerator{err: upstream})

	verdict, warn := svc.Review(context.Background(), "some text")

	// An outage never blocks the message; the verdict is usable and the
	// error surfaces as an advisory warning.
	require.NotNil(t, verdict)
	assert.False(t, verdict.Flagged)
	require.Error(t, warn)
	assert.ErrorIs(t, warn, upstream)
}
