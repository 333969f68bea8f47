package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partyrooms/internal/content"
	"partyrooms/internal/model"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) GenerateQuestion(ctx context.Context, mode model.GameMode, qType model.QuestionType, nickname string, asked []string) (string, error) {
	return s.text, s.err
}

func drawRoom(playerID string) (*model.Room, *model.Player) {
	room := &model.Room{
		Code:    "TEST01",
		Mode:    model.ModeMinimal,
		Players: []model.Player{{ID: playerID, Nickname: "Alice"}},
		History: map[string]*model.QuestionHistory{playerID: {}},
	}
	return room, &room.Players[0]
}

func TestDraw_UsesGeneratedText(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{text: "  What is your hidden talent?  "}, nil)
	room, player := drawRoom("p1")

	q := svc.Draw(context.Background(), room, player, model.QuestionTruth)
	require.NotNil(t, q)
	assert.Equal(t, "What is your hidden talent?", q.Text)
	assert.Equal(t, model.QuestionTruth, q.Type)
	assert.NotEmpty(t, q.ID)
}

func TestDraw_FallsBackToPoolWhenGeneratorUnavailable(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{err: ErrGenerationUnavailable}, nil)
	room, player := drawRoom("p1")

	q := svc.Draw(context.Background(), room, player, model.QuestionTruth)
	require.NotNil(t, q)
	assert.Contains(t, content.PoolFor(model.ModeMinimal).Truths, q.Text)
}

func TestDraw_FallsBackToPoolOnBlankText(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{text: "   "}, nil)
	room, player := drawRoom("p1")

	q := svc.Draw(context.Background(), room, player, model.QuestionTruth)
	require.NotNil(t, q)
	assert.Contains(t, content.PoolFor(model.ModeMinimal).Truths, q.Text)
}

func TestDraw_PoolExcludesHistory(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{err: errors.New("upstream down")}, nil)
	room, player := drawRoom("p1")

	// Record everything except one pool entry; the draw must land on it.
	pool := content.PoolFor(model.ModeMinimal).Truths
	history := room.History[player.ID]
	for _, text := range pool[1:] {
		history.Record(model.QuestionTruth, text)
	}

	q := svc.Draw(context.Background(), room, player, model.QuestionTruth)
	require.NotNil(t, q)
	assert.Equal(t, pool[0], q.Text)
}

func TestDraw_ExhaustedPoolStillReturnsQuestion(t *testing.T) {
	svc := NewQuestionService(&stubGenerator{err: ErrGenerationUnavailable}, nil)
	room, player := drawRoom("p1")

	history := room.History[player.ID]
	for _, text := range content.PoolFor(model.ModeMinimal).Dares {
		history.Record(model.QuestionDare, text)
	}

	q := svc.Draw(context.Background(), room, player, model.QuestionDare)
	require.NotNil(t, q)
	assert.Equal(t, "exhausted-dare", q.ID)
	assert.Equal(t, model.QuestionDare, q.Type)
	assert.NotEmpty(t, q.Text)
}
