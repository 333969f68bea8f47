package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"partyrooms/internal/content"
	"partyrooms/internal/model"
	"partyrooms/internal/repository"
)

// questionGenerator is the external generation capability. Satisfied by
// GeminiService; tests substitute stubs.
type questionGenerator interface {
	GenerateQuestion(ctx context.Context, mode model.GameMode, qType model.QuestionType, nickname string, asked []string) (string, error)
}

// QuestionService produces the prompt for a turn: freshly generated when
// the AI capability cooperates, drawn from the preloaded pool otherwise,
// and a synthetic "out of questions" prompt when even the pool is
// exhausted for this player. It never fails a turn.
type QuestionService struct {
	generator questionGenerator
	pools     repository.PoolRepo // optional; nil means compiled-in pools only
}

// NewQuestionService creates a new question service. pools may be nil.
func NewQuestionService(generator questionGenerator, pools repository.PoolRepo) *QuestionService {
	return &QuestionService{generator: generator, pools: pools}
}

// Draw returns the question for player's turn. The caller records the
// returned text into the player's history in the same snapshot commit
// that reveals the question.
func (s *QuestionService) Draw(ctx context.Context, room *model.Room, player *model.Player, qType model.QuestionType) *model.Question {
	history := room.History[player.ID]
	if history == nil {
		history = &model.QuestionHistory{}
	}
	asked := history.Seen(qType)

	// The generator is responsible for honoring the exclusion list; we
	// only validate that it produced non-blank text.
	text, err := s.generator.GenerateQuestion(ctx, room.Mode, qType, player.Nickname, asked)
	if err == nil && strings.TrimSpace(text) != "" {
		return &model.Question{
			ID:   uuid.New().String(),
			Text: strings.TrimSpace(text),
			Type: qType,
		}
	}
	if err != nil && !errors.Is(err, ErrGenerationUnavailable) {
		log.Printf("[Questions] generation failed for room %s, falling back to pool: %v", room.Code, err)
	}

	if q := s.drawFromPool(ctx, room.Mode, qType, history); q != nil {
		return q
	}

	// Both generation and the pool are out. The turn still proceeds.
	return &model.Question{
		ID:   "exhausted-" + string(qType),
		Text: "No more " + string(qType) + "s left for you — make up your own and answer it!",
		Type: qType,
	}
}

func (s *QuestionService) drawFromPool(ctx context.Context, mode model.GameMode, qType model.QuestionType, history *model.QuestionHistory) *model.Question {
	texts := s.poolTexts(ctx, mode, qType)

	available := make([]string, 0, len(texts))
	for _, t := range texts {
		if !history.Contains(qType, t) {
			available = append(available, t)
		}
	}
	if len(available) == 0 {
		return nil
	}

	return &model.Question{
		ID:   uuid.New().String(),
		Text: available[rand.Intn(len(available))],
		Type: qType,
	}
}

// poolTexts prefers the seeded Mongo pool and falls back to the
// compiled-in content when the repository is absent or unreachable.
func (s *QuestionService) poolTexts(ctx context.Context, mode model.GameMode, qType model.QuestionType) []string {
	if s.pools != nil {
		texts, err := s.pools.Texts(ctx, mode, qType)
		if err != nil {
			log.Printf("[Questions] pool lookup failed, using built-in content: %v", err)
		} else if len(texts) > 0 {
			return texts
		}
	}
	return content.PoolFor(mode).Texts(qType)
}
