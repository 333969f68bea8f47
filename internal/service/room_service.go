package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"partyrooms/internal/cache"
	"partyrooms/internal/content"
	"partyrooms/internal/model"
	"partyrooms/internal/repository"
	"partyrooms/internal/store"
)

const (
	nicknameMinLen = 3
	nicknameMaxLen = 15

	// Bounded retries for the compare-and-swap commit loop and for
	// room-code allocation.
	maxCommitRetries  = 5
	maxCreateAttempts = 10
)

// questionSource provides the prompt for a turn. Satisfied by
// QuestionService.
type questionSource interface {
	Draw(ctx context.Context, room *model.Room, player *model.Player, qType model.QuestionType) *model.Question
}

// moderationGate reviews user text before it enters shared state.
// Satisfied by ModerationService.
type moderationGate interface {
	Review(ctx context.Context, text string) (*ModerationVerdict, error)
}

// RoomService owns the room state machine. Every mutation reads the
// latest committed snapshot, computes a replacement, and commits it only
// if nothing else landed in between; on conflict the whole operation is
// retried against the fresh snapshot. Validation failures never mutate
// state.
type RoomService struct {
	store       store.RoomStore
	questions   questionSource
	moderation  moderationGate
	leaderboard cache.LeaderboardCache // optional
	archive     repository.ArchiveRepo // optional
}

// NewRoomService creates a new room service.
func NewRoomService(st store.RoomStore, questions questionSource, moderation moderationGate) *RoomService {
	return &RoomService{
		store:      st,
		questions:  questions,
		moderation: moderation,
	}
}

// SetLeaderboard wires the optional score leaderboard.
func (s *RoomService) SetLeaderboard(lb cache.LeaderboardCache) {
	s.leaderboard = lb
}

// SetArchive wires the optional room archive.
func (s *RoomService) SetArchive(ar repository.ArchiveRepo) {
	s.archive = ar
}

// CreateRoom allocates a room code, creates the room with the host as its
// only player, and returns the room and host. Code collisions are
// resolved by retrying with a fresh code.
func (s *RoomService) CreateRoom(ctx context.Context, hostNickname string, mode model.GameMode) (*model.Room, *model.Player, error) {
	nickname, err := validateNickname(hostNickname)
	if err != nil {
		return nil, nil, err
	}
	if !model.ValidMode(mode) {
		return nil, nil, ErrInvalidMode
	}

	host := model.Player{
		ID:       uuid.New().String(),
		Nickname: nickname,
		IsHost:   true,
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, nil, err
		}

		now := time.Now()
		room := &model.Room{
			Code:    code,
			Mode:    mode,
			Players: []model.Player{host},
			HostID:  host.ID,
			State:   model.StateWaiting,
			Chat: []model.ChatMessage{
				systemMessage(fmt.Sprintf("%s created the room! Mode: %s. Room code: %s", nickname, mode, code), model.ChatSystem),
			},
			History:      map[string]*model.QuestionHistory{host.ID: {}},
			CreatedAt:    now,
			LastActivity: now,
		}

		err = s.store.Create(ctx, room)
		if errors.Is(err, store.ErrRoomExists) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create room: %w", err)
		}
		return room, &host, nil
	}

	return nil, nil, ErrRoomCodeTaken
}

// JoinRoom adds a player to a waiting room. Joining is only allowed
// before the game starts.
func (s *RoomService) JoinRoom(ctx context.Context, code, nickname string) (*model.Room, *model.Player, error) {
	nickname, err := validateNickname(nickname)
	if err != nil {
		return nil, nil, err
	}

	player := model.Player{
		ID:       uuid.New().String(),
		Nickname: nickname,
	}

	room, err := s.update(ctx, code, func(r *model.Room) error {
		if r.HasNickname(nickname) {
			return ErrNicknameTaken
		}
		if r.State != model.StateWaiting {
			return ErrGameAlreadyStarted
		}
		r.Players = append(r.Players, player)
		r.History[player.ID] = &model.QuestionHistory{}
		r.Chat = append(r.Chat, systemMessage(fmt.Sprintf("%s joined the room!", nickname), model.ChatPlayerJoin))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return room, &player, nil
}

// LeaveRoom removes a player. The last player out deletes the room. A
// departing host hands the room to the first remaining roster entry, and
// a departing current actor hands the turn to a fresh pick over the
// remaining roster.
func (s *RoomService) LeaveRoom(ctx context.Context, code, playerID string) (*model.Room, error) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		room, version, err := s.store.Get(ctx, code)
		if err != nil {
			return nil, mapStoreErr(err)
		}

		leaving := room.Player(playerID)
		if leaving == nil {
			return nil, ErrPlayerNotFound
		}

		// Last player out: the room is deleted, not retained.
		if len(room.Players) == 1 {
			if err := s.store.Delete(ctx, code, version); err != nil {
				if errors.Is(err, store.ErrVersionConflict) {
					continue
				}
				return nil, mapStoreErr(err)
			}
			s.archiveRoom(ctx, room)
			s.clearLeaderboard(ctx, code)
			return nil, nil
		}

		next := room.Clone()
		nickname := leaving.Nickname
		wasHost := leaving.IsHost
		wasCurrent := room.CurrentPlayerID == playerID

		remaining := make([]model.Player, 0, len(next.Players)-1)
		for _, p := range next.Players {
			if p.ID != playerID {
				remaining = append(remaining, p)
			}
		}
		next.Players = remaining
		delete(next.History, playerID)
		next.Chat = append(next.Chat, systemMessage(fmt.Sprintf("%s left the room.", nickname), model.ChatPlayerLeave))

		if wasHost {
			next.Players[0].IsHost = true
			next.HostID = next.Players[0].ID
			next.Chat = append(next.Chat, systemMessage(fmt.Sprintf("%s is now the host.", next.Players[0].Nickname), model.ChatSystem))
		}

		if wasCurrent && next.InProgress() {
			// The departed actor's successor is undefined; treat it as a
			// fresh pick over the remaining roster.
			picked := selectNextPlayer(next.Players, "")
			next.CurrentPlayerID = picked.ID
			next.CurrentQuestion = nil
			next.State = model.StatePlayerChoosing
			next.Chat = append(next.Chat, systemMessage(fmt.Sprintf("It's %s's turn. Choose Truth or Dare.", picked.Nickname), model.ChatTurnChange))
		} else if wasCurrent {
			next.CurrentPlayerID = ""
		}

		next.LastActivity = time.Now()
		if _, err := s.store.Commit(ctx, next, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return nil, mapStoreErr(err)
		}

		s.removeFromLeaderboard(ctx, code, playerID)
		return next, nil
	}
	return nil, ErrCommitConflict
}

// StartGame begins play: a random first player is picked and the room
// enters playerChoosing. Solo play is allowed. Host only.
func (s *RoomService) StartGame(ctx context.Context, code, callerID string) (*model.Room, error) {
	return s.update(ctx, code, func(r *model.Room) error {
		caller := r.Player(callerID)
		if caller == nil {
			return ErrPlayerNotFound
		}
		if !caller.IsHost {
			return ErrNotHost
		}
		if r.State != model.StateWaiting {
			return ErrGameAlreadyStarted
		}

		first := selectNextPlayer(r.Players, "")
		r.CurrentPlayerID = first.ID
		r.State = model.StatePlayerChoosing
		r.Round = 1
		r.Chat = append(r.Chat,
			systemMessage(fmt.Sprintf("Game started! It's %s's turn.", first.Nickname), model.ChatSystem),
			systemMessage(fmt.Sprintf("%s, choose Truth or Dare.", first.Nickname), model.ChatTurnChange),
		)
		return nil
	})
}

// EndGame lets the host end the game explicitly from any live state.
func (s *RoomService) EndGame(ctx context.Context, code, callerID string) (*model.Room, error) {
	room, err := s.update(ctx, code, func(r *model.Room) error {
		caller := r.Player(callerID)
		if caller == nil {
			return ErrPlayerNotFound
		}
		if !caller.IsHost {
			return ErrNotHost
		}
		if r.State == model.StateGameOver {
			return ErrWrongState
		}

		r.State = model.StateGameOver
		r.CurrentQuestion = nil
		r.CurrentPlayerID = ""
		r.Chat = append(r.Chat, systemMessage("The host ended the game. Thanks for playing!", model.ChatSystem))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.archiveRoom(ctx, room)
	return room, nil
}

// SelectTruthOrDare fetches a question for the current player and reveals
// it. The question fetch may suspend on the external generation call; the
// history update and the reveal land in the same snapshot commit.
func (s *RoomService) SelectTruthOrDare(ctx context.Context, code, playerID string, qType model.QuestionType) (*model.Room, error) {
	if !model.ValidQuestionType(qType) {
		return nil, ErrInvalidType
	}

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		room, version, err := s.store.Get(ctx, code)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		if room.State == model.StateWaiting {
			return nil, ErrGameNotStarted
		}
		if room.State != model.StatePlayerChoosing {
			return nil, ErrWrongState
		}
		if room.CurrentPlayerID != playerID {
			return nil, ErrNotYourTurn
		}
		player := room.Player(playerID)
		if player == nil {
			return nil, ErrPlayerNotFound
		}

		question := s.questions.Draw(ctx, room, player, qType)

		next := room.Clone()
		next.CurrentQuestion = question
		next.State = model.StateQuestionRevealed
		history := next.History[playerID]
		if history == nil {
			history = &model.QuestionHistory{}
			next.History[playerID] = history
		}
		history.Record(qType, question.Text)
		next.Chat = append(next.Chat, systemMessage(
			fmt.Sprintf("%s chose %s. Question: %s", player.Nickname, qType, question.Text), model.ChatSystem))

		next.LastActivity = time.Now()
		if _, err := s.store.Commit(ctx, next, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return nil, mapStoreErr(err)
		}
		return next, nil
	}
	return nil, ErrCommitConflict
}

// SubmitAnswer records the current player's answer, scores successful
// dares, and advances the turn — all in one commit, so a submitted answer
// always lands in either playerChoosing for the next player or gameOver.
func (s *RoomService) SubmitAnswer(ctx context.Context, code, playerID, answerText string, dareSuccessful bool) (*model.Room, error) {
	var scored *model.Player

	room, err := s.update(ctx, code, func(r *model.Room) error {
		scored = nil
		if r.CurrentQuestion == nil {
			return ErrNoQuestionPending
		}
		if r.State != model.StateQuestionRevealed && r.State != model.StateAwaitingAnswer {
			return ErrWrongState
		}
		if r.CurrentPlayerID != playerID {
			return ErrNotYourTurn
		}
		player := r.Player(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}

		msgType := model.ChatTruthAnswer
		text := answerText
		if r.CurrentQuestion.Type == model.QuestionDare {
			msgType = model.ChatDareResult
			if dareSuccessful {
				text = "✅ Completed: " + answerText
				player.Score++
				scoredCopy := *player
				scored = &scoredCopy
			} else {
				text = "❌ Failed: " + answerText
			}
		}

		r.Chat = append(r.Chat, model.ChatMessage{
			ID:             uuid.New().String(),
			SenderID:       player.ID,
			SenderNickname: player.Nickname,
			Text:           text,
			Timestamp:      time.Now(),
			Type:           msgType,
		})
		r.CurrentQuestion = nil

		advanceTurn(r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if scored != nil {
		s.updateLeaderboard(ctx, code, scored.ID, scored.Score)
	}
	return room, nil
}

// AddChatMessage routes user text through the local pre-filter and the
// moderation gate, then appends the resulting entry. ChatResult.Warning
// is set when moderation errored and the message was admitted fail-open.
func (s *RoomService) AddChatMessage(ctx context.Context, code, senderID, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	redacted := content.Redact(text)

	verdict, warn := s.moderation.Review(ctx, redacted)

	result := &ChatResult{Flagged: verdict.Flagged}
	if warn != nil {
		result.Warning = warn.Error()
	}

	room, err := s.update(ctx, code, func(r *model.Room) error {
		sender := r.Player(senderID)
		if sender == nil {
			return ErrPlayerNotFound
		}

		var msg model.ChatMessage
		if verdict.Flagged {
			// The original text never enters shared state; the notice is
			// system-authored and unattributed.
			msg = systemMessage(fmt.Sprintf("Message from %s was flagged: %s", sender.Nickname, verdict.Reason), model.ChatSystem)
		} else {
			msg = model.ChatMessage{
				ID:             uuid.New().String(),
				SenderID:       sender.ID,
				SenderNickname: sender.Nickname,
				Text:           redacted,
				Timestamp:      time.Now(),
				Type:           model.ChatPlain,
			}
		}
		r.Chat = append(r.Chat, msg)
		result.Message = msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Room = room
	return result, nil
}

// ChatResult reports the outcome of AddChatMessage.
type ChatResult struct {
	Room    *model.Room       `json:"room"`
	Message model.ChatMessage `json:"message"`
	Flagged bool              `json:"flagged"`
	Warning string            `json:"warning,omitempty"`
}

// GetRoom retrieves the latest committed snapshot of a room.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	room, _, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return room, nil
}

// GetPlayer retrieves one player from a room's latest snapshot.
func (s *RoomService) GetPlayer(ctx context.Context, code, playerID string) (*model.Player, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	player := room.Player(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// update runs one mutation through the read-compute-commit cycle with
// bounded retries on commit conflicts. mutate is applied to a clone of
// the snapshot; returning an error aborts without committing.
func (s *RoomService) update(ctx context.Context, code string, mutate func(*model.Room) error) (*model.Room, error) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		room, version, err := s.store.Get(ctx, code)
		if err != nil {
			return nil, mapStoreErr(err)
		}

		next := room.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.LastActivity = time.Now()

		if _, err := s.store.Commit(ctx, next, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return nil, mapStoreErr(err)
		}
		return next, nil
	}
	return nil, ErrCommitConflict
}

// advanceTurn hands the turn to the next player and applies the round
// policy. Called inside a mutation, never committed on its own.
func advanceTurn(r *model.Room) {
	next := selectNextPlayer(r.Players, r.CurrentPlayerID)
	if next == nil {
		r.State = model.StateGameOver
		r.CurrentPlayerID = ""
		r.Chat = append(r.Chat, systemMessage("No players left to take a turn. Game over.", model.ChatSystem))
		return
	}

	if startsNewRound(r.Players, next, false) {
		r.Round++
	}
	r.CurrentPlayerID = next.ID
	r.CurrentQuestion = nil
	r.State = model.StatePlayerChoosing
	r.Chat = append(r.Chat, systemMessage(fmt.Sprintf("It's %s's turn. Choose Truth or Dare.", next.Nickname), model.ChatTurnChange))
}

func validateNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	n := utf8.RuneCountInString(nickname)
	if n < nicknameMinLen || n > nicknameMaxLen {
		return "", ErrInvalidNickname
	}
	return nickname, nil
}

func systemMessage(text string, msgType model.ChatMessageType) model.ChatMessage {
	return model.ChatMessage{
		ID:             uuid.New().String(),
		SenderNickname: "System",
		Text:           text,
		Timestamp:      time.Now(),
		Type:           msgType,
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrRoomNotFound) {
		return ErrRoomNotFound
	}
	return err
}

// Best-effort side channels: the live game never depends on these.

func (s *RoomService) updateLeaderboard(ctx context.Context, code, playerID string, score int) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.SetScore(ctx, code, playerID, score); err != nil {
		log.Printf("[Rooms] leaderboard update failed for room %s: %v", code, err)
	}
}

func (s *RoomService) removeFromLeaderboard(ctx context.Context, code, playerID string) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Remove(ctx, code, playerID); err != nil {
		log.Printf("[Rooms] leaderboard removal failed for room %s: %v", code, err)
	}
}

func (s *RoomService) clearLeaderboard(ctx context.Context, code string) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Clear(ctx, code); err != nil {
		log.Printf("[Rooms] leaderboard clear failed for room %s: %v", code, err)
	}
}

func (s *RoomService) archiveRoom(ctx context.Context, room *model.Room) {
	if s.archive == nil || room == nil {
		return
	}
	err := s.archive.Insert(ctx, &repository.RoomArchive{
		Code:       room.Code,
		Mode:       room.Mode,
		Players:    room.Players,
		Rounds:     room.Round,
		Transcript: room.Chat,
		CreatedAt:  room.CreatedAt,
		ArchivedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[Rooms] archive failed for room %s: %v", room.Code, err)
	}
}
