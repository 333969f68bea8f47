package model

import (
	"strings"
	"time"
)

// GameMode controls the intensity of generated and preloaded content.
type GameMode string

const (
	ModeMinimal  GameMode = "minimal"
	ModeModerate GameMode = "moderate"
)

// ValidMode reports whether m is one of the supported game modes.
func ValidMode(m GameMode) bool {
	return m == ModeMinimal || m == ModeModerate
}

// GameState is the room's position in the turn state machine.
type GameState string

const (
	StateWaiting          GameState = "waiting"
	StatePlayerChoosing   GameState = "playerChoosing"
	StateQuestionRevealed GameState = "questionRevealed"
	StateAwaitingAnswer   GameState = "awaitingAnswer"
	StateGameOver         GameState = "gameOver"
)

// Room is the aggregate for one game session. It is only ever mutated
// through the room service's read-compute-commit cycle; everything in it,
// including chat and question history, lands in a single snapshot commit.
type Room struct {
	Code            string                      `json:"code" bson:"code"`
	Mode            GameMode                    `json:"mode" bson:"mode"`
	Players         []Player                    `json:"players" bson:"players"` // order defines turn rotation
	CurrentPlayerID string                      `json:"currentPlayerId,omitempty" bson:"currentPlayerId,omitempty"`
	HostID          string                      `json:"hostId" bson:"hostId"`
	State           GameState                   `json:"gameState" bson:"gameState"`
	CurrentQuestion *Question                   `json:"currentQuestion,omitempty" bson:"currentQuestion,omitempty"`
	Round           int                         `json:"round" bson:"round"`
	Chat            []ChatMessage               `json:"chatMessages" bson:"chatMessages"`
	History         map[string]*QuestionHistory `json:"playerQuestionHistory" bson:"playerQuestionHistory"`
	CreatedAt       time.Time                   `json:"createdAt" bson:"createdAt"`
	LastActivity    time.Time                   `json:"lastActivity" bson:"lastActivity"`
}

// Player returns the player with the given id, or nil.
func (r *Room) Player(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// HasNickname reports whether any current player uses the nickname,
// compared case-insensitively.
func (r *Room) HasNickname(nickname string) bool {
	for i := range r.Players {
		if strings.EqualFold(r.Players[i].Nickname, nickname) {
			return true
		}
	}
	return false
}

// InProgress reports whether a game is currently being played.
func (r *Room) InProgress() bool {
	return r.State != StateWaiting && r.State != StateGameOver
}

// Clone returns a deep copy so a mutation attempt never touches the
// snapshot other readers hold.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make([]Player, len(r.Players))
	copy(c.Players, r.Players)
	c.Chat = make([]ChatMessage, len(r.Chat))
	copy(c.Chat, r.Chat)
	if r.CurrentQuestion != nil {
		q := *r.CurrentQuestion
		c.CurrentQuestion = &q
	}
	c.History = make(map[string]*QuestionHistory, len(r.History))
	for id, h := range r.History {
		c.History[id] = h.Clone()
	}
	return &c
}
