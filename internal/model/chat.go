package model

import "time"

// ChatMessageType classifies entries in the room's chat log.
type ChatMessageType string

const (
	ChatPlain       ChatMessageType = "message"
	ChatTruthAnswer ChatMessageType = "truthAnswer"
	ChatDareResult  ChatMessageType = "dareResult"
	ChatSystem      ChatMessageType = "system"
	ChatPlayerJoin  ChatMessageType = "playerJoin"
	ChatPlayerLeave ChatMessageType = "playerLeave"
	ChatTurnChange  ChatMessageType = "turnChange"
)

// ChatMessage is one append-only entry in a room's chat log. SenderID is
// empty for system-authored entries. Entries are never mutated or removed.
type ChatMessage struct {
	ID             string          `json:"id" bson:"id"`
	SenderID       string          `json:"senderId,omitempty" bson:"senderId,omitempty"`
	SenderNickname string          `json:"senderNickname" bson:"senderNickname"`
	Text           string          `json:"text" bson:"text"`
	Timestamp      time.Time       `json:"timestamp" bson:"timestamp"`
	Type           ChatMessageType `json:"type" bson:"type"`
}
