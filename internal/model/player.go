package model

// Player represents a participant in a room.
type Player struct {
	ID       string `json:"id" bson:"id"`
	Nickname string `json:"nickname" bson:"nickname"`
	IsHost   bool   `json:"isHost" bson:"isHost"`
	Score    int    `json:"score" bson:"score"` // successful dares only
}

// PlayerJoinResponse is returned when a player joins or creates a room.
type PlayerJoinResponse struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	Room     *Room  `json:"room"`
}
