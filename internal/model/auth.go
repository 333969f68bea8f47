package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the JWT payload for a room-scoped player token.
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
