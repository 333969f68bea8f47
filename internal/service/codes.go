package service

import (
	"crypto/rand"
	"fmt"
)

// Room code alphabet omits characters that read ambiguously when shouted
// across a living room (0/O, 1/I).
const (
	roomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength = 6
)

// generateRoomCode produces a random 6-char room code. Uniqueness against
// existing rooms is the caller's job: the create path retries on a store
// collision.
func generateRoomCode() (string, error) {
	b := make([]byte, roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}
	return string(code), nil
}
