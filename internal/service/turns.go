package service

import (
	"math/rand"

	"partyrooms/internal/model"
)

// selectNextPlayer picks who acts next given the roster in rotation order
// and the current actor's id ("" when no turn has been assigned yet).
//
//   - Empty roster: nil.
//   - Single player: that player (solo play self-repeats).
//   - No current player: uniform random pick, used for the game's first turn.
//   - Otherwise: the next roster entry after the current player, wrapping.
//     If the current player already left the roster, fall back to the first
//     entry so the game always has a deterministic next actor.
func selectNextPlayer(players []model.Player, currentPlayerID string) *model.Player {
	if len(players) == 0 {
		return nil
	}
	if len(players) == 1 {
		return &players[0]
	}
	if currentPlayerID == "" {
		return &players[rand.Intn(len(players))]
	}

	for i := range players {
		if players[i].ID == currentPlayerID {
			return &players[(i+1)%len(players)]
		}
	}
	return &players[0]
}

// startsNewRound reports whether handing the turn to next completes a pass
// over the roster. A new round begins when the selected player is the
// first roster entry and this is not the game's very first turn
// assignment. The round counter is advisory: joins and leaves mid-round
// can shift the roster under it.
func startsNewRound(players []model.Player, next *model.Player, firstTurn bool) bool {
	if firstTurn || len(players) == 0 || next == nil {
		return false
	}
	return players[0].ID == next.ID
}
