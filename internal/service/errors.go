package service

import "errors"

// Validation failures. None of these mutate state.
var (
	ErrInvalidNickname = errors.New("nickname must be 3-15 characters")
	ErrInvalidMode     = errors.New("unknown game mode")
	ErrInvalidType     = errors.New("question type must be truth or dare")
	ErrEmptyMessage    = errors.New("message text is empty")
)

// Not-found and capacity failures.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrNicknameTaken  = errors.New("nickname already taken in this room")
	ErrRoomCodeTaken  = errors.New("could not allocate a unique room code")
)

// Conflict failures: the operation is not valid for the room's current
// state, or the caller lacks the privilege for it.
var (
	ErrGameAlreadyStarted = errors.New("game already in progress")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrNotYourTurn        = errors.New("it is not this player's turn")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNoQuestionPending  = errors.New("no question is awaiting an answer")
	ErrWrongState         = errors.New("operation not valid in current game state")

	// ErrCommitConflict is surfaced when an operation keeps losing the
	// commit race past the retry budget. Transient; the client retries.
	ErrCommitConflict = errors.New("room is being updated concurrently, try again")
)
