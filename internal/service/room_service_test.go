package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partyrooms/internal/model"
	"partyrooms/internal/store"
)

// stubQuestions hands out numbered questions so tests can assert on
// exactly what was revealed.
type stubQuestions struct {
	counter int
}

func (s *stubQuestions) Draw(ctx context.Context, room *model.Room, player *model.Player, qType model.QuestionType) *model.Question {
	s.counter++
	return &model.Question{
		ID:   fmt.Sprintf("q-%d", s.counter),
		Text: fmt.Sprintf("question %d for %s", s.counter, player.Nickname),
		Type: qType,
	}
}

type stubModeration struct {
	verdict *ModerationVerdict
	warn    error
}

func (s *stubModeration) Review(ctx context.Context, text string) (*ModerationVerdict, error) {
	if s.verdict == nil {
		return &ModerationVerdict{Flagged: false}, s.warn
	}
	return s.verdict, s.warn
}

func newTestService() (*RoomService, *store.MemoryStore, *stubModeration) {
	st := store.NewMemoryStore()
	mod := &stubModeration{}
	svc := NewRoomService(st, &stubQuestions{}, mod)
	return svc, st, mod
}

// makeRoom creates a room with the given players joined, host first.
func makeRoom(t *testing.T, svc *RoomService, nicknames ...string) (*model.Room, []model.Player) {
	t.Helper()
	ctx := context.Background()

	room, host, err := svc.CreateRoom(ctx, nicknames[0], model.ModeMinimal)
	require.NoError(t, err)

	players := []model.Player{*host}
	for _, nick := range nicknames[1:] {
		var p *model.Player
		room, p, err = svc.JoinRoom(ctx, room.Code, nick)
		require.NoError(t, err)
		players = append(players, *p)
	}
	return room, players
}

func TestCreateRoom_NicknameValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Too short, too long, and whitespace-padding that trims short.
	for _, nick := range []string{"Al", "Alexandria12345X", "  Al  ", ""} {
		_, _, err := svc.CreateRoom(ctx, nick, model.ModeMinimal)
		assert.ErrorIs(t, err, ErrInvalidNickname, "nickname %q", nick)
	}

	// Boundary lengths are accepted.
	for _, nick := range []string{"Ale", "Alexandria12345"} {
		_, _, err := svc.CreateRoom(ctx, nick, model.ModeMinimal)
		assert.NoError(t, err, "nickname %q", nick)
	}
}

func TestCreateRoom_InvalidMode(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.CreateRoom(context.Background(), "Alice", model.GameMode("extreme"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestCreateRoom_InitialState(t *testing.T) {
	svc, _, _ := newTestService()

	room, host, err := svc.CreateRoom(context.Background(), "Alice", model.ModeModerate)
	require.NoError(t, err)

	assert.Len(t, room.Code, 6)
	assert.Equal(t, model.StateWaiting, room.State)
	assert.Equal(t, model.ModeModerate, room.Mode)
	assert.Empty(t, room.CurrentPlayerID)
	assert.Equal(t, 0, room.Round)

	require.Len(t, room.Players, 1)
	assert.True(t, host.IsHost)
	assert.Equal(t, host.ID, room.HostID)
	require.Contains(t, room.History, host.ID)

	require.Len(t, room.Chat, 1)
	assert.Equal(t, model.ChatSystem, room.Chat[0].Type)
	assert.Contains(t, room.Chat[0].Text, room.Code)
}

func TestJoinRoom_NicknameTakenCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService()
	room, _ := makeRoom(t, svc, "Alice")

	_, _, err := svc.JoinRoom(context.Background(), room.Code, "ALICE")
	assert.ErrorIs(t, err, ErrNicknameTaken)
}

func TestJoinRoom_RejectedAfterStart(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	ctx := context.Background()

	_, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)

	_, _, err = svc.JoinRoom(ctx, room.Code, "Carol")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestStartGame_HostOnly(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")

	_, err := svc.StartGame(context.Background(), room.Code, players[1].ID)
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestStartGame(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby", "Carol")
	ctx := context.Background()

	room, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatePlayerChoosing, room.State)
	assert.Equal(t, 1, room.Round)
	require.NotNil(t, room.Player(room.CurrentPlayerID))

	// Starting twice is rejected.
	_, err = svc.StartGame(ctx, room.Code, players[0].ID)
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestTurnRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby", "Carol")
	ctx := context.Background()

	room, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)

	// Play full turns until the rotation wraps to the roster head and
	// the round counter ticks over. At most one full pass plus the
	// wrapping turn is needed.
	prevID := ""
	for i := 0; i < 4; i++ {
		current := room.CurrentPlayerID
		require.NotEmpty(t, current)

		if prevID != "" {
			// Rotation follows roster order.
			var prevIdx int
			for j := range players {
				if players[j].ID == prevID {
					prevIdx = j
				}
			}
			assert.Equal(t, players[(prevIdx+1)%len(players)].ID, current)
		}

		room, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionTruth)
		require.NoError(t, err)
		assert.Equal(t, model.StateQuestionRevealed, room.State)
		require.NotNil(t, room.CurrentQuestion)

		// The reveal and the history entry land together.
		assert.True(t, room.History[current].Contains(model.QuestionTruth, room.CurrentQuestion.Text))

		room, err = svc.SubmitAnswer(ctx, room.Code, current, "my answer", false)
		require.NoError(t, err)
		assert.Nil(t, room.CurrentQuestion)
		assert.Equal(t, model.StatePlayerChoosing, room.State)

		if room.Round == 2 {
			assert.Equal(t, players[0].ID, room.CurrentPlayerID)
			return
		}
		prevID = current
	}
	t.Fatal("round never advanced to 2")
}

func TestSelectTruthOrDare_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	ctx := context.Background()

	_, err := svc.SelectTruthOrDare(ctx, room.Code, players[0].ID, model.QuestionType("double-dare"))
	assert.ErrorIs(t, err, ErrInvalidType)

	// Choosing before the host starts the game.
	_, err = svc.SelectTruthOrDare(ctx, room.Code, players[0].ID, model.QuestionTruth)
	assert.ErrorIs(t, err, ErrGameNotStarted)

	room, err = svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)

	other := players[0].ID
	if room.CurrentPlayerID == other {
		other = players[1].ID
	}
	_, err = svc.SelectTruthOrDare(ctx, room.Code, other, model.QuestionTruth)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Choosing again while a question is already revealed.
	current := room.CurrentPlayerID
	_, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionTruth)
	require.NoError(t, err)
	_, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionDare)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSubmitAnswer_DareScoring(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	ctx := context.Background()

	room, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	current := room.CurrentPlayerID

	room, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionDare)
	require.NoError(t, err)

	room, err = svc.SubmitAnswer(ctx, room.Code, current, "did it", true)
	require.NoError(t, err)

	assert.Equal(t, 1, room.Player(current).Score)
	last := room.Chat[len(room.Chat)-2] // final entry is the turn change
	assert.Equal(t, model.ChatDareResult, last.Type)
	assert.Equal(t, current, last.SenderID)
	assert.True(t, strings.HasPrefix(last.Text, "✅ Completed: "))

	// A failed dare does not score.
	current = room.CurrentPlayerID
	room, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionDare)
	require.NoError(t, err)
	room, err = svc.SubmitAnswer(ctx, room.Code, current, "chickened out", false)
	require.NoError(t, err)

	assert.Equal(t, 0, room.Player(current).Score)
	last = room.Chat[len(room.Chat)-2]
	assert.True(t, strings.HasPrefix(last.Text, "❌ Failed: "))
}

func TestSubmitAnswer_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	ctx := context.Background()

	room, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	current := room.CurrentPlayerID

	// No question revealed yet.
	_, err = svc.SubmitAnswer(ctx, room.Code, current, "answer", false)
	assert.ErrorIs(t, err, ErrNoQuestionPending)

	room, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionTruth)
	require.NoError(t, err)

	other := players[0].ID
	if current == other {
		other = players[1].ID
	}
	_, err = svc.SubmitAnswer(ctx, room.Code, other, "answer", false)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestLeaveRoom_HostHandsOver(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby", "Carol")
	ctx := context.Background()

	room, err := svc.LeaveRoom(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	require.NotNil(t, room)

	assert.Equal(t, players[1].ID, room.HostID)
	assert.True(t, room.Players[0].IsHost)
	assert.NotContains(t, room.History, players[0].ID)

	// Exactly one host remains.
	hosts := 0
	for _, p := range room.Players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestLeaveRoom_LastPlayerDeletesRoom(t *testing.T) {
	svc, st, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice")
	ctx := context.Background()

	got, err := svc.LeaveRoom(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, _, err = st.Get(ctx, room.Code)
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}

func TestLeaveRoom_CurrentPlayerLeavesMidTurn(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby", "Carol")
	ctx := context.Background()

	room, err := svc.StartGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	current := room.CurrentPlayerID

	room, err = svc.SelectTruthOrDare(ctx, room.Code, current, model.QuestionTruth)
	require.NoError(t, err)
	require.NotNil(t, room.CurrentQuestion)

	room, err = svc.LeaveRoom(ctx, room.Code, current)
	require.NoError(t, err)
	require.NotNil(t, room)

	// The revealed question is discarded and a fresh actor is picked
	// from the remaining roster.
	assert.Nil(t, room.CurrentQuestion)
	assert.Equal(t, model.StatePlayerChoosing, room.State)
	assert.NotEqual(t, current, room.CurrentPlayerID)
	require.NotNil(t, room.Player(room.CurrentPlayerID))
}

func TestEndGame(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	ctx := context.Background()

	_, err := svc.EndGame(ctx, room.Code, players[1].ID)
	assert.ErrorIs(t, err, ErrNotHost)

	room, err = svc.EndGame(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateGameOver, room.State)
	assert.Empty(t, room.CurrentPlayerID)
	assert.Nil(t, room.CurrentQuestion)

	_, err = svc.EndGame(ctx, room.Code, players[0].ID)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestAddChatMessage_Plain(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")

	result, err := svc.AddChatMessage(context.Background(), room.Code, players[1].ID, "  hello everyone  ")
	require.NoError(t, err)

	assert.False(t, result.Flagged)
	assert.Empty(t, result.Warning)
	assert.Equal(t, "hello everyone", result.Message.Text)
	assert.Equal(t, players[1].ID, result.Message.SenderID)
	assert.Equal(t, model.ChatPlain, result.Message.Type)
}

func TestAddChatMessage_Empty(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice")

	_, err := svc.AddChatMessage(context.Background(), room.Code, players[0].ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAddChatMessage_Flagged(t *testing.T) {
	svc, _, mod := newTestService()
	room, players := makeRoom(t, svc, "Alice", "Bobby")
	mod.verdict = &ModerationVerdict{Flagged: true, Reason: "harassment"}

	result, err := svc.AddChatMessage(context.Background(), room.Code, players[1].ID, "something vile")
	require.NoError(t, err)

	assert.True(t, result.Flagged)

	// The original text never reaches the transcript; the notice is
	// system-authored and unattributed.
	last := result.Room.Chat[len(result.Room.Chat)-1]
	assert.Equal(t, model.ChatSystem, last.Type)
	assert.Empty(t, last.SenderID)
	assert.Contains(t, last.Text, "harassment")
	assert.NotContains(t, last.Text, "something vile")
}

func TestAddChatMessage_FailOpen(t *testing.T) {
	svc, _, mod := newTestService()
	room, players := makeRoom(t, svc, "Alice")
	mod.warn = errors.New("moderation unavailable: upstream timeout")

	result, err := svc.AddChatMessage(context.Background(), room.Code, players[0].ID, "hello")
	require.NoError(t, err)

	// The message is admitted and the outage surfaces as a warning.
	assert.False(t, result.Flagged)
	assert.Contains(t, result.Warning, "moderation unavailable")
	assert.Equal(t, "hello", result.Message.Text)
}

// racingStore lands a competing chat append just before the service's
// first commit, forcing one conflict-and-retry cycle.
type racingStore struct {
	*store.MemoryStore
	raced bool
}

func (s *racingStore) Commit(ctx context.Context, room *model.Room, expectedVersion uint64) (uint64, error) {
	if !s.raced {
		s.raced = true
		rival, version, err := s.MemoryStore.Get(ctx, room.Code)
		if err == nil {
			rival.Chat = append(rival.Chat, model.ChatMessage{
				ID:             "rival",
				SenderNickname: "System",
				Text:           "rival landed first",
				Type:           model.ChatSystem,
			})
			if _, err := s.MemoryStore.Commit(ctx, rival, version); err != nil {
				return 0, err
			}
		}
	}
	return s.MemoryStore.Commit(ctx, room, expectedVersion)
}

// conflictedStore refuses every commit.
type conflictedStore struct {
	*store.MemoryStore
}

func (s *conflictedStore) Commit(ctx context.Context, room *model.Room, expectedVersion uint64) (uint64, error) {
	return 0, store.ErrVersionConflict
}

func TestAddChatMessage_RetryKeepsConcurrentSibling(t *testing.T) {
	st := &racingStore{MemoryStore: store.NewMemoryStore()}
	svc := NewRoomService(st, &stubQuestions{}, &stubModeration{})
	ctx := context.Background()

	room, host, err := svc.CreateRoom(ctx, "Alice", model.ModeMinimal)
	require.NoError(t, err)

	result, err := svc.AddChatMessage(ctx, room.Code, host.ID, "hello")
	require.NoError(t, err)
	require.True(t, st.raced)

	// The retry re-read a snapshot that already held the rival entry, so
	// neither append lost the other.
	var texts []string
	for _, m := range result.Room.Chat {
		texts = append(texts, m.Text)
	}
	assert.Contains(t, texts, "rival landed first")
	assert.Contains(t, texts, "hello")
}

func TestAddChatMessage_ConflictSurfacesWhenRetriesExhaust(t *testing.T) {
	st := &conflictedStore{MemoryStore: store.NewMemoryStore()}
	svc := NewRoomService(st, &stubQuestions{}, &stubModeration{})
	ctx := context.Background()

	// Creation lands via Create, not Commit, so the room exists.
	room, host, err := svc.CreateRoom(ctx, "Alice", model.ModeMinimal)
	require.NoError(t, err)

	_, err = svc.AddChatMessage(ctx, room.Code, host.ID, "hello")
	assert.ErrorIs(t, err, ErrCommitConflict)
}

func TestGetPlayer(t *testing.T) {
	svc, _, _ := newTestService()
	room, players := makeRoom(t, svc, "Alice")
	ctx := context.Background()

	got, err := svc.GetPlayer(ctx, room.Code, players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Nickname)

	_, err = svc.GetPlayer(ctx, room.Code, "nope")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = svc.GetRoom(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
