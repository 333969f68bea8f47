package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"partyrooms/internal/cache"
	"partyrooms/internal/model"
	"partyrooms/internal/service"
	"partyrooms/internal/transport/rest/middleware"
)

// RoomHandler handles room endpoints.
type RoomHandler struct {
	roomSvc     *service.RoomService
	authSvc     *service.AuthService
	leaderboard cache.LeaderboardCache
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomSvc *service.RoomService, authSvc *service.AuthService, leaderboard cache.LeaderboardCache) *RoomHandler {
	return &RoomHandler{
		roomSvc:     roomSvc,
		authSvc:     authSvc,
		leaderboard: leaderboard,
	}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Nickname string         `json:"nickname"`
	Mode     model.GameMode `json:"mode"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, host, err := h.roomSvc.CreateRoom(r.Context(), req.Nickname, req.Mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.GeneratePlayerToken(room.Code, host.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, model.PlayerJoinResponse{
		RoomCode: room.Code,
		PlayerID: host.ID,
		Token:    token,
		Room:     room,
	})
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, player, err := h.roomSvc.JoinRoom(r.Context(), code, req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.GeneratePlayerToken(room.Code, player.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, model.PlayerJoinResponse{
		RoomCode: room.Code,
		PlayerID: player.ID,
		Token:    token,
		Room:     room,
	})
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, _, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	room, err := h.roomSvc.GetRoom(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Leave handles POST /v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	room, err := h.roomSvc.LeaveRoom(r.Context(), code, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if room == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "room closed"})
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	room, err := h.roomSvc.StartGame(r.Context(), code, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	room, err := h.roomSvc.EndGame(r.Context(), code, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ChooseRequest is the request body for picking truth or dare.
type ChooseRequest struct {
	Type model.QuestionType `json:"type"`
}

// Choose handles POST /v1/rooms/{code}/choose
func (h *RoomHandler) Choose(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.SelectTruthOrDare(r.Context(), code, playerID, req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// AnswerRequest is the request body for submitting an answer.
type AnswerRequest struct {
	Answer         string `json:"answer"`
	DareSuccessful bool   `json:"dareSuccessful"`
}

// Answer handles POST /v1/rooms/{code}/answer
func (h *RoomHandler) Answer(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.SubmitAnswer(r.Context(), code, playerID, req.Answer, req.DareSuccessful)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ChatRequest is the request body for sending a chat message.
type ChatRequest struct {
	Text string `json:"text"`
}

// Chat handles POST /v1/rooms/{code}/chat
func (h *RoomHandler) Chat(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.roomSvc.AddChatMessage(r.Context(), code, playerID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code, _, ok := h.roomScope(w, r)
	if !ok {
		return
	}

	entries, err := h.leaderboard.Top(r.Context(), code, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// roomScope resolves the path's room code and the authenticated player,
// rejecting tokens minted for a different room.
func (h *RoomHandler) roomScope(w http.ResponseWriter, r *http.Request) (code, playerID string, ok bool) {
	code = mux.Vars(r)["code"]
	playerID = middleware.GetPlayerID(r.Context())
	if middleware.GetRoomCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return "", "", false
	}
	return code, playerID, true
}
