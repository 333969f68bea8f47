package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"partyrooms/internal/model"
	"partyrooms/internal/store"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgRoomUpdate MessageType = "room_update"
	MsgRoomClosed MessageType = "room_closed"
	MsgError      MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans committed room snapshots out to WebSocket clients. Each room
// holds one store subscription, opened when its first client connects
// and closed when its last client leaves. Clients never receive partial
// updates, only whole snapshots as committed.
type Hub struct {
	store store.RoomStore

	// Room -> connections
	rooms map[string]*roomFanout
	mu    sync.Mutex

	register   chan *Connection
	unregister chan *Connection
}

type roomFanout struct {
	conns       map[*Connection]bool
	unsubscribe func()
}

// Connection represents a WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// NewHub creates a new WebSocket hub backed by the given store.
func NewHub(st store.RoomStore) *Hub {
	h := &Hub{
		store:      st,
		rooms:      make(map[string]*roomFanout),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.addConnection(conn)
		case conn := <-h.unregister:
			h.removeConnection(conn)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

func (h *Hub) addConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fanout, ok := h.rooms[conn.RoomCode]
	if !ok {
		fanout = &roomFanout{conns: make(map[*Connection]bool)}
		code := conn.RoomCode
		unsub, err := h.store.Subscribe(context.Background(), code, func(room *model.Room) {
			h.dispatch(code, room)
		})
		if err != nil {
			log.Printf("[WS] Subscribe failed for room %s: %v", code, err)
			close(conn.Send)
			return
		}
		fanout.unsubscribe = unsub
		h.rooms[code] = fanout
	}

	fanout.conns[conn] = true
	log.Printf("[WS] Player %s connected to room %s", conn.PlayerID, conn.RoomCode)
}

func (h *Hub) removeConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fanout, ok := h.rooms[conn.RoomCode]
	if !ok {
		return
	}
	if _, ok := fanout.conns[conn]; !ok {
		return
	}

	delete(fanout.conns, conn)
	close(conn.Send)
	log.Printf("[WS] Player %s disconnected from room %s", conn.PlayerID, conn.RoomCode)

	if len(fanout.conns) == 0 {
		fanout.unsubscribe()
		delete(h.rooms, conn.RoomCode)
	}
}

// dispatch sends a committed snapshot to every client of a room. A nil
// room means the room was deleted; clients get a closing notice and the
// hub drops the subscription.
func (h *Hub) dispatch(code string, room *model.Room) {
	var msg *Message
	if room == nil {
		msg = &Message{Type: MsgRoomClosed, Payload: json.RawMessage(`{"roomCode":"` + code + `"}`)}
	} else {
		payload, err := json.Marshal(room)
		if err != nil {
			log.Printf("[WS] Marshal failed for room %s: %v", code, err)
			return
		}
		msg = &Message{Type: MsgRoomUpdate, Payload: payload}
	}

	data, _ := json.Marshal(msg)

	h.mu.Lock()
	defer h.mu.Unlock()

	fanout, ok := h.rooms[code]
	if !ok {
		return
	}

	for conn := range fanout.conns {
		select {
		case conn.Send <- data:
		default:
			// Drop message if buffer full
		}
	}

	if room == nil {
		for conn := range fanout.conns {
			close(conn.Send)
		}
		fanout.unsubscribe()
		delete(h.rooms, code)
	}
}
