package store

import (
	"context"
	"sync"
	"time"

	"partyrooms/internal/model"
)

// MemoryStore is an in-process RoomStore with the same versioned commit
// semantics as the Redis store. Used by tests and single-node setups.
type MemoryStore struct {
	mu        sync.Mutex
	rooms     map[string]*memoryEntry
	subs      map[string]map[int]func(*model.Room)
	nextSubID int

	// Per-room notification queue. Snapshots are enqueued in the same
	// critical section that bumps the version, so subscribers observe
	// commits in commit order even when committers race.
	pending  map[string][]*model.Room
	draining map[string]bool
}

type memoryEntry struct {
	room    *model.Room
	version uint64
}

// NewMemoryStore creates an empty in-memory room store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*memoryEntry),
		subs:     make(map[string]map[int]func(*model.Room)),
		pending:  make(map[string][]*model.Room),
		draining: make(map[string]bool),
	}
}

func (s *MemoryStore) Get(ctx context.Context, code string) (*model.Room, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[code]
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	return entry.room.Clone(), entry.version, nil
}

func (s *MemoryStore) Create(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	if _, ok := s.rooms[room.Code]; ok {
		s.mu.Unlock()
		return ErrRoomExists
	}
	s.rooms[room.Code] = &memoryEntry{room: room.Clone(), version: 1}
	s.enqueueLocked(room.Code, room)
	s.mu.Unlock()

	s.drain(room.Code)
	return nil
}

func (s *MemoryStore) Commit(ctx context.Context, room *model.Room, expectedVersion uint64) (uint64, error) {
	s.mu.Lock()
	entry, ok := s.rooms[room.Code]
	if !ok {
		s.mu.Unlock()
		return 0, ErrRoomNotFound
	}
	if entry.version != expectedVersion {
		s.mu.Unlock()
		return 0, ErrVersionConflict
	}
	next := expectedVersion + 1
	s.rooms[room.Code] = &memoryEntry{room: room.Clone(), version: next}
	s.enqueueLocked(room.Code, room)
	s.mu.Unlock()

	s.drain(room.Code)
	return next, nil
}

func (s *MemoryStore) Delete(ctx context.Context, code string, expectedVersion uint64) error {
	s.mu.Lock()
	entry, ok := s.rooms[code]
	if !ok {
		s.mu.Unlock()
		return ErrRoomNotFound
	}
	if entry.version != expectedVersion {
		s.mu.Unlock()
		return ErrVersionConflict
	}
	delete(s.rooms, code)
	s.enqueueLocked(code, nil)
	s.mu.Unlock()

	s.drain(code)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, code string, fn func(*model.Room)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[code] == nil {
		s.subs[code] = make(map[int]func(*model.Room))
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs[code][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[code], id)
	}, nil
}

// Sweep removes rooms whose lastActivity is older than maxIdle and
// returns how many were reaped. The Redis store gets this for free via
// key TTLs; here it must be driven explicitly.
func (s *MemoryStore) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	var reaped []string
	for code, entry := range s.rooms {
		if entry.room.LastActivity.Before(cutoff) {
			delete(s.rooms, code)
			reaped = append(reaped, code)
			s.enqueueLocked(code, nil)
		}
	}
	s.mu.Unlock()

	for _, code := range reaped {
		s.drain(code)
	}
	return len(reaped)
}

// enqueueLocked records a snapshot for delivery. Must be called with mu
// held, in the same critical section as the version change, so queue
// position matches commit order. nil means the room was deleted.
func (s *MemoryStore) enqueueLocked(code string, room *model.Room) {
	if room != nil {
		room = room.Clone()
	}
	s.pending[code] = append(s.pending[code], room)
}

// drain delivers a room's queued snapshots in order. Only one drainer
// runs per room; a committer that finds one active leaves its snapshot
// for that drainer. Handlers run outside the lock so they are free to
// call back into the store, and each subscriber gets its own clone.
func (s *MemoryStore) drain(code string) {
	s.mu.Lock()
	if s.draining[code] {
		s.mu.Unlock()
		return
	}
	s.draining[code] = true
	for len(s.pending[code]) > 0 {
		room := s.pending[code][0]
		s.pending[code] = s.pending[code][1:]
		fns := make([]func(*model.Room), 0, len(s.subs[code]))
		for _, fn := range s.subs[code] {
			fns = append(fns, fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			if room != nil {
				fn(room.Clone())
			} else {
				fn(nil)
			}
		}

		s.mu.Lock()
	}
	s.draining[code] = false
	delete(s.pending, code)
	s.mu.Unlock()
}
