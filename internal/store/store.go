// Package store is the persistence and replication boundary for rooms.
// Every mutation goes through a versioned compare-and-swap commit: callers
// read a snapshot with its version, compute a new snapshot, and commit it
// against the version they read. A commit against a stale version fails
// with ErrVersionConflict and the caller retries against the fresh state,
// so concurrent sessions can never silently overwrite each other.
package store

import (
	"context"
	"errors"

	"partyrooms/internal/model"
)

var (
	// ErrRoomNotFound is returned when no room exists for a code.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned by Create on a room-code collision.
	ErrRoomExists = errors.New("room code already in use")

	// ErrVersionConflict is returned by Commit and Delete when another
	// commit landed after the caller's read.
	ErrVersionConflict = errors.New("room version conflict")
)

// RoomStore holds the authoritative copy of every room and fans committed
// snapshots out to subscribers. Subscribers receive snapshots in commit
// order, at least once; a nil snapshot means the room was deleted.
type RoomStore interface {
	Get(ctx context.Context, code string) (*model.Room, uint64, error)
	Create(ctx context.Context, room *model.Room) error
	Commit(ctx context.Context, room *model.Room, expectedVersion uint64) (uint64, error)
	Delete(ctx context.Context, code string, expectedVersion uint64) error
	Subscribe(ctx context.Context, code string, fn func(*model.Room)) (func(), error)
}
