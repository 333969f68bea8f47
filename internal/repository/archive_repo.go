package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"partyrooms/internal/model"
)

// ArchiveRepo persists finished rooms. Archival is best-effort: the live
// game never depends on it, so callers log failures and move on.
type ArchiveRepo interface {
	Insert(ctx context.Context, archive *RoomArchive) error
}

// RoomArchive is the durable record of a room after it ends or empties.
type RoomArchive struct {
	Code       string              `bson:"code"`
	Mode       model.GameMode      `bson:"mode"`
	Players    []model.Player      `bson:"players"`
	Rounds     int                 `bson:"rounds"`
	Transcript []model.ChatMessage `bson:"transcript"`
	CreatedAt  time.Time           `bson:"createdAt"`
	ArchivedAt time.Time           `bson:"archivedAt"`
}

type archiveRepo struct {
	collection *mongo.Collection
}

// NewArchiveRepo creates a Mongo-backed archive repository.
func NewArchiveRepo(db *mongo.Database) ArchiveRepo {
	return &archiveRepo{collection: db.Collection("room_archives")}
}

func (r *archiveRepo) Insert(ctx context.Context, archive *RoomArchive) error {
	_, err := r.collection.InsertOne(ctx, archive)
	return err
}
