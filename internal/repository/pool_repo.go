package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"partyrooms/internal/model"
)

// PoolRepo stores the preloaded truth/dare pools. Pools are seeded by
// cmd/seed and shared by every room; the question service falls back to
// the compiled-in content when no document exists.
type PoolRepo interface {
	Texts(ctx context.Context, mode model.GameMode, qType model.QuestionType) ([]string, error)
	Replace(ctx context.Context, mode model.GameMode, qType model.QuestionType, texts []string) error
}

// PoolDocument is one mode+type pool as stored in Mongo.
type PoolDocument struct {
	Mode  model.GameMode     `bson:"mode"`
	Type  model.QuestionType `bson:"type"`
	Texts []string           `bson:"texts"`
}

type poolRepo struct {
	collection *mongo.Collection
}

// NewPoolRepo creates a Mongo-backed pool repository.
func NewPoolRepo(db *mongo.Database) PoolRepo {
	return &poolRepo{collection: db.Collection("question_pools")}
}

func (r *poolRepo) Texts(ctx context.Context, mode model.GameMode, qType model.QuestionType) ([]string, error) {
	var doc PoolDocument
	err := r.collection.FindOne(ctx, bson.M{"mode": mode, "type": qType}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return doc.Texts, nil
}

func (r *poolRepo) Replace(ctx context.Context, mode model.GameMode, qType model.QuestionType, texts []string) error {
	filter := bson.M{"mode": mode, "type": qType}
	doc := PoolDocument{Mode: mode, Type: qType, Texts: texts}
	_, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}
