package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"partyrooms/internal/content"
	"partyrooms/internal/model"
	"partyrooms/internal/repository"
)

// Seeds the Mongo question pools from the compiled-in content so they
// can be curated afterwards without a redeploy.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "partyrooms"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	pools := repository.NewPoolRepo(client.Database(mongoDB))

	modes := []model.GameMode{model.ModeMinimal, model.ModeModerate}
	for _, mode := range modes {
		pool := content.PoolFor(mode)
		if err := pools.Replace(ctx, mode, model.QuestionTruth, pool.Truths); err != nil {
			log.Fatalf("Failed to seed %s truths: %v", mode, err)
		}
		if err := pools.Replace(ctx, mode, model.QuestionDare, pool.Dares); err != nil {
			log.Fatalf("Failed to seed %s dares: %v", mode, err)
		}
		log.Printf("Seeded %s pool: %d truths, %d dares", mode, len(pool.Truths), len(pool.Dares))
	}

	log.Println("Done")
}
