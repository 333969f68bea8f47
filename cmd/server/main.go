package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"partyrooms/config"
	"partyrooms/internal/cache"
	aiconfig "partyrooms/internal/config"
	"partyrooms/internal/repository"
	"partyrooms/internal/service"
	"partyrooms/internal/store"
	"partyrooms/internal/transport/rest"
	"partyrooms/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := aiconfig.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Generate: %s", aiConfig.Models.Generate)
	log.Printf("  Moderate: %s", aiConfig.Models.Moderate)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:  configured ✓")
	} else {
		log.Println("  API Key:  NOT SET (static pools, moderation off)")
	}

	// MongoDB connection. The game runs without Mongo: pools fall back
	// to the built-in sets and finished rooms are simply not archived.
	var db *mongo.Database
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = mongoClient.Ping(pingCtx, nil)
		cancel()
	}
	if err != nil {
		log.Printf("Warning: MongoDB unavailable (%v), continuing without it", err)
	} else {
		defer mongoClient.Disconnect(ctx)
		db = mongoClient.Database(cfg.MongoDB)
		log.Println("Connected to MongoDB")
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize store and caches
	roomStore := store.NewRedisStore(rdb, cfg.RoomTTL)
	leaderboard := cache.NewLeaderboardCache(rdb, cfg.RoomTTL)

	// Initialize repositories (nil db leaves them unset)
	var poolRepo repository.PoolRepo
	var archiveRepo repository.ArchiveRepo
	if db != nil {
		poolRepo = repository.NewPoolRepo(db)
		archiveRepo = repository.NewArchiveRepo(db)
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub(roomStore)
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TokenExpiry)
	gemini := service.NewGeminiService()
	questionSvc := service.NewQuestionService(gemini, poolRepo)
	moderationSvc := service.NewModerationService(gemini)
	roomSvc := service.NewRoomService(roomStore, questionSvc, moderationSvc)

	roomSvc.SetLeaderboard(leaderboard)
	if archiveRepo != nil {
		roomSvc.SetArchive(archiveRepo)
	}

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		RoomService: roomSvc,
		Leaderboard: leaderboard,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/start|end|choose|answer|chat|leave")
		log.Println("  GET  /v1/rooms/{code}")
		log.Println("  GET  /v1/rooms/{code}/leaderboard")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
