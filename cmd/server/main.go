package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tavernkeep/gamemaster/internal/clients/armory"
	"github.com/tavernkeep/gamemaster/internal/clients/llm"
	"github.com/tavernkeep/gamemaster/internal/config"
	"github.com/tavernkeep/gamemaster/internal/handlers/api"
	"github.com/tavernkeep/gamemaster/internal/repositories/characters"
	"github.com/tavernkeep/gamemaster/internal/repositories/combatlog"
	"github.com/tavernkeep/gamemaster/internal/repositories/messages"
	"github.com/tavernkeep/gamemaster/internal/repositories/npcs"
	"github.com/tavernkeep/gamemaster/internal/repositories/rooms"
	"github.com/tavernkeep/gamemaster/internal/repositories/shops"
	"github.com/tavernkeep/gamemaster/internal/services/combat"
	"github.com/tavernkeep/gamemaster/internal/services/narrative"
)

type repositories struct {
	rooms      rooms.Repository
	characters characters.Repository
	npcs       npcs.Repository
	combatLog  combatlog.Repository
	messages   messages.Repository
	shops      shops.Repository
}

// redisPinger adapts the redis client to the healthz Pinger
type redisPinger struct {
	client redis.UniversalClient
}

func (p *redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	repos, pinger := buildRepositories(cfg, logger)

	llmClient, err := llm.New(&llm.Config{
		HTTPClient: &http.Client{Timeout: cfg.LLM.Timeout},
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	armoryClient, err := armory.New(&armory.Config{
		HTTPClient: &http.Client{Timeout: cfg.DND5E.Timeout},
	})
	if err != nil {
		log.Fatalf("Failed to create armory client: %v", err)
	}

	combatService := combat.NewService(&combat.ServiceConfig{
		RoomRepository:      repos.rooms,
		CharacterRepository: repos.characters,
		NPCRepository:       repos.npcs,
		LogRepository:       repos.combatLog,
		ArmoryClient:        armoryClient,
		Narrator:            combat.NewLLMNarrator(llmClient),
		Logger:              logger,
	})

	narrativeService := narrative.NewService(&narrative.ServiceConfig{
		RoomRepository:      repos.rooms,
		CharacterRepository: repos.characters,
		MessageRepository:   repos.messages,
		ShopRepository:      repos.shops,
		LLMClient:           llmClient,
		Logger:              logger,
	})

	handler := api.NewHandler(&api.HandlerConfig{
		CombatService:    combatService,
		NarrativeService: narrativeService,
		Pinger:           pinger,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildRepositories connects to Redis when it is reachable and falls
// back to in-memory storage otherwise, so local development works
// without a store
func buildRepositories(cfg *config.Config, logger *slog.Logger) (*repositories, api.Pinger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-memory repositories",
			"addr", cfg.Redis.Addr,
			"error", err)
		_ = client.Close()

		return &repositories{
			rooms:      rooms.NewInMemoryRepository(),
			characters: characters.NewInMemoryRepository(),
			npcs:       npcs.NewInMemoryRepository(),
			combatLog:  combatlog.NewInMemoryRepository(),
			messages:   messages.NewInMemoryRepository(),
			shops:      shops.NewInMemoryRepository(),
		}, nil
	}

	logger.Info("connected to redis", "addr", cfg.Redis.Addr)

	return &repositories{
		rooms:      rooms.NewRedisRepository(&rooms.RedisRepoConfig{Client: client}),
		characters: characters.NewRedisRepository(&characters.RedisRepoConfig{Client: client}),
		npcs:       npcs.NewRedisRepository(&npcs.RedisRepoConfig{Client: client}),
		combatLog:  combatlog.NewRedisRepository(&combatlog.RedisRepoConfig{Client: client}),
		messages:   messages.NewRedisRepository(&messages.RedisRepoConfig{Client: client}),
		shops:      shops.NewRedisRepository(&shops.RedisRepoConfig{Client: client}),
	}, &redisPinger{client: client}
}
