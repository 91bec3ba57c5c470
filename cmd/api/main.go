package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/elizatalk/backend/internal/config"
	"github.com/elizatalk/backend/internal/handler"
	"github.com/elizatalk/backend/internal/service/ai"
	avatarService "github.com/elizatalk/backend/internal/service/avatar"
	"github.com/elizatalk/backend/internal/service/engine"
	"github.com/elizatalk/backend/internal/service/listen"
	personaService "github.com/elizatalk/backend/internal/service/persona"
	"github.com/elizatalk/backend/internal/service/voice"
	"github.com/elizatalk/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer closeStore()

	gateway := storage.NewGateway(store)

	registry, err := personaService.NewRegistry(ctx, gateway)
	if err != nil {
		log.Fatalf("failed to load personality profiles: %v", err)
	}

	directory, err := avatarService.NewDirectory(ctx, gateway, registry)
	if err != nil {
		log.Fatalf("failed to load avatars: %v", err)
	}

	aiClient, err := ai.NewClient(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize AI client: %v", err)
	}
	log.Println("AI client initialized successfully")

	voiceCtrl, err := voice.NewController(ctx, gateway)
	if err != nil {
		log.Fatalf("failed to load voice preferences: %v", err)
	}
	listenCtrl := listen.NewController()

	eng := engine.New(aiClient, gateway, directory, voiceCtrl, listenCtrl)

	router := handler.NewRouter(gateway, registry, directory, eng, voiceCtrl, listenCtrl)

	startServer(ctx, cfg.Server, router)
}

// openStore picks Redis when an address is configured, otherwise the
// in-process cache.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Println("no REDIS_ADDR configured, using in-memory storage")
		return storage.NewMemoryStore(), func() {}, nil
	}

	rs, err := storage.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("connected to redis at %s", cfg.RedisAddr)
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Printf("warning: failed to close redis: %v", err)
		}
	}, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ElizaTalk backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
