package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"

	"github.com/pokerlab/holdem-arena/internal/auth"
	"github.com/pokerlab/holdem-arena/internal/config"
	"github.com/pokerlab/holdem-arena/internal/database"
	"github.com/pokerlab/holdem-arena/internal/engine/repositories"
	wshub "github.com/pokerlab/holdem-arena/server"
)

type ArenaServer struct {
	config         *config.Config
	db             *database.DB
	redisClient    *redis.Client
	jwtManager     *auth.JWTManager
	authMiddleware *auth.AuthMiddleware
	manager        *MatchManager
	hub            *wshub.Hub
	server         *http.Server
}

func NewArenaServer() (*ArenaServer, error) {
	// Load configuration
	cfg := config.Load()

	// Setup database
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	eventStore := repositories.NewPostgresEventStore(db.DB)
	if err := eventStore.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate event store: %w", err)
	}

	// Setup redis. The cache is a soft dependency: if redis is down
	// the server still runs, views just skip the cache.
	var cache *repositories.RedisCache
	redisClient, err := newRedisClient(cfg)
	if err != nil {
		slog.Warn("Redis unavailable, view caching disabled", "error", err)
		redisClient = nil
	} else {
		cache = repositories.NewRedisCache(redisClient)
	}

	// Setup JWT seat tokens
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, "holdem-arena")
	authMiddleware := auth.NewAuthMiddleware(jwtManager)

	// Setup spectator hub
	hub := wshub.NewHub()

	manager := NewMatchManager(db, eventStore, cache, hub, jwtManager, cfg)

	return &ArenaServer{
		config:         cfg,
		db:             db,
		redisClient:    redisClient,
		jwtManager:     jwtManager,
		authMiddleware: authMiddleware,
		manager:        manager,
		hub:            hub,
	}, nil
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *ArenaServer) Start() error {
	// Setup router
	router := s.setupRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: router,
	}

	// Start spectator hub
	go s.hub.Run()

	// Start server in goroutine
	go func() {
		slog.Info("Starting arena server", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *ArenaServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop running matches first so their final state lands in the
	// database before connections close.
	s.manager.Shutdown()

	// Shutdown HTTP server
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Close redis
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}

	// Close database connection
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

func (s *ArenaServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Spectator websocket endpoint
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		wshub.ServeWs(s.hub, w, r)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		matchHandler := NewMatchHandler(s.db, s.manager)

		// Public match routes
		r.Mount("/matches", matchHandler.Routes())

		// Seat-token-protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.RequireSeat)
			r.Mount("/play", matchHandler.SeatRoutes())
		})
	})

	return r
}
