package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"member-directory-backend/internal/config"
	"member-directory-backend/internal/handlers"
	"member-directory-backend/internal/middleware"
	"member-directory-backend/internal/repository"
	"member-directory-backend/internal/services"
	"member-directory-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := os.Getenv("MEMBERS_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		log.Info().Msg("Database schema applied")
	}

	photoStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo storage")
	}

	var pushSender *services.PushSender
	if cfg.Push.Enabled {
		pushSender, err = services.NewPushSender(cfg.Push)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push sender")
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	wsHub := services.NewWSHub()
	notifier := services.NewNotifier(wsHub, pushSender)
	tokenService := services.NewTokenService(cfg.JWT.Secret)
	userService := services.NewUserService(userRepo)
	photoService := services.NewPhotoService(userRepo, photoRepo, txManager, photoStorage)
	likeService := services.NewLikeService(userRepo, likeRepo, txManager, notifier)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	likeHandler := handlers.NewLikeHandler(likeService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, tokenService)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimit))

	r.Get("/health", healthHandler(db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(tokenService))
		r.Use(middleware.ActivityMiddleware(userService))

		r.Get("/users", userHandler.ListMembers)
		r.Put("/users", userHandler.UpdateMember)
		r.Get("/users/{username}", userHandler.GetMember)
		r.Put("/users/push-token", userHandler.UpdatePushToken)
		r.Post("/users/add-photo", photoHandler.AddPhoto)
		r.Put("/users/set-main-photo/{photoID}", photoHandler.SetMainPhoto)
		r.Delete("/users/delete-photo/{photoID}", photoHandler.DeletePhoto)

		r.Get("/likes", likeHandler.ListLikes)
		r.Get("/likes/{username}", likeHandler.GetLike)
		r.Post("/likes/{username}", likeHandler.AddLike)
		r.Delete("/likes/{username}", likeHandler.RemoveLike)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports whether the database is reachable
func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", handlers.PaginationHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
