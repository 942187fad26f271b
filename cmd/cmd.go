package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ambulance-tracker-backend/internal/config"
	"ambulance-tracker-backend/internal/handlers"
	"ambulance-tracker-backend/internal/repository"
	"ambulance-tracker-backend/internal/scheduler"
	"ambulance-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	_ = godotenv.Load()
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	callRepo := repository.NewCallRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services. Tracking starts enabled on every boot; the
	// flag is deliberately not persisted.
	tracking := services.NewTrackingState()
	hub := services.NewHub()
	geocoder := services.NewNominatimGeocoder(cfg.Geocode.BaseURL, cfg.Geocode.Timeout)
	locationService := services.NewLocationService(locationRepo, tracking, geocoder, hub)
	chatService := services.NewChatService(messageRepo, hub)
	callService := services.NewCallService(callRepo, hub)
	commentService := services.NewCommentService(commentRepo, hub)
	userService := services.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.AdminUsernames)
	uploadService, err := services.NewUploadService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
		cfg.AWS.PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload service")
	}

	// Nightly comment purge
	if cfg.Purge.Enabled {
		stopPurge, err := scheduler.StartCommentPurge(context.Background(), cfg.Purge.Cron, commentRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start comment purge scheduler")
		}
		defer stopPurge()
	}

	// Initialize handlers
	ambulanceHandler := handlers.NewAmbulanceHandler(locationService, callService, tracking, hub)
	chatHandler := handlers.NewChatHandler(chatService)
	commentHandler := handlers.NewCommentHandler(commentService)
	authHandler := handlers.NewAuthHandler(userService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	wsHandler := handlers.NewWebSocketHandler(hub, tracking)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Service info
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"message":"Ambulance Tracker API is running","ambulanceTrackingActive":%t}`, tracking.IsEnabled())
	})

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/me", authHandler.Me)
			r.Get("/user/{id}", authHandler.GetUser)
			r.Get("/admin", authHandler.Admins)
		})

		r.Route("/ambulance", func(r chi.Router) {
			r.Get("/", ambulanceHandler.GetLocation)
			r.Put("/", ambulanceHandler.UpdateLocation)
			r.Put("/status", ambulanceHandler.UpdateStatus)
			r.Post("/tracking/toggle", ambulanceHandler.ToggleTracking)
			r.Get("/tracking/status", ambulanceHandler.TrackingStatus)
			r.Post("/broadcast-location", ambulanceHandler.BroadcastLocation)
			r.Get("/{id}/location-detail", ambulanceHandler.LocationDetail)
			r.Post("/call", ambulanceHandler.RecordCall)
			r.Get("/history", ambulanceHandler.CallHistory)
			r.Delete("/history/clear", ambulanceHandler.ClearCalls)
			r.Delete("/history/{id}", ambulanceHandler.DeleteCall)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/conversation/{userID}", chatHandler.Conversations)
			r.Get("/{userID}/{targetID}", chatHandler.History)
			r.Post("/", chatHandler.Send)
			r.Delete("/clear/{userID}/{targetID}", chatHandler.Clear)
			r.Delete("/{id}", chatHandler.Delete)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", commentHandler.List)
			r.Post("/", commentHandler.Post)
			r.Delete("/{id}", commentHandler.Delete)
		})

		r.Post("/upload", uploadHandler.Upload)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Bool("tracking_active", tracking.IsEnabled()).
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Admin-Update")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
