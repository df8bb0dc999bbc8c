package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"linguaclash/internal/config"
	"linguaclash/internal/database"
	"linguaclash/internal/docstore"
	"linguaclash/internal/events"
	"linguaclash/internal/handlers"
	"linguaclash/internal/lessons"
	"linguaclash/internal/repository"
	"linguaclash/internal/security"
	"linguaclash/internal/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	catalog := lessons.Default()
	log.Printf("Loaded %d lesson folders", len(catalog.Folders()))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	var (
		scoreStore      service.ScoreStore
		dictionaryStore service.DictionaryStore
	)
	switch cfg.StoreBackend {
	case "mongo":
		store, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize document store: %v", err)
		}
		defer store.Close()
		scoreStore = store.Scores()
		dictionaryStore = store.Dictionary()
	case "sql":
		scoreStore = repository.NewScoreRepository(db)
		dictionaryStore = repository.NewDictionaryRepository(db)
	default:
		log.Fatalf("Unknown STORE_BACKEND %q: use sql or mongo", cfg.StoreBackend)
	}

	publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()
	// Services skip publishing entirely when no broker is configured
	var eventSink events.Publisher
	if publisher.Enabled() {
		eventSink = publisher
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepo, tokens, cfg.SessionDuration, emailService, scoreStore, dictionaryStore)
	progressService := service.NewProgressService(catalog, scoreStore, cfg.PassThreshold, cfg.PersistMaxAttempts, eventSink)
	exerciseService := service.NewExerciseService(catalog, progressService, eventSink, cfg.ExerciseSessionTTL)
	dictionaryService := service.NewDictionaryService(dictionaryStore, catalog)
	feedbackService := service.NewFeedbackService(feedbackRepo, emailService, cfg.FeedbackNotifyEmail)
	backupService := service.NewBackupService(db)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	limiter := security.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	routes := handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, limiter),
		Auth:       handlers.NewAuthHandler(authService, oauthProviders, cfg.OAuthRedirectBaseURL),
		Lessons:    handlers.NewLessonHandler(catalog, progressService, exerciseService),
		Exercises:  handlers.NewExerciseHandler(exerciseService),
		Progress:   handlers.NewProgressHandler(progressService),
		Dictionary: handlers.NewDictionaryHandler(dictionaryService),
		Feedback:   handlers.NewFeedbackHandler(feedbackService),
		Admin:      handlers.NewAdminHandler(userRepo, feedbackService, backupService),
		Health:     handlers.Healthz(db),
	}

	mux := http.NewServeMux()
	routes.Register(mux)

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})(handlers.Logging(mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan struct{})
	go cleanupExpiredSessions(authService, stop)
	go cleanupExerciseSessions(exerciseService, cfg.ExerciseSessionTTL, stop)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired login sessions
func cleanupExpiredSessions(authService *service.AuthService, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions()
			if err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
				continue
			}
			log.Printf("Expired sessions cleaned up: %d", n)
		}
	}
}

// cleanupExerciseSessions drops idle runs and exercise sessions
func cleanupExerciseSessions(exerciseService *service.ExerciseService, ttl time.Duration, stop <-chan struct{}) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := exerciseService.CleanupExpired(); n > 0 {
				log.Printf("Dropped %d idle exercise sessions", n)
			}
		}
	}
}
