package app

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rmspulse/internal/assistant"
	"rmspulse/internal/config"
	"rmspulse/internal/dataprocessing"
	apierrors "rmspulse/internal/errors"
	"rmspulse/internal/infrastructure"
	customMiddleware "rmspulse/internal/middleware"
	"rmspulse/internal/services"
	"rmspulse/internal/store"
	handlers "rmspulse/internal/transport/http"
	"rmspulse/pkg/contracts"
)

const (
	VERSION = contracts.Version
	AppName = "RMS Pulse - Warehouse Movement Reports"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	DB       *sql.DB
	Services *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Report    *services.ReportService
	Activity  *services.ActivityService
	Health    *services.HealthService
	Assistant *assistant.Service
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("build_id", BuildID))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the store and business services
func (a *Application) initializeServices() error {
	db, err := store.Open(a.Paths.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open activity database: %w", err)
	}
	a.DB = db

	repo, err := store.NewActivityStore(db)
	if err != nil {
		return fmt.Errorf("failed to prepare activity store: %w", err)
	}

	reportService := services.NewReportService(a.Paths, a.Logger)
	activityService := services.NewActivityService(repo, a.Logger)

	var assistantService *assistant.Service
	if a.Config.AI.Enabled() {
		provider, err := assistant.NewGeminiProvider(context.Background(), a.Config.AI.APIKey, a.Config.AI.Model)
		if err != nil {
			return fmt.Errorf("failed to create assistant provider: %w", err)
		}
		summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.SummarizerConfig{})
		assistantService = assistant.NewService(repo, summarizer, provider, a.Logger, assistant.Config{
			LookbackDays:      a.Config.AI.LookbackDays,
			RequestsPerMinute: a.Config.AI.RequestsPerMinute,
		})
		a.Logger.Info("Activity assistant enabled",
			slog.String("model", a.Config.AI.Model))
	} else {
		a.Logger.Info("Activity assistant disabled, no API key configured")
	}

	a.Services = &ServiceContainer{
		Report:    reportService,
		Activity:  activityService,
		Health:    services.NewHealthService(VERSION, activityService, assistantService != nil, a.Logger),
		Assistant: assistantService,
	}

	return nil
}

// setupRouter configures the chi router and middleware chain
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)
	maxUpload := a.Config.Server.MaxUploadBytes

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		reportHandler := handlers.NewReportHandler(a.Services.Report, a.Paths, maxUpload, a.Logger, errorHandler)
		r.Mount("/reports", reportHandler.Routes())

		activityHandler := handlers.NewActivityHandler(a.Services.Activity, a.Paths, maxUpload, a.Logger, errorHandler)
		r.Mount("/records", activityHandler.Routes())

		queryHandler := handlers.NewQueryHandler(a.Services.Assistant, a.Logger, errorHandler)
		r.Mount("/query", queryHandler.Routes())

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
			"X-Supervisor-Mode",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("uploads_dir", a.Paths.UploadsDir),
		slog.String("reports_dir", a.Paths.ReportsDir),
		slog.String("database", a.Paths.GetDatabasePath()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing database", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
