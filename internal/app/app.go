package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"lingogate/internal/auth"
	"lingogate/internal/config"
	"lingogate/internal/errors"
	"lingogate/internal/infrastructure"
	"lingogate/internal/license"
	customMiddleware "lingogate/internal/middleware"
	"lingogate/internal/payments"
	"lingogate/internal/services"
	"lingogate/internal/store"
	"lingogate/internal/translate"
	handlers "lingogate/internal/transport/http"
)

const (
	AppName = "LingoGate"
	Version = "1.0.0"
)

// BuildTime is set at compile time via -ldflags
var BuildTime = ""

// Application is the dependency injection container. Construction wires
// every collaborator; Run owns the server lifecycle.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Store         store.Store
	Translator    *translate.GoogleTranslator
	Services      *ServiceContainer

	verifier customMiddleware.TokenVerifier
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Translation services.TranslationService
	License     services.LicenseService
	Payment     services.PaymentService
	Health      *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(ctx context.Context) (*Application, error) {
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
		slog.String("version", Version),
		slog.Bool("license_enforcement", cfg.License.Enforcement))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.setupServer()

	return app, nil
}

// initializeServices wires the store, outbound clients, and the business
// services. Without a Firebase project the app runs on the in-memory
// store with authentication disabled, which only passes config validation
// when enforcement is off.
func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	if a.Config.Firebase.ProjectID != "" {
		fs, err := store.NewFirestoreStore(ctx, a.Config.Firebase, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to firestore: %w", err)
		}
		a.Store = fs
	} else {
		a.Logger.Warn("No firebase project configured, using in-memory store",
			slog.String("consequence", "all license state is lost on restart"))
		a.Store = store.NewMemoryStore()
	}

	var verifier customMiddleware.TokenVerifier
	if a.Config.Firebase.ProjectID != "" {
		v, err := auth.NewFirebaseVerifier(ctx, a.Config.Firebase, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize firebase auth: %w", err)
		}
		verifier = v
	}
	a.verifier = verifier

	translator, err := translate.NewGoogleTranslator(ctx, a.Config.Translation,
		a.Config.Firebase.CredentialsFile, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize translation client: %w", err)
	}
	a.Translator = translator

	evaluator := license.NewEvaluator(a.Store, a.Config.License, a.Logger,
		license.WithMetrics(metrics))
	activator := license.NewActivator(a.Store, a.Config.License, a.Logger,
		license.WithActivatorMetrics(metrics))
	tossClient := payments.NewTossClient(a.Config.Payments, a.Logger)

	a.Services = &ServiceContainer{
		Translation: services.NewTranslationService(evaluator, translator, a.Logger, metrics),
		License:     services.NewLicenseService(a.Store, a.Config.License, a.Logger),
		Payment:     services.NewPaymentService(tossClient, activator, a.Logger, metrics),
		Health:      services.NewHealthService(Version, BuildTime, a.Store, a.Logger),
	}
	return nil
}

// setupRouter configures the middleware chain and mounts all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(a.Logger)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)
	r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	translateHandler := handlers.NewTranslateHandler(a.Services.Translation, a.Logger, errorHandler)
	licenseHandler := handlers.NewLicenseHandler(a.Services.License, a.Logger, errorHandler)
	paymentHandler := handlers.NewPaymentHandler(a.Services.Payment, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{
			"service": AppName,
			"status":  "running",
			"version": Version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		// payment confirmation is called by the widget redirect without
		// an identity token
		r.Mount("/payments", paymentHandler.Routes())

		r.Group(func(r chi.Router) {
			if a.verifier != nil {
				authenticator := customMiddleware.NewAuthenticator(a.verifier, a.Logger)
				r.Use(authenticator.Handler)
			}
			r.Mount("/translate", translateHandler.Routes())
			r.Mount("/license", licenseHandler.Routes())
			r.Post("/orders", paymentHandler.CreateOrder)
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupServer configures the HTTP server
func (a *Application) setupServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until interrupted or the listener fails, then drains
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "Server listening",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Translator != nil {
		if err := a.Translator.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing translation client",
				slog.String("error", err.Error()))
		}
	}

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing store",
				slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

