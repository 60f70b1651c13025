// Command server wires the registration workflow together and serves it
// over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventregistry/config"
	_ "eventregistry/docs"
	"eventregistry/internal/adapters/auth"
	"eventregistry/internal/adapters/email"
	"eventregistry/internal/adapters/payment"
	"eventregistry/internal/adapters/session"
	httpdelivery "eventregistry/internal/delivery/http"
	"eventregistry/internal/delivery/http/controllers"
	"eventregistry/internal/delivery/http/middleware"
	"eventregistry/internal/domain"
	"eventregistry/internal/repository/memory"
	"eventregistry/internal/repository/postgres"
	"eventregistry/internal/repository/postgres/migrations"
	"eventregistry/internal/services"
)

// @title Event Registry API
// @version 1.0
// @description Multi-step event registration with shared capacity accounting.
// @BasePath /
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	var (
		eventRepo domain.EventRepository
		regRepo   domain.RegistrationRepository
	)
	switch cfg.Storage {
	case "memory":
		memEvents := memory.NewEventRepository()
		seedDemoEvent(memEvents)
		eventRepo = memEvents
		regRepo = memory.NewRegistrationRepository()
		logger.Info("using in-memory storage")
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			logger.Error("open database", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			logger.Error("ping database", "err", err)
			os.Exit(1)
		}
		cancel()
		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(ctx, db); err != nil {
			cancel()
			logger.Error("apply migrations", "err", err)
			os.Exit(1)
		}
		cancel()
		eventRepo = postgres.NewEventRepository(db)
		regRepo = postgres.NewRegistrationRepository(db)
		logger.Info("connected to postgres")
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	gateway, err := payment.NewGateway(payment.GatewayConfig{
		Provider: cfg.PaymentProvider,
		Endpoint: cfg.PaymentEndpoint,
		APIKey:   cfg.PaymentAPIKey,
	})
	if err != nil {
		logger.Error("create payment gateway", "err", err)
		os.Exit(1)
	}

	store := session.NewStore()
	ledger := services.NewCapacityLedger(regRepo)
	regSession := services.NewRegistrationSession(store, regRepo)
	notifier := services.NewNotifier(mailer, email.NewTemplateRenderer())
	hasher := auth.NewBcryptTokenHasher(0)
	workflow := services.NewRegistrationWorkflow(
		logger, ledger, regSession, regRepo, gateway, notifier, hasher, cfg.BaseURL,
	)

	registerController := controllers.NewRegisterController(logger, eventRepo, workflow)
	eventController := controllers.NewEventController(logger, eventRepo)
	router := httpdelivery.NewRouter(registerController, eventController)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	var handler http.Handler = router
	handler = middleware.VisitorSession(handler)
	handler = middleware.OptionalAuth(verifier, handler)
	handler = middleware.CORS(cfg.CORSOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("server stopped")
}

// seedDemoEvent gives the in-memory mode something to register for.
func seedDemoEvent(repo *memory.EventRepository) {
	repo.Put(&domain.Event{
		ID:               "demo",
		Title:            "Demo Conference",
		Slug:             "demo-conference",
		Capacity:         50,
		RegistrationOpen: true,
		StartsAt:         time.Now().Add(30 * 24 * time.Hour),
		Tickets: []*domain.Ticket{
			{ID: "general", EventID: "demo", Title: "General Admission", Price: 2500},
			{ID: "student", EventID: "demo", Title: "Student", Price: 0, Limit: 10},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}
