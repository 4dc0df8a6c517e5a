package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/config"
	"eventhub/internal/adapters/email"
	"eventhub/internal/connpool"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/mongodb"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"

	"go.mongodb.org/mongo-driver/mongo"
)

// store bundles the repositories of one backend with its connection cache.
type store struct {
	events   domain.EventRepository
	bookings domain.BookingRepository
	health   controllers.Pinger
	close    func(ctx context.Context) error
}

func openStore(cfg *config.Config, logger *slog.Logger) store {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		cache := postgres.NewCache(cfg.DBUrl, connpool.WithLogger[*sql.DB](logger))
		db := postgres.NewDBProvider(cache)
		return store{
			events:   postgres.NewEventRepository(db),
			bookings: postgres.NewBookingRepository(db),
			health:   cache,
			close:    cache.Close,
		}
	default:
		cache := mongodb.NewCache(cfg.MongoURI, connpool.WithLogger[*mongo.Client](logger))
		db := mongodb.NewDatabaseProvider(cache, mongodb.DatabaseName(cfg.MongoURI, cfg.MongoDatabase))
		return store{
			events:   mongodb.NewEventRepository(db),
			bookings: mongodb.NewBookingRepository(db),
			health:   cache,
			close:    cache.Close,
		}
	}
}

// ensureSchema creates indexes and tables. Failures are logged only: the
// connection is retried on the next request.
func ensureSchema(ctx context.Context, s store, logger *slog.Logger) {
	for name, repo := range map[string]interface {
		EnsureSchema(ctx context.Context) error
	}{"events": s.events, "bookings": s.bookings} {
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.WarnContext(ctx, "schema setup failed", "collection", name, "err", err)
		}
	}
}

// @title Eventhub API
// @version 1.0
// @description Event listings and bookings.
// @BasePath /
func main() {
	logger := config.NewLogger()
	if err := run(logger, openStore); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// run serves until the process is signalled or the listener fails. Its
// defers release the store before main exits.
func run(logger *slog.Logger, open func(*config.Config, *slog.Logger) store) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	st := open(cfg, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Error("failed to close database connection", "err", err)
		}
	}()
	go ensureSchema(ctx, st, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipTLS,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("parse email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	eventService := services.NewEventService(st.events, logger, time.Now, cfg.RequestTimeout)
	bookingService := services.NewBookingService(st.bookings, st.events, emailService, logger, time.Now, cfg.RequestTimeout)

	router := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventService, bookingService),
		controllers.NewBookingController(logger, bookingService),
		controllers.NewHealthController(logger, st.health, cfg.RequestTimeout),
	)
	var handler http.Handler = router
	handler = middleware.CORS(cfg.CORSOrigins, handler)
	handler = middleware.Recovery(logger, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "err", err)
		}
	}()

	logger.Info("server listening", "addr", server.Addr, "store", cfg.StoreDriver, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
