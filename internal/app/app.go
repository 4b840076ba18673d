package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketrelay/config"
	"ticketrelay/internal/controller/rest"
	"ticketrelay/internal/controller/rest/handlers"
	"ticketrelay/internal/domain/ticket"
	"ticketrelay/internal/external/kafka"
	"ticketrelay/internal/external/opensearch"
	ticket_repo "ticketrelay/internal/repo/ticket"
	"ticketrelay/internal/signature"
	"ticketrelay/pkg/health"
	"ticketrelay/pkg/logger"
	"ticketrelay/pkg/postgres"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run bootstraps and runs the relay service.
func Run(cfg config.Config) error {
	logger.Setup(logger.Options{
		Level:   cfg.LogLevel,
		Console: cfg.LogFormat == "console",
	})

	if cfg.ProxySecret == "" {
		slog.Warn("PROXY_SECRET is not set; every webhook signature will be rejected")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		return fmt.Errorf("app - Run - postgres.New: %w", err)
	}
	defer pg.Close()

	if err := ApplyMigrations(cfg.PgURL); err != nil {
		return fmt.Errorf("app - Run - ApplyMigrations: %w", err)
	}

	var sinks []ticket.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		slog.Info("kafka event sink enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTicketTopic)
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTicketTopic)
		defer func() { _ = publisher.Close() }()
		sinks = append(sinks, kafka.NewEventSink(publisher))
	}
	if len(cfg.OpensearchUrls) > 0 {
		slog.Info("opensearch event sink enabled",
			"urls", cfg.OpensearchUrls, "index", cfg.OpensearchIndexEvents)
		osSink, err := opensearch.NewEventSink(ctx, cfg.OpensearchUrls, cfg.OpensearchIndexEvents)
		if err != nil {
			return fmt.Errorf("app - Run - opensearch.NewEventSink: %w", err)
		}
		sinks = append(sinks, osSink)
	}

	repo := ticket_repo.NewPgTicketRepo(pg)
	service := ticket.NewService(repo, sinks...)
	verifier := signature.NewVerifier(cfg.ProxySecret, cfg.ProxyDebug)

	ticketHandler := handlers.NewTicketHandler(verifier, service)
	adminHandler := handlers.NewAdminHandler(service)

	healthRegistry := health.NewRegistry(health.NewPostgresChecker(pg.Pool))

	gin.SetMode(gin.ReleaseMode)
	engine := NewGinEngine()
	router := rest.NewRouter(cfg.ProxyMount, cfg.AdminUser, cfg.AdminPass, ticketHandler, adminHandler, healthRegistry)
	router.SetUp(engine)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("ticket relay started", "port", cfg.Port, "mount", cfg.ProxyMount)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down ticket relay")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ticket relay stopped")
	return nil
}
