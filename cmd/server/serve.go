package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ticketgate/backend/internal/ai"
	"github.com/ticketgate/backend/internal/db"
	"github.com/ticketgate/backend/internal/events"
	httpapi "github.com/ticketgate/backend/internal/http"
	"github.com/ticketgate/backend/internal/observability"
	"github.com/ticketgate/backend/internal/review"
	"github.com/ticketgate/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer store.Close()

	generator := newGenerator(cfg)
	if !ai.IsConfigured(generator) {
		logger.Warn().Str("provider", cfg.LLMProvider).Msg("LLM API key not set; reviews will return 503")
	} else {
		logger.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("review backend ready")
	}
	gate := review.NewGate(generator, logger)

	producer := events.NewProducer(events.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopicTickets, logger)
	defer producer.Close()
	if !producer.Enabled() {
		logger.Info().Msg("KAFKA_BROKERS not set; ticket events disabled")
	}

	tickets := &service.TicketService{
		Repo:     store,
		Reviewer: gate,
		Events:   producer,
		Logger:   logger.With().Str("component", "tickets").Logger(),
	}
	// runs before producer.Close
	defer tickets.Wait()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.Router(cfg, httpapi.Deps{
		DB:       store,
		Sessions: store,
		Reviewer: gate,
		Tickets:  tickets,
		Projects: store,
	}, logger)

	var handler http.Handler = router
	if cfg.RequestTimeout > 0 {
		handler = http.TimeoutHandler(router, cfg.RequestTimeout, `{"error":"request timed out","code":"TIMEOUT"}`)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
	return nil
}
