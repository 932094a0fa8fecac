// Club Payments Service
//
// This is the main entry point for the event ticket payment service.
// It wires up all dependencies and starts the HTTP server.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/csedclub/club-payments/config"
	"github.com/csedclub/club-payments/internal/adapters/clubapi"
	"github.com/csedclub/club-payments/internal/adapters/mailer"
	"github.com/csedclub/club-payments/internal/adapters/razorpay"
	"github.com/csedclub/club-payments/internal/core/ports"
	"github.com/csedclub/club-payments/internal/core/service"
	"github.com/csedclub/club-payments/internal/handlers"
	"github.com/csedclub/club-payments/internal/notify"
	"github.com/csedclub/club-payments/internal/platform/logging"
	"github.com/csedclub/club-payments/internal/platform/metrics"
)

func main() {
	// load .env into the process environment; absence is fine in production
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	if envErr != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}
	metrics.MustRegister()

	// Infrastructure Layer
	gateway := razorpay.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout)
	verifier := razorpay.NewSignatureVerifier()

	dispatcher := notify.NewDispatcher(logger, cfg.Notify.Workers, cfg.Notify.QueueSize, cfg.Notify.Timeout,
		ticketSenders(cfg, logger)...)
	dispatcher.Start()

	// Service Layer
	paymentService := service.NewPaymentService(
		gateway,    // implements ports.OrderGateway
		verifier,   // implements ports.SignatureVerifier
		dispatcher, // implements ports.TicketNotifier
		service.Credentials{KeyID: cfg.Gateway.KeyID, KeySecret: cfg.Gateway.KeySecret},
		logger,
	)

	// API Layer
	handler := handlers.NewPaymentHandler(paymentService)
	router := handlers.SetupRouter(handler, cfg.Server.GinMode, logger, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("notifications", dispatcher.Enabled()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("pending ticket notifications abandoned")
	}
}

// ticketSenders builds the optional notification channels; unconfigured ones are skipped.
func ticketSenders(cfg *config.Config, logger *zerolog.Logger) []ports.TicketSender {
	var senders []ports.TicketSender

	if cfg.Mail.Enabled() {
		port, err := cfg.Mail.PortNumber()
		if err != nil {
			logger.Warn().Err(err).Msg("ticket emails disabled")
		} else {
			senders = append(senders, mailer.New(cfg.Mail.Host, port, cfg.Mail.User, cfg.Mail.Pass, cfg.Mail.From))
		}
	}
	if cfg.ClubAPI.Enabled() {
		senders = append(senders, clubapi.NewClient(cfg.ClubAPI.URL, cfg.ClubAPI.Token))
	}

	return senders
}
