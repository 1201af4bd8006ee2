package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"payvault/internal/client"
	"payvault/internal/config"
	"payvault/internal/handler"
	"payvault/internal/logger"
	"payvault/internal/notify"
	"payvault/internal/order"
	"payvault/internal/repository"
	"payvault/internal/server"
	"payvault/internal/service"
	"payvault/internal/webhook"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, "payvault-api")

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	tokenRepo := repository.NewTokenRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	legacyRepo := repository.NewLegacyRepository(db)
	orders := order.NewGormGateway(db)
	notifier := notify.NewLogNotifier(log)

	tokenService := service.NewTokenService(tokenRepo, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, log)
	checkoutService := service.NewCheckoutService(tokenService, subscriptionService, log)
	migrator := service.NewLegacyMigrator(legacyRepo, subscriptionService, log)

	router := webhook.NewRouter(log)
	router.Register(webhook.EventCaptureCompleted,
		webhook.NewCaptureCompletedHandler(orders, transactionRepo, notifier, log))
	router.Register(webhook.EventVaultTokenUpdated,
		webhook.NewVaultTokenUpdatedHandler(tokenService, subscriptionService, log))

	srv := server.NewServer(
		log,
		handler.NewWebhookHandler(router, log),
		handler.NewTokenHandler(tokenService),
		handler.NewCheckoutHandler(checkoutService),
		handler.NewSubscriptionHandler(subscriptionService),
		handler.NewAdminHandler(migrator, cfg.Migrator.Enabled),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")

	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}
