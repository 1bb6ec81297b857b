package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"paxum-payment-service/internal/client"
	"paxum-payment-service/internal/config"
	"paxum-payment-service/internal/repository"
	"paxum-payment-service/internal/server"
	"paxum-payment-service/internal/service"
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

	logger, err := newLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("database init failed", "error", err)
	}

	tokenManager := client.NewTokenManager(&cfg.Paxos, logger)
	paxosClient := client.NewPaxosClient(&cfg.Paxos, tokenManager, logger)

	sessionRepo := repository.NewPaymentSessionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	paymentService := service.NewPaymentService(
		paxosClient,
		sessionRepo,
		webhookEventRepo,
		service.NewLogReportUnlocker(logger),
		cfg.Paxos.WebhookSecret,
		cfg.Paxos.PayURLTemplate,
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(paymentService, logger)

	logger.Infow("starting HTTP server", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("HTTP server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatalw("HTTP server shutdown error", "error", err)
	}
}

func newLogger(logCfg *config.Log) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if logCfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	if level, err := zapcore.ParseLevel(logCfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
