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

	"github.com/AfiqSafri/livesales-sub002/internal/client"
	"github.com/AfiqSafri/livesales-sub002/internal/config"
	"github.com/AfiqSafri/livesales-sub002/internal/handler"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
	"github.com/AfiqSafri/livesales-sub002/internal/server"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
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

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db := client.InitMysqlClient(cfg.DatabaseURL)
	mailer := client.NewMailClient(&cfg.Mail)
	billingClient := client.NewBillingClient(&cfg.Billing)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)

	orderSvc := service.NewOrderService(db, orderRepo, productRepo, paymentRepo, notificationRepo, logger)
	webhookSvc := service.NewWebhookService(db, cfg.Billing.WebhookSecret, paymentRepo, orderRepo, productRepo, userRepo, orderSvc, logger)
	sweeperSvc := service.NewSweeperService(db, cfg.Jobs.PendingOrderCutoff, orderRepo, productRepo, userRepo, orderSvc, mailer, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, orderRepo, mailer, logger)
	payoutSvc, err := service.NewPayoutService(db, cfg.Billing.PlatformFeeRate, orderRepo, productRepo, payoutRepo, logger)
	if err != nil {
		logger.Fatal("invalid payout config", zap.Error(err))
	}
	accountSvc := service.NewAccountService(db, userRepo, orderRepo, paymentRepo, productRepo, payoutRepo, notificationRepo, logger)
	checkoutSvc := service.NewCheckoutService(db, billingClient, cfg.BaseURL, productRepo, orderRepo, paymentRepo, userRepo, logger)

	srv := server.NewServer(
		handler.NewWebhookHandler(webhookSvc),
		handler.NewCheckoutHandler(checkoutSvc),
		handler.NewOrderHandler(orderSvc),
		handler.NewJobsHandler(sweeperSvc, notificationSvc, cfg.Jobs.Secret),
		handler.NewPayoutHandler(payoutSvc),
		handler.NewUserHandler(notificationSvc, accountSvc),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	return zapConfig.Build()
}
