package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Joebakid/Gudrix/internal/config"
	"github.com/Joebakid/Gudrix/internal/notify"
	"github.com/Joebakid/Gudrix/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	zl, err := logger.New("order-notifier")
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	cfg, err := config.Load()
	if err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}
	if len(cfg.KafkaBrokers) == 0 {
		zl.Fatal("KAFKA_BROKERS is required")
	}
	if cfg.SMTP.Host == "" || len(cfg.SMTP.To) == 0 {
		zl.Fatal("SMTP_HOST and ORDER_NOTIFY_TO are required")
	}

	email := notify.NewEmailNotifier(cfg.SMTP, cfg.CurrencySymbol)
	consumer := notify.NewConsumer(email, zl, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaBrokers...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("order notifier starting", zap.String("topic", cfg.KafkaTopic), zap.Strings("brokers", cfg.KafkaBrokers))
	consumer.Run(ctx)

	if err := consumer.Close(); err != nil {
		zl.Warn("error closing kafka reader", zap.Error(err))
	}
	zl.Info("order notifier stopped")
}
