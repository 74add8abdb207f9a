package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"playday/internal/notifier"
	"playday/pkg/config"
	"playday/pkg/kafka"
	kafkaconfig "playday/pkg/kafka/config"
	kafkamiddleware "playday/pkg/kafka/middleware"
	"playday/pkg/logger"

	"github.com/joho/godotenv"
)

const ServiceName = "playday-notifier"

func main() {
	envFile := os.Getenv(config.EnvEnvFile)
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	envErr := godotenv.Load(envFile)

	log := logger.New(logger.Config{
		Level:     os.Getenv(config.EnvLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("Failed to load env file", "path", envFile, "error", envErr)
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log)

	topic := os.Getenv(config.EnvEventsTopic)
	if topic == "" {
		topic = config.DefaultEventsTopic
	}

	handler := notifier.NewHandler(notifier.NewLogNotifier(log), log)
	consumer, err := kafka.NewConsumer(kafkaCfg, topic, handler.Handle, log)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Notifier consuming events", "topic", topic, "group", kafkaCfg.ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close Kafka consumer", "error", err)
	}
	metrics.LogSnapshot(log)
	log.Info("Notifier stopped")
}
