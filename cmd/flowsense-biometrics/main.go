package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/config"
	"github.com/ronospace/Flow-Ai-sub006/internal/logger"
	"github.com/ronospace/Flow-Ai-sub006/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "flowsense-biometrics")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting flowsense-biometrics service",
		zap.Bool("bridge_enabled", cfg.Bridge.Enabled),
		zap.Bool("mqtt_enabled", cfg.MQTT.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Int("monitor_interval", cfg.Monitor.Interval),
		zap.String("http_addr", cfg.HTTP.Addr),
	)

	svc, err := service.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create biometrics service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := svc.Start(ctx); err != nil {
			zapLogger.Fatal("Failed to start biometrics service", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	cancel()
	if err := svc.Close(); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}

	zapLogger.Info("Service stopped")
}
