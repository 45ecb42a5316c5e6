package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/aggregator"
	"github.com/ronospace/Flow-Ai-sub006/internal/cache"
	"github.com/ronospace/Flow-Ai-sub006/internal/config"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
	"github.com/ronospace/Flow-Ai-sub006/internal/monitor"
	"github.com/ronospace/Flow-Ai-sub006/internal/server"
	"github.com/ronospace/Flow-Ai-sub006/internal/source"
)

// Service wires the biometrics engine together: composite data source behind
// a range cache, aggregator, realtime monitor and HTTP surface. Explicitly
// constructed and injected; lifecycle is New/Start/Close, not global state.
type Service struct {
	config      *config.Config
	logger      *zap.Logger
	bridge      *source.BridgeClient
	synthetic   *source.SyntheticGenerator
	push        *source.MQTTPush
	redisClient *redis.Client
	aggregator  *aggregator.Aggregator
	monitor     *monitor.Monitor
	server      *server.Server
	permitted   bool
}

// New constructs the service. Permission denial and bridge absence are not
// errors: the session degrades to synthetic-only.
func New(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	s := &Service{
		config:    cfg,
		logger:    logger,
		synthetic: source.NewSyntheticGenerator(),
	}

	// Resolve the platform source. Everything downstream sees only the
	// composite; permission state never crosses this boundary as an error.
	var primary source.DataSource
	if cfg.Bridge.Enabled {
		s.bridge = source.NewBridgeClient(
			cfg.Bridge.BaseURL,
			time.Duration(cfg.Bridge.Timeout)*time.Second,
			logger,
		)
		s.permitted = s.bridge.RequestPermissions(
			context.Background(),
			models.AllTypes(),
			[]models.ReadingType{models.TypeBodyTemperature},
		)
		if s.permitted {
			primary = s.bridge
		} else {
			logger.Info("Platform permissions denied, running synthetic-only")
		}
	} else {
		logger.Info("No platform bridge configured, running synthetic-only")
	}

	composite := source.NewCompositeSource(primary, s.synthetic, logger)
	rangeCache := cache.New(composite, logger)
	s.aggregator = aggregator.New(rangeCache, logger)

	// Optional redis mirror of the latest sample per type.
	var mirror *monitor.Mirror
	if cfg.Redis.Enabled {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		mirror = monitor.NewMirror(
			s.redisClient,
			cfg.Redis.MirrorKeyPrefix,
			time.Duration(cfg.Redis.MirrorTTL)*time.Second,
			logger,
		)
	}

	// Optional realtime push, only meaningful with a permitted platform.
	var push source.PushSource
	if cfg.MQTT.Enabled && s.permitted {
		mqttPush, err := source.NewMQTTPush(source.MQTTPushConfig{
			Broker:     cfg.MQTT.Broker,
			ClientID:   cfg.MQTT.ClientID,
			Username:   cfg.MQTT.Username,
			Password:   cfg.MQTT.Password,
			DataTopic:  cfg.MQTT.DataTopic,
			ErrorTopic: cfg.MQTT.ErrorTopic,
			QoS:        cfg.MQTT.QoS,
		}, logger)
		if err != nil {
			logger.Warn("MQTT push unavailable, polling only", zap.Error(err))
		} else {
			s.push = mqttPush
			push = mqttPush
		}
	}

	s.monitor = monitor.New(s.aggregator, push, mirror, logger)

	var writer server.HealthWriter
	if s.permitted {
		writer = s.bridge
	}
	s.server = server.NewServer(s.aggregator, writer, s.Capabilities, logger)

	return s, nil
}

// Aggregator exposes the snapshot API for embedding callers.
func (s *Service) Aggregator() *aggregator.Aggregator {
	return s.aggregator
}

// Monitor exposes the realtime stream for embedding callers.
func (s *Service) Monitor() *monitor.Monitor {
	return s.monitor
}

// Capabilities resolves the current platform capabilities, falling back to
// the synthetic description when the bridge is absent or unreachable.
func (s *Service) Capabilities(ctx context.Context) models.Capabilities {
	if s.permitted && s.bridge != nil {
		caps, err := s.bridge.GetCapabilities(ctx)
		if err == nil {
			return caps
		}
		s.logger.Warn("Capabilities query failed, reporting synthetic", zap.Error(err))
	}
	return s.synthetic.Capabilities()
}

// Start launches the realtime monitor and serves HTTP until the listener
// fails or the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	interval := time.Duration(s.config.Monitor.Interval) * time.Second
	if err := s.monitor.Start(ctx, models.PrimaryTypes(), interval); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	if err := s.server.Start(s.config.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Close tears the service down: monitor first so no events are published
// while the transports close underneath it, then the HTTP listener.
func (s *Service) Close() error {
	s.monitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if s.push != nil {
		s.push.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing redis client", zap.Error(err))
		}
	}

	s.logger.Info("Biometrics service closed")
	return nil
}
