package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// Mirror writes the newest sample per reading type into Redis with a TTL so
// that other services can read live vitals without holding a stream
// subscription.
type Mirror struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewMirror creates a redis mirror.
func NewMirror(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *Mirror {
	return &Mirror{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Publish replaces the mirrored sample for the reading's type.
func (m *Mirror) Publish(ctx context.Context, r models.Reading) error {
	key := fmt.Sprintf("%s%s:realtime", m.keyPrefix, r.Type)

	jsonData, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	if err := m.client.Set(ctx, key, jsonData, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set mirror key: %w", err)
	}

	m.logger.Debug("Mirrored realtime reading",
		zap.String("key", key),
	)
	return nil
}

// Latest reads back the mirrored sample for a type. Returns redis.Nil
// wrapped when no sample is mirrored.
func (m *Mirror) Latest(ctx context.Context, t models.ReadingType) (models.Reading, error) {
	key := fmt.Sprintf("%s%s:realtime", m.keyPrefix, t)

	val, err := m.client.Get(ctx, key).Result()
	if err != nil {
		return models.Reading{}, fmt.Errorf("failed to get mirror key %s: %w", key, err)
	}

	var r models.Reading
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return models.Reading{}, fmt.Errorf("failed to unmarshal mirrored reading: %w", err)
	}
	return r, nil
}
