package source

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// MQTTPushConfig configures the realtime push subscription.
type MQTTPushConfig struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	DataTopic  string
	ErrorTopic string
	QoS        byte
}

// pushPayload is the wire format of one live sample from the bridge.
type pushPayload struct {
	Type      string         `json:"type"`
	Value     float64        `json:"value"`
	Timestamp int64          `json:"timestamp"` // epoch millis
	Unit      string         `json:"unit"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type pushError struct {
	Error string `json:"error"`
}

// MQTTPush bridges the platform's live sample feed into the service over
// MQTT. Malformed payloads are dropped and logged; they never terminate the
// subscription or reach the handler.
type MQTTPush struct {
	client mqtt.Client
	cfg    MQTTPushConfig
	logger *zap.Logger

	mu         sync.Mutex
	subscribed bool
}

// NewMQTTPush connects to the broker. Returns an error only on connect
// failure; the caller treats that as "no realtime capability".
func NewMQTTPush(cfg MQTTPushConfig, logger *zap.Logger) (*MQTTPush, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPush{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Subscribe attaches handlers for live samples and platform error events.
func (p *MQTTPush) Subscribe(onReading func(models.Reading), onError func(error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dataHandler := func(_ mqtt.Client, msg mqtt.Message) {
		reading, ok := p.parseReading(msg.Payload())
		if !ok {
			return
		}
		metrics.PushReadingsTotal.Inc()
		onReading(reading)
	}
	if token := p.client.Subscribe(p.cfg.DataTopic, p.cfg.QoS, dataHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", p.cfg.DataTopic, token.Error())
	}

	errHandler := func(_ mqtt.Client, msg mqtt.Message) {
		var pe pushError
		if err := json.Unmarshal(msg.Payload(), &pe); err != nil || pe.Error == "" {
			metrics.PushDroppedTotal.Inc()
			p.logger.Warn("Dropping malformed push error payload",
				zap.ByteString("payload", msg.Payload()),
			)
			return
		}
		onError(fmt.Errorf("platform push error: %s", pe.Error))
	}
	if token := p.client.Subscribe(p.cfg.ErrorTopic, p.cfg.QoS, errHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", p.cfg.ErrorTopic, token.Error())
	}

	p.subscribed = true
	p.logger.Info("Subscribed to realtime push topics",
		zap.String("data_topic", p.cfg.DataTopic),
		zap.String("error_topic", p.cfg.ErrorTopic),
	)
	return nil
}

func (p *MQTTPush) parseReading(payload []byte) (models.Reading, bool) {
	var pp pushPayload
	if err := json.Unmarshal(payload, &pp); err != nil {
		metrics.PushDroppedTotal.Inc()
		p.logger.Warn("Dropping malformed push payload",
			zap.Error(err),
		)
		return models.Reading{}, false
	}

	t, ok := models.ParseReadingType(pp.Type)
	if !ok || pp.Timestamp <= 0 {
		metrics.PushDroppedTotal.Inc()
		p.logger.Warn("Dropping push payload with unknown type or bad timestamp",
			zap.String("type", pp.Type),
			zap.Int64("timestamp", pp.Timestamp),
		)
		return models.Reading{}, false
	}

	return models.Reading{
		Type:      t,
		Value:     pp.Value,
		Timestamp: time.UnixMilli(pp.Timestamp),
		Unit:      pp.Unit,
		Metadata:  pp.Metadata,
	}, true
}

// Unsubscribe detaches both topics. Safe to call when not subscribed.
func (p *MQTTPush) Unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.subscribed {
		return nil
	}
	p.subscribed = false

	token := p.client.Unsubscribe(p.cfg.DataTopic, p.cfg.ErrorTopic)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to unsubscribe: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPush) Close() {
	p.client.Disconnect(250)
}
