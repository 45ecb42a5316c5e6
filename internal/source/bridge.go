package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// bridgeReading is the wire format of one sample from the platform health
// bridge. Timestamps are epoch milliseconds.
type bridgeReading struct {
	Value     float64        `json:"value"`
	Timestamp int64          `json:"timestamp"`
	Unit      string         `json:"unit"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type bridgeQueryResponse struct {
	Readings []bridgeReading `json:"readings"`
}

type bridgePermissionRequest struct {
	ReadTypes  []string `json:"read_types"`
	WriteTypes []string `json:"write_types"`
}

type bridgePermissionResponse struct {
	Granted bool `json:"granted"`
}

type bridgeWriteResponse struct {
	OK bool `json:"ok"`
}

type bridgeTypesResponse struct {
	Types []string `json:"types"`
}

// BridgeClient talks to the native platform health bridge (the
// HealthKit/Fit-equivalent companion endpoint). It is the only component in
// the service that reaches the platform source.
type BridgeClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewBridgeClient creates a bridge client against the given base URL.
func NewBridgeClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BridgeClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BridgeClient{
		httpClient: client,
		logger:     logger,
	}
}

func (c *BridgeClient) Name() string { return "bridge" }

// RequestPermissions asks the platform for read/write access. Fails open to
// false on any error: the caller treats false as "synthetic-only session",
// never as a fatal condition.
func (c *BridgeClient) RequestPermissions(ctx context.Context, readTypes, writeTypes []models.ReadingType) bool {
	request := bridgePermissionRequest{
		ReadTypes:  typeStrings(readTypes),
		WriteTypes: typeStrings(writeTypes),
	}

	var response bridgePermissionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		ForceContentType("application/json").
		Post("/permissions/request")
	if err != nil {
		metrics.BridgeRequestsTotal.WithLabelValues("permissions", "error").Inc()
		c.logger.Warn("Permission request failed, falling back to synthetic data",
			zap.Error(err),
		)
		return false
	}
	if resp.IsError() {
		metrics.BridgeRequestsTotal.WithLabelValues("permissions", "error").Inc()
		c.logger.Warn("Permission request rejected by bridge",
			zap.Int("status_code", resp.StatusCode()),
		)
		return false
	}

	metrics.BridgeRequestsTotal.WithLabelValues("permissions", "ok").Inc()
	c.logger.Info("Platform permissions resolved",
		zap.Bool("granted", response.Granted),
		zap.Int("read_types", len(readTypes)),
		zap.Int("write_types", len(writeTypes)),
	)
	return response.Granted
}

// Query implements DataSource. Any transport or protocol failure is reported
// as ErrUnavailable so the composite source can take the synthetic branch.
func (c *BridgeClient) Query(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	var response bridgeQueryResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":  string(t),
			"start": fmt.Sprintf("%d", start.UnixMilli()),
			"end":   fmt.Sprintf("%d", end.UnixMilli()),
		}).
		SetResult(&response).
		ForceContentType("application/json").
		Get("/readings")
	if err != nil {
		metrics.BridgeRequestsTotal.WithLabelValues("readings", "error").Inc()
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, t, err)
	}
	if resp.IsError() {
		metrics.BridgeRequestsTotal.WithLabelValues("readings", "error").Inc()
		return nil, fmt.Errorf("%w: query %s: bridge returned status %d", ErrUnavailable, t, resp.StatusCode())
	}
	metrics.BridgeRequestsTotal.WithLabelValues("readings", "ok").Inc()

	readings := make([]models.Reading, 0, len(response.Readings))
	for _, br := range response.Readings {
		readings = append(readings, models.Reading{
			Type:      t,
			Value:     br.Value,
			Timestamp: time.UnixMilli(br.Timestamp),
			Unit:      br.Unit,
			Metadata:  br.Metadata,
		})
	}
	return readings, nil
}

// GetCapabilities reports what the connected device and OS can do.
func (c *BridgeClient) GetCapabilities(ctx context.Context) (models.Capabilities, error) {
	var caps models.Capabilities
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&caps).
		ForceContentType("application/json").
		Get("/capabilities")
	if err != nil {
		metrics.BridgeRequestsTotal.WithLabelValues("capabilities", "error").Inc()
		return models.Capabilities{}, fmt.Errorf("%w: capabilities: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		metrics.BridgeRequestsTotal.WithLabelValues("capabilities", "error").Inc()
		return models.Capabilities{}, fmt.Errorf("%w: capabilities: bridge returned status %d", ErrUnavailable, resp.StatusCode())
	}
	metrics.BridgeRequestsTotal.WithLabelValues("capabilities", "ok").Inc()
	return caps, nil
}

// GetAvailableDataTypes lists the reading types the platform can serve.
func (c *BridgeClient) GetAvailableDataTypes(ctx context.Context) ([]models.ReadingType, error) {
	var response bridgeTypesResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		ForceContentType("application/json").
		Get("/types")
	if err != nil {
		return nil, fmt.Errorf("%w: types: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: types: bridge returned status %d", ErrUnavailable, resp.StatusCode())
	}

	var types []models.ReadingType
	for _, s := range response.Types {
		if t, ok := models.ParseReadingType(s); ok {
			types = append(types, t)
		}
	}
	return types, nil
}

// Write-back events. All writes are best-effort: false on any failure, no
// retry, no local queuing.

// WriteMenstrualFlow records a flow level (0-3 ordinal) for a date.
func (c *BridgeClient) WriteMenstrualFlow(ctx context.Context, date time.Time, level int) bool {
	return c.write(ctx, "menstrual_flow", map[string]any{
		"date":  date.UnixMilli(),
		"level": level,
	})
}

// WriteSymptoms records a free-text symptom list for a date.
func (c *BridgeClient) WriteSymptoms(ctx context.Context, date time.Time, symptoms []string) bool {
	return c.write(ctx, "symptoms", map[string]any{
		"date":     date.UnixMilli(),
		"symptoms": symptoms,
	})
}

// WriteBasalBodyTemperature records a basal body temperature in °F.
func (c *BridgeClient) WriteBasalBodyTemperature(ctx context.Context, date time.Time, tempF float64) bool {
	return c.write(ctx, "basal_body_temperature", map[string]any{
		"date":        date.UnixMilli(),
		"temperature": tempF,
	})
}

// WriteCervicalMucus records a cervical mucus quality observation.
func (c *BridgeClient) WriteCervicalMucus(ctx context.Context, date time.Time, quality string) bool {
	return c.write(ctx, "cervical_mucus", map[string]any{
		"date":    date.UnixMilli(),
		"quality": quality,
	})
}

// WriteOvulationTest records an ovulation test result.
func (c *BridgeClient) WriteOvulationTest(ctx context.Context, date time.Time, positive bool) bool {
	return c.write(ctx, "ovulation_test", map[string]any{
		"date":     date.UnixMilli(),
		"positive": positive,
	})
}

func (c *BridgeClient) write(ctx context.Context, event string, payload map[string]any) bool {
	var response bridgeWriteResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&response).
		ForceContentType("application/json").
		Post("/write/" + event)
	if err != nil {
		metrics.BridgeRequestsTotal.WithLabelValues("write", "error").Inc()
		c.logger.Warn("Write-back failed",
			zap.String("event", event),
			zap.Error(err),
		)
		return false
	}
	if resp.IsError() {
		metrics.BridgeRequestsTotal.WithLabelValues("write", "error").Inc()
		c.logger.Warn("Write-back rejected by bridge",
			zap.String("event", event),
			zap.Int("status_code", resp.StatusCode()),
		)
		return false
	}
	metrics.BridgeRequestsTotal.WithLabelValues("write", "ok").Inc()
	return response.OK
}

func typeStrings(types []models.ReadingType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
