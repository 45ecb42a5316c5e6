package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/metrics"
	"github.com/ronospace/Flow-Ai-sub006/internal/models"
	"github.com/ronospace/Flow-Ai-sub006/internal/source"
)

// ErrAlreadyMonitoring is returned by Start when the monitor is running.
var ErrAlreadyMonitoring = errors.New("monitor already running")

// State of the monitor lifecycle.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateMonitoring
)

// Event is one item on the realtime stream: either a reading or an error
// surfaced by the push channel. Errors are events here, never panics or
// returns that could terminate a subscriber.
type Event struct {
	Reading *models.Reading
	Err     error
}

// RangeQuerier is the slice of the aggregator the poll cycle needs.
type RangeQuerier interface {
	QueryRange(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error)
}

const subscriberBuffer = 16

// Monitor owns the realtime streaming lifecycle: a periodic poll of the most
// recent window per requested type plus a push-callback bridge, both feeding
// one broadcast channel, both torn down by a single Stop.
type Monitor struct {
	querier RangeQuerier
	push    source.PushSource // nil when the platform has no realtime path
	mirror  *Mirror           // nil when no redis mirror is configured
	logger  *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	subs    map[int]chan Event
	nextSub int

	published atomic.Uint64
	dropped   atomic.Uint64
	errEvents atomic.Uint64
}

// New creates a stopped monitor. push and mirror may be nil.
func New(querier RangeQuerier, push source.PushSource, mirror *Mirror, logger *zap.Logger) *Monitor {
	return &Monitor{
		querier: querier,
		push:    push,
		mirror:  mirror,
		logger:  logger,
		subs:    make(map[int]chan Event),
	}
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a consumer of the realtime stream. The returned cancel
// function detaches it. Slow subscribers drop events rather than block the
// producers.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, subscriberBuffer)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Start begins monitoring the given types: a ticker re-queries the most
// recent interval-sized window per type and republishes the newest sample,
// and the push listener (when available) republishes live samples
// immediately, bypassing the poll cadence.
func (m *Monitor) Start(ctx context.Context, types []models.ReadingType, interval time.Duration) error {
	m.mu.Lock()
	if m.state != StateStopped {
		m.mu.Unlock()
		return ErrAlreadyMonitoring
	}
	m.state = StateStarting

	pollCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	if m.push != nil {
		err := m.push.Subscribe(
			func(r models.Reading) {
				m.publish(Event{Reading: &r})
				m.mirrorReading(pollCtx, r)
			},
			func(err error) {
				m.publish(Event{Err: err})
			},
		)
		if err != nil {
			// Push is an enhancement over polling; keep going without it.
			m.logger.Warn("Push subscription failed, polling only", zap.Error(err))
		}
	}

	go m.pollLoop(pollCtx, done, types, interval)

	m.mu.Lock()
	if m.state != StateStarting {
		// A concurrent Stop won the race while we were subscribing. The
		// cancelled context tears the poll goroutine down; unwind the push
		// subscription in case it attached after Stop's detach.
		m.mu.Unlock()
		if m.push != nil {
			if err := m.push.Unsubscribe(); err != nil {
				m.logger.Warn("Push unsubscribe failed", zap.Error(err))
			}
		}
		m.logger.Info("Realtime monitor stopped during startup")
		return nil
	}
	m.state = StateMonitoring
	m.mu.Unlock()

	m.logger.Info("Realtime monitor started",
		zap.Int("types", len(types)),
		zap.Duration("interval", interval),
	)
	return nil
}

func (m *Monitor) pollLoop(ctx context.Context, done chan struct{}, types []models.ReadingType, interval time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.PollTicksTotal.Inc()
			m.pollOnce(ctx, types, interval)
			ticks++
			if ticks%10 == 0 {
				m.reportStats(ticks)
			}
		}
	}
}

func (m *Monitor) reportStats(ticks int) {
	m.logger.Info("Monitor stats",
		zap.Int("poll_ticks", ticks),
		zap.Uint64("events_published", m.published.Load()),
		zap.Uint64("events_dropped", m.dropped.Load()),
		zap.Uint64("error_events", m.errEvents.Load()),
	)
}

func (m *Monitor) pollOnce(ctx context.Context, types []models.ReadingType, interval time.Duration) {
	end := time.Now()
	start := end.Add(-interval)

	for _, t := range types {
		readings, err := m.querier.QueryRange(ctx, t, start, end)
		if err != nil {
			m.logger.Warn("Poll query failed",
				zap.String("type", string(t)),
				zap.Error(err),
			)
			continue
		}
		if len(readings) == 0 {
			continue
		}

		newest := readings[0]
		for _, r := range readings[1:] {
			if r.Timestamp.After(newest.Timestamp) {
				newest = r
			}
		}

		m.publish(Event{Reading: &newest})
		m.mirrorReading(ctx, newest)
	}
}

// publish fans an event out to all subscribers. Publications are gated on the
// Monitoring state under the same lock Stop takes, so once Stop has returned
// nothing further is delivered; late in-flight callbacks are dropped
// silently.
func (m *Monitor) publish(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateMonitoring {
		return
	}
	m.published.Add(1)
	if ev.Err != nil {
		m.errEvents.Add(1)
	}
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.dropped.Add(1)
			metrics.EventsDroppedTotal.Inc()
		}
	}
}

func (m *Monitor) mirrorReading(ctx context.Context, r models.Reading) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.Publish(ctx, r); err != nil {
		m.logger.Warn("Failed to mirror reading",
			zap.String("type", string(r.Type)),
			zap.Error(err),
		)
	}
}

// Stop cancels the poll task and detaches the push listener. Idempotent:
// stopping a stopped monitor is a no-op. After Stop returns, no further
// events are published.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	m.state = StateStopped
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if m.push != nil {
		if err := m.push.Unsubscribe(); err != nil {
			m.logger.Warn("Push unsubscribe failed", zap.Error(err))
		}
	}
	if done != nil {
		<-done
	}

	m.logger.Info("Realtime monitor stopped")
}
