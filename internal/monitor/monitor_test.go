package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// fakeQuerier serves a fixed pair of readings per poll.
type fakeQuerier struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeQuerier) QueryRange(_ context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return []models.Reading{
		{Type: t, Value: 70, Timestamp: start, Unit: "bpm"},
		{Type: t, Value: 75, Timestamp: end.Add(-time.Millisecond), Unit: "bpm"},
	}, nil
}

// fakePush captures the handlers so tests can inject push traffic.
type fakePush struct {
	mu           sync.Mutex
	onReading    func(models.Reading)
	onError      func(error)
	unsubscribed bool
}

func (f *fakePush) Subscribe(onReading func(models.Reading), onError func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onReading = onReading
	f.onError = onError
	return nil
}

func (f *fakePush) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = true
	return nil
}

func (f *fakePush) pushReading(r models.Reading) {
	f.mu.Lock()
	handler := f.onReading
	f.mu.Unlock()
	if handler != nil {
		handler(r)
	}
}

func (f *fakePush) pushError(err error) {
	f.mu.Lock()
	handler := f.onError
	f.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMonitor_PollPublishesNewestSample(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())
	defer m.Stop()

	events, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, 20*time.Millisecond))
	assert.Equal(t, StateMonitoring, m.State())

	ev := waitForEvent(t, events)
	require.NotNil(t, ev.Reading)
	require.NoError(t, ev.Err)
	// the newest of the two polled samples wins
	assert.Equal(t, 75.0, ev.Reading.Value)
	assert.Equal(t, models.TypeHeartRate, ev.Reading.Type)
}

func TestMonitor_PushBypassesPollCadence(t *testing.T) {
	push := &fakePush{}
	// long poll interval so only push traffic arrives
	m := New(&fakeQuerier{}, push, nil, zap.NewNop())
	defer m.Stop()

	events, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))

	live := models.Reading{Type: models.TypeHeartRate, Value: 91, Timestamp: time.Now(), Unit: "bpm"}
	push.pushReading(live)

	ev := waitForEvent(t, events)
	require.NotNil(t, ev.Reading)
	assert.Equal(t, 91.0, ev.Reading.Value)
}

func TestMonitor_PushErrorsArriveAsEvents(t *testing.T) {
	push := &fakePush{}
	m := New(&fakeQuerier{}, push, nil, zap.NewNop())
	defer m.Stop()

	events, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))

	push.pushError(assert.AnError)

	ev := waitForEvent(t, events)
	assert.Nil(t, ev.Reading)
	assert.Error(t, ev.Err)
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))

	m.Stop()
	assert.Equal(t, StateStopped, m.State())

	// second stop is a no-op, not an error or panic
	m.Stop()
	assert.Equal(t, StateStopped, m.State())
}

func TestMonitor_StopOnStoppedMonitorIsNoOp(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())
	m.Stop()
	assert.Equal(t, StateStopped, m.State())
}

func TestMonitor_NoPublicationsAfterStop(t *testing.T) {
	push := &fakePush{}
	m := New(&fakeQuerier{}, push, nil, zap.NewNop())

	events, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))
	m.Stop()
	assert.True(t, push.unsubscribed)

	// a late in-flight platform callback is dropped silently
	push.pushReading(models.Reading{Type: models.TypeHeartRate, Value: 99, Timestamp: time.Now()})

	select {
	case ev, ok := <-events:
		if ok {
			t.Fatalf("unexpected event after stop: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMonitor_StartWhileRunningFails(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())
	defer m.Stop()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))

	err := m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour)
	assert.ErrorIs(t, err, ErrAlreadyMonitoring)
}

func TestMonitor_RestartAfterStop(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, 20*time.Millisecond))
	m.Stop()

	events, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, 20*time.Millisecond))
	defer m.Stop()

	ev := waitForEvent(t, events)
	assert.NotNil(t, ev.Reading)
}

// gatedPush blocks inside Subscribe until released, to hold the monitor in
// the Starting state.
type gatedPush struct {
	fakePush
	gate chan struct{}
}

func (g *gatedPush) Subscribe(onReading func(models.Reading), onError func(error)) error {
	<-g.gate
	return g.fakePush.Subscribe(onReading, onError)
}

func TestMonitor_StopDuringStartupLeavesMonitorStopped(t *testing.T) {
	push := &gatedPush{gate: make(chan struct{})}
	m := New(&fakeQuerier{}, push, nil, zap.NewNop())

	events, cancel := m.Subscribe()
	defer cancel()

	startDone := make(chan error, 1)
	go func() {
		startDone <- m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour)
	}()

	require.Eventually(t, func() bool {
		return m.State() == StateStarting
	}, 2*time.Second, time.Millisecond)

	stopDone := make(chan struct{})
	go func() {
		m.Stop()
		close(stopDone)
	}()

	close(push.gate)

	require.NoError(t, <-startDone)
	select {
	case <-stopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stop")
	}

	assert.Equal(t, StateStopped, m.State())

	// the losing startup must not leak publications
	push.pushReading(models.Reading{Type: models.TypeHeartRate, Value: 99, Timestamp: time.Now()})
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after stop won startup race: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	// and the monitor must be restartable
	require.NoError(t, m.Start(context.Background(), []models.ReadingType{models.TypeHeartRate}, time.Hour))
	assert.Equal(t, StateMonitoring, m.State())
	m.Stop()
}

func TestMonitor_SubscribeCancelDetaches(t *testing.T) {
	m := New(&fakeQuerier{}, nil, nil, zap.NewNop())
	defer m.Stop()

	events, cancel := m.Subscribe()
	cancel()

	// channel is closed on cancel
	_, ok := <-events
	assert.False(t, ok)

	// cancelling twice is safe
	cancel()
}
