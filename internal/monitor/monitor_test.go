package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wheelx-dev/wheelx/internal/api"
)

// fakeSource returns fixed rides, optionally waiting for release or cancellation first.
type fakeSource struct {
	rides   []api.ActiveRide
	release chan struct{}
	calls   atomic.Int32
	country atomic.Value
}

func (f *fakeSource) ActiveRides(ctx context.Context, country string) []api.ActiveRide {
	f.calls.Add(1)
	f.country.Store(country)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	return f.rides
}

func TestMonitor_PublishesOnStartAndSchedule(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{rides: []api.ActiveRide{{Code: "RIDE42", Status: "active"}}}
	results := make(chan []api.ActiveRide, 16)

	m := New(src, func(r []api.ActiveRide) {
		select {
		case results <- r:
		default:
		}
	}, WithSchedule("@every 1s"), WithCountry("SN"))
	require.NoError(t, m.Start())
	defer m.Stop()

	select {
	case got := <-results:
		require.Len(t, got, 1)
		assert.Equal(t, "RIDE42", got[0].Code)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate poll on start")
	}

	select {
	case <-results:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a scheduled poll")
	}

	assert.Equal(t, "SN", src.country.Load())
}

// TestMonitor_DropsResultsAfterStop ensures a response that lands after
// teardown is never published.
func TestMonitor_DropsResultsAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{
		rides:   []api.ActiveRide{{Code: "LATE"}},
		release: make(chan struct{}),
	}
	var published atomic.Int32
	m := New(src, func([]api.ActiveRide) { published.Add(1) }, WithSchedule("@every 1h"))
	require.NoError(t, m.Start())

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.Stop()
	close(src.release)

	assert.Zero(t, published.Load())
}

func TestMonitor_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(&fakeSource{}, func([]api.ActiveRide) {}, WithSchedule("@every 1h"))
	require.NoError(t, m.Start())
	assert.Error(t, m.Start())

	m.Stop()
	m.Stop()
}

func TestMonitor_InvalidSchedule(t *testing.T) {
	m := New(&fakeSource{}, func([]api.ActiveRide) {}, WithSchedule("every now and then"))
	err := m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule")

	// never started, nothing to stop
	m.Stop()
}
