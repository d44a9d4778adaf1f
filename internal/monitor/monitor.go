// Package monitor polls the live rides on a schedule.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/wheelx-dev/wheelx/internal/api"
)

// DefaultSchedule matches the refresh rate of the back-office screen.
const DefaultSchedule = "@every 15s"

// Source returns the rides currently in progress.
type Source interface {
	ActiveRides(ctx context.Context, country string) []api.ActiveRide
}

// Monitor polls a Source and hands each result to a publish function.
// Results that arrive after Stop are dropped. publish runs with the
// monitor locked and must not call Stop.
type Monitor struct {
	source   Source
	publish  func([]api.ActiveRide)
	schedule string
	country  string
	timeout  time.Duration
	logger   zerolog.Logger

	scheduler *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu    sync.Mutex
	alive bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSchedule sets the cron spec, e.g. "@every 30s".
func WithSchedule(spec string) Option {
	return func(m *Monitor) {
		m.schedule = spec
	}
}

// WithCountry restricts polling to one country.
func WithCountry(code string) Option {
	return func(m *Monitor) {
		m.country = code
	}
}

// WithLogger sets the logger for ticks and the scheduler.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Monitor) {
		m.logger = l
	}
}

// New creates a stopped monitor.
func New(source Source, publish func([]api.ActiveRide), opts ...Option) *Monitor {
	m := &Monitor{
		source:   source,
		publish:  publish,
		schedule: DefaultSchedule,
		timeout:  30 * time.Second,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.scheduler = cron.New(
		cron.WithLogger(cronLogger{m.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{m.logger})),
	)
	return m
}

// Start polls once right away and then on every scheduled tick.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.alive {
		return fmt.Errorf("monitor already started")
	}

	if _, err := m.scheduler.AddFunc(m.schedule, m.tick); err != nil {
		return fmt.Errorf("failed to schedule active ride polling %q: %w", m.schedule, err)
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.alive = true
	m.scheduler.Start()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.tick()
	}()

	m.logger.Info().Str("schedule", m.schedule).Str("country", m.country).Msg("Active ride monitor started")
	return nil
}

// Stop cancels the schedule and any request in flight. Once Stop returns,
// publish is never called again.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.alive {
		m.mu.Unlock()
		return
	}
	m.alive = false
	m.cancel()
	m.mu.Unlock()

	stopCtx := m.scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		m.logger.Warn().Msg("Active ride monitor stop timed out")
	}
	m.wg.Wait()

	m.logger.Info().Msg("Active ride monitor stopped")
}

func (m *Monitor) tick() {
	m.mu.Lock()
	if !m.alive {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	m.mu.Unlock()
	defer cancel()

	rides := m.source.ActiveRides(ctx, m.country)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alive {
		m.logger.Debug().Int("rides", len(rides)).Msg("Dropping result that arrived after stop")
		return
	}
	m.publish(rides)
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	zl zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.zl.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
