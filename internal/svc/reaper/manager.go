// If you are AI: This file implements the idle stream reaper.
// A background sweep removes streams whose producer stopped pushing chunks.

package reaper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"trinity/internal/core/bus"
	"trinity/internal/metrics"
)

// Stats describes reaper state for the admin API.
type Stats struct {
	Enabled     bool      `json:"enabled"`
	IdleTimeout string    `json:"idle_timeout"`
	Interval    string    `json:"interval"`
	Reaped      uint64    `json:"reaped"`
	LastSweep   time.Time `json:"last_sweep"`
}

// Manager owns the sweep goroutine.
// Lock expectations: mu guards lifecycle fields; sweeps never hold it while touching the registry.
type Manager struct {
	registry    *bus.Registry
	idleTimeout time.Duration
	interval    time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger

	reaped    atomic.Uint64
	lastSweep atomic.Int64

	// beforeRemove runs between collecting idle candidates and removing them; tests only.
	beforeRemove func(*bus.Stream)

	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// NewManager creates a reaper. An idleTimeout of zero disables it.
func NewManager(registry *bus.Registry, idleTimeout, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry:    registry,
		idleTimeout: idleTimeout,
		interval:    interval,
		metrics:     m,
		logger:      logger.With(zap.String("component", "reaper")),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Enabled reports whether idle streams are removed.
func (m *Manager) Enabled() bool {
	return m.idleTimeout > 0 && m.interval > 0
}

// Start launches the sweep loop. It is a no-op when disabled or already running.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled() || m.running {
		return
	}
	m.running = true

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case now := <-ticker.C:
				m.Sweep(now)
			}
		}
	}()

	m.logger.Info("reaper started",
		zap.Duration("idle_timeout", m.idleTimeout),
		zap.Duration("interval", m.interval),
	)
}

// Stop cancels the loop and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.running = false
}

// Sweep removes every stream whose last write is older than the idle timeout at now.
// Attached sessions are closed. Returns the number of removed streams.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	m.lastSweep.Store(now.UnixNano())

	type candidate struct {
		stream    *bus.Stream
		lastWrite time.Time
	}
	var idle []candidate
	m.registry.Range(func(s *bus.Stream) bool {
		if lw := s.LastWrite(); now.Sub(lw) > m.idleTimeout {
			idle = append(idle, candidate{stream: s, lastWrite: lw})
		}
		return true
	})

	removed := 0
	for _, c := range idle {
		s := c.stream
		if m.beforeRemove != nil {
			m.beforeRemove(s)
		}
		// A chunk written since the scan keeps the stream alive
		if lw := s.LastWrite(); !lw.Equal(c.lastWrite) || now.Sub(lw) <= m.idleTimeout {
			continue
		}
		// The stream may have been replaced since Range copied it
		if !m.registry.RemoveIf(s.ID(), s) {
			continue
		}
		if sess := s.Session(); sess != nil {
			sess.Close()
		}
		removed++
		m.metrics.RecordStreamRemoved("idle")
		m.logger.Info("removed idle stream",
			zap.String("stream", s.ID().String()),
			zap.Time("last_write", s.LastWrite()),
		)
	}

	m.reaped.Add(uint64(removed))
	return removed
}

// Stats returns counters for the admin API.
func (m *Manager) Stats() Stats {
	st := Stats{
		Enabled:     m.Enabled(),
		IdleTimeout: m.idleTimeout.String(),
		Interval:    m.interval.String(),
		Reaped:      m.reaped.Load(),
	}
	if ns := m.lastSweep.Load(); ns != 0 {
		st.LastSweep = time.Unix(0, ns)
	}
	return st
}
