package expire

import (
	"context"
	"sync"
	"time"

	"github.com/eternalApril/moondb/internal/config"
	"github.com/eternalApril/moondb/internal/storage"
	"go.uber.org/zap"
)

// Sweeper is the part of the store the manager drives
type Sweeper interface {
	DeleteExpired(limit int) storage.SweepResult
	Mutations() uint64
	Volatile() int
}

// Stats describes one cycle
type Stats struct {
	Skipped bool // no key carried a TTL
	Rounds  int
	Sampled int
	Expired int
}

// Manager runs the active expiration cycle: sampled sweeps on a ticker.
// Lazy expiration on access works independently of it
type Manager struct {
	store  Sweeper
	cfg    config.GCConfig
	logger *zap.Logger

	stepMu        sync.Mutex // serializes Step
	lastMutations uint64

	lifeMu sync.Mutex // protects cancel and done
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped manager
func New(store Sweeper, cfg config.GCConfig, logger *zap.Logger) *Manager {
	return &Manager{
		store:         store,
		cfg:           cfg,
		logger:        logger.Named("expire"),
		lastMutations: store.Mutations(),
	}
}

// Step runs one cycle. Sampling rounds repeat while the expired share of the sample
// stays at or above MatchThreshold. A cycle gets one round, or MaxRounds when at least
// MutationTrigger writes happened since the previous cycle
func (m *Manager) Step() Stats {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	mutations := m.store.Mutations()
	delta := mutations - m.lastMutations
	m.lastMutations = mutations

	if m.store.Volatile() == 0 {
		return Stats{Skipped: true}
	}

	budget := 1
	if delta >= m.cfg.MutationTrigger && m.cfg.MaxRounds > 1 {
		budget = m.cfg.MaxRounds
	}

	var stats Stats
	for stats.Rounds < budget {
		res := m.store.DeleteExpired(m.cfg.SamplesPerCheck)
		stats.Rounds++
		stats.Sampled += res.Sampled
		stats.Expired += res.Expired

		if res.Sampled == 0 || res.Ratio() < m.cfg.MatchThreshold {
			break
		}
	}

	if stats.Expired > 0 && m.logger.Core().Enabled(zap.DebugLevel) {
		m.logger.Debug("GC delete expired",
			zap.Int("rounds", stats.Rounds),
			zap.Int("sampled", stats.Sampled),
			zap.Int("expired", stats.Expired),
		)
	}

	return stats
}

// Start launches the ticker loop. It stops when ctx is cancelled or Stop is called.
// Start only has an effect the first time it is called
func (m *Manager) Start(ctx context.Context) {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.loop(ctx, m.done)
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once
func (m *Manager) Stop() {
	m.lifeMu.Lock()
	cancel, done := m.cancel, m.done
	m.lifeMu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (m *Manager) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.logger.Info("GC started",
		zap.Duration("interval", m.cfg.Interval),
		zap.Int("samples_per_check", m.cfg.SamplesPerCheck),
	)

	for {
		select {
		case <-ticker.C:
			m.Step()
		case <-ctx.Done():
			m.logger.Info("GC stopped")
			return
		}
	}
}
