package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Pinger is satisfied by every storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// boltStats is implemented by the Bolt backend.
type boltStats interface {
	Stats() bolt.Stats
}

// Monitor periodically pings the storage medium and caches the result for
// the health endpoint.
type Monitor struct {
	target Pinger
	driver string

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	once     sync.Once
	started  atomic.Bool
	logger   *zap.Logger
}

func New(target Pinger, driver string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		target:   target,
		driver:   driver,
		status:   Status{Driver: driver},
		interval: interval,
		timeout:  3 * time.Second,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	if m.started.CompareAndSwap(false, true) {
		go m.loop()
	}
}

// Stop ends the polling loop and waits for it to exit. Safe to call twice
// or without Start.
func (m *Monitor) Stop() {
	m.once.Do(func() {
		close(m.stopCh)
	})
	if m.started.Load() {
		<-m.doneCh
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh pings the target immediately.
func (m *Monitor) Refresh() Status {
	status := Status{Driver: m.driver, LastCheck: time.Now()}
	if m.target == nil {
		status.Error = "storage not configured"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		err := m.target.Ping(ctx)
		cancel()
		if err != nil {
			status.Error = err.Error()
		} else {
			status.Online = true
		}
		if bs, ok := m.target.(boltStats); ok {
			st := bs.Stats()
			status.Bolt = &BoltCounters{
				OpenTx:       st.OpenTxN,
				ReadTx:       st.TxN,
				FreePages:    st.FreePageN,
				PendingPages: st.PendingPageN,
			}
		}
	}

	m.mu.Lock()
	wasOnline := m.status.Online
	m.status = status
	m.mu.Unlock()

	if wasOnline && !status.Online {
		m.logger.Warn("storage went offline", zap.String("driver", m.driver), zap.String("error", status.Error))
	}
	return status
}

func (m *Monitor) loop() {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}
