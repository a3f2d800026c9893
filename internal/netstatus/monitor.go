// Package netstatus tracks backend reachability.
//
// The orchestrator consults it only to decide whether to attempt remote
// persistence eagerly; a wrong answer costs a wasted retry cycle, never a lost
// answer.
package netstatus

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"examseal/internal/domain"
)

// Pinger reports whether the backend answers a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the backend on a fixed interval and republishes connectivity
// changes. Status starts as Unknown until the first probe completes.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	clk      clock.Clock
	log      *zap.Logger

	mu     sync.Mutex
	status domain.NetworkStatus
	subs   []chan domain.NetworkStatus
}

// New returns a monitor probing pinger every interval.
func New(pinger Pinger, interval time.Duration, clk clock.Clock, log *zap.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		timeout:  interval,
		clk:      clk,
		log:      log,
		status:   domain.NetworkUnknown,
	}
}

// Status returns the last probed reachability.
func (m *Monitor) Status() domain.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Subscribe returns a channel receiving future status changes. Sends never
// block the monitor; a slow consumer misses intermediate values.
func (m *Monitor) Subscribe() <-chan domain.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan domain.NetworkStatus, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := m.clk.Ticker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check performs a single probe and records the result.
func (m *Monitor) Check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.pinger.Ping(probeCtx); err != nil {
		m.set(domain.NetworkDisconnected)
		return
	}
	m.set(domain.NetworkConnected)
}

func (m *Monitor) set(status domain.NetworkStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == m.status {
		return
	}
	m.log.Info("network status changed",
		zap.String("from", string(m.status)),
		zap.String("to", string(status)))
	m.status = status
	for _, ch := range m.subs {
		select {
		case ch <- status:
		default:
		}
	}
}

// Fixed always reports the same status. Used when no backend is configured
// and in tests.
type Fixed domain.NetworkStatus

func (f Fixed) Status() domain.NetworkStatus { return domain.NetworkStatus(f) }

func (f Fixed) Subscribe() <-chan domain.NetworkStatus {
	return make(chan domain.NetworkStatus)
}

// Compile-time assertions against the provider contract.
var (
	_ domain.NetworkStatusProvider = (*Monitor)(nil)
	_ domain.NetworkStatusProvider = Fixed("")
)
