package exam

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"examseal/internal/domain"
)

// Driver polls a machine on a fixed interval and forces submission when the
// countdown runs out. Expiry is the one case where submission is
// system-initiated rather than user-initiated; the student cannot skip it.
type Driver struct {
	machine  *Machine
	interval time.Duration
	clk      clock.Clock
	log      *zap.Logger
	onExpire func(context.Context) error // the same path as a manual submit
}

// NewDriver wires a countdown driver. onExpire runs at most once, on the
// driver's goroutine; callers that share the machine with an interactive flow
// serialize inside onExpire.
func NewDriver(m *Machine, interval time.Duration, clk clock.Clock, log *zap.Logger, onExpire func(context.Context) error) *Driver {
	return &Driver{machine: m, interval: interval, clk: clk, log: log, onExpire: onExpire}
}

// Run blocks until ctx is cancelled, the session leaves InProgress, or the
// session expires and the forced submission completes.
func (d *Driver) Run(ctx context.Context) error {
	ticker := d.clk.Ticker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			session := d.machine.Session()
			if session.Status == domain.StatusSubmitted || session.Status == domain.StatusSubmissionPending {
				return nil
			}
			if !session.IsExpired(d.clk.Now()) {
				continue
			}
			d.log.Info("session clock expired, forcing submission",
				zap.String("session_id", session.ID),
				zap.String("exam_id", session.ExamID))
			return d.onExpire(ctx)
		}
	}
}
