package netstatus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"examseal/internal/domain"
	"examseal/internal/netstatus"
)

// togglePinger fails or succeeds on demand.
type togglePinger struct{ down bool }

func (p *togglePinger) Ping(context.Context) error {
	if p.down {
		return errors.New("unreachable")
	}
	return nil
}

func TestMonitor_StartsUnknown(t *testing.T) {
	m := netstatus.New(&togglePinger{}, time.Second, clock.NewMock(), zap.NewNop())
	if got := m.Status(); got != domain.NetworkUnknown {
		t.Fatalf("initial status = %v, want unknown", got)
	}
}

func TestMonitor_TracksProbeResults(t *testing.T) {
	pinger := &togglePinger{down: false}
	m := netstatus.New(pinger, time.Second, clock.NewMock(), zap.NewNop())

	m.Check(context.Background())
	if got := m.Status(); got != domain.NetworkConnected {
		t.Fatalf("status after good probe = %v, want connected", got)
	}

	pinger.down = true
	m.Check(context.Background())
	if got := m.Status(); got != domain.NetworkDisconnected {
		t.Fatalf("status after failed probe = %v, want disconnected", got)
	}
}

func TestMonitor_SubscribersSeeChanges(t *testing.T) {
	pinger := &togglePinger{down: false}
	m := netstatus.New(pinger, time.Second, clock.NewMock(), zap.NewNop())
	ch := m.Subscribe()

	m.Check(context.Background())
	select {
	case got := <-ch:
		if got != domain.NetworkConnected {
			t.Fatalf("subscriber got %v, want connected", got)
		}
	default:
		t.Fatal("no change delivered to subscriber")
	}

	// A repeated identical probe is not a change.
	m.Check(context.Background())
	select {
	case got := <-ch:
		t.Fatalf("unexpected duplicate notification: %v", got)
	default:
	}

	pinger.down = true
	m.Check(context.Background())
	select {
	case got := <-ch:
		if got != domain.NetworkDisconnected {
			t.Fatalf("subscriber got %v, want disconnected", got)
		}
	default:
		t.Fatal("disconnect not delivered to subscriber")
	}
}

func TestFixed_AlwaysSameStatus(t *testing.T) {
	var p domain.NetworkStatusProvider = netstatus.Fixed(domain.NetworkDisconnected)
	if got := p.Status(); got != domain.NetworkDisconnected {
		t.Fatalf("Fixed status = %v", got)
	}
}
