// Package lockdown models the platform kiosk capability consumed while a
// supervised session runs. The actual enforcement is platform-specific and
// lives outside this codebase; session preparation only drives this contract.
package lockdown

import "go.uber.org/zap"

// Capability is the three-operation contract of a device lockdown session.
type Capability interface {
	// Start engages lockdown before the exam becomes interactive.
	Start() error
	// End releases lockdown after a normal submission.
	End() error
	// ForceEnd releases lockdown unconditionally, for resets and crashes.
	ForceEnd()
}

// Noop satisfies Capability on platforms without kiosk support.
type Noop struct {
	log *zap.Logger
}

// NewNoop returns a lockdown stand-in that only logs.
func NewNoop(log *zap.Logger) *Noop { return &Noop{log: log} }

func (n *Noop) Start() error {
	n.log.Debug("lockdown start requested, no platform support")
	return nil
}

func (n *Noop) End() error {
	n.log.Debug("lockdown end requested, no platform support")
	return nil
}

func (n *Noop) ForceEnd() {
	n.log.Debug("lockdown force-end requested, no platform support")
}

// Compile-time assertion that Noop implements Capability.
var _ Capability = (*Noop)(nil)
