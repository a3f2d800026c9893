package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"examseal/internal/backend"
	"examseal/internal/domain"
	"examseal/internal/keystore"
	"examseal/internal/lockdown"
	"examseal/internal/netstatus"
	"examseal/internal/retry"
	sealersvc "examseal/internal/services/sealer"
	submitsvc "examseal/internal/services/submit"
	"examseal/internal/store"
)

// Wire bundles the stores, services, and clients for the CLI.
type Wire struct {
	Cfg      Config
	Sealer   domain.Sealer
	Local    *store.Local
	Backend  *backend.Client // nil when no backend is configured
	Network  domain.NetworkStatusProvider
	Monitor  *netstatus.Monitor // nil when no backend is configured
	Submit   *submitsvc.Service
	Lockdown lockdown.Capability
	Clock    clock.Clock
	Log      *zap.Logger
}

// NewWire validates cfg and constructs the dependency graph.
func NewWire(cfg Config) (*Wire, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		var err error
		if log, err = zap.NewProduction(); err != nil {
			return nil, err
		}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	var keys domain.KeyStore
	if cfg.KeyBackend == KeyBackendFile {
		keys = keystore.NewFile(filepath.Join(cfg.Home, "keys"), cfg.Passphrase)
	} else {
		keys = keystore.NewKeyring()
	}
	sealer := sealersvc.New(keys, cfg.KeyService, cfg.KeyAccount, clk)

	local, err := store.Open(filepath.Join(cfg.Home, "examseal.db"))
	if err != nil {
		return nil, err
	}

	// Without a backend the client runs offline-only: every submission parks
	// as pending until a backend is configured and flushed.
	var (
		remote  *backend.Client
		monitor *netstatus.Monitor
		network domain.NetworkStatusProvider = netstatus.Fixed(domain.NetworkDisconnected)
	)
	var answers domain.AnswerStore
	var sessions domain.SessionStore
	if cfg.BackendURL != "" {
		remote = backend.New(cfg.BackendURL, cfg.HTTP)
		monitor = netstatus.New(remote, cfg.PingInterval, clk, log)
		network = monitor
		answers = remote
		sessions = remote
	}

	submit := submitsvc.New(sealer, answers, local, sessions, network, clk, retry.Submission(), log)

	return &Wire{
		Cfg:      cfg,
		Sealer:   sealer,
		Local:    local,
		Backend:  remote,
		Network:  network,
		Monitor:  monitor,
		Submit:   submit,
		Lockdown: lockdown.NewNoop(log),
		Clock:    clk,
		Log:      log,
	}, nil
}

// Close releases resources held by the wire.
func (w *Wire) Close() error {
	_ = w.Log.Sync()
	return w.Local.Close()
}
