package middleware

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-commons/commons/zap"
	keybox "github.com/keybox-dev/keybox-go"
	"github.com/keybox-dev/keybox-go/internal/shutdown"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/util"
	"github.com/keybox-dev/keybox-go/validation"
)

// Guard gates an application's HTTP and gRPC entry points on a license daemon.
// Requests are rejected until the daemon has seen a valid license, and again
// whenever it sees the license become invalid.
type Guard struct {
	daemon   *validation.Daemon
	shutdown *shutdown.Manager
	logger   log.Logger

	valid atomic.Bool

	mu   sync.RWMutex
	last model.ValidationResult

	// starting keeps the daemon to a single start even when both the HTTP
	// middleware and the gRPC interceptors are used
	startMu  sync.Mutex
	starting bool
}

// NewGuard builds a guard for cfg. Callbacks in opts still run, after the
// guard has updated its own state.
func NewGuard(cfg model.Config, opts validation.Options) (*Guard, error) {
	if opts.Logger == nil {
		opts.Logger = zap.InitializeLogger()
	}

	g := &Guard{
		shutdown: shutdown.New(),
		logger:   opts.Logger,
	}

	onValid, onInvalid := opts.OnValid, opts.OnInvalid

	opts.OnValid = func(res model.ValidationResult) {
		g.record(res)

		if onValid != nil {
			onValid(res)
		}
	}

	opts.OnInvalid = func(res model.ValidationResult) {
		g.record(res)
		g.shutdown.Terminate(fmt.Sprintf("%s: %s", res.Status, res.Message))

		if onInvalid != nil {
			onInvalid(res)
		}
	}

	d, err := validation.New(cfg, opts)
	if err != nil {
		return nil, err
	}

	g.daemon = d

	return g, nil
}

// NewGuardFromEnv reads the KEYBOX_* environment variables and builds a guard.
func NewGuardFromEnv(opts validation.Options) (*Guard, error) {
	if opts.Logger == nil {
		opts.Logger = zap.InitializeLogger()
	}

	cfg := keybox.LoadFromEnv()

	if err := util.ValidateEnvVariables(&cfg, opts.Logger); err != nil {
		return nil, err
	}

	return NewGuard(cfg, opts)
}

func (g *Guard) record(res model.ValidationResult) {
	g.mu.Lock()
	g.last = res
	g.mu.Unlock()

	g.valid.Store(res.Valid)
}

// Start runs the initial validation and starts polling. Calls made while the
// guard is running are no-ops; after Shutdown, or once the ctx of the previous
// Start is done, Start brings it back.
func (g *Guard) Start(ctx context.Context) {
	g.startMu.Lock()

	if g.starting || g.daemon.Running() {
		g.startMu.Unlock()
		return
	}

	g.starting = true
	g.startMu.Unlock()

	g.daemon.Start(ctx)

	g.startMu.Lock()
	g.starting = false
	g.startMu.Unlock()
}

// Shutdown stops polling. The guard rejects requests until it is started again.
func (g *Guard) Shutdown() {
	g.daemon.Stop()
	g.valid.Store(false)
}

// SetTerminationHandler installs the hook called each time the license becomes invalid
func (g *Guard) SetTerminationHandler(handler func(reason string)) {
	g.shutdown.SetHandler(handler)
}

// Valid reports whether requests are currently let through.
func (g *Guard) Valid() bool {
	return g.valid.Load()
}

// LastResult returns the payload of the latest transition.
func (g *Guard) LastResult() model.ValidationResult {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.last
}
