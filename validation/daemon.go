// Package validation is the client SDK: a daemon that keeps re-validating a
// license and tells the host application when it becomes valid or invalid.
package validation

import (
	"context"
	"net/http"
	"sync"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-commons/commons/zap"
	cn "github.com/keybox-dev/keybox-go/constant"
	libErr "github.com/keybox-dev/keybox-go/error"
	"github.com/keybox-dev/keybox-go/internal/api"
	"github.com/keybox-dev/keybox-go/internal/config"
	"github.com/keybox-dev/keybox-go/internal/refresh"
	"github.com/keybox-dev/keybox-go/model"
)

// State is the daemon's view of the license.
type State string

const (
	StateUnknown State = "unknown"
	StateValid   State = "valid"
	StateInvalid State = "invalid"
)

// Event is one state transition with the payload that caused it.
type Event struct {
	State   State
	Payload model.ValidationResult
}

// Callback receives the payload of a transition.
type Callback func(model.ValidationResult)

// Options tune a daemon. Every field is optional.
type Options struct {
	// OnValid runs once each time the license becomes valid.
	OnValid Callback
	// OnInvalid runs once each time the license becomes invalid, including
	// when the server cannot be reached.
	OnInvalid Callback
	// Events, when set, receives every transition after the callbacks ran.
	// Sends block until received or the daemon stops.
	Events chan<- Event

	Logger     log.Logger
	HTTPClient *http.Client
}

// Daemon polls the validation endpoint and reports transitions between
// unknown, valid and invalid. Repeated polls in the same state are silent.
type Daemon struct {
	config *config.ClientConfig
	api    *api.Client
	opts   Options
	logger log.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	refresh *refresh.Manager
	cancel  context.CancelFunc
}

// New checks cfg and builds a stopped daemon. It fails before any network call
// when productName or key is missing.
func New(cfg model.Config, opts Options) (*Daemon, error) {
	l := opts.Logger
	if l == nil {
		l = zap.InitializeLogger()
	}

	clientCfg, err := config.FromModel(cfg)
	if err != nil {
		l.Errorf("Invalid license configuration: %s", err.Error())
		return nil, err
	}

	return &Daemon{
		config: clientCfg,
		api:    api.New(clientCfg, opts.HTTPClient, l),
		opts:   opts,
		logger: l,
		state:  StateUnknown,
	}, nil
}

// Start runs one validation synchronously, then schedules one every interval.
// Starting a running daemon replaces its timer and resets its state to unknown.
// Cancelling ctx stops the daemon the same way Stop does.
func (d *Daemon) Start(ctx context.Context) {
	d.mu.Lock()

	if d.refresh != nil {
		d.logger.Warn("License daemon already running, replacing its timer")
		d.stopLocked()
	}

	d.gen++
	gen := d.gen
	d.state = StateUnknown

	sessionCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	mgr := refresh.New("license validation", refresh.TaskFunc(func(ctx context.Context) error {
		d.validateOnce(ctx, gen)
		return nil
	}), d.config.Interval, d.logger)
	d.refresh = mgr

	d.mu.Unlock()

	context.AfterFunc(sessionCtx, func() { d.release(gen) })

	mgr.RunNow(sessionCtx)

	d.mu.Lock()
	defer d.mu.Unlock()

	// a callback of the initial check may have stopped or restarted us
	if d.gen != gen {
		return
	}

	mgr.Start(sessionCtx)
	d.logger.Infof("License daemon started (interval %s)", d.config.Interval)
}

// Stop cancels the timer and resets the state to unknown. It is a no-op when
// nothing is running and may be called from inside a callback. Once Stop
// returns no callback starts and no event is sent; a callback that was already
// running, such as the one calling Stop, runs to completion.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.refresh == nil {
		return
	}

	d.stopLocked()
	d.state = StateUnknown
	d.logger.Info("License daemon stopped")
}

func (d *Daemon) stopLocked() {
	d.gen++
	d.refresh.Shutdown()
	d.refresh = nil
	d.cancel()
	d.cancel = nil
}

// release stops session gen once its context is done. After Stop or a restart
// the generation has moved on and nothing happens.
func (d *Daemon) release(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gen != gen || d.refresh == nil {
		return
	}

	d.stopLocked()
	d.state = StateUnknown
	d.logger.Info("License daemon stopped: context done")
}

// current reports whether gen is still the live session.
func (d *Daemon) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.gen == gen
}

// State returns the last observed state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// Running reports whether the daemon has a live timer.
func (d *Daemon) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.refresh != nil
}

// validateOnce is the single routine behind the initial check and every tick.
// Nothing escapes it: failures become an invalid payload with status "error".
func (d *Daemon) validateOnce(ctx context.Context, gen uint64) {
	d.logger.Infof("Validating license for product %s", d.config.ProductName)

	res, err := d.api.ValidateLicense(ctx)
	if err != nil {
		switch {
		case libErr.IsConnectionError(err):
			d.logger.Errorf("License server unreachable: %v", err)
		case libErr.IsServerError(err):
			d.logger.Errorf("License server failed: %v", err)
		default:
			d.logger.Errorf("License validation error: %v", err)
		}

		res = model.ValidationResult{
			Valid:   false,
			Status:  cn.ResponseStatusError,
			Message: err.Error(),
		}
	}

	current := StateInvalid
	if res.Valid {
		current = StateValid
	}

	d.mu.Lock()

	if d.gen != gen || d.state == current {
		d.mu.Unlock()
		return
	}

	from := d.state
	d.state = current
	d.mu.Unlock()

	d.logger.Infof("License state changed from %s to %s (status %s)", from, current, res.Status)

	d.notify(ctx, gen, current, res)
}

// notify delivers a transition. Each step first checks that the session is
// still live, so nothing starts once Stop has returned.
func (d *Daemon) notify(ctx context.Context, gen uint64, state State, res model.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("License callback panicked: %v", r)
		}
	}()

	callback := d.opts.OnInvalid

	if state == StateValid {
		d.logger.Info("License valid, starting application")

		callback = d.opts.OnValid
	} else {
		d.logger.Errorf("License invalid, stopping application - status: %s, message: %s", res.Status, res.Message)
	}

	if callback != nil && d.current(gen) {
		callback(res)
	}

	if d.opts.Events != nil && d.current(gen) {
		select {
		case d.opts.Events <- Event{State: state, Payload: res}:
		case <-ctx.Done():
		}
	}
}

// Start builds a daemon for cfg and starts it.
func Start(ctx context.Context, cfg model.Config, opts Options) (*Daemon, error) {
	d, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}

	d.Start(ctx)

	return d, nil
}
