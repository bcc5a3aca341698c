// Package runner drives a single apply pass of a bundle against a live
// platform, threading the per-resource watch/trigger state machine and
// the durable EventState a crash can resume from.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuselage-sh/fuselage/asset"
	"github.com/fuselage-sh/fuselage/bundle"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/eventstate"
	"github.com/fuselage-sh/fuselage/log"
	"github.com/fuselage-sh/fuselage/notify"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/resource"
	"github.com/fuselage-sh/fuselage/runctx"
	"github.com/fuselage-sh/fuselage/types"
)

// Options configures a Runner, mirroring spec's
// `new(bundle, resume, no_resume, no_changes_ok, simulate, verbosity, state_path)`.
type Options struct {
	Resume      bool
	NoResume    bool
	NoChangesOK bool
	Simulate    bool
	Verbosity   int // base verbosity before -v/-q adjustment; spec's INFO - 10*(v-q)
	StatePath   string
	// Assets resolves bundle:// source references during apply. Nil if
	// the bundle carries none.
	Assets asset.Store
	// Notifier, when set, publishes a RunCompleted event once Run
	// finishes, successfully or not. Notification failures are logged
	// and swallowed: a downstream outage must never fail an apply.
	Notifier notify.Notifier
}

// Runner applies a bundle sequentially against plat, persisting
// subscription trigger state via eventstate.EventState so a failed or
// interrupted run can resume.
type Runner struct {
	bundle *bundle.Bundle
	plat   platform.Platform
	opts   Options

	logger *log.Logger
	ctx    runctx.Context
	state  *eventstate.EventState

	changed int
}

// New constructs a Runner. Resume and NoResume are mutually exclusive;
// violating that is a ParseError, per spec §4.H.
func New(b *bundle.Bundle, plat platform.Platform, opts Options) (*Runner, error) {
	if opts.Resume && opts.NoResume {
		return nil, fuserrors.New(fuserrors.KindParse, "", "--resume and --no-resume are mutually exclusive")
	}
	if opts.StatePath == "" {
		opts.StatePath = "/var/run/fuselage"
	}
	return &Runner{bundle: b, plat: plat, opts: opts}, nil
}

// Context implements bundle.Runner.
func (r *Runner) Context() runctx.Context { return r.ctx }

// NoChangesOK implements bundle.Runner.
func (r *Runner) NoChangesOK() bool { return r.opts.NoChangesOK }

// Run configures logging, opens (or resumes) the event state, applies
// the bundle, and marks the run successful once it completes in full.
func (r *Runner) Run() error {
	runID := uuid.NewString()
	r.logger = log.New(log.Meta{BundleID: r.bundle.ID(), RunID: runID})
	r.ctx = runctx.Context{Platform: r.plat, Simulate: r.opts.Simulate, Logger: r.logger, Assets: r.opts.Assets}

	started := time.Now()

	state, err := eventstate.Open(r.plat, r.opts.StatePath, r.opts.Resume, r.opts.NoResume, r.opts.Simulate)
	if err != nil {
		return err
	}
	r.state = state

	err = r.bundle.Apply(r)
	if err != nil {
		if fuserrors.IsKind(err, fuserrors.KindNothingChanged) && r.opts.NoChangesOK {
			err = nil
		}
	}
	if err == nil {
		err = r.state.Success()
	}

	r.notify(runID, started, r.changed == 0, err)
	return err
}

// notify publishes a RunCompleted event, if a Notifier is configured.
// A publish failure is logged and never returned to the caller: a
// downstream outage must never turn a successful apply into a failed one.
func (r *Runner) notify(runID string, started time.Time, nothingChanged bool, runErr error) {
	if r.opts.Notifier == nil {
		return
	}

	outcome := "success"
	errMsg := ""
	switch {
	case runErr != nil:
		outcome = "failed"
		errMsg = runErr.Error()
	case nothingChanged:
		outcome = "nothing_changed"
	}

	event := &notify.RunCompleted{
		ContractVersion:  types.ContractVersion,
		EventType:        "run_completed",
		BundleID:         r.bundle.ID(),
		RunID:            runID,
		Outcome:          outcome,
		ResourcesTotal:   len(r.bundle.Resources()),
		ResourcesChanged: r.changed,
		Error:            errMsg,
		Timestamp:        started.UTC().Format(time.RFC3339),
		DurationMs:       time.Since(started).Milliseconds(),
	}

	if err := r.opts.Notifier.Notify(context.Background(), event); err != nil && r.logger != nil {
		r.logger.Error("failed to publish run_completed event", zap.Error(err))
	}
}

// ApplyResource implements bundle.Runner: the per-resource state machine
// from spec §4.B/§4.H. A resource with watches and no set trigger is
// skipped; otherwise its provider runs, its own trigger is cleared
// unconditionally, and on change every observer's trigger is set.
func (r *Runner) ApplyResource(res resource.Resource) (bool, error) {
	if len(res.Watches()) > 0 && !r.state.IsTriggerSet(res.ID()) {
		return false, nil
	}

	changed, err := res.Apply(r.ctx.WithResource(res.ID()))

	if unsetErr := r.state.UnsetTrigger(res.ID()); unsetErr != nil && err == nil {
		err = unsetErr
	}
	if err != nil {
		return false, err
	}

	if changed {
		r.changed++
		if err := r.FireObservers(res); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// FireObservers implements bundle.Runner: sets a trigger on every one of
// res's observers and logs that res changed. Bundle calls this directly
// for the watched-path drift case, since the watched File policy's
// provider always reports unchanged on purpose.
func (r *Runner) FireObservers(res resource.Resource) error {
	for _, obs := range res.Observers() {
		if err := r.state.SetTrigger(obs); err != nil {
			return err
		}
	}
	if r.logger != nil {
		r.logger.Info(fmt.Sprintf("resource changed: %s", res.ID()), zap.String("resource", res.ID()))
	}
	return nil
}
