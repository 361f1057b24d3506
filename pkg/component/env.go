package component

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/telemetry"
)

// Env carries the capabilities a task is built with. A parent hands its own
// Env to its children, so every task in a tree shares one reconciler, loop
// and render-request callback. Nothing is looked up globally.
type Env struct {
	Reconciler *reconcile.Reconciler
	Loop       sched.Loop

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *telemetry.Metrics

	// FrameBudget is the low priority render delay.
	// Default: sched.DefaultFrameBudget
	FrameBudget time.Duration

	// RequestImmediateRender asks the root driver to push a Poll through
	// the tree as soon as possible, e.g. after an input callback changed
	// state. May be nil.
	RequestImmediateRender func()
}

func (e Env) validate() error {
	if e.Reconciler == nil || e.Loop == nil {
		return ErrInvalidEnv
	}
	return nil
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.FrameBudget <= 0 {
		e.FrameBudget = sched.DefaultFrameBudget
	}
	return e
}
