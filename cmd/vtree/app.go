package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/inspect"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/sched"
	"github.com/vango-dev/vtree/pkg/telemetry"
)

// app is one demo tree wired to a host and a loop.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	host     *memhost.Host
	root     host.Handle
	status   host.Handle
	runner   *component.Runner
	ticks    int
}

// newApp builds the demo tree. adapter is what the reconciler writes to;
// mem is the same tree seen as a memhost, for lookups and inspection.
func newApp(cfg *config.Config, logger *slog.Logger, adapter host.Adapter, mem *memhost.Host, l sched.Loop) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(
		telemetry.WithNamespace(cfg.Metrics.Namespace),
		telemetry.WithRegistry(registry),
	)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		host:     mem,
		root:     mem.NewRoot("window"),
		status:   mem.NewRoot("statusbar"),
	}
	env := component.Env{
		Reconciler: reconcile.New(adapter,
			reconcile.WithLogger(logger),
			reconcile.WithMetrics(metrics),
			reconcile.WithTracer(otel.Tracer(telemetry.TracerName)),
		),
		Loop:        l,
		Logger:      logger,
		Metrics:     metrics,
		FrameBudget: cfg.FrameBudget.Std(),
	}
	r, err := component.NewRunner(demo.MultiView, env, a.root, demo.Options{
		Title:      cfg.Demo.Title,
		Items:      cfg.Demo.Items,
		StatusHost: a.status,
	})
	if err != nil {
		return nil, classify(err, "V042")
	}
	a.runner = r
	return a, nil
}

// start mounts the root component. A failed initial render fails the start.
func (a *app) start() error {
	if err := a.runner.Start(); err != nil {
		return classify(err, "V042")
	}
	if err := a.runner.Task().Context().Err(); err != nil {
		return classify(err, "V040")
	}
	return nil
}

// tick advances the demo clock by one tick.
func (a *app) tick() {
	a.ticks++
	a.runner.Send(demo.Tick(a.ticks))
}

// serveInspector starts the HTTP inspector on addr until ctx is done.
// The returned channel yields the server's exit error.
func (a *app) serveInspector(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, vterrors.New("V080").Wrap(err)
	}
	srv := inspect.New(a.host,
		inspect.WithGatherer(a.registry),
		inspect.WithLogger(a.logger),
	)
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, l)
		srv.Close()
	}()
	return l.Addr(), done, nil
}
