package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/loop"
	"github.com/vango-dev/vtree/pkg/memhost"
)

type headlessOptions struct {
	ticks   int
	virtual bool
	steps   []string
	inspect string
	outline bool
}

func headlessCmd(flags *globalFlags) *cobra.Command {
	opts := &headlessOptions{}

	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the demo without a terminal",
		Long: `Run the demo on an in-memory host and print the events that reach
the root component.

Steps run in order after the root mounts. Each step is one of:
  click:<label>   activate the button with that label
  type:<text>     set the filter input to text
  tick            deliver one tick

Ticks then arrive every tick_interval. With --ticks=0 the demo runs
until interrupted.

Examples:
  vtree headless --ticks=3
  vtree headless --virtual --step click:Inc --step click:List --step type:br
  vtree headless --ticks=0 --inspect=127.0.0.1:7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if opts.ticks < 0 {
				return vterrors.New("V021").WithDetail("--ticks must not be negative.")
			}
			if opts.inspect != "" {
				cfg.Inspect.Enabled = true
				cfg.Inspect.Addr = opts.inspect
			}
			if opts.virtual {
				return runVirtual(cmd, cfg, opts)
			}
			return runHeadless(cmd, cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 3, "Number of ticks before exiting")
	cmd.Flags().BoolVar(&opts.virtual, "virtual", false, "Use a virtual clock: ticks run instantly")
	cmd.Flags().StringArrayVar(&opts.steps, "step", nil, "Step to run after mounting (repeatable)")
	cmd.Flags().StringVar(&opts.inspect, "inspect", "", "Serve the inspector on this address")
	cmd.Flags().BoolVar(&opts.outline, "outline", true, "Print the host tree outline on exit")

	return cmd
}

// runVirtual drives the demo on a manual loop; nothing waits on the clock.
func runVirtual(cmd *cobra.Command, cfg *config.Config, opts *headlessOptions) error {
	out := cmd.OutOrStdout()
	m := loop.NewManual()
	h := memhost.New()
	a, err := newApp(cfg, logger(cfg, cmd.ErrOrStderr()), h, h, m)
	if err != nil {
		return err
	}
	defer a.runner.Close()

	if err := a.start(); err != nil {
		return err
	}
	printEvents(out, a.ticks, a.runner.Events())
	for _, step := range opts.steps {
		if err := a.step(step); err != nil {
			return err
		}
		m.RunIdle()
		printEvents(out, a.ticks, a.runner.Events())
	}

	stop, _ := m.Every(cfg.TickInterval.Std(), func() {
		a.tick()
		printEvents(out, a.ticks, a.runner.Events())
	})
	defer stop()
	for range opts.ticks {
		m.Advance(cfg.TickInterval.Std())
	}

	a.summary(out, opts.outline)
	return nil
}

// runHeadless drives the demo on a real event loop.
func runHeadless(cmd *cobra.Command, cfg *config.Config, opts *headlessOptions) error {
	out := cmd.OutOrStdout()
	log := logger(cfg, cmd.ErrOrStderr())
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	el, err := loop.New(loop.WithLogger(log))
	if err != nil {
		return err
	}
	h := memhost.New()
	a, err := newApp(cfg, log, h, h, el)
	if err != nil {
		return err
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- el.Run(ctx) }()

	if cfg.Inspect.Enabled {
		addr, _, err := a.serveInspector(ctx, cfg.Inspect.Addr)
		if err != nil {
			cancel()
			<-loopDone
			return err
		}
		fmt.Fprintf(out, "inspector: http://%s\n", addr)
	}

	finished := make(chan error, 1)
	var stopTicks func()
	err = el.Submit(func() {
		if err := a.start(); err != nil {
			finished <- err
			return
		}
		printEvents(out, a.ticks, a.runner.Events())
		for _, step := range opts.steps {
			if err := a.step(step); err != nil {
				finished <- err
				return
			}
		}
		stop, everyErr := el.Every(cfg.TickInterval.Std(), func() {
			printEvents(out, a.ticks, a.runner.Events())
			if opts.ticks > 0 && a.ticks >= opts.ticks {
				stopTicks()
				finished <- nil
				return
			}
			a.tick()
			printEvents(out, a.ticks, a.runner.Events())
		})
		if everyErr != nil {
			finished <- everyErr
			return
		}
		stopTicks = stop
	})
	if err != nil {
		cancel()
		<-loopDone
		return err
	}

	select {
	case err = <-finished:
	case <-ctx.Done():
	}

	closed := make(chan struct{})
	if el.Submit(func() {
		a.summary(out, opts.outline)
		a.runner.Close()
		close(closed)
	}) == nil {
		select {
		case <-closed:
		case <-ctx.Done():
		}
	}
	cancel()
	if loopErr := <-loopDone; err == nil {
		err = loopErr
	}
	return err
}

// step runs one scripted interaction.
func (a *app) step(step string) error {
	verb, arg, _ := strings.Cut(step, ":")
	switch verb {
	case "tick":
		a.tick()
		return nil
	case "click":
		id := a.host.Find(a.root, a.host.WithProp("button", host.PropText, arg))
		if id == host.None {
			return vterrors.New("V061").WithDetail("No button labelled " + arg + ".")
		}
		return classify(a.host.Activate(id), "V060")
	case "type":
		id := a.host.Find(a.root, func(id host.Handle) bool { return a.host.Kind(id) == "input" })
		if id == host.None {
			return vterrors.New("V061").WithDetail("No input to type into. Switch to the list first with click:List.")
		}
		return classify(a.host.Input(id, arg), "V060")
	}
	return vterrors.New("V021").WithDetail("Unknown step " + step + ".").
		WithSuggestion("Steps are click:<label>, type:<text> or tick.")
}

// summary prints the status line and, optionally, the app tree.
func (a *app) summary(w io.Writer, outline bool) {
	if id := a.host.Find(a.status, func(id host.Handle) bool { return a.host.Kind(id) == "span" }); id != host.None {
		v, _ := a.host.Property(id, host.PropText)
		fmt.Fprintf(w, "status: %v\n", v)
	}
	if outline {
		fmt.Fprint(w, a.host.Snapshot(a.root).Outline())
	}
}

func printEvents(w io.Writer, tick int, events []component.Event) {
	for _, e := range events {
		if e.Payload != nil {
			fmt.Fprintf(w, "t%d %s %v\n", tick, e.Type, e.Payload)
			continue
		}
		fmt.Fprintf(w, "t%d %s\n", tick, e.Type)
	}
}
