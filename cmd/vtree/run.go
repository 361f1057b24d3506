package main

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/component"
	"github.com/vango-dev/vtree/pkg/termhost"
)

// isTerminal reports whether fd is an interactive terminal.
var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		logFile string
		inspect string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interactive demo",
		Long: `Run the multi-view demo in the terminal.

Keys:
  tab / shift+tab   move focus
  enter             activate the focused button
  typing            edit the focused input
  q / esc           quit

Examples:
  vtree run
  vtree run --log-file vtree.log --log-level debug
  vtree run --inspect 127.0.0.1:7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin.Fd()) || !isTerminal(os.Stdout.Fd()) {
				return vterrors.New("V020")
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if inspect != "" {
				cfg.Inspect.Enabled = true
				cfg.Inspect.Addr = inspect
			}
			var logOut io.Writer
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return vterrors.New("V021").Wrap(err)
				}
				defer f.Close()
				logOut = f
			}
			return runInteractive(cmd, cfg, logOut)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (the screen belongs to the UI)")
	cmd.Flags().StringVar(&inspect, "inspect", "", "Serve the inspector on this address")

	return cmd
}

func runInteractive(cmd *cobra.Command, cfg *config.Config, logOut io.Writer) error {
	log := logger(cfg, logOut)
	th := termhost.New()
	tl := termhost.NewTeaLoop()
	defer tl.Close()

	a, err := newApp(cfg, log, th, th.Host, tl)
	if err != nil {
		return err
	}
	if err := a.start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if cfg.Inspect.Enabled {
		addr, _, err := a.serveInspector(ctx, cfg.Inspect.Addr)
		if err != nil {
			a.runner.Close()
			return err
		}
		log.Info("inspector started", "url", "http://"+addr.String())
	}

	stop, err := tl.Every(cfg.TickInterval.Std(), a.tick)
	if err != nil {
		return err
	}
	defer stop()

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}
	model := &termhost.Model{
		Host:   th,
		Loop:   tl,
		Runner: a.runner,
		App:    a.root,
		Status: a.status,
		Title:  cfg.Demo.Title,
		Width:  width,
		OnEvent: func(e component.Event) {
			log.Debug("root event", "type", e.Type, "payload", e.Payload)
		},
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tl.Attach(p.Send)

	_, err = p.Run()
	a.runner.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
