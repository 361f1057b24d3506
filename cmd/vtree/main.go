package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┬┌┬┐┬─┐┌─┐┌─┐
  └┐┌┘ │ ├┬┘├┤ ├┤
   └┘  ┴ ┴└─└─┘└─┘
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		vterrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "A retained-mode UI reconciler with a multi-view demo",
		Long: `vtree renders declarative component trees into retained host trees.

The bundled demo mounts a root component with a header, tabs, a
counter, a filterable list and a status bar rendered through a portal:

  • run       interactive terminal UI
  • headless  scripted run without a terminal, optional HTTP inspector
  • config    print the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file (default: vtree.json or vtree.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		runCmd(flags),
		headlessCmd(flags),
		configCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and applies global flag overrides.
func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(".")
		var e *vterrors.Error
		if stderrors.As(err, &e) && e.Code == "V004" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		if err := cfg.SetLogLevel(f.logLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// logger returns the configured logger writing to w, or a discarding one.
func logger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger(w)
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}
