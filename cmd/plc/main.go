package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plc-lang/plc/internal/compile"
	"github.com/plc-lang/plc/internal/config"
)

// Version is the release of the plc tool.
var Version = "0.1.0"

// app holds the global flags and the state derived from them before any
// command runs.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *slog.Logger
	opts   compile.Options
}

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "plc",
		Short: "Front end for the PLC teaching language",
		Long: `plc lexes, parses and analyses PLC programs and generates Java.

Commands:
  tokens  - print the token stream
  parse   - print the syntax tree as YAML
  check   - analyse files and directories
  gen     - generate Java
  watch   - re-check files when they change
  lsp     - serve diagnostics, hover and completion to editors`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured diagnostics")

	root.AddCommand(
		a.tokensCmd(),
		a.parseCmd(),
		a.checkCmd(),
		a.genCmd(),
		a.watchCmd(),
		a.lspCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the shared compile options.
func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadOrDefault(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	reg, global, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.NoColor {
		a.noColor = true
	}

	a.cfg = cfg
	a.opts = compile.Options{Registry: reg, Global: global, Logger: a.logger}
	a.logger.Debug("configuration loaded", "builtins", len(cfg.Builtins), "types", len(cfg.Types))
	return nil
}
