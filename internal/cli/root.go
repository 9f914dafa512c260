// Package cli implements the tama command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/tama/internal/config"
	"github.com/dshills/tama/internal/hook"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/tama"
)

// DefaultTask runs when no task is named.
const DefaultTask = "default"

// BuildInfo describes the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Options configures the root command.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Build  BuildInfo
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	build  BuildInfo

	configFile string
	logLevel   string
	jsonLogs   bool

	// newTama builds the orchestrator. The binary uses the process-wide
	// instance.
	newTama func(*config.Config, ...tama.Option) (*tama.Tama, error)
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		build:   opts.Build,
		newTama: tama.Instance,
	}
	if a.stdout == nil {
		a.stdout = io.Discard
	}
	if a.stderr == nil {
		a.stderr = io.Discard
	}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tama [tasks...]",
		Short: "Run tasks, loading plugins on demand",
		Long: `tama runs tasks from Lua plugins. Task names are resolved through the
configured task maps, and plugins are located in the custom task paths and
tama_modules directories the first time one of their tasks is requested.

Running 'tama' without a task runs the "default" task.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTasks(cmd.Context(), args)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to the tama config file (default: tama.toml in the current directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "Write logs as JSON")

	root.AddCommand(
		a.resolveCommand(),
		a.tasksCommand(),
		a.watchCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(config.WithFile(a.configFile))
}

func (a *app) logger(cfg *config.Config) *log.Logger {
	level := a.logLevel
	if level == "" && cfg != nil {
		level = cfg.LogLevel
	}
	lc := logger.DefaultConfig()
	lc.Level = level
	lc.Output = a.stderr
	lc.JSON = a.jsonLogs
	return logger.New(lc)
}

// start loads the config and initialises the orchestrator.
func (a *app) start() (*tama.Tama, *log.Logger, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	l := a.logger(cfg)
	t, err := a.newTama(cfg, tama.WithLogger(l))
	if err != nil {
		return nil, l, err
	}
	return t, l, nil
}

func (a *app) runTasks(ctx context.Context, names []string) error {
	if len(names) == 0 {
		names = []string{DefaultTask}
	}
	t, _, err := a.start()
	if err != nil {
		return err
	}
	defer t.Close()
	return t.Run(ctx, names...)
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string) int {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return report(opts.Stderr, err)
}

func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if w == nil {
		w = io.Discard
	}

	var resErr *hook.TaskResolutionError
	if errors.As(err, &resErr) {
		fmt.Fprintln(w, resErr.Diagnostic())
		return 1
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var verr *config.ValidationError
	if errors.As(err, &verr) || errors.Is(err, config.ErrFileNotFound) {
		return 2
	}
	return 1
}
