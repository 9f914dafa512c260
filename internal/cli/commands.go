package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/tama/internal/resolve"
	"github.com/dshills/tama/internal/watch"
)

func (a *app) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <task>",
		Short: "Show how a task name resolves through the task maps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			spec, ok := resolve.New(cfg.TaskMaps).Resolve(args[0])
			if !ok {
				fmt.Fprintf(a.stdout, "no task map for %q\n", args[0])
				return nil
			}
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "plugin:\t%s\n", spec.Plugin)
			fmt.Fprintf(w, "task:\t%s\n", spec.Task)
			fmt.Fprintf(w, "args:\t%s\n", strings.Join(spec.ExtraArgs, ", "))
			fmt.Fprintf(w, "lookup:\t%s\n", spec.LookupName())
			return w.Flush()
		},
	}
}

func (a *app) tasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List registered tasks",
		Long: `List the tasks registered at startup by event listeners. Plugins are
only loaded when one of their tasks runs, so their tasks are not listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := a.start()
			if err != nil {
				return err
			}
			defer t.Close()

			tasks := t.Runner().Tasks()
			if len(tasks) == 0 {
				fmt.Fprintln(a.stdout, "no tasks registered")
				return nil
			}
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, task := range tasks {
				kind := "basic"
				switch {
				case task.Multi:
					kind = "multi"
				case len(task.Alias) > 0:
					kind = "alias"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", task.Name, kind, task.Description)
			}
			return w.Flush()
		},
	}
}

func (a *app) watchCommand() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch [tasks...]",
		Short: "Run tasks and run them again when config or task files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{DefaultTask}
			}
			ctx := cmd.Context()
			t, l, err := a.start()
			if err != nil {
				return err
			}
			defer t.Close()

			w, err := watch.New(watch.WithLogger(l))
			if err != nil {
				return err
			}
			defer w.Close()

			cfg := t.Config()
			dirs := append([]string{cfg.ConfigPath}, cfg.CustomTaskPaths...)
			if cfg.File != "" {
				dirs = append(dirs, cfg.File)
			}
			for _, d := range dirs {
				if err := w.Add(d); err != nil {
					l.Warn("not watching", "path", d, "err", err)
				}
			}

			if err := t.Run(ctx, args...); err != nil {
				l.Error("run failed", "err", err)
			}
			l.Info("watching for changes", "paths", len(w.Paths()))

			err = watch.Loop(ctx, w, delay, func(ctx context.Context, batch []watch.Event) error {
				if err := t.Refresh(watch.Paths(batch)); err != nil {
					return err
				}
				return t.Run(ctx, args...)
			}, l)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "Quiet period before rerunning")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			b := a.build
			if b.Version == "" {
				b.Version = "dev"
			}
			fmt.Fprintf(a.stdout, "tama %s", b.Version)
			if b.Commit != "" {
				fmt.Fprintf(a.stdout, " (%s", b.Commit)
				if b.Date != "" {
					fmt.Fprintf(a.stdout, ", %s", b.Date)
				}
				fmt.Fprint(a.stdout, ")")
			}
			fmt.Fprintln(a.stdout)
		},
	}
}
