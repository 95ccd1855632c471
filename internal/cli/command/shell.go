package command

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/cli/repl"
	"github.com/yndnr/cfkv/internal/config"
	"github.com/yndnr/cfkv/internal/infra/confloader"
	"github.com/yndnr/cfkv/internal/infra/shutdown"
	"github.com/yndnr/cfkv/internal/telemetry/logger"
)

// ShellCommand returns the shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively against one open store",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the configuration file when it changes (log level applies live)",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file; empty disables persistence",
				Value: repl.DefaultHistoryFile(),
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Time allowed for closing the store on exit",
				Value: 10 * time.Second,
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	if inShell, _ := c.App.Metadata[metaShell].(bool); inShell {
		return errors.New("already running in a shell")
	}

	cfg, loader, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	handler := shutdown.NewHandler(c.Duration("shutdown-timeout"))
	ctx, stop := handler.NotifyContext(c.Context)
	defer stop()

	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	handler.OnShutdown(store.Close)

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		log.Warn("failed to load history", "error", err)
	}
	handler.OnShutdown(func(context.Context) error {
		return history.Save()
	})

	if c.Bool("watch") {
		if err := watchConfig(ctx, handler, loader, log); err != nil {
			_ = handler.Shutdown()
			return err
		}
	}

	sub := shellApp(c, store, loader)
	r := repl.New(shellExecutor(sub, ParseGlobalFlags(c)),
		repl.WithIO(reader(c), writer(c)),
		repl.WithHistory(history),
		repl.WithCompleter(repl.NewCompleter(commandNames(sub.Commands)...)),
	)

	runErr := r.Run(ctx)
	return errors.Join(runErr, handler.Shutdown())
}

// shellApp builds the application that runs each shell line against
// store.
func shellApp(c *cli.Context, store *Store, loader *confloader.Loader) *cli.App {
	sub := App()
	sub.Writer = writer(c)
	sub.ErrWriter = errWriter(c)
	sub.HideVersion = true
	sub.Metadata = map[string]any{
		metaStore:  store,
		metaShell:  true,
		metaLoader: loader,
	}
	sub.ExitErrHandler = func(*cli.Context, error) {}
	return sub
}

// shellExecutor runs one line as a sub-app invocation, carrying the
// shell's output flags.
func shellExecutor(sub *cli.App, flags *GlobalFlags) repl.Executor {
	return repl.ExecutorFunc(func(ctx context.Context, args []string) error {
		argv := []string{sub.Name, "--output", flags.Output}
		if flags.Wide {
			argv = append(argv, "--wide")
		}
		return sub.RunContext(ctx, append(argv, args...))
	})
}

// watchConfig reloads the configuration whenever its file changes and
// applies the new log level. Storage settings need a restart.
func watchConfig(ctx context.Context, handler *shutdown.Handler, loader *confloader.Loader, log logger.Logger) error {
	path := loader.FilePath()
	if path == "" {
		return errors.New("--watch requires --config")
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}

	w.OnChange(func(string) {
		cfg, err := config.Reload(loader)
		if err != nil {
			log.Warn("configuration reload rejected", "path", path, "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("log level not applied", "error", err)
			return
		}
		log.Info("configuration reloaded", "path", path, "log_level", cfg.Log.Level)
	})

	go w.Run(ctx)
	handler.OnShutdown(func(context.Context) error {
		return w.Stop()
	})
	return nil
}

// commandNames lists the names and aliases of cmds.
func commandNames(cmds []*cli.Command) []string {
	var names []string
	for _, cmd := range cmds {
		names = append(names, cmd.Names()...)
	}
	return names
}

// reader returns the application's standard input.
func reader(c *cli.Context) io.Reader {
	if c.App != nil && c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}
