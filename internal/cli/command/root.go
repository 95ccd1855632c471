package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/cli/output"
	"github.com/yndnr/cfkv/internal/config"
	"github.com/yndnr/cfkv/internal/infra/buildinfo"
	"github.com/yndnr/cfkv/internal/infra/confloader"
	"github.com/yndnr/cfkv/internal/telemetry/logger"
)

// Metadata keys shared between commands.
const (
	metaStore  = "store"
	metaShell  = "shell"
	metaLoader = "loader"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "cfkv",
		Usage:   "Column-family key-value store",
		Version: buildinfo.Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PutCommand(),
			MergeCommand(),
			GetCommand(),
			MultiGetCommand(),
			DeleteCommand(),
			LoadCommand(),
			ColumnFamilyCommand(),
			GCCommand(),
			ConfigCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Metadata: map[string]any{},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"CFKV_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Database directory (storage.data_dir)",
		},
		&cli.StringFlag{
			Name:  "cf",
			Usage: "Column family to operate on (storage.column_family)",
		},
		&cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "Storage engine: rockyard, badger (storage.engine)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file on exit (metrics.file)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (log.level)",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile string

	// Configuration overrides; empty means not set.
	DataDir      string
	ColumnFamily string
	Engine       string
	MetricsFile  string
	LogLevel     string

	// Output format
	Output string // table, json, yaml
	Wide   bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile:   c.String("config"),
		DataDir:      c.String("data-dir"),
		ColumnFamily: c.String("cf"),
		Engine:       c.String("engine"),
		MetricsFile:  c.String("metrics-file"),
		LogLevel:     c.String("log-level"),
		Output:       c.String("output"),
		Wide:         c.Bool("wide"),
	}
}

// Overrides returns the configuration keys set by flags.
func (f *GlobalFlags) Overrides() map[string]any {
	overrides := make(map[string]any)
	set := func(key, value string) {
		if value != "" {
			overrides[key] = value
		}
	}
	set("storage.data_dir", f.DataDir)
	set("storage.column_family", f.ColumnFamily)
	set("storage.engine", f.Engine)
	set("metrics.file", f.MetricsFile)
	set("log.level", f.LogLevel)
	return overrides
}

// loadConfig loads the configuration named by the global flags and
// installs the configured logger as the default.
func loadConfig(c *cli.Context) (*config.Config, *confloader.Loader, logger.Logger, error) {
	flags := ParseGlobalFlags(c)

	cfg, l, err := config.Load(flags.ConfigFile, flags.Overrides())
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errWriter(c),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	logger.SetDefault(log)

	return cfg, l, log, nil
}

// formatter returns the formatter selected by --output.
func formatter(c *cli.Context) (output.Formatter, error) {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, flags.Wide), nil
}

// writer returns the application's standard output.
func writer(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// errWriter returns the application's standard error.
func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
