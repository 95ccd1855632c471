package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/cli/output"
	"github.com/yndnr/cfkv/internal/config"
	"github.com/yndnr/cfkv/internal/infra/confloader"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the merged configuration (defaults, file, environment, flags)",
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if l, ok := c.App.Metadata[metaLoader].(*confloader.Loader); ok && l != nil {
		cfg, err = config.Reload(l)
	} else {
		cfg, _, _, err = loadConfig(c)
	}
	if err != nil {
		return err
	}

	format := output.FormatYAML
	if c.IsSet("output") {
		if format, err = output.ParseFormat(ParseGlobalFlags(c).Output); err != nil {
			return err
		}
	}
	return output.NewFormatter(format, ParseGlobalFlags(c).Wide).Format(writer(c), cfg)
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = ParseGlobalFlags(c).ConfigFile
	}
	if path == "" {
		return fmt.Errorf("configuration file path required")
	}

	if _, _, err := config.Load(path, ParseGlobalFlags(c).Overrides()); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "✓ Configuration file is valid: %s\n", path)
	return nil
}
