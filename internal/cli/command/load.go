package command

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/cfkv/internal/cli/output"
	"github.com/yndnr/cfkv/internal/storage/rocks"
)

// LoadCommand returns the load command.
func LoadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Save every key of a YAML or JSON mapping file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Do not show the progress bar",
			},
		},
		Action: loadAction,
	}
}

// readEntries parses a flat mapping of keys to string values. JSON is
// accepted as a subset of YAML.
func readEntries(path string) (map[string]string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	entries := make(map[string]string)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&entries); err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}

	var total int64
	for k, v := range entries {
		total += int64(len(k) + len(v))
	}
	return entries, total, nil
}

func loadAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("load requires FILE")
	}

	entries, total, err := readEntries(path)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return withStore(c, func(s *Store) error {
		var bar *output.ProgressBar
		if !c.Bool("quiet") {
			bar = output.NewProgressBar(errWriter(c), "Loading")
			bar.SetTotal(total)
		}

		for _, k := range keys {
			v := entries[k]
			if _, err := s.Exec(c.Context, rocks.SaveCf{Key: k, Value: []byte(v)}); err != nil {
				return fmt.Errorf("save %q: %w", k, err)
			}
			if bar != nil {
				bar.Increment(int64(len(k) + len(v)))
			}
		}
		if bar != nil {
			bar.Finish()
		}

		fmt.Fprintf(writer(c), "Loaded %d keys (%s) into %s\n",
			len(keys), output.FormatBytes(total), s.ColumnFamily())
		return nil
	})
}
