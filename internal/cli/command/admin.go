package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/cli/output"
	"github.com/yndnr/cfkv/internal/infra/buildinfo"
)

// ColumnFamilyCommand returns the cf subcommand group.
func ColumnFamilyCommand() *cli.Command {
	return &cli.Command{
		Name:  "cf",
		Usage: "Column family inspection",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List column families of the database",
				Action:  cfListAction,
			},
		},
	}
}

type columnFamilyView struct {
	Name  string `json:"name" yaml:"name"`
	Bound bool   `json:"bound" yaml:"bound"`
}

type columnFamilies []columnFamilyView

func (cfs columnFamilies) Table(bool) *output.Table {
	t := output.NewTable("NAME", "BOUND")
	for _, cf := range cfs {
		t.AddRow(cf.Name, cf.Bound)
	}
	return t
}

func cfListAction(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	return withStore(c, func(s *Store) error {
		names := s.ColumnFamilies()
		views := make(columnFamilies, len(names))
		for i, name := range names {
			views[i] = columnFamilyView{Name: name, Bound: name == s.ColumnFamily()}
		}
		return f.Format(writer(c), views)
	})
}

// GCCommand returns the gc command.
func GCCommand() *cli.Command {
	return &cli.Command{
		Name:   "gc",
		Usage:  "Run value log garbage collection (badger engine)",
		Action: gcAction,
	}
}

type gcView struct {
	Reclaimed    string `json:"reclaimed" yaml:"reclaimed"`
	LSMSize      string `json:"lsm_size" yaml:"lsm_size"`
	ValueLogSize string `json:"value_log_size" yaml:"value_log_size"`
	Elapsed      string `json:"elapsed" yaml:"elapsed"`
}

func (v gcView) Table(bool) *output.Table {
	return output.NewTable("RECLAIMED", "LSM_SIZE", "VALUE_LOG_SIZE", "ELAPSED").
		AddRow(v.Reclaimed, v.LSMSize, v.ValueLogSize, v.Elapsed)
}

func gcAction(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	return withStore(c, func(s *Store) error {
		spinner := output.NewSpinner(errWriter(c), "Collecting value log garbage...")
		spinner.Start()

		start := time.Now()
		reclaimed, err := s.GC()
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success("Garbage collection complete")

		view := gcView{
			Reclaimed: output.FormatBytes(int64(reclaimed)),
			Elapsed:   time.Since(start).Round(time.Millisecond).String(),
		}
		if stats, ok := s.Stats(); ok {
			view.LSMSize = output.FormatBytes(int64(stats.LSMSize))
			view.ValueLogSize = output.FormatBytes(int64(stats.ValueLogSize))
		}
		return f.Format(writer(c), view)
	})
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version and engine module information",
		Action: func(c *cli.Context) error {
			if !c.IsSet("output") {
				fmt.Fprintln(writer(c), buildinfo.String())
				return nil
			}
			f, err := formatter(c)
			if err != nil {
				return err
			}
			return f.Format(writer(c), buildinfo.Get())
		},
	}
}
