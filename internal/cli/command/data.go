package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cfkv/internal/cli/output"
	"github.com/yndnr/cfkv/internal/storage/rocks"
)

// entry is the printed view of one key.
type entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	Found bool   `json:"found" yaml:"found"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// entries is the result of get and mget. The ERROR column is wide only.
type entries []entry

func (es entries) Table(wide bool) *output.Table {
	t := output.NewTable("KEY", "VALUE", "FOUND")
	if wide {
		t.Headers = append(t.Headers, "ERROR")
	}
	for _, e := range es {
		if wide {
			t.AddRow(e.Key, e.Value, e.Found, e.Error)
		} else {
			t.AddRow(e.Key, e.Value, e.Found)
		}
	}
	return t
}

// PutCommand returns the put command.
func PutCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Aliases:   []string{"set"},
		Usage:     "Store a value under a key",
		ArgsUsage: "KEY VALUE",
		Action:    putAction,
	}
}

// MergeCommand returns the merge command.
func MergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Merge an operand into a key with the configured merge operator",
		ArgsUsage: "KEY OPERAND",
		Action:    mergeAction,
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

// MultiGetCommand returns the mget command.
func MultiGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "mget",
		Usage:     "Read several keys in one batched lookup",
		ArgsUsage: "KEY [KEY...]",
		Action:    multiGetAction,
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"del", "rm"},
		Usage:     "Remove a key",
		ArgsUsage: "KEY",
		Action:    deleteAction,
	}
}

func putAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("put requires KEY and VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	return withStore(c, func(s *Store) error {
		if _, err := s.Exec(c.Context, rocks.SaveCf{Key: key, Value: []byte(value)}); err != nil {
			return err
		}
		fmt.Fprintf(writer(c), "OK %s\n", key)
		return nil
	})
}

func mergeAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("merge requires KEY and OPERAND")
	}
	key, operand := c.Args().Get(0), c.Args().Get(1)

	return withStore(c, func(s *Store) error {
		if _, err := s.Exec(c.Context, rocks.MergeCf{Key: key, Value: []byte(operand)}); err != nil {
			return err
		}
		fmt.Fprintf(writer(c), "OK %s\n", key)
		return nil
	})
}

func getAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("get requires KEY")
	}
	key := c.Args().First()

	f, err := formatter(c)
	if err != nil {
		return err
	}

	return withStore(c, func(s *Store) error {
		out, err := s.Exec(c.Context, rocks.GetCf{Key: key})
		if err != nil {
			return err
		}
		single, ok := out.(rocks.SingleByte)
		if !ok {
			return fmt.Errorf("unexpected outcome %T", out)
		}
		return f.Format(writer(c), entries{{Key: key, Value: string(single.Value), Found: single.Found}})
	})
}

func multiGetAction(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("mget requires at least one KEY")
	}
	keys := c.Args().Slice()

	f, err := formatter(c)
	if err != nil {
		return err
	}

	return withStore(c, func(s *Store) error {
		out, err := s.Exec(c.Context, rocks.MultiGetCf{Keys: keys})
		if err != nil {
			return err
		}
		multi, ok := out.(rocks.MultiBytes)
		if !ok {
			return fmt.Errorf("unexpected outcome %T", out)
		}

		views := make(entries, len(keys))
		for i, r := range multi.Values {
			views[i] = entry{Key: keys[i], Value: string(r.Value), Found: r.Found}
			if r.Err != nil {
				views[i].Error = r.Err.Error()
			}
		}
		return f.Format(writer(c), views)
	})
}

func deleteAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("delete requires KEY")
	}
	key := c.Args().First()

	return withStore(c, func(s *Store) error {
		if _, err := s.Exec(c.Context, rocks.RemoveCf{Key: key}); err != nil {
			return err
		}
		fmt.Fprintf(writer(c), "OK %s\n", key)
		return nil
	})
}
