package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Tabular is implemented by command results that know their table layout.
type Tabular interface {
	// Table lays the result out; wide adds the optional columns.
	Table(wide bool) *Table
}

// TableFormatter formats Tabular results as aligned columns.
type TableFormatter struct {
	// Wide enables the optional columns of each view.
	Wide bool

	// NoHeaders omits the header row.
	NoHeaders bool
}

// Format writes data as a table. Results without a table layout, such
// as the configuration or build information, are written as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.RenderWithOptions(w, f.NoHeaders)
	case Tabular:
		return v.Table(f.Wide).RenderWithOptions(w, f.NoHeaders)
	}
	return (&JSONFormatter{}).Format(w, data)
}

// Table is a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable returns an empty table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Cells are passed through Cell.
func (t *Table) AddRow(cells ...any) *Table {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = Cell(c)
	}
	t.Rows = append(t.Rows, row)
	return t
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions writes the table. A table without rows writes nothing.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	if len(t.Rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Cell renders one table cell. Empty strings and nil show as "-".
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case []byte:
		if len(x) == 0 {
			return "-"
		}
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
