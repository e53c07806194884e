// Package report renders scenario results as plain text: per-run timings,
// the warm-up-excluded mean, and summary tables.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tahsin716/syncbench/harness"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// Title prints a scenario heading followed by context lines.
func Title(w io.Writer, title string, lines ...string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// Durations prints one line per run in milliseconds, the warm-up note, and
// the mean of the measured runs.
func Durations(w io.Writer, label string, durations []time.Duration, meanSeconds float64) {
	fmt.Fprintf(w, "\n%s (ms):\n", label)
	for i, d := range durations {
		fmt.Fprintf(w, "  Run %d: %.6f\n", i+1, Millis(d.Seconds()))
	}
	fmt.Fprintln(w, "  Note: run 1 is a warm-up and is excluded from the mean.")
	fmt.Fprintf(w, "  Mean (ms): %.6f\n", Millis(meanSeconds))
}

// Runs prints the timings of a harness report.
func Runs[T any](w io.Writer, r harness.Report[T]) {
	Durations(w, r.Name, r.Durations, r.MeanSeconds)
}

// Millis converts seconds to milliseconds.
func Millis(seconds float64) float64 {
	return seconds * 1000
}

// Table accumulates rows and renders them with a bordered layout.
type Table struct {
	Title   string
	Headers []string
	rows    [][]string
}

// NewTable returns an empty table with the given column headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow appends a row. Values are formatted with fmt: floats get three
// decimals, everything else uses %v.
func (t *Table) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case float64:
			row[i] = fmt.Sprintf("%.3f", v)
		case string:
			row[i] = v
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the title and the table to w.
func (t *Table) Render(w io.Writer) {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})

	if t.Title != "" {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render(t.Title))
	}
	fmt.Fprintln(w, tbl.String())
}

// Note prints a free-form observation line.
func Note(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Note: %s\n", strings.TrimSpace(fmt.Sprintf(format, args...)))
}
