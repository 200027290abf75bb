package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}

// Console writes progress and status lines for one run. Spinners are only
// shown when the writer is a terminal; otherwise each step is a plain line.
type Console struct {
	out         io.Writer
	interactive bool
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{out: out, interactive: interactive}
}

// Println writes a plain line.
func (c *Console) Println(msg string) {
	fmt.Fprintln(c.out, msg)
}

// Success writes a green success line.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, text.FgGreen.Sprint(FormatSuccess(msg)))
}

// Warning writes a yellow warning line.
func (c *Console) Warning(msg string) {
	fmt.Fprintln(c.out, text.FgYellow.Sprint(FormatWarning(msg)))
}

// Step prints msg and runs fn, animating a spinner while it runs when the
// console is interactive. The line stays on screen once fn returns.
func (c *Console) Step(msg string, fn func() error) error {
	if !c.interactive {
		c.Println(msg)
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = " " + msg
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint(msg) + "\n"
	} else {
		s.FinalMSG = msg + "\n"
	}
	s.Stop()
	return err
}

// SummaryRow is one line of the end-of-run summary.
type SummaryRow struct {
	Key   string
	Value string
}

// RenderSummary writes rows as a two-column table.
func (c *Console) RenderSummary(rows []SummaryRow) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	for _, r := range rows {
		value := r.Value
		if value == "" {
			value = "-"
		}
		t.AppendRow(table.Row{r.Key, value})
	}
	t.Render()
}
