// Package ui provides terminal UI components using pterm.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"jtalkipa/internal/ipa"
	"jtalkipa/internal/schema"
)

// UI wraps pterm components for jtalkipa.
type UI struct {
	quiet   bool
	verbose bool
	logger  *pterm.Logger
}

// New creates a new UI instance logging to stderr. Quiet silences
// everything but results and errors; verbose enables debug logging.
func New(quiet, verbose bool) *UI {
	return newUI(quiet, verbose, os.Stderr)
}

func newUI(quiet, verbose bool, w io.Writer) *UI {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	if quiet {
		level = pterm.LogLevelError
	}
	logger := pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w)

	return &UI{quiet: quiet, verbose: verbose, logger: logger}
}

// Logger returns the structured logger.
func (u *UI) Logger() *pterm.Logger {
	return u.logger
}

// Banner prints the application banner.
func (u *UI) Banner() {
	if u.quiet {
		return
	}
	pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("jtalk", pterm.NewStyle(pterm.FgCyan)),
		pterm.NewLettersFromStringWithStyle("ipa", pterm.NewStyle(pterm.FgLightBlue)),
	).Render()

	pterm.DefaultCenter.Println(
		pterm.FgGray.Sprint("OpenJTalk phoneme labels to IPA"),
	)
	pterm.Println()
}

// Config prints the configuration summary.
func (u *UI) Config(settings [][2]string) {
	if u.quiet {
		return
	}
	pterm.DefaultSection.Println("Configuration")

	data := make(pterm.TableData, 0, len(settings))
	for _, s := range settings {
		data = append(data, []string{s[0], s[1]})
	}

	pterm.DefaultTable.WithData(data).Render()
	pterm.Println()
}

// Phase prints a phase header.
func (u *UI) Phase(number int, total int, name string) {
	if u.quiet {
		return
	}
	pterm.DefaultSection.WithLevel(2).Println(
		fmt.Sprintf("[%d/%d] %s", number, total, name),
	)
}

// SpinnerWrapper is a spinner that is a no-op when output is disabled.
type SpinnerWrapper struct {
	spinner *pterm.SpinnerPrinter
}

// Spinner starts a spinner for long operations.
func (u *UI) Spinner(message string) *SpinnerWrapper {
	if u.quiet {
		return &SpinnerWrapper{}
	}
	spinner, _ := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		Start(message)
	return &SpinnerWrapper{spinner: spinner}
}

// Stop stops the spinner.
func (s *SpinnerWrapper) Stop() {
	if s == nil || s.spinner == nil {
		return
	}
	s.spinner.Stop()
}

// Progress creates a progress bar, or returns nil in quiet mode.
func (u *UI) Progress(title string, total int) *pterm.ProgressbarPrinter {
	if u.quiet {
		return nil
	}
	pb, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(true).
		Start()
	return pb
}

// LineStatus logs the outcome of one batch line. Failures are logged at
// error level so they survive quiet mode; successes only show with verbose.
func (u *UI) LineStatus(t *schema.Transcription) {
	if t.OK() {
		u.logger.Debug(t.IPA, u.logger.Args("line", t.Line))
		return
	}

	args := []any{"line", t.Line, "input", t.Input}
	if len(t.Suggestions) > 0 {
		args = append(args, "did_you_mean", strings.Join(t.Suggestions, ", "))
	}
	u.logger.Error(t.Error, u.logger.Args(args...))
}

// AlignTable writes the label/symbol alignment of one sequence. It writes
// to w directly so it still works in quiet mode.
func AlignTable(w io.Writer, segments []ipa.Segment) error {
	data := pterm.TableData{{"#", "Label", "IPA"}}
	for i, s := range segments {
		data = append(data, []string{fmt.Sprintf("%d", i+1), string(s.Label), s.Symbol})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// TraceTable writes every rule that changed the string, starting from the
// base string.
func TraceTable(w io.Writer, base string, steps []ipa.Step) error {
	data := pterm.TableData{{"Rule", "Line", "Result"}}
	data = append(data, []string{"(base)", "", base})
	for _, s := range steps {
		line := ""
		if s.Rule.Line > 0 {
			line = fmt.Sprintf("%d", s.Rule.Line)
		}
		data = append(data, []string{s.Rule.String(), line, s.After})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// FinalReport prints the final summary report.
func (u *UI) FinalReport(lines, failed int, duration time.Duration) {
	if u.quiet {
		return
	}
	pterm.DefaultSection.Println("Summary")

	throughput := float64(0)
	if duration > 0 {
		throughput = float64(lines) / duration.Seconds()
	}

	panel := pterm.DefaultBox.WithTitle("Results").Sprint(
		fmt.Sprintf(
			"  Lines:       %s\n"+
				"  Failed:      %s\n"+
				"  Duration:    %s\n"+
				"  Throughput:  %s lines/sec",
			pterm.FgGreen.Sprintf("%d", lines),
			pterm.FgRed.Sprintf("%d", failed),
			pterm.FgYellow.Sprint(duration.Round(time.Millisecond)),
			pterm.FgMagenta.Sprintf("%.0f", throughput),
		),
	)
	pterm.Println(panel)
}

// Success prints a success message.
func (u *UI) Success(message string) {
	if !u.quiet {
		pterm.Success.Println(message)
	}
}

// Error logs an error message. It is shown even in quiet mode.
func (u *UI) Error(message string) {
	u.logger.Error(message)
}

// Warning logs a warning message.
func (u *UI) Warning(message string) {
	u.logger.Warn(message)
}

// Info prints an info message.
func (u *UI) Info(message string) {
	if !u.quiet {
		pterm.Info.Println(message)
	}
}

// Debug logs a debug message with key/value arguments.
func (u *UI) Debug(message string, args ...any) {
	u.logger.Debug(message, u.logger.Args(args...))
}

// Done prints the completion message.
func (u *UI) Done() {
	if u.quiet {
		return
	}
	pterm.Println()
	pterm.DefaultCenter.Println(
		pterm.FgGreen.Sprint("✓ Done!"),
	)
}
