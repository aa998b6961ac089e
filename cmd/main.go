// jtalkipa CLI - OpenJTalk phoneme labels to IPA.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"jtalkipa/internal/batch"
	"jtalkipa/internal/config"
	"jtalkipa/internal/ipa"
	"jtalkipa/internal/metrics"
	"jtalkipa/internal/normalizer"
	"jtalkipa/internal/schema"
	"jtalkipa/internal/similarity"
	"jtalkipa/internal/tables"
	"jtalkipa/internal/ui"

	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // at least one sequence failed
	exitSetup  = 2 // bad flags, config or tables
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	// Flags
	mapFile := pflag.String("map", cfg.Defaults.MapFile, "Label to IPA mapping CSV (default: embedded)")
	rulesFile := pflag.String("rules", cfg.Defaults.RulesFile, "Postprocessing rule file (default: embedded)")
	longVowels := pflag.Bool("long-vowels", cfg.Defaults.LongVowels, "Merge repeated vowels into length marks")
	plain := pflag.Bool("plain", cfg.Defaults.Plain, "Strip combining diacritics from output")
	trace := pflag.Bool("trace", false, "Show every rule that changed the string")
	align := pflag.Bool("align", false, "Show the label to symbol alignment")
	workers := pflag.IntP("workers", "w", cfg.Defaults.Workers, "Number of parallel workers (0 = auto)")
	inputFile := pflag.StringP("input", "i", "", "Read label sequences from file, one per line")
	outputFile := pflag.StringP("output", "o", "", "Write results as JSON to file")
	tsv := pflag.Bool("tsv", false, "Print batch results as TSV")
	outputDir := pflag.String("output-dir", cfg.Defaults.OutputDir, "Directory for metrics")
	writeMetrics := pflag.Bool("metrics", cfg.Defaults.Metrics, "Write metrics to output directory")
	configFile := pflag.String("config", "", "Config file (default: "+config.FileName+" if found)")
	quiet := pflag.BoolP("quiet", "q", cfg.Defaults.Quiet, "Suppress progress output")
	verbose := pflag.BoolP("verbose", "v", cfg.Defaults.Verbose, "Verbose logging")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jtalkipa [flags] [labels...]\n\n")
		fmt.Fprintf(os.Stderr, "Converts space-delimited OpenJTalk phoneme labels to IPA.\n")
		fmt.Fprintf(os.Stderr, "Without labels, reads one sequence per line from --input or stdin.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// UI chrome goes to stderr so stdout carries only results.
	pterm.SetDefaultOutput(os.Stderr)

	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			ui.New(false, false).Error(err.Error())
			return exitSetup
		}
		cfg = loaded
		applyConfig(cfg.Defaults, map[string]interface{}{
			"map":         mapFile,
			"rules":       rulesFile,
			"long-vowels": longVowels,
			"plain":       plain,
			"workers":     workers,
			"output-dir":  outputDir,
			"metrics":     writeMetrics,
			"quiet":       quiet,
			"verbose":     verbose,
		})
	}

	term := ui.New(*quiet, *verbose)
	log := term.Logger()

	if cfg.Path != "" {
		log.Debug("config loaded", log.Args("path", cfg.Path))
	}
	for _, key := range cfg.Unknown {
		log.Warn("unknown config key", log.Args("key", key, "path", cfg.Path))
	}

	*workers = config.Workers(*workers, runtime.NumCPU())

	collector := metrics.NewCollector()
	collector.SetConfigMap(map[string]interface{}{
		"map_file":    *mapFile,
		"rules_file":  *rulesFile,
		"long_vowels": *longVowels,
		"plain":       *plain,
		"workers":     *workers,
	})

	// Load tables
	batchMode := pflag.NArg() == 0
	var spinner *ui.SpinnerWrapper
	if batchMode && *inputFile != "" {
		term.Banner()
		term.Phase(1, 2, "Loading tables")
		spinner = term.Spinner("Compiling rules...")
	}
	collector.StartStage(metrics.StageLoad)
	tr, err := tables.FromFiles(*mapFile, *rulesFile, tables.Options{LongVowels: *longVowels})
	spinner.Stop()
	if err != nil {
		collector.EndStage(metrics.StageLoad)
		term.Error(fmt.Sprintf("Failed to load tables: %v", err))
		return exitSetup
	}

	labels := tr.Mapping().Labels()
	collector.SetCounter(metrics.CounterLabels, int64(len(labels)))
	collector.SetCounter(metrics.CounterRules, int64(tr.Rules().Len()))
	collector.EndStage(metrics.StageLoad)
	log.Debug("tables loaded",
		log.Args("labels", len(labels), "rules", tr.Rules().Len(), "long_vowels", *longVowels))

	index := similarity.NewIndex(labelStrings(labels))
	suggest := func(label string) []string {
		return index.Suggest(label, 1, 3)
	}

	format := func(s string) string {
		if *plain {
			return normalizer.StripDiacritics(s)
		}
		return s
	}

	// Single sequence from arguments
	if !batchMode {
		return single(term, tr, strings.Join(pflag.Args(), " "), *align, *trace, format, suggest)
	}

	// Batch from file or stdin
	var in io.Reader = os.Stdin
	name := "stdin"
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			term.Error(fmt.Sprintf("Failed to open input: %v", err))
			return exitSetup
		}
		defer f.Close()
		in = f
		name = *inputFile
	}
	collector.SetConfig("input", name)

	lines, err := batch.ReadLines(in)
	if err != nil {
		term.Error(fmt.Sprintf("Failed to read %s: %v", name, err))
		return exitSetup
	}

	if *inputFile != "" {
		term.Config([][2]string{
			{"Input", name},
			{"Lines", fmt.Sprintf("%d", len(lines))},
			{"Mapping", orEmbedded(*mapFile)},
			{"Rules", orEmbedded(*rulesFile)},
			{"Long vowels", fmt.Sprintf("%t", *longVowels)},
			{"Workers", fmt.Sprintf("%d", *workers)},
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector.StartStage(metrics.StageTransliterate)
	var progress *pterm.ProgressbarPrinter
	if *inputFile != "" && len(lines) > 0 {
		term.Phase(2, 2, "Transliterating")
		progress = term.Progress("Transliterating", len(lines))
	}

	results := batch.Run(ctx, lines, tr, batch.Config{Workers: *workers, Suggest: suggest}, func(t *schema.Transcription) {
		if progress != nil {
			progress.Increment()
		}
		collector.IncrementCounter(metrics.CounterLines, 1)
		if !t.OK() {
			collector.IncrementCounter(metrics.CounterFailed, 1)
		}
		term.LineStatus(t)
	})
	if progress != nil {
		progress.Stop()
	}

	stats := batch.Summarize(results)
	collector.SetCounter(metrics.CounterTokens, int64(stats.Tokens))
	collector.EndStage(metrics.StageTransliterate)

	if stats.Skipped > 0 {
		term.Warning(fmt.Sprintf("Interrupted: %d lines not processed", stats.Skipped))
	}

	result := schema.NewResult(name)
	result.AddAll(results)
	for _, t := range result.Transcriptions {
		t.IPA = format(t.IPA)
	}

	if *outputFile != "" {
		if err := result.Save(*outputFile); err != nil {
			term.Error(fmt.Sprintf("Failed to write %s: %v", *outputFile, err))
			return exitSetup
		}
		term.Success(fmt.Sprintf("Wrote %d results to %s", result.Count, *outputFile))
	}

	if *tsv {
		if err := result.WriteTSV(os.Stdout); err != nil {
			term.Error(fmt.Sprintf("Failed to write TSV: %v", err))
			return exitSetup
		}
	} else if *outputFile == "" {
		if err := result.WriteLines(os.Stdout); err != nil {
			term.Error(fmt.Sprintf("Failed to write results: %v", err))
			return exitSetup
		}
	}

	// Finalize metrics
	runMetrics := collector.Finalize(int64(stats.Succeeded+stats.Failed), int64(stats.Failed))
	if *writeMetrics {
		reportMetrics(term, *outputDir, runMetrics)
	}

	if *inputFile != "" {
		term.FinalReport(
			int(collector.StageCounter(metrics.StageTransliterate, metrics.CounterLines)),
			int(collector.StageCounter(metrics.StageTransliterate, metrics.CounterFailed)),
			collector.GetStageDuration(metrics.StageTransliterate),
		)
		term.Done()
	}

	if stats.Failed > 0 || stats.Skipped > 0 {
		return exitFailed
	}
	return exitOK
}

// single converts one sequence given on the command line.
func single(
	term *ui.UI,
	tr *ipa.Transliterator,
	input string,
	align, trace bool,
	format func(string) string,
	suggest func(string) []string,
) int {
	if align {
		segments, err := tr.Align(input)
		if err != nil {
			reportError(term, err, suggest)
			return exitFailed
		}
		if err := ui.AlignTable(os.Stdout, segments); err != nil {
			term.Error(err.Error())
			return exitFailed
		}
	}

	out, base, steps, err := tr.Trace(input)
	if err != nil {
		reportError(term, err, suggest)
		return exitFailed
	}

	if trace {
		if err := ui.TraceTable(os.Stdout, base, steps); err != nil {
			term.Error(err.Error())
			return exitFailed
		}
	}

	fmt.Println(format(out))
	return exitOK
}

func reportError(term *ui.UI, err error, suggest func(string) []string) {
	msg := err.Error()
	if label, ok := ipa.IsUnknownLabel(err); ok {
		if s := suggest(string(label)); len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
		}
	}
	term.Error(msg)
}

func reportMetrics(term *ui.UI, outputDir string, runMetrics *metrics.RunMetrics) {
	reporter, err := metrics.NewReporter(outputDir)
	if err != nil {
		term.Warning(fmt.Sprintf("Failed to write metrics: %v", err))
		return
	}

	previousRun, err := reporter.Previous()
	if err != nil {
		term.Debug("metrics history unreadable", "error", err)
	}
	if err := reporter.Write(runMetrics); err != nil {
		term.Warning(fmt.Sprintf("Failed to write metrics: %v", err))
		return
	}
	term.Debug("metrics written", "run_id", runMetrics.RunID)

	if previousRun != nil {
		if comparison := metrics.Compare(runMetrics, previousRun); comparison != nil {
			term.Info(comparison.String())
		}
	}
}

// applyConfig copies config values into flags the user did not set.
func applyConfig(d config.Defaults, flags map[string]interface{}) {
	values := map[string]interface{}{
		"map":         d.MapFile,
		"rules":       d.RulesFile,
		"long-vowels": d.LongVowels,
		"plain":       d.Plain,
		"workers":     d.Workers,
		"output-dir":  d.OutputDir,
		"metrics":     d.Metrics,
		"quiet":       d.Quiet,
		"verbose":     d.Verbose,
	}

	for name, ptr := range flags {
		if pflag.CommandLine.Changed(name) {
			continue
		}
		switch p := ptr.(type) {
		case *string:
			*p = values[name].(string)
		case *bool:
			*p = values[name].(bool)
		case *int:
			*p = values[name].(int)
		}
	}
}

func labelStrings(labels []ipa.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

func orEmbedded(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}
