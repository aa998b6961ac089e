package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.SetConfig("long_vowels", false)
	c.SetConfigMap(map[string]interface{}{"workers": 4, "plain": true})

	c.StartStage(StageLoad)
	c.SetCounter(CounterLabels, 45)
	c.SetCounter(CounterRules, 12)
	c.EndStage(StageLoad)

	c.StartStage(StageTransliterate)
	time.Sleep(5 * time.Millisecond)
	c.IncrementCounter(CounterLines, 3)
	c.IncrementCounter(CounterLines, 2)
	c.IncrementCounter(CounterFailed, 1)
	c.EndStage(StageTransliterate)

	// No active stage: ignored.
	c.IncrementCounter(CounterLines, 100)

	metrics := c.Finalize(5, 1)

	if metrics.RunID == "" {
		t.Error("Expected non-empty run ID")
	}
	if metrics.Totals.LinesProcessed != 5 || metrics.Totals.LinesFailed != 1 {
		t.Errorf("Totals = %+v, want 5 lines with 1 failed", metrics.Totals)
	}
	if got := metrics.Stages[StageLoad].Counters[CounterLabels]; got != 45 {
		t.Errorf("labels = %d, want 45", got)
	}
	if got := c.StageCounter(StageTransliterate, CounterLines); got != 5 {
		t.Errorf("lines = %d, want 5", got)
	}
	if got := c.StageCounter("missing", CounterLines); got != 0 {
		t.Errorf("missing stage counter = %d, want 0", got)
	}
	if c.GetStageDuration(StageTransliterate) < 5*time.Millisecond {
		t.Errorf("transliterate duration = %v, want at least 5ms", c.GetStageDuration(StageTransliterate))
	}
	if metrics.Config["workers"] != 4 {
		t.Errorf("config workers = %v, want 4", metrics.Config["workers"])
	}
	if metrics.Environment == nil || metrics.Environment.NumCPU == 0 {
		t.Error("Expected environment info")
	}
}

func TestReporter(t *testing.T) {
	tmpDir := t.TempDir()

	reporter, err := NewReporter(tmpDir)
	if err != nil {
		t.Fatalf("NewReporter: %v", err)
	}

	c := NewCollector()
	c.StartStage(StageTransliterate)
	c.SetCounter(CounterLines, 100)
	c.EndStage(StageTransliterate)
	metrics := c.Finalize(100, 0)

	if err := reporter.Write(metrics); err != nil {
		t.Fatalf("Failed to write metrics: %v", err)
	}

	for _, name := range []string{"latest.json", "history.jsonl", "run_" + metrics.RunID + ".json"} {
		if _, err := os.Stat(filepath.Join(tmpDir, "metrics", name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	lastRun, err := reporter.Previous()
	if err != nil {
		t.Fatalf("Failed to get last run: %v", err)
	}
	if lastRun.RunID != metrics.RunID {
		t.Errorf("Expected run ID %s, got %s", metrics.RunID, lastRun.RunID)
	}
	if lastRun.Totals.LinesProcessed != 100 {
		t.Errorf("history lines = %d, want 100", lastRun.Totals.LinesProcessed)
	}

	next := NewCollector().Finalize(7, 0)
	if err := reporter.Write(next); err != nil {
		t.Fatalf("Failed to write metrics: %v", err)
	}
	f, err := os.OpenFile(filepath.Join(tmpDir, "metrics", "history.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("not json\n")
	f.Close()

	lastRun, err = reporter.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if lastRun.RunID != next.RunID {
		t.Errorf("Previous() = %s, want the last valid run %s", lastRun.RunID, next.RunID)
	}
}

func TestReporterEmptyHistory(t *testing.T) {
	reporter, err := NewReporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewReporter: %v", err)
	}

	last, err := reporter.Previous()
	if err != nil || last != nil {
		t.Errorf("Previous() = (%v, %v), want (nil, nil)", last, err)
	}
}

func TestComparison(t *testing.T) {
	previous := NewCollector().Finalize(1000, 0)
	previous.Totals.DurationMs = 1000
	previous.Totals.Throughput = 1000

	current := NewCollector().Finalize(1200, 0)
	current.Totals.DurationMs = 500
	current.Totals.Throughput = 2400

	comparison := Compare(current, previous)
	if comparison == nil {
		t.Fatal("Expected non-nil comparison")
	}
	if comparison.Speedup != 2.0 {
		t.Errorf("Expected 2x speedup, got %.2f", comparison.Speedup)
	}
	if comparison.Duration != -500*time.Millisecond {
		t.Errorf("Duration = %v, want -500ms", comparison.Duration)
	}
	if comparison.Lines != 200 {
		t.Errorf("Expected 200 more lines, got %d", comparison.Lines)
	}
	if comparison.PreviousRunID != previous.RunID {
		t.Errorf("PreviousRunID = %q, want %q", comparison.PreviousRunID, previous.RunID)
	}

	formatted := comparison.String()
	for _, want := range []string{"2.00x faster", "-500ms", "+200 lines", "+1400 lines/sec"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("String() = %q, missing %q", formatted, want)
		}
	}

	if Compare(current, nil) != nil {
		t.Error("Compare with no previous run should be nil")
	}
	var none *Comparison
	if none.String() != "no previous run" {
		t.Errorf("nil String() = %q", none.String())
	}
}
