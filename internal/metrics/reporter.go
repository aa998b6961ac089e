package metrics

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const historyFile = "history.jsonl"

// Reporter writes run metrics under <output_dir>/metrics:
//
//	latest.json    the most recent run
//	run_<id>.json  one file per run
//	history.jsonl  one line per run, oldest first
type Reporter struct {
	dir string
}

// NewReporter creates the metrics directory under outputDir.
func NewReporter(outputDir string) (*Reporter, error) {
	dir := filepath.Join(outputDir, "metrics")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics dir: %w", err)
	}
	return &Reporter{dir: dir}, nil
}

// Write records a run. Call Previous before Write to compare against the
// run before it.
func (r *Reporter) Write(run *RunMetrics) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	for _, name := range []string{"latest.json", "run_" + run.RunID + ".json"} {
		if err := os.WriteFile(filepath.Join(r.dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	line, err := json.Marshal(run)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Join(r.dir, historyFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// Previous returns the last run in the history, or nil without one. Lines
// that do not decode are skipped.
func (r *Reporter) Previous() (*RunMetrics, error) {
	file, err := os.Open(filepath.Join(r.dir, historyFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var last *RunMetrics
	for scanner.Scan() {
		var run RunMetrics
		if json.Unmarshal(scanner.Bytes(), &run) == nil {
			last = &run
		}
	}
	return last, scanner.Err()
}

// Comparison is how a run differs from the one before it.
type Comparison struct {
	PreviousRunID string
	Speedup       float64       // previous duration / current duration
	Duration      time.Duration // current minus previous
	Lines         int64         // current minus previous
	Throughput    float64       // lines/sec, current minus previous
}

// Compare returns nil unless both runs have totals.
func Compare(current, previous *RunMetrics) *Comparison {
	if current == nil || previous == nil || current.Totals == nil || previous.Totals == nil {
		return nil
	}

	cur, prev := current.Totals, previous.Totals
	speedup := float64(1)
	if cur.DurationMs > 0 {
		speedup = float64(prev.DurationMs) / float64(cur.DurationMs)
	}

	return &Comparison{
		PreviousRunID: previous.RunID,
		Speedup:       speedup,
		Duration:      time.Duration(cur.DurationMs-prev.DurationMs) * time.Millisecond,
		Lines:         cur.LinesProcessed - prev.LinesProcessed,
		Throughput:    cur.Throughput - prev.Throughput,
	}
}

func (c *Comparison) String() string {
	if c == nil {
		return "no previous run"
	}

	direction := "faster"
	if c.Speedup < 1 {
		direction = "slower"
	}
	sign := "+"
	if c.Duration < 0 {
		sign = ""
	}
	return fmt.Sprintf("%.2fx %s than run %s (%s%v, %+d lines, %+.0f lines/sec)",
		c.Speedup, direction, c.PreviousRunID, sign, c.Duration, c.Lines, c.Throughput)
}
