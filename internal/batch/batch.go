// Package batch transliterates many label sequences, one per input line,
// over a shared read-only transliterator.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"jtalkipa/internal/ipa"
	"jtalkipa/internal/schema"
)

// MaxLineBytes bounds a single input line.
const MaxLineBytes = 1024 * 1024

// Line is one label sequence with its 1-based position in the input.
type Line struct {
	Number int
	Text   string
}

// ReadLines reads one label sequence per line. Blank lines and lines
// starting with # are skipped; a trailing \r is dropped, every other byte
// is kept so the tokenizer still sees stray separators.
func ReadLines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	var lines []Line
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, Line{Number: n, Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading line %d: %w", n+1, err)
	}
	return lines, nil
}

// Transliterator is the part of *ipa.Transliterator batches need.
type Transliterator interface {
	Transliterate(input string) (string, error)
}

// Config configures a batch run.
type Config struct {
	Workers int // Number of parallel workers (<= 1 = sequential)

	// Suggest, if set, proposes known labels for an unknown one.
	Suggest func(label string) []string
}

// ProgressCallback is called on the caller's goroutine as each line
// completes, in completion order.
type ProgressCallback func(t *schema.Transcription)

// Run transliterates lines and returns one transcription per line, in
// input order. Lines not started before ctx is done are left nil.
func Run(
	ctx context.Context,
	lines []Line,
	tr Transliterator,
	config Config,
	callback ProgressCallback,
) []*schema.Transcription {
	results := make([]*schema.Transcription, len(lines))

	if config.Workers <= 1 {
		for i, line := range lines {
			if ctx.Err() != nil {
				break
			}
			results[i] = transliterateLine(line, tr, config)
			if callback != nil {
				callback(results[i])
			}
		}
		return results
	}

	type job struct {
		index int
		line  Line
	}
	type done struct {
		index  int
		result *schema.Transcription
	}

	jobs := make(chan job)
	resultsChan := make(chan done, config.Workers)

	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				resultsChan <- done{j.index, transliterateLine(j.line, tr, config)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, line := range lines {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{i, line}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for r := range resultsChan {
		results[r.index] = r.result
		if callback != nil {
			callback(r.result)
		}
	}

	return results
}

func transliterateLine(line Line, tr Transliterator, config Config) *schema.Transcription {
	t := &schema.Transcription{Line: line.Number, Input: line.Text}

	out, err := tr.Transliterate(line.Text)
	if err != nil {
		t.Error = err.Error()
		if label, ok := ipa.IsUnknownLabel(err); ok && config.Suggest != nil {
			t.Suggestions = config.Suggest(string(label))
		}
		return t
	}
	t.IPA = out
	return t
}

// Stats holds aggregate counts over a batch.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int // not run because the context was cancelled
	Tokens    int // labels in successfully transliterated lines
}

// Summarize computes statistics from batch results.
func Summarize(results []*schema.Transcription) *Stats {
	stats := &Stats{Total: len(results)}

	for _, r := range results {
		switch {
		case r == nil:
			stats.Skipped++
		case !r.OK():
			stats.Failed++
		default:
			stats.Succeeded++
			stats.Tokens += strings.Count(r.Input, string(ipa.Separator)) + 1
		}
	}

	return stats
}
