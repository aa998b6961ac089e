// Package schema defines transcription records and result files for jtalkipa.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Transcription is the outcome for one input line.
type Transcription struct {
	Line  int    `json:"line"`
	Input string `json:"input"`
	IPA   string `json:"ipa,omitempty"`
	Error string `json:"error,omitempty"`

	// Suggestions holds near labels when the line failed on an unknown one.
	Suggestions []string `json:"suggestions,omitempty"`
}

// OK reports whether the line transliterated.
func (t *Transcription) OK() bool {
	return t.Error == ""
}

// Result is a batch of transcriptions with metadata.
type Result struct {
	Name           string           `json:"name"`
	GeneratedAt    string           `json:"generated_at"`
	Count          int              `json:"count"`
	Failed         int              `json:"failed"`
	Transcriptions []*Transcription `json:"transcriptions"`
}

// NewResult creates a Result stamped with the current time.
func NewResult(name string) *Result {
	return &Result{
		Name:           name,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Transcriptions: []*Transcription{},
	}
}

// Add appends a transcription and updates the counts.
func (r *Result) Add(t *Transcription) {
	r.Transcriptions = append(r.Transcriptions, t)
	r.Count++
	if !t.OK() {
		r.Failed++
	}
}

// AddAll appends every non-nil transcription.
func (r *Result) AddAll(ts []*Transcription) {
	for _, t := range ts {
		if t != nil {
			r.Add(t)
		}
	}
}

// Save saves the result to a JSON file.
func (r *Result) Save(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}

// Load reads a result saved by Save.
func Load(filePath string) (*Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return &r, nil
}

// WriteTSV writes one "line<TAB>input<TAB>ipa<TAB>error" row per
// transcription, with a header row.
func (r *Result) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "line\tinput\tipa\terror"); err != nil {
		return err
	}
	for _, t := range r.Transcriptions {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Line, tsvField(t.Input), tsvField(t.IPA), tsvField(t.Error))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteLines writes the IPA of each transcription on the line number of its
// input. Input lines without a successful transcription (blank, comment,
// failed or never run) come out empty, so output line n matches input
// line n up to the last transcribed line.
func (r *Result) WriteLines(w io.Writer) error {
	ts := make([]*Transcription, len(r.Transcriptions))
	copy(ts, r.Transcriptions)
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Line < ts[j].Line })

	line := 1
	for _, t := range ts {
		for ; line < t.Line; line++ {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if t.Line < line {
			continue
		}
		if _, err := fmt.Fprintln(w, t.IPA); err != nil {
			return err
		}
		line++
	}
	return nil
}

var tsvEscaper = strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)

func tsvField(s string) string {
	return tsvEscaper.Replace(s)
}
