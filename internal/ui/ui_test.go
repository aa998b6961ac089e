package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"jtalkipa/internal/ipa"
	"jtalkipa/internal/schema"
)

func init() {
	pterm.DisableColor()
}

func TestAlignTable(t *testing.T) {
	var buf bytes.Buffer
	err := AlignTable(&buf, []ipa.Segment{{Label: "ky", Symbol: "kʲ"}, {Label: "N", Symbol: "ɴ"}})
	if err != nil {
		t.Fatalf("AlignTable: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Label", "ky", "kʲ", "N", "ɴ"} {
		if !strings.Contains(out, want) {
			t.Errorf("AlignTable output missing %q:\n%s", want, out)
		}
	}
}

func TestTraceTable(t *testing.T) {
	var buf bytes.Buffer
	steps := []ipa.Step{{
		Rule:   ipa.RewriteRule{Target: "ɴ", Replacement: "m", Right: "p", Line: 31},
		Before: "saɴpo",
		After:  "sampo",
	}}
	if err := TraceTable(&buf, "saɴpo", steps); err != nil {
		t.Fatalf("TraceTable: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"(base)", "saɴpo", "ɴ -> m / _ p", "31", "sampo"} {
		if !strings.Contains(out, want) {
			t.Errorf("TraceTable output missing %q:\n%s", want, out)
		}
	}
}

func TestSpinnerWrapperNil(t *testing.T) {
	var s *SpinnerWrapper
	s.Stop()
	(&SpinnerWrapper{}).Stop()
	newUI(true, false, &bytes.Buffer{}).Spinner("loading").Stop()
}

func TestQuietStillReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	u := newUI(true, false, &buf)

	u.LineStatus(&schema.Transcription{Line: 1, Input: "k a", IPA: "ka"})
	u.Warning("interrupted")
	if buf.Len() != 0 {
		t.Errorf("quiet mode printed %q", buf.String())
	}

	u.LineStatus(&schema.Transcription{
		Line:        3,
		Input:       "Ky a",
		Error:       `unknown label "Ky" (token 1)`,
		Suggestions: []string{"ky", "ny"},
	})
	u.Error("failed to load tables")

	out := buf.String()
	for _, want := range []string{`unknown label "Ky"`, "3", "ky, ny", "failed to load tables"} {
		if !strings.Contains(out, want) {
			t.Errorf("quiet output missing %q:\n%s", want, out)
		}
	}
	if u.Progress("x", 10) != nil {
		t.Error("Progress in quiet mode should be nil")
	}
}

func TestVerboseLogsSuccess(t *testing.T) {
	var buf bytes.Buffer
	u := newUI(false, true, &buf)

	u.LineStatus(&schema.Transcription{Line: 2, Input: "k a", IPA: "ka"})
	if !strings.Contains(buf.String(), "ka") {
		t.Errorf("verbose output = %q, want the IPA", buf.String())
	}
}
