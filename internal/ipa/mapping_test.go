package ipa

import (
	"errors"
	"testing"
)

func testMapping(t testing.TB) *MappingTable {
	t.Helper()
	m, err := NewMappingTable([]MappingEntry{
		{"ky", "kʲ"},
		{"sh", "ɕ"},
		{"ch", "tɕ"},
		{"cl", "ʔ"},
		{"k", "k"},
		{"s", "s"},
		{"p", "p"},
		{"b", "b"},
		{"t", "t"},
		{"d", "d"},
		{"w", "w"},
		{"m", "m"},
		{"r", "r"},
		{"z", "z"},
		{"h", "h"},
		{"n", "n"},
		{"N", "ɴ"},
		{"a", "a"},
		{"i", "i"},
		{"u", "ɯ"},
		{"e", "e"},
		{"o", "o"},
		{"A", "a\u0325"},
		{"I", "i\u0325"},
		{"U", "ɯ\u0325"},
		{"pau", "|"},
	})
	if err != nil {
		t.Fatalf("NewMappingTable: %v", err)
	}
	return m
}

func TestNewMappingTableDuplicate(t *testing.T) {
	_, err := NewMappingTable([]MappingEntry{
		{"a", "a"},
		{"i", "i"},
		{"a", "aː"},
	})
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("error = %v, want ErrDuplicateLabel", err)
	}
	var dup *DuplicateLabelError
	if !errors.As(err, &dup) || dup.Label != "a" {
		t.Errorf("duplicate label = %v, want %q", err, "a")
	}
}

func TestNewMappingTableCaseDistinct(t *testing.T) {
	// Labels differing only by case are separate entries, not duplicates.
	m, err := NewMappingTable([]MappingEntry{{"a", "a"}, {"A", "a\u0325"}, {"n", "n"}, {"N", "ɴ"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
}

func TestNewMappingTableRejectsBadLabels(t *testing.T) {
	tests := []struct {
		name  string
		label Label
	}{
		{"empty", ""},
		{"separator", "k a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMappingTable([]MappingEntry{{tt.label, "x"}}); err == nil {
				t.Errorf("NewMappingTable accepted label %q", tt.label)
			}
		})
	}
}

func TestNewMappingTableCanonicalSymbols(t *testing.T) {
	m, err := NewMappingTable([]MappingEntry{{"A", "\u1e01"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, _ := m.Lookup("A")
	if sym != "a\u0325" {
		t.Errorf("stored symbol = %q, want decomposed %q", sym, "a\u0325")
	}
}

func TestResolve(t *testing.T) {
	m := testMapping(t)

	tests := []struct {
		label    Label
		expected string
	}{
		{"a", "a"},
		{"A", "a\u0325"},
		{"n", "n"},
		{"N", "ɴ"},
		{"cl", "ʔ"},
		{"ch", "tɕ"},
		{"ky", "kʲ"},
		{"k", "k"},
	}

	for _, tt := range tests {
		result, err := m.Resolve(tt.label)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.label, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.label, result, tt.expected)
		}
	}
}

func TestResolveNoFolding(t *testing.T) {
	m := testMapping(t)

	// "E", "O" and "Ky" are absent; none of them may fall back to a
	// lowercase or prefix entry.
	for _, l := range []Label{"E", "O", "Ky", "KY", "c", "kya", "sh "} {
		if _, err := m.Resolve(l); !errors.Is(err, ErrUnknownLabel) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownLabel", l, err)
		}
	}
}

func TestResolveAllStopsAtFirstUnknown(t *testing.T) {
	m := testMapping(t)

	_, err := m.ResolveAll([]Label{"ky", "a", "X", "Y"})
	var unknown *UnknownLabelError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownLabelError", err)
	}
	if unknown.Label != "X" || unknown.Index != 2 {
		t.Errorf("unknown = {%q %d}, want {\"X\" 2}", unknown.Label, unknown.Index)
	}
}

func TestLabels(t *testing.T) {
	m, _ := NewMappingTable([]MappingEntry{{"o", "o"}, {"N", "ɴ"}, {"a", "a"}, {"cl", "ʔ"}})
	labels := m.Labels()
	expected := []Label{"N", "a", "cl", "o"}
	if len(labels) != len(expected) {
		t.Fatalf("Labels() = %v, want %v", labels, expected)
	}
	for i := range expected {
		if labels[i] != expected[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, labels[i], expected[i])
		}
	}
}

func BenchmarkResolve(b *testing.B) {
	m := testMapping(b)
	labels := []Label{"ky", "a", "N", "sh", "i", "cl", "k", "A"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.ResolveAll(labels)
	}
}
