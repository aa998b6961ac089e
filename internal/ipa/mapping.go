package ipa

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"jtalkipa/internal/normalizer"
)

// Label is one phoneme token. Case is significant: "a" and "A" are
// different phonemes (voiced and voiceless), as are "n" and "N".
type Label string

// MappingEntry pairs a label with its base IPA symbol.
type MappingEntry struct {
	Label  Label
	Symbol string
}

// MappingTable resolves labels to base IPA symbols. It is immutable once
// built and safe for concurrent reads.
type MappingTable struct {
	symbols map[Label]string
}

// NewMappingTable builds a table from entries. Labels must be unique,
// non-empty and free of separators. Symbols are stored in NFD form; labels
// are stored exactly as given.
func NewMappingTable(entries []MappingEntry) (*MappingTable, error) {
	symbols := make(map[Label]string, len(entries))
	for _, e := range entries {
		if e.Label == "" {
			return nil, errors.New("mapping table: empty label")
		}
		if strings.IndexByte(string(e.Label), Separator) >= 0 {
			return nil, fmt.Errorf("mapping table: label %q contains a separator", string(e.Label))
		}
		if _, ok := symbols[e.Label]; ok {
			return nil, &DuplicateLabelError{Label: e.Label}
		}
		symbols[e.Label] = normalizer.Canonical(e.Symbol)
	}
	return &MappingTable{symbols: symbols}, nil
}

// Len returns the number of entries.
func (m *MappingTable) Len() int {
	return len(m.symbols)
}

// Labels returns every label in byte order.
func (m *MappingTable) Labels() []Label {
	labels := make([]Label, 0, len(m.symbols))
	for l := range m.symbols {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Lookup returns the base symbol for label.
func (m *MappingTable) Lookup(label Label) (string, bool) {
	sym, ok := m.symbols[label]
	return sym, ok
}

// Resolve returns the base symbol for label, or an UnknownLabelError.
// Matching is whole-token and byte-exact.
func (m *MappingTable) Resolve(label Label) (string, error) {
	if sym, ok := m.symbols[label]; ok {
		return sym, nil
	}
	return "", &UnknownLabelError{Label: label}
}

// ResolveAll resolves labels in order and stops at the first unknown one.
func (m *MappingTable) ResolveAll(labels []Label) ([]string, error) {
	out := make([]string, len(labels))
	for i, l := range labels {
		sym, ok := m.symbols[l]
		if !ok {
			return nil, &UnknownLabelError{Label: l, Index: i}
		}
		out[i] = sym
	}
	return out, nil
}
