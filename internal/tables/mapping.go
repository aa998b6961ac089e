package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"jtalkipa/internal/ipa"
	"jtalkipa/internal/normalizer"
)

const (
	labelColumn  = "Orth"
	symbolColumn = "Phon"
)

// voicedVowels pairs each voiced vowel label with its voiceless label.
var voicedVowels = []struct {
	voiced, voiceless ipa.Label
}{
	{"a", "A"},
	{"i", "I"},
	{"u", "U"},
	{"e", "E"},
	{"o", "O"},
}

// LoadMapping reads a label table in CSV form. The header row must name an
// Orth (label) and a Phon (IPA) column; other columns are ignored. Labels
// are taken byte for byte.
func LoadMapping(r io.Reader) ([]ipa.MappingEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty mapping file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	labelIdx, symbolIdx := -1, -1
	for i, name := range header {
		switch name {
		case labelColumn:
			labelIdx = i
		case symbolColumn:
			symbolIdx = i
		}
	}
	if labelIdx < 0 || symbolIdx < 0 {
		return nil, fmt.Errorf("header must contain %s and %s columns, got %v", labelColumn, symbolColumn, header)
	}

	var entries []ipa.MappingEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading mapping: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if labelIdx >= len(record) || symbolIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, max(labelIdx, symbolIdx)+1, len(record))
		}
		entries = append(entries, ipa.MappingEntry{
			Label:  ipa.Label(record[labelIdx]),
			Symbol: record[symbolIdx],
		})
	}
	return entries, nil
}

// AddVoiceless appends a voiceless entry (A, I, U, E, O) for every voiced
// vowel that lacks one, marking the symbol with normalizer.Devoice.
// Entries already present win over derived ones.
func AddVoiceless(entries []ipa.MappingEntry) []ipa.MappingEntry {
	present := make(map[ipa.Label]string, len(entries))
	for _, e := range entries {
		present[e.Label] = e.Symbol
	}

	out := append([]ipa.MappingEntry(nil), entries...)
	for _, v := range voicedVowels {
		symbol, ok := present[v.voiced]
		if !ok {
			continue
		}
		if _, ok := present[v.voiceless]; ok {
			continue
		}
		out = append(out, ipa.MappingEntry{Label: v.voiceless, Symbol: normalizer.Devoice(symbol)})
	}
	return out
}
