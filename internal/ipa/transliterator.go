// Package ipa converts OpenJTalk phoneme label sequences to IPA.
//
// Conversion has two stages: each label is resolved to a base symbol by
// exact lookup in a MappingTable, then the concatenated symbols are
// rewritten by an ordered RuleTable into their surface form.
package ipa

import (
	"strings"
)

// Transliterator composes a mapping table and a rule table. The tables are
// read-only, so one Transliterator may serve any number of goroutines.
type Transliterator struct {
	mapping *MappingTable
	rules   *RuleTable
}

// New creates a transliterator over the given tables. A nil rule table
// means no postprocessing.
func New(mapping *MappingTable, rules *RuleTable) *Transliterator {
	if rules == nil {
		rules = &RuleTable{}
	}
	return &Transliterator{mapping: mapping, rules: rules}
}

// Transliterate is a one-off conversion with explicit tables.
func Transliterate(input string, mapping *MappingTable, rules *RuleTable) (string, error) {
	return New(mapping, rules).Transliterate(input)
}

// Transliterate converts a space-delimited label sequence to IPA. Errors
// come from tokenization or label resolution; no partial output is
// returned.
func (t *Transliterator) Transliterate(input string) (string, error) {
	labels, err := Tokenize(input)
	if err != nil {
		return "", err
	}
	return t.TransliterateLabels(labels)
}

// TransliterateLabels converts an already tokenized sequence.
func (t *Transliterator) TransliterateLabels(labels []Label) (string, error) {
	base, err := t.base(labels)
	if err != nil {
		return "", err
	}
	return t.rules.Apply(base), nil
}

// Trace converts input and also returns the base string and every rule
// application that changed it.
func (t *Transliterator) Trace(input string) (string, string, []Step, error) {
	labels, err := Tokenize(input)
	if err != nil {
		return "", "", nil, err
	}
	base, err := t.base(labels)
	if err != nil {
		return "", "", nil, err
	}
	out, steps := t.rules.Trace(base)
	return out, base, steps, nil
}

// Segment is one label with the base symbol it resolved to.
type Segment struct {
	Label  Label
	Symbol string
}

// Align resolves each label of input without applying rules.
func (t *Transliterator) Align(input string) ([]Segment, error) {
	labels, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	symbols, err := t.mapping.ResolveAll(labels)
	if err != nil {
		return nil, err
	}
	segments := make([]Segment, len(labels))
	for i := range labels {
		segments[i] = Segment{Label: labels[i], Symbol: symbols[i]}
	}
	return segments, nil
}

// Mapping returns the mapping table.
func (t *Transliterator) Mapping() *MappingTable {
	return t.mapping
}

// Rules returns the rule table.
func (t *Transliterator) Rules() *RuleTable {
	return t.rules
}

func (t *Transliterator) base(labels []Label) (string, error) {
	symbols, err := t.mapping.ResolveAll(labels)
	if err != nil {
		return "", err
	}
	return strings.Join(symbols, ""), nil
}
