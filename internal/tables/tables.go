// Package tables loads the mapping and rule tables the transliterator runs
// on: the embedded OpenJTalk defaults or user-supplied replacement files.
package tables

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"jtalkipa/internal/ipa"
)

//go:embed data/openjtalk_to_ipa.csv
var defaultMapping []byte

//go:embed data/openjtalk_postprocess.txt
var defaultRules []byte

// Options selects variants of the rule set.
type Options struct {
	// LongVowels keeps the vowel-length merges (aa -> aː and friends).
	// OpenJTalk output marks length with repeated vowels, so they are off
	// by default.
	LongVowels bool
}

// Default builds a transliterator from the embedded tables.
func Default(opts Options) (*ipa.Transliterator, error) {
	return build(bytes.NewReader(defaultMapping), bytes.NewReader(defaultRules), opts)
}

// DefaultMapping returns the embedded mapping table.
func DefaultMapping() (*ipa.MappingTable, error) {
	entries, err := LoadMapping(bytes.NewReader(defaultMapping))
	if err != nil {
		return nil, err
	}
	return ipa.NewMappingTable(AddVoiceless(entries))
}

// DefaultRules returns the embedded rule set, filtered per opts.
func DefaultRules(opts Options) (*RuleSet, error) {
	set, err := ParseRules(bytes.NewReader(defaultRules))
	if err != nil {
		return nil, err
	}
	if !opts.LongVowels {
		set = set.WithoutLongVowels()
	}
	return set, nil
}

// FromFiles builds a transliterator from a mapping CSV and a rule file.
// An empty path falls back to the embedded table for that half.
func FromFiles(mapPath, rulesPath string, opts Options) (*ipa.Transliterator, error) {
	var mapR, rulesR io.Reader = bytes.NewReader(defaultMapping), bytes.NewReader(defaultRules)

	if mapPath != "" {
		f, err := os.Open(mapPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open mapping file: %w", err)
		}
		defer f.Close()
		mapR = f
	}
	if rulesPath != "" {
		f, err := os.Open(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open rules file: %w", err)
		}
		defer f.Close()
		rulesR = f
	}

	return build(mapR, rulesR, opts)
}

func build(mapR, rulesR io.Reader, opts Options) (*ipa.Transliterator, error) {
	entries, err := LoadMapping(mapR)
	if err != nil {
		return nil, fmt.Errorf("mapping: %w", err)
	}
	mapping, err := ipa.NewMappingTable(AddVoiceless(entries))
	if err != nil {
		return nil, fmt.Errorf("mapping: %w", err)
	}

	set, err := ParseRules(rulesR)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if !opts.LongVowels {
		set = set.WithoutLongVowels()
	}
	rules, err := set.Compile()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	return ipa.New(mapping, rules), nil
}
