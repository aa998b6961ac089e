package ipa

import (
	"errors"
	"fmt"
)

// Error classes. Callers match them with errors.Is; the typed errors below
// carry the detail.
var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrUnknownLabel       = errors.New("unknown label")
	ErrInvalidRulePattern = errors.New("invalid rule pattern")
	ErrDuplicateLabel     = errors.New("duplicate label")
)

// MalformedInputError reports input the tokenizer could not split.
type MalformedInputError struct {
	Offset int // byte offset of the offending separator, -1 for empty input
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s at offset %d", ErrMalformedInput, e.Reason, e.Offset)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// UnknownLabelError reports a token with no mapping table entry.
type UnknownLabelError struct {
	Label Label
	Index int // position of the token in the input sequence
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("%s %q (token %d)", ErrUnknownLabel, string(e.Label), e.Index)
}

func (e *UnknownLabelError) Unwrap() error {
	return ErrUnknownLabel
}

// RulePatternError reports a rewrite rule that failed to compile.
type RulePatternError struct {
	Line int    // source line, 0 when the rule was built in memory
	Rule string // rule in target -> replacement / left _ right form
	Err  error
}

func (e *RulePatternError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s: %v", ErrInvalidRulePattern, e.Line, e.Rule, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInvalidRulePattern, e.Rule, e.Err)
}

func (e *RulePatternError) Unwrap() []error {
	return []error{ErrInvalidRulePattern, e.Err}
}

// DuplicateLabelError reports a label defined twice in one mapping table.
type DuplicateLabelError struct {
	Label Label
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("%s %q", ErrDuplicateLabel, string(e.Label))
}

func (e *DuplicateLabelError) Unwrap() error {
	return ErrDuplicateLabel
}

// IsUnknownLabel returns the offending label when err is an UnknownLabelError.
func IsUnknownLabel(err error) (Label, bool) {
	var unknown *UnknownLabelError
	if errors.As(err, &unknown) {
		return unknown.Label, true
	}
	return "", false
}
