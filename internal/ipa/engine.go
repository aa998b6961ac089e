package ipa

import (
	"strings"
	"unicode/utf8"
)

// Step records one rule application that changed the working string.
type Step struct {
	Rule   RewriteRule
	Before string
	After  string
}

// Apply runs every rule in order over text and returns the result.
//
// Each rule makes a single left-to-right pass over the string as it stood
// when the rule started. Matches and both contexts are evaluated against
// that snapshot, so a replacement never feeds the same rule again within
// its pass.
func (t *RuleTable) Apply(text string) string {
	for i := range t.rules {
		text = t.rules[i].apply(text)
	}
	return text
}

// Trace is Apply that also reports every rule that changed the string.
func (t *RuleTable) Trace(text string) (string, []Step) {
	var steps []Step
	for i := range t.rules {
		next := t.rules[i].apply(text)
		if next != text {
			steps = append(steps, Step{Rule: t.rules[i].source, Before: text, After: next})
		}
		text = next
	}
	return text, steps
}

func (c *compiledRule) apply(s string) string {
	var b strings.Builder
	changed := false

	i := 0
	for i <= len(s) {
		if src, loc := c.matchAt(s, i); loc != nil {
			if !changed {
				b.Grow(len(s))
				b.WriteString(s[:i])
				changed = true
			}
			c.write(&b, src, loc)

			// Target spans loc[2*targetIdx]..loc[2*targetIdx+1], always from 0.
			if n := loc[2*c.targetIdx+1]; n > 0 {
				i += n
				continue
			}
		}
		if i == len(s) {
			break
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		if changed {
			b.WriteString(s[i : i+size])
		}
		i += size
	}

	if !changed {
		return s
	}
	return b.String()
}

// matchAt returns submatch indices when the rule fires at byte offset i of
// the snapshot s. The indices are relative to src, which starts at i.
func (c *compiledRule) matchAt(s string, i int) (src string, loc []int) {
	src, loc = c.match.findAt(s, i)
	if loc == nil {
		return "", nil
	}
	if c.left != nil && !c.left.endsAt(s, i) {
		return "", nil
	}
	return src, loc
}

func (c *compiledRule) write(b *strings.Builder, src string, loc []int) {
	if !c.expand {
		b.WriteString(c.template)
		return
	}
	b.Write(c.pattern.ExpandString(nil, c.template, src, loc))
}
