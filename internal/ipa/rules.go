package ipa

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"

	"jtalkipa/internal/normalizer"
)

// targetGroup names the capture group wrapping a rule's target inside its
// compiled pattern. Rule text may not use it.
const targetGroup = "ipa_target"

// RewriteRule rewrites Target to Replacement where Left matches the text
// immediately before and Right the text immediately after. Empty contexts
// are unconstrained; an empty Target inserts, an empty Replacement deletes.
//
// Patterns are RE2 expressions. A "#" outside a character class marks the
// string boundary, and "::name::" expands to a symbol class. Replacement
// may reference named groups from Target or Right as ${name}.
type RewriteRule struct {
	Target      string
	Replacement string
	Left        string
	Right       string
	Line        int
}

// String renders the rule in rule-file syntax.
func (r RewriteRule) String() string {
	context := "_"
	if r.Left != "" {
		context = r.Left + " " + context
	}
	if r.Right != "" {
		context += " " + r.Right
	}
	return fmt.Sprintf("%s -> %s / %s", orZero(r.Target), orZero(r.Replacement), context)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

type compiledRule struct {
	source    RewriteRule
	match     *windowed      // ^(?P<ipa_target>T)(?:R)
	pattern   *regexp.Regexp // match.full
	left      *windowed      // (?:L)$, nil when unconstrained
	targetIdx int
	template  string
	expand    bool
}

// RuleTable is an ordered, compiled list of rewrite rules. It is immutable
// once built and safe for concurrent use.
type RuleTable struct {
	rules []compiledRule
}

// NewRuleTable compiles rules in order. classes maps a class name (without
// colons) to an alternation such as "a|e|i|o|ɯ". Every pattern problem is
// reported here as a RulePatternError, so Apply never fails.
func NewRuleTable(rules []RewriteRule, classes map[string]string) (*RuleTable, error) {
	canonClasses := make(map[string]string, len(classes))
	for name, alt := range classes {
		canonClasses[name] = normalizer.Canonical(alt)
	}

	t := &RuleTable{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		c, err := compileRule(r, canonClasses)
		if err != nil {
			return nil, &RulePatternError{Line: r.Line, Rule: r.String(), Err: err}
		}
		t.rules = append(t.rules, c)
	}
	return t, nil
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the source rules in application order.
func (t *RuleTable) Rules() []RewriteRule {
	out := make([]RewriteRule, len(t.rules))
	for i, c := range t.rules {
		out[i] = c.source
	}
	return out
}

func compileRule(r RewriteRule, classes map[string]string) (compiledRule, error) {
	target, err := expandClasses(normalizer.Canonical(r.Target), classes)
	if err != nil {
		return compiledRule{}, err
	}
	left, err := expandClasses(normalizer.Canonical(r.Left), classes)
	if err != nil {
		return compiledRule{}, err
	}
	right, err := expandClasses(normalizer.Canonical(r.Right), classes)
	if err != nil {
		return compiledRule{}, err
	}

	if err := checkTarget(target); err != nil {
		return compiledRule{}, err
	}

	expr := "^(?P<" + targetGroup + ">" + target + ")"
	if right != "" {
		expr += "(?:" + boundaries(right, "$") + ")"
	}
	match, err := compileWindowed(expr, syntax.OpEndText)
	if err != nil {
		return compiledRule{}, err
	}
	pattern := match.full

	c := compiledRule{
		source:    r,
		match:     match,
		pattern:   pattern,
		targetIdx: pattern.SubexpIndex(targetGroup),
		template:  normalizer.Canonical(r.Replacement),
	}

	names := 0
	for _, n := range pattern.SubexpNames() {
		if n == targetGroup {
			names++
		}
	}
	if names != 1 {
		return compiledRule{}, fmt.Errorf("group name %q is reserved", targetGroup)
	}

	if left != "" {
		c.left, err = compileWindowed("(?:"+boundaries(left, "^")+")$", syntax.OpBeginText)
		if err != nil {
			return compiledRule{}, err
		}
	}

	if strings.IndexByte(c.template, '$') >= 0 {
		if err := checkTemplate(c.template, pattern); err != nil {
			return compiledRule{}, err
		}
		c.expand = true
	}

	return c, nil
}

// checkTarget rejects string boundaries in a target. The target is matched
// at every position, so a boundary belongs in the left or right context.
func checkTarget(target string) error {
	if boundaries(target, "") != target {
		return errors.New("# is only allowed in the left or right context")
	}
	re, err := syntax.Parse(target, syntax.Perl)
	if err != nil {
		return err
	}
	if hasAnchor(re) {
		return errors.New("anchors are only allowed in the left or right context")
	}
	return nil
}

func hasAnchor(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginText, syntax.OpEndText, syntax.OpBeginLine, syntax.OpEndLine:
		return true
	}
	for _, sub := range re.Sub {
		if hasAnchor(sub) {
			return true
		}
	}
	return false
}

// expandClasses replaces ::name:: with a non-capturing group of the class
// alternatives.
func expandClasses(pattern string, classes map[string]string) (string, error) {
	if !strings.Contains(pattern, "::") {
		return pattern, nil
	}

	var b strings.Builder
	rest := pattern
	for {
		start := strings.Index(rest, "::")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "::")
		if end < 0 {
			return "", errors.New("unterminated symbol class")
		}
		name := rest[start+2 : start+2+end]
		alt, ok := classes[name]
		if !ok {
			return "", fmt.Errorf("undefined symbol class ::%s::", name)
		}
		b.WriteString(rest[:start])
		b.WriteString("(?:" + alt + ")")
		rest = rest[start+2+end+2:]
	}
	return b.String(), nil
}

// boundaries rewrites every "#" outside escapes and character classes to
// anchor.
func boundaries(pattern, anchor string) string {
	if !strings.Contains(pattern, "#") {
		return pattern
	}

	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			b.WriteByte(ch)
			i++
			b.WriteByte(pattern[i])
			continue
		case ch == '[' && !inClass:
			inClass = true
		case ch == ']' && inClass:
			inClass = false
		case ch == '#' && !inClass:
			b.WriteString(anchor)
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// checkTemplate verifies that every $-reference in a replacement names a
// group of the compiled pattern.
func checkTemplate(template string, pattern *regexp.Regexp) error {
	known := make(map[string]bool)
	for _, n := range pattern.SubexpNames() {
		if n != "" {
			known[n] = true
		}
	}

	for i := 0; i < len(template); i++ {
		if template[i] != '$' {
			continue
		}
		if i+1 >= len(template) {
			return errors.New("dangling $ in replacement")
		}
		var name string
		switch template[i+1] {
		case '$':
			i++
			continue
		case '{':
			end := strings.IndexByte(template[i+2:], '}')
			if end < 0 {
				return errors.New("unterminated ${ in replacement")
			}
			name = template[i+2 : i+2+end]
			i += 2 + end
		default:
			j := i + 1
			for j < len(template) && isGroupNameByte(template[j]) {
				j++
			}
			name = template[i+1 : j]
			i = j - 1
		}
		if name == "" {
			return errors.New("empty group reference in replacement")
		}
		if isDigits(name) {
			if n, _ := strconv.Atoi(name); n > pattern.NumSubexp() {
				return fmt.Errorf("replacement references group %s, pattern has %d", name, pattern.NumSubexp())
			}
			continue
		}
		if !known[name] {
			return fmt.Errorf("replacement references unknown group %q", name)
		}
	}
	return nil
}

func isGroupNameByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
