package tables

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"jtalkipa/internal/ipa"
)

// longMark is the IPA length mark.
const longMark = "ː"

// emptyMarker stands for an empty target or replacement in rule files.
const emptyMarker = "0"

var classLine = regexp.MustCompile(`^::(\w+)::\s*=\s*(\S+)$`)

// RuleSet is a parsed rule file: symbol classes plus rules in file order.
type RuleSet struct {
	Classes map[string]string
	Rules   []ipa.RewriteRule
}

// ParseRules reads a rule file.
//
//	% comment
//	::vowel:: = a|i|ɯ|e|o
//	target -> replacement / left _ right
//
// 0 as target or replacement means the empty string, and the "/ left _
// right" part may be omitted. Patterns are only checked for shape here;
// Compile reports regular expression errors.
func ParseRules(r io.Reader) (*RuleSet, error) {
	set := &RuleSet{Classes: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		if strings.HasPrefix(line, "::") {
			m := classLine.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: malformed class definition %q", lineNum, line)
			}
			if _, dup := set.Classes[m[1]]; dup {
				return nil, fmt.Errorf("line %d: class ::%s:: defined twice", lineNum, m[1])
			}
			set.Classes[m[1]] = m[2]
			continue
		}

		rule, err := parseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rule.Line = lineNum
		set.Rules = append(set.Rules, rule)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading rules: %w", err)
	}
	return set, nil
}

func parseRule(line string) (ipa.RewriteRule, error) {
	arrow := strings.Index(line, "->")
	if arrow < 0 {
		return ipa.RewriteRule{}, fmt.Errorf("missing -> in %q", line)
	}
	target := strings.TrimSpace(line[:arrow])
	rest := line[arrow+2:]

	context := ""
	if slash := strings.Index(rest, "/"); slash >= 0 {
		context = rest[slash+1:]
		rest = rest[:slash]
	}
	replacement := strings.TrimSpace(rest)

	if target == "" || replacement == "" || strings.ContainsAny(target+replacement, " \t") {
		return ipa.RewriteRule{}, fmt.Errorf("expected \"target -> replacement\" in %q", line)
	}

	rule := ipa.RewriteRule{
		Target:      fromMarker(target),
		Replacement: fromMarker(replacement),
	}

	if context == "" {
		return rule, nil
	}

	fields := strings.Fields(context)
	focus := -1
	for i, f := range fields {
		if f == "_" {
			if focus >= 0 {
				return ipa.RewriteRule{}, fmt.Errorf("more than one _ in context of %q", line)
			}
			focus = i
		}
	}
	if focus < 0 || focus > 1 || len(fields)-focus > 2 {
		return ipa.RewriteRule{}, fmt.Errorf("expected \"left _ right\" context in %q", line)
	}
	if focus == 1 {
		rule.Left = fields[0]
	}
	if focus+1 < len(fields) {
		rule.Right = fields[focus+1]
	}
	return rule, nil
}

func fromMarker(s string) string {
	if s == emptyMarker {
		return ""
	}
	return s
}

// Compile builds the rule table.
func (s *RuleSet) Compile() (*ipa.RuleTable, error) {
	return ipa.NewRuleTable(s.Rules, s.Classes)
}

// WithoutLongVowels returns a copy with every rule that produces a length
// mark removed, and length-marked alternatives dropped from the classes.
// A class whose alternatives would all be dropped is kept as is.
func (s *RuleSet) WithoutLongVowels() *RuleSet {
	out := &RuleSet{Classes: make(map[string]string, len(s.Classes))}

	for name, alt := range s.Classes {
		var kept []string
		for _, part := range strings.Split(alt, "|") {
			if !strings.Contains(part, longMark) {
				kept = append(kept, part)
			}
		}
		if len(kept) == 0 {
			out.Classes[name] = alt
			continue
		}
		out.Classes[name] = strings.Join(kept, "|")
	}

	for _, r := range s.Rules {
		if strings.Contains(r.Replacement, longMark) {
			continue
		}
		out.Rules = append(out.Rules, r)
	}
	return out
}
