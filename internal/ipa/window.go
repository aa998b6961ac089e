package ipa

import (
	"regexp"
	"regexp/syntax"
	"unicode/utf8"
)

// maxWindow is the longest match, in bytes, for which a context pattern is
// run on a slice around the current position instead of the whole
// remainder or prefix of the snapshot.
const maxWindow = 256

// windowed is a compiled context pattern. When every match of the pattern
// is at most width bytes long, window is a copy in which one string
// boundary assertion never matches, so it can run on a slice of the
// snapshot that stops short of that boundary. Patterns with unbounded
// repetition or line and word assertions only have full.
type windowed struct {
	full   *regexp.Regexp
	window *regexp.Regexp
	width  int
}

// compileWindowed compiles expr. boundary is the assertion a window cannot
// see: syntax.OpEndText for patterns matched forward from a position,
// syntax.OpBeginText for patterns that must end at a position.
func compileWindowed(expr string, boundary syntax.Op) (*windowed, error) {
	full, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	w := &windowed{full: full}

	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil, err
	}
	width, ok := maxWidth(re)
	if !ok || width > maxWindow {
		return w, nil
	}
	window, err := regexp.Compile(withoutOp(re, boundary).String())
	if err != nil {
		return w, nil
	}
	w.window, w.width = window, width
	return w, nil
}

// findAt matches the pattern at byte offset i of s. The returned indices
// are relative to the returned string, which starts at i.
func (w *windowed) findAt(s string, i int) (string, []int) {
	if w.window != nil {
		if end := runeEnd(s, i+w.width); end < len(s) {
			src := s[i:end]
			return src, w.window.FindStringSubmatchIndex(src)
		}
	}
	src := s[i:]
	return src, w.full.FindStringSubmatchIndex(src)
}

// endsAt reports whether the pattern, which must end in $, matches text
// ending at byte offset i of s.
func (w *windowed) endsAt(s string, i int) bool {
	if w.window != nil {
		if start := runeStart(s, i-w.width); start > 0 {
			return w.window.MatchString(s[start:i])
		}
	}
	return w.full.MatchString(s[:i])
}

func runeEnd(s string, end int) int {
	if end >= len(s) {
		return len(s)
	}
	for end < len(s) && !utf8.RuneStart(s[end]) {
		end++
	}
	return end
}

func runeStart(s string, start int) int {
	if start <= 0 {
		return 0
	}
	for start > 0 && !utf8.RuneStart(s[start]) {
		start--
	}
	return start
}

// maxWidth returns the longest match of re in bytes. ok is false for
// unbounded repetition and for assertions that look past the match.
func maxWidth(re *syntax.Regexp) (n int, ok bool) {
	switch re.Op {
	case syntax.OpNoMatch, syntax.OpEmptyMatch, syntax.OpBeginText, syntax.OpEndText:
		return 0, true
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if l := utf8.RuneLen(r); l > 0 && re.Flags&syntax.FoldCase == 0 {
				n += l
			} else {
				n += utf8.UTFMax
			}
		}
		return n, true
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return utf8.UTFMax, true
	case syntax.OpCapture, syntax.OpQuest:
		return maxWidth(re.Sub[0])
	case syntax.OpRepeat:
		if re.Max < 0 {
			return 0, false
		}
		n, ok = maxWidth(re.Sub[0])
		return n * re.Max, ok
	case syntax.OpConcat, syntax.OpAlternate:
		for _, sub := range re.Sub {
			m, ok := maxWidth(sub)
			if !ok {
				return 0, false
			}
			if re.Op == syntax.OpConcat {
				n += m
			} else {
				n = max(n, m)
			}
		}
		return n, true
	}
	return 0, false
}

// withoutOp returns a copy of re in which every op node never matches.
func withoutOp(re *syntax.Regexp, op syntax.Op) *syntax.Regexp {
	if re.Op == op {
		return &syntax.Regexp{Op: syntax.OpNoMatch}
	}
	cp := *re
	cp.Sub = make([]*syntax.Regexp, len(re.Sub))
	for i, sub := range re.Sub {
		cp.Sub[i] = withoutOp(sub, op)
	}
	return &cp
}
