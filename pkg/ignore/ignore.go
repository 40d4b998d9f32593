// Package ignore implements gitignore-style path matching: anchored and
// floating patterns, `*`, `?` and `[...]` wildcards, `**` directory
// globs, trailing-slash directory-only rules and `!` re-inclusion with
// last-match-wins ordering.
package ignore

import (
	"bufio"
	"io"
	"strings"
)

// Rule is one compiled pattern line.
type Rule struct {
	raw      string
	segments []string
	negate   bool
	dirOnly  bool
}

// Raw returns the pattern text the rule was compiled from.
func (r *Rule) Raw() string { return r.raw }

// Negated reports whether the rule re-includes instead of excluding.
func (r *Rule) Negated() bool { return r.negate }

// ParseLine compiles a single pattern line. Blank lines and `#` comments
// compile to nil. Escape `#` or `!` with a backslash to match them
// literally.
func ParseLine(line string) *Rule {
	raw := line
	line = trimTrailingSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	rule := &Rule{raw: raw}

	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// A slash anywhere in the body anchors the pattern to the root;
	// otherwise it floats and matches at any depth.
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}

	rule.segments = strings.Split(line, "/")
	if !anchored {
		rule.segments = append([]string{"**"}, rule.segments...)
	}
	return rule
}

// Matches reports whether the rule applies to the slash-separated
// relative path.
func (r *Rule) Matches(path string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	return matchSegments(r.segments, strings.Split(path, "/"))
}

// Matcher is an ordered rule list. Later rules override earlier ones.
type Matcher struct {
	rules []*Rule
}

// Compile builds a matcher from pattern lines, skipping blanks and
// comments.
func Compile(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		if rule := ParseLine(line); rule != nil {
			m.rules = append(m.rules, rule)
		}
	}
	return m
}

// Parse reads pattern lines from r, one per line.
func Parse(r io.Reader) (*Matcher, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Compile(lines), nil
}

// Len returns the number of compiled rules.
func (m *Matcher) Len() int { return len(m.rules) }

// Match reports whether the slash-separated relative path is ignored.
// An excluded ancestor directory excludes everything beneath it; a `!`
// rule cannot reach back inside an excluded directory.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = strings.Trim(path, "/")
	if path == "" || path == "." {
		return false
	}

	segs := strings.Split(path, "/")
	for i := 1; i < len(segs); i++ {
		if m.matchOne(strings.Join(segs[:i], "/"), true) {
			return true
		}
	}
	return m.matchOne(path, isDir)
}

func (m *Matcher) matchOne(path string, isDir bool) bool {
	ignored := false
	for _, rule := range m.rules {
		if rule.Matches(path, isDir) {
			ignored = !rule.negate
		}
	}
	return ignored
}

// matchSegments aligns pattern segments against path segments. `**`
// spans zero or more path segments, except a trailing `**` which only
// matches inside a directory, never the directory itself.
func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		if len(pattern) == 1 {
			return len(path) > 0
		}
		if matchSegments(pattern[1:], path) {
			return true
		}
		if len(path) > 0 {
			return matchSegments(pattern, path[1:])
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	return matchSegment(pattern[0], path[0]) && matchSegments(pattern[1:], path[1:])
}

// matchSegment matches one pattern segment against one path segment.
// `*` and `?` never cross a separator because segments are split first.
func matchSegment(pattern, name string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchSegment(pattern, name[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(name) == 0 {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		case '[':
			if len(name) == 0 {
				return false
			}
			ok, rest := matchClass(pattern, name[0])
			if rest == "" {
				// Unterminated class: treat the bracket literally.
				if name[0] != '[' {
					return false
				}
				pattern, name = pattern[1:], name[1:]
				continue
			}
			if !ok {
				return false
			}
			pattern, name = rest, name[1:]
		case '\\':
			if len(pattern) < 2 {
				return false
			}
			if len(name) == 0 || name[0] != pattern[1] {
				return false
			}
			pattern, name = pattern[2:], name[1:]
		default:
			if len(name) == 0 || name[0] != pattern[0] {
				return false
			}
			pattern, name = pattern[1:], name[1:]
		}
	}
	return len(name) == 0
}

// matchClass evaluates a `[...]` class against c. It returns whether c
// is in the class and the pattern remainder past the closing bracket,
// or an empty remainder when the class never closes.
func matchClass(pattern string, c byte) (bool, string) {
	i := 1
	negate := false
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		negate = true
		i++
	}

	matched := false
	first := true
	for i < len(pattern) {
		if pattern[i] == ']' && !first {
			if negate {
				matched = !matched
			}
			return matched, pattern[i+1:]
		}
		first = false

		lo := pattern[i]
		if lo == '\\' && i+1 < len(pattern) {
			i++
			lo = pattern[i]
		}
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			hi := pattern[i+2]
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if c == lo {
			matched = true
		}
		i++
	}
	return false, ""
}

func trimTrailingSpace(line string) string {
	for strings.HasSuffix(line, " ") && !strings.HasSuffix(line, `\ `) {
		line = strings.TrimSuffix(line, " ")
	}
	return strings.ReplaceAll(line, `\ `, " ")
}
