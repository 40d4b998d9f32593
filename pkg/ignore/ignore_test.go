package ignore

import (
	"strings"
	"testing"
)

func TestCompileSkipsBlanksAndComments(t *testing.T) {
	m := Compile([]string{
		"",
		"# build artifacts",
		"   ",
		"*.o",
	})
	if m.Len() != 1 {
		t.Fatalf("rules = %d, want 1", m.Len())
	}
}

func TestFloatingPatterns(t *testing.T) {
	m := Compile([]string{"*.log"})

	tests := []struct {
		path string
		want bool
	}{
		{"debug.log", true},
		{"nested/deep/trace.log", true},
		{"debug.log.bak", false},
		{"log", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.path, false); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAnchoredPatterns(t *testing.T) {
	m := Compile([]string{"/todo.txt", "doc/frotz"})

	if !m.Match("todo.txt", false) {
		t.Fatal("anchored pattern must match at the root")
	}
	if m.Match("sub/todo.txt", false) {
		t.Fatal("anchored pattern must not match below the root")
	}
	// A slash anywhere anchors, even without a leading one.
	if !m.Match("doc/frotz", true) {
		t.Fatal("doc/frotz must match at the root")
	}
	if m.Match("a/doc/frotz", true) {
		t.Fatal("doc/frotz must not float")
	}
}

func TestWildcardsStayWithinOneSegment(t *testing.T) {
	m := Compile([]string{"build/*.tmp"})

	if !m.Match("build/x.tmp", false) {
		t.Fatal("* must match within a segment")
	}
	if m.Match("build/sub/x.tmp", false) {
		t.Fatal("* must not cross a separator")
	}
}

func TestQuestionMarkAndClasses(t *testing.T) {
	m := Compile([]string{"file?.txt", "[a-c]*.go", "[!0-9]x"})

	tests := []struct {
		path string
		want bool
	}{
		{"file1.txt", true},
		{"file.txt", false},
		{"file12.txt", false},
		{"alpha.go", true},
		{"delta.go", false},
		{"zx", true},
		{"5x", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.path, false); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDoubleStar(t *testing.T) {
	m := Compile([]string{"**/node_modules", "docs/**", "a/**/b"})

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"node_modules", true, true},
		{"web/node_modules", true, true},
		{"docs", true, false},
		{"docs/index.md", false, true},
		{"docs/guide/setup.md", false, true},
		{"a/b", true, true},
		{"a/x/b", true, true},
		{"a/x/y/b", true, true},
		{"a/xb", true, false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.path, tt.isDir); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDirOnlyRules(t *testing.T) {
	m := Compile([]string{"build/"})

	if !m.Match("build", true) {
		t.Fatal("dir rule must match the directory")
	}
	if m.Match("build", false) {
		t.Fatal("dir rule must not match a plain file of the same name")
	}
	if !m.Match("build/out/app.bin", false) {
		t.Fatal("contents of an excluded directory are excluded")
	}
}

func TestNegationLastMatchWins(t *testing.T) {
	m := Compile([]string{"*.log", "!keep.log", "audit/*.log"})

	if m.Match("keep.log", false) {
		t.Fatal("later negation must re-include")
	}
	if !m.Match("debug.log", false) {
		t.Fatal("non-negated name stays excluded")
	}
	// The re-include itself loses to a later exclude.
	if !m.Match("audit/keep.log", false) {
		t.Fatal("a later exclude must override the re-include")
	}
}

func TestNegationCannotReachInsideExcludedDir(t *testing.T) {
	m := Compile([]string{"secrets/", "!secrets/readme.md"})

	if !m.Match("secrets/readme.md", false) {
		t.Fatal("an excluded ancestor directory wins over re-inclusion")
	}
}

func TestEscapes(t *testing.T) {
	m := Compile([]string{`\#notes`, `\!important`})

	if !m.Match("#notes", false) {
		t.Fatal("escaped hash must match literally")
	}
	if !m.Match("!important", false) {
		t.Fatal("escaped bang must match literally")
	}
}

func TestParseReader(t *testing.T) {
	m, err := Parse(strings.NewReader("*.tmp\n# comment\nvendor/\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("rules = %d, want 2", m.Len())
	}
	if !m.Match("a/b/c.tmp", false) {
		t.Fatal("parsed pattern must match")
	}
	if !m.Match("vendor/mod/file.go", false) {
		t.Fatal("parsed dir rule must match contents")
	}
}
