package pathignore

import "testing"

func TestMatchFiles(t *testing.T) {
	testCases := []struct {
		name     string
		patterns []string
		relPath  string
		expected bool
	}{
		{"literal base name match", []string{"secret.txt"}, "docs/secret.txt", true},
		{"literal requires full equality", []string{"secret"}, "docs/secret.txt", false},
		{"no patterns", nil, "a.txt", false},
		{"regex suffix match", []string{`r#\.log$`}, "logs/app.log", true},
		{"regex non-match", []string{`r#\.log$`}, "logs/app.logx", false},
		{"regex matches anywhere", []string{"r#tmp"}, "a.tmp.txt", true},
		{"invalid regex is a non-match", []string{"r#(["}, "([", false},
		{"first match wins among several", []string{"nope", `r#^a`, "also-nope"}, "abc", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher(tc.patterns, nil)
			if got := m.Match(tc.relPath, false); got != tc.expected {
				t.Errorf("Match(%q, false) = %v, want %v", tc.relPath, got, tc.expected)
			}
		})
	}
}

func TestMatchDirs(t *testing.T) {
	testCases := []struct {
		name     string
		patterns []string
		relPath  string
		expected bool
	}{
		{"literal relative path match", []string{"node_modules"}, "node_modules", true},
		{"nested dir must match full relative path", []string{"node_modules"}, "src/node_modules", false},
		{"nested literal", []string{"src/node_modules"}, "src/node_modules", true},
		{"regex anywhere in relative path", []string{"r#node_modules"}, "src/node_modules/lib", true},
		{"dir patterns do not apply to files", []string{"build"}, "build", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher(nil, tc.patterns)
			isDir := tc.name != "dir patterns do not apply to files"
			if got := m.Match(tc.relPath, isDir); got != tc.expected {
				t.Errorf("Match(%q, %v) = %v, want %v", tc.relPath, isDir, got, tc.expected)
			}
		})
	}
}

func TestMatchIsPure(t *testing.T) {
	m := NewMatcher([]string{`r#\.log$`, "exact.txt"}, []string{"r#cache"})

	inputs := []struct {
		relPath string
		isDir   bool
	}{
		{"a.log", false},
		{"exact.txt", false},
		{"other.txt", false},
		{"deep/cache/dir", true},
	}

	for _, in := range inputs {
		first := m.Match(in.relPath, in.isDir)
		for i := 0; i < 3; i++ {
			if got := m.Match(in.relPath, in.isDir); got != first {
				t.Fatalf("Match(%q, %v) changed between calls: %v then %v", in.relPath, in.isDir, first, got)
			}
		}
	}
}
