// Package pathignore decides whether a path is excluded from synchronization.
//
// Two pattern lists exist per target: file patterns are matched against a
// file's base name, directory patterns against the directory's path relative
// to the source root. A pattern prefixed with the "r#" marker is a regular
// expression tested for a match anywhere in the candidate; any other pattern
// requires exact string equality. The first matching pattern wins.
package pathignore

import (
	"path/filepath"
	"regexp"
	"strings"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// RegexMarker prefixes a pattern that should be compiled as a regular expression.
const RegexMarker = "r#"

// pattern is a single pre-analyzed exclusion entry.
type pattern struct {
	literal string         // exact-match candidate; empty for regex patterns
	re      *regexp.Regexp // nil for literal patterns and for regexes that failed to compile
}

func (p pattern) matches(candidate string) bool {
	if p.re != nil {
		return p.re.MatchString(candidate)
	}
	return p.literal != "" && candidate == p.literal
}

// Matcher holds the compiled exclusion patterns for one target.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	files []pattern
	dirs  []pattern
}

// NewMatcher compiles the given file and directory pattern lists.
// A pattern carrying the regex marker that fails to compile is kept as a
// permanent non-match rather than failing the run; the problem is logged
// once here.
func NewMatcher(filePatterns, dirPatterns []string) *Matcher {
	return &Matcher{
		files: compile(filePatterns),
		dirs:  compile(dirPatterns),
	}
}

func compile(raw []string) []pattern {
	compiled := make([]pattern, 0, len(raw))
	for _, p := range raw {
		if !strings.HasPrefix(p, RegexMarker) {
			compiled = append(compiled, pattern{literal: p})
			continue
		}
		re, err := regexp.Compile(p[len(RegexMarker):])
		if err != nil {
			// Fail open: an invalid regex never matches anything.
			plog.Warn("Invalid ignore pattern, treating as non-match", "pattern", p, "error", err)
			compiled = append(compiled, pattern{})
			continue
		}
		compiled = append(compiled, pattern{re: re})
	}
	return compiled
}

// Match reports whether the entry at relPath is excluded. relPath is the
// path relative to the target's source root. Files are matched by their base
// name against the file patterns, directories by their full relative path
// (forward slashes) against the directory patterns.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	if isDir {
		candidate := filepath.ToSlash(relPath)
		for _, p := range m.dirs {
			if p.matches(candidate) {
				return true
			}
		}
		return false
	}

	candidate := filepath.Base(relPath)
	for _, p := range m.files {
		if p.matches(candidate) {
			return true
		}
	}
	return false
}
