package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// ignoreSet accumulates built-in patterns, .gitignore/.muignore patterns
// encountered along the walk, and user-supplied patterns. Most-specific
// (deepest directory) wins because withFile layers a child set on top of
// its parent rather than replacing it.
type ignoreSet struct {
	parent   *ignoreSet
	patterns []string
}

func newIgnoreSet(builtin, user []string) *ignoreSet {
	all := append(append([]string{}, builtin...), user...)
	return &ignoreSet{patterns: all}
}

func (s *ignoreSet) withFile(path string) *ignoreSet {
	patterns := readIgnoreFile(path)
	if len(patterns) == 0 {
		return s
	}
	return &ignoreSet{parent: s, patterns: patterns}
}

func readIgnoreFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

func (s *ignoreSet) matchesDir(name, relPath string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return s.matches(name, relPath)
}

func (s *ignoreSet) matchesFile(name, relPath string) bool {
	return s.matches(name, relPath)
}

func (s *ignoreSet) matches(name, relPath string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		for _, p := range cur.patterns {
			if matchPattern(p, name, relPath) {
				return true
			}
		}
	}
	return false
}

func matchPattern(pattern, name, relPath string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if ok, _ := filepath.Match(pattern, name); ok {
		return true
	}
	if ok, _ := filepath.Match(pattern, relPath); ok {
		return true
	}
	return strings.Contains(relPath, pattern)
}
