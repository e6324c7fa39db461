// Package project detects a codebase's root directory and its declared
// name by walking up from a starting path looking for marker files, per
// SPEC_FULL.md §6.1's project-root resolution.
package project

import (
	"os"
	"path/filepath"
	"regexp"
)

// Info describes a detected project.
type Info struct {
	RootPath string // absolute path to the detected root, or the starting path if none found
	Type     string // go, javascript, java, python, rust, git, unknown
	Name     string // best-effort name extracted from the matching marker file
}

var markers = []string{"go.mod", "package.json", "pom.xml", "build.gradle", "pyproject.toml", "requirements.txt", "Cargo.toml", ".git"}

func typeFor(marker string) string {
	switch marker {
	case "go.mod":
		return "go"
	case "package.json":
		return "javascript"
	case "pom.xml", "build.gradle":
		return "java"
	case "pyproject.toml", "requirements.txt":
		return "python"
	case "Cargo.toml":
		return "rust"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}

// Detect walks up from path looking for the nearest marker file/directory.
// If none is found, it returns path itself with Type "unknown" rather than
// an error, since a bare directory with no project marker is still a valid
// --path target (spec §6.1 edge case).
func Detect(path string) (*Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		abs = filepath.Dir(abs)
	}

	dir := abs
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return &Info{RootPath: dir, Type: typeFor(marker), Name: extractName(dir, marker)}, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return &Info{RootPath: abs, Type: "unknown", Name: filepath.Base(abs)}, nil
}

func extractName(root, marker string) string {
	switch marker {
	case "go.mod":
		return regexMatch(filepath.Join(root, marker), `module\s+(\S+)`, filepath.Base(root))
	case "package.json":
		return regexMatch(filepath.Join(root, marker), `"name"\s*:\s*"([^"]+)"`, filepath.Base(root))
	case "pom.xml":
		return regexMatch(filepath.Join(root, marker), `<artifactId>([^<]+)</artifactId>`, filepath.Base(root))
	case "build.gradle":
		return regexMatch(filepath.Join(root, marker), `(?:rootProject|project)\.name\s*=\s*['"]([^'"]+)['"]`, filepath.Base(root))
	case "pyproject.toml":
		return regexMatch(filepath.Join(root, marker), `(?:tool\.poetry|project)\.name\s*=\s*["']([^"']+)["']`, filepath.Base(root))
	case "Cargo.toml":
		return regexMatch(filepath.Join(root, marker), `\[package\](?:.|\n)*?name\s*=\s*["']([^"']+)["']`, filepath.Base(root))
	default:
		return filepath.Base(root)
	}
}

func regexMatch(path, pattern, fallback string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	matches := regexp.MustCompile(pattern).FindSubmatch(data)
	if len(matches) < 2 {
		return fallback
	}
	return string(matches[1])
}
