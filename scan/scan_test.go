package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, LangGo, LanguageFor("main.go"))
	assert.Equal(t, LangPython, LanguageFor("app.py"))
	assert.Equal(t, LangTypeScript, LanguageFor("component.tsx"))
	assert.Equal(t, LangJavaScript, LanguageFor("index.js"))
	assert.Equal(t, LangJava, LanguageFor("Main.java"))
	assert.Equal(t, LangRust, LanguageFor("lib.rs"))
	assert.Equal(t, LangCSharp, LanguageFor("Program.cs"))
	assert.Equal(t, LangUnknown, LanguageFor("README.md"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanSkipsBuiltinIgnoreDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "vendor", "dep.go"), "package dep\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "console.log(1)\n")

	s := New()
	res, err := s.Scan(context.Background(), root, Options{})
	require.NoError(t, err)

	var paths []string
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, filepath.Join(root, "main.go"))
	assert.NotContains(t, paths, filepath.Join(root, "vendor", "dep.go"))
	assert.NotContains(t, paths, filepath.Join(root, "node_modules", "pkg", "index.js"))
}

func TestScanSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 5*1024)
	writeFile(t, filepath.Join(root, "big.go"), string(big))

	s := New()
	res, err := s.Scan(context.Background(), root, Options{MaxFileSizeKB: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "exceeds max_file_size_kb", res.Skipped[0].Reason)
}

func TestScanIgnoresUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "hello\n")

	s := New()
	res, err := s.Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestScanComputesHashAndLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")

	s := New()
	res, err := s.Scan(context.Background(), root, Options{ComputeHash: true, CountLines: true})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.NotEmpty(t, res.Files[0].Hash)
	assert.Equal(t, 3, res.Files[0].Lines)
}

func TestScanRespectsUserIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package main\n")
	writeFile(t, filepath.Join(root, "generated.go"), "package main\n")

	s := New()
	res, err := s.Scan(context.Background(), root, Options{IgnorePatterns: []string{"generated.go"}})
	require.NoError(t, err)

	var names []string
	for _, f := range res.Files {
		names = append(names, filepath.Base(f.Path))
	}
	assert.Contains(t, names, "keep.go")
	assert.NotContains(t, names, "generated.go")
}
