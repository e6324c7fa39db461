// Package scan walks a root path honoring ignore rules and classifies files
// by language, per SPEC_FULL.md §4.1.
package scan

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/viant/afs"

	"github.com/mu-graph/mu/errs"
)

// Language is the closed set of languages the Extractors understand.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangRust       Language = "rust"
	LangCSharp     Language = "csharp"
	LangUnknown    Language = ""
)

var extToLang = map[string]Language{
	".py":    LangPython,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".go":    LangGo,
	".rs":    LangRust,
	".java":  LangJava,
	".cs":    LangCSharp,
}

// LanguageFor resolves a Language from a file extension, per the fixed table
// of spec §4.1.
func LanguageFor(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	return extToLang[ext]
}

// builtinIgnore mirrors the built-in ignore list: VCS directories, common
// build/cache directories, hidden directories.
var builtinIgnore = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor", "dist", "build", "target", "__pycache__",
	".mu", ".cache",
}

// ScannedFile is one file surviving the ignore/size filters.
type ScannedFile struct {
	Path      string
	Language  Language
	SizeBytes int64
	Hash      string
	Lines     int
}

// Skipped records a file that was filtered out, with the reason.
type Skipped struct {
	Path   string
	Reason string
}

// Result is the Scanner's output, per spec §4.1.
type Result struct {
	Files    []ScannedFile
	Skipped  []Skipped
	Errors   []error
	Duration time.Duration
}

// Options configures a single scan.
type Options struct {
	Extensions      []string // restrict to these extensions; empty = all known
	IgnorePatterns  []string // extra user-supplied glob patterns
	FollowSymlinks  bool
	ComputeHash     bool
	CountLines      bool
	MaxFileSizeKB   int // 0 = unlimited
	Workers         int // 0 = runtime.NumCPU()
}

// Scanner walks a root directory applying ignore rules built from built-ins,
// .gitignore/.muignore files encountered on the walk, and user patterns.
type Scanner struct {
	fs afs.Service
}

// New creates a Scanner backed by afs, so the same walk logic later serves
// non-local roots without a contract change.
func New() *Scanner {
	return &Scanner{fs: afs.New()}
}

// Scan walks root and returns every surviving file, never aborting on a
// per-file error (spec §4.1 failure semantics).
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	ignore := newIgnoreSet(builtinIgnore, opts.IgnorePatterns)

	var (
		mu      sync.Mutex
		result  = &Result{}
		visited = map[string]bool{} // resolved-path dedup for symlink cycles
		wg      sync.WaitGroup
		sem     = make(chan struct{}, opts.Workers)
	)

	var walk func(dir string, ig *ignoreSet)
	walk = func(dir string, ig *ignoreSet) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, errs.Wrap(errs.IO, "cannot read directory", err).WithPath(dir, 0))
			mu.Unlock()
			return
		}

		localIgnore := ig
		for _, name := range []string{".gitignore", ".muignore"} {
			if p := filepath.Join(dir, name); fileExists(p) {
				localIgnore = localIgnore.withFile(p)
			}
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, _ := filepath.Rel(root, full)

			if entry.IsDir() {
				if localIgnore.matchesDir(entry.Name(), rel) {
					continue
				}
				wg.Add(1)
				sem <- struct{}{}
				go func(d string, ig *ignoreSet) {
					defer wg.Done()
					defer func() { <-sem }()
					walk(d, ig)
				}(full, localIgnore)
				continue
			}

			if entry.Type()&os.ModeSymlink != 0 {
				if !opts.FollowSymlinks {
					continue
				}
				real, err := filepath.EvalSymlinks(full)
				if err != nil {
					continue
				}
				mu.Lock()
				seen := visited[real]
				if !seen {
					visited[real] = true
				}
				mu.Unlock()
				if seen {
					continue
				}
			}

			if localIgnore.matchesFile(entry.Name(), rel) {
				continue
			}

			lang := LanguageFor(entry.Name())
			if lang == LangUnknown {
				continue
			}
			if len(opts.Extensions) > 0 && !containsExt(opts.Extensions, filepath.Ext(entry.Name())) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, errs.Wrap(errs.IO, "cannot stat file", err).WithPath(full, 0))
				mu.Unlock()
				continue
			}

			if opts.MaxFileSizeKB > 0 && info.Size() > int64(opts.MaxFileSizeKB)*1024 {
				mu.Lock()
				result.Skipped = append(result.Skipped, Skipped{Path: full, Reason: "exceeds max_file_size_kb"})
				mu.Unlock()
				continue
			}

			sf := ScannedFile{Path: full, Language: lang, SizeBytes: info.Size()}
			if opts.ComputeHash || opts.CountLines {
				data, err := os.ReadFile(full)
				if err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, errs.Wrap(errs.IO, "cannot read file", err).WithPath(full, 0))
					mu.Unlock()
					continue
				}
				if !isUTF8(data) {
					mu.Lock()
					result.Skipped = append(result.Skipped, Skipped{Path: full, Reason: "not valid UTF-8"})
					mu.Unlock()
					continue
				}
				if opts.ComputeHash {
					sf.Hash = hashHex(data)
				}
				if opts.CountLines {
					sf.Lines = countLines(data)
				}
			}

			mu.Lock()
			result.Files = append(result.Files, sf)
			mu.Unlock()
		}
	}

	walk(root, ignore)
	wg.Wait()

	result.Duration = time.Since(start)
	return result, nil
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bufio.NewScanner(strings.NewReader(string(data)))
	count := 0
	for n.Scan() {
		count++
	}
	return count
}

func isUTF8(data []byte) bool {
	return utf8.Valid(data)
}
