package graph

import (
	"path/filepath"
	"strings"

	"github.com/mu-graph/mu/ir"
)

type importClass int

const (
	classExternal importClass = iota
	classInternal
	classStdlib
)

// stdlib root segments per language, used by classify to assign the
// "stdlib" class without emitting an edge (spec §4.5).
var stdlibRoots = map[string]map[string]bool{
	"go": set("fmt", "os", "io", "strings", "strconv", "bytes", "errors", "time",
		"context", "sync", "net", "encoding", "sort", "math", "reflect", "runtime",
		"bufio", "regexp", "path", "unicode", "testing", "flag", "log"),
	"python": set("os", "sys", "re", "io", "json", "typing", "collections",
		"itertools", "functools", "math", "time", "datetime", "asyncio", "logging",
		"pathlib", "subprocess", "threading", "unittest", "abc", "dataclasses"),
	"typescript": set("fs", "path", "http", "https", "os", "util", "events",
		"stream", "crypto", "child_process", "assert", "url", "net"),
	"javascript": set("fs", "path", "http", "https", "os", "util", "events",
		"stream", "crypto", "child_process", "assert", "url", "net"),
	"rust": set("std", "core", "alloc"),
	"java": set("java", "javax"),
	"csharp": set("System"),
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

func rootSegment(language, module string, sep string) string {
	module = strings.TrimPrefix(module, sep)
	idx := strings.Index(module, sep)
	if idx < 0 {
		return module
	}
	return module[:idx]
}

// classify assigns one of {stdlib, internal, external} to a non-dynamic
// import, per the per-language rules of spec §4.5. Internal resolution
// itself is deferred to resolveInternalPath — here we only decide the class.
func classify(language string, imp ir.ImportIR, opts BuildOptions) importClass {
	switch language {
	case "go":
		root := rootSegment(language, imp.Module, "/")
		if stdlibRoots["go"][root] && !strings.Contains(imp.Module, ".") {
			return classStdlib
		}
		if !strings.Contains(root, ".") {
			return classInternal
		}
		return classExternal
	case "python":
		if strings.HasPrefix(imp.Module, ".") {
			return classInternal
		}
		root := rootSegment(language, imp.Module, ".")
		if stdlibRoots["python"][root] {
			return classStdlib
		}
		return classExternal
	case "typescript", "javascript":
		if strings.HasPrefix(imp.Module, ".") || strings.HasPrefix(imp.Module, "/") {
			return classInternal
		}
		for alias := range opts.PathAliases {
			if strings.HasPrefix(imp.Module, alias) {
				return classInternal
			}
		}
		root := rootSegment(language, imp.Module, "/")
		if stdlibRoots[language][root] {
			return classStdlib
		}
		return classExternal
	case "rust":
		if strings.HasPrefix(imp.Module, "crate::") || strings.HasPrefix(imp.Module, "super::") || strings.HasPrefix(imp.Module, "self::") {
			return classInternal
		}
		root := rootSegment(language, imp.Module, "::")
		if stdlibRoots["rust"][root] {
			return classStdlib
		}
		return classExternal
	case "java", "csharp":
		for _, ns := range opts.ProjectNamespaces {
			if strings.HasPrefix(imp.Module, ns) {
				return classInternal
			}
		}
		root := rootSegment(language, imp.Module, ".")
		if stdlibRoots[language][root] {
			return classStdlib
		}
		return classExternal
	default:
		return classExternal
	}
}

// internalCandidates lists the scanned-file paths an internal import might
// resolve to, most likely first. The builder tries each against the set of
// actually-scanned modules.
func internalCandidates(m *ir.ModuleIR, imp ir.ImportIR, opts BuildOptions) []string {
	dir := filepath.Dir(m.Path)

	switch m.Language {
	case "python":
		if strings.HasPrefix(imp.Module, ".") {
			dots := 0
			for dots < len(imp.Module) && imp.Module[dots] == '.' {
				dots++
			}
			rest := strings.ReplaceAll(imp.Module[dots:], ".", "/")
			base := dir
			for i := 1; i < dots; i++ {
				base = filepath.Dir(base)
			}
			if rest == "" {
				return []string{filepath.Join(base, "__init__.py")}
			}
			return []string{filepath.Join(base, rest+".py"), filepath.Join(base, rest, "__init__.py")}
		}
		rel := strings.ReplaceAll(imp.Module, ".", "/")
		return []string{rel + ".py", rel + "/__init__.py"}
	case "typescript", "javascript":
		spec := imp.Module
		for alias, target := range opts.PathAliases {
			if strings.HasPrefix(spec, alias) {
				spec = target + strings.TrimPrefix(spec, alias)
				break
			}
		}
		base := spec
		if strings.HasPrefix(spec, ".") {
			base = filepath.Join(dir, spec)
		}
		var candidates []string
		for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
			candidates = append(candidates, base+ext)
			candidates = append(candidates, filepath.Join(base, "index"+ext))
		}
		return candidates
	case "go":
		// Go internal resolution is module-path based, not file-path based;
		// the builder falls back to external classification when no scanned
		// file matches, which is the conservative, still-correct choice when
		// no go.mod module path is supplied.
		return nil
	case "rust":
		rel := strings.ReplaceAll(strings.TrimPrefix(strings.TrimPrefix(imp.Module, "crate::"), "self::"), "::", "/")
		return []string{rel + ".rs", rel + "/mod.rs"}
	case "java", "csharp":
		ext := ".java"
		if m.Language == "csharp" {
			ext = ".cs"
		}
		return []string{strings.ReplaceAll(imp.Module, ".", "/") + ext}
	}
	return nil
}

// externalPackageName derives the collapsible external-node name for an
// import, so e.g. "requests.auth" and "requests.sessions" both collapse to
// the "requests" external node.
func externalPackageName(language string, imp ir.ImportIR) string {
	switch language {
	case "go", "rust":
		return imp.Module
	default:
		return rootSegment(language, imp.Module, ".")
	}
}
