package extract

import (
	"github.com/mu-graph/mu/extract/csharp"
	"github.com/mu-graph/mu/extract/golang"
	"github.com/mu-graph/mu/extract/java"
	"github.com/mu-graph/mu/extract/python"
	"github.com/mu-graph/mu/extract/rust"
	"github.com/mu-graph/mu/extract/typescript"
	"github.com/mu-graph/mu/scan"
)

// DefaultFactory wires every language backend MU ships, per spec §4.2's
// target-language table. Callers needing a subset (e.g. to keep a build
// free of tree-sitter grammars it never uses) should call NewFactory
// directly with their own map instead.
func DefaultFactory() *Factory {
	return NewFactory(map[scan.Language]NewFunc{
		scan.LangGo:         func() Extractor { return golang.New() },
		scan.LangPython:     func() Extractor { return python.New() },
		scan.LangTypeScript: func() Extractor { return typescript.NewTypeScript() },
		scan.LangJavaScript: func() Extractor { return typescript.NewJavaScript() },
		scan.LangJava:       func() Extractor { return java.New() },
		scan.LangRust:       func() Extractor { return rust.New() },
		scan.LangCSharp:     func() Extractor { return csharp.New() },
	})
}
