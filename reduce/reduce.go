// Package reduce applies strip/keep rules over extractor IR and marks items
// needing later summarization, per SPEC_FULL.md §4.4.
package reduce

import (
	"strings"

	"github.com/mu-graph/mu/ir"
)

// Rules configures the reducer's independent toggles.
type Rules struct {
	StripStdlibImports       bool
	StripRelativeImports     bool
	StripSpecialMethods      bool
	SpecialMethodAllowList   []string // always-keep kinds, e.g. constructors/call-operators
	StripTrivialGetters      bool
	StripEmptyMethods        bool
	StripReceiverParams      bool
	ComplexityFloor          int // skip below this
	ComplexityCeiling        int // mark "needs summary" above this
}

// DefaultRules mirrors the built-in defaults of spec §6.2's reducer.*
// options.
func DefaultRules() Rules {
	return Rules{
		StripStdlibImports:     true,
		StripSpecialMethods:    true,
		SpecialMethodAllowList: []string{"constructor", "call"},
		StripTrivialGetters:    true,
		StripEmptyMethods:      true,
		StripReceiverParams:    true,
		ComplexityCeiling:      15,
	}
}

// ReducedClass is a class with stripped methods/imports omitted.
type ReducedClass struct {
	Source  *ir.ClassIR
	Methods []*ir.FunctionIR
}

// ReducedModule is the reducer's output for one module: the source IR is
// never mutated, only referenced; stripped items are simply omitted here.
type ReducedModule struct {
	Source       *ir.ModuleIR
	Imports      []ir.ImportIR
	Classes      []ReducedClass
	Functions    []*ir.FunctionIR
	NeedsSummary []string // qualified names above the complexity ceiling
}

// Stats accumulates totals across a codebase-wide reduction.
type Stats struct {
	TotalFunctions    int
	StrippedFunctions int
	TotalImports      int
	StrippedImports   int
	SummaryCandidates int
}

// ReducedCodebase is the reducer's output across every module.
type ReducedCodebase struct {
	Modules []ReducedModule
	Stats   Stats
}

var specialMethodKinds = map[string]string{
	"__init__":    "constructor",
	"__new__":     "constructor",
	"__call__":    "call",
	"__str__":     "dunder",
	"__repr__":    "dunder",
	"__eq__":      "dunder",
	"__hash__":    "dunder",
	"__enter__":   "dunder",
	"__exit__":    "dunder",
	"constructor": "constructor",
}

// Reduce applies rules to one module. It never mutates ir.ModuleIR; all
// stripping is reflected in the returned ReducedModule.
func Reduce(m *ir.ModuleIR, rules Rules) ReducedModule {
	out := ReducedModule{Source: m}

	for _, imp := range m.Imports {
		if rules.StripStdlibImports && isStdlibImport(m.Language, imp) {
			continue
		}
		if rules.StripRelativeImports && strings.HasPrefix(imp.Module, ".") {
			continue
		}
		out.Imports = append(out.Imports, imp)
	}

	for _, fn := range m.Functions {
		if keep, needsSummary := applyFunctionRules(fn, rules); keep {
			out.Functions = append(out.Functions, fn)
			if needsSummary {
				out.NeedsSummary = append(out.NeedsSummary, fn.Name)
			}
		}
	}

	for _, cls := range m.Classes {
		rc := ReducedClass{Source: cls}
		for _, method := range cls.Methods {
			if keep, needsSummary := applyFunctionRules(method, rules); keep {
				rc.Methods = append(rc.Methods, method)
				if needsSummary {
					out.NeedsSummary = append(out.NeedsSummary, cls.Name+"."+method.Name)
				}
			}
		}
		out.Classes = append(out.Classes, rc)
	}

	return out
}

// ReduceCodebase reduces every module and accumulates statistics.
func ReduceCodebase(modules []*ir.ModuleIR, rules Rules) ReducedCodebase {
	codebase := ReducedCodebase{}
	for _, m := range modules {
		rm := Reduce(m, rules)
		codebase.Modules = append(codebase.Modules, rm)

		codebase.Stats.TotalImports += len(m.Imports)
		codebase.Stats.StrippedImports += len(m.Imports) - len(rm.Imports)

		total := len(m.Functions)
		kept := len(rm.Functions)
		for _, cls := range m.Classes {
			total += len(cls.Methods)
		}
		for _, rc := range rm.Classes {
			kept += len(rc.Methods)
		}
		codebase.Stats.TotalFunctions += total
		codebase.Stats.StrippedFunctions += total - kept
		codebase.Stats.SummaryCandidates += len(rm.NeedsSummary)
	}
	return codebase
}

func applyFunctionRules(fn *ir.FunctionIR, rules Rules) (keep bool, needsSummary bool) {
	if rules.StripSpecialMethods {
		if kind, isSpecial := specialMethodKinds[fn.Name]; isSpecial {
			if !containsString(rules.SpecialMethodAllowList, kind) {
				return false, false
			}
		}
	}
	if rules.StripTrivialGetters && isTrivialGetter(fn) {
		return false, false
	}
	if rules.StripEmptyMethods && strings.TrimSpace(fn.BodySource) == "" {
		return false, false
	}
	if rules.ComplexityFloor > 0 && fn.BodyComplexity < rules.ComplexityFloor {
		return false, false
	}
	if rules.ComplexityCeiling > 0 && fn.BodyComplexity > rules.ComplexityCeiling {
		needsSummary = true
	}
	return true, needsSummary
}

func isTrivialGetter(fn *ir.FunctionIR) bool {
	if !fn.IsProperty && !strings.HasPrefix(strings.ToLower(fn.Name), "get") {
		return false
	}
	body := strings.TrimSpace(fn.BodySource)
	lines := strings.Split(body, "\n")
	nonEmpty := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}
	return nonEmpty <= 1 && fn.BodyComplexity <= 1
}

func isStdlibImport(language string, imp ir.ImportIR) bool {
	// Mirrors graph's stdlib root sets without importing graph (reduce sits
	// upstream of graph in the pipeline); kept as a small local table rather
	// than a cross-package dependency on the builder's internals.
	roots := map[string]map[string]bool{
		"go":     {"fmt": true, "os": true, "io": true, "strings": true, "strconv": true, "errors": true, "time": true, "context": true, "sync": true},
		"python": {"os": true, "sys": true, "re": true, "io": true, "json": true, "typing": true, "collections": true, "itertools": true, "functools": true},
	}
	langRoots, ok := roots[language]
	if !ok {
		return false
	}
	root := imp.Module
	if idx := strings.IndexAny(root, "./"); idx > 0 {
		root = root[:idx]
	}
	return langRoots[root]
}

func containsString(items []string, target string) bool {
	for _, i := range items {
		if i == target {
			return true
		}
	}
	return false
}

// RenderSignature renders a reduced function signature for emission,
// honoring StripReceiverParams by omitting self/cls-shaped first params.
func RenderSignature(fn *ir.FunctionIR, rules Rules) string {
	params := fn.Params
	if rules.StripReceiverParams && len(params) > 0 {
		first := strings.ToLower(params[0].Name)
		if first == "self" || first == "cls" {
			params = params[1:]
		}
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Type != "" {
			parts = append(parts, p.Name+": "+p.Type)
		} else {
			parts = append(parts, p.Name)
		}
	}
	sig := fn.Name + "(" + strings.Join(parts, ", ") + ")"
	if fn.ReturnType != "" {
		sig += " -> " + fn.ReturnType
	}
	return sig
}
