// Package sigil renders a reduced module into MU's compact sigil-encoded
// textual projection, per SPEC_FULL.md §4.10/§6.4.
package sigil

import (
	"strings"

	"github.com/mu-graph/mu/emit"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/reduce"
)

var shellEscaped = strings.NewReplacer("!", "\\!", "$", "\\$", "#", "\\#", "@", "\\@")

// Emitter renders the sigil format described in spec §4.10.
type Emitter struct{}

func New() *Emitter { return &Emitter{} }

func (e *Emitter) Emit(source *ir.ModuleIR, reduced reduce.ReducedModule, opts emit.Options) ([]byte, error) {
	var b strings.Builder
	esc := func(line string) string {
		if opts.ShellSafe {
			return shellEscaped.Replace(line)
		}
		return line
	}

	b.WriteString(esc("! " + source.Name + " [" + source.Language + "]"))
	b.WriteByte('\n')

	if doc := firstLine(source.Doc); doc != "" {
		b.WriteString(indent(1) + esc(":: "+truncate(doc, 77)))
		b.WriteByte('\n')
	}

	if len(reduced.Imports) > 0 {
		b.WriteString(indent(1) + esc("@ "+renderImports(reduced.Imports)))
		b.WriteByte('\n')
	}

	for _, rc := range reduced.Classes {
		b.WriteString(renderClass(rc, esc))
	}

	for _, fn := range reduced.Functions {
		b.WriteString(renderFunction(fn, 0, esc))
	}

	return []byte(b.String()), nil
}

func renderClass(rc reduce.ReducedClass, esc func(string) string) string {
	var b strings.Builder
	header := "$ " + rc.Source.Name
	if len(rc.Source.Bases) > 0 {
		header += " < " + strings.Join(rc.Source.Bases, ", ")
	}
	b.WriteString(indent(1) + esc(header))
	b.WriteByte('\n')

	if len(rc.Source.Decorators) > 0 {
		b.WriteString(indent(2) + esc("@ "+strings.Join(rc.Source.Decorators, ", ")))
		b.WriteByte('\n')
	}
	if doc := firstLine(rc.Source.Doc); doc != "" {
		b.WriteString(indent(2) + esc(":: "+truncate(doc, 77)))
		b.WriteByte('\n')
	}

	for _, method := range rc.Methods {
		b.WriteString(renderFunction(method, 1, esc))
	}
	return b.String()
}

func renderFunction(fn *ir.FunctionIR, depth int, esc func(string) string) string {
	var b strings.Builder
	arrow := "->"
	if emit.IsMutating(fn) {
		arrow = "=>"
	}
	sig := renderSignature(fn)
	ret := fn.ReturnType
	if ret == "" {
		ret = "void"
	}
	b.WriteString(indent(depth+1) + esc("# "+sig+" "+arrow+" "+ret))
	b.WriteByte('\n')
	if doc := firstLine(fn.Doc); doc != "" {
		b.WriteString(indent(depth+2) + esc(":: "+truncate(doc, 77)))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderSignature(fn *ir.FunctionIR) string {
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		name := p.Name
		if strings.ToLower(name) == "self" || strings.ToLower(name) == "cls" {
			continue
		}
		if p.Type != "" {
			params = append(params, name+": "+p.Type)
		} else {
			params = append(params, name)
		}
	}
	return fn.Name + "(" + strings.Join(params, ", ") + ")"
}

func renderImports(imports []ir.ImportIR) string {
	// Group "pkg.a" / "pkg.b" partial imports from the same module into
	// "pkg.{a,b}" per spec §4.10.
	grouped := map[string][]string{}
	var order []string
	for _, imp := range imports {
		if imp.IsFrom && len(imp.Names) > 0 && imp.Names[0] != "*" {
			if _, ok := grouped[imp.Module]; !ok {
				order = append(order, imp.Module)
			}
			grouped[imp.Module] = append(grouped[imp.Module], imp.Names...)
			continue
		}
		if _, ok := grouped[imp.Module]; !ok {
			order = append(order, imp.Module)
			grouped[imp.Module] = nil
		}
	}

	parts := make([]string, 0, len(order))
	for _, mod := range order {
		names := grouped[mod]
		if len(names) == 0 {
			parts = append(parts, mod)
		} else if len(names) == 1 {
			parts = append(parts, mod+"."+names[0])
		} else {
			parts = append(parts, mod+".{"+strings.Join(names, ",")+"}")
		}
	}
	return strings.Join(parts, ", ")
}

func firstLine(doc string) string {
	if doc == "" {
		return ""
	}
	if idx := strings.IndexByte(doc, '\n'); idx >= 0 {
		return strings.TrimSpace(doc[:idx])
	}
	return strings.TrimSpace(doc)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}
