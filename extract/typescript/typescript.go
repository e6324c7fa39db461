// Package typescript extracts ir.ModuleIR from TypeScript/JavaScript source
// using tree-sitter, generalized from the teacher's inspector/jsx package
// (which walks the same import/function/class declaration shapes for JSX).
package typescript

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/mu-graph/mu/complexity"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
)

// Dialect selects which tree-sitter grammar to parse with.
type Dialect int

const (
	DialectTypeScript Dialect = iota
	DialectTSX
	DialectJavaScript
)

// Extractor parses TS/TSX/JS source. One Extractor per Dialect; Factory
// registers three NewFunc entries (one per scan.Language) pointing at the
// matching dialect's New constructor.
type Extractor struct {
	dialect Dialect
}

func New(d Dialect) *Extractor { return &Extractor{dialect: d} }

func NewTypeScript() *Extractor { return New(DialectTypeScript) }
func NewTSX() *Extractor        { return New(DialectTSX) }
func NewJavaScript() *Extractor { return New(DialectJavaScript) }

func (e *Extractor) language(path string) *sitter.Language {
	switch {
	case e.dialect == DialectJavaScript:
		return javascript.GetLanguage()
	case e.dialect == DialectTSX, strings.EqualFold(filepath.Ext(path), ".tsx"):
		return tsx.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

func (e *Extractor) langName() string {
	if e.dialect == DialectJavaScript {
		return "javascript"
	}
	return "typescript"
}

func (e *Extractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.language(path))

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "failed to parse TS/JS source", err).WithPath(path, 0)
	}

	ex := &extraction{src: src, lang: e.langName()}
	root := tree.RootNode()

	mod := &ir.ModuleIR{
		Path:       path,
		Language:   ex.lang,
		TotalLines: strings.Count(string(src), "\n") + 1,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		ex.walkTopLevel(child, mod)
	}

	mod.Imports = append(mod.Imports, scanDynamicImports(src)...)

	return mod, nil
}

var dynamicImportRe = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)

// scanDynamicImports finds import("module") call expressions anywhere in the
// source, not just top-level statements, since dynamic imports typically
// appear inside function bodies (lazy-loading, code-splitting).
func scanDynamicImports(src []byte) []ir.ImportIR {
	var out []ir.ImportIR
	for _, loc := range dynamicImportRe.FindAllSubmatchIndex(src, -1) {
		target := string(src[loc[2]:loc[3]])
		out = append(out, ir.ImportIR{
			Module:         target,
			IsDynamic:      true,
			DynamicPattern: string(src[loc[0]:loc[1]]),
			DynamicSource:  "import()",
			Line:           strings.Count(string(src[:loc[0]]), "\n") + 1,
		})
	}
	return out
}

type extraction struct {
	src  []byte
	lang string
}

func (e *extraction) text(n *sitter.Node) string { return n.Content(e.src) }
func (e *extraction) line(n *sitter.Node) int     { return int(n.StartPoint().Row) + 1 }
func (e *extraction) endLine(n *sitter.Node) int  { return int(n.EndPoint().Row) + 1 }

func (e *extraction) walkTopLevel(node *sitter.Node, mod *ir.ModuleIR) {
	switch node.Type() {
	case "import_statement":
		if imp, ok := e.extractImport(node); ok {
			mod.Imports = append(mod.Imports, imp)
		}
	case "export_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			e.walkTopLevel(node.NamedChild(i), mod)
		}
	case "function_declaration":
		mod.Functions = append(mod.Functions, e.extractFunction(node))
	case "class_declaration":
		mod.Classes = append(mod.Classes, e.extractClass(node))
	case "interface_declaration":
		mod.Classes = append(mod.Classes, e.extractInterface(node))
	case "lexical_declaration", "variable_declaration":
		if fn := e.extractArrowFunction(node); fn != nil {
			mod.Functions = append(mod.Functions, fn)
		}
	}
}

func (e *extraction) extractImport(node *sitter.Node) (ir.ImportIR, bool) {
	var path string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "string" {
			path = strings.Trim(e.text(child), `'"`)
			break
		}
	}
	if path == "" {
		return ir.ImportIR{}, false
	}
	imp := ir.ImportIR{Module: path, IsFrom: true, Line: e.line(node)}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.Names = append(imp.Names, "default")
			imp.Alias = e.text(child)
		case "import_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				e.collectImportNames(child.NamedChild(j), &imp)
			}
		}
	}
	return imp, true
}

func (e *extraction) collectImportNames(node *sitter.Node, imp *ir.ImportIR) {
	switch node.Type() {
	case "identifier":
		imp.Names = append(imp.Names, "default")
		imp.Alias = e.text(node)
	case "namespace_import":
		imp.Names = append(imp.Names, "*")
	case "named_imports":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			spec := node.NamedChild(i)
			if spec.Type() == "import_specifier" && spec.NamedChildCount() > 0 {
				imp.Names = append(imp.Names, e.text(spec.NamedChild(0)))
			}
		}
	}
}

func (e *extraction) extractClass(node *sitter.Node) *ir.ClassIR {
	cls := &ir.ClassIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	var bodyNode *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "identifier":
			if cls.Name == "" {
				cls.Name = e.text(child)
			}
		case "class_heritage":
			cls.Bases = append(cls.Bases, e.extractHeritage(child)...)
		case "class_body":
			bodyNode = child
		}
	}
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			member := bodyNode.NamedChild(i)
			if member.Type() == "method_definition" {
				fn := e.extractFunction(member)
				fn.IsMethod = true
				fn.IsStatic = strings.Contains(e.text(member), "static ")
				cls.Methods = append(cls.Methods, fn)
			}
		}
	}
	return cls
}

func (e *extraction) extractInterface(node *sitter.Node) *ir.ClassIR {
	cls := &ir.ClassIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_identifier":
			if cls.Name == "" {
				cls.Name = e.text(child)
			}
		case "extends_type_clause":
			cls.Bases = append(cls.Bases, e.extractHeritage(child)...)
		}
	}
	return cls
}

func (e *extraction) extractHeritage(node *sitter.Node) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "identifier" || child.Type() == "type_identifier" {
			out = append(out, e.text(child))
		}
		out = append(out, e.extractHeritage(child)...)
	}
	return out
}

func (e *extraction) extractFunction(node *sitter.Node) *ir.FunctionIR {
	fn := &ir.FunctionIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		fn.Name = e.text(nameNode)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = e.extractParams(params)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = strings.TrimPrefix(e.text(ret), ":")
		fn.ReturnType = strings.TrimSpace(fn.ReturnType)
	}
	fn.IsAsync = strings.Contains(e.text(node), "async ")
	if body := node.ChildByFieldName("body"); body != nil {
		fn.BodySource = e.text(body)
		fn.BodyComplexity = complexity.ScoreSource(e.lang, fn.BodySource)
	}
	return fn
}

// extractArrowFunction recognizes "const Foo = (...) => {...}" top-level
// bindings, the teacher's arrow-function-component pattern generalized to
// any arrow-function assignment.
func (e *extraction) extractArrowFunction(node *sitter.Node) *ir.FunctionIR {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if name == nil || value == nil || value.Type() != "arrow_function" {
			continue
		}
		fn := e.extractFunction(value)
		fn.Name = e.text(name)
		fn.StartLine = e.line(node)
		fn.EndLine = e.endLine(node)
		return fn
	}
	return nil
}

func (e *extraction) extractParams(node *sitter.Node) []ir.ParamIR {
	var params []ir.ParamIR
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			params = append(params, ir.ParamIR{Name: e.text(child)})
		case "required_parameter", "optional_parameter":
			p := ir.ParamIR{}
			if pat := child.ChildByFieldName("pattern"); pat != nil {
				p.Name = e.text(pat)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				p.Type = strings.TrimSpace(strings.TrimPrefix(e.text(typ), ":"))
			}
			if val := child.ChildByFieldName("value"); val != nil {
				p.Default = e.text(val)
			}
			params = append(params, p)
		case "rest_pattern":
			params = append(params, ir.ParamIR{Name: strings.TrimPrefix(e.text(child), "..."), IsVariadic: true})
		case "object_pattern":
			// destructured props: { name, age }
			for j := 0; j < int(child.NamedChildCount()); j++ {
				prop := child.NamedChild(j)
				if prop.Type() == "shorthand_property_identifier_pattern" || prop.Type() == "identifier" {
					params = append(params, ir.ParamIR{Name: e.text(prop)})
				}
			}
		}
	}
	return params
}
