// Package python extracts ir.ModuleIR from Python source using tree-sitter,
// adapted from the other_examples CodeEagle Python parser's tree-walk shape.
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/mu-graph/mu/complexity"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
)

// Extractor parses Python source with tree-sitter.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "failed to parse Python source", err).WithPath(path, 0)
	}

	ex := &extraction{src: src, path: path}
	root := tree.RootNode()

	mod := &ir.ModuleIR{
		Path:       path,
		Language:   "python",
		Doc:        ex.moduleDocstring(root),
		TotalLines: strings.Count(string(src), "\n") + 1,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			mod.Imports = append(mod.Imports, ex.extractImport(child)...)
		case "import_from_statement":
			if imp, ok := ex.extractFromImport(child); ok {
				mod.Imports = append(mod.Imports, imp)
			}
		case "class_definition":
			mod.Classes = append(mod.Classes, ex.extractClass(child))
		case "function_definition", "decorated_definition":
			if fn := ex.extractFunctionOrDecorated(child); fn != nil {
				mod.Functions = append(mod.Functions, fn)
			}
		case "expression_statement":
			if dyn, ok := ex.detectDynamicImport(child); ok {
				mod.Imports = append(mod.Imports, dyn)
			}
		}
	}

	return mod, nil
}

type extraction struct {
	src  []byte
	path string
}

func (e *extraction) text(n *sitter.Node) string { return n.Content(e.src) }
func (e *extraction) line(n *sitter.Node) int     { return int(n.StartPoint().Row) + 1 }

func (e *extraction) moduleDocstring(root *sitter.Node) string {
	if root.NamedChildCount() == 0 {
		return ""
	}
	first := root.NamedChild(0)
	if first.Type() == "expression_statement" && first.NamedChildCount() > 0 {
		expr := first.NamedChild(0)
		if expr.Type() == "string" {
			return cleanDocstring(e.text(expr))
		}
	}
	return ""
}

func (e *extraction) extractImport(node *sitter.Node) []ir.ImportIR {
	var out []ir.ImportIR
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, ir.ImportIR{Module: e.text(child), Line: e.line(node)})
		case "aliased_import":
			if child.NamedChildCount() < 2 {
				continue
			}
			out = append(out, ir.ImportIR{
				Module: e.text(child.NamedChild(0)),
				Alias:  e.text(child.NamedChild(1)),
				Line:   e.line(node),
			})
		}
	}
	return out
}

func (e *extraction) extractFromImport(node *sitter.Node) (ir.ImportIR, bool) {
	imp := ir.ImportIR{IsFrom: true, Line: e.line(node)}
	found := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name", "relative_import":
			if !found {
				imp.Module = e.text(child)
				found = true
			}
		case "wildcard_import":
			imp.Names = append(imp.Names, "*")
		case "dotted_name_list", "import_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				imp.Names = append(imp.Names, e.text(child.NamedChild(j)))
			}
		case "identifier":
			imp.Names = append(imp.Names, e.text(child))
		}
	}
	return imp, found
}

// detectDynamicImport recognizes importlib.import_module("x") calls, per
// spec §4.2's dynamic-import detection requirement for Python.
func (e *extraction) detectDynamicImport(stmt *sitter.Node) (ir.ImportIR, bool) {
	if stmt.NamedChildCount() == 0 {
		return ir.ImportIR{}, false
	}
	call := stmt.NamedChild(0)
	if call.Type() != "call" || call.NamedChildCount() == 0 {
		return ir.ImportIR{}, false
	}
	fnText := e.text(call.NamedChild(0))
	if fnText != "importlib.import_module" && fnText != "__import__" {
		return ir.ImportIR{}, false
	}
	module := ""
	for i := 0; i < int(call.NamedChildCount()); i++ {
		arg := call.NamedChild(i)
		if arg.Type() != "argument_list" {
			continue
		}
		for j := 0; j < int(arg.NamedChildCount()); j++ {
			a := arg.NamedChild(j)
			if a.Type() == "string" {
				module = cleanStringLiteral(e.text(a))
				break
			}
		}
	}
	return ir.ImportIR{
		Module:         module,
		IsDynamic:      true,
		DynamicPattern: e.text(call),
		DynamicSource:  fnText,
		Line:           e.line(stmt),
	}, true
}

func (e *extraction) extractClass(node *sitter.Node) *ir.ClassIR {
	cls := &ir.ClassIR{
		StartLine: e.line(node),
		EndLine:   int(node.EndPoint().Row) + 1,
	}
	var bodyNode *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			cls.Name = e.text(child)
		case "argument_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				cls.Bases = append(cls.Bases, e.text(child.NamedChild(j)))
			}
		case "block":
			bodyNode = child
		}
	}
	if bodyNode != nil {
		cls.Doc = e.docstringOf(bodyNode)
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			child := bodyNode.NamedChild(i)
			if child.Type() == "function_definition" || child.Type() == "decorated_definition" {
				if fn := e.extractFunctionOrDecorated(child); fn != nil {
					fn.IsMethod = true
					cls.Methods = append(cls.Methods, fn)
				}
			}
		}
	}
	return cls
}

func (e *extraction) extractFunctionOrDecorated(node *sitter.Node) *ir.FunctionIR {
	if node.Type() == "decorated_definition" {
		var decorators []string
		var funcNode *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "decorator":
				decorators = append(decorators, e.decoratorName(child))
			case "function_definition":
				funcNode = child
			}
		}
		if funcNode == nil {
			return nil
		}
		fn := e.extractFunction(funcNode, node)
		fn.Decorators = decorators
		fn.IsStatic = containsString(decorators, "staticmethod")
		fn.IsClassMethod = containsString(decorators, "classmethod")
		fn.IsProperty = containsString(decorators, "property")
		return fn
	}
	return e.extractFunction(node, node)
}

func (e *extraction) decoratorName(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "dotted_name":
			return e.text(child)
		case "call":
			if child.NamedChildCount() > 0 {
				return e.text(child.NamedChild(0))
			}
		}
	}
	return ""
}

func (e *extraction) extractFunction(node, outer *sitter.Node) *ir.FunctionIR {
	fn := &ir.FunctionIR{
		StartLine: int(outer.StartPoint().Row) + 1,
		EndLine:   int(outer.EndPoint().Row) + 1,
	}
	var bodyNode *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			fn.Name = e.text(child)
		case "parameters":
			fn.Params = e.extractParams(child)
		case "type":
			fn.ReturnType = e.text(child)
		case "block":
			bodyNode = child
		}
	}
	fn.IsAsync = strings.HasPrefix(strings.TrimSpace(e.text(node)), "async ")
	if bodyNode != nil {
		fn.Doc = e.docstringOf(bodyNode)
		fn.BodySource = e.text(bodyNode)
		fn.BodyComplexity = complexity.ScoreSource("python", fn.BodySource)
	}
	return fn
}

func (e *extraction) extractParams(node *sitter.Node) []ir.ParamIR {
	var params []ir.ParamIR
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			if name := e.text(child); name != "self" && name != "cls" {
				params = append(params, ir.ParamIR{Name: name})
			}
		case "typed_parameter":
			p := ir.ParamIR{}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				sub := child.NamedChild(j)
				if sub.Type() == "identifier" {
					p.Name = e.text(sub)
				} else if sub.Type() == "type" {
					p.Type = e.text(sub)
				}
			}
			params = append(params, p)
		case "default_parameter":
			p := ir.ParamIR{}
			if child.NamedChildCount() >= 2 {
				p.Name = e.text(child.NamedChild(0))
				p.Default = e.text(child.NamedChild(1))
			}
			params = append(params, p)
		case "typed_default_parameter":
			p := ir.ParamIR{}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				sub := child.NamedChild(j)
				switch sub.Type() {
				case "identifier":
					if p.Name == "" {
						p.Name = e.text(sub)
					}
				case "type":
					p.Type = e.text(sub)
				default:
					p.Default = e.text(sub)
				}
			}
			params = append(params, p)
		case "list_splat_pattern":
			params = append(params, ir.ParamIR{Name: strings.TrimPrefix(e.text(child), "*"), IsVariadic: true})
		case "dictionary_splat_pattern":
			params = append(params, ir.ParamIR{Name: strings.TrimPrefix(e.text(child), "**"), IsKeyword: true})
		}
	}
	return params
}

func (e *extraction) docstringOf(body *sitter.Node) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() == "expression_statement" && first.NamedChildCount() > 0 {
		expr := first.NamedChild(0)
		if expr.Type() == "string" {
			return cleanDocstring(e.text(expr))
		}
	}
	return ""
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

func cleanStringLiteral(s string) string {
	for _, prefix := range []string{"f", "r", "b"} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

func cleanDocstring(raw string) string {
	s := raw
	for _, prefix := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			s = strings.TrimSuffix(s, prefix)
			break
		}
	}
	return strings.TrimSpace(s)
}
