// Package java extracts ir.ModuleIR from Java source using tree-sitter,
// adapted from the teacher's inspector/java package.
package java

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/mu-graph/mu/complexity"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "failed to parse Java source", err).WithPath(path, 0)
	}

	ex := &extraction{src: src}
	root := tree.RootNode()

	mod := &ir.ModuleIR{
		Path:       path,
		Language:   "java",
		TotalLines: strings.Count(string(src), "\n") + 1,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			mod.Name = ex.text(child.NamedChild(0))
		case "import_declaration":
			if imp, ok := ex.extractImport(child); ok {
				mod.Imports = append(mod.Imports, imp)
			}
		case "class_declaration":
			mod.Classes = append(mod.Classes, ex.extractClass(child))
		case "interface_declaration":
			mod.Classes = append(mod.Classes, ex.extractInterface(child))
		}
	}

	return mod, nil
}

type extraction struct{ src []byte }

func (e *extraction) text(n *sitter.Node) string { return n.Content(e.src) }
func (e *extraction) line(n *sitter.Node) int     { return int(n.StartPoint().Row) + 1 }
func (e *extraction) endLine(n *sitter.Node) int  { return int(n.EndPoint().Row) + 1 }

func (e *extraction) extractImport(node *sitter.Node) (ir.ImportIR, bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return ir.ImportIR{Module: e.text(child), Line: e.line(node)}, true
		}
	}
	return ir.ImportIR{}, false
}

func (e *extraction) extractClass(node *sitter.Node) *ir.ClassIR {
	cls := &ir.ClassIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		cls.Name = e.text(name)
	}
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		cls.Bases = append(cls.Bases, strings.TrimSpace(strings.TrimPrefix(e.text(superclass), "extends")))
	}
	if interfaces := node.ChildByFieldName("interfaces"); interfaces != nil {
		cls.Bases = append(cls.Bases, e.extractTypeList(interfaces)...)
	}
	if annotations := e.annotationsOf(node); len(annotations) > 0 {
		cls.Decorators = annotations
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_declaration", "constructor_declaration":
				fn := e.extractMethod(member)
				fn.IsMethod = true
				cls.Methods = append(cls.Methods, fn)
			case "field_declaration":
				cls.Attributes = append(cls.Attributes, e.extractFields(member)...)
			}
		}
	}
	return cls
}

func (e *extraction) extractInterface(node *sitter.Node) *ir.ClassIR {
	cls := &ir.ClassIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		cls.Name = e.text(name)
	}
	if extends := node.ChildByFieldName("interfaces"); extends != nil {
		cls.Bases = append(cls.Bases, e.extractTypeList(extends)...)
	}
	return cls
}

func (e *extraction) extractTypeList(node *sitter.Node) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_identifier" || child.Type() == "generic_type" {
			out = append(out, e.text(child))
		} else {
			out = append(out, e.extractTypeList(child)...)
		}
	}
	return out
}

func (e *extraction) annotationsOf(node *sitter.Node) []string {
	var out []string
	if mods := node.ChildByFieldName("modifiers"); mods != nil {
		for i := 0; i < int(mods.NamedChildCount()); i++ {
			m := mods.NamedChild(i)
			if m.Type() == "marker_annotation" || m.Type() == "annotation" {
				name := m.NamedChild(0)
				if name != nil {
					out = append(out, e.text(name))
				}
			}
		}
	}
	return out
}

func (e *extraction) extractMethod(node *sitter.Node) *ir.FunctionIR {
	fn := &ir.FunctionIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = e.text(name)
	} else {
		fn.Name = "<init>"
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		fn.ReturnType = e.text(typ)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = e.extractParams(params)
	}
	fn.Decorators = e.annotationsOf(node)
	if mods := node.ChildByFieldName("modifiers"); mods != nil {
		modText := e.text(mods)
		fn.IsStatic = strings.Contains(modText, "static")
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.BodySource = e.text(body)
		fn.BodyComplexity = complexity.ScoreSource("java", fn.BodySource)
	}
	return fn
}

func (e *extraction) extractParams(node *sitter.Node) []ir.ParamIR {
	var params []ir.ParamIR
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "formal_parameter" && child.Type() != "spread_parameter" {
			continue
		}
		p := ir.ParamIR{IsVariadic: child.Type() == "spread_parameter"}
		if typ := child.ChildByFieldName("type"); typ != nil {
			p.Type = e.text(typ)
		}
		if name := child.ChildByFieldName("name"); name != nil {
			p.Name = e.text(name)
		}
		params = append(params, p)
	}
	return params
}

func (e *extraction) extractFields(node *sitter.Node) []ir.AttributeIR {
	var out []ir.AttributeIR
	typ := ""
	if t := node.ChildByFieldName("type"); t != nil {
		typ = e.text(t)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "variable_declarator" {
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, ir.AttributeIR{Name: e.text(name), Type: typ})
			}
		}
	}
	return out
}
