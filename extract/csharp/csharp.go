// Package csharp extracts ir.ModuleIR from C# source using tree-sitter,
// generalized from the teacher's Java extractor shape (class/interface
// declarations, method bodies, annotation-style attributes).
package csharp

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/mu-graph/mu/complexity"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "failed to parse C# source", err).WithPath(path, 0)
	}

	ex := &extraction{src: src}
	mod := &ir.ModuleIR{
		Path:       path,
		Language:   "csharp",
		TotalLines: strings.Count(string(src), "\n") + 1,
	}

	ex.walkNamespace(tree.RootNode(), mod)
	return mod, nil
}

type extraction struct{ src []byte }

func (e *extraction) text(n *sitter.Node) string { return n.Content(e.src) }
func (e *extraction) line(n *sitter.Node) int     { return int(n.StartPoint().Row) + 1 }
func (e *extraction) endLine(n *sitter.Node) int  { return int(n.EndPoint().Row) + 1 }

// walkNamespace recurses through compilation_unit/namespace_declaration/
// file_scoped_namespace_declaration nodes (C#'s nesting for "internal" import
// classification, per spec §4.2's per-language policy) to reach top-level
// types.
func (e *extraction) walkNamespace(node *sitter.Node, mod *ir.ModuleIR) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "using_directive":
			if imp, ok := e.extractUsing(child); ok {
				mod.Imports = append(mod.Imports, imp)
			}
		case "namespace_declaration", "file_scoped_namespace_declaration":
			if mod.Name == "" {
				if name := child.ChildByFieldName("name"); name != nil {
					mod.Name = e.text(name)
				}
			}
			e.walkNamespace(child, mod)
		case "class_declaration", "record_declaration":
			mod.Classes = append(mod.Classes, e.extractClass(child))
		case "interface_declaration":
			mod.Classes = append(mod.Classes, e.extractInterface(child))
		}
	}
}

func (e *extraction) extractUsing(node *sitter.Node) (ir.ImportIR, bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "qualified_name", "identifier":
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
	if bases := node.ChildByFieldName("bases"); bases != nil {
		cls.Bases = e.extractTypeList(bases)
	}
	cls.Decorators = e.attributesOf(node)
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_declaration", "constructor_declaration":
				fn := e.extractMethod(member)
				fn.IsMethod = true
				cls.Methods = append(cls.Methods, fn)
			case "property_declaration":
				if fn := e.extractProperty(member); fn != nil {
					fn.IsMethod = true
					fn.IsProperty = true
					cls.Methods = append(cls.Methods, fn)
				}
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
	if bases := node.ChildByFieldName("bases"); bases != nil {
		cls.Bases = e.extractTypeList(bases)
	}
	return cls
}

func (e *extraction) extractTypeList(node *sitter.Node) []string {
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "identifier" || child.Type() == "generic_name" || child.Type() == "qualified_name" {
			out = append(out, e.text(child))
		} else {
			out = append(out, e.extractTypeList(child)...)
		}
	}
	return out
}

func (e *extraction) attributesOf(node *sitter.Node) []string {
	var out []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "attribute_list" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				attr := child.NamedChild(j)
				if name := attr.ChildByFieldName("name"); name != nil {
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
		fn.Name = "<ctor>"
	}
	if ret := node.ChildByFieldName("returns"); ret != nil {
		fn.ReturnType = e.text(ret)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = e.extractParams(params)
	}
	fn.Decorators = e.attributesOf(node)
	modText := e.text(node)
	fn.IsStatic = strings.Contains(modText[:min(len(modText), 64)], "static")
	if body := node.ChildByFieldName("body"); body != nil {
		fn.BodySource = e.text(body)
		fn.BodyComplexity = complexity.ScoreSource("csharp", fn.BodySource)
	} else if expr := node.ChildByFieldName("value"); expr != nil {
		fn.BodySource = e.text(expr)
		fn.BodyComplexity = complexity.ScoreSource("csharp", fn.BodySource)
	}
	return fn
}

func (e *extraction) extractProperty(node *sitter.Node) *ir.FunctionIR {
	fn := &ir.FunctionIR{StartLine: e.line(node), EndLine: e.endLine(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = e.text(name)
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		fn.ReturnType = e.text(typ)
	}
	if fn.Name == "" {
		return nil
	}
	return fn
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

func (e *extraction) extractParams(node *sitter.Node) []ir.ParamIR {
	var params []ir.ParamIR
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "parameter" {
			continue
		}
		p := ir.ParamIR{}
		if typ := child.ChildByFieldName("type"); typ != nil {
			p.Type = e.text(typ)
		}
		if name := child.ChildByFieldName("name"); name != nil {
			p.Name = e.text(name)
		}
		if def := child.ChildByFieldName("default_value"); def != nil {
			p.Default = e.text(def)
		}
		params = append(params, p)
	}
	return params
}
