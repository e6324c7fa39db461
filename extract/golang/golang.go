// Package golang extracts ir.ModuleIR from Go source using go/parser and
// go/ast, adapted from the teacher's inspector/golang package (which is the
// one extractor in the pack that does not reach for tree-sitter, since the
// standard library already gives Go a first-class parser).
package golang

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"github.com/mu-graph/mu/complexity"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
)

// Extractor parses Go source with a fresh token.FileSet per instance,
// matching the teacher's per-Inspector fset to avoid cross-file position
// collisions when Factory hands out one instance per worker.
type Extractor struct {
	fset *token.FileSet
}

func New() *Extractor {
	return &Extractor{fset: token.NewFileSet()}
}

func (e *Extractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	file, err := parser.ParseFile(e.fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "failed to parse Go source", err).WithPath(path, 0)
	}

	mod := &ir.ModuleIR{
		Name:       file.Name.Name,
		Path:       path,
		Language:   "go",
		Doc:        docText(file.Doc),
		TotalLines: bytes.Count(src, []byte("\n")) + 1,
	}

	mod.Imports = e.extractImports(file)

	typeDecls := map[string]*ast.TypeSpec{}
	typeOrder := []string{}
	typeDocs := map[string]*ast.CommentGroup{}
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			typeDecls[ts.Name.Name] = ts
			typeOrder = append(typeOrder, ts.Name.Name)
			if ts.Doc != nil {
				typeDocs[ts.Name.Name] = ts.Doc
			} else if genDecl.Doc != nil {
				typeDocs[ts.Name.Name] = genDecl.Doc
			}
		}
	}

	classByName := map[string]*ir.ClassIR{}
	for _, name := range typeOrder {
		ts := typeDecls[name]
		st, isStruct := ts.Type.(*ast.StructType)
		it, isIface := ts.Type.(*ast.InterfaceType)
		if !isStruct && !isIface {
			continue
		}
		cls := &ir.ClassIR{
			Name:      name,
			Doc:       docText(typeDocs[name]),
			StartLine: e.fset.Position(ts.Pos()).Line,
			EndLine:   e.fset.Position(ts.End()).Line,
		}
		if isStruct {
			for _, field := range st.Fields.List {
				typ := exprString(field.Type)
				if len(field.Names) == 0 {
					// embedded field: Go's nearest equivalent to a base class.
					cls.Bases = append(cls.Bases, typ)
					continue
				}
				for _, n := range field.Names {
					cls.Attributes = append(cls.Attributes, ir.AttributeIR{Name: n.Name, Type: typ})
				}
			}
		}
		if isIface {
			for _, m := range it.Methods.List {
				if len(m.Names) == 0 {
					// embedded interface.
					cls.Bases = append(cls.Bases, exprString(m.Type))
				}
			}
		}
		classByName[name] = cls
		mod.Classes = append(mod.Classes, cls)
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		fnIR := e.extractFunc(fn, src)

		if fn.Recv == nil || len(fn.Recv.List) == 0 {
			mod.Functions = append(mod.Functions, fnIR)
			continue
		}
		fnIR.IsMethod = true
		recvType := exprString(fn.Recv.List[0].Type)
		baseName := strings.TrimPrefix(recvType, "*")
		cls, ok := classByName[baseName]
		if !ok {
			cls = &ir.ClassIR{Name: baseName}
			classByName[baseName] = cls
			mod.Classes = append(mod.Classes, cls)
		}
		cls.Methods = append(cls.Methods, fnIR)
	}

	return mod, nil
}

func (e *Extractor) extractImports(file *ast.File) []ir.ImportIR {
	imports := make([]ir.ImportIR, 0, len(file.Imports))
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
		}
		imports = append(imports, ir.ImportIR{
			Module: path,
			Alias:  alias,
			Line:   e.fset.Position(imp.Pos()).Line,
		})
	}
	return imports
}

func (e *Extractor) extractFunc(fn *ast.FuncDecl, src []byte) *ir.FunctionIR {
	fnIR := &ir.FunctionIR{
		Name:      fn.Name.Name,
		Doc:       docText(fn.Doc),
		StartLine: e.fset.Position(fn.Pos()).Line,
		EndLine:   e.fset.Position(fn.End()).Line,
	}

	if fn.Type.Params != nil {
		for _, p := range fn.Type.Params.List {
			typ := exprString(p.Type)
			_, variadic := p.Type.(*ast.Ellipsis)
			if len(p.Names) == 0 {
				fnIR.Params = append(fnIR.Params, ir.ParamIR{Type: typ, IsVariadic: variadic})
				continue
			}
			for _, name := range p.Names {
				fnIR.Params = append(fnIR.Params, ir.ParamIR{Name: name.Name, Type: typ, IsVariadic: variadic})
			}
		}
	}

	if fn.Type.Results != nil {
		parts := make([]string, 0, len(fn.Type.Results.List))
		for _, r := range fn.Type.Results.List {
			parts = append(parts, exprString(r.Type))
		}
		fnIR.ReturnType = strings.Join(parts, ", ")
	}

	if fn.Body != nil {
		var buf bytes.Buffer
		if err := printer.Fprint(&buf, e.fset, fn.Body); err == nil {
			fnIR.BodySource = buf.String()
		}
		fnIR.BodyComplexity = complexity.ScoreGoFunc(fn.Body)
	}

	return fnIR
}

func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// exprString renders a type expression back to source, matching the
// teacher's exprToString helper but without import-alias rewriting (the
// graph builder's import classification handles qualification separately).
func exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	fset := token.NewFileSet()
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return ""
	}
	return buf.String()
}
