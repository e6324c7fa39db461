// Package complexity scores cyclomatic complexity over extractor IR, per
// SPEC_FULL.md §4.3.
package complexity

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// decisionKeywords is a generic, language-tagged keyword set used by
// extractors that do not hand MU a concrete syntax tree to walk (the Go
// extractor instead calls ScoreGoFunc, which inspects go/ast directly).
// Each occurrence contributes one decision point; short-circuit operators
// count once per occurrence, not per operand.
var decisionKeywords = map[string][]string{
	"python":     {"if ", "elif ", "for ", "while ", "except ", " and ", " or ", "case "},
	"typescript": {"if (", "if(", "for (", "for(", "while (", "while(", "catch ", "catch(", "case ", "&&", "||", "?"},
	"javascript": {"if (", "if(", "for (", "for(", "while (", "while(", "catch ", "catch(", "case ", "&&", "||", "?"},
	"rust":       {"if ", "if let ", "for ", "while ", "while let ", "match ", "=> ", "&&", "||"},
	"java":       {"if (", "if(", "for (", "for(", "while (", "while(", "catch (", "catch(", "case ", "&&", "||", "?"},
	"csharp":     {"if (", "if(", "for (", "for(", "foreach (", "foreach(", "while (", "while(", "catch (", "catch(", "case ", "&&", "||", "?"},
}

// ScoreSource counts decision points in a function body's source text by
// keyword occurrence. It is the fallback complexity scorer for languages
// whose extractor retains body_source rather than a reusable syntax tree.
// Baseline is 1.
func ScoreSource(language, body string) int {
	score := 1
	if strings.TrimSpace(body) == "" {
		return 0
	}
	keywords, ok := decisionKeywords[language]
	if !ok {
		return score
	}
	for _, kw := range keywords {
		score += strings.Count(body, kw)
	}
	return score
}

// ScoreGoFunc counts decision points over a parsed Go function body using
// go/ast.Inspect, matching the teacher's go/ast-based extractor (rather than
// tree-sitter, which the Go extractor does not use). Nested function
// literals are skipped so they only contribute to their own score.
func ScoreGoFunc(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	score := 1
	depth := 0
	ast.Inspect(body, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.FuncLit:
			if depth > 0 {
				return false
			}
			depth++
			return true
		case *ast.IfStmt:
			score++
		case *ast.ForStmt:
			score++
		case *ast.RangeStmt:
			score++
		case *ast.CaseClause:
			if len(v.List) > 0 {
				score++
			} else {
				score++ // default clause still is a branch
			}
		case *ast.CommClause:
			score++
		case *ast.BinaryExpr:
			if v.Op == token.LAND || v.Op == token.LOR {
				score++
			}
		}
		return true
	})
	return score
}

// ParseGoBody is a convenience used by extract/golang and tests: parses a
// raw function body string wrapped in a synthetic function so ScoreGoFunc
// can walk it without needing the original *ast.File.
func ParseGoBody(src string) (*ast.BlockStmt, error) {
	wrapped := "package p\nfunc _() {\n" + src + "\n}\n"
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", wrapped, 0)
	if err != nil {
		return nil, err
	}
	fn := file.Decls[0].(*ast.FuncDecl)
	return fn.Body, nil
}
