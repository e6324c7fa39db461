package graph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mu-graph/mu/ir"
)

// BuildOptions configures import classification and inheritance resolution.
type BuildOptions struct {
	// PathAliases resolves a TS/JS bare specifier prefix (e.g. "@/") to a
	// root-relative directory, consulted only here — extractors leave the
	// original specifier untransformed (SPEC_FULL.md §9).
	PathAliases map[string]string
	// ProjectNamespaces lists Java/C# namespace prefixes treated as internal.
	ProjectNamespaces []string
}

// Builder lowers a set of ModuleIR into Nodes and Edges (spec §4.5).
type Builder struct {
	opts BuildOptions

	nodes       []*Node
	edges       []*Edge
	nodeByID    map[string]*Node
	classByName map[string][]*Node // class node lookup by bare class name, for inheritance + cross-module calls
	funcByName  map[string][]*Node // function/method node lookup by bare name, for call resolution
	moduleByPath map[string]*ir.ModuleIR
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts BuildOptions) *Builder {
	return &Builder{
		opts:         opts,
		nodeByID:     map[string]*Node{},
		classByName:  map[string][]*Node{},
		funcByName:   map[string][]*Node{},
		moduleByPath: map[string]*ir.ModuleIR{},
	}
}

// Build runs all three passes over modules and returns the resulting nodes
// and edges. For a fixed input set, node IDs, edge IDs, and output order are
// stable across runs (spec §4.5 determinism).
func (b *Builder) Build(modules []*ir.ModuleIR) ([]*Node, []*Edge) {
	for _, m := range modules {
		b.moduleByPath[m.Path] = m
	}
	for _, m := range modules {
		b.buildModuleNodes(m)
	}
	for _, m := range modules {
		b.classifyImports(m)
	}
	for _, m := range modules {
		b.resolveInheritance(m)
	}
	for _, m := range modules {
		b.resolveCalls(m)
	}
	return b.nodes, b.edges
}

func (b *Builder) addNode(n *Node) *Node {
	if existing, ok := b.nodeByID[n.ID]; ok {
		return existing
	}
	b.nodeByID[n.ID] = n
	b.nodes = append(b.nodes, n)
	if n.Type == NodeClass {
		b.classByName[n.Name] = append(b.classByName[n.Name], n)
	}
	if n.Type == NodeFunction {
		b.funcByName[n.Name] = append(b.funcByName[n.Name], n)
	}
	return n
}

func (b *Builder) addEdge(sourceID string, edgeType EdgeType, targetID string) {
	id := EdgeID(sourceID, edgeType, targetID)
	if _, ok := b.findEdge(id); ok {
		return
	}
	b.edges = append(b.edges, &Edge{ID: id, SourceID: sourceID, TargetID: targetID, Type: edgeType, Properties: map[string]string{}})
}

func (b *Builder) findEdge(id string) (*Edge, bool) {
	for _, e := range b.edges {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func (b *Builder) externalNode(pkg string) *Node {
	id := ExternalNodeID(pkg)
	if n, ok := b.nodeByID[id]; ok {
		return n
	}
	return b.addNode(&Node{ID: id, Type: NodeExternal, Name: pkg, Properties: map[string]string{}})
}

// Pass 1 — nodes.
func (b *Builder) buildModuleNodes(m *ir.ModuleIR) {
	modID := ModuleNodeID(m.Path)
	modNode := b.addNode(&Node{
		ID:         modID,
		Type:       NodeModule,
		Name:       m.Name,
		FilePath:   m.Path,
		LineStart:  1,
		LineEnd:    m.TotalLines,
		Properties: map[string]string{"language": m.Language},
	})

	moduleComplexity := 0

	for _, fn := range m.Functions {
		fnNode := b.functionNode(m, "", fn)
		b.addEdge(modID, EdgeContains, fnNode.ID)
		moduleComplexity += fn.BodyComplexity
	}

	for _, cls := range m.Classes {
		clsID := ClassNodeID(m.Path, cls.Name)
		clsNode := b.addNode(&Node{
			ID:            clsID,
			Type:          NodeClass,
			Name:          cls.Name,
			QualifiedName: cls.Name,
			FilePath:      m.Path,
			LineStart:     cls.StartLine,
			LineEnd:       cls.EndLine,
			Properties:    map[string]string{"bases": strings.Join(cls.Bases, ", ")},
		})
		b.addEdge(modID, EdgeContains, clsID)

		for _, method := range cls.Methods {
			fnNode := b.functionNode(m, cls.Name, method)
			b.addEdge(clsID, EdgeContains, fnNode.ID)
			clsNode.Complexity += method.BodyComplexity
			moduleComplexity += method.BodyComplexity
		}
	}

	modNode.Complexity = moduleComplexity
}

func (b *Builder) functionNode(m *ir.ModuleIR, className string, fn *ir.FunctionIR) *Node {
	qualified := fn.Name
	if className != "" {
		qualified = className + "." + fn.Name
	}
	id := FunctionNodeID(m.Path, qualified)
	bodyHash, _ := Hash([]byte(fn.BodySource))
	return b.addNode(&Node{
		ID:            id,
		Type:          NodeFunction,
		Name:          fn.Name,
		QualifiedName: qualified,
		FilePath:      m.Path,
		LineStart:     fn.StartLine,
		LineEnd:       fn.EndLine,
		Complexity:    fn.BodyComplexity,
		Properties: map[string]string{
			"signature":  signature(fn),
			"body_hash":  strconv.FormatUint(bodyHash, 16),
			"decorators": strings.Join(fn.Decorators, ", "),
		},
	})
}

// signature renders a parameter/return-type string diff can parse back apart
// via splitParams/returnType without needing the original FunctionIR.
func signature(fn *ir.FunctionIR) string {
	parts := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		part := p.Name
		if p.Type != "" {
			part += " " + p.Type
		}
		if p.Default != "" {
			part += "=" + p.Default
		}
		parts = append(parts, part)
	}
	sig := fn.Name + "(" + strings.Join(parts, ", ") + ")"
	if fn.ReturnType != "" {
		sig += " -> " + fn.ReturnType
	}
	return sig
}

// Pass 2 — import classification.
func (b *Builder) classifyImports(m *ir.ModuleIR) {
	modID := ModuleNodeID(m.Path)
	modNode := b.nodeByID[modID]

	dynamicCount := 0
	for _, imp := range m.Imports {
		if imp.IsDynamic {
			dynamicCount++
			modNode.Properties["dynamic."+strconv.Itoa(dynamicCount)] = imp.Module + " <- " + imp.DynamicSource + " " + imp.DynamicPattern
			continue
		}

		switch classify(m.Language, imp, b.opts) {
		case classStdlib:
			// no edge
		case classInternal:
			if target := b.resolveInternal(m, imp); target != "" {
				b.addEdge(modID, EdgeImports, target)
			}
		default: // external
			pkg := externalPackageName(m.Language, imp)
			ext := b.externalNode(pkg)
			b.addEdge(modID, EdgeImports, ext.ID)
		}
	}
}

func (b *Builder) resolveInternal(m *ir.ModuleIR, imp ir.ImportIR) string {
	for _, candidate := range internalCandidates(m, imp, b.opts) {
		if _, ok := b.moduleByPath[candidate]; ok {
			return ModuleNodeID(candidate)
		}
	}
	return ""
}

// Pass 3 — inheritance.
func (b *Builder) resolveInheritance(m *ir.ModuleIR) {
	for _, cls := range m.Classes {
		clsID := ClassNodeID(m.Path, cls.Name)
		for _, base := range cls.Bases {
			baseName := lastSegment(base)
			if candidates := b.classByName[baseName]; len(candidates) > 0 {
				b.addEdge(clsID, EdgeInherits, candidates[0].ID)
				continue
			}
			ext := b.externalNode(base)
			b.addEdge(clsID, EdgeInherits, ext.ID)
		}
	}
}

// Pass 4 — calls. Resolution is name-based rather than a full per-language
// call graph (extractors don't retain a reusable AST past body_source):
// for every function/method, scan its body for other known function names
// immediately followed by "(", the same same-file/cross-file identifier
// lookup other_examples' CodeEagle parser does via its funcNames map, just
// applied across body_source text instead of a tree-sitter node.
func (b *Builder) resolveCalls(m *ir.ModuleIR) {
	for _, fn := range m.Functions {
		b.resolveFunctionCalls(FunctionNodeID(m.Path, fn.Name), fn.BodySource)
	}
	for _, cls := range m.Classes {
		for _, method := range cls.Methods {
			id := FunctionNodeID(m.Path, cls.Name+"."+method.Name)
			b.resolveFunctionCalls(id, method.BodySource)
		}
	}
}

var callIdentifierRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?\s*\(`)

func (b *Builder) resolveFunctionCalls(callerID, body string) {
	if body == "" {
		return
	}
	seen := map[string]bool{}
	for _, m := range callIdentifierRe.FindAllString(body, -1) {
		name := strings.TrimRight(m, " \t(")
		if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
			name = name[idx+1:]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		for _, target := range b.funcByName[name] {
			if target.ID == callerID {
				continue
			}
			b.addEdge(callerID, EdgeCalls, target.ID)
		}
	}
}

func lastSegment(qualified string) string {
	parts := strings.FieldsFunc(qualified, func(r rune) bool { return r == '.' || r == ':' })
	if len(parts) == 0 {
		return qualified
	}
	return parts[len(parts)-1]
}

