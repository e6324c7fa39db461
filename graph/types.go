// Package graph lowers extractor IR into the typed code graph (nodes and
// edges) and builds its textual node/edge ID grammar, per SPEC_FULL.md §4.5.
package graph

import "fmt"

// NodeType is the closed set of node kinds (spec §3.2).
type NodeType string

const (
	NodeModule   NodeType = "module"
	NodeClass    NodeType = "class"
	NodeFunction NodeType = "function"
	NodeExternal NodeType = "external"
)

// EdgeType is the closed set of edge kinds (spec §3.2).
type EdgeType string

const (
	EdgeContains EdgeType = "contains"
	EdgeImports  EdgeType = "imports"
	EdgeInherits EdgeType = "inherits"
	EdgeCalls    EdgeType = "calls"
)

// Node is a vertex in the persisted code graph.
type Node struct {
	ID             string
	Type           NodeType
	Name           string
	QualifiedName  string
	FilePath       string
	LineStart      int
	LineEnd        int
	Complexity     int
	Properties     map[string]string
}

// Edge is a typed arc between two existing nodes.
type Edge struct {
	ID       string
	SourceID string
	TargetID string
	Type     EdgeType
	Properties map[string]string
}

// Snapshot is an immutable captured graph state, populated only when a
// revision identifier is supplied to the build.
type Snapshot struct {
	ID             string
	CommitHash     string
	CommitMetadata map[string]string
	ParentID       string
	NodeCount      int
	EdgeCount      int
	DeltaCounts    map[string]int
}

// ModuleNodeID renders "mod:<file_path>" (spec §3.2).
func ModuleNodeID(filePath string) string {
	return "mod:" + filePath
}

// ClassNodeID renders "cls:<file_path>:<class_name>".
func ClassNodeID(filePath, className string) string {
	return fmt.Sprintf("cls:%s:%s", filePath, className)
}

// FunctionNodeID renders "fn:<file_path>:<function_name>" for a top-level
// function, or "fn:<file_path>:<class>.<method>" for a method.
func FunctionNodeID(filePath, qualifiedName string) string {
	return fmt.Sprintf("fn:%s:%s", filePath, qualifiedName)
}

// ExternalNodeID renders "ext:<package_name>".
func ExternalNodeID(packageName string) string {
	return "ext:" + packageName
}

// EdgeID renders "edge:<source>:<edge_type>:<target>", guaranteeing a
// stable, round-trippable edge identifier.
func EdgeID(sourceID string, edgeType EdgeType, targetID string) string {
	return fmt.Sprintf("edge:%s:%s:%s", sourceID, edgeType, targetID)
}
