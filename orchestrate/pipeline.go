// Package orchestrate wires scan, extract, complexity/secrets, graph, and
// store into the two pipelines SPEC_FULL.md §4.11 names: a full build and an
// fsnotify-driven incremental update, per spec §5's build lifecycle.
package orchestrate

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/mu-graph/mu/config"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/extract"
	"github.com/mu-graph/mu/graph"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/scan"
	"github.com/mu-graph/mu/secrets"
	"github.com/mu-graph/mu/store"
)

// SecretFinding reports one raw-source secret-pattern match surfaced during
// a build, kept alongside the graph build rather than failing it (spec
// §4.3: secrets scanning is advisory, never blocking).
type SecretFinding struct {
	FilePath string
	Match    secrets.Match
}

// BuildResult summarizes one full or incremental build.
type BuildResult struct {
	FilesScanned   int
	FilesSkipped   int
	NodeCount      int
	EdgeCount      int
	SecretFindings []SecretFinding
	ParseErrors    []error
	Duration       time.Duration
}

// Pipeline owns the scanner/extractor/builder/store chain for one project
// root and caches every file's parsed IR so incremental updates can rebuild
// the full cross-file graph cheaply.
type Pipeline struct {
	root    string
	cfg     *config.Config
	scanner *scan.Scanner
	factory *extract.Factory
	store   *store.Store

	modules map[string]*ir.ModuleIR // keyed by file path
}

// New builds a Pipeline rooted at root, persisting into st.
func New(root string, cfg *config.Config, factory *extract.Factory, st *store.Store) *Pipeline {
	return &Pipeline{
		root:    root,
		cfg:     cfg,
		scanner: scan.New(),
		factory: factory,
		store:   st,
		modules: map[string]*ir.ModuleIR{},
	}
}

func (p *Pipeline) builderOptions() graph.BuildOptions {
	return graph.BuildOptions{}
}

// FullBuild scans the whole project root, extracts every surviving file,
// scans raw source for secret-shaped patterns, builds the complete graph,
// and replaces the store's entire content atomically (spec §4.11's "full
// build" pipeline).
func (p *Pipeline) FullBuild(ctx context.Context) (*BuildResult, error) {
	start := time.Now()

	scanResult, err := p.scanner.Scan(ctx, p.root, scan.Options{
		IgnorePatterns: p.cfg.Scanner.Ignore,
		FollowSymlinks: p.cfg.Scanner.FollowSymlinks,
		MaxFileSizeKB:  p.cfg.Scanner.MaxFileSizeKB,
	})
	if err != nil {
		return nil, err
	}

	var jobs []extract.Job
	var findings []SecretFinding
	for _, f := range scanResult.Files {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		jobs = append(jobs, extract.Job{Path: f.Path, Src: src})
		for _, m := range secrets.Scan(src) {
			findings = append(findings, SecretFinding{FilePath: f.Path, Match: m})
		}
	}

	modules, err := p.factory.ParseFiles(ctx, jobs, 0)
	if err != nil {
		return nil, err
	}

	var parseErrors []error
	p.modules = map[string]*ir.ModuleIR{}
	for _, m := range modules {
		if m == nil {
			continue
		}
		p.modules[m.Path] = m
		if m.Error != "" {
			parseErrors = append(parseErrors, errs.New(errs.Parse, m.Error).WithPath(m.Path, 0))
		}
	}

	nodes, edges := graph.NewBuilder(p.builderOptions()).Build(allModules(p.modules))
	if err := p.store.Build(ctx, nodes, edges); err != nil {
		return nil, err
	}

	return &BuildResult{
		FilesScanned:   len(scanResult.Files),
		FilesSkipped:   len(scanResult.Skipped),
		NodeCount:      len(nodes),
		EdgeCount:      len(edges),
		SecretFindings: findings,
		ParseErrors:    parseErrors,
		Duration:       time.Since(start),
	}, nil
}

// ReprocessFile re-parses a single changed file, rebuilds the full
// in-memory graph from the cached module set (inheritance/call edges can
// span files, so a single-file rebuild alone can't resolve them), and
// atomically applies only the portion of the result attributed to path.
func (p *Pipeline) ReprocessFile(ctx context.Context, path string) (store.ChangeSet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		delete(p.modules, path)
		return p.applyRemoval(ctx, path)
	}

	extractor, err := p.factory.ExtractorFor(path)
	if err != nil {
		return store.ChangeSet{}, err
	}
	mod, err := extractor.ParseSource(src, path)
	if err != nil {
		return store.ChangeSet{}, errs.Wrap(errs.Parse, "cannot parse file", err).WithPath(path, 0)
	}
	p.modules[path] = mod

	nodes, edges := graph.NewBuilder(p.builderOptions()).Build(allModules(p.modules))
	fileNodes, fileEdges := scopeToFile(nodes, edges, path)
	return p.store.ApplyChanges(ctx, path, fileNodes, fileEdges)
}

// applyRemoval clears a deleted file's nodes/edges from the store.
func (p *Pipeline) applyRemoval(ctx context.Context, path string) (store.ChangeSet, error) {
	nodes, edges := graph.NewBuilder(p.builderOptions()).Build(allModules(p.modules))
	fileNodes, fileEdges := scopeToFile(nodes, edges, path)
	return p.store.ApplyChanges(ctx, path, fileNodes, fileEdges)
}

// Modules returns every cached module IR, sorted by file path, for
// consumers (such as a compress command) that want to emit a textual
// projection of a completed build without re-reading the store.
func (p *Pipeline) Modules() []*ir.ModuleIR {
	return allModules(p.modules)
}

func allModules(byPath map[string]*ir.ModuleIR) []*ir.ModuleIR {
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make([]*ir.ModuleIR, len(paths))
	for i, path := range paths {
		out[i] = byPath[path]
	}
	return out
}

// scopeToFile filters nodes owned by path and the edges whose source node
// belongs to it, matching what store.ApplyChanges deletes-then-replaces for
// that file.
func scopeToFile(nodes []*graph.Node, edges []*graph.Edge, path string) ([]*graph.Node, []*graph.Edge) {
	var fileNodes []*graph.Node
	owned := map[string]bool{}
	for _, n := range nodes {
		if n.FilePath == path {
			fileNodes = append(fileNodes, n)
			owned[n.ID] = true
		}
	}
	var fileEdges []*graph.Edge
	for _, e := range edges {
		if owned[e.SourceID] {
			fileEdges = append(fileEdges, e)
		}
	}
	return fileNodes, fileEdges
}
