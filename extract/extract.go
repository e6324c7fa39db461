// Package extract defines the per-language extractor contract and a Factory
// that resolves a language from a file extension, per SPEC_FULL.md §4.2.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/scan"
)

// Extractor parses one file's source into the uniform IR. Implementations
// must be safe to share across goroutines only if they carry no per-parse
// mutable state; Factory hands out one instance per worker to sidestep that
// question entirely.
type Extractor interface {
	ParseSource(src []byte, path string) (*ir.ModuleIR, error)
}

// NewFunc constructs a fresh Extractor instance, one per worker.
type NewFunc func() Extractor

// Factory resolves a language from a file extension and dispatches to the
// matching extractor constructor, mirroring the teacher's
// Factory.GetInspector closed switch.
type Factory struct {
	byLanguage map[scan.Language]NewFunc
}

// NewFactory builds a Factory with the given per-language constructors.
// Callers register extract/golang, extract/python, etc. here rather than
// Factory importing every subpackage itself, keeping each language backend
// an optional, separately buildable dependency.
func NewFactory(constructors map[scan.Language]NewFunc) *Factory {
	return &Factory{byLanguage: constructors}
}

// ExtractorFor resolves the extractor constructor for a file's extension.
func (f *Factory) ExtractorFor(path string) (Extractor, error) {
	lang := scan.LanguageFor(path)
	newFn, ok := f.byLanguage[lang]
	if !ok {
		ext := strings.ToLower(filepath.Ext(path))
		return nil, errs.New(errs.UnsupportedLanguage, fmt.Sprintf("no extractor registered for %s", ext)).WithPath(path, 0)
	}
	return newFn(), nil
}

// Job is one file queued for extraction.
type Job struct {
	Path string
	Src  []byte
}

// ParseFiles fans jobs across an errgroup worker pool, one Extractor
// instance per worker, matching the teacher's own errgroup-based
// parallel-file-processing idiom. A single file's parse error is recorded on
// its ModuleIR rather than aborting the whole batch, so one malformed file
// never blocks extraction of the rest of the codebase (spec §4.2 edge case).
func (f *Factory) ParseFiles(ctx context.Context, jobs []Job, workers int) ([]*ir.ModuleIR, error) {
	if workers <= 0 {
		workers = 4
	}
	results := make([]*ir.ModuleIR, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, job := range jobs {
		idx, job := idx, job
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			extractor, err := f.ExtractorFor(job.Path)
			if err != nil {
				results[idx] = &ir.ModuleIR{Path: job.Path, Error: err.Error()}
				return nil
			}
			mod, err := extractor.ParseSource(job.Src, job.Path)
			if err != nil {
				results[idx] = &ir.ModuleIR{Path: job.Path, Error: err.Error()}
				return nil
			}
			results[idx] = mod
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
