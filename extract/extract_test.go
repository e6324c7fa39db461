package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mu-graph/mu/ir"
	"github.com/mu-graph/mu/scan"
)

type stubExtractor struct {
	fail bool
}

func (s *stubExtractor) ParseSource(src []byte, path string) (*ir.ModuleIR, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	return &ir.ModuleIR{Path: path, Name: "stub"}, nil
}

func newStubFactory(fail bool) *Factory {
	return NewFactory(map[scan.Language]NewFunc{
		scan.LangGo: func() Extractor { return &stubExtractor{fail: fail} },
	})
}

func TestExtractorForResolvesRegisteredLanguage(t *testing.T) {
	f := newStubFactory(false)
	ext, err := f.ExtractorFor("main.go")
	require.NoError(t, err)
	assert.NotNil(t, ext)
}

func TestExtractorForUnregisteredLanguage(t *testing.T) {
	f := newStubFactory(false)
	_, err := f.ExtractorFor("main.py")
	assert.Error(t, err)
}

func TestParseFilesSucceeds(t *testing.T) {
	f := newStubFactory(false)
	jobs := []Job{
		{Path: "a.go", Src: []byte("package a")},
		{Path: "b.go", Src: []byte("package b")},
	}

	mods, err := f.ParseFiles(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "a.go", mods[0].Path)
	assert.Equal(t, "b.go", mods[1].Path)
	assert.Empty(t, mods[0].Error)
}

func TestParseFilesRecordsPerFileErrorWithoutAbortingBatch(t *testing.T) {
	f := newStubFactory(true)
	jobs := []Job{{Path: "a.go", Src: []byte("package a")}}

	mods, err := f.ParseFiles(context.Background(), jobs, 1)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "boom", mods[0].Error)
}

func TestParseFilesRecordsUnsupportedLanguageAsModuleError(t *testing.T) {
	f := newStubFactory(false)
	jobs := []Job{{Path: "main.rb", Src: []byte("puts 1")}}

	mods, err := f.ParseFiles(context.Background(), jobs, 1)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.NotEmpty(t, mods[0].Error)
}

func TestParseFilesDefaultsWorkerCount(t *testing.T) {
	f := newStubFactory(false)
	mods, err := f.ParseFiles(context.Background(), []Job{{Path: "a.go", Src: []byte("package a")}}, 0)
	require.NoError(t, err)
	require.Len(t, mods, 1)
}
