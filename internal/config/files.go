package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/geoview/internal/ctxlog"
	"github.com/specialistvlad/geoview/internal/fsutil"
	"github.com/specialistvlad/geoview/internal/model"
)

// Parser reads one manifest file of a specific format.
type Parser interface {
	// Extensions lists the file name suffixes the parser handles.
	Extensions() []string
	ParseFile(ctx context.Context, path string) (Document, error)
}

// FileLoader loads manifests from files and directories, dispatching each
// file to the parser that handles its extension. Directories are searched
// recursively and their files merged in lexical order.
type FileLoader struct {
	parsers []Parser
}

// NewFileLoader returns a FileLoader over parsers. Earlier parsers win when
// two handle the same extension.
func NewFileLoader(parsers ...Parser) *FileLoader {
	return &FileLoader{parsers: parsers}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, paths ...string) (*model.Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	exts := l.extensions()

	var docs []Document
	for _, root := range paths {
		files, err := fsutil.FindFiles(root, exts...)
		if err != nil {
			return nil, fmt.Errorf("failed to find manifest files in '%s': %w", root, err)
		}
		logger.Debug("Found manifest files.", "path", root, "count", len(files))
		for _, file := range files {
			p := l.parserFor(file)
			doc, err := p.ParseFile(ctx, file)
			if err != nil {
				return nil, err
			}
			doc.Path = file
			docs = append(docs, doc)
		}
	}

	m, err := Assemble(docs...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Manifest assembled.", "files", len(docs), "layers", len(m.Layers), "widgets", len(m.Widgets))
	return m, nil
}

func (l *FileLoader) extensions() []string {
	var exts []string
	for _, p := range l.parsers {
		for _, ext := range p.Extensions() {
			if !slices.Contains(exts, ext) {
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

func (l *FileLoader) parserFor(file string) Parser {
	for _, p := range l.parsers {
		if fsutil.HasExtension(file, p.Extensions()...) {
			return p
		}
	}
	// FindFiles only returns files matching a parser extension.
	panic(fmt.Sprintf("config: no parser for '%s'", file))
}
