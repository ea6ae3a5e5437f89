package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/geoview/internal/config"
	"github.com/specialistvlad/geoview/internal/ctxlog"
)

// Parser is the HCL implementation of config.Parser.
type Parser struct{}

// NewLoader returns a config.Loader for .hcl manifests.
func NewLoader() *config.FileLoader {
	return config.NewFileLoader(Parser{})
}

// Extensions implements config.Parser.
func (Parser) Extensions() []string { return []string{".hcl"} }

// ParseFile implements config.Parser.
func (p Parser) ParseFile(ctx context.Context, path string) (config.Document, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return config.Document{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return p.decode(ctx, path, file)
}

// Parse decodes HCL source held in memory. filename is used in diagnostics.
func (p Parser) Parse(ctx context.Context, src []byte, filename string) (config.Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return config.Document{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return p.decode(ctx, filename, file)
}

func (p Parser) decode(ctx context.Context, path string, file *hcl.File) (config.Document, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return config.Document{}, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if len(root.Maps) > 1 {
		return config.Document{}, fmt.Errorf("%s: %w", path, config.ErrDuplicateMap)
	}

	doc := config.Document{Path: path}
	if len(root.Maps) == 1 {
		mc, err := translateMap(root.Maps[0])
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: %w", path, err)
		}
		doc.Map = &mc
	}
	for _, l := range root.Layers {
		d, err := translateLayer(l)
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: %w", path, err)
		}
		doc.Layers = append(doc.Layers, d)
	}
	for _, w := range root.Widgets {
		d, err := translateWidget(w)
		if err != nil {
			return config.Document{}, fmt.Errorf("%s: %w", path, err)
		}
		doc.Widgets = append(doc.Widgets, d)
	}

	logger.Debug("HCL manifest file decoded.", "file", path, "map", doc.Map != nil, "layers", len(doc.Layers), "widgets", len(doc.Widgets))
	return doc, nil
}
