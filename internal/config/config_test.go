package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/geoview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())

	assert.Equal(t, model.DefaultMapConfig(), m.Map)
	require.Len(t, m.Layers, 3)
	assert.Equal(t, []model.LayerKind{model.LayerFeature, model.LayerWebMapService, model.LayerImageService},
		[]model.LayerKind{m.Layers[0].Kind, m.Layers[1].Kind, m.Layers[2].Kind})
	assert.True(t, strings.HasPrefix(m.Layers[1].Endpoint, "\t"), "the parcel endpoint keeps its leading tab")
	require.Len(t, m.Widgets, 5)
	assert.True(t, m.Widgets[3].Expand)
	assert.Equal(t, "wind", m.Widgets[4].Layer)

	other := Default()
	other.Widgets[1].Options["goToOverride"] = "changed"
	assert.Equal(t, "scale:1500", m.Widgets[1].Options["goToOverride"], "Default returns a fresh manifest")
}

func TestAssemble(t *testing.T) {
	center := model.MapConfig{Center: model.Point{Longitude: 4.9, Latitude: 52.37}, Zoom: 12, BasemapID: "streets"}

	t.Run("no map uses defaults", func(t *testing.T) {
		m, err := Assemble(Document{Path: "a", Layers: []model.LayerDescriptor{{ID: "x"}}})
		require.NoError(t, err)
		assert.Equal(t, model.DefaultMapConfig(), m.Map)
		assert.Len(t, m.Layers, 1)
	})

	t.Run("document order is kept", func(t *testing.T) {
		m, err := Assemble(
			Document{Path: "a", Layers: []model.LayerDescriptor{{ID: "1"}, {ID: "2"}}},
			Document{Path: "b", Map: &center, Layers: []model.LayerDescriptor{{ID: "3"}}},
		)
		require.NoError(t, err)
		assert.Equal(t, center, m.Map)
		assert.Equal(t, "3", m.Layers[2].ID)
	})

	t.Run("two maps", func(t *testing.T) {
		_, err := Assemble(Document{Path: "a", Map: &center}, Document{Path: "b", Map: &center})
		assert.ErrorIs(t, err, ErrDuplicateMap)
		assert.Contains(t, err.Error(), "'a' and 'b'")
	})
}

type lineParser struct{ ext string }

func (p lineParser) Extensions() []string { return []string{p.ext} }

func (p lineParser) ParseFile(_ context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	for _, id := range strings.Fields(string(data)) {
		if id == "fail" {
			return Document{}, errors.New("parse failed")
		}
		doc.Layers = append(doc.Layers, model.LayerDescriptor{ID: id, Kind: model.LayerFeature})
	}
	return doc, nil
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("20-b.one", "b1 b2")
	write("10-a.two", "a1")
	write("readme.md", "ignored")

	l := NewFileLoader(lineParser{ext: ".one"}, lineParser{ext: ".two"})

	m, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	var ids []string
	for _, layer := range m.Layers {
		ids = append(ids, layer.ID)
	}
	assert.Equal(t, []string{"a1", "b1", "b2"}, ids)

	write("30-c.one", "fail")
	_, err = l.Load(context.Background(), dir)
	assert.ErrorContains(t, err, "parse failed")

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
