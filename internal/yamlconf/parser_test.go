package yamlconf

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/geoview/internal/config"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_DefaultManifestFile(t *testing.T) {
	m, err := NewLoader().Load(context.Background(), filepath.Join("testdata", "default.yaml"))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	want := config.Default()
	assert.Equal(t, want.Map, m.Map)
	require.Len(t, m.Layers, 3)
	assert.Equal(t, want.Layers[1].Endpoint, m.Layers[1].Endpoint)
	assert.Equal(t, model.LayerImageService, m.Layers[2].Kind)
	require.Len(t, m.Widgets, 5)
	for i := range want.Widgets {
		assert.Equal(t, want.Widgets[i].Kind, m.Widgets[i].Kind)
		assert.Equal(t, want.Widgets[i].Options, m.Widgets[i].Options)
	}
	assert.Equal(t, config.SpottedStyling(), m.Layers[0].Styling)
	assert.Nil(t, m.Layers[1].Styling)
}

func TestParser_Numbers(t *testing.T) {
	doc, err := Parser{}.Parse(context.Background(), []byte(`
widgets:
  - kind: editor
    dock: top-right
    options:
      snapping: {tolerance: 15, enabled: true}
      layers: [test, wind]
`), "test.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"snapping": map[string]any{"tolerance": 15.0, "enabled": true},
		"layers":   []any{"test", "wind"},
	}, doc.Widgets[0].Options)
	assert.Nil(t, doc.Map)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "unknown key", src: "compass: true\n", wantErr: "failed to parse"},
		{name: "bad center", src: "map:\n  center: [1, 2, 3]\n", wantErr: "center must be"},
		{name: "unknown layer kind", src: "layers:\n  - id: x\n    kind: vector-tile\n", wantErr: "unknown layer kind"},
		{name: "unknown widget kind", src: "widgets:\n  - kind: compass\n", wantErr: "unknown widget kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parser{}.Parse(context.Background(), []byte(tt.src), "test.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_Empty(t *testing.T) {
	doc, err := Parser{}.Parse(context.Background(), nil, "empty.yaml")
	require.NoError(t, err)
	assert.Nil(t, doc.Map)
	assert.Empty(t, doc.Layers)
}
