package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/layers"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/registry"
	"github.com/specialistvlad/geoview/modules/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	ctx := context.Background()
	r := registry.New()
	memengine.New().Register(r)
	set, err := capability.NewLoader(r).Load(ctx, mapengine.AllNames...)
	require.NoError(t, err)

	built, err := layers.Build(ctx, set, []model.LayerDescriptor{
		{ID: "test", Kind: model.LayerFeature},
		{ID: "wind", Kind: model.LayerImageService},
	})
	require.NoError(t, err)

	t.Run("known basemap", func(t *testing.T) {
		m, err := Compose(ctx, set, "hybrid", built)
		require.NoError(t, err)
		assert.Equal(t, "hybrid", m.Basemap())
		require.Len(t, m.Layers(), 2)
		assert.Equal(t, "test", m.Layers()[0].ID())
		assert.Equal(t, "wind", m.Layers()[1].ID())
	})

	t.Run("no layers", func(t *testing.T) {
		m, err := Compose(ctx, set, "topographic", nil)
		require.NoError(t, err)
		assert.Empty(t, m.Layers())
	})

	t.Run("unknown basemap", func(t *testing.T) {
		_, err := Compose(ctx, set, "not-a-real-basemap", built)
		var compErr *CompositionError
		require.ErrorAs(t, err, &compErr)
		assert.Equal(t, "not-a-real-basemap", compErr.Basemap)
		assert.True(t, errors.Is(err, mapengine.ErrUnknownBasemap))
		assert.Contains(t, err.Error(), "not-a-real-basemap")
	})

	t.Run("missing map constructor", func(t *testing.T) {
		_, err := Compose(ctx, capability.NewSet(), "hybrid", nil)
		assert.ErrorIs(t, err, capability.ErrCapabilityMissing)
	})
}
