package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCapability struct{ name mapengine.Name }

func (s stubCapability) CapabilityName() mapengine.Name { return s.name }

func TestRegistry_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("registered capability resolves", func(t *testing.T) {
		r := New()
		r.RegisterCapability(stubCapability{name: mapengine.NameMap})

		c, err := r.Resolve(ctx, mapengine.NameMap)
		require.NoError(t, err)
		assert.Equal(t, mapengine.NameMap, c.CapabilityName())
	})

	t.Run("unknown name is unsupported", func(t *testing.T) {
		r := New()
		_, err := r.Resolve(ctx, "widgets/compass")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupported))
	})

	t.Run("provider error is returned", func(t *testing.T) {
		r := New()
		boom := errors.New("fetch failed")
		r.RegisterProvider(mapengine.NameMapView, func(context.Context) (mapengine.Capability, error) {
			return nil, boom
		})
		_, err := r.Resolve(ctx, mapengine.NameMapView)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("provider returning the wrong capability is rejected", func(t *testing.T) {
		r := New()
		r.RegisterProvider(mapengine.NameMapView, func(context.Context) (mapengine.Capability, error) {
			return stubCapability{name: mapengine.NameMap}, nil
		})
		_, err := r.Resolve(ctx, mapengine.NameMapView)
		assert.ErrorContains(t, err, "returned capability 'map'")
	})

	t.Run("provider returning nothing is rejected", func(t *testing.T) {
		r := New()
		r.RegisterProvider(mapengine.NameMapView, func(context.Context) (mapengine.Capability, error) {
			return nil, nil
		})
		var c mapengine.Capability
		var err error
		require.NotPanics(t, func() { c, err = r.Resolve(ctx, mapengine.NameMapView) })
		assert.Nil(t, c)
		assert.ErrorContains(t, err, "provider for 'views/map-view' returned no capability")
	})
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterCapability(stubCapability{name: mapengine.NameMap})
	assert.Panics(t, func() {
		r.RegisterCapability(stubCapability{name: mapengine.NameMap})
	})
}

func TestRegistry_Validate(t *testing.T) {
	ctx := context.Background()
	r := New()
	r.RegisterCapability(stubCapability{name: mapengine.NameMap})
	r.RegisterCapability(stubCapability{name: mapengine.NameMapView})

	require.NoError(t, r.Validate(ctx, []mapengine.Name{mapengine.NameMap, mapengine.NameMapView}))

	err := r.Validate(ctx, []mapengine.Name{mapengine.NameMap, mapengine.NameLegend, mapengine.NameExpand})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widgets/legend")
	assert.Contains(t, err.Error(), "widgets/expand")

	assert.Equal(t, []mapengine.Name{mapengine.NameMap, mapengine.NameMapView}, r.Names())
}
