package view

import (
	"context"
	"sync"
	"testing"

	"github.com/specialistvlad/geoview/internal/capability"
	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
	"github.com/specialistvlad/geoview/internal/registry"
	"github.com/specialistvlad/geoview/modules/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*memengine.Engine, *capability.Set, mapengine.Map) {
	t.Helper()
	e := memengine.New()
	r := registry.New()
	e.Register(r)
	set, err := capability.NewLoader(r).Load(context.Background(), mapengine.NameMap, mapengine.NameMapView)
	require.NoError(t, err)
	ctor, err := set.Map()
	require.NoError(t, err)
	m, err := ctor.NewMap("topographic", nil)
	require.NoError(t, err)
	return e, set, m
}

func TestManager_BindAndRelease(t *testing.T) {
	ctx := context.Background()
	e, set, m := setup(t)
	mgr := NewManager()
	surface := memengine.NewSurface("viewDiv")

	h, err := mgr.Bind(ctx, set, mapengine.ViewProperties{Surface: surface, Center: model.DefaultCenter, Zoom: 10, Map: m})
	require.NoError(t, err)
	assert.Equal(t, "viewDiv", h.Surface())
	assert.True(t, mgr.Bound("viewDiv"))
	require.NoError(t, h.WhenReady(ctx))

	h.Release()
	h.Release()
	assert.True(t, h.Released())
	assert.False(t, mgr.Bound("viewDiv"))
	assert.True(t, e.LastView().Detached())
}

func TestManager_BindErrors(t *testing.T) {
	ctx := context.Background()
	_, set, m := setup(t)

	tests := []struct {
		name    string
		set     *capability.Set
		surface mapengine.Surface
		want    error
	}{
		{name: "nil surface", set: set, surface: nil, want: ErrNilSurface},
		{name: "unmounted surface", set: set, surface: unmounted("gone"), want: ErrSurfaceNotMounted},
		{name: "missing view capability", set: capability.NewSet(), surface: memengine.NewSurface("s"), want: capability.ErrCapabilityMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager().Bind(ctx, tt.set, mapengine.ViewProperties{Surface: tt.surface, Map: m})
			var bindErr *ViewBindError
			require.ErrorAs(t, err, &bindErr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func unmounted(id string) *memengine.Surface {
	s := memengine.NewSurface(id)
	s.Unmount()
	return s
}

func TestManager_EngineErrorFreesSlot(t *testing.T) {
	ctx := context.Background()
	_, set, _ := setup(t)
	mgr := NewManager()
	surface := memengine.NewSurface("viewDiv")

	_, err := mgr.Bind(ctx, set, mapengine.ViewProperties{Surface: surface})
	var bindErr *ViewBindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "viewDiv", bindErr.Surface)
	assert.False(t, mgr.Bound("viewDiv"))
}

func TestManager_OneViewPerSurface(t *testing.T) {
	ctx := context.Background()
	e, set, m := setup(t)
	mgr := NewManager()
	surface := memengine.NewSurface("viewDiv")
	props := mapengine.ViewProperties{Surface: surface, Map: m}

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Bind(ctx, set, props)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSurfaceBound)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, e.Views(), 1)
}
