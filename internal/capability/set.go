package capability

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// ErrCapabilityMissing is returned by Set lookups for names the set was not
// loaded with, or whose value does not implement the expected constructor.
var ErrCapabilityMissing = errors.New("capability missing from set")

// Set is the bound result of one successful Load.
type Set struct {
	caps map[mapengine.Name]mapengine.Capability
}

// NewSet builds a Set directly from capability values.
func NewSet(caps ...mapengine.Capability) *Set {
	s := &Set{caps: make(map[mapengine.Name]mapengine.Capability, len(caps))}
	for _, c := range caps {
		s.caps[c.CapabilityName()] = c
	}
	return s
}

// Has reports whether the set holds name.
func (s *Set) Has(name mapengine.Name) bool {
	_, ok := s.caps[name]
	return ok
}

// Len returns the number of capabilities in the set.
func (s *Set) Len() int {
	return len(s.caps)
}

// Map returns the map constructor.
func (s *Set) Map() (mapengine.MapConstructor, error) {
	return lookup[mapengine.MapConstructor](s, mapengine.NameMap)
}

// View returns the view constructor.
func (s *Set) View() (mapengine.ViewConstructor, error) {
	return lookup[mapengine.ViewConstructor](s, mapengine.NameMapView)
}

// Layer returns the constructor for layers of kind.
func (s *Set) Layer(kind model.LayerKind) (mapengine.LayerConstructor, error) {
	return lookup[mapengine.LayerConstructor](s, mapengine.LayerName(kind))
}

// Widget returns the widget constructor registered under name.
func (s *Set) Widget(name mapengine.Name) (mapengine.WidgetConstructor, error) {
	return lookup[mapengine.WidgetConstructor](s, name)
}

func lookup[T any](s *Set, name mapengine.Name) (T, error) {
	var zero T
	c, ok := s.caps[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrCapabilityMissing, name)
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has type %T", ErrCapabilityMissing, name, c)
	}
	return typed, nil
}
