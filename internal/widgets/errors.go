package widgets

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/geoview/internal/model"
)

// Failure is one widget that could not be constructed or docked.
type Failure struct {
	Widget string
	Kind   model.WidgetKind
	Err    error
}

// PartialWidgetFailure lists which widgets of a Wire call failed. It is
// non-fatal: the session still reaches Ready with the widgets that succeeded.
type PartialWidgetFailure struct {
	Succeeded []string
	Failed    []Failure
}

func (e *PartialWidgetFailure) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = fmt.Sprintf("%s: %v", f.Widget, f.Err)
	}
	total := len(e.Succeeded) + len(e.Failed)
	return fmt.Sprintf("%d of %d widgets failed: %s", len(e.Failed), total, strings.Join(parts, "; "))
}

// Unwrap exposes every per-widget cause to errors.Is and errors.As.
func (e *PartialWidgetFailure) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}
