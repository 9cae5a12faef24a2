// Package pointer turns page-relative pointer events into annotation edits.
package pointer

import (
	"errors"

	"takeoff/internal/annotation/models"
)

// ErrDegenerateGeometry rejects annotations that would have no meaningful
// geometry: zero-length or cross-page lines, or points without a page.
var ErrDegenerateGeometry = errors.New("pointer: degenerate geometry")

// DefaultDragThreshold is the screen distance, in pixels, a pointer must
// travel before a press on an annotation becomes a drag.
const DefaultDragThreshold = 3.0

// Event is a pointer position in screen pixels relative to the top-left of
// a rendered page. Page is 1-based; 0 means the renderer gave no page.
type Event struct {
	X    float64
	Y    float64
	Page int
}

// Scales reports the current zoom factor of a page.
type Scales interface {
	PageScale(page int) float64
}

// ToDocument divides a screen position by the page zoom.
func ToDocument(ev Event, page int, scales Scales) models.Point {
	scale := scales.PageScale(page)
	if scale <= 0 {
		scale = 1
	}
	return models.Point{X: ev.X / scale, Y: ev.Y / scale, Page: page}
}
