package pointer

import (
	"fmt"

	"takeoff/internal/annotation/models"
)

// DrawController builds two-point measurements from a press, drag and
// release on empty canvas.
type DrawController struct {
	scales Scales
	commit func(a, b models.Point)

	active  bool
	start   models.Point
	preview models.Point
}

// NewDrawController calls commit with the endpoints of every accepted line.
func NewDrawController(scales Scales, commit func(a, b models.Point)) *DrawController {
	return &DrawController{scales: scales, commit: commit}
}

// PointerDown records the first endpoint.
func (c *DrawController) PointerDown(ev Event) error {
	if ev.Page <= 0 {
		return fmt.Errorf("%w: pointer event without a page", ErrDegenerateGeometry)
	}
	c.active = true
	c.start = ToDocument(ev, ev.Page, c.scales)
	c.preview = c.start
	return nil
}

// PointerMove updates the live endpoint while drawing.
func (c *DrawController) PointerMove(ev Event) {
	if !c.active {
		return
	}
	c.preview = ToDocument(ev, c.start.Page, c.scales)
}

// PointerUp commits the line. Releasing on another page or on the starting
// point is rejected. Without an active press it does nothing.
func (c *DrawController) PointerUp(ev Event) error {
	if !c.active {
		return nil
	}
	start := c.start
	c.Cancel()

	if ev.Page != 0 && ev.Page != start.Page {
		return fmt.Errorf("%w: line ends on page %d, starts on page %d", ErrDegenerateGeometry, ev.Page, start.Page)
	}
	end := ToDocument(ev, start.Page, c.scales)
	if end.X == start.X && end.Y == start.Y {
		return fmt.Errorf("%w: zero-length line", ErrDegenerateGeometry)
	}
	if c.commit != nil {
		c.commit(start, end)
	}
	return nil
}

// Cancel abandons the line being drawn.
func (c *DrawController) Cancel() {
	c.active = false
	c.start = models.Point{}
	c.preview = models.Point{}
}

// Preview returns the line being drawn, if any.
func (c *DrawController) Preview() (a, b models.Point, ok bool) {
	if !c.active {
		return models.Point{}, models.Point{}, false
	}
	return c.start, c.preview, true
}
