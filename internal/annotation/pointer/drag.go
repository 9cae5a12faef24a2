package pointer

import (
	"gonum.org/v1/gonum/floats"

	"takeoff/internal/annotation/models"
)

// DragHandlers receives the outcome of interactions with a point annotation.
type DragHandlers struct {
	// DragStart fires once, when a press first crosses the threshold.
	DragStart func(id int64)
	// Move fires for every pointer move once the press is a drag.
	Move func(id int64, p models.Point)
	// Toggle fires on release when the press never became a drag.
	Toggle func(id int64)
}

// DragController tells a click on a point annotation from a drag of it.
//
// The threshold is compared against the Euclidean screen distance from the
// press position, strictly greater than. Once crossed, the interaction stays
// a drag even if the pointer comes back near where it started.
type DragController struct {
	scales    Scales
	threshold float64
	handlers  DragHandlers

	active  bool
	start   Event
	id      int64
	dragged bool

	hovered    int64
	hasHovered bool
	pinned     map[int64]bool
}

func NewDragController(scales Scales, threshold float64, handlers DragHandlers) *DragController {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &DragController{
		scales:    scales,
		threshold: threshold,
		handlers:  handlers,
		pinned:    make(map[int64]bool),
	}
}

// PointerDown starts an interaction with annotation id.
func (c *DragController) PointerDown(ev Event, id int64) {
	c.active = true
	c.start = ev
	c.id = id
	c.dragged = false
}

// PointerMove is a no-op without an active press.
func (c *DragController) PointerMove(ev Event) {
	if !c.active {
		return
	}
	if !c.dragged {
		d := floats.Distance([]float64{ev.X, ev.Y}, []float64{c.start.X, c.start.Y}, 2)
		if d <= c.threshold {
			return
		}
		c.dragged = true
		if c.handlers.DragStart != nil {
			c.handlers.DragStart(c.id)
		}
	}
	if c.handlers.Move != nil {
		c.handlers.Move(c.id, ToDocument(ev, c.start.Page, c.scales))
	}
}

// PointerUp ends the interaction. A press that never became a drag is a
// click and toggles the annotation's pin.
func (c *DragController) PointerUp() {
	if !c.active {
		return
	}
	id, dragged := c.id, c.dragged
	c.reset()

	if dragged {
		return
	}
	c.pinned[id] = !c.pinned[id]
	if !c.pinned[id] {
		delete(c.pinned, id)
	}
	if c.handlers.Toggle != nil {
		c.handlers.Toggle(id)
	}
}

// Cancel drops an active press without emitting a click, e.g. when the
// pointer is captured elsewhere.
func (c *DragController) Cancel() {
	c.reset()
}

func (c *DragController) reset() {
	c.active = false
	c.dragged = false
	c.id = 0
	c.start = Event{}
}

// Dragging reports whether a press has crossed the threshold.
func (c *DragController) Dragging() bool {
	return c.active && c.dragged
}

func (c *DragController) Hover(id int64) {
	c.hovered = id
	c.hasHovered = true
}

// Unhover clears the hover state if id is the hovered annotation.
func (c *DragController) Unhover(id int64) {
	if c.hasHovered && c.hovered == id {
		c.hasHovered = false
		c.hovered = 0
	}
}

func (c *DragController) Pinned(id int64) bool {
	return c.pinned[id]
}

// Forget drops the pin of an annotation that no longer exists.
func (c *DragController) Forget(id int64) {
	delete(c.pinned, id)
	c.Unhover(id)
}

// LabelVisible is true while an annotation is hovered or pinned.
func (c *DragController) LabelVisible(id int64) bool {
	return (c.hasHovered && c.hovered == id) || c.pinned[id]
}
