package session

import (
	"context"
	"fmt"
	"slices"

	"takeoff/internal/annotation/autosave"
	"takeoff/internal/annotation/models"
	"takeoff/internal/annotation/pointer"
)

// FixtureSession edits a fixture count: single points placed by clicking
// empty canvas and moved by dragging.
type FixtureSession struct {
	*Session[models.Fixture]
	drag *pointer.DragController
}

func NewFixtureSession(store autosave.Store, doc *models.Document, opts Options) (*FixtureSession, error) {
	opts.normalize()
	s, err := newSession(fixtureKind, store, doc, opts)
	if err != nil {
		return nil, err
	}
	fs := &FixtureSession{Session: s}
	fs.drag = pointer.NewDragController(locked[models.Fixture]{s}, opts.DragThreshold, pointer.DragHandlers{
		DragStart: fs.dragStartLocked,
		Move:      fs.moveLocked,
	})
	return fs, nil
}

// OpenFixtures loads a fixture count from the store.
func OpenFixtures(ctx context.Context, store autosave.Store, id string, opts Options) (*FixtureSession, error) {
	doc, err := load(ctx, store, id)
	if err != nil {
		return nil, err
	}
	return NewFixtureSession(store, doc, opts)
}

// Place adds a fixture where empty canvas was clicked, tagged with the
// selected tag.
func (s *FixtureSession) Place(ev pointer.Event) (models.Fixture, error) {
	if ev.Page <= 0 {
		return models.Fixture{}, fmt.Errorf("%w: fixture without a page", pointer.ErrDegenerateGeometry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := pointer.ToDocument(ev, ev.Page, locked[models.Fixture]{s.Session})
	f := models.NewFixture(s.nextIDLocked(), p, s.tags.Selected(), s.now())
	s.addLocked(f)
	return f, nil
}

// PointerDown presses on fixture id. Unknown ids are ignored.
func (s *FixtureSession) PointerDown(ev pointer.Event, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return
	}
	s.drag.PointerDown(ev, id)
}

func (s *FixtureSession) PointerMove(ev pointer.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.PointerMove(ev)
}

// PointerUp ends a press; without movement it toggles the fixture's pin.
func (s *FixtureSession) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.PointerUp()
}

// Dragging reports whether a fixture is being moved.
func (s *FixtureSession) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drag.Dragging()
}

func (s *FixtureSession) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.Cancel()
}

func (s *FixtureSession) Hover(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.Hover(id)
}

func (s *FixtureSession) Unhover(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.Unhover(id)
}

func (s *FixtureSession) Pinned(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drag.Pinned(id)
}

func (s *FixtureSession) LabelVisible(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.drag.LabelVisible(id)
}

// Delete removes a fixture and its pin.
func (s *FixtureSession) Delete(id int64) bool {
	if !s.Session.Delete(id) {
		return false
	}
	s.mu.Lock()
	s.drag.Forget(id)
	s.mu.Unlock()
	return true
}

func (s *FixtureSession) dragStartLocked(id int64) {
	s.history.Push(s.items)
}

func (s *FixtureSession) moveLocked(id int64, p models.Point) {
	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	items := slices.Clone(s.items)
	items[i].Point = p
	items[i].Page = p.Page
	items[i].UpdatedAt = s.now()
	s.items = items
	s.changedLocked()
}
