package session

import (
	"context"

	"takeoff/internal/annotation/autosave"
	"takeoff/internal/annotation/models"
	"takeoff/internal/annotation/pointer"
)

// MeasurementSession edits a take-off: two-point length measurements drawn
// by press, drag and release.
type MeasurementSession struct {
	*Session[models.Measurement]
	draw *pointer.DrawController
}

// NewMeasurementSession starts editing doc. A document without a kind is
// treated as a new take-off.
func NewMeasurementSession(store autosave.Store, doc *models.Document, opts Options) (*MeasurementSession, error) {
	s, err := newSession(measurementKind, store, doc, opts)
	if err != nil {
		return nil, err
	}
	ms := &MeasurementSession{Session: s}
	ms.draw = pointer.NewDrawController(locked[models.Measurement]{s}, ms.commitLocked)
	return ms, nil
}

// OpenMeasurements loads a take-off from the store.
func OpenMeasurements(ctx context.Context, store autosave.Store, id string, opts Options) (*MeasurementSession, error) {
	doc, err := load(ctx, store, id)
	if err != nil {
		return nil, err
	}
	return NewMeasurementSession(store, doc, opts)
}

// PointerDown starts a line on empty canvas.
func (s *MeasurementSession) PointerDown(ev pointer.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draw.PointerDown(ev); err != nil {
		s.log.Debug("ignoring press: %v", err)
	}
}

func (s *MeasurementSession) PointerMove(ev pointer.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draw.PointerMove(ev)
}

// PointerUp finishes the line. ok is false when nothing was drawn or the
// line was rejected as degenerate.
func (s *MeasurementSession) PointerUp(ev pointer.Event) (m models.Measurement, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.items)
	if err := s.draw.PointerUp(ev); err != nil {
		s.log.Debug("measurement rejected: %v", err)
		return models.Measurement{}, false
	}
	if len(s.items) == before {
		return models.Measurement{}, false
	}
	return s.items[len(s.items)-1], true
}

// CancelDrawing abandons the line being drawn.
func (s *MeasurementSession) CancelDrawing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draw.Cancel()
}

// Preview returns the line being drawn.
func (s *MeasurementSession) Preview() (a, b models.Point, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draw.Preview()
}

func (s *MeasurementSession) commitLocked(a, b models.Point) {
	m := models.NewMeasurement(s.nextIDLocked(), a, b, s.tags.Selected(), s.now())
	s.addLocked(m)
}
