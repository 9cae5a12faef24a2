// Package session ties an open annotation document to its undo history, tag
// palette and autosave. One Session exists per open document; closing it
// flushes unsaved edits.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"takeoff/internal/annotation/autosave"
	"takeoff/internal/annotation/history"
	"takeoff/internal/annotation/models"
	"takeoff/internal/annotation/pointer"
	"takeoff/internal/annotation/tags"
	"takeoff/pkg/logger"
)

var (
	ErrKindMismatch = errors.New("session: document holds another annotation kind")
	ErrUnknownID    = errors.New("session: unknown annotation")
	ErrInvalidPage  = errors.New("session: invalid page")
	ErrInvalidScale = errors.New("session: invalid scale")
)

type Options struct {
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	DragThreshold float64
	Scheduler     autosave.Scheduler
	Now           func() time.Time
	Logger        *logger.Logger
	// Updated is called with the document's new update time after each
	// successful save.
	Updated func(id string, at time.Time)
}

func (o *Options) normalize() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.DragThreshold <= 0 {
		o.DragThreshold = pointer.DefaultDragThreshold
	}
}

// kind binds an annotation type to its slot in a document state.
type kind[T models.Annotation] struct {
	name models.Kind
	get  func(models.State) []T
	put  func(*models.State, []T)
}

var measurementKind = kind[models.Measurement]{
	name: models.KindMeasurement,
	get:  func(s models.State) []models.Measurement { return s.Measurements },
	put:  func(s *models.State, items []models.Measurement) { s.Measurements = items },
}

var fixtureKind = kind[models.Fixture]{
	name: models.KindFixture,
	get:  func(s models.State) []models.Fixture { return s.Fixtures },
	put:  func(s *models.State, items []models.Fixture) { s.Fixtures = items },
}

// Session is the editing state shared by both annotation kinds.
type Session[T models.Annotation] struct {
	mu      sync.Mutex
	kind    kind[T]
	doc     *models.Document
	items   []T
	history *history.History[T]
	tags    *tags.Registry
	store   autosave.Store
	sync    *autosave.Synchronizer
	now     func() time.Time
	log     *logger.Logger
	lastID  int64
	updated func(string, time.Time)
}

func newSession[T models.Annotation](k kind[T], store autosave.Store, doc *models.Document, opts Options) (*Session[T], error) {
	opts.normalize()
	if doc == nil {
		return nil, autosave.ErrNoActiveDocument
	}
	if doc.Kind == "" {
		doc.Kind = k.name
	}
	if doc.Kind != k.name {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, k.name, doc.Kind)
	}

	s := &Session[T]{
		kind:    k,
		doc:     doc,
		history: history.New(models.CloneAll[T]),
		tags:    tags.NewRegistry(doc.Tags),
		store:   store,
		now:     opts.Now,
		log:     opts.Logger,
		updated: opts.Updated,
	}
	state := doc.State()
	s.items = k.get(state)
	for _, item := range s.items {
		s.lastID = max(s.lastID, item.Key())
	}

	s.sync = autosave.New(store, autosave.Options{
		Delay:       opts.AutosaveDelay,
		SaveTimeout: opts.SaveTimeout,
		Scheduler:   opts.Scheduler,
		Now:         opts.Now,
		Logger:      opts.Logger,
		Saved:       s.onSaved,
	})
	s.sync.Swap(autosave.TargetOf(doc), state)

	s.log.Debug("opened %s document %s with %d annotations", k.name, doc.ID, len(s.items))
	return s, nil
}

func load(ctx context.Context, store autosave.Store, id string) (*models.Document, error) {
	doc, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return doc, nil
}

// ============================================================
// Reads
// ============================================================

// Document returns a copy of the document including unsaved edits.
func (s *Session[T]) Document() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := *s.doc
	state := s.stateLocked()
	doc.Measurements = state.Measurements
	doc.Fixtures = state.Fixtures
	doc.Tags = state.Tags
	doc.PageScales = state.PageScales
	doc.CalibrationScale = state.CalibrationScale
	return doc
}

func (s *Session[T]) Annotations() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.CloneAll(s.items)
}

func (s *Session[T]) Get(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return models.CloneAll(s.items[i : i+1])[0], true
}

// PageScale returns the zoom of a page.
func (s *Session[T]) PageScale(page int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.doc.PageScale(page)
}

func (s *Session[T]) Tags() []models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tags.List()
}

func (s *Session[T]) SelectedTag() *models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tags.Selected()
}

func (s *Session[T]) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.CanUndo()
}

func (s *Session[T]) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.CanRedo()
}

// Dirty reports whether there are edits not yet written to the store.
func (s *Session[T]) Dirty() bool {
	return s.sync.Dirty()
}

// ============================================================
// Annotation edits
// ============================================================

// Delete removes an annotation. It reports whether it existed.
func (s *Session[T]) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.history.Push(s.items)
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	s.changedLocked()
	return true
}

// AssignTag copies a palette tag onto an annotation. An empty tagID clears
// the annotation's tag.
func (s *Session[T]) AssignTag(id int64, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	var tag *models.Tag
	if tagID != "" {
		t, ok := s.tags.Get(tagID)
		if !ok {
			return fmt.Errorf("%w: %s", tags.ErrUnknownTag, tagID)
		}
		tag = &t
	}

	s.history.Push(s.items)
	items := slices.Clone(s.items)
	items[i] = models.WithTag(items[i], tag, s.now())
	s.items = items
	s.changedLocked()
	return nil
}

// Undo reverts the last annotation edit.
func (s *Session[T]) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.history.Undo(s.items)
	if !ok {
		return false
	}
	s.items = prev
	s.changedLocked()
	return true
}

// Redo re-applies the last undone edit.
func (s *Session[T]) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.history.Redo(s.items)
	if !ok {
		return false
	}
	s.items = next
	s.changedLocked()
	return true
}

func (s *Session[T]) addLocked(item T) {
	s.history.Push(s.items)
	s.items = append(slices.Clone(s.items), item)
	s.changedLocked()
}

func (s *Session[T]) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Session[T]) indexLocked(id int64) int {
	return slices.IndexFunc(s.items, func(item T) bool { return item.Key() == id })
}

// ============================================================
// Page settings and tags
// ============================================================

// SetPageScale records the zoom a page is displayed at.
func (s *Session[T]) SetPageScale(page int, scale float64) error {
	if page <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.PageScales == nil {
		s.doc.PageScales = make(map[int]float64)
	}
	s.doc.PageScales[page] = scale
	s.changedLocked()
	return nil
}

// SetCalibration picks the drawing scale ratio of a page. An empty key
// removes it.
func (s *Session[T]) SetCalibration(page int, scaleKey string) error {
	if page <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if scaleKey == "" {
		delete(s.doc.CalibrationScale, page)
	} else {
		if s.doc.CalibrationScale == nil {
			s.doc.CalibrationScale = make(map[int]string)
		}
		s.doc.CalibrationScale[page] = scaleKey
	}
	s.changedLocked()
	return nil
}

func (s *Session[T]) SetViewport(v models.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.ViewportDimensions = v
	s.changedLocked()
}

func (s *Session[T]) CreateTag(name, color string) (models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.tags.Create(name, color)
	if err != nil {
		return models.Tag{}, err
	}
	s.changedLocked()
	return tag, nil
}

// DeleteTag removes a tag from the palette. Annotations keep their copy.
func (s *Session[T]) DeleteTag(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tags.Delete(id) {
		return false
	}
	s.changedLocked()
	return true
}

// SelectTag chooses the tag applied to new annotations.
func (s *Session[T]) SelectTag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tags.Select(id)
}

func (s *Session[T]) DeselectTag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags.Deselect()
}

// ============================================================
// Persistence
// ============================================================

// Save writes the document now.
func (s *Session[T]) Save(ctx context.Context) error {
	return s.sync.ForceSave(ctx)
}

// Rename changes the document name in the store, then locally.
func (s *Session[T]) Rename(ctx context.Context, name string) error {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()

	if err := s.store.Rename(ctx, id, name); err != nil {
		return fmt.Errorf("rename %s: %w", id, err)
	}

	s.mu.Lock()
	s.doc.Name = name
	s.mu.Unlock()
	return nil
}

// Close flushes unsaved edits and detaches the session from the store.
func (s *Session[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()

	err := s.sync.Close(ctx)
	if err != nil {
		s.log.Error("closing %s with unsaved edits: %v", id, err)
	}
	return err
}

func (s *Session[T]) onSaved(id string, fields models.SaveFields) {
	s.mu.Lock()
	if s.doc.ID == id {
		s.doc.UpdatedAt = fields.UpdatedAt
	}
	s.mu.Unlock()

	if s.updated != nil {
		s.updated(id, fields.UpdatedAt)
	}
}

func (s *Session[T]) stateLocked() models.State {
	state := models.State{
		Kind:               s.kind.name,
		Tags:               s.tags.List(),
		PageScales:         s.doc.PageScales,
		CalibrationScale:   s.doc.CalibrationScale,
		ViewportDimensions: s.doc.ViewportDimensions,
	}
	s.kind.put(&state, s.items)
	return state.Clone()
}

// changedLocked hands the current state to the synchronizer.
func (s *Session[T]) changedLocked() {
	state := s.stateLocked()
	s.doc.Tags = state.Tags
	s.sync.Observe(state)
}

// locked exposes page zoom to pointer controllers, which only run while the
// session lock is held.
type locked[T models.Annotation] struct {
	s *Session[T]
}

func (l locked[T]) PageScale(page int) float64 {
	return l.s.doc.PageScale(page)
}
