// Package autosave keeps an annotation document in sync with its store:
// debounced, skipping saves that would not change anything, and flushing
// pending edits when the editor goes away.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"takeoff/internal/annotation/models"
	"takeoff/pkg/logger"
)

// ErrNoActiveDocument is returned by explicit saves when no document, or no
// destination for it, is set.
var ErrNoActiveDocument = errors.New("autosave: no active document")

const (
	DefaultDelay       = 2 * time.Second
	DefaultSaveTimeout = 10 * time.Second
)

// Store is the persistence interface of the document store.
type Store interface {
	Load(ctx context.Context, id string) (*models.Document, error)
	Save(ctx context.Context, id string, fields models.SaveFields) error
	Rename(ctx context.Context, id, name string) error
}

// Target identifies where a document is written.
type Target struct {
	DocumentID string
	ProjectID  string
	CompanyID  string
}

func (t Target) Valid() bool {
	return t.DocumentID != "" && t.ProjectID != "" && t.CompanyID != ""
}

// TargetOf returns the destination of a loaded document.
func TargetOf(doc *models.Document) Target {
	if doc == nil {
		return Target{}
	}
	return Target{DocumentID: doc.ID, ProjectID: doc.ProjectID, CompanyID: doc.CompanyID}
}

type Options struct {
	Delay       time.Duration
	SaveTimeout time.Duration
	Scheduler   Scheduler
	Now         func() time.Time
	Logger      *logger.Logger
	// Saved is called after every successful save of the current document.
	Saved func(id string, fields models.SaveFields)
}

// Synchronizer writes the latest observed state after the delay has passed
// without further changes. At most one timer is armed at a time: a change
// restarts it rather than queueing behind it.
//
// A failed save leaves the last saved fingerprint untouched, so the next
// change schedules another attempt.
type Synchronizer struct {
	store Store
	delay time.Duration
	limit time.Duration
	sched Scheduler
	now   func() time.Time
	log   *logger.Logger
	saved func(string, models.SaveFields)

	saving sync.Mutex

	mu        sync.Mutex
	target    Target
	state     models.State
	hasState  bool
	lastSaved string
	savedAt   time.Time
	timer     Timer
	seq       uint64
	epoch     uint64
}

func New(store Store, opts Options) *Synchronizer {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Synchronizer{
		store: store,
		delay: opts.Delay,
		limit: opts.SaveTimeout,
		sched: opts.Scheduler,
		now:   opts.Now,
		log:   opts.Logger,
		saved: opts.Saved,
	}
}

// Swap makes state, as loaded from target, the current document. Any timer
// armed for the previous document is cancelled and the loaded state counts
// as saved.
func (s *Synchronizer) Swap(target Target, state models.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.epoch++
	s.target = target
	s.state = state.Clone()
	s.hasState = true
	s.lastSaved = Fingerprint(s.state)
	s.savedAt = time.Time{}
}

// Observe records the latest state and arms the debounce timer when it
// differs from what was last saved.
func (s *Synchronizer) Observe(state models.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasState || !s.target.Valid() {
		return
	}
	s.state = state.Clone()

	s.stopLocked()
	if Fingerprint(s.state) == s.lastSaved {
		return
	}
	s.armLocked()
}

// ForceSave cancels a pending timer and saves now, whether or not anything
// changed.
func (s *Synchronizer) ForceSave(ctx context.Context) error {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	return s.save(ctx)
}

// Close flushes a pending edit and detaches the synchronizer from its
// document. Later observations are ignored until the next Swap.
func (s *Synchronizer) Close(ctx context.Context) error {
	var err error
	if s.Dirty() {
		err = s.ForceSave(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.epoch++
	s.target = Target{}
	s.hasState = false
	s.state = models.State{}
	s.lastSaved = ""
	return err
}

// Dirty reports whether the latest observed state has not been saved yet.
func (s *Synchronizer) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasState && s.target.Valid() && Fingerprint(s.state) != s.lastSaved
}

// Pending reports whether a debounce timer is armed.
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timer != nil
}

// SavedAt is the time of the last successful save of the current document.
func (s *Synchronizer) SavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.savedAt
}

func (s *Synchronizer) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

// armLocked replaces any pending timer with a fresh debounce.
func (s *Synchronizer) armLocked() {
	s.stopLocked()
	seq := s.seq
	s.timer = s.sched.AfterFunc(s.delay, func() { s.fire(seq) })
}

func (s *Synchronizer) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.limit)
	defer cancel()

	if err := s.save(ctx); err != nil && !errors.Is(err, ErrNoActiveDocument) {
		s.log.Debug("autosave will retry on next change: %v", err)
	}
}

func (s *Synchronizer) save(ctx context.Context) error {
	s.saving.Lock()
	defer s.saving.Unlock()

	s.mu.Lock()
	if !s.hasState || !s.target.Valid() {
		s.mu.Unlock()
		return ErrNoActiveDocument
	}
	target, state, epoch := s.target, s.state.Clone(), s.epoch
	s.mu.Unlock()

	fingerprint := Fingerprint(state)
	now := s.now()
	for i := range state.Measurements {
		state.Measurements[i] = models.Stamp(state.Measurements[i], now)
	}
	for i := range state.Fixtures {
		state.Fixtures[i] = models.Stamp(state.Fixtures[i], now)
	}
	fields := state.Fields(now)

	if err := s.store.Save(ctx, target.DocumentID, fields); err != nil {
		s.log.Error("autosave %s failed: %v", target.DocumentID, err)
		return fmt.Errorf("save %s: %w", target.DocumentID, err)
	}

	s.mu.Lock()
	current := s.epoch == epoch
	if current {
		s.lastSaved = fingerprint
		s.savedAt = now
		// Edits observed while the write was in flight, including a revert
		// to the previous save, still need their own write.
		if s.timer == nil && Fingerprint(s.state) != fingerprint {
			s.armLocked()
		}
	}
	s.mu.Unlock()

	s.log.Debug("autosaved %s (%d measurements, %d fixtures)", target.DocumentID, len(fields.Measurements), len(fields.Fixtures))
	if current && s.saved != nil {
		s.saved(target.DocumentID, fields)
	}
	return nil
}
