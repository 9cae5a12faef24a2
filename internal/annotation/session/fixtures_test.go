package session_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"takeoff/internal/annotation/autosave"
	"takeoff/internal/annotation/models"
	"takeoff/internal/annotation/pointer"
	"takeoff/internal/annotation/session"
	"takeoff/internal/annotation/tags"
)

var _ = Describe("FixtureSession", func() {
	var (
		ctx     context.Context
		store   *memStore
		sched   *autosave.ManualScheduler
		clock   time.Time
		updates []time.Time
		s       *session.FixtureSession
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
		sched = autosave.NewManualScheduler()
		updates = nil
		store = newMemStore(models.Document{
			ID:        "count-1",
			Name:      "Smoke detectors",
			Kind:      models.KindFixture,
			ProjectID: "p-1",
			CompanyID: "c-1",
		})

		var err error
		s, err = session.OpenFixtures(ctx, store, "count-1", session.Options{
			Scheduler: sched,
			Now:       func() time.Time { return clock },
			Updated:   func(id string, at time.Time) { updates = append(updates, at) },
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("places fixtures in document coordinates", func() {
		Expect(s.SetPageScale(3, 4)).To(Succeed())
		f, err := s.Place(pointer.Event{X: 40, Y: 80, Page: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Point).To(Equal(models.Point{X: 10, Y: 20, Page: 3}))
		Expect(f.Page).To(Equal(3))
	})

	It("rejects a fixture without a page", func() {
		_, err := s.Place(pointer.Event{X: 1, Y: 1})
		Expect(err).To(MatchError(pointer.ErrDegenerateGeometry))
		Expect(s.Annotations()).To(BeEmpty())
	})

	It("pins on click without touching history", func() {
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		Expect(s.Undo()).To(BeTrue())
		Expect(s.Redo()).To(BeTrue())

		s.PointerDown(pointer.Event{X: 10, Y: 10, Page: 1}, f.ID)
		s.PointerUp()

		Expect(s.Pinned(f.ID)).To(BeTrue())
		Expect(s.LabelVisible(f.ID)).To(BeTrue())
		Expect(s.CanRedo()).To(BeFalse())
		got, _ := s.Get(f.ID)
		Expect(got.Point).To(Equal(f.Point))
	})

	It("moves a fixture by dragging and undoes the whole drag at once", func() {
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})

		s.PointerDown(pointer.Event{X: 10, Y: 10, Page: 1}, f.ID)
		s.PointerMove(pointer.Event{X: 11, Y: 10, Page: 1})
		Expect(s.Dragging()).To(BeFalse())
		for x := 12.0; x <= 40; x++ {
			s.PointerMove(pointer.Event{X: x, Y: 10, Page: 1})
		}
		Expect(s.Dragging()).To(BeTrue())
		s.PointerUp()
		Expect(s.Dragging()).To(BeFalse())

		moved, _ := s.Get(f.ID)
		Expect(moved.Point).To(Equal(models.Point{X: 40, Y: 10, Page: 1}))
		Expect(s.Pinned(f.ID)).To(BeFalse())

		Expect(s.Undo()).To(BeTrue())
		back, _ := s.Get(f.ID)
		Expect(back.Point).To(Equal(f.Point))

		Expect(s.Undo()).To(BeTrue())
		Expect(s.Annotations()).To(BeEmpty())
		Expect(s.CanUndo()).To(BeFalse())
	})

	It("ignores presses on unknown fixtures", func() {
		s.PointerDown(pointer.Event{X: 1, Y: 1, Page: 1}, 12345)
		s.PointerUp()
		Expect(s.Pinned(12345)).To(BeFalse())
	})

	It("shows the label on hover", func() {
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		s.Hover(f.ID)
		Expect(s.LabelVisible(f.ID)).To(BeTrue())
		s.Unhover(f.ID)
		Expect(s.LabelVisible(f.ID)).To(BeFalse())
	})

	It("keeps a fixture's tag after the tag is deleted from the palette", func() {
		tag, err := s.CreateTag("FD-1", "#ff0000")
		Expect(err).NotTo(HaveOccurred())
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		Expect(s.AssignTag(f.ID, tag.ID)).To(Succeed())

		Expect(s.DeleteTag(tag.ID)).To(BeTrue())
		Expect(s.Tags()).To(BeEmpty())

		got, _ := s.Get(f.ID)
		Expect(got.Tag).NotTo(BeNil())
		Expect(got.Tag.Name).To(Equal("FD-1"))
		Expect(got.Tag.Color).To(Equal("#ff0000"))

		Expect(s.AssignTag(f.ID, tag.ID)).To(MatchError(tags.ErrUnknownTag))
		Expect(s.AssignTag(f.ID, "")).To(Succeed())
		cleared, _ := s.Get(f.ID)
		Expect(cleared.Tag).To(BeNil())
	})

	It("counts fixtures per tag", func() {
		red, _ := s.CreateTag("FD-1", "#ff0000")
		Expect(s.SelectTag(red.ID)).To(Succeed())
		for i := 0; i < 3; i++ {
			_, _ = s.Place(pointer.Event{X: float64(i), Y: 1, Page: 1})
		}
		s.DeselectTag()
		_, _ = s.Place(pointer.Event{X: 9, Y: 9, Page: 2})

		summary := s.Summary()
		Expect(summary.Kind).To(Equal(models.KindFixture))
		Expect(summary.Count).To(Equal(4))
		Expect(summary.Groups).To(HaveLen(2))
		Expect(summary.Groups[0].Count).To(Equal(3))
		Expect(summary.Groups[0].Meters).To(BeZero())
		Expect(summary.Groups[1].TagID).To(BeEmpty())
	})

	It("persists fixtures together with the palette", func() {
		_, _ = s.CreateTag("FD-1", "#ff0000")
		_, _ = s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		sched.Advance(2 * time.Second)

		saved := store.get("count-1")
		Expect(saved.Fixtures).To(HaveLen(1))
		Expect(saved.Tags).To(HaveLen(1))
		Expect(updates).To(Equal([]time.Time{clock}))
	})

	It("saves every drag move only once after the drag settles", func() {
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		sched.Advance(2 * time.Second)
		Expect(store.saveCount()).To(Equal(1))

		s.PointerDown(pointer.Event{X: 10, Y: 10, Page: 1}, f.ID)
		for x := 20.0; x <= 100; x += 10 {
			s.PointerMove(pointer.Event{X: x, Y: 10, Page: 1})
			sched.Advance(100 * time.Millisecond)
		}
		s.PointerUp()
		sched.Advance(2 * time.Second)

		Expect(store.saveCount()).To(Equal(2))
		Expect(store.get("count-1").Fixtures[0].Point.X).To(Equal(100.0))
	})

	It("drops the pin of a deleted fixture", func() {
		f, _ := s.Place(pointer.Event{X: 10, Y: 10, Page: 1})
		s.PointerDown(pointer.Event{X: 10, Y: 10, Page: 1}, f.ID)
		s.PointerUp()
		Expect(s.Delete(f.ID)).To(BeTrue())
		Expect(s.Pinned(f.ID)).To(BeFalse())
	})
})
