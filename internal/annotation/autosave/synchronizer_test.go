package autosave_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"takeoff/internal/annotation/autosave"
	"takeoff/internal/annotation/models"
	"takeoff/pkg/logger"
)

var _ = Describe("Synchronizer", func() {
	var (
		ctx    context.Context
		store  *recordingStore
		sched  *autosave.ManualScheduler
		sync   *autosave.Synchronizer
		now    time.Time
		target autosave.Target
		saved  []string
		state  models.State
	)

	fixtureAt := func(id int64, x float64) models.Fixture {
		return models.NewFixture(id, models.Point{X: x, Y: 10, Page: 1}, nil, now)
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = &recordingStore{}
		sched = autosave.NewManualScheduler()
		now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		saved = nil
		target = autosave.Target{DocumentID: "doc-1", ProjectID: "p-1", CompanyID: "c-1"}
		sync = autosave.New(store, autosave.Options{
			Delay:     2 * time.Second,
			Scheduler: sched,
			Now:       func() time.Time { return now },
			Logger:    logger.New(logger.WithOutput(GinkgoWriter), logger.WithPrefix("[autosave-test] ")),
			Saved: func(id string, fields models.SaveFields) {
				saved = append(saved, id)
			},
		})
		state = models.State{Kind: models.KindFixture}
		sync.Swap(target, state)
	})

	It("does not save a freshly loaded document", func() {
		sync.Observe(state)
		Expect(sync.Pending()).To(BeFalse())
		sched.Advance(5 * time.Second)
		Expect(store.calls()).To(BeEmpty())
	})

	It("collapses a burst of edits into one save of the last state", func() {
		for i := 1; i <= 5; i++ {
			state.Fixtures = append(state.Fixtures, fixtureAt(int64(i), float64(i)))
			sync.Observe(state)
			sched.Advance(500 * time.Millisecond)
		}
		Expect(store.calls()).To(BeEmpty())
		Expect(sched.Pending()).To(Equal(1))

		sched.Advance(2 * time.Second)
		calls := store.calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].id).To(Equal("doc-1"))
		Expect(calls[0].fields.Fixtures).To(HaveLen(5))
		Expect(calls[0].fields.UpdatedAt).To(Equal(now))
		Expect(saved).To(Equal([]string{"doc-1"}))
		Expect(sync.Dirty()).To(BeFalse())
		Expect(sync.SavedAt()).To(Equal(now))
	})

	It("restarts the timer instead of stacking timers", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		sched.Advance(1500 * time.Millisecond)
		state.Fixtures = []models.Fixture{fixtureAt(1, 2)}
		sync.Observe(state)
		Expect(sched.Pending()).To(Equal(1))

		sched.Advance(1500 * time.Millisecond)
		Expect(store.calls()).To(BeEmpty())
		sched.Advance(500 * time.Millisecond)
		Expect(store.calls()).To(HaveLen(1))
	})

	It("skips the write when the state returns to what was saved", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		sync.Observe(models.State{Kind: models.KindFixture})
		Expect(sync.Pending()).To(BeFalse())
		sched.Advance(time.Minute)
		Expect(store.calls()).To(BeEmpty())
	})

	It("does not save again when only timestamps changed", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		sched.Advance(2 * time.Second)
		Expect(store.calls()).To(HaveLen(1))

		refreshed := state.Clone()
		refreshed.Fixtures[0].UpdatedAt = now.Add(time.Hour)
		sync.Observe(refreshed)
		sched.Advance(2 * time.Second)
		Expect(store.calls()).To(HaveLen(1))
	})

	It("stamps annotations that have no update time", func() {
		f := fixtureAt(1, 1)
		f.UpdatedAt = time.Time{}
		state.Fixtures = []models.Fixture{f}
		sync.Observe(state)
		sched.Advance(2 * time.Second)

		calls := store.calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].fields.Fixtures[0].UpdatedAt).To(Equal(now))
		Expect(sync.Dirty()).To(BeFalse())
	})

	It("retries on the next edit after a failure", func() {
		store.setFail(true)
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		sched.Advance(2 * time.Second)
		Expect(store.calls()).To(BeEmpty())
		Expect(sync.Dirty()).To(BeTrue())
		Expect(saved).To(BeEmpty())

		store.setFail(false)
		sched.Advance(time.Minute)
		Expect(store.calls()).To(BeEmpty())

		state.Fixtures = append(state.Fixtures, fixtureAt(2, 2))
		sync.Observe(state)
		sched.Advance(2 * time.Second)
		Expect(store.calls()).To(HaveLen(1))
		Expect(sync.Dirty()).To(BeFalse())
	})

	It("saves immediately on ForceSave and cancels the timer", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		Expect(sync.ForceSave(ctx)).To(Succeed())
		Expect(store.calls()).To(HaveLen(1))
		Expect(sync.Pending()).To(BeFalse())

		sched.Advance(time.Minute)
		Expect(store.calls()).To(HaveLen(1))
	})

	It("reports a failed ForceSave", func() {
		store.setFail(true)
		Expect(sync.ForceSave(ctx)).To(MatchError(errStoreDown))
	})

	It("flushes a pending edit on Close", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)
		Expect(sync.Close(ctx)).To(Succeed())
		Expect(store.calls()).To(HaveLen(1))

		sched.Advance(time.Minute)
		Expect(store.calls()).To(HaveLen(1))

		sync.Observe(state)
		Expect(sync.Pending()).To(BeFalse())
		Expect(sync.ForceSave(ctx)).To(MatchError(autosave.ErrNoActiveDocument))
	})

	It("does not write on Close when nothing changed", func() {
		Expect(sync.Close(ctx)).To(Succeed())
		Expect(store.calls()).To(BeEmpty())
	})

	It("cancels the previous document's timer on Swap", func() {
		state.Fixtures = []models.Fixture{fixtureAt(1, 1)}
		sync.Observe(state)

		other := autosave.Target{DocumentID: "doc-2", ProjectID: "p-1", CompanyID: "c-1"}
		sync.Swap(other, models.State{Kind: models.KindFixture})
		sched.Advance(time.Minute)
		Expect(store.calls()).To(BeEmpty())

		sync.Observe(models.State{Kind: models.KindFixture, Fixtures: []models.Fixture{fixtureAt(5, 5)}})
		sched.Advance(2 * time.Second)
		calls := store.calls()
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].id).To(Equal("doc-2"))
	})

	It("writes a revert made while the previous save was still running", func() {
		gate := newGateStore()
		slow := autosave.New(gate, autosave.Options{
			Delay:     2 * time.Second,
			Scheduler: sched,
			Now:       func() time.Time { return now },
			Logger:    logger.New(logger.WithOutput(GinkgoWriter)),
		})
		original := models.State{Kind: models.KindFixture}
		slow.Swap(target, original)

		edited := models.State{Kind: models.KindFixture, Fixtures: []models.Fixture{fixtureAt(1, 1)}}
		slow.Observe(edited)

		done := make(chan struct{})
		go func() {
			defer close(done)
			sched.Advance(2 * time.Second)
		}()
		Eventually(gate.entered).Should(Receive())

		slow.Observe(original)
		gate.release()
		Eventually(done).Should(BeClosed())

		Expect(slow.Pending()).To(BeTrue())
		Expect(slow.Dirty()).To(BeTrue())

		sched.Advance(2 * time.Second)
		calls := gate.calls()
		Expect(calls).To(HaveLen(2))
		Expect(calls[0].fields.Fixtures).To(HaveLen(1))
		Expect(calls[1].fields.Fixtures).To(BeEmpty())
		Expect(slow.Dirty()).To(BeFalse())
		Expect(slow.Pending()).To(BeFalse())
	})

	DescribeTable("never writes without a complete destination",
		func(t autosave.Target) {
			sync.Swap(t, models.State{Kind: models.KindFixture})
			sync.Observe(models.State{Kind: models.KindFixture, Fixtures: []models.Fixture{fixtureAt(1, 1)}})
			sched.Advance(time.Minute)
			Expect(store.calls()).To(BeEmpty())
			Expect(sync.ForceSave(ctx)).To(MatchError(autosave.ErrNoActiveDocument))
		},
		Entry("no document", autosave.Target{ProjectID: "p", CompanyID: "c"}),
		Entry("no project", autosave.Target{DocumentID: "d", CompanyID: "c"}),
		Entry("no company", autosave.Target{DocumentID: "d", ProjectID: "p"}),
	)

	It("ignores observations before any document is loaded", func() {
		fresh := autosave.New(store, autosave.Options{Scheduler: sched})
		fresh.Observe(models.State{Kind: models.KindFixture, Fixtures: []models.Fixture{fixtureAt(1, 1)}})
		Expect(fresh.Pending()).To(BeFalse())
		Expect(fresh.ForceSave(ctx)).To(MatchError(autosave.ErrNoActiveDocument))
	})
})
