package jobboard_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/VsevolodSauta/jobboard"
)

var _ = Describe("Persistence", func() {
	var (
		ctx     context.Context
		backend *jobboard.InMemoryBackend
		f       *fixture
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = jobboard.NewInMemoryBackend()
		f = newFixture().withPickaxe()
	})

	It("should resume the id counter above restored ids", func() {
		f.manager.AddJob("Mine", jobboard.Pos(1, 0, 0), 0, false)
		last := f.manager.AddJob("Mine", jobboard.Pos(2, 0, 0), 0, false)
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		g := newFixture()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		Expect(g.manager.AddJob("Mine", jobboard.Pos(9, 9, 0), 0, false)).To(Equal(last + 1))
	})

	It("should give back jobs that were being worked", func() {
		id := f.addPromoted("Mine", jobboard.Pos(3, 0, 0))
		Expect(f.manager.SetJobBeingWorked(id, 7, true)).To(Succeed())
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		g := newFixture().withPickaxe()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		j := g.manager.Job(id)
		Expect(j).NotTo(BeNil())
		Expect(j.Worked).To(BeFalse())
		Expect(j.WorkedBy).To(BeZero())
		Expect(j.ComponentMissing).To(BeTrue())
		Expect(j.Aborted).To(BeTrue())
		Expect(j.State()).To(Equal(jobboard.JobStatePending))

		Expect(g.manager.OnTick()).To(Equal(1))
		Expect(g.manager.Job(id).State()).To(Equal(jobboard.JobStateAvailable))
	})

	It("should drop worked jobs that were canceled", func() {
		id := f.addPromoted("Mine", jobboard.Pos(3, 0, 0))
		Expect(f.manager.SetJobBeingWorked(id, 7, true)).To(Succeed())
		Expect(f.manager.CancelJob(jobboard.Pos(3, 0, 0))).To(BeTrue())
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		g := newFixture()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		Expect(g.manager.Count()).To(BeZero())
		Expect(g.world.markers).To(BeEmpty())
		Expect(g.manager.AddJob("Mine", jobboard.Pos(3, 0, 0), 0, false)).To(Equal(id + 1))
	})

	It("should restore markers", func() {
		id := f.manager.AddJob("Mine", jobboard.Pos(4, 4, 0), 0, false)
		hidden := f.manager.AddJob("Mine", jobboard.Pos(5, 4, 0), 0, true)
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		g := newFixture()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		Expect(g.world.markers).To(HaveKeyWithValue(jobboard.Pos(4, 4, 0), id))
		Expect(g.world.markers).To(HaveKeyWithValue(jobboard.Pos(5, 4, 0), hidden))
		Expect(g.markers.shown).To(HaveKeyWithValue(jobboard.Pos(4, 4, 0), jobboard.MarkerIdle))
		Expect(g.markers.shown).NotTo(HaveKey(jobboard.Pos(5, 4, 0)))
	})

	It("should delete stored jobs that no longer exist", func() {
		id := f.addPromoted("Mine", jobboard.Pos(3, 0, 0))
		f.manager.AddJob("Mine", jobboard.Pos(8, 0, 0), 0, false)
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		Expect(f.manager.SetJobBeingWorked(id, 1, true)).To(Succeed())
		Expect(f.manager.FinishJob(id)).To(BeTrue())
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		records, err := backend.LoadJobs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Pos).To(Equal(jobboard.Pos(8, 0, 0)))
	})

	It("should keep priority and rotation", func() {
		f.manager.AddJob("BuildWall", jobboard.Pos(2, 2, 0), 3, false)
		f.manager.RaisePrio(jobboard.Pos(2, 2, 0))
		f.manager.RaisePrio(jobboard.Pos(2, 2, 0))
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		g := newFixture()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		j, ok := g.manager.JobAt(jobboard.Pos(2, 2, 0))
		Expect(ok).To(BeTrue())
		Expect(j.Priority).To(Equal(2))
		Expect(j.Rotation).To(Equal(3))
		Expect(j.PossibleWorkPositions).To(HaveLen(8))
	})

	It("should keep the aborted flag of a given back job", func() {
		id := f.addPromoted("Mine", jobboard.Pos(3, 0, 0))
		Expect(f.manager.SetJobBeingWorked(id, 7, true)).To(Succeed())
		Expect(f.manager.GiveBackJob(id)).To(BeTrue())
		Expect(f.manager.Save(ctx, backend)).To(Succeed())

		records, err := backend.LoadJobs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Aborted).To(BeTrue())

		g := newFixture().withPickaxe()
		Expect(g.manager.Load(ctx, backend)).To(Succeed())
		Expect(g.manager.Job(id).Aborted).To(BeTrue())
	})

	Describe("Restore", func() {
		It("should refuse a manager that already holds jobs", func() {
			f.manager.AddJob("Mine", jobboard.Pos(1, 0, 0), 0, false)
			err := f.manager.Restore([]*jobboard.JobRecord{{ID: 5, Type: "Mine", Pos: jobboard.Pos(2, 0, 0)}})
			Expect(err).To(HaveOccurred())
		})

		It("should reject unknown job types", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{{ID: 5, Type: "Juggle", Pos: jobboard.Pos(2, 0, 0)}})
			Expect(err).To(MatchError(jobboard.ErrUnknownJobType))
		})

		It("should reject two records on one tile", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{
				{ID: 5, Type: "Mine", Pos: jobboard.Pos(2, 0, 0)},
				{ID: 6, Type: "Mine", Pos: jobboard.Pos(2, 0, 0)},
			})
			Expect(err).To(HaveOccurred())
		})

		It("should leave the manager empty when a later record is bad", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{
				{ID: 5, Type: "Mine", Pos: jobboard.Pos(1, 0, 0)},
				{ID: 6, Type: "Juggle", Pos: jobboard.Pos(2, 0, 0)},
			})
			Expect(err).To(MatchError(jobboard.ErrUnknownJobType))
			Expect(f.manager.Count()).To(BeZero())
			Expect(f.manager.PendingCount()).To(BeZero())
			Expect(f.world.markers).To(BeEmpty())
			Expect(f.markers.shown).To(BeEmpty())

			Expect(f.manager.Restore([]*jobboard.JobRecord{{ID: 5, Type: "Mine", Pos: jobboard.Pos(1, 0, 0)}})).To(Succeed())
			Expect(f.manager.Count()).To(Equal(1))
			Expect(f.manager.PendingCount()).To(Equal(1))
		})

		It("should not reserve ids from a rejected batch", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{
				{ID: 40, Type: "Mine", Pos: jobboard.Pos(1, 0, 0)},
				{ID: 41, Type: "Mine", Pos: jobboard.Pos(1, 0, 0)},
			})
			Expect(err).To(HaveOccurred())
			Expect(f.manager.AddJob("Mine", jobboard.Pos(1, 0, 0), 0, false)).To(Equal(uint(1)))
		})

		It("should reject duplicate ids", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{
				{ID: 5, Type: "Mine", Pos: jobboard.Pos(1, 0, 0)},
				{ID: 5, Type: "Mine", Pos: jobboard.Pos(2, 0, 0)},
			})
			Expect(err).To(MatchError(ContainSubstring("duplicate job ID 5")))
			Expect(f.manager.Count()).To(BeZero())
			Expect(f.manager.PendingCount()).To(BeZero())
			_, ok := f.manager.JobAt(jobboard.Pos(1, 0, 0))
			Expect(ok).To(BeFalse())
		})

		It("should reject records without an id", func() {
			err := f.manager.Restore([]*jobboard.JobRecord{{Type: "Mine", Pos: jobboard.Pos(1, 0, 0)}})
			Expect(err).To(HaveOccurred())
			Expect(f.manager.Count()).To(BeZero())
		})

		It("should skip nil records", func() {
			Expect(f.manager.Restore([]*jobboard.JobRecord{nil, {ID: 5, Type: "Mine", Pos: jobboard.Pos(2, 0, 0)}})).To(Succeed())
			Expect(f.manager.Count()).To(Equal(1))
			Expect(f.manager.PendingCount()).To(Equal(1))
		})
	})
})
