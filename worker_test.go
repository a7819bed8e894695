package jobboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/VsevolodSauta/jobboard"
)

var _ = Describe("Worker", func() {
	var (
		f      *fixture
		nav    *walker
		worker *jobboard.Worker
		jobPos jobboard.Position
		jobID  uint
	)

	BeforeEach(func() {
		f = newFixture().withPickaxe()
		nav = &walker{}
		jobPos = jobboard.Pos(3, 0, 0)
		jobID = f.addPromoted("Mine", jobPos)
		worker = jobboard.NewWorker(1, jobboard.Pos(0, 0, 0), []string{"Mining"}, f.manager, nav, testLogger())
		worker.Tools["Pickaxe"] = 1
	})

	It("should stay idle without work", func() {
		g := newFixture()
		idle := jobboard.NewWorker(2, jobboard.Pos(0, 0, 0), []string{"Mining"}, g.manager, nav, testLogger())
		Expect(idle.Tick()).To(Equal(jobboard.WorkerIdle))
		Expect(idle.JobID()).To(BeZero())
	})

	It("should claim, walk, work and finish a job", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(worker.JobID()).To(Equal(jobID))
		Expect(f.manager.Job(jobID).WorkedBy).To(Equal(uint(1)))
		Expect(worker.Tasks()).To(Equal([]jobboard.Task{
			{Kind: jobboard.TaskMove, Target: jobboard.Pos(2, 0, 0)},
			{Kind: jobboard.TaskWork, Target: jobboard.Pos(2, 0, 0), Ticks: 40},
		}))

		Expect(worker.Tick()).To(Equal(jobboard.WorkerMoving))
		Expect(worker.Pos).To(Equal(jobboard.Pos(1, 0, 0)))
		Expect(worker.Tick()).To(Equal(jobboard.WorkerMoving))
		Expect(worker.Pos).To(Equal(jobboard.Pos(2, 0, 0)))

		working := 0
		status := worker.Tick()
		for status == jobboard.WorkerWorking {
			working++
			status = worker.Tick()
		}
		Expect(status).To(Equal(jobboard.WorkerFinished))
		Expect(working).To(Equal(39))
		Expect(worker.JobID()).To(BeZero())
		Expect(f.manager.Count()).To(BeZero())
		Expect(f.markers.shown).NotTo(HaveKey(jobPos))
	})

	It("should skip the walk when already on the work position", func() {
		worker.Pos = jobboard.Pos(2, 0, 0)
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(worker.Tasks()).To(HaveLen(1))
		Expect(worker.Tasks()[0].Kind).To(Equal(jobboard.TaskWork))
	})

	It("should show the busy marker only with the tool", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(f.markers.shown[jobPos]).To(Equal(jobboard.MarkerBusy))

		other := jobboard.Pos(0, 5, 0)
		f.addPromoted("Mine", other)
		bare := jobboard.NewWorker(2, jobboard.Pos(0, 4, 0), []string{"Mining"}, f.manager, nav, testLogger())
		Expect(bare.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(f.markers.shown[other]).To(Equal(jobboard.MarkerIdle))
	})

	It("should give back a canceled job at the next tick", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(f.manager.CancelJob(jobPos)).To(BeTrue())
		Expect(f.manager.Count()).To(Equal(1))

		Expect(worker.Tick()).To(Equal(jobboard.WorkerInterrupted))
		Expect(worker.JobID()).To(BeZero())
		Expect(f.manager.Count()).To(BeZero())
	})

	It("should drop a job that was given back and claimed by another worker", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(f.manager.GiveBackJob(jobID)).To(BeTrue())
		Expect(f.manager.OnTick()).To(Equal(1))

		other := jobboard.NewWorker(2, jobboard.Pos(2, 0, 0), []string{"Mining"}, f.manager, nav, testLogger())
		other.Tools["Pickaxe"] = 1
		Expect(other.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(other.JobID()).To(Equal(jobID))

		Expect(worker.Tick()).To(Equal(jobboard.WorkerInterrupted))
		Expect(worker.JobID()).To(BeZero())
		Expect(worker.Tasks()).To(BeEmpty())
		Expect(worker.Tick()).To(Equal(jobboard.WorkerIdle))

		j := f.manager.Job(jobID)
		Expect(j).NotTo(BeNil())
		Expect(j.Worked).To(BeTrue())
		Expect(j.WorkedBy).To(Equal(uint(2)))
		Expect(other.JobID()).To(Equal(jobID))
		Expect(f.manager.Count()).To(Equal(1))
	})

	It("should give back the job when no path exists", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		nav.blocked = true

		Expect(worker.Tick()).To(Equal(jobboard.WorkerInterrupted))
		j := f.manager.Job(jobID)
		Expect(j.Worked).To(BeFalse())
		Expect(j.Aborted).To(BeTrue())
		Expect(j.State()).To(Equal(jobboard.JobStatePending))

		Expect(f.manager.OnTick()).To(Equal(1))
		Expect(f.manager.Job(jobID).State()).To(Equal(jobboard.JobStateAvailable))
	})

	It("should give back the job when abandoned", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		worker.Abandon()
		Expect(worker.JobID()).To(BeZero())
		Expect(worker.Tasks()).To(BeEmpty())
		Expect(f.manager.Job(jobID).State()).To(Equal(jobboard.JobStatePending))

		worker.Abandon()
		Expect(f.manager.PendingCount()).To(Equal(1))
	})

	It("should pick the job back up after a give back", func() {
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		worker.Abandon()
		f.manager.OnTick()
		Expect(worker.Tick()).To(Equal(jobboard.WorkerClaimed))
		Expect(worker.JobID()).To(Equal(jobID))
	})
})

var _ = Describe("TaskKind", func() {
	It("should name its values", func() {
		Expect(jobboard.TaskMove.String()).To(Equal("move"))
		Expect(jobboard.TaskWork.String()).To(Equal("work"))
		Expect(jobboard.TaskKind(9).String()).To(Equal("unknown"))
	})
})
