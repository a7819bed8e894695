package producer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/VsevolodSauta/jobboard"
	"github.com/VsevolodSauta/jobboard/producer"
)

var _ = Describe("Farming", func() {
	var (
		inv  *stock
		farm *producer.Farming
	)

	BeforeEach(func() {
		inv = newStock()
		farm = producer.NewFarming(jobboard.NewSimContext(), inv, testLogger())
	})

	// work claims the only job for skill and finishes it.
	work := func(skill, jobType string) {
		id := farm.GetJob(1, skill)
		ExpectWithOffset(1, id).NotTo(BeZero())
		ExpectWithOffset(1, farm.Job(id).Type).To(Equal(jobType))
		ExpectWithOffset(1, farm.FinishJob(id)).To(BeTrue())
	}

	Describe("farms", func() {
		var plot jobboard.Position

		BeforeEach(func() {
			plot = jobboard.Pos(2, 2, 0)
			farm.AddFarm("Wheat", plot)
		})

		It("should cycle till, plant and harvest", func() {
			Expect(farm.Tick()).To(Equal(1))
			Expect(farm.Tick()).To(BeZero())
			work(producer.SkillFarming, producer.JobTypeTill)
			Expect(farm.Plot(plot).State).To(Equal(producer.PlotTilled))

			Expect(farm.Tick()).To(Equal(1))
			Expect(farm.GetJob(1, producer.SkillFarming)).To(BeZero())
			inv.put("Seed", "Wheat", 1)
			work(producer.SkillFarming, producer.JobTypePlant)
			Expect(farm.Plot(plot).State).To(Equal(producer.PlotPlanted))

			Expect(farm.Tick()).To(BeZero())
			Expect(farm.Grow(plot)).To(BeTrue())
			Expect(farm.Grow(plot)).To(BeFalse())
			Expect(farm.Tick()).To(Equal(1))
			work(producer.SkillFarming, producer.JobTypeHarvest)
			Expect(farm.Plot(plot).State).To(Equal(producer.PlotTilled))
		})

		It("should skip tiles another plot already uses", func() {
			other := farm.AddFarm("Barley", plot, jobboard.Pos(3, 2, 0))
			Expect(other.Plots).To(HaveLen(1))
			Expect(farm.Tick()).To(Equal(2))
		})

		It("should recreate a canceled plot job", func() {
			farm.Tick()
			id := farm.GetJob(1, producer.SkillFarming)
			Expect(farm.GiveBackJob(id)).To(BeTrue())
			Expect(farm.CancelJob(id)).To(BeTrue())
			Expect(farm.HasJobID(id)).To(BeFalse())
			Expect(farm.Tick()).To(Equal(1))
		})

		It("should offer a given back job again", func() {
			farm.Tick()
			id := farm.GetJob(1, producer.SkillFarming)
			Expect(farm.GiveBackJob(id)).To(BeTrue())
			Expect(farm.Job(id).Aborted).To(BeTrue())
			Expect(farm.Tick()).To(BeZero())
			Expect(farm.GetJob(2, producer.SkillFarming)).To(Equal(id))
		})
	})

	Describe("groves", func() {
		var tree jobboard.Position

		BeforeEach(func() {
			tree = jobboard.Pos(8, 1, 0)
			farm.AddGrove("Apple", tree)
		})

		It("should plant, pick and fell", func() {
			Expect(farm.MarkFell(tree)).To(BeFalse())
			farm.Tick()
			inv.put("Sapling", "Apple", 1)
			work(producer.SkillHorticulture, producer.JobTypePlantTree)
			Expect(farm.Plot(tree).State).To(Equal(producer.PlotPlanted))

			farm.Grow(tree)
			farm.Tick()
			work(producer.SkillHorticulture, producer.JobTypePickFruit)
			Expect(farm.Plot(tree).State).To(Equal(producer.PlotPlanted))

			Expect(farm.MarkFell(tree)).To(BeTrue())
			farm.Tick()
			id := farm.GetJob(1, producer.SkillWoodcutting)
			Expect(farm.Job(id).Tool).To(Equal(&jobboard.RequiredTool{Type: "Axe", Level: 1}))
			Expect(farm.FinishJob(id)).To(BeTrue())
			Expect(farm.Plot(tree).State).To(Equal(producer.PlotEmpty))
			Expect(farm.Plot(tree).Fell).To(BeFalse())
		})
	})

	Describe("pastures", func() {
		var sheep uint = 40

		BeforeEach(func() {
			pasture := farm.AddPasture(jobboard.Pos(20, 20, 0))
			farm.AddAnimal(pasture, sheep, jobboard.Pos(21, 20, 0))
		})

		It("should tame before shearing", func() {
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeShear)).To(BeZero())
			id := farm.RequestAnimalJob(sheep, producer.JobTypeTame)
			Expect(id).NotTo(BeZero())
			Expect(farm.Job(id).Subject).To(Equal(jobboard.Creature(sheep)))
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeTame)).To(BeZero())

			work(producer.SkillAnimalHusbandry, producer.JobTypeTame)
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeTame)).To(BeZero())
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeShear)).NotTo(BeZero())
		})

		It("should remove slaughtered animals", func() {
			farm.RequestAnimalJob(sheep, producer.JobTypeTame)
			work(producer.SkillAnimalHusbandry, producer.JobTypeTame)
			farm.RequestAnimalJob(sheep, producer.JobTypeSlaughter)
			work(producer.SkillAnimalHusbandry, producer.JobTypeSlaughter)
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeMilk)).To(BeZero())
		})

		It("should refuse unknown creatures and job types", func() {
			Expect(farm.RequestAnimalJob(99, producer.JobTypeTame)).To(BeZero())
			Expect(farm.RequestAnimalJob(sheep, producer.JobTypeTill)).To(BeZero())
		})
	})

	It("should ignore skills it does not serve", func() {
		farm.AddFarm("Wheat", jobboard.Pos(0, 0, 0))
		farm.Tick()
		Expect(farm.GetJob(1, "Mining")).To(BeZero())
	})
})

var _ = Describe("PlotState", func() {
	It("should name its values", func() {
		Expect(producer.PlotRipe.String()).To(Equal("ripe"))
		Expect(producer.PlotState(9).String()).To(Equal("unknown"))
	})
})
