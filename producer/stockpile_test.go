package producer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/VsevolodSauta/jobboard"
	"github.com/VsevolodSauta/jobboard/producer"
)

var _ = Describe("Stockpiles", func() {
	var (
		inv   *stock
		piles *producer.Stockpiles
		pile  uint
		slots []jobboard.Position
	)

	BeforeEach(func() {
		inv = newStock()
		piles = producer.NewStockpiles(jobboard.NewSimContext(), inv, testLogger())
		slots = []jobboard.Position{jobboard.Pos(0, 0, 0), jobboard.Pos(1, 0, 0)}
		pile = piles.AddStockpile([]string{"Log"}, slots...)
	})

	Describe("RequestHaul", func() {
		It("should reserve a free slot", func() {
			id := piles.RequestHaul("Log", "Oak")
			Expect(id).NotTo(BeZero())
			Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(1))

			j := piles.Job(id)
			Expect(j.Type).To(Equal(producer.JobTypeHaul))
			Expect(j.Skill).To(Equal(producer.SkillHauling))
			Expect(j.Pos).To(Equal(slots[0]))
			Expect(j.Subject).To(Equal(jobboard.Container(pile)))
			Expect(j.RequiredItems).To(Equal([]jobboard.RequiredItem{{Count: 1, ItemKind: "Log", MaterialKind: "Oak"}}))
		})

		It("should refuse items no stockpile accepts", func() {
			Expect(piles.RequestHaul("Block", "Granite")).To(BeZero())
		})

		It("should refuse once every slot is reserved", func() {
			Expect(piles.RequestHaul("Log", "")).NotTo(BeZero())
			Expect(piles.RequestHaul("Log", "")).NotTo(BeZero())
			Expect(piles.RequestHaul("Log", "")).To(BeZero())
			Expect(piles.Len()).To(Equal(2))
		})

		It("should use any stockpile that takes everything", func() {
			open := piles.AddStockpile(nil, jobboard.Pos(5, 5, 0))
			id := piles.RequestHaul("Block", "Granite")
			Expect(piles.Job(id).Subject).To(Equal(jobboard.Container(open)))
		})
	})

	Describe("GetJob", func() {
		It("should hand out hauls whose item is in reach", func() {
			id := piles.RequestHaul("Log", "Oak")
			Expect(piles.GetJob(1, producer.SkillHauling)).To(BeZero())

			inv.put("Log", "Oak", 1)
			Expect(piles.GetJob(1, producer.SkillHauling)).To(Equal(id))
			Expect(piles.Job(id).WorkedBy).To(Equal(uint(1)))
			Expect(piles.GetJob(2, producer.SkillHauling)).To(BeZero())
		})

		It("should ignore other skills", func() {
			piles.RequestHaul("Log", "Oak")
			inv.put("Log", "Oak", 1)
			Expect(piles.GetJob(1, "Mining")).To(BeZero())
		})
	})

	It("should fill the slot when the haul finishes", func() {
		id := piles.RequestHaul("Log", "Oak")
		inv.put("Log", "Oak", 1)
		piles.GetJob(1, producer.SkillHauling)

		Expect(piles.FinishJob(id)).To(BeTrue())
		Expect(piles.HasJobID(id)).To(BeFalse())
		Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(1))
		Expect(piles.FinishJob(id)).To(BeFalse())

		Expect(piles.TakeItem(slots[0])).To(BeTrue())
		Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(2))
		Expect(piles.TakeItem(slots[0])).To(BeFalse())
	})

	It("should keep the reservation when a haul is given back", func() {
		id := piles.RequestHaul("Log", "Oak")
		inv.put("Log", "Oak", 1)
		piles.GetJob(1, producer.SkillHauling)

		Expect(piles.GiveBackJob(id)).To(BeTrue())
		Expect(piles.Job(id).Worked).To(BeFalse())
		Expect(piles.Job(id).Aborted).To(BeTrue())
		Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(1))
		Expect(piles.GetJob(2, producer.SkillHauling)).To(Equal(id))
	})

	Describe("CancelHaul", func() {
		It("should free the slot of an idle haul", func() {
			id := piles.RequestHaul("Log", "Oak")
			Expect(piles.CancelHaul(id)).To(BeTrue())
			Expect(piles.HasJobID(id)).To(BeFalse())
			Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(2))
		})

		It("should drop a haul in progress when it is given back", func() {
			id := piles.RequestHaul("Log", "Oak")
			inv.put("Log", "Oak", 1)
			piles.GetJob(1, producer.SkillHauling)

			Expect(piles.CancelHaul(id)).To(BeTrue())
			Expect(piles.HasJobID(id)).To(BeTrue())
			Expect(piles.Job(id).Canceled).To(BeTrue())

			Expect(piles.GiveBackJob(id)).To(BeTrue())
			Expect(piles.HasJobID(id)).To(BeFalse())
			Expect(piles.Stockpile(pile).FreeSlots()).To(Equal(2))
		})

		It("should report unknown hauls", func() {
			Expect(piles.CancelHaul(77)).To(BeFalse())
		})
	})
})
