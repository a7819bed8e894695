package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// Set is the standard producer lineup of a colony.
type Set struct {
	Stockpiles *Stockpiles
	Farming    *Farming
	Automatons *Automatons
	Mechanisms *Mechanisms
	Workshops  *Workshops
	Rooms      *Rooms
}

// NewSet creates every producer over the same simulation and inventory.
func NewSet(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Set {
	return &Set{
		Stockpiles: NewStockpiles(sim, inv, logger),
		Farming:    NewFarming(sim, inv, logger),
		Automatons: NewAutomatons(sim, inv, logger),
		Mechanisms: NewMechanisms(sim, inv, logger),
		Workshops:  NewWorkshops(sim, inv, logger),
		Rooms:      NewRooms(sim, logger),
	}
}

// Register wires the producers into the manager:
//   - Hauling goes to stockpiles
//   - Farming, AnimalHusbandry, Horticulture and Woodcutting go to farming
//   - Tinkering and Machining go to automatons, then mechanisms
//   - Alarm goes to rooms
//   - Workshops are the fallback for every skill and backfill construction
//     components
func (s *Set) Register(m *jobboard.Manager) {
	m.AddRoute(SkillHauling, s.Stockpiles)
	for _, skill := range []string{SkillFarming, SkillAnimalHusbandry, SkillHorticulture, SkillWoodcutting} {
		m.AddRoute(skill, s.Farming)
	}
	for _, skill := range []string{SkillTinkering, SkillMachining} {
		m.AddRoute(skill, s.Automatons, s.Mechanisms)
	}
	m.AddRoute(SkillAlarm, s.Rooms)
	m.AddFallback(s.Workshops)
	m.SetCraftRequester(s.Workshops)
}

// Tick runs the per-tick job generation of every producer and returns the
// number of jobs created.
func (s *Set) Tick() int {
	return s.Farming.Tick() + s.Automatons.Tick() + s.Mechanisms.Tick() + s.Rooms.Tick()
}
