package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// SkillTinkering is the skill for installing automaton cores.
const SkillTinkering = "Tinkering"

// Automaton job types.
const (
	JobTypeInstallCore     = "InstallCore"
	JobTypeRefuelAutomaton = "RefuelAutomaton"
)

// CoreItem is the item kind installed into an automaton.
const CoreItem = "AutomatonCore"

// Automaton is a mechanical creature that needs a core and fuel.
type Automaton struct {
	CreatureID uint
	Pos        jobboard.Position
	HasCore    bool
	Fuel       int
	MaxFuel    int

	jobID uint
}

// Automatons produces core install and refuel jobs for automatons.
type Automatons struct {
	pool
	inv   jobboard.Inventory
	bots  map[uint]*Automaton
	order []*Automaton
}

// NewAutomatons creates an empty automaton manager.
func NewAutomatons(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Automatons {
	return &Automatons{
		pool: newPool("automatons", sim, logger),
		inv:  inv,
		bots: make(map[uint]*Automaton),
	}
}

// AddAutomaton registers an automaton without a core and with an empty tank.
func (a *Automatons) AddAutomaton(creatureID uint, pos jobboard.Position, maxFuel int) *Automaton {
	bot := &Automaton{CreatureID: creatureID, Pos: pos, MaxFuel: maxFuel}
	a.bots[creatureID] = bot
	a.order = append(a.order, bot)
	return bot
}

// Move updates the automaton position and the position of its idle job.
func (a *Automatons) Move(bot *Automaton, pos jobboard.Position) {
	bot.Pos = pos
	if j := a.Job(bot.jobID); j != nil && !j.Worked {
		j.Pos = pos
	}
}

// Burn consumes fuel.
func (a *Automatons) Burn(bot *Automaton, amount int) {
	bot.Fuel = max(0, bot.Fuel-amount)
}

// Tick creates an install job for automatons without a core and a refuel
// job for cored automatons at a quarter tank or less.
func (a *Automatons) Tick() int {
	created := 0
	for _, bot := range a.order {
		if bot.jobID != 0 {
			continue
		}
		switch {
		case !bot.HasCore:
			bot.jobID = a.add(&jobboard.Job{
				Type:          JobTypeInstallCore,
				Skill:         SkillTinkering,
				Pos:           bot.Pos,
				Subject:       jobboard.Creature(bot.CreatureID),
				RequiredItems: []jobboard.RequiredItem{{Count: 1, ItemKind: CoreItem, MaterialKind: jobboard.AnyMaterial}},
			})
			created++
		case bot.MaxFuel > 0 && bot.Fuel*4 <= bot.MaxFuel:
			bot.jobID = a.add(&jobboard.Job{
				Type:          JobTypeRefuelAutomaton,
				Skill:         SkillMachining,
				Pos:           bot.Pos,
				Subject:       jobboard.Creature(bot.CreatureID),
				Amount:        bot.MaxFuel - bot.Fuel,
				RequiredItems: []jobboard.RequiredItem{{Count: 1, ItemKind: FuelItem, MaterialKind: jobboard.AnyMaterial}},
			})
			created++
		}
	}
	return created
}

// GetJob hands out an automaton job once its item is in reach.
func (a *Automatons) GetJob(workerID uint, skill string) uint {
	if skill != SkillTinkering && skill != SkillMachining {
		return 0
	}
	return a.claim(workerID, skill, func(j *jobboard.Job) bool {
		for _, ri := range j.RequiredItems {
			if !a.inv.ReachableItemCount(j.Pos, true, ri.Count, ri.ItemKind, ri.MaterialKind) {
				return false
			}
		}
		return true
	})
}

// FinishJob installs the core or fills the tank.
func (a *Automatons) FinishJob(jobID uint) bool {
	return a.finish(jobID, func(j *jobboard.Job) {
		bot, ok := a.bots[j.Subject.ID]
		if !ok {
			return
		}
		bot.jobID = 0
		switch j.Type {
		case JobTypeInstallCore:
			bot.HasCore = true
		case JobTypeRefuelAutomaton:
			bot.Fuel = bot.MaxFuel
		}
	})
}

// GiveBackJob releases the job for another worker.
func (a *Automatons) GiveBackJob(jobID uint) bool {
	return a.giveBack(jobID, func(j *jobboard.Job) {
		if bot, ok := a.bots[j.Subject.ID]; ok && bot.jobID == j.ID {
			bot.jobID = 0
		}
	})
}
