package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// SkillMachining is the skill for refuelling and repairing machines.
const SkillMachining = "Machining"

// Mechanism job types.
const (
	JobTypeRefuel = "Refuel"
	JobTypeRepair = "Repair"
)

// FuelItem is the item kind burned by mechanisms and automatons.
const FuelItem = "Fuel"

// Mechanism is a powered machine placed in the world.
type Mechanism struct {
	ID      uint
	Pos     jobboard.Position
	Fuel    int
	MaxFuel int
	Broken  bool

	jobID uint
}

// Mechanisms produces refuel and repair jobs for machines.
type Mechanisms struct {
	pool
	inv   jobboard.Inventory
	mechs map[uint]*Mechanism
	order []*Mechanism
}

// NewMechanisms creates an empty mechanism manager.
func NewMechanisms(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Mechanisms {
	return &Mechanisms{
		pool:  newPool("mechanisms", sim, logger),
		inv:   inv,
		mechs: make(map[uint]*Mechanism),
	}
}

// AddMechanism places a fully fuelled machine.
func (m *Mechanisms) AddMechanism(pos jobboard.Position, maxFuel int) *Mechanism {
	mech := &Mechanism{ID: uint(len(m.order) + 1), Pos: pos, Fuel: maxFuel, MaxFuel: maxFuel}
	m.mechs[mech.ID] = mech
	m.order = append(m.order, mech)
	return mech
}

// Burn consumes fuel.
func (m *Mechanisms) Burn(mech *Mechanism, amount int) {
	mech.Fuel = max(0, mech.Fuel-amount)
}

// Break marks a machine broken.
func (m *Mechanisms) Break(mech *Mechanism) { mech.Broken = true }

// Tick creates a repair job for broken machines and a refuel job for
// machines at a quarter tank or less. It returns the number of jobs created.
func (m *Mechanisms) Tick() int {
	created := 0
	for _, mech := range m.order {
		if mech.jobID != 0 {
			continue
		}
		switch {
		case mech.Broken:
			mech.jobID = m.add(&jobboard.Job{
				Type:    JobTypeRepair,
				Skill:   SkillMachining,
				Pos:     mech.Pos,
				Subject: jobboard.Machine(mech.ID),
			})
			created++
		case mech.MaxFuel > 0 && mech.Fuel*4 <= mech.MaxFuel:
			mech.jobID = m.add(&jobboard.Job{
				Type:          JobTypeRefuel,
				Skill:         SkillMachining,
				Pos:           mech.Pos,
				Subject:       jobboard.Machine(mech.ID),
				Amount:        mech.MaxFuel - mech.Fuel,
				RequiredItems: []jobboard.RequiredItem{{Count: 1, ItemKind: FuelItem, MaterialKind: jobboard.AnyMaterial}},
			})
			created++
		}
	}
	return created
}

// GetJob hands out a machine job once its fuel, if any, is in reach.
func (m *Mechanisms) GetJob(workerID uint, skill string) uint {
	if skill != SkillMachining {
		return 0
	}
	return m.claim(workerID, skill, func(j *jobboard.Job) bool {
		for _, ri := range j.RequiredItems {
			if !m.inv.ReachableItemCount(j.Pos, true, ri.Count, ri.ItemKind, ri.MaterialKind) {
				return false
			}
		}
		return true
	})
}

// FinishJob refuels or repairs the machine.
func (m *Mechanisms) FinishJob(jobID uint) bool {
	return m.finish(jobID, func(j *jobboard.Job) {
		mech, ok := m.mechs[j.Subject.ID]
		if !ok {
			return
		}
		mech.jobID = 0
		switch j.Type {
		case JobTypeRefuel:
			mech.Fuel = mech.MaxFuel
		case JobTypeRepair:
			mech.Broken = false
		}
	})
}

// GiveBackJob releases the job for another worker.
func (m *Mechanisms) GiveBackJob(jobID uint) bool {
	return m.giveBack(jobID, func(j *jobboard.Job) {
		if mech, ok := m.mechs[j.Subject.ID]; ok && mech.jobID == j.ID {
			mech.jobID = 0
		}
	})
}
