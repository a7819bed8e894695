package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// SkillHauling is the skill stockpile jobs need.
const SkillHauling = "Hauling"

// JobTypeHaul is the job type of a stockpile haul.
const JobTypeHaul = "Haul"

// Stockpile is a set of storage slots that accept some item kinds.
type Stockpile struct {
	ID      uint
	Accepts []string
	Slots   []jobboard.Position

	reserved map[jobboard.Position]uint // slot -> haul job
	filled   map[jobboard.Position]bool
}

func (sp *Stockpile) accepts(itemKind string) bool {
	if len(sp.Accepts) == 0 {
		return true
	}
	for _, k := range sp.Accepts {
		if k == itemKind {
			return true
		}
	}
	return false
}

func (sp *Stockpile) freeSlot() (jobboard.Position, bool) {
	for _, slot := range sp.Slots {
		if _, taken := sp.reserved[slot]; taken || sp.filled[slot] {
			continue
		}
		return slot, true
	}
	return jobboard.Position{}, false
}

// FreeSlots returns the number of slots neither filled nor reserved.
func (sp *Stockpile) FreeSlots() int {
	n := 0
	for _, slot := range sp.Slots {
		if _, taken := sp.reserved[slot]; !taken && !sp.filled[slot] {
			n++
		}
	}
	return n
}

// Stockpiles produces haul jobs that move loose items into reserved slots.
type Stockpiles struct {
	pool
	inv     jobboard.Inventory
	piles   []*Stockpile
	byJob   map[uint]*Stockpile
	nextPID uint
}

// NewStockpiles creates an empty stockpile manager.
func NewStockpiles(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Stockpiles {
	return &Stockpiles{
		pool:  newPool("stockpiles", sim, logger),
		inv:   inv,
		byJob: make(map[uint]*Stockpile),
	}
}

// AddStockpile creates a stockpile over the given slots. An empty accepts
// list takes every item kind.
func (s *Stockpiles) AddStockpile(accepts []string, slots ...jobboard.Position) uint {
	s.nextPID++
	sp := &Stockpile{
		ID:       s.nextPID,
		Accepts:  append([]string(nil), accepts...),
		Slots:    append([]jobboard.Position(nil), slots...),
		reserved: make(map[jobboard.Position]uint),
		filled:   make(map[jobboard.Position]bool),
	}
	s.piles = append(s.piles, sp)
	return sp.ID
}

// Stockpile returns a stockpile by id.
func (s *Stockpiles) Stockpile(id uint) *Stockpile {
	for _, sp := range s.piles {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

// RequestHaul reserves a free slot in the first stockpile that accepts the
// item and creates a haul job for it. It returns 0 if no slot is free.
func (s *Stockpiles) RequestHaul(itemKind, material string) uint {
	if material == "" {
		material = jobboard.AnyMaterial
	}
	for _, sp := range s.piles {
		if !sp.accepts(itemKind) {
			continue
		}
		slot, ok := sp.freeSlot()
		if !ok {
			continue
		}
		id := s.add(&jobboard.Job{
			Type:      JobTypeHaul,
			Skill:     SkillHauling,
			Pos:       slot,
			Subject:   jobboard.Container(sp.ID),
			Item:      itemKind,
			Materials: []string{material},
			Amount:    1,
			RequiredItems: []jobboard.RequiredItem{
				{Count: 1, ItemKind: itemKind, MaterialKind: material},
			},
		})
		sp.reserved[slot] = id
		s.byJob[id] = sp
		return id
	}
	s.logger.Debug("RequestHaul: no free slot", "item", itemKind, "material", material)
	return 0
}

// GetJob hands out a haul job whose item is reachable from outside any
// stockpile.
func (s *Stockpiles) GetJob(workerID uint, skill string) uint {
	if skill != SkillHauling {
		return 0
	}
	return s.claim(workerID, skill, func(j *jobboard.Job) bool {
		ri := j.RequiredItems[0]
		return s.inv.ReachableItemCount(j.Pos, false, ri.Count, ri.ItemKind, ri.MaterialKind)
	})
}

// FinishJob fills the reserved slot.
func (s *Stockpiles) FinishJob(jobID uint) bool {
	return s.finish(jobID, func(j *jobboard.Job) {
		sp := s.byJob[jobID]
		delete(s.byJob, jobID)
		delete(sp.reserved, j.Pos)
		sp.filled[j.Pos] = true
	})
}

// GiveBackJob keeps the slot reserved for the next hauler unless the job was
// canceled.
func (s *Stockpiles) GiveBackJob(jobID uint) bool {
	return s.giveBack(jobID, s.unreserve)
}

// CancelHaul cancels a haul. A haul in progress is dropped when its worker
// gives it back.
func (s *Stockpiles) CancelHaul(jobID uint) bool {
	j := s.Job(jobID)
	removed, ok := s.cancel(jobID)
	if removed {
		s.unreserve(j)
	}
	return ok
}

// TakeItem empties a filled slot, e.g. because the item was used.
func (s *Stockpiles) TakeItem(slot jobboard.Position) bool {
	for _, sp := range s.piles {
		if sp.filled[slot] {
			delete(sp.filled, slot)
			return true
		}
	}
	return false
}

func (s *Stockpiles) unreserve(j *jobboard.Job) {
	sp, ok := s.byJob[j.ID]
	if !ok {
		return
	}
	delete(s.byJob, j.ID)
	delete(sp.reserved, j.Pos)
}
