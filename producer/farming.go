package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// Skills served by Farming.
const (
	SkillFarming         = "Farming"
	SkillHorticulture    = "Horticulture"
	SkillWoodcutting     = "Woodcutting"
	SkillAnimalHusbandry = "AnimalHusbandry"
)

// Farming job types.
const (
	JobTypeTill      = "Till"
	JobTypePlant     = "Plant"
	JobTypeHarvest   = "Harvest"
	JobTypePlantTree = "PlantTree"
	JobTypePickFruit = "PickFruit"
	JobTypeFellTree  = "FellTree"
	JobTypeTame      = "Tame"
	JobTypeShear     = "Shear"
	JobTypeMilk      = "Milk"
	JobTypeSlaughter = "Slaughter"
)

// PlotState is the growth state of a farm or grove tile.
type PlotState uint8

const (
	PlotEmpty   PlotState = iota // nothing; farms till it, groves plant a tree
	PlotTilled                   // farms only: ready for seeds
	PlotPlanted                  // growing
	PlotRipe                     // crop or fruit ready
)

func (s PlotState) String() string {
	switch s {
	case PlotEmpty:
		return "empty"
	case PlotTilled:
		return "tilled"
	case PlotPlanted:
		return "planted"
	case PlotRipe:
		return "ripe"
	default:
		return "unknown"
	}
}

// Plot is one tile of a farm or grove.
type Plot struct {
	Pos   jobboard.Position
	State PlotState
	Fell  bool // groves: cut the tree down

	grove bool
	jobID uint
}

// Farm grows one crop over a set of plots.
type Farm struct {
	ID    uint
	Crop  string
	Plots []*Plot
}

// Grove grows one tree kind over a set of plots.
type Grove struct {
	ID    uint
	Tree  string
	Plots []*Plot
}

// Animal is a creature kept in a pasture.
type Animal struct {
	CreatureID uint
	Pos        jobboard.Position
	Tame       bool

	jobID uint
}

// Pasture keeps animals.
type Pasture struct {
	ID      uint
	Pos     jobboard.Position
	Animals []*Animal
}

// Farming produces farm, grove and pasture jobs.
type Farming struct {
	pool
	inv      jobboard.Inventory
	farms    []*Farm
	groves   []*Grove
	pastures []*Pasture
	plots    map[jobboard.Position]*Plot
	animals  map[uint]*Animal // creature id -> animal
	nextID   uint
}

// NewFarming creates an empty farming manager.
func NewFarming(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Farming {
	return &Farming{
		pool:    newPool("farming", sim, logger),
		inv:     inv,
		plots:   make(map[jobboard.Position]*Plot),
		animals: make(map[uint]*Animal),
	}
}

// AddFarm creates a farm. Tiles already used by another farm or grove are
// skipped.
func (f *Farming) AddFarm(crop string, tiles ...jobboard.Position) *Farm {
	f.nextID++
	farm := &Farm{ID: f.nextID, Crop: crop}
	for _, pos := range tiles {
		if p := f.addPlot(pos, false); p != nil {
			farm.Plots = append(farm.Plots, p)
		}
	}
	f.farms = append(f.farms, farm)
	return farm
}

// AddGrove creates a grove of the given tree kind.
func (f *Farming) AddGrove(tree string, tiles ...jobboard.Position) *Grove {
	f.nextID++
	grove := &Grove{ID: f.nextID, Tree: tree}
	for _, pos := range tiles {
		if p := f.addPlot(pos, true); p != nil {
			grove.Plots = append(grove.Plots, p)
		}
	}
	f.groves = append(f.groves, grove)
	return grove
}

func (f *Farming) addPlot(pos jobboard.Position, grove bool) *Plot {
	if _, taken := f.plots[pos]; taken {
		return nil
	}
	p := &Plot{Pos: pos, grove: grove}
	f.plots[pos] = p
	return p
}

// Plot returns the farm or grove plot at pos.
func (f *Farming) Plot(pos jobboard.Position) *Plot { return f.plots[pos] }

// AddPasture creates a pasture.
func (f *Farming) AddPasture(pos jobboard.Position) *Pasture {
	f.nextID++
	p := &Pasture{ID: f.nextID, Pos: pos}
	f.pastures = append(f.pastures, p)
	return p
}

// AddAnimal puts a creature in a pasture.
func (f *Farming) AddAnimal(pasture *Pasture, creatureID uint, pos jobboard.Position) *Animal {
	a := &Animal{CreatureID: creatureID, Pos: pos}
	pasture.Animals = append(pasture.Animals, a)
	f.animals[creatureID] = a
	return a
}

// Grow marks a planted plot ripe.
func (f *Farming) Grow(pos jobboard.Position) bool {
	p, ok := f.plots[pos]
	if !ok || p.State != PlotPlanted {
		return false
	}
	p.State = PlotRipe
	return true
}

// MarkFell flags a grove tree for cutting.
func (f *Farming) MarkFell(pos jobboard.Position) bool {
	p, ok := f.plots[pos]
	if !ok || !p.grove || p.State == PlotEmpty {
		return false
	}
	p.Fell = true
	return true
}

// Tick creates the jobs plots need in their current state. It returns the
// number of jobs created.
func (f *Farming) Tick() int {
	created := 0
	for _, farm := range f.farms {
		for _, p := range farm.Plots {
			if p.jobID != 0 {
				continue
			}
			var j *jobboard.Job
			switch p.State {
			case PlotEmpty:
				j = &jobboard.Job{Type: JobTypeTill, Skill: SkillFarming}
			case PlotTilled:
				j = &jobboard.Job{
					Type:          JobTypePlant,
					Skill:         SkillFarming,
					Item:          farm.Crop,
					RequiredItems: []jobboard.RequiredItem{{Count: 1, ItemKind: "Seed", MaterialKind: farm.Crop}},
				}
			case PlotRipe:
				j = &jobboard.Job{Type: JobTypeHarvest, Skill: SkillFarming, Item: farm.Crop}
			}
			if j != nil {
				created += f.plotJob(p, j)
			}
		}
	}
	for _, grove := range f.groves {
		for _, p := range grove.Plots {
			if p.jobID != 0 {
				continue
			}
			var j *jobboard.Job
			switch {
			case p.Fell && p.State != PlotEmpty:
				j = &jobboard.Job{
					Type:  JobTypeFellTree,
					Skill: SkillWoodcutting,
					Tool:  &jobboard.RequiredTool{Type: "Axe", Level: 1},
					Item:  grove.Tree,
				}
			case p.State == PlotEmpty:
				j = &jobboard.Job{
					Type:          JobTypePlantTree,
					Skill:         SkillHorticulture,
					Item:          grove.Tree,
					RequiredItems: []jobboard.RequiredItem{{Count: 1, ItemKind: "Sapling", MaterialKind: grove.Tree}},
				}
			case p.State == PlotRipe:
				j = &jobboard.Job{Type: JobTypePickFruit, Skill: SkillHorticulture, Item: grove.Tree}
			}
			if j != nil {
				created += f.plotJob(p, j)
			}
		}
	}
	return created
}

func (f *Farming) plotJob(p *Plot, j *jobboard.Job) int {
	j.Pos = p.Pos
	j.Subject = jobboard.Tile()
	p.jobID = f.add(j)
	return 1
}

// RequestAnimalJob queues tame, shear, milk or slaughter for a creature. Only
// tame animals can be shorn or milked. It returns 0 if the creature is
// unknown, already has a job, or the request does not apply.
func (f *Farming) RequestAnimalJob(creatureID uint, jobType string) uint {
	a, ok := f.animals[creatureID]
	if !ok || a.jobID != 0 {
		return 0
	}
	switch jobType {
	case JobTypeTame:
		if a.Tame {
			return 0
		}
	case JobTypeShear, JobTypeMilk, JobTypeSlaughter:
		if !a.Tame {
			return 0
		}
	default:
		return 0
	}
	a.jobID = f.add(&jobboard.Job{
		Type:    jobType,
		Skill:   SkillAnimalHusbandry,
		Pos:     a.Pos,
		Subject: jobboard.Creature(creatureID),
	})
	return a.jobID
}

// GetJob hands out the first free job for the skill whose items are in stock.
func (f *Farming) GetJob(workerID uint, skill string) uint {
	switch skill {
	case SkillFarming, SkillHorticulture, SkillWoodcutting, SkillAnimalHusbandry:
	default:
		return 0
	}
	return f.claim(workerID, skill, func(j *jobboard.Job) bool {
		for _, ri := range j.RequiredItems {
			if !f.inv.ReachableItemCount(j.Pos, true, ri.Count, ri.ItemKind, ri.MaterialKind) {
				return false
			}
		}
		return true
	})
}

// FinishJob advances the plot or animal the job was for.
func (f *Farming) FinishJob(jobID uint) bool {
	return f.finish(jobID, func(j *jobboard.Job) {
		if j.Subject.Kind == jobboard.SubjectCreature {
			f.finishAnimal(j)
			return
		}
		p, ok := f.plots[j.Pos]
		if !ok {
			return
		}
		p.jobID = 0
		switch j.Type {
		case JobTypeTill:
			p.State = PlotTilled
		case JobTypePlant, JobTypePlantTree, JobTypePickFruit:
			p.State = PlotPlanted
		case JobTypeHarvest:
			p.State = PlotTilled
		case JobTypeFellTree:
			p.State = PlotEmpty
			p.Fell = false
		}
	})
}

func (f *Farming) finishAnimal(j *jobboard.Job) {
	a, ok := f.animals[j.Subject.ID]
	if !ok {
		return
	}
	a.jobID = 0
	switch j.Type {
	case JobTypeTame:
		a.Tame = true
	case JobTypeSlaughter:
		delete(f.animals, a.CreatureID)
		for _, p := range f.pastures {
			for i, pa := range p.Animals {
				if pa == a {
					p.Animals = append(p.Animals[:i], p.Animals[i+1:]...)
					break
				}
			}
		}
	}
}

// GiveBackJob releases the job so another worker can take it.
func (f *Farming) GiveBackJob(jobID uint) bool {
	return f.giveBack(jobID, f.detach)
}

// CancelJob cancels a farming job. A job in progress is dropped when its
// worker gives it back.
func (f *Farming) CancelJob(jobID uint) bool {
	j := f.Job(jobID)
	removed, ok := f.cancel(jobID)
	if removed {
		f.detach(j)
	}
	return ok
}

func (f *Farming) detach(j *jobboard.Job) {
	if j.Subject.Kind == jobboard.SubjectCreature {
		if a, ok := f.animals[j.Subject.ID]; ok && a.jobID == j.ID {
			a.jobID = 0
		}
		return
	}
	if p, ok := f.plots[j.Pos]; ok && p.jobID == j.ID {
		p.jobID = 0
	}
}
