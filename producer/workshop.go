package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// JobTypeCraft is the job type of a workshop craft.
const JobTypeCraft = "Craft"

// Recipe is something a workshop can make from its inputs.
type Recipe struct {
	Item   string
	Inputs []jobboard.RequiredItem // an empty MaterialKind takes the order material
}

// CraftOrder is one queued order at a workshop.
type CraftOrder struct {
	Item     string
	Material string
	Count    int // units still to make
}

// Workshop is a crafting station with its own order queue.
type Workshop struct {
	ID      uint
	Kind    string
	Skill   string
	Pos     jobboard.Position
	Recipes []Recipe
	Orders  []CraftOrder

	jobID uint
}

func (ws *Workshop) recipe(item string) (Recipe, bool) {
	for _, r := range ws.Recipes {
		if r.Item == item {
			return r, true
		}
	}
	return Recipe{}, false
}

// Workshops produces craft jobs. Workshops sharing a skill are served
// round-robin so one busy workshop does not starve the others. It also
// implements jobboard.CraftRequester.
type Workshops struct {
	pool
	inv   jobboard.Inventory
	shops []*Workshop
	next  int
}

// NewWorkshops creates an empty workshop manager.
func NewWorkshops(sim *jobboard.SimContext, inv jobboard.Inventory, logger *slog.Logger) *Workshops {
	return &Workshops{
		pool: newPool("workshops", sim, logger),
		inv:  inv,
	}
}

// AddWorkshop registers a workshop.
func (w *Workshops) AddWorkshop(kind, skill string, pos jobboard.Position, recipes ...Recipe) *Workshop {
	ws := &Workshop{
		ID:      uint(len(w.shops) + 1),
		Kind:    kind,
		Skill:   skill,
		Pos:     pos,
		Recipes: recipes,
	}
	w.shops = append(w.shops, ws)
	return ws
}

// Queue appends an order to a workshop. It reports false if the workshop
// has no recipe for the item.
func (w *Workshops) Queue(ws *Workshop, item, material string, count int) bool {
	if count <= 0 {
		return false
	}
	if _, ok := ws.recipe(item); !ok {
		return false
	}
	if material == "" {
		material = jobboard.AnyMaterial
	}
	ws.Orders = append(ws.Orders, CraftOrder{Item: item, Material: material, Count: count})
	return true
}

// RequestCraft queues count units at the first workshop that can make the
// item. It returns the number of units queued.
func (w *Workshops) RequestCraft(itemKind, material string, count int) int {
	for _, ws := range w.shops {
		if w.Queue(ws, itemKind, material, count) {
			w.logger.Debug("RequestCraft", "item", itemKind, "material", material, "count", count, "workshop", ws.Kind)
			return count
		}
	}
	return 0
}

// GetJob turns the head order of the next idle workshop with the skill
// into a claimed craft job.
func (w *Workshops) GetJob(workerID uint, skill string) uint {
	n := len(w.shops)
	for i := 0; i < n; i++ {
		idx := (w.next + i) % n
		ws := w.shops[idx]
		if ws.Skill != skill || ws.jobID != 0 || len(ws.Orders) == 0 {
			continue
		}
		order := ws.Orders[0]
		recipe, _ := ws.recipe(order.Item)
		inputs := make([]jobboard.RequiredItem, len(recipe.Inputs))
		for k, in := range recipe.Inputs {
			if in.MaterialKind == "" {
				in.MaterialKind = order.Material
			}
			inputs[k] = in
		}
		if !w.inputsAvailable(ws.Pos, inputs) {
			continue
		}

		id := w.add(&jobboard.Job{
			Type:           JobTypeCraft,
			Skill:          skill,
			Pos:            ws.Pos,
			Subject:        jobboard.Container(ws.ID),
			Craft:          order.Item,
			Item:           order.Item,
			Materials:      []string{order.Material},
			Amount:         1,
			RequiredItems:  inputs,
			DestroyOnAbort: true,
		})
		w.jobs[id].Claim(workerID)
		ws.jobID = id
		w.next = idx + 1
		return id
	}
	return 0
}

func (w *Workshops) inputsAvailable(pos jobboard.Position, inputs []jobboard.RequiredItem) bool {
	for _, in := range inputs {
		if !w.inv.ReachableItemCount(pos, true, in.Count, in.ItemKind, in.MaterialKind) {
			return false
		}
	}
	return true
}

// FinishJob counts one unit against the head order.
func (w *Workshops) FinishJob(jobID uint) bool {
	return w.finish(jobID, func(j *jobboard.Job) {
		ws := w.shopFor(j)
		if ws == nil {
			return
		}
		ws.jobID = 0
		if len(ws.Orders) == 0 {
			return
		}
		ws.Orders[0].Count--
		if ws.Orders[0].Count <= 0 {
			ws.Orders = ws.Orders[1:]
		}
	})
}

// GiveBackJob drops the craft job; the order stays queued.
func (w *Workshops) GiveBackJob(jobID uint) bool {
	return w.giveBack(jobID, func(j *jobboard.Job) {
		if ws := w.shopFor(j); ws != nil {
			ws.jobID = 0
		}
	})
}

func (w *Workshops) shopFor(j *jobboard.Job) *Workshop {
	for _, ws := range w.shops {
		if ws.ID == j.Subject.ID && ws.jobID == j.ID {
			return ws
		}
	}
	return nil
}
