package producer_test

import (
	"log/slog"
	"os"

	"github.com/VsevolodSauta/jobboard"
)

// testLogger creates a logger for tests (discards output)
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// stock is an inventory where every free item is reachable from everywhere.
type stock struct {
	items map[string]map[string]int
}

func newStock() *stock {
	return &stock{items: make(map[string]map[string]int)}
}

func (s *stock) put(itemKind, material string, count int) {
	if s.items[itemKind] == nil {
		s.items[itemKind] = make(map[string]int)
	}
	s.items[itemKind][material] += count
}

func (s *stock) ReachableItemCount(_ jobboard.Position, _ bool, count int, itemKind, material string) bool {
	if material == jobboard.AnyMaterial || material == "" {
		total := 0
		for _, n := range s.items[itemKind] {
			total += n
		}
		return total >= count
	}
	return s.items[itemKind][material] >= count
}

func (s *stock) MaterialCountsForItem(itemKind string, _ bool) map[string]int {
	out := make(map[string]int, len(s.items[itemKind]))
	for material, n := range s.items[itemKind] {
		out[material] = n
	}
	return out
}

func (s *stock) MaterialType(material string) string {
	switch material {
	case "Oak", "Pine":
		return "Wood"
	case "Granite":
		return "Stone"
	default:
		return ""
	}
}

func (s *stock) ToolLevel(string) int { return 1 }

// openWorld is walkable and connected everywhere.
type openWorld struct {
	markers map[jobboard.Position]uint
}

func newOpenWorld() *openWorld {
	return &openWorld{markers: make(map[jobboard.Position]uint)}
}

func (w *openWorld) IsWalkable(jobboard.Position) bool { return true }

func (w *openWorld) Connected(_, _ jobboard.Position) bool { return true }

func (w *openWorld) WalkableNeighbors(jobboard.Position) int { return 6 }

func (w *openWorld) JobMarker(pos jobboard.Position) (uint, bool) {
	id, ok := w.markers[pos]
	return id, ok
}

func (w *openWorld) SetJobMarker(pos jobboard.Position, jobID uint) {
	if jobID == 0 {
		delete(w.markers, pos)
		return
	}
	w.markers[pos] = jobID
}

// stepper walks one axis at a time.
type stepper struct{}

func (stepper) Step(from, to jobboard.Position) (jobboard.Position, bool) {
	switch {
	case from.X < to.X:
		from.X++
	case from.X > to.X:
		from.X--
	case from.Y < to.Y:
		from.Y++
	case from.Y > to.Y:
		from.Y--
	case from.Z < to.Z:
		from.Z++
	case from.Z > to.Z:
		from.Z--
	}
	return from, true
}
