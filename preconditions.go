package jobboard

import "sort"

// SkipReason explains why a pending job was not promoted.
type SkipReason string

// SkipReason values, in the order the checks run.
const (
	SkipReasonNone         SkipReason = ""
	SkipReasonUnreachable  SkipReason = "unreachable"
	SkipReasonMissingTool  SkipReason = "missing-tool"
	SkipReasonMissingItems SkipReason = "missing-items"
)

// refreshWorkPositions recomputes the candidate work positions from the job
// position and the type's offset template.
func (m *Manager) refreshWorkPositions(j *Job) {
	jt, ok := m.catalog.JobType(j.Type)
	if !ok {
		return
	}
	j.PossibleWorkPositions = jt.Positions(j.Pos, j.Rotation)
}

func (m *Manager) hasWalkableWorkPosition(j *Job) bool {
	for _, wp := range j.PossibleWorkPositions {
		if m.world.IsWalkable(wp) {
			return true
		}
	}
	return false
}

// toolAvailable reports whether a free tool of the type with at least the
// required level exists anywhere.
func (m *Manager) toolAvailable(tool *RequiredTool) bool {
	if tool == nil || tool.Type == "" {
		return true
	}
	for material, count := range m.inventory.MaterialCountsForItem(tool.Type, false) {
		if count > 0 && m.inventory.ToolLevel(material) >= tool.Level {
			return true
		}
	}
	return false
}

// itemsAvailable reports whether every required item is reachable from some
// walkable work position.
func (m *Manager) itemsAvailable(j *Job) bool {
	for _, ri := range j.RequiredItems {
		found := false
		for _, wp := range j.PossibleWorkPositions {
			if !m.world.IsWalkable(wp) {
				continue
			}
			if m.itemReachable(wp, ri) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *Manager) itemReachable(wp Position, ri RequiredItem) bool {
	if ri.MaterialKind != "" && ri.MaterialKind != AnyMaterial {
		return m.inventory.ReachableItemCount(wp, true, ri.Count, ri.ItemKind, ri.MaterialKind)
	}
	if len(ri.MaterialTypes) == 0 && !ri.RequireSame {
		return m.inventory.ReachableItemCount(wp, true, ri.Count, ri.ItemKind, AnyMaterial)
	}

	candidates := m.candidateMaterials(ri)
	if ri.RequireSame {
		for _, c := range candidates {
			if c.count >= ri.Count && m.inventory.ReachableItemCount(wp, true, ri.Count, ri.ItemKind, c.material) {
				return true
			}
		}
		return false
	}

	// Mixed materials: take the largest reachable share of each material.
	remaining := ri.Count
	for _, c := range candidates {
		for n := min(remaining, c.count); n > 0; n-- {
			if m.inventory.ReachableItemCount(wp, true, n, ri.ItemKind, c.material) {
				remaining -= n
				break
			}
		}
		if remaining <= 0 {
			return true
		}
	}
	return false
}

// candidateMaterials lists the materials with free stock that satisfy the
// item's material type restriction, sorted for determinism.
func (m *Manager) candidateMaterials(ri RequiredItem) []materialCount {
	counts := m.inventory.MaterialCountsForItem(ri.ItemKind, false)
	out := make([]materialCount, 0, len(counts))
	for material, count := range counts {
		if count <= 0 {
			continue
		}
		if len(ri.MaterialTypes) > 0 && !contains(ri.MaterialTypes, m.inventory.MaterialType(material)) {
			continue
		}
		out = append(out, materialCount{material: material, count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].material < out[j].material })
	return out
}

type materialCount struct {
	material string
	count    int
}

// checkPreconditions runs the three promotion checks in order.
func (m *Manager) checkPreconditions(j *Job) SkipReason {
	m.refreshWorkPositions(j)
	if !m.hasWalkableWorkPosition(j) {
		return SkipReasonUnreachable
	}
	if !m.toolAvailable(j.Tool) {
		return SkipReasonMissingTool
	}
	if !m.itemsAvailable(j) {
		return SkipReasonMissingItems
	}
	return SkipReasonNone
}

// reachableWorkPosition returns the walkable work position nearest to the
// worker that is connected to the worker's position.
func (m *Manager) reachableWorkPosition(j *Job, workerPos Position) (Position, bool) {
	var (
		best     Position
		bestDist = -1
	)
	for _, wp := range j.PossibleWorkPositions {
		if !m.world.IsWalkable(wp) || !m.world.Connected(workerPos, wp) {
			continue
		}
		if d := wp.DistSquare(workerPos, m.config.ZWeight); bestDist < 0 || d < bestDist {
			best, bestDist = wp, d
		}
	}
	return best, bestDist >= 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
