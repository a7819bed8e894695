package jobboard

// World is the tile and region oracle the manager consults.
type World interface {
	// IsWalkable reports whether a worker can stand on pos.
	IsWalkable(pos Position) bool
	// Connected reports whether a path between a and b exists (same region
	// or connected regions).
	Connected(a, b Position) bool
	// WalkableNeighbors counts walkable tiles around pos.
	WalkableNeighbors(pos Position) int
	// JobMarker returns the job id recorded on the tile, if any.
	JobMarker(pos Position) (uint, bool)
	// SetJobMarker records or (with jobID 0) clears the job id on the tile.
	SetJobMarker(pos Position, jobID uint)
}

// Inventory answers item and tool availability questions.
type Inventory interface {
	// ReachableItemCount reports whether at least count items of the given
	// kind and material are reachable from pos. material may be AnyMaterial.
	ReachableItemCount(pos Position, allowInStockpile bool, count int, itemKind, material string) bool
	// MaterialCountsForItem returns free item counts per material.
	MaterialCountsForItem(itemKind string, allowInJob bool) map[string]int
	// MaterialType returns the type of a material (e.g. Oak -> Wood).
	MaterialType(material string) string
	// ToolLevel returns the tool level of a material.
	ToolLevel(material string) int
}

// MarkerKind selects the visual overlay for a job.
type MarkerKind uint8

const (
	// MarkerIdle marks a job that waits for a worker.
	MarkerIdle MarkerKind = iota
	// MarkerBusy marks a job a tool-carrying worker is doing.
	MarkerBusy
)

// MarkerSink receives cosmetic job-marker updates.
type MarkerSink interface {
	ShowJobMarker(pos Position, jobType string, kind MarkerKind)
	ClearJobMarker(pos Position)
}

// CraftRequester backfills missing construction components, usually by
// queueing craft jobs at a workshop. It returns the number of units queued.
type CraftRequester interface {
	RequestCraft(itemKind, material string, count int) int
}

type noopMarkers struct{}

func (noopMarkers) ShowJobMarker(Position, string, MarkerKind) {}
func (noopMarkers) ClearJobMarker(Position)                    {}
