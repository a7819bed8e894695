// Package jobboard provides the job scheduling and assignment engine of a
// colony simulation.
//
// The engine turns designations (build here, dig there, haul this) into
// discrete jobs, matches jobs to workers by skill and reachability, and drives
// the job lifecycle:
//   - Jobs are added to the Manager and parked in a pending queue
//   - Each tick, pending jobs whose preconditions hold (walkable work position,
//     required tool, required items) are promoted into the available index
//   - Workers request jobs by skill; producers (stockpiles, farms, workshops,
//     mechanisms, rooms) are polled through the same Producer contract
//   - Claimed jobs are finished, given back to the pending queue, or canceled
//
// Example usage:
//
//	sim := jobboard.NewSimContext()
//	catalog, _ := jobboard.DefaultCatalog()
//	board := jobboard.NewManager(catalog, world, inventory, sim)
//
//	id := board.AddJob("BuildWall", jobboard.Pos(5, 5, 0), 0, false)
//	board.OnTick()
//	if jobID := board.GetJob([]string{"Masonry"}, workerID, workerPos); jobID != 0 {
//	    _ = board.SetJobBeingWorked(jobID, workerID, true)
//	}
package jobboard

import "fmt"

// Position is a tile coordinate in the world.
type Position struct{ X, Y, Z int }

// Pos is a convenience constructor for Position.
func Pos(x, y, z int) Position { return Position{x, y, z} }

// Add returns a copy of pos offset by other.
func (pos Position) Add(other Position) Position {
	pos.X += other.X
	pos.Y += other.Y
	pos.Z += other.Z
	return pos
}

// Sub returns a copy of pos with other subtracted.
func (pos Position) Sub(other Position) Position {
	pos.X -= other.X
	pos.Y -= other.Y
	pos.Z -= other.Z
	return pos
}

// DistSquare returns the squared distance to other, with the z component
// multiplied by zWeight before squaring.
func (pos Position) DistSquare(other Position, zWeight int) int {
	d := pos.Sub(other)
	dz := d.Z * zWeight
	return d.X*d.X + d.Y*d.Y + dz*dz
}

// Rotate turns pos around the z axis by the given number of quarter turns.
func (pos Position) Rotate(rotation int) Position {
	switch ((rotation % 4) + 4) % 4 {
	case 1:
		pos.X, pos.Y = -pos.Y, pos.X
	case 2:
		pos.X, pos.Y = -pos.X, -pos.Y
	case 3:
		pos.X, pos.Y = pos.Y, -pos.X
	}
	return pos
}

// Neighbors returns the six face-connected neighbors: north, east, south,
// west, above and below.
func (pos Position) Neighbors() [6]Position {
	return [6]Position{
		{pos.X, pos.Y - 1, pos.Z},
		{pos.X + 1, pos.Y, pos.Z},
		{pos.X, pos.Y + 1, pos.Z},
		{pos.X - 1, pos.Y, pos.Z},
		{pos.X, pos.Y, pos.Z + 1},
		{pos.X, pos.Y, pos.Z - 1},
	}
}

func (pos Position) String() string {
	return fmt.Sprintf("%d %d %d", pos.X, pos.Y, pos.Z)
}

// SubjectKind tags what a job acts upon.
type SubjectKind uint8

const (
	// SubjectTile is a plain tile job; the target is the job position.
	SubjectTile SubjectKind = iota
	// SubjectCreature is an animal or automaton.
	SubjectCreature
	// SubjectMachine is a mechanism.
	SubjectMachine
	// SubjectContainer is a stockpile or other container.
	SubjectContainer
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectTile:
		return "tile"
	case SubjectCreature:
		return "creature"
	case SubjectMachine:
		return "machine"
	case SubjectContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Subject is the thing a job acts upon. The zero value is a tile subject.
type Subject struct {
	Kind SubjectKind
	ID   uint // unused for SubjectTile
}

// Tile returns the tile subject.
func Tile() Subject { return Subject{} }

// Creature returns a subject referring to an animal or automaton.
func Creature(id uint) Subject { return Subject{Kind: SubjectCreature, ID: id} }

// Machine returns a subject referring to a mechanism.
func Machine(id uint) Subject { return Subject{Kind: SubjectMachine, ID: id} }

// Container returns a subject referring to a stockpile or container.
func Container(id uint) Subject { return Subject{Kind: SubjectContainer, ID: id} }

// RequiredTool is a tool a worker must carry to do a job.
type RequiredTool struct {
	Type  string
	Level int
}

// RequiredItem is one line of a job's bill of materials.
type RequiredItem struct {
	Count         int
	ItemKind      string
	MaterialKind  string   // empty means any material
	MaterialTypes []string // allowed material types when MaterialKind is empty
	RequireSame   bool     // all units must share one material
}

// AnyMaterial is the wildcard material passed to the inventory.
const AnyMaterial = "any"

const (
	// MinPriority is the lowest priority band.
	MinPriority = 0
	// MaxPriority is the highest priority band.
	MaxPriority = 9
)

// JobState describes where a job currently sits in the manager.
type JobState string

const (
	// JobStatePending indicates the job awaits a precondition check.
	JobStatePending JobState = "pending"
	// JobStateAvailable indicates the job can be handed to a worker.
	JobStateAvailable JobState = "available"
	// JobStateWorked indicates a worker has claimed the job.
	JobStateWorked JobState = "worked"
	// JobStateCanceled indicates a worked job was canceled and awaits give-back.
	JobStateCanceled JobState = "canceled"
	// JobStateParked is used for producer-owned jobs that are not claimed.
	JobStateParked JobState = "parked"
)

// Job represents one unit of schedulable work.
type Job struct {
	ID       uint
	Type     string
	Skill    string
	Tool     *RequiredTool // nil if no tool is needed
	Pos      Position
	Rotation int
	Subject  Subject

	// Tiles a worker may stand on, recomputed from Pos and the job type's
	// offset template before every match.
	PossibleWorkPositions []Position
	WorkPos               *Position

	Item          string   // target item kind
	Materials     []string // target materials
	Amount        int
	Craft         string
	RequiredItems []RequiredItem

	Worked           bool
	WorkedBy         uint
	Canceled         bool
	Aborted          bool
	ComponentMissing bool
	Priority         int
	NoMarker         bool
	DestroyOnAbort   bool

	queued   bool   // sits in the pending queue
	queueSeq uint64 // pending entry that is current for this job
	promoted bool   // sits in the available index
}

// SetPriority clamps prio into [MinPriority, MaxPriority].
func (j *Job) SetPriority(prio int) {
	j.Priority = clampPriority(prio)
}

// RaisePriority moves the job one band up, clamped.
func (j *Job) RaisePriority() { j.SetPriority(j.Priority + 1) }

// LowerPriority moves the job one band down, clamped.
func (j *Job) LowerPriority() { j.SetPriority(j.Priority - 1) }

// RequiresTool reports whether the job needs a tool.
func (j *Job) RequiresTool() bool { return j.Tool != nil && j.Tool.Type != "" }

// Claim marks the job worked by the given worker.
func (j *Job) Claim(workerID uint) {
	j.Worked = true
	j.WorkedBy = workerID
}

// Release clears the claim and the chosen work position.
func (j *Job) Release() {
	j.Worked = false
	j.WorkedBy = 0
	j.WorkPos = nil
}

// DistSquare returns the squared distance from the job position to pos.
func (j *Job) DistSquare(pos Position, zWeight int) int {
	return j.Pos.DistSquare(pos, zWeight)
}

// State reports where the job sits in the lifecycle.
func (j *Job) State() JobState {
	switch {
	case j.Worked && j.Canceled:
		return JobStateCanceled
	case j.Worked:
		return JobStateWorked
	case j.promoted:
		return JobStateAvailable
	case j.queued:
		return JobStatePending
	default:
		return JobStateParked
	}
}

func clampPriority(prio int) int {
	if prio < MinPriority {
		return MinPriority
	}
	if prio > MaxPriority {
		return MaxPriority
	}
	return prio
}

// cloneJob returns a deep copy of the job.
func cloneJob(j *Job) *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Tool != nil {
		tool := *j.Tool
		cp.Tool = &tool
	}
	if j.WorkPos != nil {
		wp := *j.WorkPos
		cp.WorkPos = &wp
	}
	cp.PossibleWorkPositions = append([]Position(nil), j.PossibleWorkPositions...)
	cp.Materials = append([]string(nil), j.Materials...)
	if j.RequiredItems != nil {
		cp.RequiredItems = make([]RequiredItem, len(j.RequiredItems))
		for i, ri := range j.RequiredItems {
			ri.MaterialTypes = append([]string(nil), ri.MaterialTypes...)
			cp.RequiredItems[i] = ri
		}
	}
	return &cp
}
