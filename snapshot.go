package jobboard

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// JobInfo is a read-only copy of one job for UI and debug views.
type JobInfo struct {
	ID       uint
	Type     string
	Pos      Position
	Priority int
	State    JobState
	WorkedBy uint
	Subject  Subject
}

// Snapshot is a read-only copy of the manager state at one tick.
type Snapshot struct {
	Tick      uint64
	Total     int
	Pending   int
	Available int
	Worked    int
	Jobs      []JobInfo // sorted by id
}

// ItemAvailability reports whether a required item is currently satisfied.
type ItemAvailability struct {
	RequiredItem
	Available bool
}

// JobDescription is the tooltip view of a job.
type JobDescription struct {
	ID               uint
	Type             string
	Pos              Position
	Priority         int
	State            JobState
	Skill            string
	Tool             *RequiredTool
	ToolAvailable    bool
	ComponentMissing bool
	Items            []ItemAvailability
}

// Snapshot copies out the manager state. Call it on the simulation goroutine,
// typically at a frame boundary, and hand the result to other goroutines.
func (m *Manager) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:      m.sim.Tick(),
		Total:     len(m.jobs),
		Pending:   m.pendingCount,
		Available: m.available.size,
		Jobs:      make([]JobInfo, 0, len(m.jobs)),
	}
	for _, j := range m.jobs {
		if j.Worked {
			s.Worked++
		}
		s.Jobs = append(s.Jobs, JobInfo{
			ID:       j.ID,
			Type:     j.Type,
			Pos:      j.Pos,
			Priority: j.Priority,
			State:    j.State(),
			WorkedBy: j.WorkedBy,
			Subject:  j.Subject,
		})
	}
	sort.Slice(s.Jobs, func(a, b int) bool { return s.Jobs[a].ID < s.Jobs[b].ID })
	return s
}

// Describe builds the tooltip description of a manager job, evaluating item
// and tool availability against the current world.
func (m *Manager) Describe(jobID uint) (*JobDescription, error) {
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrJobNotFound, jobID)
	}
	d := &JobDescription{
		ID:               j.ID,
		Type:             j.Type,
		Pos:              j.Pos,
		Priority:         j.Priority,
		State:            j.State(),
		Skill:            j.Skill,
		ToolAvailable:    m.toolAvailable(j.Tool),
		ComponentMissing: j.ComponentMissing,
	}
	if j.Tool != nil {
		tool := *j.Tool
		d.Tool = &tool
	}

	positions := j.PossibleWorkPositions
	if len(positions) == 0 {
		if jt, ok := m.catalog.JobType(j.Type); ok {
			positions = jt.Positions(j.Pos, j.Rotation)
		}
	}
	for _, ri := range j.RequiredItems {
		avail := false
		for _, wp := range positions {
			if m.world.IsWalkable(wp) && m.itemReachable(wp, ri) {
				avail = true
				break
			}
		}
		d.Items = append(d.Items, ItemAvailability{RequiredItem: ri, Available: avail})
	}
	return d, nil
}

// SnapshotFeed hands the latest snapshot from the simulation goroutine to
// any number of readers.
type SnapshotFeed struct {
	cur atomic.Pointer[Snapshot]
}

// Publish replaces the current snapshot.
func (f *SnapshotFeed) Publish(s *Snapshot) { f.cur.Store(s) }

// Latest returns the most recent snapshot, or nil before the first Publish.
func (f *SnapshotFeed) Latest() *Snapshot { return f.cur.Load() }
