package jobboard

import (
	"context"
	"fmt"
	"sort"
)

// JobRecord is the persisted form of a manager job: enough to rebuild the
// pending and available indices without replaying history.
type JobRecord struct {
	ID               uint           `json:"id" msgpack:"id"`
	Type             string         `json:"type" msgpack:"type"`
	Skill            string         `json:"skill" msgpack:"skill"`
	Tool             *RequiredTool  `json:"tool,omitempty" msgpack:"tool,omitempty"`
	Pos              Position       `json:"pos" msgpack:"pos"`
	Rotation         int            `json:"rotation" msgpack:"rotation"`
	Priority         int            `json:"priority" msgpack:"priority"`
	Subject          Subject        `json:"subject" msgpack:"subject"`
	Item             string         `json:"item,omitempty" msgpack:"item,omitempty"`
	Materials        []string       `json:"materials,omitempty" msgpack:"materials,omitempty"`
	Amount           int            `json:"amount,omitempty" msgpack:"amount,omitempty"`
	Craft            string         `json:"craft,omitempty" msgpack:"craft,omitempty"`
	RequiredItems    []RequiredItem `json:"requiredItems,omitempty" msgpack:"requiredItems,omitempty"`
	Worked           bool           `json:"worked" msgpack:"worked"`
	WorkedBy         uint           `json:"workedBy,omitempty" msgpack:"workedBy,omitempty"`
	Canceled         bool           `json:"canceled" msgpack:"canceled"`
	ComponentMissing bool           `json:"componentMissing" msgpack:"componentMissing"`
	NoMarker         bool           `json:"noMarker" msgpack:"noMarker"`
	DestroyOnAbort   bool           `json:"destroyOnAbort" msgpack:"destroyOnAbort"`
	Promoted         bool           `json:"promoted" msgpack:"promoted"`
	Aborted          bool           `json:"aborted" msgpack:"aborted"`
}

// Records returns the persisted form of every manager job, sorted by id.
func (m *Manager) Records() []*JobRecord {
	out := make([]*JobRecord, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, toRecord(j))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Restore rebuilds jobs from records into an empty manager.
//   - Jobs that were worked are given back, since their workers are gone
//   - Worked jobs that were already canceled are dropped
//   - Promoted jobs that were not component-missing return to the available index
//   - Everything else returns to the pending queue
//
// The simulation's job-id counter resumes above the highest restored id.
func (m *Manager) Restore(records []*JobRecord) error {
	if len(m.jobs) > 0 {
		return fmt.Errorf("restore into a manager that already holds %d jobs", len(m.jobs))
	}
	if err := m.validateRestore(records); err != nil {
		return err
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		m.sim.reserveJobIDs(rec.ID)
		if rec.Worked && rec.Canceled {
			m.logger.Debug("Restore: dropping canceled job", "jobID", rec.ID)
			continue
		}

		j := fromRecord(rec)
		m.refreshWorkPositions(j)
		m.jobs[j.ID] = j
		m.byPos[j.Pos] = j.ID
		m.world.SetJobMarker(j.Pos, j.ID)
		if !j.NoMarker {
			m.markers.ShowJobMarker(j.Pos, j.Type, MarkerIdle)
		}

		switch {
		case rec.Worked:
			j.Release()
			j.Aborted = true
			j.ComponentMissing = true
			m.enqueue(j)
		case rec.Promoted && !rec.ComponentMissing:
			m.promote(j)
		default:
			m.enqueue(j)
		}
	}
	m.logger.Debug("Restore", "jobs", len(m.jobs), "pending", m.pendingCount, "available", m.available.size)
	return nil
}

// validateRestore checks the whole batch before Restore touches the manager,
// so a bad record leaves it empty.
func (m *Manager) validateRestore(records []*JobRecord) error {
	ids := make(map[uint]struct{}, len(records))
	positions := make(map[Position]uint, len(records))
	for idx, rec := range records {
		if rec == nil {
			continue
		}
		if rec.ID == 0 {
			return fmt.Errorf("record at index %d is missing ID", idx)
		}
		if _, exists := ids[rec.ID]; exists {
			return fmt.Errorf("duplicate job ID %d in batch", rec.ID)
		}
		ids[rec.ID] = struct{}{}
		if _, ok := m.catalog.JobType(rec.Type); !ok {
			return fmt.Errorf("%w: %s (job %d)", ErrUnknownJobType, rec.Type, rec.ID)
		}
		if rec.Worked && rec.Canceled {
			continue
		}
		if id, taken := positions[rec.Pos]; taken {
			return fmt.Errorf("jobs %d and %d share position %v", id, rec.ID, rec.Pos)
		}
		positions[rec.Pos] = rec.ID
	}
	return nil
}

// Save writes every manager job to the backend and deletes stored jobs that
// no longer exist.
func (m *Manager) Save(ctx context.Context, backend Backend) error {
	stored, err := backend.LoadJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored jobs: %w", err)
	}
	var stale []uint
	for _, rec := range stored {
		if _, ok := m.jobs[rec.ID]; !ok {
			stale = append(stale, rec.ID)
		}
	}
	if len(stale) > 0 {
		if err := backend.DeleteJobs(ctx, stale); err != nil {
			return fmt.Errorf("failed to delete stale jobs: %w", err)
		}
	}
	if err := backend.SaveJobs(ctx, m.Records()); err != nil {
		return fmt.Errorf("failed to save jobs: %w", err)
	}
	m.logger.Debug("Save", "jobs", len(m.jobs), "deleted", len(stale))
	return nil
}

// Load restores the manager from the backend.
func (m *Manager) Load(ctx context.Context, backend Backend) error {
	records, err := backend.LoadJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load jobs: %w", err)
	}
	return m.Restore(records)
}

func toRecord(j *Job) *JobRecord {
	cp := cloneJob(j)
	return &JobRecord{
		ID:               cp.ID,
		Type:             cp.Type,
		Skill:            cp.Skill,
		Tool:             cp.Tool,
		Pos:              cp.Pos,
		Rotation:         cp.Rotation,
		Priority:         cp.Priority,
		Subject:          cp.Subject,
		Item:             cp.Item,
		Materials:        cp.Materials,
		Amount:           cp.Amount,
		Craft:            cp.Craft,
		RequiredItems:    cp.RequiredItems,
		Worked:           cp.Worked,
		WorkedBy:         cp.WorkedBy,
		Canceled:         cp.Canceled,
		ComponentMissing: cp.ComponentMissing,
		NoMarker:         cp.NoMarker,
		DestroyOnAbort:   cp.DestroyOnAbort,
		Promoted:         j.promoted,
		Aborted:          cp.Aborted,
	}
}

func fromRecord(rec *JobRecord) *Job {
	j := &Job{
		ID:               rec.ID,
		Type:             rec.Type,
		Skill:            rec.Skill,
		Tool:             rec.Tool,
		Pos:              rec.Pos,
		Rotation:         rec.Rotation,
		Subject:          rec.Subject,
		Item:             rec.Item,
		Materials:        rec.Materials,
		Amount:           rec.Amount,
		Craft:            rec.Craft,
		RequiredItems:    rec.RequiredItems,
		Worked:           rec.Worked,
		WorkedBy:         rec.WorkedBy,
		Canceled:         rec.Canceled,
		ComponentMissing: rec.ComponentMissing,
		NoMarker:         rec.NoMarker,
		DestroyOnAbort:   rec.DestroyOnAbort,
		Aborted:          rec.Aborted,
	}
	j.SetPriority(rec.Priority)
	return cloneJob(j)
}

// cloneRecord returns a deep copy of a record.
func cloneRecord(rec *JobRecord) *JobRecord {
	if rec == nil {
		return nil
	}
	cp := *rec
	if rec.Tool != nil {
		tool := *rec.Tool
		cp.Tool = &tool
	}
	cp.Materials = append([]string(nil), rec.Materials...)
	if rec.RequiredItems != nil {
		cp.RequiredItems = make([]RequiredItem, len(rec.RequiredItems))
		for i, ri := range rec.RequiredItems {
			ri.MaterialTypes = append([]string(nil), ri.MaterialTypes...)
			cp.RequiredItems[i] = ri
		}
	}
	return &cp
}
