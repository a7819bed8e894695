package jobboard

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/metric"
)

// Manager is the central clearinghouse for tile-anchored jobs. It owns the
// position index (one job per tile), the pending retry queue and the
// per-type/per-priority available index, and dispatches worker requests to
// itself and to registered producers.
//
// A Manager is owned by the simulation goroutine and is not safe for
// concurrent use. Readers on other goroutines use Snapshot and SnapshotFeed.
type Manager struct {
	catalog   *Catalog
	world     World
	inventory Inventory
	sim       *SimContext
	config    *Config
	logger    *slog.Logger
	markers   MarkerSink
	crafter   CraftRequester
	metrics   *instruments
	routes    routes

	jobs         map[uint]*Job
	byPos        map[Position]uint
	available    availableIndex
	pending      pendingQueue
	pendingCount int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithConfig sets the configuration. Defaults to DefaultConfig().
func WithConfig(cfg *Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithMarkers sets the visual feedback sink.
func WithMarkers(markers MarkerSink) Option {
	return func(m *Manager) { m.markers = markers }
}

// WithCraftRequester sets who backfills missing construction components.
func WithCraftRequester(crafter CraftRequester) Option {
	return func(m *Manager) { m.crafter = crafter }
}

// WithMeter sets the OTel meter for lifecycle metrics.
func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) { m.metrics = newInstruments(meter) }
}

// WithRoute asks the given producers first, in order, when a worker with the
// skill requests work.
func WithRoute(skill string, producers ...Producer) Option {
	return func(m *Manager) { m.routes.add(skill, producers...) }
}

// WithFallback asks the given producers for every skill after the routed
// producers and before the manager's own jobs.
func WithFallback(producers ...Producer) Option {
	return func(m *Manager) { m.routes.addFallback(producers...) }
}

// NewManager creates a Manager over the given collaborators.
func NewManager(catalog *Catalog, world World, inventory Inventory, sim *SimContext, opts ...Option) *Manager {
	m := &Manager{
		catalog:   catalog,
		world:     world,
		inventory: inventory,
		sim:       sim,
		config:    DefaultConfig(),
		logger:    slog.Default(),
		markers:   noopMarkers{},
		routes:    newRoutes(),
		jobs:      make(map[uint]*Job),
		byPos:     make(map[Position]uint),
		available: newAvailableIndex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = newInstruments(nil)
	}
	return m
}

// AddRoute registers producers for a skill after construction.
func (m *Manager) AddRoute(skill string, producers ...Producer) {
	m.routes.add(skill, producers...)
}

// AddFallback registers fallback producers after construction.
func (m *Manager) AddFallback(producers ...Producer) {
	m.routes.addFallback(producers...)
}

// SetCraftRequester sets who backfills missing construction components.
func (m *Manager) SetCraftRequester(crafter CraftRequester) {
	m.crafter = crafter
}

// AddJob creates a job of the given type at pos and parks it in the pending
// queue. It returns 0 if the tile already holds a job or the type is unknown.
func (m *Manager) AddJob(jobType string, pos Position, rotation int, noMarker bool) uint {
	if id, taken := m.byPos[pos]; taken {
		m.logger.Warn("AddJob: position already has a job", "type", jobType, "pos", pos, "existingJobID", id)
		return 0
	}
	jt, ok := m.catalog.JobType(jobType)
	if !ok {
		m.logger.Warn("AddJob: unknown job type", "type", jobType, "pos", pos)
		return 0
	}

	j := m.newJob(jt, pos, rotation, noMarker)
	m.insert(j)
	m.logger.Debug("AddJob", "jobID", j.ID, "type", jobType, "pos", pos)
	return j.ID
}

// AddConstructionJob creates a construction-like job whose bill of materials
// is resolved from the catalog for item. materials optionally pins the
// material of each component, in table order. When stock in the world is
// short, the craft requester is asked to backfill. The job stays
// component-missing until a precondition pass finds the items reachable.
func (m *Manager) AddConstructionJob(jobType string, pos Position, item string, materials []string, rotation int, noMarker bool) uint {
	if id, taken := m.byPos[pos]; taken {
		m.logger.Warn("AddConstructionJob: position already has a job", "type", jobType, "pos", pos, "existingJobID", id)
		return 0
	}
	jt, ok := m.catalog.JobType(jobType)
	if !ok {
		m.logger.Warn("AddConstructionJob: unknown job type", "type", jobType, "pos", pos)
		return 0
	}
	comps := m.catalog.Components(jt.Construction, item)
	if len(comps) == 0 {
		m.logger.Warn("AddConstructionJob: no components for item", "type", jobType, "item", item, "construction", jt.Construction)
		return 0
	}

	j := m.newJob(jt, pos, rotation, noMarker)
	j.Item = item
	j.Materials = append([]string(nil), materials...)
	j.ComponentMissing = true
	for i, comp := range comps {
		ri := RequiredItem{
			Count:         comp.Count,
			ItemKind:      comp.Item,
			MaterialTypes: append([]string(nil), comp.MaterialTypes...),
			RequireSame:   comp.RequireSame,
		}
		if i < len(materials) && materials[i] != AnyMaterial {
			ri.MaterialKind = materials[i]
		}
		j.RequiredItems = append(j.RequiredItems, ri)
		m.backfill(ri)
	}

	m.insert(j)
	m.logger.Debug("AddConstructionJob", "jobID", j.ID, "type", jobType, "pos", pos, "item", item, "components", len(j.RequiredItems))
	return j.ID
}

// backfill asks the craft requester for the shortfall of a component.
func (m *Manager) backfill(ri RequiredItem) {
	if m.crafter == nil {
		return
	}
	have := m.stockFor(ri)
	if have >= ri.Count {
		return
	}
	material := ri.MaterialKind
	if material == "" {
		material = AnyMaterial
	}
	queued := m.crafter.RequestCraft(ri.ItemKind, material, ri.Count-have)
	m.logger.Debug("AddConstructionJob: requested backfill", "item", ri.ItemKind, "material", material, "missing", ri.Count-have, "queued", queued)
}

// stockFor counts free units that would satisfy ri, ignoring reachability.
func (m *Manager) stockFor(ri RequiredItem) int {
	counts := m.inventory.MaterialCountsForItem(ri.ItemKind, false)
	if ri.MaterialKind != "" {
		return counts[ri.MaterialKind]
	}
	total, best := 0, 0
	for material, count := range counts {
		if len(ri.MaterialTypes) > 0 && !contains(ri.MaterialTypes, m.inventory.MaterialType(material)) {
			continue
		}
		total += count
		best = max(best, count)
	}
	if ri.RequireSame {
		return best
	}
	return total
}

func (m *Manager) newJob(jt *JobType, pos Position, rotation int, noMarker bool) *Job {
	j := &Job{
		ID:       m.sim.NextJobID(),
		Type:     jt.ID,
		Skill:    jt.Skill,
		Pos:      pos,
		Rotation: rotation,
		NoMarker: noMarker,
	}
	if jt.Tool != nil {
		tool := *jt.Tool
		j.Tool = &tool
	}
	j.PossibleWorkPositions = jt.Positions(pos, rotation)
	return j
}

func (m *Manager) insert(j *Job) {
	m.jobs[j.ID] = j
	m.byPos[j.Pos] = j.ID
	m.enqueue(j)
	m.world.SetJobMarker(j.Pos, j.ID)
	if !j.NoMarker {
		m.markers.ShowJobMarker(j.Pos, j.Type, MarkerIdle)
	}
	m.metrics.count(m.metrics.added, j.Type)
}

// OnTick drains the pending queue within the configured time box. Jobs that
// pass every precondition are promoted to the available index; the others
// are kept, in their original order, behind the jobs this pass did not reach.
// It returns the number of jobs promoted.
func (m *Manager) OnTick() int {
	start := m.sim.now()
	var skipped pendingQueue
	promoted := 0

	for m.pending.len() > 0 {
		e, _ := m.pending.pop()
		j := m.jobs[e.id]
		if !e.live(j) {
			continue
		}
		if j.Worked {
			m.dequeue(j)
			continue
		}

		if reason := m.checkPreconditions(j); reason != SkipReasonNone {
			if reason == SkipReasonMissingItems {
				j.ComponentMissing = true
			}
			skipped.requeue(e)
			m.metrics.count(m.metrics.skipped, j.Type)
			m.logger.Debug("OnTick: job skipped", "jobID", j.ID, "type", j.Type, "reason", reason)
		} else {
			m.dequeue(j)
			m.promote(j)
			promoted++
		}

		if m.sim.now().Sub(start) >= m.config.TickBudget {
			break
		}
	}
	m.pending.appendAll(&skipped)

	m.metrics.recordTick(m.sim.now().Sub(start))
	return promoted
}

func (m *Manager) enqueue(j *Job) {
	if j.queued {
		return
	}
	m.pending.push(j)
	m.pendingCount++
}

func (m *Manager) dequeue(j *Job) {
	if !j.queued {
		return
	}
	j.queued = false
	m.pendingCount--
}

func (m *Manager) promote(j *Job) {
	j.ComponentMissing = false
	if j.promoted {
		return
	}
	j.promoted = true
	m.available.add(j)
	m.metrics.count(m.metrics.promoted, j.Type)
}

func (m *Manager) unpromote(j *Job) {
	if !j.promoted {
		return
	}
	m.available.remove(j)
	j.promoted = false
}

// requeue moves a job from the available index back to the pending queue.
func (m *Manager) requeue(j *Job) {
	m.unpromote(j)
	m.enqueue(j)
}

// GetJob finds work for a worker. For each skill, in order, the producers
// routed for that skill are asked first, then the fallback producers, then
// the manager's own available jobs from priority 9 down to 0. It returns 0
// if nothing matches. GetJob does not claim the job; see SetJobBeingWorked.
func (m *Manager) GetJob(skills []string, workerID uint, workerPos Position) uint {
	for _, skill := range skills {
		for _, p := range m.routes.bySkill[skill] {
			if id := p.GetJob(workerID, skill); id != 0 {
				m.logger.Debug("GetJob: producer job", "jobID", id, "producer", p.Name(), "skill", skill, "workerID", workerID)
				return id
			}
		}
		for _, p := range m.routes.fallback {
			if id := p.GetJob(workerID, skill); id != 0 {
				m.logger.Debug("GetJob: fallback producer job", "jobID", id, "producer", p.Name(), "skill", skill, "workerID", workerID)
				return id
			}
		}
		if id := m.getOwnJob(skill, workerPos); id != 0 {
			m.logger.Debug("GetJob: board job", "jobID", id, "skill", skill, "workerID", workerID)
			return id
		}
	}
	return 0
}

func (m *Manager) getOwnJob(skill string, workerPos Position) uint {
	types := m.catalog.TypesForSkill(skill)
	if len(types) == 0 || m.available.size == 0 {
		return 0
	}
	for prio := MaxPriority; prio >= MinPriority; prio-- {
		for _, jobType := range types {
			ids := m.available.band(jobType, prio)
			if len(ids) == 0 {
				continue
			}
			jt, _ := m.catalog.JobType(jobType)
			var id uint
			if jt.Structural {
				id = m.scanByNeighbors(ids, workerPos)
			} else {
				id = m.scanByDistance(ids, workerPos)
			}
			if id != 0 {
				return id
			}
		}
	}
	return 0
}

// scanByNeighbors tries structural jobs in ascending order of walkable
// neighbors, so digging proceeds from the edges and does not leave isolated
// pockets.
func (m *Manager) scanByNeighbors(ids []uint, workerPos Position) uint {
	type cand struct {
		id        uint
		neighbors int
	}
	cands := make([]cand, 0, len(ids))
	for _, id := range ids {
		if j := m.jobs[id]; j != nil {
			cands = append(cands, cand{id, m.world.WalkableNeighbors(j.Pos)})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].neighbors < cands[b].neighbors })
	for _, c := range cands {
		if m.qualifies(m.jobs[c.id], workerPos) {
			return c.id
		}
	}
	return 0
}

// scanByDistance tries jobs nearest first; an adjacent job is taken without
// building the queue.
func (m *Manager) scanByDistance(ids []uint, workerPos Position) uint {
	pq := make(candidateQueue, 0, len(ids))
	for i, id := range ids {
		j := m.jobs[id]
		if j == nil {
			continue
		}
		d := j.DistSquare(workerPos, m.config.ZWeight)
		if d <= 1 {
			if m.qualifies(j, workerPos) {
				return id
			}
			continue
		}
		pq = append(pq, candidate{id: id, key: d, seq: i})
	}
	heap.Init(&pq)
	for pq.Len() > 0 {
		c := heap.Pop(&pq).(candidate)
		if m.qualifies(m.jobs[c.id], workerPos) {
			return c.id
		}
	}
	return 0
}

// qualifies re-validates an available job at pop time. A job whose tool or
// items vanished, or whose work positions are all blocked, is evicted back
// to the pending queue. A job the worker merely cannot reach stays available
// for other workers.
func (m *Manager) qualifies(j *Job, workerPos Position) bool {
	if j == nil || j.Worked || j.Canceled || j.ComponentMissing || !j.promoted {
		return false
	}
	if reason := m.checkPreconditions(j); reason != SkipReasonNone {
		if reason == SkipReasonMissingItems {
			j.ComponentMissing = true
		}
		m.requeue(j)
		m.logger.Debug("GetJob: evicted job", "jobID", j.ID, "type", j.Type, "reason", reason)
		return false
	}
	wp, ok := m.reachableWorkPosition(j, workerPos)
	if !ok {
		return false
	}
	j.WorkPos = &wp
	return true
}

// SetJobBeingWorked claims a job for a worker and removes it from the
// available index. The busy marker is shown only if the worker carries the
// required tool. Producer-owned ids are accepted as-is because producers
// claim inside their own GetJob.
func (m *Manager) SetJobBeingWorked(jobID, workerID uint, hasTool bool) error {
	j, ok := m.jobs[jobID]
	if !ok {
		if m.routes.owner(jobID) != nil {
			return nil
		}
		return fmt.Errorf("%w: %d", ErrJobNotFound, jobID)
	}
	if j.Worked {
		if j.WorkedBy == workerID {
			return nil
		}
		return fmt.Errorf("%w: job %d is worked by %d", ErrJobClaimed, jobID, j.WorkedBy)
	}
	if !j.promoted {
		return fmt.Errorf("%w: job %d is %s", ErrJobNotAvailable, jobID, j.State())
	}

	m.unpromote(j)
	j.Claim(workerID)
	j.Aborted = false
	if hasTool && !j.NoMarker {
		m.markers.ShowJobMarker(j.Pos, j.Type, MarkerBusy)
	}
	m.metrics.count(m.metrics.claimed, j.Type)
	m.logger.Debug("SetJobBeingWorked", "jobID", jobID, "workerID", workerID, "hasTool", hasTool)
	return nil
}

// FinishJob retires a completed job. Face-connected neighbor jobs waiting in
// the pending queue are re-checked right away and promoted if they now pass.
// It reports whether the job was retired; manager jobs must be claimed first.
func (m *Manager) FinishJob(jobID uint) bool {
	j, ok := m.jobs[jobID]
	if !ok {
		if p := m.routes.owner(jobID); p != nil {
			return p.FinishJob(jobID)
		}
		return false
	}
	if !j.Worked {
		m.logger.Warn("FinishJob: job is not being worked", "jobID", jobID, "state", j.State())
		return false
	}

	m.clearMarkers(j)
	m.remove(j)
	m.metrics.count(m.metrics.finished, j.Type)
	m.logger.Debug("FinishJob", "jobID", jobID, "type", j.Type, "pos", j.Pos)

	for _, npos := range j.Pos.Neighbors() {
		nid, ok := m.byPos[npos]
		if !ok {
			continue
		}
		nj := m.jobs[nid]
		if nj == nil || !nj.queued || nj.Worked || nj.ComponentMissing {
			continue
		}
		if m.checkPreconditions(nj) == SkipReasonNone {
			m.dequeue(nj)
			m.promote(nj)
			m.logger.Debug("FinishJob: promoted neighbor", "jobID", nid, "pos", npos)
		}
	}
	return true
}

// GiveBackJob releases a job whose worker was interrupted. Canceled jobs and
// jobs flagged DestroyOnAbort are deleted; the rest go back to the pending
// queue as component-missing so they must pass the checks again. Calling it
// again on a returned job has no further effect.
func (m *Manager) GiveBackJob(jobID uint) bool {
	j, ok := m.jobs[jobID]
	if !ok {
		if p := m.routes.owner(jobID); p != nil {
			return p.GiveBackJob(jobID)
		}
		return false
	}

	if j.Canceled || j.DestroyOnAbort {
		m.dispose(j)
		m.logger.Debug("GiveBackJob: job deleted", "jobID", jobID, "canceled", j.Canceled)
		return true
	}

	wasWorked := j.Worked
	j.Release()
	j.Aborted = true
	j.PossibleWorkPositions = nil
	j.ComponentMissing = true
	m.requeue(j)
	if wasWorked {
		if !j.NoMarker {
			m.markers.ShowJobMarker(j.Pos, j.Type, MarkerIdle)
		}
		m.metrics.count(m.metrics.returned, j.Type)
		m.logger.Debug("GiveBackJob", "jobID", jobID, "type", j.Type)
	}
	return true
}

// CancelJob cancels the job at pos. A worked job is only flagged; it goes
// away when its worker gives it back. It reports whether a job was found.
func (m *Manager) CancelJob(pos Position) bool {
	id, ok := m.byPos[pos]
	if !ok {
		id, ok = m.world.JobMarker(pos)
	}
	j := m.jobs[id]
	if !ok || j == nil {
		return false
	}

	if j.Worked {
		j.Canceled = true
		m.logger.Debug("CancelJob: flagged worked job", "jobID", id, "workerID", j.WorkedBy)
		return true
	}
	m.dispose(j)
	m.logger.Debug("CancelJob", "jobID", id, "pos", pos)
	return true
}

// dispose deletes a job outright and undoes its side effects.
func (m *Manager) dispose(j *Job) {
	m.clearMarkers(j)
	if jt, ok := m.catalog.JobType(j.Type); ok && jt.ResetsAlarm {
		m.sim.ResetAlarm()
	}
	m.remove(j)
	m.metrics.count(m.metrics.canceled, j.Type)
}

func (m *Manager) clearMarkers(j *Job) {
	if !j.NoMarker {
		m.markers.ClearJobMarker(j.Pos)
	}
	if id, ok := m.world.JobMarker(j.Pos); ok && id == j.ID {
		m.world.SetJobMarker(j.Pos, 0)
	}
}

// remove drops a job from every index.
func (m *Manager) remove(j *Job) {
	m.unpromote(j)
	m.dequeue(j)
	delete(m.jobs, j.ID)
	if m.byPos[j.Pos] == j.ID {
		delete(m.byPos, j.Pos)
	}
}

// RaisePrio moves the job at pos one priority band up.
func (m *Manager) RaisePrio(pos Position) bool {
	return m.shiftPrio(pos, 1)
}

// LowerPrio moves the job at pos one priority band down.
func (m *Manager) LowerPrio(pos Position) bool {
	return m.shiftPrio(pos, -1)
}

func (m *Manager) shiftPrio(pos Position, delta int) bool {
	id, ok := m.byPos[pos]
	if !ok {
		return false
	}
	j := m.jobs[id]
	wasPromoted := j.promoted
	if wasPromoted {
		m.available.remove(j)
	}
	j.SetPriority(j.Priority + delta)
	if wasPromoted {
		m.available.add(j)
	}
	m.logger.Debug("ShiftPrio", "jobID", id, "priority", j.Priority)
	return true
}

// Job returns a job owned by the manager or by a producer, or nil. The job
// is live state: callers read it but change it only through the Manager.
func (m *Manager) Job(jobID uint) *Job {
	if j, ok := m.jobs[jobID]; ok {
		return j
	}
	if p := m.routes.owner(jobID); p != nil {
		return p.Job(jobID)
	}
	return nil
}

// JobAt returns the manager job at pos.
func (m *Manager) JobAt(pos Position) (*Job, bool) {
	id, ok := m.byPos[pos]
	if !ok {
		return nil, false
	}
	return m.jobs[id], true
}

// HasJobID reports whether the manager itself owns the id.
func (m *Manager) HasJobID(jobID uint) bool {
	_, ok := m.jobs[jobID]
	return ok
}

// JobType returns catalog metadata, for workers building task scripts.
func (m *Manager) JobType(jobType string) (*JobType, bool) {
	return m.catalog.JobType(jobType)
}

// Count returns the number of manager jobs.
func (m *Manager) Count() int { return len(m.jobs) }

// PendingCount returns the number of jobs waiting for a precondition pass.
func (m *Manager) PendingCount() int { return m.pendingCount }

// AvailableCount returns the number of jobs in the available index.
func (m *Manager) AvailableCount() int { return m.available.size }

// candidate is a distance-ordered heap entry; seq keeps ties in index order.
type candidate struct {
	id  uint
	key int
	seq int
}

type candidateQueue []candidate

func (pq candidateQueue) Len() int { return len(pq) }

func (pq candidateQueue) Less(i, j int) bool {
	if pq[i].key != pq[j].key {
		return pq[i].key < pq[j].key
	}
	return pq[i].seq < pq[j].seq
}

func (pq candidateQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *candidateQueue) Push(x any) { *pq = append(*pq, x.(candidate)) }

func (pq *candidateQueue) Pop() any {
	old := *pq
	n := len(old)
	c := old[n-1]
	*pq = old[:n-1]
	return c
}
