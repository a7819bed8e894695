// Package producer holds the subsystems that own jobs outside the central
// job board: stockpiles, farms and groves and pastures, workshops,
// mechanisms, automatons and rooms. Each one implements jobboard.Producer
// so the board can fan worker requests out to it.
package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// pool is the job store every producer embeds. Jobs are handed out in
// insertion order.
type pool struct {
	name   string
	sim    *jobboard.SimContext
	logger *slog.Logger
	jobs   map[uint]*jobboard.Job
	order  []uint
}

func newPool(name string, sim *jobboard.SimContext, logger *slog.Logger) pool {
	if logger == nil {
		logger = slog.Default()
	}
	return pool{
		name:   name,
		sim:    sim,
		logger: logger.With("producer", name),
		jobs:   make(map[uint]*jobboard.Job),
	}
}

// Name identifies the producer in logs.
func (p *pool) Name() string { return p.name }

// Job returns the producer's job, or nil.
func (p *pool) Job(jobID uint) *jobboard.Job { return p.jobs[jobID] }

// HasJobID reports whether the producer owns the id.
func (p *pool) HasJobID(jobID uint) bool {
	_, ok := p.jobs[jobID]
	return ok
}

// Len returns the number of jobs the producer holds.
func (p *pool) Len() int { return len(p.jobs) }

func (p *pool) add(j *jobboard.Job) uint {
	j.ID = p.sim.NextJobID()
	p.jobs[j.ID] = j
	p.order = append(p.order, j.ID)
	p.logger.Debug("AddJob", "jobID", j.ID, "type", j.Type, "pos", j.Pos)
	return j.ID
}

// claim hands the first free job with the skill that passes ok to the worker.
func (p *pool) claim(workerID uint, skill string, ok func(*jobboard.Job) bool) uint {
	for _, id := range p.order {
		j := p.jobs[id]
		if j.Worked || j.Canceled || j.Skill != skill {
			continue
		}
		if ok != nil && !ok(j) {
			continue
		}
		j.Claim(workerID)
		p.logger.Debug("GetJob", "jobID", id, "type", j.Type, "workerID", workerID)
		return id
	}
	return 0
}

func (p *pool) remove(jobID uint) *jobboard.Job {
	j, ok := p.jobs[jobID]
	if !ok {
		return nil
	}
	delete(p.jobs, jobID)
	for i, id := range p.order {
		if id == jobID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return j
}

// finish removes a completed job and passes it to done.
func (p *pool) finish(jobID uint, done func(*jobboard.Job)) bool {
	j := p.remove(jobID)
	if j == nil {
		return false
	}
	if done != nil {
		done(j)
	}
	p.logger.Debug("FinishJob", "jobID", jobID, "type", j.Type)
	return true
}

// giveBack releases an interrupted job. Canceled jobs and jobs flagged
// DestroyOnAbort are removed and passed to dropped.
func (p *pool) giveBack(jobID uint, dropped func(*jobboard.Job)) bool {
	j, ok := p.jobs[jobID]
	if !ok {
		return false
	}
	j.Release()
	j.Aborted = true
	if j.Canceled || j.DestroyOnAbort {
		p.remove(jobID)
		if dropped != nil {
			dropped(j)
		}
		p.logger.Debug("GiveBackJob: job deleted", "jobID", jobID, "canceled", j.Canceled)
		return true
	}
	p.logger.Debug("GiveBackJob", "jobID", jobID)
	return true
}

// cancel removes an idle job or flags a worked one. It reports whether the
// job was removed right away.
func (p *pool) cancel(jobID uint) (removed, ok bool) {
	j, exists := p.jobs[jobID]
	if !exists {
		return false, false
	}
	if j.Worked {
		j.Canceled = true
		return false, true
	}
	p.remove(jobID)
	return true, true
}
