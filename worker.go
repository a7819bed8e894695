package jobboard

import (
	"log/slog"
)

// JobSource is the dispatch surface a worker talks to. *Manager satisfies it.
type JobSource interface {
	GetJob(skills []string, workerID uint, workerPos Position) uint
	Job(jobID uint) *Job
	SetJobBeingWorked(jobID, workerID uint, hasTool bool) error
	FinishJob(jobID uint) bool
	GiveBackJob(jobID uint) bool
	JobType(jobType string) (*JobType, bool)
}

// Navigator moves workers one tile at a time. It lives outside the job
// board; tests and examples plug in a straight-line walker.
type Navigator interface {
	// Step returns the next tile on a path from from to to, or false if no
	// path exists.
	Step(from, to Position) (Position, bool)
}

// TaskKind is one step of a worker's job script.
type TaskKind uint8

const (
	// TaskMove walks to Target.
	TaskMove TaskKind = iota
	// TaskWork spends Ticks ticks at the current position.
	TaskWork
)

func (k TaskKind) String() string {
	switch k {
	case TaskMove:
		return "move"
	case TaskWork:
		return "work"
	default:
		return "unknown"
	}
}

// Task is one entry of the worker's FIFO task script.
type Task struct {
	Kind   TaskKind
	Target Position
	Ticks  int
}

// WorkerStatus is the outcome of one worker tick.
type WorkerStatus string

const (
	WorkerIdle        WorkerStatus = "idle"
	WorkerClaimed     WorkerStatus = "claimed"
	WorkerMoving      WorkerStatus = "moving"
	WorkerWorking     WorkerStatus = "working"
	WorkerFinished    WorkerStatus = "finished"
	WorkerInterrupted WorkerStatus = "interrupted"
)

// Worker represents a colonist that pulls jobs from a JobSource and plays
// them out one tick at a time. Whatever ends a job early, the job is given
// back so it can be picked up again.
type Worker struct {
	ID     uint
	Pos    Position
	Skills []string
	Tools  map[string]int // carried tool type -> level

	source JobSource
	nav    Navigator
	logger *slog.Logger

	jobID uint
	tasks []Task
}

// NewWorker creates a new worker.
// source is where the worker gets jobs from, usually a *Manager.
// nav moves the worker between tiles.
// logger may be nil, in which case slog.Default() is used.
func NewWorker(id uint, pos Position, skills []string, source JobSource, nav Navigator, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		ID:     id,
		Pos:    pos,
		Skills: skills,
		Tools:  make(map[string]int),
		source: source,
		nav:    nav,
		logger: logger,
	}
}

// JobID returns the job the worker holds, or 0.
func (w *Worker) JobID() uint { return w.jobID }

// Tasks returns a copy of the remaining task script.
func (w *Worker) Tasks() []Task { return append([]Task(nil), w.tasks...) }

// Tick advances the worker by one simulation tick.
//   - Without a job it asks the source for one and claims it
//   - With a job it runs the head of its task script
//   - When the script is done it finishes the job
//
// A job that was canceled while held is given back at the next tick. A job
// the worker no longer holds, because it vanished or was given back and
// claimed again, is dropped without touching the source.
func (w *Worker) Tick() WorkerStatus {
	if w.jobID == 0 {
		return w.acquire()
	}

	j := w.source.Job(w.jobID)
	if j == nil || !j.Worked || j.WorkedBy != w.ID {
		w.drop("claim lost")
		return WorkerInterrupted
	}
	if j.Canceled {
		w.Interrupt("job canceled")
		return WorkerInterrupted
	}

	if len(w.tasks) == 0 {
		return w.finish()
	}

	task := &w.tasks[0]
	switch task.Kind {
	case TaskMove:
		if w.Pos == task.Target {
			w.tasks = w.tasks[1:]
			return w.Tick()
		}
		next, ok := w.nav.Step(w.Pos, task.Target)
		if !ok {
			w.Interrupt("no path")
			return WorkerInterrupted
		}
		w.Pos = next
		if w.Pos == task.Target {
			w.tasks = w.tasks[1:]
		}
		return WorkerMoving
	case TaskWork:
		task.Ticks--
		if task.Ticks <= 0 {
			w.tasks = w.tasks[1:]
		}
		if len(w.tasks) == 0 {
			return w.finish()
		}
		return WorkerWorking
	default:
		w.Interrupt("unknown task")
		return WorkerInterrupted
	}
}

func (w *Worker) acquire() WorkerStatus {
	id := w.source.GetJob(w.Skills, w.ID, w.Pos)
	if id == 0 {
		return WorkerIdle
	}
	j := w.source.Job(id)
	if j == nil {
		w.logger.Warn("Worker: job vanished after match", "workerID", w.ID, "jobID", id)
		return WorkerIdle
	}
	if err := w.source.SetJobBeingWorked(id, w.ID, w.hasTool(j.Tool)); err != nil {
		w.logger.Warn("Worker: failed to claim job", "workerID", w.ID, "jobID", id, "error", err)
		return WorkerIdle
	}

	w.jobID = id
	w.tasks = w.script(j)
	w.logger.Debug("Worker: claimed job", "workerID", w.ID, "jobID", id, "type", j.Type, "tasks", len(w.tasks))
	return WorkerClaimed
}

// script builds the task FIFO: walk to the chosen work position (or the job
// tile when none was chosen), then work for the type's duration.
func (w *Worker) script(j *Job) []Task {
	target := j.Pos
	if j.WorkPos != nil {
		target = *j.WorkPos
	}
	ticks := 1
	if jt, ok := w.source.JobType(j.Type); ok && jt.DurationTicks > 0 {
		ticks = jt.DurationTicks
	}
	var tasks []Task
	if target != w.Pos {
		tasks = append(tasks, Task{Kind: TaskMove, Target: target})
	}
	return append(tasks, Task{Kind: TaskWork, Target: target, Ticks: ticks})
}

func (w *Worker) finish() WorkerStatus {
	id := w.jobID
	w.jobID, w.tasks = 0, nil
	if !w.source.FinishJob(id) {
		w.logger.Warn("Worker: finish for unknown job", "workerID", w.ID, "jobID", id)
	}
	w.logger.Debug("Worker: finished job", "workerID", w.ID, "jobID", id)
	return WorkerFinished
}

// drop forgets the current job without giving it back.
func (w *Worker) drop(reason string) {
	id := w.jobID
	w.jobID, w.tasks = 0, nil
	w.logger.Debug("Worker: dropped job", "workerID", w.ID, "jobID", id, "reason", reason)
}

func (w *Worker) hasTool(tool *RequiredTool) bool {
	if tool == nil || tool.Type == "" {
		return true
	}
	level, ok := w.Tools[tool.Type]
	return ok && level >= tool.Level
}

// Interrupt drops the current job and gives it back. It is a no-op for an
// idle worker.
func (w *Worker) Interrupt(reason string) {
	if w.jobID == 0 {
		return
	}
	id := w.jobID
	w.jobID, w.tasks = 0, nil
	w.source.GiveBackJob(id)
	w.logger.Debug("Worker: interrupted", "workerID", w.ID, "jobID", id, "reason", reason)
}

// Abandon gives the current job back, e.g. because the worker died or was
// drafted.
func (w *Worker) Abandon() {
	w.Interrupt("abandoned")
}
