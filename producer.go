package jobboard

// Producer is a subsystem that owns its own jobs outside the manager's index
// but exposes the same dispatch contract, so the manager can fan out to it.
type Producer interface {
	// Name identifies the producer in logs.
	Name() string
	// GetJob hands out and claims a job for the worker, or returns 0.
	GetJob(workerID uint, skill string) uint
	// Job returns the producer's job, or nil if it does not own the id.
	Job(jobID uint) *Job
	// FinishJob retires a completed job. It reports whether the id was known.
	FinishJob(jobID uint) bool
	// GiveBackJob releases an interrupted job. It reports whether the id was known.
	GiveBackJob(jobID uint) bool
	// HasJobID reports whether the producer owns the id.
	HasJobID(jobID uint) bool
}

// routes maps skills to the producers that are asked first for that skill.
type routes struct {
	bySkill  map[string][]Producer
	fallback []Producer
	all      []Producer
}

func newRoutes() routes {
	return routes{bySkill: make(map[string][]Producer)}
}

func (r *routes) add(skill string, ps ...Producer) {
	r.bySkill[skill] = append(r.bySkill[skill], ps...)
	r.register(ps...)
}

func (r *routes) addFallback(ps ...Producer) {
	r.fallback = append(r.fallback, ps...)
	r.register(ps...)
}

func (r *routes) register(ps ...Producer) {
	for _, p := range ps {
		known := false
		for _, q := range r.all {
			if q == p {
				known = true
				break
			}
		}
		if !known {
			r.all = append(r.all, p)
		}
	}
}

// owner returns the producer that owns jobID.
func (r *routes) owner(jobID uint) Producer {
	for _, p := range r.all {
		if p.HasJobID(jobID) {
			return p
		}
	}
	return nil
}
