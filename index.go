package jobboard

// idSet is an insertion-ordered set of job ids.
type idSet struct {
	ids []uint
	has map[uint]struct{}
}

func (s *idSet) add(id uint) bool {
	if s.has == nil {
		s.has = make(map[uint]struct{})
	}
	if _, ok := s.has[id]; ok {
		return false
	}
	s.has[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *idSet) remove(id uint) bool {
	if _, ok := s.has[id]; !ok {
		return false
	}
	delete(s.has, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s *idSet) len() int { return len(s.ids) }

// snapshot returns a copy so callers may mutate the set while iterating.
func (s *idSet) snapshot() []uint {
	return append([]uint(nil), s.ids...)
}

// bands holds one idSet per priority level.
type bands [MaxPriority + 1]idSet

// availableIndex maps job type -> priority band -> ids of promoted jobs.
type availableIndex struct {
	byType map[string]*bands
	size   int
}

func newAvailableIndex() availableIndex {
	return availableIndex{byType: make(map[string]*bands)}
}

func (ix *availableIndex) add(j *Job) {
	b, ok := ix.byType[j.Type]
	if !ok {
		b = &bands{}
		ix.byType[j.Type] = b
	}
	if b[j.Priority].add(j.ID) {
		ix.size++
	}
}

func (ix *availableIndex) remove(j *Job) {
	b, ok := ix.byType[j.Type]
	if !ok {
		return
	}
	if b[j.Priority].remove(j.ID) {
		ix.size--
	}
}

// band returns the ids of a job type at one priority.
func (ix *availableIndex) band(jobType string, prio int) []uint {
	b, ok := ix.byType[jobType]
	if !ok || b[prio].len() == 0 {
		return nil
	}
	return b[prio].snapshot()
}

// pendingQueue is the FIFO retry queue. Entries are validated lazily: an
// entry whose job is gone, no longer queued, or was re-queued later (stale
// seq) is dropped when popped.
type pendingQueue struct {
	entries []pendingEntry
	seq     uint64
}

type pendingEntry struct {
	id  uint
	seq uint64
}

// push enqueues the job and stamps it with the entry sequence.
func (q *pendingQueue) push(j *Job) {
	q.seq++
	j.queued = true
	j.queueSeq = q.seq
	q.entries = append(q.entries, pendingEntry{id: j.ID, seq: q.seq})
}

// requeue appends an already stamped entry, keeping its sequence.
func (q *pendingQueue) requeue(e pendingEntry) {
	q.entries = append(q.entries, e)
}

func (q *pendingQueue) pop() (pendingEntry, bool) {
	if len(q.entries) == 0 {
		return pendingEntry{}, false
	}
	e := q.entries[0]
	q.entries[0] = pendingEntry{}
	q.entries = q.entries[1:]
	return e, true
}

func (q *pendingQueue) len() int { return len(q.entries) }

// appendAll moves every entry from other to the back of q, preserving order.
func (q *pendingQueue) appendAll(other *pendingQueue) {
	q.entries = append(q.entries, other.entries...)
	other.entries = nil
}

// live reports whether e still refers to a queued job.
func (e pendingEntry) live(j *Job) bool {
	return j != nil && j.queued && j.queueSeq == e.seq
}
