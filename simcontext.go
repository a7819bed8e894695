package jobboard

import "time"

// SimContext carries the simulation-wide state the scheduler reads and
// writes. It is passed explicitly so independent simulations (and tests) do
// not share globals.
type SimContext struct {
	tick      uint64
	lastJobID uint
	alarm     bool

	// Clock measures the onTick time box. Defaults to time.Now.
	Clock func() time.Time
}

// NewSimContext creates a context at tick 0.
func NewSimContext() *SimContext {
	return &SimContext{Clock: time.Now}
}

// Tick returns the current simulation tick.
func (s *SimContext) Tick() uint64 { return s.tick }

// Advance moves the simulation forward one tick and returns the new tick.
func (s *SimContext) Advance() uint64 {
	s.tick++
	return s.tick
}

// NextJobID returns a fresh job id. Ids are never 0 and never reused.
func (s *SimContext) NextJobID() uint {
	s.lastJobID++
	return s.lastJobID
}

// reserveJobIDs makes sure future ids are above id.
func (s *SimContext) reserveJobIDs(id uint) {
	if id > s.lastJobID {
		s.lastJobID = id
	}
}

// RaiseAlarm sets the colony alarm.
func (s *SimContext) RaiseAlarm() { s.alarm = true }

// ResetAlarm clears the colony alarm.
func (s *SimContext) ResetAlarm() { s.alarm = false }

// AlarmRaised reports whether the alarm is set.
func (s *SimContext) AlarmRaised() bool { return s.alarm }

func (s *SimContext) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
