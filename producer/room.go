package producer

import (
	"log/slog"

	"github.com/VsevolodSauta/jobboard"
)

// SkillAlarm is the skill for ringing alarm bells.
const SkillAlarm = "Alarm"

// JobTypeRingBell is the job type of an alarm bell.
const JobTypeRingBell = "RingBell"

// Room is a designated room with an alarm bell.
type Room struct {
	ID   uint
	Bell jobboard.Position

	jobID uint
}

// Rooms produces bell-ringing jobs while the colony alarm is raised.
type Rooms struct {
	pool
	rooms []*Room
}

// NewRooms creates an empty room manager.
func NewRooms(sim *jobboard.SimContext, logger *slog.Logger) *Rooms {
	return &Rooms{pool: newPool("rooms", sim, logger)}
}

// AddRoom registers a room with its bell tile.
func (r *Rooms) AddRoom(bell jobboard.Position) *Room {
	room := &Room{ID: uint(len(r.rooms) + 1), Bell: bell}
	r.rooms = append(r.rooms, room)
	return room
}

// Tick keeps one bell job per room while the alarm is raised and cancels
// them once it is reset. It returns the number of jobs created.
func (r *Rooms) Tick() int {
	alarm := r.sim.AlarmRaised()
	created := 0
	for _, room := range r.rooms {
		switch {
		case alarm && room.jobID == 0:
			room.jobID = r.add(&jobboard.Job{
				Type:    JobTypeRingBell,
				Skill:   SkillAlarm,
				Pos:     room.Bell,
				Subject: jobboard.Container(room.ID),
			})
			created++
		case !alarm && room.jobID != 0:
			if removed, _ := r.cancel(room.jobID); removed {
				room.jobID = 0
			}
		}
	}
	return created
}

// GetJob hands out a bell job.
func (r *Rooms) GetJob(workerID uint, skill string) uint {
	if skill != SkillAlarm {
		return 0
	}
	return r.claim(workerID, skill, nil)
}

// FinishJob frees the room for the next ring.
func (r *Rooms) FinishJob(jobID uint) bool {
	return r.finish(jobID, r.detach)
}

// GiveBackJob releases the job; a bell job canceled by an alarm reset is
// dropped.
func (r *Rooms) GiveBackJob(jobID uint) bool {
	return r.giveBack(jobID, r.detach)
}

func (r *Rooms) detach(j *jobboard.Job) {
	for _, room := range r.rooms {
		if room.jobID == j.ID {
			room.jobID = 0
		}
	}
}
