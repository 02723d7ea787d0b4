package engine

// The phase ring. Forward steps are host-issued; resolve loops back to night
// so day_end is only reached when the host enters it explicitly.
var phaseForward = map[Phase]Phase{
	PhaseLobby:   PhaseNight,
	PhaseNight:   PhaseDay,
	PhaseDay:     PhaseVote,
	PhaseVote:    PhaseResolve,
	PhaseResolve: PhaseNight,
	PhaseDayEnd:  PhaseNight,
}

// Inverse of the forward ring. Lobby is its own predecessor: a room cannot
// back out of the lobby.
var phaseBackward = map[Phase]Phase{
	PhaseLobby:   PhaseLobby,
	PhaseNight:   PhaseResolve,
	PhaseDay:     PhaseNight,
	PhaseVote:    PhaseDay,
	PhaseResolve: PhaseVote,
	PhaseDayEnd:  PhaseResolve,
}

// ValidPhase reports whether p is a member of the phase set.
func ValidPhase(p Phase) bool {
	_, ok := phaseForward[p]
	return ok
}

// NextPhase returns the forward neighbour of p in the ring.
func NextPhase(p Phase) Phase { return phaseForward[p] }

// PrevPhase returns the backward neighbour of p in the ring.
func PrevPhase(p Phase) Phase { return phaseBackward[p] }

// ChangePhase moves the room to target. Only an unknown target is rejected;
// game preconditions are the business of the commands issued within a phase,
// not of the transition itself. Entering night from lobby or resolve bumps
// the night counter; entering day from night bumps the day counter.
func ChangePhase(r *Room, target Phase) error {
	if !ValidPhase(target) {
		return rejectf(KindValidation, "unknown phase %q", target)
	}
	previous := r.Phase
	if target == previous {
		return nil
	}
	switch target {
	case PhaseNight:
		if previous == PhaseLobby || previous == PhaseResolve {
			r.Night++
		}
	case PhaseDay:
		if previous == PhaseNight {
			r.Day++
		}
	}
	r.Phase = target
	r.log("phase_changed", map[string]any{"from": string(previous), "to": string(target), "day": r.Day, "night": r.Night})
	return nil
}

// ResetRoom returns the room to a fresh lobby: counters zeroed, nominations,
// votes, executions, assignments and the game result all cleared, every
// player restored to alive with their ghost vote back.
func ResetRoom(r *Room) {
	r.Phase = PhaseLobby
	r.Day = 0
	r.Night = 0
	r.Seed = ""
	r.GameResult = ""
	r.Nominations = nil
	r.Votes = nil
	r.Session = nil
	r.Executions = nil
	r.Pending = map[int]*Assignment{}
	for _, p := range r.Players {
		p.LifeStatus = StatusAlive
		p.GhostVoteUsed = false
		p.RoleID = ""
		p.Attachments = nil
	}
	r.log("game_reset", map[string]any{})
}
