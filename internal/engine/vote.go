package engine

import (
	"time"

	"github.com/google/uuid"
)

// Nominate records an accusation for the current day. Only one nomination
// may be mid-vote at a time; beyond that, any number of unvoted nominations
// may coexist on the same day.
func Nominate(r *Room, nomineeSeat, nominatorSeat int) (*Nomination, error) {
	if r.Session != nil && !r.Session.Finished {
		return nil, rejectf(KindInvalidState, "a vote is already in progress")
	}
	if r.PlayerBySeat(nomineeSeat) == nil {
		return nil, rejectf(KindNotFound, "no player at nominee seat %d", nomineeSeat)
	}
	if r.PlayerBySeat(nominatorSeat) == nil {
		return nil, rejectf(KindNotFound, "no player at nominator seat %d", nominatorSeat)
	}
	nom := &Nomination{
		ID:            uuid.NewString(),
		Day:           r.Day,
		NomineeSeat:   nomineeSeat,
		NominatorSeat: nominatorSeat,
		CreatedAt:     time.Now(),
	}
	r.Nominations = append(r.Nominations, nom)
	// A finished session from an earlier nomination is spent; drop it.
	r.Session = nil
	r.log("nominated", map[string]any{"nominee": nomineeSeat, "by": nominatorSeat, "day": r.Day})
	return nom, nil
}

// StartVote opens the voting session for a nomination. Voter order is every
// occupied non-storyteller seat ascending; voters without a current voting
// right are auto-recorded as no and skipped. An order with no eligible voter
// finishes the session immediately.
func StartVote(r *Room, nominationID string) (*VoteSession, error) {
	nom := r.NominationByID(nominationID)
	if nom == nil {
		return nil, rejectf(KindNotFound, "unknown nomination %s", nominationID)
	}
	if nom.Day != r.Day {
		return nil, rejectf(KindInvalidState, "nomination belongs to day %d, not the current day", nom.Day)
	}
	if nom.VoteStarted {
		return nil, rejectf(KindInvalidState, "voting already started for this nomination")
	}
	if r.Session != nil && !r.Session.Finished {
		return nil, rejectf(KindInvalidState, "another vote is already in progress")
	}

	var order []string
	for _, p := range seatedPlayers(r) {
		order = append(order, p.ID)
	}
	session := &VoteSession{
		NominationID: nominationID,
		Order:        order,
		Votes:        map[string]bool{},
	}
	nom.VoteStarted = true
	nom.VoteCompleted = false
	r.Session = session
	// A restarted vote discards any ballots from a reverted earlier run.
	r.Votes = filterVotes(r.Votes, nominationID)
	advanceSession(r, nom)
	r.log("vote_started", map[string]any{"nomination_id": nominationID, "voters": len(order)})
	return session, nil
}

// CastVote records the ballot of the player whose turn it is and advances
// the session, consuming the voter's ghost vote when a dead voter votes yes.
func CastVote(r *Room, playerID string, value bool) error {
	session := r.Session
	if session == nil {
		return rejectf(KindInvalidState, "no vote is in progress")
	}
	if session.Finished {
		return rejectf(KindInvalidState, "the vote has already finished")
	}
	nom := r.NominationByID(session.NominationID)
	if nom == nil {
		return rejectf(KindNotFound, "vote session references unknown nomination %s", session.NominationID)
	}
	if session.CurrentPlayerID() != playerID {
		return rejectf(KindInvalidState, "it is not this player's turn to vote")
	}
	player, ok := r.Players[playerID]
	if !ok {
		return rejectf(KindNotFound, "unknown player %s", playerID)
	}
	if value && !player.CanVote() {
		return rejectf(KindInvalidState, "player has no voting right for a yes ballot")
	}
	applyVote(r, nom, session, player, value, false)
	advanceSession(r, nom)
	return nil
}

// RevertNomination clears a nomination's vote progress before its day ends.
// The nomination itself stays on record with vote flags and ballots cleared,
// so it no longer counts toward execution resolution; the active session is
// discarded if it belonged to this nomination.
func RevertNomination(r *Room, nominationID string) error {
	nom := r.NominationByID(nominationID)
	if nom == nil {
		return rejectf(KindNotFound, "unknown nomination %s", nominationID)
	}
	if nom.Day != r.Day {
		return rejectf(KindInvalidState, "nomination belongs to day %d, not the current day", nom.Day)
	}
	nom.VoteStarted = false
	nom.VoteCompleted = false
	nom.ManualTotal = nil
	r.Votes = filterVotes(r.Votes, nominationID)
	if r.Session != nil && r.Session.NominationID == nominationID {
		r.Session = nil
	}
	r.log("nomination_reverted", map[string]any{"nomination_id": nominationID})
	return nil
}

// SetManualTotal overrides the nomination's effective vote total. Any
// non-negative integer is accepted, including one below the recorded yes
// count; nil restores the recorded count.
func SetManualTotal(r *Room, nominationID string, total *int) error {
	nom := r.NominationByID(nominationID)
	if nom == nil {
		return rejectf(KindNotFound, "unknown nomination %s", nominationID)
	}
	if total != nil && *total < 0 {
		return rejectf(KindValidation, "manual total must not be negative")
	}
	nom.ManualTotal = total
	payload := map[string]any{"nomination_id": nominationID}
	if total != nil {
		payload["total"] = *total
	}
	r.log("nomination_total_updated", payload)
	return nil
}

// YesVotes counts the recorded yes ballots for a nomination.
func YesVotes(r *Room, nominationID string) int {
	count := 0
	for _, v := range r.Votes {
		if v.NominationID == nominationID && v.Value {
			count++
		}
	}
	return count
}

// EffectiveTotal is the manual override when set, else the yes-ballot count.
func EffectiveTotal(r *Room, nom *Nomination) int {
	if nom.ManualTotal != nil {
		return *nom.ManualTotal
	}
	return YesVotes(r, nom.ID)
}

func filterVotes(votes []*Vote, nominationID string) []*Vote {
	kept := votes[:0]
	for _, v := range votes {
		if v.NominationID != nominationID {
			kept = append(kept, v)
		}
	}
	return kept
}

func applyVote(r *Room, nom *Nomination, session *VoteSession, player *Player, value, auto bool) {
	r.Votes = append(r.Votes, &Vote{
		NominationID: nom.ID,
		Day:          r.Day,
		VoterSeat:    player.Seat,
		PlayerID:     player.ID,
		Value:        value,
		Auto:         auto,
		CastAt:       time.Now(),
	})
	session.Votes[player.ID] = value
	session.Current++
	if value {
		switch player.LifeStatus {
		case StatusDeadVote:
			player.GhostVoteUsed = true
			player.LifeStatus = StatusDeadNoVote
		case StatusFakeDeadVote:
			player.GhostVoteUsed = true
			player.LifeStatus = StatusFakeDeadNoVote
		}
	}
	if session.Current >= len(session.Order) {
		session.Finished = true
		nom.VoteCompleted = true
	}
	r.log("vote_cast", map[string]any{
		"nomination_id": nom.ID,
		"voter":         player.Seat,
		"value":         value,
		"auto":          auto,
	})
}

// advanceSession fast-forwards over voters with no voting right, recording
// an automatic no for each, and finishes the session when the order runs out.
func advanceSession(r *Room, nom *Nomination) {
	session := r.Session
	if session == nil || session.Finished {
		return
	}
	for {
		currentID := session.CurrentPlayerID()
		if currentID == "" {
			session.Finished = true
			nom.VoteCompleted = true
			return
		}
		player, ok := r.Players[currentID]
		if !ok {
			// Voter left the room mid-vote; skip them.
			session.Votes[currentID] = false
			session.Current++
			continue
		}
		if player.CanVote() {
			return
		}
		applyVote(r, nom, session, player, false, true)
		if session.Finished {
			return
		}
	}
}
