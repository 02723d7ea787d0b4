package engine

import "towncrier/internal/catalog"

// UpdateSeat moves a player to a seat. Seat collisions are permitted and
// surface as conflict flags in the projection rather than blocking play.
func UpdateSeat(r *Room, playerID string, seat int) error {
	if seat < 0 {
		return rejectf(KindValidation, "seat must not be negative")
	}
	player, ok := r.Players[playerID]
	if !ok {
		return rejectf(KindNotFound, "unknown player %s", playerID)
	}
	player.Seat = seat
	r.log("seat_changed", map[string]any{"player": player.Name, "seat": seat})
	return nil
}

// SetPlayerStatus sets a player's life status. Entering a *_vote state
// restores the ghost vote; a *_no_vote state marks it spent.
func SetPlayerStatus(r *Room, playerID string, status LifeStatus) error {
	if !ValidLifeStatus(status) {
		return rejectf(KindValidation, "unknown life status %q", status)
	}
	player, ok := r.Players[playerID]
	if !ok {
		return rejectf(KindNotFound, "unknown player %s", playerID)
	}
	player.LifeStatus = status
	switch status {
	case StatusAlive, StatusFakeDeadVote, StatusDeadVote:
		player.GhostVoteUsed = false
	case StatusFakeDeadNoVote, StatusDeadNoVote:
		player.GhostVoteUsed = true
	}
	r.log("status_changed", map[string]any{"player": player.Name, "status": string(status)})
	return nil
}

// SetPlayerNote stores the storyteller's free-text note on a player.
func SetPlayerNote(r *Room, playerID, note string) error {
	player, ok := r.Players[playerID]
	if !ok {
		return rejectf(KindNotFound, "unknown player %s", playerID)
	}
	player.Note = note
	r.log("player_note_updated", map[string]any{"player": player.Name})
	return nil
}

// SetGameResult sets or clears the room's game result. The storyteller
// result is only available when the script's rules allow it.
func SetGameResult(r *Room, script *catalog.Script, result string) error {
	switch result {
	case "", ResultBlue, ResultRed:
	case ResultStoryteller:
		if !script.Rules.StorytellerWinAvailable {
			return rejectf(KindValidation, "script %s does not allow a storyteller win", script.ID)
		}
	default:
		return rejectf(KindValidation, "unknown game result %q", result)
	}
	r.GameResult = result
	r.log("game_result_set", map[string]any{"result": result})
	return nil
}
