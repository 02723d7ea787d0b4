package engine

import "time"

// Threshold is the minimum effective total a nomination needs to put its
// nominee on the block: strictly more than half the alive players.
func Threshold(alive int) int {
	return alive/2 + 1
}

// BlockResult is the outcome of resolving one day's completed nominations.
type BlockResult struct {
	Day          int
	NominationID string
	Tie          bool
	HasCompleted bool
	Threshold    int
	AliveCount   int
}

// ResolveBlock computes which nomination, if any, is on the block for a day.
// The alive count is snapshotted from the day's first execution record when
// one exists, otherwise taken live. Among completed nominations whose
// effective total meets the threshold, the unique maximum wins; a tie for
// the maximum cancels the execution.
func ResolveBlock(r *Room, day int) BlockResult {
	alive := r.AliveCount()
	for _, rec := range r.Executions {
		if rec.Day == day {
			alive = rec.AliveCount
			break
		}
	}
	result := BlockResult{Day: day, Threshold: Threshold(alive), AliveCount: alive}

	bestID := ""
	bestTotal := -1
	tie := false
	for _, nom := range r.Nominations {
		if nom.Day != day || !nom.VoteCompleted {
			continue
		}
		result.HasCompleted = true
		total := EffectiveTotal(r, nom)
		if total < result.Threshold {
			continue
		}
		switch {
		case bestID == "" || total > bestTotal:
			bestID = nom.ID
			bestTotal = total
			tie = false
		case total == bestTotal:
			tie = true
		}
	}
	if bestID != "" && !tie {
		result.NominationID = bestID
	}
	result.Tie = tie
	return result
}

// RecordExecution appends the day's execution outcome. executedSeat is nil
// for "no execution". When targetDead is set the executed player's life
// status is updated: true kills them (ghost vote retained), false leaves
// them alive despite being on the block.
func RecordExecution(r *Room, nominationID string, executedSeat *int, targetDead *bool) (*ExecutionRecord, error) {
	var nomineeSeat *int
	votesFor := 0
	if nominationID != "" {
		nom := r.NominationByID(nominationID)
		if nom == nil {
			return nil, rejectf(KindNotFound, "unknown nomination %s", nominationID)
		}
		seat := nom.NomineeSeat
		nomineeSeat = &seat
		votesFor = EffectiveTotal(r, nom)
	}
	record := &ExecutionRecord{
		Day:          r.Day,
		NomineeSeat:  nomineeSeat,
		ExecutedSeat: executedSeat,
		VotesFor:     votesFor,
		AliveCount:   r.AliveCount(),
		NominationID: nominationID,
		TargetDead:   targetDead,
		CreatedAt:    time.Now(),
	}
	r.Executions = append(r.Executions, record)

	if targetDead != nil && executedSeat != nil {
		if player := r.PlayerBySeat(*executedSeat); player != nil {
			if *targetDead {
				player.LifeStatus = StatusDeadVote
			}
			// targetDead=false: survived the block (e.g. protection); no change.
		}
	}
	r.log("execution_recorded", map[string]any{
		"nomination_id": nominationID,
		"executed":      executedSeat,
		"votes_for":     votesFor,
		"alive_count":   record.AliveCount,
		"target_dead":   targetDead,
	})
	return record, nil
}
