package engine

import "towncrier/internal/catalog"

// CommandType enumerates the closed set of room commands.
type CommandType string

const (
	CmdUpdateSeat          CommandType = "UpdateSeat"
	CmdGenerateAssignments CommandType = "GenerateAssignments"
	CmdEditAssignment      CommandType = "EditAssignment"
	CmdEditAttachment      CommandType = "EditAttachment"
	CmdFinalizeAssignments CommandType = "FinalizeAssignments"
	CmdChangePhase         CommandType = "ChangePhase"
	CmdResetRoom           CommandType = "ResetRoom"
	CmdSetGameResult       CommandType = "SetGameResult"
	CmdNominate            CommandType = "Nominate"
	CmdStartVote           CommandType = "StartVote"
	CmdRevertNomination    CommandType = "RevertNomination"
	CmdSetManualTotal      CommandType = "SetManualTotal"
	CmdCastVote            CommandType = "CastVote"
	CmdSetPlayerStatus     CommandType = "SetPlayerStatus"
	CmdRecordExecution     CommandType = "RecordExecution"
	CmdSetPlayerNote       CommandType = "SetPlayerNote"
)

// Command is one mutation request against a room. Unused fields stay zero;
// pointer fields distinguish "absent" from a zero value.
type Command struct {
	Type CommandType

	Seat          int
	PlayerID      string
	RoleID        string
	SlotID        string
	SlotIndex     int
	Seed          string
	Phase         Phase
	Result        string
	NomineeSeat   int
	NominatorSeat int
	NominationID  string
	ManualTotal   *int
	Value         bool
	OnBehalfOf    string
	Status        LifeStatus
	ExecutedSeat  *int
	TargetDead    *bool
	Note          string
}

// Apply runs one command against the room on behalf of the calling player.
// It returns the updated slice of state relevant to the command (which may
// be nil) or a structured rejection; rejected commands leave the room
// untouched. Apply must only be called from the room actor's goroutine.
func Apply(r *Room, script *catalog.Script, cmd Command, callerID string) (any, error) {
	caller, ok := r.Players[callerID]
	if !ok {
		return nil, rejectf(KindUnauthorized, "caller is not a member of this room")
	}

	switch cmd.Type {
	case CmdUpdateSeat:
		targetID := cmd.PlayerID
		if targetID == "" {
			targetID = caller.ID
		}
		if !caller.IsHost {
			if targetID != caller.ID {
				return nil, rejectf(KindUnauthorized, "only the host may move other players")
			}
			if r.Phase != PhaseLobby {
				return nil, rejectf(KindInvalidState, "seats may only be changed in the lobby")
			}
		}
		if err := UpdateSeat(r, targetID, cmd.Seat); err != nil {
			return nil, err
		}
		return r.Players[targetID], nil

	case CmdGenerateAssignments:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := Generate(r, script, cmd.Seed); err != nil {
			return nil, err
		}
		return r.Pending, nil

	case CmdEditAssignment:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := EditAssignment(r, script, cmd.Seat, cmd.RoleID); err != nil {
			return nil, err
		}
		return r.Pending[cmd.Seat], nil

	case CmdEditAttachment:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := EditAttachment(r, script, cmd.Seat, cmd.SlotID, cmd.SlotIndex, cmd.RoleID); err != nil {
			return nil, err
		}
		return r.Pending[cmd.Seat], nil

	case CmdFinalizeAssignments:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := Finalize(r, script); err != nil {
			return nil, err
		}
		return nil, nil

	case CmdChangePhase:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := ChangePhase(r, cmd.Phase); err != nil {
			return nil, err
		}
		return r.Phase, nil

	case CmdResetRoom:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		ResetRoom(r)
		return nil, nil

	case CmdSetGameResult:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := SetGameResult(r, script, cmd.Result); err != nil {
			return nil, err
		}
		return r.GameResult, nil

	case CmdNominate:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return Nominate(r, cmd.NomineeSeat, cmd.NominatorSeat)

	case CmdStartVote:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return StartVote(r, cmd.NominationID)

	case CmdRevertNomination:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return nil, RevertNomination(r, cmd.NominationID)

	case CmdSetManualTotal:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return nil, SetManualTotal(r, cmd.NominationID, cmd.ManualTotal)

	case CmdCastVote:
		voterID := caller.ID
		if cmd.OnBehalfOf != "" && cmd.OnBehalfOf != caller.ID {
			if !caller.IsHost {
				return nil, rejectf(KindUnauthorized, "only the host may vote on another player's behalf")
			}
			voterID = cmd.OnBehalfOf
		}
		if err := CastVote(r, voterID, cmd.Value); err != nil {
			return nil, err
		}
		return r.Session, nil

	case CmdSetPlayerStatus:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		if err := SetPlayerStatus(r, cmd.PlayerID, cmd.Status); err != nil {
			return nil, err
		}
		return r.Players[cmd.PlayerID], nil

	case CmdRecordExecution:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return RecordExecution(r, cmd.NominationID, cmd.ExecutedSeat, cmd.TargetDead)

	case CmdSetPlayerNote:
		if err := requireHost(caller); err != nil {
			return nil, err
		}
		return nil, SetPlayerNote(r, cmd.PlayerID, cmd.Note)

	default:
		return nil, rejectf(KindValidation, "unsupported command type %q", cmd.Type)
	}
}

func requireHost(caller *Player) error {
	if !caller.IsHost {
		return rejectf(KindUnauthorized, "only the host may issue this command")
	}
	return nil
}
