package engine

import (
	"testing"

	"towncrier/internal/catalog"
)

func TestApply_NonMemberRejected(t *testing.T) {
	r := newTestRoom(3)
	_, err := Apply(r, testScript(), Command{Type: CmdChangePhase, Phase: PhaseNight}, "stranger")
	if !IsKind(err, KindUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestApply_HostOnlyCommands(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()
	player := r.PlayerBySeat(1)

	hostOnly := []Command{
		{Type: CmdGenerateAssignments},
		{Type: CmdEditAssignment, Seat: 1, RoleID: "imp"},
		{Type: CmdEditAttachment, Seat: 1, SlotID: "bluffs", RoleID: "mayor"},
		{Type: CmdFinalizeAssignments},
		{Type: CmdChangePhase, Phase: PhaseNight},
		{Type: CmdResetRoom},
		{Type: CmdSetGameResult, Result: ResultBlue},
		{Type: CmdNominate, NomineeSeat: 1, NominatorSeat: 2},
		{Type: CmdStartVote, NominationID: "x"},
		{Type: CmdRevertNomination, NominationID: "x"},
		{Type: CmdSetManualTotal, NominationID: "x"},
		{Type: CmdSetPlayerStatus, PlayerID: player.ID, Status: StatusDeadVote},
		{Type: CmdRecordExecution},
		{Type: CmdSetPlayerNote, PlayerID: player.ID, Note: "sus"},
	}
	for _, cmd := range hostOnly {
		if _, err := Apply(r, script, cmd, player.ID); !IsKind(err, KindUnauthorized) {
			t.Errorf("%s as player: want unauthorized, got %v", cmd.Type, err)
		}
	}
}

func TestApply_UpdateSeat(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()
	player := r.PlayerBySeat(1)
	other := r.PlayerBySeat(2)

	// A player moves themselves in the lobby.
	if _, err := Apply(r, script, Command{Type: CmdUpdateSeat, Seat: 7}, player.ID); err != nil {
		t.Fatalf("self move in lobby: %v", err)
	}
	if player.Seat != 7 {
		t.Fatalf("seat not applied: %d", player.Seat)
	}

	// But not someone else.
	cmd := Command{Type: CmdUpdateSeat, PlayerID: other.ID, Seat: 8}
	if _, err := Apply(r, script, cmd, player.ID); !IsKind(err, KindUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}

	// And not once the game has started.
	toDay(t, r)
	if _, err := Apply(r, script, Command{Type: CmdUpdateSeat, Seat: 1}, player.ID); !IsKind(err, KindInvalidState) {
		t.Fatalf("want invalid_state, got %v", err)
	}

	// The host may do both at any time.
	if _, err := Apply(r, script, Command{Type: CmdUpdateSeat, PlayerID: player.ID, Seat: 1}, r.HostID); err != nil {
		t.Fatalf("host move: %v", err)
	}
}

func TestApply_CastVoteOnBehalfOf(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()
	toDay(t, r)
	nom := mustNominate(t, r, 2, 3)
	if _, err := StartVote(r, nom.ID); err != nil {
		t.Fatalf("StartVote: %v", err)
	}
	first := r.PlayerBySeat(1)
	second := r.PlayerBySeat(2)

	// A player cannot vote for another player.
	cmd := Command{Type: CmdCastVote, Value: true, OnBehalfOf: first.ID}
	if _, err := Apply(r, script, cmd, second.ID); !IsKind(err, KindUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}

	// The host can.
	if _, err := Apply(r, script, cmd, r.HostID); err != nil {
		t.Fatalf("host proxy vote: %v", err)
	}
	if got := r.Session.CurrentPlayerID(); got != second.ID {
		t.Fatalf("turn did not advance to seat 2")
	}

	// Players vote for themselves without extra fields.
	if _, err := Apply(r, script, Command{Type: CmdCastVote, Value: false}, second.ID); err != nil {
		t.Fatalf("self vote: %v", err)
	}
}

func TestApply_UnknownCommandType(t *testing.T) {
	r := newTestRoom(1)
	_, err := Apply(r, testScript(), Command{Type: "Shrug"}, r.HostID)
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestSetPlayerStatus_GhostVoteTracksStatus(t *testing.T) {
	r := newTestRoom(2)
	p := r.PlayerBySeat(1)

	if err := SetPlayerStatus(r, p.ID, StatusDeadNoVote); err != nil {
		t.Fatalf("SetPlayerStatus: %v", err)
	}
	if !p.GhostVoteUsed {
		t.Fatalf("dead_no_vote should mark the ghost vote spent")
	}
	if err := SetPlayerStatus(r, p.ID, StatusDeadVote); err != nil {
		t.Fatalf("SetPlayerStatus: %v", err)
	}
	if p.GhostVoteUsed {
		t.Fatalf("dead_vote should restore the ghost vote")
	}
	if err := SetPlayerStatus(r, p.ID, "zombie"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestSetGameResult(t *testing.T) {
	r := newTestRoom(2)
	script := testScript()

	if err := SetGameResult(r, script, ResultRed); err != nil {
		t.Fatalf("SetGameResult: %v", err)
	}
	if err := SetGameResult(r, script, ""); err != nil {
		t.Fatalf("clear result: %v", err)
	}
	if err := SetGameResult(r, script, ResultStoryteller); err != nil {
		t.Fatalf("storyteller win allowed by script rules: %v", err)
	}
	if err := SetGameResult(r, script, "purple"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}

	noStoryteller := catalog.NewScript(catalog.Script{
		ID:    "plain",
		Roles: []catalog.Role{{ID: "villager", Team: catalog.TeamTownsfolk}},
	})
	if err := SetGameResult(r, noStoryteller, ResultStoryteller); !IsKind(err, KindValidation) {
		t.Fatalf("want validation without the rule, got %v", err)
	}
}
