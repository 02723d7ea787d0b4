package engine

import "testing"

func TestPhaseRing(t *testing.T) {
	cases := []struct {
		from Phase
		next Phase
		prev Phase
	}{
		{PhaseLobby, PhaseNight, PhaseLobby},
		{PhaseNight, PhaseDay, PhaseResolve},
		{PhaseDay, PhaseVote, PhaseNight},
		{PhaseVote, PhaseResolve, PhaseDay},
		{PhaseResolve, PhaseNight, PhaseVote},
		{PhaseDayEnd, PhaseNight, PhaseResolve},
	}
	for _, tc := range cases {
		if got := NextPhase(tc.from); got != tc.next {
			t.Errorf("NextPhase(%s): got %s, want %s", tc.from, got, tc.next)
		}
		if got := PrevPhase(tc.from); got != tc.prev {
			t.Errorf("PrevPhase(%s): got %s, want %s", tc.from, got, tc.prev)
		}
	}
}

func TestChangePhase_CountersAdvanceOnEntry(t *testing.T) {
	r := newTestRoom(5)

	steps := []struct {
		target    Phase
		wantDay   int
		wantNight int
	}{
		{PhaseNight, 0, 1},
		{PhaseDay, 1, 1},
		{PhaseVote, 1, 1},
		{PhaseResolve, 1, 1},
		{PhaseNight, 1, 2},
		{PhaseDay, 2, 2},
	}
	for _, step := range steps {
		if err := ChangePhase(r, step.target); err != nil {
			t.Fatalf("ChangePhase(%s): %v", step.target, err)
		}
		if r.Day != step.wantDay || r.Night != step.wantNight {
			t.Fatalf("after %s: day=%d night=%d, want day=%d night=%d",
				step.target, r.Day, r.Night, step.wantDay, step.wantNight)
		}
	}
}

func TestChangePhase_BackwardDoesNotRewindCounters(t *testing.T) {
	r := newTestRoom(5)
	toDay(t, r)

	if err := ChangePhase(r, PrevPhase(r.Phase)); err != nil {
		t.Fatalf("ChangePhase back: %v", err)
	}
	if r.Phase != PhaseNight {
		t.Fatalf("want night, got %s", r.Phase)
	}
	if r.Day != 1 || r.Night != 1 {
		t.Fatalf("counters rewound: day=%d night=%d", r.Day, r.Night)
	}
	// Re-entering day from night bumps the day again; that is the price of
	// stepping backwards over the night boundary.
	if err := ChangePhase(r, PhaseDay); err != nil {
		t.Fatalf("ChangePhase forward: %v", err)
	}
	if r.Day != 2 {
		t.Fatalf("day: got %d, want 2", r.Day)
	}
}

func TestChangePhase_UnknownPhaseRejected(t *testing.T) {
	r := newTestRoom(2)
	err := ChangePhase(r, Phase("dusk"))
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation reject, got %v", err)
	}
	if r.Phase != PhaseLobby {
		t.Fatalf("phase mutated on reject: %s", r.Phase)
	}
}

func TestChangePhase_SamePhaseIsNoOp(t *testing.T) {
	r := newTestRoom(2)
	toDay(t, r)
	if err := ChangePhase(r, PhaseDay); err != nil {
		t.Fatalf("same-phase change: %v", err)
	}
	if r.Day != 1 {
		t.Fatalf("day bumped by no-op: %d", r.Day)
	}
}

func TestResetRoom_ClearsGameState(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()
	toDay(t, r)

	nom := mustNominate(t, r, 2, 3)
	if _, err := StartVote(r, nom.ID); err != nil {
		t.Fatalf("StartVote: %v", err)
	}
	if err := Generate(r, script, "seed"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	r.PlayerBySeat(1).LifeStatus = StatusDeadNoVote
	r.PlayerBySeat(1).GhostVoteUsed = true
	r.GameResult = ResultBlue

	ResetRoom(r)

	if r.Phase != PhaseLobby || r.Day != 0 || r.Night != 0 {
		t.Fatalf("not back in a fresh lobby: phase=%s day=%d night=%d", r.Phase, r.Day, r.Night)
	}
	if r.Seed != "" || r.GameResult != "" || r.Session != nil {
		t.Fatalf("seed/result/session not cleared")
	}
	if len(r.Nominations) != 0 || len(r.Votes) != 0 || len(r.Executions) != 0 || len(r.Pending) != 0 {
		t.Fatalf("game records not cleared")
	}
	p := r.PlayerBySeat(1)
	if p.LifeStatus != StatusAlive || p.GhostVoteUsed {
		t.Fatalf("player not restored: %+v", p)
	}
}
