package engine

import (
	"testing"

	"towncrier/internal/catalog"
)

func TestGenerate_MatchesDistribution(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()

	if err := Generate(r, script, "seed-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(r.Pending) != 5 {
		t.Fatalf("pending seats: got %d, want 5", len(r.Pending))
	}

	counts := map[string]int{}
	for _, bundle := range r.Pending {
		role, ok := script.Role(bundle.RoleID)
		if !ok {
			t.Fatalf("pending role %q not in script", bundle.RoleID)
		}
		counts[role.Team]++
	}
	want := map[string]int{catalog.TeamTownsfolk: 3, catalog.TeamMinion: 1, catalog.TeamDemon: 1}
	for team, n := range want {
		if counts[team] != n {
			t.Fatalf("team %s: got %d, want %d (all: %v)", team, counts[team], n, counts)
		}
	}
	if r.Seed != "seed-1" {
		t.Fatalf("seed not recorded: %q", r.Seed)
	}
}

func TestGenerate_SameSeedSameAssignments(t *testing.T) {
	script := testScript()

	first := newTestRoom(5)
	second := newTestRoom(5)
	if err := Generate(first, script, "reproducible"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := Generate(second, script, "reproducible"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for seat, bundle := range first.Pending {
		other, ok := second.Pending[seat]
		if !ok {
			t.Fatalf("seat %d missing from second run", seat)
		}
		if bundle.RoleID != other.RoleID {
			t.Fatalf("seat %d: %q vs %q", seat, bundle.RoleID, other.RoleID)
		}
		if len(bundle.Attachments) != len(other.Attachments) {
			t.Fatalf("seat %d: attachment counts differ", seat)
		}
		for i := range bundle.Attachments {
			if bundle.Attachments[i] != other.Attachments[i] {
				t.Fatalf("seat %d attachment %d: %+v vs %+v", seat, i, bundle.Attachments[i], other.Attachments[i])
			}
		}
	}
}

func TestGenerate_AutoFillsAttachmentSlots(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()

	if err := Generate(r, script, "fill"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for seat, bundle := range r.Pending {
		role, _ := script.Role(bundle.RoleID)
		for _, slot := range role.Slots {
			for index := 0; index < slot.SlotCount(); index++ {
				att, ok := bundle.attachment(slot.ID, index)
				if !ok {
					t.Fatalf("seat %d slot %s index %d unfilled", seat, slot.ID, index)
				}
				attached, ok := script.Role(att.RoleID)
				if !ok {
					t.Fatalf("seat %d: attached role %q unknown", seat, att.RoleID)
				}
				if !slot.AllowsTeam(attached.Team) {
					t.Fatalf("seat %d slot %s: %s violates team filter", seat, slot.ID, attached.ID)
				}
			}
		}
	}
}

func TestGenerate_NoSeatedPlayers(t *testing.T) {
	r := newTestRoom(0)
	err := Generate(r, testScript(), "seed")
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestEditAssignment_RebuildDropsForeignSlots(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()
	if err := Generate(r, script, "edit"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Find the imp's seat and give the role to another seat; its bluff
	// selections cannot carry over to a role without that slot.
	impSeat := -1
	for seat, bundle := range r.Pending {
		if bundle.RoleID == "imp" {
			impSeat = seat
		}
	}
	if impSeat == -1 {
		t.Fatalf("no imp generated")
	}

	if err := EditAssignment(r, script, impSeat, "mayor"); err != nil {
		t.Fatalf("EditAssignment: %v", err)
	}
	if got := len(r.Pending[impSeat].Attachments); got != 0 {
		t.Fatalf("attachments should not survive a role without the slot: %d", got)
	}

	// Restoring the imp leaves the slots empty again.
	if err := EditAssignment(r, script, impSeat, "imp"); err != nil {
		t.Fatalf("EditAssignment back: %v", err)
	}
	if got := len(r.Pending[impSeat].Attachments); got != 0 {
		t.Fatalf("cleared selections reappeared: %d", got)
	}
}

func TestEditAssignment_ClearAndUnknowns(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()

	if err := EditAssignment(r, script, 1, "imp"); err != nil {
		t.Fatalf("EditAssignment: %v", err)
	}
	if err := EditAssignment(r, script, 1, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := r.Pending[1]; ok {
		t.Fatalf("cleared seat still pending")
	}

	if err := EditAssignment(r, script, 9, "imp"); !IsKind(err, KindNotFound) {
		t.Fatalf("want not_found for empty seat, got %v", err)
	}
	if err := EditAssignment(r, script, 1, "werewolf"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation for unknown role, got %v", err)
	}
}

func TestEditAttachment_TeamFilterEnforced(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()
	if err := EditAssignment(r, script, 1, "drunk"); err != nil {
		t.Fatalf("EditAssignment: %v", err)
	}

	// The drunk's false role must be a townsfolk.
	err := EditAttachment(r, script, 1, "false_role", 0, "poisoner")
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}

	if err := EditAttachment(r, script, 1, "false_role", 0, "mayor"); err != nil {
		t.Fatalf("legal attachment rejected: %v", err)
	}
	if err := EditAttachment(r, script, 1, "false_role", 1, "mayor"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation for out-of-range index, got %v", err)
	}
	if err := EditAttachment(r, script, 1, "no_such_slot", 0, "mayor"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation for unknown slot, got %v", err)
	}

	// Clearing the selection leaves the slot unfilled again.
	if err := EditAttachment(r, script, 1, "false_role", 0, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := r.Pending[1].attachment("false_role", 0); ok {
		t.Fatalf("selection not cleared")
	}
}

func TestEditAttachment_RejectionKeepsExistingSelection(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()
	if err := EditAssignment(r, script, 1, "drunk"); err != nil {
		t.Fatalf("EditAssignment: %v", err)
	}
	if err := EditAttachment(r, script, 1, "false_role", 0, "mayor"); err != nil {
		t.Fatalf("EditAttachment: %v", err)
	}

	// Both rejection paths: a role the slot's team filter forbids, and a
	// role id the script does not know.
	if err := EditAttachment(r, script, 1, "false_role", 0, "poisoner"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
	if err := EditAttachment(r, script, 1, "false_role", 0, "nobody"); !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}

	att, ok := r.Pending[1].attachment("false_role", 0)
	if !ok || att.RoleID != "mayor" {
		t.Fatalf("rejected edit disturbed the existing selection: %+v (filled=%v)", att, ok)
	}
}

func TestFinalize_ReportsAllViolationsAndChangesNothing(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()
	if err := Generate(r, script, "violations"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Break things in two places at once.
	impSeat := -1
	for seat, bundle := range r.Pending {
		if bundle.RoleID == "imp" {
			impSeat = seat
			bundle.Attachments = bundle.Attachments[:1] // bluff index 1 unfilled
		}
	}
	if impSeat == -1 {
		t.Fatalf("no imp generated")
	}
	for seat, bundle := range r.Pending {
		if seat != impSeat {
			bundle.RoleID = ""
			break
		}
	}

	err := Finalize(r, script)
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
	violations := ViolationsOf(err)
	if len(violations) < 2 {
		t.Fatalf("want every violation reported, got %v", violations)
	}
	for _, p := range r.Players {
		if p.RoleID != "" || len(p.Attachments) != 0 {
			t.Fatalf("failed finalize mutated player %s", p.Name)
		}
	}
	if len(r.Pending) != 5 {
		t.Fatalf("failed finalize mutated pending map")
	}
}

func TestFinalize_PromotesPendingToPlayers(t *testing.T) {
	r := newTestRoom(5)
	script := testScript()
	if err := Generate(r, script, "promote"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := map[int]string{}
	for seat, bundle := range r.Pending {
		want[seat] = bundle.RoleID
	}

	if err := Finalize(r, script); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for seat, roleID := range want {
		p := r.PlayerBySeat(seat)
		if p.RoleID != roleID {
			t.Fatalf("seat %d: got %q, want %q", seat, p.RoleID, roleID)
		}
	}
	if len(r.Pending) != 0 {
		t.Fatalf("pending map not cleared after finalize")
	}
}

func TestFinalize_CrossSeatDuplicateAttachment(t *testing.T) {
	r := newTestRoom(3)
	script := testScript()

	// Two drunks both believing they are the mayor: the slot forbids
	// cross-seat duplicates.
	for seat := 1; seat <= 2; seat++ {
		if err := EditAssignment(r, script, seat, "drunk"); err != nil {
			t.Fatalf("EditAssignment: %v", err)
		}
		if err := EditAttachment(r, script, seat, "false_role", 0, "mayor"); err != nil {
			t.Fatalf("EditAttachment: %v", err)
		}
	}
	if err := EditAssignment(r, script, 3, "imp"); err != nil {
		t.Fatalf("EditAssignment: %v", err)
	}
	if err := EditAttachment(r, script, 3, "bluffs", 0, "soldier"); err != nil {
		t.Fatalf("EditAttachment: %v", err)
	}
	if err := EditAttachment(r, script, 3, "bluffs", 1, "librarian"); err != nil {
		t.Fatalf("EditAttachment: %v", err)
	}

	err := Finalize(r, script)
	if !IsKind(err, KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestAttachmentUsage(t *testing.T) {
	r := newTestRoom(2)
	script := testScript()
	for seat := 1; seat <= 2; seat++ {
		if err := EditAssignment(r, script, seat, "drunk"); err != nil {
			t.Fatalf("EditAssignment: %v", err)
		}
		if err := EditAttachment(r, script, seat, "false_role", 0, "mayor"); err != nil {
			t.Fatalf("EditAttachment: %v", err)
		}
	}
	usage := AttachmentUsage(r)
	if usage["mayor"] != 2 {
		t.Fatalf("usage: %v", usage)
	}
}
