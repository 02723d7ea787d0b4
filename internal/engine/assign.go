package engine

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"towncrier/internal/catalog"
)

// Generate builds a fresh pending assignment for every occupied
// non-storyteller seat, sampling roles under the script's team-count
// distribution for the current player count. A non-empty seed makes the
// sampling reproducible. Any existing pending assignments are overwritten.
func Generate(r *Room, script *catalog.Script, seed string) error {
	players := seatedPlayers(r)
	if len(players) == 0 {
		return rejectf(KindValidation, "at least one seated player is required")
	}
	if len(script.Roles) < len(players) {
		return rejectf(KindValidation, "script %s has %d roles for %d players", script.ID, len(script.Roles), len(players))
	}

	if seed == "" {
		seed = randomSeed()
	}
	prng := seededRand(seed)

	byTeam := map[string][]*catalog.Role{}
	for i := range script.Roles {
		role := &script.Roles[i]
		byTeam[role.Team] = append(byTeam[role.Team], role)
	}
	// Shuffle buckets in the fixed team order so the same seed always walks
	// the prng identically.
	for _, team := range catalog.TeamDisplayOrder {
		bucket := byTeam[team]
		prng.Shuffle(len(bucket), func(i, j int) { bucket[i], bucket[j] = bucket[j], bucket[i] })
	}

	counts := script.TeamCounts(len(players))
	var selected []*catalog.Role
	for _, team := range catalog.TeamDisplayOrder {
		want := counts[team]
		if want == 0 {
			continue
		}
		bucket := byTeam[team]
		if len(bucket) < want {
			return rejectf(KindValidation, "script %s has only %d %s roles, %d needed", script.ID, len(bucket), team, want)
		}
		selected = append(selected, bucket[:want]...)
		byTeam[team] = bucket[want:]
	}
	if len(selected) < len(players) {
		var leftovers []*catalog.Role
		for _, team := range catalog.TeamDisplayOrder {
			leftovers = append(leftovers, byTeam[team]...)
		}
		need := len(players) - len(selected)
		if len(leftovers) < need {
			return rejectf(KindValidation, "script %s cannot cover %d players", script.ID, len(players))
		}
		prng.Shuffle(len(leftovers), func(i, j int) { leftovers[i], leftovers[j] = leftovers[j], leftovers[i] })
		selected = append(selected, leftovers[:need]...)
	}
	prng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })

	pending := map[int]*Assignment{}
	for i, p := range players {
		pending[p.Seat] = &Assignment{RoleID: selected[i].ID}
	}
	autoFillAttachments(script, pending, prng)

	r.Seed = seed
	r.Pending = pending
	r.log("assignments_generated", map[string]any{"seed": seed, "seats": len(pending)})
	return nil
}

// EditAssignment sets or clears a seat's pending primary role. When the role
// changes, attachment slots are rebuilt from the new role's definition,
// keeping prior selections whose (slot id, index) pair still exists.
func EditAssignment(r *Room, script *catalog.Script, seat int, roleID string) error {
	if r.PlayerBySeat(seat) == nil {
		return rejectf(KindNotFound, "no player at seat %d", seat)
	}
	if roleID == "" {
		delete(r.Pending, seat)
		r.log("assignment_edited", map[string]any{"seat": seat, "role": nil})
		return nil
	}
	role, ok := script.Role(roleID)
	if !ok {
		return rejectf(KindValidation, "unknown role id %q", roleID)
	}

	next := &Assignment{RoleID: role.ID}
	if prev, ok := r.Pending[seat]; ok {
		for _, slot := range role.Slots {
			for index := 0; index < slot.SlotCount(); index++ {
				if att, ok := prev.attachment(slot.ID, index); ok {
					next.Attachments = append(next.Attachments, att)
				}
			}
		}
	}
	next.sortAttachments()
	r.Pending[seat] = next
	r.log("assignment_edited", map[string]any{"seat": seat, "role": roleID})
	return nil
}

// EditAttachment sets one attachment selection on a seat's pending
// assignment. An empty roleID clears the selection. The chosen role must
// satisfy the slot's team filter; duplicate usage across seats is allowed
// here and only surfaces as a usage count until finalize.
func EditAttachment(r *Room, script *catalog.Script, seat int, slotID string, index int, roleID string) error {
	bundle, ok := r.Pending[seat]
	if !ok {
		return rejectf(KindNotFound, "seat %d has no pending assignment", seat)
	}
	role, ok := script.Role(bundle.RoleID)
	if !ok {
		return rejectf(KindValidation, "pending role %q is not in script %s", bundle.RoleID, script.ID)
	}
	slot, ok := role.Slot(slotID)
	if !ok {
		return rejectf(KindValidation, "role %s has no attachment slot %q", role.ID, slotID)
	}
	if index < 0 || index >= slot.SlotCount() {
		return rejectf(KindValidation, "slot %s index %d out of range 0..%d", slotID, index, slot.SlotCount()-1)
	}

	// Validate the replacement fully before touching the bundle; a rejected
	// edit must leave the existing selection in place.
	if roleID != "" {
		attached, ok := script.Role(roleID)
		if !ok {
			return rejectf(KindValidation, "unknown role id %q", roleID)
		}
		if !slot.AllowsTeam(attached.Team) {
			return rejectf(KindValidation, "slot %s only accepts teams %v, %s is %s", slotID, slot.TeamFilter, attached.ID, attached.Team)
		}
	}

	kept := bundle.Attachments[:0]
	for _, att := range bundle.Attachments {
		if att.Slot != slotID || att.Index != index {
			kept = append(kept, att)
		}
	}
	bundle.Attachments = kept
	if roleID != "" {
		bundle.Attachments = append(bundle.Attachments, Attachment{Slot: slotID, Index: index, RoleID: roleID})
	}
	bundle.sortAttachments()
	r.log("attachment_edited", map[string]any{"seat": seat, "slot": slotID, "index": index, "role": roleID})
	return nil
}

// Finalize validates every pending seat and atomically promotes the pending
// map to the active assignment. It fails closed: every violation found is
// reported and nothing changes.
func Finalize(r *Room, script *catalog.Script) error {
	if len(r.Pending) == 0 {
		return rejectf(KindValidation, "no pending assignments to finalize")
	}

	var violations []string
	slotRoleUse := map[string]map[string]int{} // slot id -> attached role id -> uses
	seats := make([]int, 0, len(r.Pending))
	for seat := range r.Pending {
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	for _, seat := range seats {
		bundle := r.Pending[seat]
		if r.PlayerBySeat(seat) == nil {
			violations = append(violations, fmt.Sprintf("seat %d: no player occupies the seat", seat))
			continue
		}
		if bundle.RoleID == "" {
			violations = append(violations, fmt.Sprintf("seat %d: no primary role selected", seat))
			continue
		}
		role, ok := script.Role(bundle.RoleID)
		if !ok {
			violations = append(violations, fmt.Sprintf("seat %d: role %q is not in script %s", seat, bundle.RoleID, script.ID))
			continue
		}
		for _, att := range bundle.Attachments {
			if _, ok := role.Slot(att.Slot); !ok {
				violations = append(violations, fmt.Sprintf("seat %d: role %s does not define slot %s", seat, role.ID, att.Slot))
			}
		}
		for _, slot := range role.Slots {
			seen := map[string]bool{}
			for index := 0; index < slot.SlotCount(); index++ {
				att, ok := bundle.attachment(slot.ID, index)
				if !ok {
					violations = append(violations, fmt.Sprintf("seat %d: slot %s index %d is unfilled", seat, slot.ID, index))
					continue
				}
				attached, ok := script.Role(att.RoleID)
				if !ok {
					violations = append(violations, fmt.Sprintf("seat %d: slot %s references unknown role %q", seat, slot.ID, att.RoleID))
					continue
				}
				if !slot.AllowsTeam(attached.Team) {
					violations = append(violations, fmt.Sprintf("seat %d: slot %s does not accept %s (%s)", seat, slot.ID, attached.ID, attached.Team))
				}
				if !slot.AllowDuplicates {
					if seen[att.RoleID] {
						violations = append(violations, fmt.Sprintf("seat %d: slot %s selects %s twice", seat, slot.ID, att.RoleID))
						continue
					}
					seen[att.RoleID] = true
					if slotRoleUse[slot.ID] == nil {
						slotRoleUse[slot.ID] = map[string]int{}
					}
					slotRoleUse[slot.ID][att.RoleID]++
				}
			}
		}
	}
	// Cross-seat duplicates in slots that forbid them.
	for slotID, uses := range slotRoleUse {
		roleIDs := make([]string, 0, len(uses))
		for roleID := range uses {
			roleIDs = append(roleIDs, roleID)
		}
		sort.Strings(roleIDs)
		for _, roleID := range roleIDs {
			if uses[roleID] > 1 {
				violations = append(violations, fmt.Sprintf("slot %s: role %s is used by %d seats", slotID, roleID, uses[roleID]))
			}
		}
	}
	if len(violations) > 0 {
		return validationErr("assignments are incomplete", violations...)
	}

	for _, p := range r.Players {
		if p.IsHost || p.Seat <= 0 {
			continue
		}
		if bundle, ok := r.Pending[p.Seat]; ok {
			p.RoleID = bundle.RoleID
			p.Attachments = append([]Attachment(nil), bundle.Attachments...)
		} else {
			p.RoleID = ""
			p.Attachments = nil
		}
	}
	r.Pending = map[int]*Assignment{}
	r.log("assignments_finalized", map[string]any{"seed": r.Seed, "seats": len(seats)})
	return nil
}

// AttachmentUsage counts how many pending seats use each role as an
// attachment, for UI duplicate warnings.
func AttachmentUsage(r *Room) map[string]int {
	usage := map[string]int{}
	for _, bundle := range r.Pending {
		for _, att := range bundle.Attachments {
			usage[att.RoleID]++
		}
	}
	return usage
}

func seatedPlayers(r *Room) []*Player {
	var out []*Player
	for _, p := range r.ListPlayers() {
		if !p.IsHost && p.Seat > 0 {
			out = append(out, p)
		}
	}
	return out
}

func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// autoFillAttachments fills every unset slot index from the pool of script
// roles not already used as a primary, honouring team filters and removing
// picks from the pool when the slot forbids duplicates.
func autoFillAttachments(script *catalog.Script, pending map[int]*Assignment, prng *rand.Rand) {
	pool := map[string][]string{}
	primary := map[string]bool{}
	for _, bundle := range pending {
		primary[bundle.RoleID] = true
	}
	for _, role := range script.Roles {
		if !primary[role.ID] {
			pool[role.Team] = append(pool[role.Team], role.ID)
		}
	}
	removeFromPool := func(roleID string) {
		role, ok := script.Role(roleID)
		if !ok {
			return
		}
		bucket := pool[role.Team]
		for i, id := range bucket {
			if id == roleID {
				pool[role.Team] = append(bucket[:i], bucket[i+1:]...)
				return
			}
		}
	}
	// Selections made by hand before generation still consume pool entries.
	for _, bundle := range pending {
		for _, att := range bundle.Attachments {
			removeFromPool(att.RoleID)
		}
	}

	seats := make([]int, 0, len(pending))
	for seat := range pending {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		bundle := pending[seat]
		role, ok := script.Role(bundle.RoleID)
		if !ok {
			continue
		}
		for _, slot := range role.Slots {
			for index := 0; index < slot.SlotCount(); index++ {
				if _, ok := bundle.attachment(slot.ID, index); ok {
					continue
				}
				var candidates []string
				if len(slot.TeamFilter) > 0 {
					for _, team := range slot.TeamFilter {
						candidates = append(candidates, pool[team]...)
					}
				} else {
					for _, team := range catalog.TeamDisplayOrder {
						candidates = append(candidates, pool[team]...)
					}
				}
				if len(candidates) == 0 {
					continue
				}
				pick := candidates[prng.Intn(len(candidates))]
				if !slot.AllowDuplicates {
					removeFromPool(pick)
				}
				bundle.Attachments = append(bundle.Attachments, Attachment{Slot: slot.ID, Index: index, RoleID: pick})
			}
		}
		bundle.sortAttachments()
	}
}
