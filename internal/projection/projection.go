// Package projection derives the per-viewer view of a room. Project is a
// pure function of (canonical state, viewer identity): the same inputs
// always yield the same snapshot, which is what lets the broadcaster re-send
// snapshots on reconnect without drift.
package projection

import (
	"fmt"
	"sort"
	"time"

	"towncrier/internal/catalog"
	"towncrier/internal/engine"
)

// RoomInfo is the non-secret room summary.
type RoomInfo struct {
	ID         string `json:"id"`
	Phase      string `json:"phase"`
	Day        int    `json:"day"`
	Night      int    `json:"night"`
	ScriptID   string `json:"script_id"`
	JoinCode   string `json:"join_code,omitempty"`
	GameResult string `json:"game_result,omitempty"`
}

// RoleInfo is a role rendered for display.
type RoleInfo struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Localized map[string]string `json:"name_localized,omitempty"`
	Team      string            `json:"team"`
}

// AttachmentView is one filled attachment selection with its resolved role.
type AttachmentView struct {
	Slot      string    `json:"slot"`
	SlotLabel string    `json:"slot_label,omitempty"`
	Index     int       `json:"index"`
	RoleID    string    `json:"role_id"`
	Role      *RoleInfo `json:"role,omitempty"`
}

// PlayerView is one player as the viewer is allowed to see them.
type PlayerView struct {
	ID                 string           `json:"id"`
	Seat               int              `json:"seat"`
	Name               string           `json:"name"`
	Me                 bool             `json:"me"`
	IsHost             bool             `json:"is_host"`
	LifeStatus         string           `json:"life_status,omitempty"`
	VisibleStatus      string           `json:"visible_status"`
	GhostVoteAvailable bool             `json:"ghost_vote_available"`
	SeatConflict       bool             `json:"seat_conflict,omitempty"`
	RoleSecret         *RoleInfo        `json:"role_secret,omitempty"`
	RoleAttachments    []AttachmentView `json:"role_attachments,omitempty"`
	Note               string           `json:"note,omitempty"`
}

// VoteView is one recorded ballot.
type VoteView struct {
	Voter    int    `json:"voter"`
	PlayerID string `json:"player_id"`
	Value    bool   `json:"value"`
	Auto     bool   `json:"auto,omitempty"`
}

// NominationView is one nomination with its ballots.
type NominationView struct {
	ID            string     `json:"id"`
	Day           int        `json:"day"`
	Nominee       int        `json:"nominee"`
	By            int        `json:"by"`
	At            time.Time  `json:"ts"`
	VoteStarted   bool       `json:"vote_started"`
	VoteCompleted bool       `json:"vote_completed"`
	Votes         []VoteView `json:"votes"`
	ManualTotal   *int       `json:"manual_total,omitempty"`
}

// VoteOrderEntry is one voter in the active session's order.
type VoteOrderEntry struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Value    *bool  `json:"value,omitempty"`
	CanVote  bool   `json:"can_vote"`
}

// VoteSessionView is the active voting session.
type VoteSessionView struct {
	NominationID    string           `json:"nomination_id"`
	CurrentPlayerID string           `json:"current_player_id,omitempty"`
	Finished        bool             `json:"finished"`
	Order           []VoteOrderEntry `json:"order"`
}

// ExecutionView is one recorded execution outcome.
type ExecutionView struct {
	Day          int       `json:"day"`
	Nominee      *int      `json:"nominee"`
	Executed     *int      `json:"executed"`
	VotesFor     int       `json:"votes_for"`
	AliveCount   int       `json:"alive_count"`
	NominationID string    `json:"nomination_id,omitempty"`
	TargetDead   *bool     `json:"target_dead,omitempty"`
	At           time.Time `json:"ts"`
}

// BlockView is the resolver outcome for the current day.
type BlockView struct {
	Day          int    `json:"day"`
	NominationID string `json:"nomination_id,omitempty"`
	Tie          bool   `json:"tie"`
	HasCompleted bool   `json:"has_completed"`
	Threshold    int    `json:"threshold"`
	AliveCount   int    `json:"alive_count"`
}

// AssignmentView is one pending assignment, host eyes only.
type AssignmentView struct {
	RoleID      string           `json:"role_id"`
	Role        *RoleInfo        `json:"role,omitempty"`
	Attachments []AttachmentView `json:"attachments"`
}

// PendingMeta summarises the pending map for the host.
type PendingMeta struct {
	TeamCounts      map[string]int `json:"team_counts"`
	AttachmentUsage map[string]int `json:"attachment_usage,omitempty"`
}

// SlotInfo mirrors a catalog attachment slot for clients.
type SlotInfo struct {
	ID              string   `json:"id"`
	Label           string   `json:"label,omitempty"`
	Count           int      `json:"count"`
	TeamFilter      []string `json:"team_filter,omitempty"`
	AllowDuplicates bool     `json:"allow_duplicates,omitempty"`
	OwnerView       string   `json:"owner_view,omitempty"`
}

// ScriptRoleInfo is one catalog role in the script summary.
type ScriptRoleInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Localized   map[string]string `json:"name_localized,omitempty"`
	Team        string            `json:"team"`
	Description string            `json:"description,omitempty"`
	Slots       []SlotInfo        `json:"attachment_slots,omitempty"`
}

// ScriptSummary is the script as shipped in every snapshot.
type ScriptSummary struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Version      string                 `json:"version"`
	TeamCounts   map[string]int         `json:"team_counts"`
	Distribution map[int]map[string]int `json:"team_distribution,omitempty"`
	Roles        []ScriptRoleInfo       `json:"roles"`
}

// Snapshot is the full per-viewer projection of a room.
type Snapshot struct {
	Room        RoomInfo                  `json:"room"`
	Players     []PlayerView              `json:"players"`
	Nominations []NominationView          `json:"nominations"`
	Script      ScriptSummary             `json:"script"`
	Pending     map[string]AssignmentView `json:"pending_assignments,omitempty"`
	PendingMeta *PendingMeta              `json:"pending_assignments_meta,omitempty"`
	VoteSession *VoteSessionView          `json:"vote_session,omitempty"`
	Executions  []ExecutionView           `json:"executions,omitempty"`
	Block       *BlockView                `json:"execution_block,omitempty"`
}

// Viewer identifies who is looking.
type Viewer struct {
	PlayerID string
}

// Project renders the room for one viewer. The host (seat 0) sees all role
// secrets, pending assignments, notes and the join code; a player sees only
// their own secret. Seats, phase, nominations, votes and executions are not
// secret and appear for everyone.
func Project(r *engine.Room, script *catalog.Script, v Viewer) *Snapshot {
	me := r.Players[v.PlayerID]
	isHost := me != nil && me.IsHost

	snap := &Snapshot{
		Room: RoomInfo{
			ID:         r.ID,
			Phase:      string(r.Phase),
			Day:        r.Day,
			Night:      r.Night,
			ScriptID:   r.ScriptID,
			GameResult: r.GameResult,
		},
	}
	if isHost {
		snap.Room.JoinCode = r.JoinCode
	}

	ordered := r.ListPlayers()
	seatCounts := map[int]int{}
	playerCount := 0
	for _, p := range ordered {
		if p.Seat > 0 {
			seatCounts[p.Seat]++
			playerCount++
		}
	}

	for _, p := range ordered {
		view := PlayerView{
			ID:                 p.ID,
			Seat:               p.Seat,
			Name:               p.Name,
			Me:                 me != nil && p.ID == me.ID,
			IsHost:             p.IsHost,
			VisibleStatus:      publicStatus(p),
			GhostVoteAvailable: !p.GhostVoteUsed,
			SeatConflict:       p.Seat > 0 && seatCounts[p.Seat] > 1,
		}
		// The true status is itself a secret: a fake death must look real to
		// everyone but the host and the player living it.
		if isHost || view.Me {
			view.LifeStatus = string(p.LifeStatus)
		}
		if isHost {
			view.Note = p.Note
			view.RoleSecret = roleInfo(script, p.RoleID)
			view.RoleAttachments = attachmentViews(script, p.RoleID, p.Attachments, false)
		} else if view.Me {
			view.RoleSecret = ownerVisibleRole(script, p.RoleID, p.Attachments)
			view.RoleAttachments = attachmentViews(script, p.RoleID, p.Attachments, true)
		}
		snap.Players = append(snap.Players, view)
	}

	votesByNomination := map[string][]VoteView{}
	for _, vote := range r.Votes {
		votesByNomination[vote.NominationID] = append(votesByNomination[vote.NominationID], VoteView{
			Voter:    vote.VoterSeat,
			PlayerID: vote.PlayerID,
			Value:    vote.Value,
			Auto:     vote.Auto,
		})
	}
	for _, nom := range r.Nominations {
		votes := votesByNomination[nom.ID]
		if votes == nil {
			votes = []VoteView{}
		}
		snap.Nominations = append(snap.Nominations, NominationView{
			ID:            nom.ID,
			Day:           nom.Day,
			Nominee:       nom.NomineeSeat,
			By:            nom.NominatorSeat,
			At:            nom.CreatedAt,
			VoteStarted:   nom.VoteStarted,
			VoteCompleted: nom.VoteCompleted,
			Votes:         votes,
			ManualTotal:   nom.ManualTotal,
		})
	}

	if isHost && len(r.Pending) > 0 {
		snap.Pending = map[string]AssignmentView{}
		teamCounts := map[string]int{}
		for seat, bundle := range r.Pending {
			view := AssignmentView{
				RoleID:      bundle.RoleID,
				Role:        roleInfo(script, bundle.RoleID),
				Attachments: attachmentViews(script, bundle.RoleID, bundle.Attachments, false),
			}
			if view.Attachments == nil {
				view.Attachments = []AttachmentView{}
			}
			snap.Pending[fmt.Sprintf("%d", seat)] = view
			if role, ok := script.Role(bundle.RoleID); ok {
				teamCounts[role.Team]++
			}
		}
		snap.PendingMeta = &PendingMeta{
			TeamCounts:      teamCounts,
			AttachmentUsage: engine.AttachmentUsage(r),
		}
	}

	if r.Session != nil {
		session := &VoteSessionView{
			NominationID:    r.Session.NominationID,
			CurrentPlayerID: r.Session.CurrentPlayerID(),
			Finished:        r.Session.Finished,
			Order:           []VoteOrderEntry{},
		}
		for _, playerID := range r.Session.Order {
			entry := VoteOrderEntry{PlayerID: playerID}
			if p, ok := r.Players[playerID]; ok {
				entry.Seat = p.Seat
				entry.Name = p.Name
				entry.CanVote = p.CanVote()
			}
			if value, ok := r.Session.Votes[playerID]; ok {
				v := value
				entry.Value = &v
			}
			session.Order = append(session.Order, entry)
		}
		snap.VoteSession = session
	}

	if len(r.Executions) > 0 {
		executions := append([]*engine.ExecutionRecord(nil), r.Executions...)
		sort.SliceStable(executions, func(i, j int) bool {
			if executions[i].Day != executions[j].Day {
				return executions[i].Day < executions[j].Day
			}
			return executions[i].CreatedAt.Before(executions[j].CreatedAt)
		})
		for _, rec := range executions {
			snap.Executions = append(snap.Executions, ExecutionView{
				Day:          rec.Day,
				Nominee:      rec.NomineeSeat,
				Executed:     rec.ExecutedSeat,
				VotesFor:     rec.VotesFor,
				AliveCount:   rec.AliveCount,
				NominationID: rec.NominationID,
				TargetDead:   rec.TargetDead,
				At:           rec.CreatedAt,
			})
		}
	}

	if r.Day > 0 {
		block := engine.ResolveBlock(r, r.Day)
		snap.Block = &BlockView{
			Day:          block.Day,
			NominationID: block.NominationID,
			Tie:          block.Tie,
			HasCompleted: block.HasCompleted,
			Threshold:    block.Threshold,
			AliveCount:   block.AliveCount,
		}
	}

	snap.Script = scriptSummary(script, playerCount)
	return snap
}

// publicStatus is the status the table sees: fake deaths present as real.
func publicStatus(p *engine.Player) string {
	switch p.LifeStatus {
	case engine.StatusFakeDeadVote:
		return string(engine.StatusDeadVote)
	case engine.StatusFakeDeadNoVote:
		return string(engine.StatusDeadNoVote)
	default:
		return string(p.LifeStatus)
	}
}

func roleInfo(script *catalog.Script, roleID string) *RoleInfo {
	if roleID == "" {
		return nil
	}
	role, ok := script.Role(roleID)
	if !ok {
		return &RoleInfo{ID: roleID, Name: roleID}
	}
	return &RoleInfo{ID: role.ID, Name: role.Name, Localized: role.Localized, Team: role.Team}
}

// ownerVisibleRole applies replace_primary slots: the seat's owner sees the
// attached role as their own (the Drunk must believe their false identity).
func ownerVisibleRole(script *catalog.Script, roleID string, attachments []engine.Attachment) *RoleInfo {
	if roleID == "" {
		return nil
	}
	role, ok := script.Role(roleID)
	if !ok {
		return roleInfo(script, roleID)
	}
	for _, slot := range role.Slots {
		if slot.OwnerView != catalog.OwnerViewReplacePrimary {
			continue
		}
		for _, att := range attachments {
			if att.Slot == slot.ID && att.Index == 0 {
				return roleInfo(script, att.RoleID)
			}
		}
	}
	return roleInfo(script, roleID)
}

// attachmentViews renders attachments sorted by (slot, index). With
// hideOwnerSlots set, replace_primary slots are omitted so the owner cannot
// see through their own disguise.
func attachmentViews(script *catalog.Script, roleID string, attachments []engine.Attachment, hideOwnerSlots bool) []AttachmentView {
	if len(attachments) == 0 {
		return nil
	}
	var role *catalog.Role
	if r, ok := script.Role(roleID); ok {
		role = r
	}
	sorted := append([]engine.Attachment(nil), attachments...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Slot != sorted[j].Slot {
			return sorted[i].Slot < sorted[j].Slot
		}
		return sorted[i].Index < sorted[j].Index
	})
	var out []AttachmentView
	for _, att := range sorted {
		var label string
		if role != nil {
			if slot, ok := role.Slot(att.Slot); ok {
				label = slot.Label
				if hideOwnerSlots && slot.OwnerView == catalog.OwnerViewReplacePrimary {
					continue
				}
			}
		}
		out = append(out, AttachmentView{
			Slot:      att.Slot,
			SlotLabel: label,
			Index:     att.Index,
			RoleID:    att.RoleID,
			Role:      roleInfo(script, att.RoleID),
		})
	}
	return out
}

func scriptSummary(script *catalog.Script, playerCount int) ScriptSummary {
	summary := ScriptSummary{
		ID:           script.ID,
		Name:         script.Name,
		Version:      script.Version,
		TeamCounts:   script.TeamCounts(playerCount),
		Distribution: script.Distribution,
	}
	for _, role := range script.Roles {
		info := ScriptRoleInfo{
			ID:          role.ID,
			Name:        role.Name,
			Localized:   role.Localized,
			Team:        role.Team,
			Description: role.Description,
		}
		for _, slot := range role.Slots {
			info.Slots = append(info.Slots, SlotInfo{
				ID:              slot.ID,
				Label:           slot.Label,
				Count:           slot.SlotCount(),
				TeamFilter:      slot.TeamFilter,
				AllowDuplicates: slot.AllowDuplicates,
				OwnerView:       slot.OwnerView,
			})
		}
		summary.Roles = append(summary.Roles, info)
	}
	return summary
}
