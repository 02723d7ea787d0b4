package engine

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Phase is the room's position in the day/night cycle.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseNight   Phase = "night"
	PhaseDay     Phase = "day"
	PhaseVote    Phase = "vote"
	PhaseResolve Phase = "resolve"
	PhaseDayEnd  Phase = "day_end"
)

// LifeStatus is a player's (possibly faked) life state. Fake-dead states are
// shown as their dead counterparts to everyone but the host and the player.
type LifeStatus string

const (
	StatusAlive          LifeStatus = "alive"
	StatusFakeDeadVote   LifeStatus = "fake_dead_vote"
	StatusFakeDeadNoVote LifeStatus = "fake_dead_no_vote"
	StatusDeadVote       LifeStatus = "dead_vote"
	StatusDeadNoVote     LifeStatus = "dead_no_vote"
)

// ValidLifeStatus reports whether s is a known life status.
func ValidLifeStatus(s LifeStatus) bool {
	switch s {
	case StatusAlive, StatusFakeDeadVote, StatusFakeDeadNoVote, StatusDeadVote, StatusDeadNoVote:
		return true
	}
	return false
}

// Game results.
const (
	ResultBlue        = "blue"
	ResultRed         = "red"
	ResultStoryteller = "storyteller"
)

// Player is one participant. Seat 0 is the storyteller.
type Player struct {
	ID            string
	Name          string
	Seat          int
	IsHost        bool
	LifeStatus    LifeStatus
	GhostVoteUsed bool
	RoleID        string
	Attachments   []Attachment
	Note          string
	JoinedAt      time.Time
}

// CanVote reports whether the player currently holds a voting right: alive,
// or dead with an unspent ghost vote.
func (p *Player) CanVote() bool {
	switch p.LifeStatus {
	case StatusAlive:
		return true
	case StatusDeadVote, StatusFakeDeadVote:
		return !p.GhostVoteUsed
	default:
		return false
	}
}

// Attachment is one filled attachment-slot selection.
type Attachment struct {
	Slot   string
	Index  int
	RoleID string
}

// Assignment is a role plus its attachment selections for one seat.
type Assignment struct {
	RoleID      string
	Attachments []Attachment
}

func (a *Assignment) attachment(slot string, index int) (Attachment, bool) {
	for _, att := range a.Attachments {
		if att.Slot == slot && att.Index == index {
			return att, true
		}
	}
	return Attachment{}, false
}

func (a *Assignment) sortAttachments() {
	sort.Slice(a.Attachments, func(i, j int) bool {
		if a.Attachments[i].Slot != a.Attachments[j].Slot {
			return a.Attachments[i].Slot < a.Attachments[j].Slot
		}
		return a.Attachments[i].Index < a.Attachments[j].Index
	})
}

// Nomination is one accusation on a given day.
type Nomination struct {
	ID            string
	Day           int
	NomineeSeat   int
	NominatorSeat int
	CreatedAt     time.Time
	VoteStarted   bool
	VoteCompleted bool
	ManualTotal   *int
}

// Vote is one recorded ballot. Auto marks ballots the session filled in for
// voters who had no voting right when their turn came.
type Vote struct {
	NominationID string
	Day          int
	VoterSeat    int
	PlayerID     string
	Value        bool
	Auto         bool
	CastAt       time.Time
}

// VoteSession is the single in-flight voting process for a room.
type VoteSession struct {
	NominationID string
	Order        []string
	Current      int
	Finished     bool
	Votes        map[string]bool
}

// CurrentPlayerID returns the player whose turn it is, or "".
func (s *VoteSession) CurrentPlayerID() string {
	if s.Finished || s.Current >= len(s.Order) {
		return ""
	}
	return s.Order[s.Current]
}

// ExecutionRecord is the host-recorded outcome of one day.
type ExecutionRecord struct {
	Day          int
	NomineeSeat  *int
	ExecutedSeat *int
	VotesFor     int
	AliveCount   int
	NominationID string
	TargetDead   *bool
	CreatedAt    time.Time
}

// LogEntry is one line of the room's append-only audit log.
type LogEntry struct {
	ID      string         `json:"id"`
	At      time.Time      `json:"ts"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Room is the canonical state of one game. It is only ever mutated from the
// owning room actor's goroutine.
type Room struct {
	ID          string
	JoinCode    string
	ScriptID    string
	Phase       Phase
	Day         int
	Night       int
	HostID      string
	GameResult  string
	Seed        string
	Players     map[string]*Player
	Nominations []*Nomination
	Votes       []*Vote
	Session     *VoteSession
	Executions  []*ExecutionRecord
	Pending     map[int]*Assignment
	Logs        []*LogEntry
	CreatedAt   time.Time
}

// NewRoom creates a lobby-phase room with the host registered at seat 0.
func NewRoom(scriptID, hostName string) *Room {
	hostID := uuid.NewString()
	room := &Room{
		ID:        uuid.NewString(),
		JoinCode:  GenerateJoinCode(6),
		ScriptID:  scriptID,
		Phase:     PhaseLobby,
		HostID:    hostID,
		Players:   map[string]*Player{},
		Pending:   map[int]*Assignment{},
		CreatedAt: time.Now(),
	}
	room.Players[hostID] = &Player{
		ID:         hostID,
		Name:       hostName,
		Seat:       0,
		IsHost:     true,
		LifeStatus: StatusAlive,
		JoinedAt:   time.Now(),
	}
	room.log("room_created", map[string]any{"script_id": scriptID, "host_name": hostName})
	return room
}

// AddPlayer seats a new player at the next free seat number and returns them.
func (r *Room) AddPlayer(name string) *Player {
	seat := 0
	for _, p := range r.Players {
		if !p.IsHost {
			seat++
		}
	}
	seat++
	player := &Player{
		ID:         uuid.NewString(),
		Name:       name,
		Seat:       seat,
		LifeStatus: StatusAlive,
		JoinedAt:   time.Now(),
	}
	r.Players[player.ID] = player
	r.log("player_joined", map[string]any{"seat": seat, "name": name})
	return player
}

// ListPlayers returns all players ordered by seat, then join time.
func (r *Room) ListPlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seat != out[j].Seat {
			return out[i].Seat < out[j].Seat
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// PlayerBySeat returns the first player occupying seat, or nil.
func (r *Room) PlayerBySeat(seat int) *Player {
	for _, p := range r.ListPlayers() {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// NominationByID returns the nomination, or nil.
func (r *Room) NominationByID(id string) *Nomination {
	for _, n := range r.Nominations {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// AliveCount counts seated non-storyteller players whose life status is
// exactly alive. Fake-dead players do not count toward the execution
// threshold.
func (r *Room) AliveCount() int {
	count := 0
	for _, p := range r.Players {
		if !p.IsHost && p.Seat > 0 && p.LifeStatus == StatusAlive {
			count++
		}
	}
	return count
}

func (r *Room) log(kind string, payload map[string]any) {
	r.Logs = append(r.Logs, &LogEntry{
		ID:      uuid.NewString(),
		At:      time.Now(),
		Kind:    kind,
		Payload: payload,
	})
}

// GenerateJoinCode returns an uppercase alphanumeric code.
func GenerateJoinCode(length int) string {
	const charset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a uuid-derived byte.
			code[i] = charset[uuid.New()[i%16]%byte(len(charset))]
			continue
		}
		code[i] = charset[n.Int64()]
	}
	return string(code)
}

func randomSeed() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:16]
	}
	return hex.EncodeToString(buf)
}
