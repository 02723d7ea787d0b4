// Package types holds the wire envelope shared between the server and its
// clients. The snapshot payload itself is the projection type; this package
// only frames it.
package types

import "towncrier/internal/projection"

// Client -> Server. One envelope per command; unused fields stay zero.
type ClientMessage struct {
	Type string `json:"type"`

	Seat          int    `json:"seat,omitempty"`
	PlayerID      string `json:"player_id,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	SlotID        string `json:"slot_id,omitempty"`
	SlotIndex     int    `json:"slot_index,omitempty"`
	Seed          string `json:"seed,omitempty"`
	Phase         string `json:"phase,omitempty"`
	Result        string `json:"result,omitempty"`
	NomineeSeat   int    `json:"nominee_seat,omitempty"`
	NominatorSeat int    `json:"nominator_seat,omitempty"`
	NominationID  string `json:"nomination_id,omitempty"`
	ManualTotal   *int   `json:"manual_total,omitempty"`
	Value         bool   `json:"value,omitempty"`
	OnBehalfOf    string `json:"on_behalf_of,omitempty"`
	Status        string `json:"status,omitempty"`
	ExecutedSeat  *int   `json:"executed_seat,omitempty"`
	TargetDead    *bool  `json:"target_dead,omitempty"`
	Note          string `json:"note,omitempty"`
}

// Server -> Client.
//
// StateSnapshot carries the viewer's full projected room after every
// committed mutation. Error reports a rejected command and leaves the last
// snapshot authoritative.
type ServerMessage struct {
	Type string `json:"type"`

	State *projection.Snapshot `json:"state,omitempty"`

	Kind       string   `json:"kind,omitempty"`
	Error      string   `json:"error,omitempty"`
	Violations []string `json:"violations,omitempty"`
}
