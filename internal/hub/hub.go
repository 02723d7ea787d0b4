// Package hub owns the set of live rooms. Like the rooms themselves it is a
// serial actor, so room creation and lookup are race-free without locks.
package hub

import (
	"context"

	"go.uber.org/zap"

	"towncrier/internal/catalog"
	"towncrier/internal/engine"
	"towncrier/internal/room"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom builds a fresh room for a script and spawns its actor.
type CreateRoom struct {
	ScriptID string
	HostName string
	Reply    chan CreateResult
}

// GetRoom looks a room up by id. Reply may carry nil.
type GetRoom struct {
	RoomID string
	Reply  chan *room.Room
}

// GetRoomByJoinCode resolves the join code players type in.
type GetRoomByJoinCode struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct{ RoomID string }

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()        {}
func (GetRoom) isHubMsg()           {}
func (GetRoomByJoinCode) isHubMsg() {}
func (RemoveRoom) isHubMsg()        {}
func (ShutdownHub) isHubMsg()       {}

type CreateResult struct {
	Room         *room.Room
	RoomID       string
	JoinCode     string
	HostPlayerID string
	Err          error
}

type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	byCode  map[string]string // join code -> room id
	catalog *catalog.Catalog
	archive room.ArchiveFunc
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, cat *catalog.Catalog, archive room.ArchiveFunc, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		byCode:  make(map[string]string),
		catalog: cat,
		archive: archive,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				script, ok := h.catalog.Script(msg.ScriptID)
				if !ok {
					msg.Reply <- CreateResult{Err: &engine.Reject{Kind: engine.KindNotFound, Detail: "unknown script id " + msg.ScriptID}}
					break
				}
				state := engine.NewRoom(script.ID, msg.HostName)
				// Join codes are short; regenerate on the rare collision.
				for _, taken := h.byCode[state.JoinCode]; taken; _, taken = h.byCode[state.JoinCode] {
					state.JoinCode = engine.GenerateJoinCode(6)
				}
				rm := room.New(h.ctx, state, script, h.archive, h.logger)
				h.rooms[state.ID] = rm
				h.byCode[state.JoinCode] = state.ID
				h.logger.Info("room created",
					zap.String("room_id", state.ID),
					zap.String("script_id", script.ID))
				msg.Reply <- CreateResult{
					Room:         rm,
					RoomID:       state.ID,
					JoinCode:     state.JoinCode,
					HostPlayerID: state.HostID,
				}

			case GetRoom:
				msg.Reply <- h.rooms[msg.RoomID] // may be nil

			case GetRoomByJoinCode:
				var rm *room.Room
				if id, ok := h.byCode[msg.Code]; ok {
					rm = h.rooms[id]
				}
				msg.Reply <- rm

			case RemoveRoom:
				if rm, ok := h.rooms[msg.RoomID]; ok {
					rm.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.RoomID)
					for code, id := range h.byCode {
						if id == msg.RoomID {
							delete(h.byCode, code)
						}
					}
				}

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				clear(h.byCode)
				h.cancel()
			}
		}
	}
}
