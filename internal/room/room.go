// Package room runs one game room as a serial actor: every command against
// the room is applied one at a time in submission order by a single
// goroutine, so committed mutations have a total order and no locking is
// needed on the canonical state. Rooms are fully independent of one another.
package room

import (
	"context"

	"go.uber.org/zap"

	"towncrier/internal/catalog"
	"towncrier/internal/engine"
	"towncrier/internal/projection"
)

type Msg interface{ isRoomMsg() }

// Join subscribes a connection. The current snapshot for the viewer is sent
// on the outbox immediately, then after every committed mutation.
type Join struct {
	ConnID string
	Viewer projection.Viewer
	Outbox chan *projection.Snapshot
}

type Leave struct{ ConnID string }

// Do applies one engine command on behalf of CallerID.
type Do struct {
	Cmd      engine.Command
	CallerID string
	Reply    chan Result
}

// AddPlayer seats a new player (joinRoom is not an engine.Command because it
// has no caller yet).
type AddPlayer struct {
	Name  string
	Reply chan JoinResult
}

// GetSnapshot renders the room for a viewer without mutating anything.
type GetSnapshot struct {
	Viewer projection.Viewer
	Reply  chan *projection.Snapshot
}

// LogExport returns the room's audit log; host only.
type LogExport struct {
	CallerID string
	Reply    chan LogExportResult
}

// Info reflects room metadata without data races; used by the HTTP layer
// and tests.
type Info struct {
	Reply chan InfoView
}

type Shutdown struct{}

func (Join) isRoomMsg()        {}
func (Leave) isRoomMsg()       {}
func (Do) isRoomMsg()          {}
func (AddPlayer) isRoomMsg()   {}
func (GetSnapshot) isRoomMsg() {}
func (LogExport) isRoomMsg()   {}
func (Info) isRoomMsg()        {}
func (Shutdown) isRoomMsg()    {}

// Result is a command outcome: the updated relevant slice of state, or a
// structured rejection.
type Result struct {
	Data any
	Err  error
}

type JoinResult struct {
	PlayerID string
	Seat     int
}

type LogExportResult struct {
	Logs []*engine.LogEntry
	Err  error
}

type InfoView struct {
	RoomID     string
	JoinCode   string
	Phase      engine.Phase
	NumClients int
	HostID     string
	GameResult string
}

// ArchiveFunc receives finished games for persistence. It is invoked on its
// own goroutine so the archive never blocks the room actor.
type ArchiveFunc func(roomID, scriptID, result string, snap *projection.Snapshot)

type client struct {
	viewer projection.Viewer
	outbox chan *projection.Snapshot
}

// Room is the actor handle. All access goes through Inbox.
type Room struct {
	inbox   chan Msg
	state   *engine.Room
	script  *catalog.Script
	clients map[string]client
	archive ArchiveFunc
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, state *engine.Room, script *catalog.Script, archive ArchiveFunc, logger *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   state,
		script:  script,
		clients: make(map[string]client),
		archive: archive,
		logger:  logger.With(zap.String("room_id", state.ID)),
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ConnID] = client{viewer: msg.Viewer, outbox: msg.Outbox}
				msg.Outbox <- projection.Project(r.state, r.script, msg.Viewer)

			case Leave:
				delete(r.clients, msg.ConnID)

			case Do:
				data, err := engine.Apply(r.state, r.script, msg.Cmd, msg.CallerID)
				if msg.Reply != nil {
					msg.Reply <- Result{Data: data, Err: err}
				}
				if err != nil {
					r.logger.Debug("command rejected",
						zap.String("type", string(msg.Cmd.Type)),
						zap.String("kind", string(engine.KindOf(err))),
						zap.Error(err))
					break
				}
				r.broadcast()
				if msg.Cmd.Type == engine.CmdSetGameResult && r.state.GameResult != "" && r.archive != nil {
					// Host view carries the full record of the game.
					snap := projection.Project(r.state, r.script, projection.Viewer{PlayerID: r.state.HostID})
					go r.archive(r.state.ID, r.state.ScriptID, r.state.GameResult, snap)
				}

			case AddPlayer:
				player := r.state.AddPlayer(msg.Name)
				if msg.Reply != nil {
					msg.Reply <- JoinResult{PlayerID: player.ID, Seat: player.Seat}
				}
				r.broadcast()

			case GetSnapshot:
				msg.Reply <- projection.Project(r.state, r.script, msg.Viewer)

			case LogExport:
				caller, ok := r.state.Players[msg.CallerID]
				if !ok || !caller.IsHost {
					msg.Reply <- LogExportResult{Err: &engine.Reject{Kind: engine.KindUnauthorized, Detail: "only the host may export the log"}}
					break
				}
				logs := append([]*engine.LogEntry(nil), r.state.Logs...)
				msg.Reply <- LogExportResult{Logs: logs}

			case Info:
				msg.Reply <- InfoView{
					RoomID:     r.state.ID,
					JoinCode:   r.state.JoinCode,
					Phase:      r.state.Phase,
					NumClients: len(r.clients),
					HostID:     r.state.HostID,
					GameResult: r.state.GameResult,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// broadcast recomputes the projection for every connected viewer and pushes
// it. A viewer that cannot keep up is dropped; reconnecting makes them a
// fresh subscriber.
func (r *Room) broadcast() {
	for id, c := range r.clients {
		snap := projection.Project(r.state, r.script, c.viewer)
		select {
		case c.outbox <- snap:
		default:
			close(c.outbox)
			delete(r.clients, id)
			r.logger.Debug("dropped slow client", zap.String("conn_id", id))
		}
	}
}

func (r *Room) shutdown() {
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}
