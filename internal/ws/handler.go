package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"towncrier/internal/engine"
	"towncrier/internal/hub"
	"towncrier/internal/projection"
	"towncrier/internal/room"
	"towncrier/pkg/types"
)

// Handler upgrades to a websocket, subscribes the connection to its room and
// pumps snapshots out / commands in until either side closes. The viewer
// identity is fixed for the life of the connection.
func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		playerID := r.URL.Query().Get("player")
		if roomID == "" || playerID == "" {
			http.Error(w, "missing room or player", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{RoomID: roomID, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan *projection.Snapshot, 8)
		connID := uuid.NewString()

		rm.Inbox() <- room.Join{ConnID: connID, Viewer: projection.Viewer{PlayerID: playerID}, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{ConnID: connID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", State: snap}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (room.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "validation", "bad json", nil)
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				writeError(r.Context(), conn, "validation", "unknown type", nil)
				continue
			}

			result := make(chan room.Result, 1)
			rm.Inbox() <- room.Do{Cmd: cmd, CallerID: playerID, Reply: result}
			if res := <-result; res.Err != nil {
				logger.Debug("ws command rejected",
					zap.String("type", string(cmd.Type)),
					zap.Error(res.Err))
				writeError(r.Context(), conn, string(engine.KindOf(res.Err)), res.Err.Error(), engine.ViolationsOf(res.Err))
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, kind, detail string, violations []string) {
	payload, _ := json.Marshal(types.ServerMessage{
		Type:       "Error",
		Kind:       kind,
		Error:      detail,
		Violations: violations,
	})
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	cmd := engine.Command{
		Seat:          m.Seat,
		PlayerID:      m.PlayerID,
		RoleID:        m.RoleID,
		SlotID:        m.SlotID,
		SlotIndex:     m.SlotIndex,
		Seed:          m.Seed,
		Phase:         engine.Phase(m.Phase),
		Result:        m.Result,
		NomineeSeat:   m.NomineeSeat,
		NominatorSeat: m.NominatorSeat,
		NominationID:  m.NominationID,
		ManualTotal:   m.ManualTotal,
		Value:         m.Value,
		OnBehalfOf:    m.OnBehalfOf,
		Status:        engine.LifeStatus(m.Status),
		ExecutedSeat:  m.ExecutedSeat,
		TargetDead:    m.TargetDead,
		Note:          m.Note,
	}

	switch m.Type {
	case "UpdateSeat":
		cmd.Type = engine.CmdUpdateSeat
	case "GenerateAssignments":
		cmd.Type = engine.CmdGenerateAssignments
	case "EditAssignment":
		cmd.Type = engine.CmdEditAssignment
	case "EditAttachment":
		cmd.Type = engine.CmdEditAttachment
	case "FinalizeAssignments":
		cmd.Type = engine.CmdFinalizeAssignments
	case "ChangePhase":
		cmd.Type = engine.CmdChangePhase
	case "ResetRoom":
		cmd.Type = engine.CmdResetRoom
	case "SetGameResult":
		cmd.Type = engine.CmdSetGameResult
	case "Nominate":
		cmd.Type = engine.CmdNominate
	case "StartVote":
		cmd.Type = engine.CmdStartVote
	case "RevertNomination":
		cmd.Type = engine.CmdRevertNomination
	case "SetManualTotal":
		cmd.Type = engine.CmdSetManualTotal
	case "CastVote":
		cmd.Type = engine.CmdCastVote
	case "SetPlayerStatus":
		cmd.Type = engine.CmdSetPlayerStatus
	case "RecordExecution":
		cmd.Type = engine.CmdRecordExecution
	case "SetPlayerNote":
		cmd.Type = engine.CmdSetPlayerNote
	default:
		return engine.Command{}, false
	}
	return cmd, true
}
