package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"towncrier/internal/catalog"
	"towncrier/internal/engine"
	"towncrier/internal/history"
	"towncrier/internal/hub"
	"towncrier/internal/room"
)

type createRoomRequest struct {
	ScriptID string `json:"script_id"`
	HostName string `json:"host_name"`
}

type createRoomResponse struct {
	RoomID       string `json:"room_id"`
	JoinCode     string `json:"join_code"`
	HostPlayerID string `json:"host_player_id"`
}

func CreateRoom(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation", "bad json")
			return
		}
		if req.HostName == "" {
			writeError(w, http.StatusBadRequest, "validation", "host_name is required")
			return
		}

		reply := make(chan hub.CreateResult, 1)
		h.Inbox() <- hub.CreateRoom{ScriptID: req.ScriptID, HostName: req.HostName, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeReject(w, res.Err)
			return
		}
		logger.Info("room created over http",
			zap.String("room_id", res.RoomID),
			zap.String("script_id", req.ScriptID))
		writeJSON(w, http.StatusCreated, createRoomResponse{
			RoomID:       res.RoomID,
			JoinCode:     res.JoinCode,
			HostPlayerID: res.HostPlayerID,
		})
	}
}

type joinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type joinRoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

func JoinRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation", "bad json")
			return
		}
		if req.Code == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "validation", "code and name are required")
			return
		}

		lookup := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoomByJoinCode{Code: req.Code, Reply: lookup}
		rm := <-lookup
		if rm == nil {
			writeError(w, http.StatusNotFound, "not_found", "no room with that code")
			return
		}

		reply := make(chan room.JoinResult, 1)
		rm.Inbox() <- room.AddPlayer{Name: req.Name, Reply: reply}
		res := <-reply

		info := make(chan room.InfoView, 1)
		rm.Inbox() <- room.Info{Reply: info}
		iv := <-info

		writeJSON(w, http.StatusOK, joinRoomResponse{
			RoomID:   iv.RoomID,
			PlayerID: res.PlayerID,
			Seat:     res.Seat,
		})
	}
}

func ListScripts(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.List())
	}
}

// RoomLogs exports a room's audit log. Host only; the requester proves
// identity with its player id.
func RoomLogs(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		playerID := r.URL.Query().Get("player")

		lookup := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{RoomID: roomID, Reply: lookup}
		rm := <-lookup
		if rm == nil {
			writeError(w, http.StatusNotFound, "not_found", "room not found")
			return
		}

		reply := make(chan room.LogExportResult, 1)
		rm.Inbox() <- room.LogExport{CallerID: playerID, Reply: reply}
		res := <-reply
		if res.Err != nil {
			writeReject(w, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, res.Logs)
	}
}

func ListRecords(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.Latest(20)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to load records")
			return
		}
		if recs == nil {
			recs = []history.GameRecord{}
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Kind       string   `json:"kind"`
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, errorBody{Kind: kind, Error: detail})
}

func writeReject(w http.ResponseWriter, err error) {
	kind := engine.KindOf(err)
	status := http.StatusConflict
	switch kind {
	case engine.KindValidation:
		status = http.StatusBadRequest
	case engine.KindNotFound:
		status = http.StatusNotFound
	case engine.KindUnauthorized:
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorBody{
		Kind:       string(kind),
		Error:      err.Error(),
		Violations: engine.ViolationsOf(err),
	})
}
