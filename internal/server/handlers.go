package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/rooms"
)

// Handlers holds references needed by HTTP handlers.
type Handlers struct {
	Hub       *Hub
	Log       *zap.Logger
	StartTime time.Time
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)
	resp := protocol.HealthResponse{
		Status:    "ok",
		Uptime:    uptime.Round(time.Second).String(),
		UptimeSec: uptime.Seconds(),
		Rooms:     h.Hub.RoomCount(),
		Clients:   h.Hub.ClientCount(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRooms handles GET /api/rooms.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	snap := h.Hub.Snapshot()
	writeJSON(w, http.StatusOK, protocol.RoomList{Vocabulary: snap.Vocabulary, Rooms: snap.Rooms})
}

// UpdateRoom handles POST /api/rooms/{room}/status. It goes through the
// same hub path as a WebSocket updateStatus, so every live client sees it.
func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	if room == "" {
		writeError(w, http.StatusBadRequest, "room required")
		return
	}

	var req protocol.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	msg, err := h.Hub.Update(room, req.Status)
	if errors.Is(err, rooms.ErrUnknownRoom) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown room %q", room))
		return
	}
	if err != nil {
		h.Log.Error("rest update", zap.String("room", room), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	writeJSON(w, http.StatusOK, protocol.UpdateResponse{
		Type:       msg.MessageType(),
		Vocabulary: msg.Vocabulary,
		Room:       msg.Room,
		Status:     msg.Status,
	})
}

// HandleWS handles GET /ws.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	ServeWS(h.Hub, h.Log, w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: msg})
}
