package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oscoding1/watchtogether/pkg/rest"
)

func (c *controller) healthz(w http.ResponseWriter, r *http.Request) {
	stats, err := c.roomService.Stats(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get stats", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"status": "error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"rooms":       stats.Rooms,
		"connections": stats.Connections,
	})
}

func (c *controller) getRoomInfo(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "room-code")))
	if roomCode == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "room code is required"})
		return
	}

	roomInfo, err := c.roomService.GetRoomInfo(r.Context(), roomCode)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get room info", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, roomInfo)
}

func (c *controller) generateRoomCode(w http.ResponseWriter, r *http.Request) {
	roomCode, err := c.roomService.GenerateRoomCode(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to generate room code", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"room_code": roomCode})
}
