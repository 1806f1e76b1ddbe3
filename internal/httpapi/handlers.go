package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/DoyleJ11/hex-tactics-backend/internal/hub"
	"github.com/DoyleJ11/hex-tactics-backend/internal/room"
	"github.com/DoyleJ11/hex-tactics-backend/internal/types"
	"github.com/DoyleJ11/hex-tactics-backend/internal/ws"
	"go.uber.org/zap"
)

type createRoomResponse struct {
	RoomCode    string            `json:"roomCode"`
	InviteLinks types.InviteLinks `json:"inviteLinks"`
}

// CreateRoom makes a room from an optional setup body. Both seats join
// through their invite links.
func CreateRoom(h *hub.Hub, inviteBaseURL string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var setup *room.Setup
		var body room.Setup
		switch err := json.NewDecoder(r.Body).Decode(&body); {
		case errors.Is(err, io.EOF):
		case err != nil:
			http.Error(w, "invalid setup", http.StatusBadRequest)
			return
		default:
			setup = &body
		}

		created, err := h.CreateRoom(r.Context(), setup)
		if err != nil {
			log.Error("create room failed", zap.Error(err))
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, createRoomResponse{
			RoomCode:    created.Code,
			InviteLinks: ws.InviteLinks(ws.InviteBase(r, inviteBaseURL), created.Code, created.Tokens),
		})
	}
}

type cardsResponse struct {
	Cards        []engine.CardDef   `json:"cards"`
	StartingDeck []engine.CardDefID `json:"startingDeck"`
}

func Cards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cardsResponse{Cards: engine.Catalog(), StartingDeck: engine.StartingDeck()})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
