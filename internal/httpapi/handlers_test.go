package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/DoyleJ11/hex-tactics-backend/internal/hub"
	"github.com/DoyleJ11/hex-tactics-backend/internal/lobby"
	"github.com/DoyleJ11/hex-tactics-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *hub.Hub) {
	t.Helper()
	h := hub.NewHub(context.Background(), hub.WithSweepInterval(0))
	t.Cleanup(h.Shutdown)
	return SetupRoutes(h, ws.Options{}), h
}

func TestCreateRoom(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantCode int
		wantRows int
	}{
		{name: "no body", wantCode: http.StatusCreated, wantRows: engine.DefaultSettings().BoardRows},
		{name: "with setup", body: `{"settings":{"boardRows":9}}`, wantCode: http.StatusCreated, wantRows: 9},
		{name: "clamped setup", body: `{"settings":{"boardRows":99}}`, wantCode: http.StatusCreated, wantRows: 14},
		{name: "bad json", body: `{"settings":`, wantCode: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, h := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "http://hex.local/rooms", strings.NewReader(tc.body))
			req.Header.Set("X-Forwarded-Proto", "https")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusCreated {
				return
			}

			var resp createRoomResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Len(t, resp.RoomCode, 6)
			assert.True(t, strings.HasPrefix(resp.InviteLinks.Seat0, "https://hex.local/?room="+resp.RoomCode+"&token="))
			assert.NotEqual(t, resp.InviteLinks.Seat0, resp.InviteLinks.Seat1)

			lb := h.Room(context.Background(), resp.RoomCode)
			require.NotNil(t, lb)
			reply := make(chan lobby.View, 1)
			lb.Inbox() <- lobby.GetState{Reply: reply}
			assert.Equal(t, tc.wantRows, (<-reply).State.Settings.BoardRows)
		})
	}
}

func TestCards(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Cards []struct {
			ID   engine.CardDefID `json:"id"`
			Name string           `json:"name"`
		} `json:"cards"`
		StartingDeck []engine.CardDefID `json:"startingDeck"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Cards, len(engine.Catalog()))
	assert.Equal(t, engine.StartingDeck(), resp.StartingDeck)
	for _, c := range resp.Cards {
		assert.NotEmpty(t, c.Name, c.ID)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
