package types

import (
	"encoding/json"
	"strings"

	"github.com/DoyleJ11/hex-tactics-backend/internal/engine"
	"github.com/DoyleJ11/hex-tactics-backend/internal/room"
)

const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeCommand    = "command"
)

// Transport level error codes. Command failures use room.ErrorCode.
const (
	ErrBadMessage    = "bad_message"
	ErrNotJoined     = "not_joined"
	ErrRoomNotFound  = "room_not_found"
	ErrInvalidToken  = "invalid_token"
	ErrAlreadyJoined = "already_joined"
)

// ClientMessage is the union of everything a client may send. Only the
// fields of its Type are read.
type ClientMessage struct {
	Type      string             `json:"type"`
	Setup     *room.Setup        `json:"setup,omitempty"`
	RoomCode  string             `json:"roomCode,omitempty"`
	SeatToken string             `json:"seatToken,omitempty"`
	Loadout   []engine.CardDefID `json:"loadout,omitempty"`
	CmdID     string             `json:"cmdId,omitempty"`
	Command   *room.Command      `json:"command,omitempty"`
}

// ParseClientMessage decodes and shape-checks one client frame.
func ParseClientMessage(data []byte) (ClientMessage, bool) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, false
	}
	switch m.Type {
	case TypeCreateRoom:
		return m, true
	case TypeJoinRoom:
		m.RoomCode = strings.ToUpper(strings.TrimSpace(m.RoomCode))
		m.SeatToken = strings.TrimSpace(m.SeatToken)
		return m, m.RoomCode != "" && m.SeatToken != ""
	case TypeCommand:
		return m, m.CmdID != "" && m.Command != nil && m.Command.Type != ""
	}
	return ClientMessage{}, false
}

type ServerMessage interface{ isServerMessage() }

type InviteLinks struct {
	Seat0 string `json:"seat0"`
	Seat1 string `json:"seat1"`
}

type RoomCreated struct {
	Type        string      `json:"type"`
	RoomCode    string      `json:"roomCode"`
	Seat        engine.Seat `json:"seat"`
	SeatToken   string      `json:"seatToken"`
	InviteLinks InviteLinks `json:"inviteLinks"`
}

type Joined struct {
	Type     string      `json:"type"`
	RoomCode string      `json:"roomCode"`
	Seat     engine.Seat `json:"seat"`
}

type Snapshot struct {
	Type       string             `json:"type"`
	StateView  room.GameStateView `json:"stateView"`
	ViewMeta   room.ViewMeta      `json:"viewMeta"`
	Presence   room.Presence      `json:"presence"`
	ServerTime int64              `json:"serverTime"`
}

type ResolutionBundle struct {
	Type                 string             `json:"type"`
	ActionStartStateView room.GameStateView `json:"actionStartStateView"`
	ActionStartViewMeta  room.ViewMeta      `json:"actionStartViewMeta"`
	FinalStateView       room.GameStateView `json:"finalStateView"`
	FinalViewMeta        room.ViewMeta      `json:"finalViewMeta"`
	Presence             room.Presence      `json:"presence"`
	ServerTime           int64              `json:"serverTime"`
}

type CommandResult struct {
	Type      string         `json:"type"`
	CmdID     string         `json:"cmdId"`
	OK        bool           `json:"ok"`
	ErrorCode room.ErrorCode `json:"errorCode,omitempty"`
	Message   string         `json:"message,omitempty"`
}

type PresenceUpdate struct {
	Type string `json:"type"`
	room.Presence
}

type MatchEnd struct {
	Type   string       `json:"type"`
	Winner *engine.Seat `json:"winner"`
	Reason string       `json:"reason"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (RoomCreated) isServerMessage()      {}
func (Joined) isServerMessage()           {}
func (Snapshot) isServerMessage()         {}
func (ResolutionBundle) isServerMessage() {}
func (CommandResult) isServerMessage()    {}
func (PresenceUpdate) isServerMessage()   {}
func (MatchEnd) isServerMessage()         {}
func (Error) isServerMessage()            {}

func NewRoomCreated(code string, seat engine.Seat, token string, links InviteLinks) RoomCreated {
	return RoomCreated{Type: "room_created", RoomCode: code, Seat: seat, SeatToken: token, InviteLinks: links}
}

func NewJoined(code string, seat engine.Seat) Joined {
	return Joined{Type: "joined", RoomCode: code, Seat: seat}
}

func NewSnapshot(view room.GameStateView, meta room.ViewMeta, presence room.Presence, serverTime int64) Snapshot {
	return Snapshot{Type: "snapshot", StateView: view, ViewMeta: meta, Presence: presence, ServerTime: serverTime}
}

func NewResolutionBundle(start, final room.GameStateView, startMeta, finalMeta room.ViewMeta, presence room.Presence, serverTime int64) ResolutionBundle {
	return ResolutionBundle{
		Type:                 "resolution_bundle",
		ActionStartStateView: start,
		ActionStartViewMeta:  startMeta,
		FinalStateView:       final,
		FinalViewMeta:        finalMeta,
		Presence:             presence,
		ServerTime:           serverTime,
	}
}

func NewCommandResult(cmdID string, res room.Result) CommandResult {
	return CommandResult{Type: "command_result", CmdID: cmdID, OK: res.OK, ErrorCode: res.ErrorCode, Message: res.Message}
}

func NewPresenceUpdate(p room.Presence) PresenceUpdate {
	return PresenceUpdate{Type: "presence_update", Presence: p}
}

func NewMatchEnd(winner *engine.Seat, reason string) MatchEnd {
	return MatchEnd{Type: "match_end", Winner: winner, Reason: reason}
}

func NewError(code, message string) Error {
	return Error{Type: "error", Code: code, Message: message}
}
