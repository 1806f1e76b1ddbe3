// Package types is the JSON wire contract between clients and the server.
package types

// Client -> Server
// create_room:
//   setup?: { settings?: Settings, loadouts?: { p1?: CardDefID[], p2?: CardDefID[] } }
//
// join_room:
//   roomCode: string   // trimmed, case-insensitive
//   seatToken: string
//   loadout?: CardDefID[] // applied once, on the seat's first join
//
// command:
//   cmdId: string
//   command:
//     queue_order    { cardId, params }
//     remove_order   { orderId }
//     reorder_order  { fromOrderId, toOrderId }
//     ready          {}
//     update_loadout { loadout: CardDefID[] }
//     rematch        {}
//
// params:
//   unitId?, unitId2?: string // "planned:<orderId>" names a unit a queued order will spawn
//   tile?: { q: number, r: number }
//   direction?, moveDirection?, faceDirection?: 0..5
//   distance?: number

// Server -> Client
// room_created:      roomCode, seat, seatToken, inviteLinks { seat0, seat1 }
// joined:            roomCode, seat
// snapshot:          stateView, viewMeta, presence, serverTime
// resolution_bundle: actionStartStateView, actionStartViewMeta, finalStateView, finalViewMeta, presence, serverTime
// command_result:    cmdId, ok, errorCode?, message?
// presence_update:   connected [2]bool, paused, deadlineAt (ms) | null
// match_end:         winner 0 | 1 | null, reason "victory" | "disconnect_timeout"
// error:             code, message
