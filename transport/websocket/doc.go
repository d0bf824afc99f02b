// Package websocket provides live game updates over WebSocket.
//
// A central Hub owns every connection. Clients join a session with
// /ws?session=<id> and from then on receive:
//   - {"event": "state_update", "game_state": {...}} after every change
//   - {"event": "win" | "game_over", "data": {...}} when the game ends
//   - {"event": "error", "error": "..."} for a rejected command, sent only to its sender
//
// Clients may also send commands:
//
//	{"action": "move", "direction": "left"}
//	{"action": "restart"}
//
// Commands go to the CommandHandler set with SetCommandHandler and the
// resulting state is broadcast to the whole session.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.SetCommandHandler(handler)
//	hub.ServeWS(w, r, sessionID)
//
// Broadcasts never block the caller. A client whose send buffer is full is
// disconnected; if the hub queue itself is full the message is dropped and
// logged.
package websocket
