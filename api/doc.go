// Package api provides the HTTP REST API for the 2048 server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session, body {"seed": 42, "layout": "endgame"} (both optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Body {"direction": "left", "restart": false}
//   - POST /api/sessions/{id}/bulk-move - Body {"moves": ["up","left"], "restart": false}
//   - POST /api/sessions/{id}/restart - Fresh random board, score 0
//   - GET /api/sessions/{id}/history - Paginated move history (?page=&limit=&order=)
//
// Layouts:
//   - GET /api/layouts - Starting layouts usable at session creation
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket upgrade for live updates and commands
//
// Errors are returned as JSON {"error": "..."} with 400 for bad input
// (unknown direction, bad session ID, unknown or invalid layout), 404 for a
// missing session and 500 otherwise.
//
// Move responses carry the merges and spawned tile of the move along with
// the events it produced. Bulk move responses add a per-step trace, the
// start/end score and max tile, and a stop_reason_code of
// "invalid_direction" or "game_over" when the batch ended early.
package api
