// Package mcp exposes the 2048 game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON response is rendered as text with an ASCII board.
//
// MCP Tools:
//   - create_session: New game with optional seed and layout
//   - list_sessions, get_session: Inspect running games
//   - list_layouts: Starting layouts available for create_session
//   - game_state: Board, score, status and the directions that would change the board
//   - move: Single move; restart=true starts over first
//   - bulk_move: Several moves, stopping early on game over or a bad direction
//   - restart_game: Fresh random board with score 0
//   - move_history: Paginated history
//   - game_instructions: Rules and tips
//
// Transport Modes:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, one JSON-RPC message per POST
//	mux.Handle("/mcp", client.HTTPHandler())
package mcp
