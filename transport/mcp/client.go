package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"2048",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide numbered tiles on a 4x4 board to build a 2048 tile.

AVAILABLE TOOLS:
- create_session: Start a new game (optional seed and layout)
- list_sessions: List all active sessions
- get_session: Get session details
- list_layouts: List starting layouts
- game_state: Show the board, score and status
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Multiple moves at once - requires intent explanation
- restart_game: Fresh random board with score 0
- move_history: View past moves
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func noArgs() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. A seed makes the tile spawns reproducible; a layout picks the starting board.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed (optional)",
				},
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Starting layout ID from list_layouts (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: noArgs(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List the starting layouts available for new sessions",
		InputSchema: noArgs(),
	}, c.handleListLayouts)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionNames(),
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"restart": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence. Stops early on game over or an invalid direction.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionNames(),
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"restart": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Start over on a fresh random board with score 0",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of 2048 and tips for playing through this interface",
		InputSchema: noArgs(),
	}, c.handleGameInstructions)
}

func directionNames() []string {
	names := make([]string, len(engine.Directions))
	for i, d := range engine.Directions {
		names[i] = string(d)
	}
	return names
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves JSON-RPC MCP messages over plain HTTP POST
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications get no JSON-RPC reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, tolerating a missing object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if layout, _ := args["layout"].(string); layout != "" {
		body["layout"] = layout
	}
	// JSON numbers arrive as float64
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, status := 0, engine.Playing
		if s.GameState != nil {
			score, status = s.GameState.Score, s.GameState.Status
		}
		fmt.Fprintf(&b, "- %s (Layout: %s, Score: %d, Status: %s, Created: %s)\n",
			s.ID, layoutName(s.Layout), score, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list []service.LayoutInfo
	if err := c.apiCall(ctx, "GET", "/api/layouts", nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Layouts (%d):\n\n", len(list))
	for _, l := range list {
		fmt.Fprintf(&b, "- %s: %s", l.LayoutID, l.Description)
		if l.Tiles > 0 {
			fmt.Fprintf(&b, " (%d tiles, max %d, score %d)", l.Tiles, l.MaxTile, l.Score)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nUse create_session with layout=<id> to start from one.")

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	restart, _ := args["restart"].(bool)

	// intent is for the caller's benefit only

	body := map[string]interface{}{
		"direction": direction,
		"restart":   restart,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(direction, &result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	restart, _ := args["restart"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves":   moves,
		"restart": restart,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	path := sessionPath(sessionID, "/history")
	var params []string
	if page, ok := args["page"].(float64); ok && page > 0 {
		params = append(params, fmt.Sprintf("page=%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		params = append(params, fmt.Sprintf("limit=%d", int(limit)))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

const gameInstructions = `# 2048

## Objective
Combine tiles until a tile with the value 2048 appears on the 4x4 board.

## Moves
Each move slides every tile as far as it goes toward one edge: up, down, left or right.
- Two tiles of the same value that collide merge into one tile of double the value.
- A tile takes part in at most one merge per move: [2,2,2,2] moved left becomes [4,4,_,_].
- With three equal tiles in a line, the pair nearest the edge you move toward merges.
- After any move that changes the board, a new tile appears on a random empty cell:
  a 2 nine times out of ten, otherwise a 4.
- A move that changes nothing is allowed but spawns nothing.

## Score
Every merge adds the value of the new tile to the score. Merging two 8s adds 16.

## End of the game
- You win as soon as a 2048 tile is on the board.
- You lose when the board is full and no two neighbouring tiles (up/down/left/right) match.

## Tips
- Keep your largest tile in a corner and build toward it along one edge.
- Favour two directions (for example left and down) and use a third only when stuck.
- Use bulk_move for a run of moves you are confident about; it stops early on game over.
- game_state shows which directions would change the board.
- Use restart_game (or restart=true on move) to start over. Starting layouts only apply to new sessions.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

// Formatting helpers

func layoutName(name string) string {
	if name == "" {
		return "random"
	}
	return name
}

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nLayout: %s\nSeed: %d\nCreated: %s\nLast Accessed: %s\n",
		session.ID,
		layoutName(session.Layout),
		session.Seed,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatGameState(session.GameState))
	}
	return b.String()
}

// formatBoard draws the grid with a fixed cell width; empty cells show a dot
func formatBoard(grid [engine.BoardSize][engine.BoardSize]int) string {
	const width = 6
	border := "+" + strings.Repeat(strings.Repeat("-", width)+"+", engine.BoardSize) + "\n"

	var b strings.Builder
	b.WriteString(border)
	for _, row := range grid {
		b.WriteString("|")
		for _, v := range row {
			cell := "."
			if v != 0 {
				cell = fmt.Sprint(v)
			}
			fmt.Fprintf(&b, "%*s |", width-1, cell)
		}
		b.WriteString("\n")
		b.WriteString(border)
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available\n"
	}

	var b strings.Builder
	b.WriteString(formatBoard(state.Grid))
	fmt.Fprintf(&b, "\nScore: %d\n", state.Score)
	fmt.Fprintf(&b, "Max Tile: %d\n", state.MaxTile)
	fmt.Fprintf(&b, "Empty Cells: %d\n", state.EmptyCells)
	fmt.Fprintf(&b, "Moves: %d (total %d)\n", state.CurrentMovesCount, state.TotalMoves)
	fmt.Fprintf(&b, "Status: %s\n", state.Status)

	switch state.Status {
	case engine.Won:
		b.WriteString("\n🎉 VICTORY! A 2048 tile is on the board.\n")
	case engine.Lost:
		b.WriteString("\n💀 GAME OVER! No moves left.\n")
	default:
		if moves := possibleMoves(state); len(moves) > 0 {
			fmt.Fprintf(&b, "Possible Moves: %s\n", strings.Join(moves, ", "))
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}

	return b.String()
}

// possibleMoves lists the directions that would change the rendered board
func possibleMoves(state *engine.GameState) []string {
	board, err := engine.NewBoardFromGrid(state.Grid)
	if err != nil {
		return nil
	}
	var moves []string
	for _, dir := range engine.Directions {
		if board.CanSlide(dir) {
			moves = append(moves, string(dir))
		}
	}
	return moves
}

func formatMoveResult(direction string, result *service.MoveResult) string {
	var b strings.Builder

	if result.Moved {
		fmt.Fprintf(&b, "✅ Moved %s", direction)
		if result.ScoreGained > 0 {
			fmt.Fprintf(&b, " (+%d)", result.ScoreGained)
		}
		b.WriteString("\n")
		for _, m := range result.Merges {
			fmt.Fprintf(&b, "  merged %d at (%d,%d)\n", m.Value, m.Position.Row, m.Position.Col)
		}
		if result.Spawned != nil {
			fmt.Fprintf(&b, "  spawned %d at (%d,%d)\n", result.Spawned.Value, result.Spawned.Position.Row, result.Spawned.Position.Col)
		}
	} else {
		fmt.Fprintf(&b, "❌ Moving %s changed nothing\n", direction)
	}

	for _, ev := range result.Events {
		if ev.Type == service.EventWin || ev.Type == service.EventGameOver {
			fmt.Fprintf(&b, "📢 %s\n", ev.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d of %d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score: %d -> %d (+%d)\n", result.StartScore, result.EndScore, result.ScoreDelta)
	fmt.Fprintf(&b, "Max Tile: %d -> %d\n", result.StartMaxTile, result.EndMaxTile)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%s\n", formatStepLine(s))
		}
	}

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "\n⚠️ Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	if len(result.PossibleMoves) > 0 && !result.GameOver {
		fmt.Fprintf(&b, "Possible Moves: %s\n", strings.Join(result.PossibleMoves, ", "))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	mark := "·"
	if s.Moved {
		mark = "→"
	}
	line := fmt.Sprintf("%2d. %-5s %s score %d->%d, merges %d, max %d",
		s.Idx, s.Dir, mark, s.ScoreBefore, s.ScoreAfter, s.Merges, s.MaxTile)
	if s.Won {
		line += " 🎉"
	}
	if s.GameOver {
		line += " 💀"
	}
	return line
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d)\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "moved"
		if !move.Moved {
			status = "no change"
		}
		fmt.Fprintf(&b, "%d. %s (%s) +%d, score %d\n",
			move.MoveNumber, move.Action, status, move.ScoreGained, move.Score)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d\n", history.Page+1)
	}
	return b.String()
}
