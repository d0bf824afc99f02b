package service

import (
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// Event types emitted by game operations
const (
	EventMove     = "move"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventWin      = "win"
	EventGameOver = "game_over"
	EventRestart  = "restart"
)

// Stop reason codes reported by BulkMove
const (
	StopInvalidDirection = "invalid_direction"
	StopGameOver         = "game_over"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	Layout         string            `json:"layout"`
	Seed           int64             `json:"seed"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// CreateSessionRequest holds the optional knobs for a new game. A nil Seed
// picks a random one; an empty Layout uses the default.
type CreateSessionRequest struct {
	Seed   *int64 `json:"seed,omitempty"`
	Layout string `json:"layout,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	SessionID   string            `json:"session_id"`
	Moved       bool              `json:"moved"`
	ScoreGained int               `json:"score_gained"`
	Merges      []engine.Merge    `json:"merges,omitempty"`
	Spawned     *engine.Tile      `json:"spawned,omitempty"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	SessionID      string            `json:"session_id"`
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Moved          bool              `json:"moved"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_direction|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore   int `json:"start_score"`
	EndScore     int `json:"end_score"`
	ScoreDelta   int `json:"score_delta"`
	StartMaxTile int `json:"start_max_tile"`
	EndMaxTile   int `json:"end_max_tile"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	Won           bool     `json:"won"`
	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int          `json:"idx"`
	Dir         string       `json:"dir"`
	Moved       bool         `json:"moved"`
	Merges      int          `json:"merges"`
	ScoreBefore int          `json:"score_before"`
	ScoreAfter  int          `json:"score_after"`
	MaxTile     int          `json:"max_tile"`
	Spawned     *engine.Tile `json:"spawned,omitempty"`
	Won         bool         `json:"won,omitempty"`
	GameOver    bool         `json:"game_over,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // move, merge, spawn, win, game_over, restart
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LayoutInfo describes a starting layout
type LayoutInfo struct {
	Filename    string `json:"filename,omitempty"`
	LayoutID    string `json:"layout_id"` // identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Tiles       int    `json:"tiles"`
	MaxTile     int    `json:"max_tile"`
	Score       int    `json:"score"`
}
