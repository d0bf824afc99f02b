package service

import (
	"context"
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Layouts
	ListLayouts(ctx context.Context) ([]*LayoutInfo, error)
}

// SessionManager defines session storage operations. Sessions it returns
// are snapshots; Touch refreshes LastAccessedAt and returns the result.
type SessionManager interface {
	Create(id string, seed int64, layout *engine.Layout) (*Session, error)
	Get(id string) (*Session, error)
	Touch(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
}

// LayoutManager loads starting layouts by name
type LayoutManager interface {
	LoadLayout(name string) (*engine.Layout, error)
	ListLayouts() ([]*LayoutInfo, error)
	GetDefault() *engine.Layout
}

// Session represents an active game session
type Session struct {
	ID             string
	Seed           int64
	Layout         string
	Engine         *engine.GameEngine
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
