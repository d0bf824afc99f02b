package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	layouts  LayoutManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, layouts LayoutManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		layouts:  layouts,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, err := s.resolveLayout(req.Layout)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", seed, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return toSessionInfo(sess), nil
}

// resolveLayout loads a layout by name, listing the alternatives when it is missing
func (s *gameServiceImpl) resolveLayout(name string) (*engine.Layout, error) {
	if s.layouts == nil {
		return nil, nil
	}
	if name == "" {
		return s.layouts.GetDefault(), nil
	}

	layout, err := s.layouts.LoadLayout(name)
	if err == nil {
		return layout, nil
	}

	available, listErr := s.layouts.ListLayouts()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, l := range available {
			ids = append(ids, l.LayoutID)
		}
		return nil, fmt.Errorf("layout '%s' (available: %v): %w", name, ids, err)
	}
	return nil, fmt.Errorf("layout '%s': %w", name, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return toSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	events := []GameEvent{}
	if restart {
		sess.Engine.Restart()
		events = append(events, restartEvent())
	}

	before := sess.Engine.GetState()
	out, err := sess.Engine.ApplyMove(dir)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()

	events = append(events, moveEvents(out, before, state)...)

	return &MoveResult{
		SessionID:   sess.ID,
		Moved:       out.Moved,
		ScoreGained: out.ScoreGained,
		Merges:      out.Merges,
		Spawned:     out.Spawned,
		GameState:   state,
		Message:     state.Message,
		Events:      events,
		Step:        stepInfo(1, out, before, state),
	}, nil
}

// BulkMove executes multiple moves in sequence. It stops at the first invalid
// direction or once the board is locked.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	result := &BulkMoveResult{
		SessionID:      sess.ID,
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
	}

	if restart {
		sess.Engine.Restart()
		result.Events = append(result.Events, restartEvent())
	}

	start := sess.Engine.GetState()
	result.StartScore = start.Score
	result.StartMaxTile = start.MaxTile

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.CheckGameOver() {
			result.StoppedReason = "no moves left"
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StopReasonCode = StopInvalidDirection
			result.StoppedOnMove = i + 1
			break
		}

		before := sess.Engine.GetState()
		out, err := sess.Engine.ApplyMove(dir)
		if err != nil {
			return nil, err
		}
		after := sess.Engine.GetState()

		result.MovesExecuted++
		result.Moved = result.Moved || out.Moved
		result.Events = append(result.Events, moveEvents(out, before, after)...)
		result.Steps = append(result.Steps, *stepInfo(i+1, out, before, after))
	}

	end := sess.Engine.GetState()
	result.GameState = end
	result.EndScore = end.Score
	result.EndMaxTile = end.MaxTile
	result.ScoreDelta = end.Score - start.Score
	result.Won = end.Won
	result.GameOver = end.GameOver
	result.Message = end.Message
	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = StopGameOver
	}
	for _, d := range sess.Engine.GetPossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, string(d))
	}

	return result, nil
}

// Restart clears the board of a session and seeds a new game
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess.Engine.Restart(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLayouts returns the available starting layouts
func (s *gameServiceImpl) ListLayouts(ctx context.Context) ([]*LayoutInfo, error) {
	if s.layouts == nil {
		return []*LayoutInfo{}, nil
	}
	return s.layouts.ListLayouts()
}

func toSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Layout:         sess.Layout,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
	}
}

func restartEvent() GameEvent {
	return GameEvent{
		Type:      EventRestart,
		Message:   "Game restarted",
		Timestamp: time.Now(),
	}
}

// moveEvents generates events for one applied move. win and game_over fire
// only when the status changed during this move.
func moveEvents(out engine.MoveOutcome, before, after *engine.GameState) []GameEvent {
	now := time.Now()

	if !out.Moved {
		return []GameEvent{{
			Type:      EventMove,
			Message:   fmt.Sprintf("Nothing moved %s", out.Direction),
			Timestamp: now,
		}}
	}

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s, score %d", out.Direction, after.Score),
		Timestamp: now,
	}}

	for _, m := range out.Merges {
		pos := m.Position
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("Merged into %d at %s", m.Value, pos),
			Timestamp: now,
			Position:  &pos,
			Value:     m.Value,
		})
	}

	if out.Spawned != nil {
		pos := out.Spawned.Position
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("Spawned %d at %s", out.Spawned.Value, pos),
			Timestamp: now,
			Position:  &pos,
			Value:     out.Spawned.Value,
		})
	}

	if after.Won && !before.Won {
		events = append(events, GameEvent{
			Type:      EventWin,
			Message:   fmt.Sprintf("Reached %d!", engine.WinValue),
			Timestamp: now,
			Value:     engine.WinValue,
		})
	}
	if after.GameOver && !before.GameOver {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   after.Message,
			Timestamp: now,
			Value:     after.Score,
		})
	}

	return events
}

func stepInfo(idx int, out engine.MoveOutcome, before, after *engine.GameState) *StepInfo {
	return &StepInfo{
		Idx:         idx,
		Dir:         string(out.Direction),
		Moved:       out.Moved,
		Merges:      len(out.Merges),
		ScoreBefore: before.Score,
		ScoreAfter:  after.Score,
		MaxTile:     after.MaxTile,
		Spawned:     out.Spawned,
		Won:         after.Won,
		GameOver:    after.GameOver,
	}
}
