package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/layouts"
	"github.com/wricardo/game2048/game/service"
	"github.com/wricardo/game2048/game/session"
	"github.com/wricardo/game2048/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error)
	RestartFunc  func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	ListLayoutsFunc func(ctx context.Context) ([]*service.LayoutInfo, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{ID: "test", Layout: req.Layout, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, restart)
	}
	return &service.MoveResult{Moved: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, restart)
	}
	return &service.BulkMoveResult{MovesExecuted: len(moves), GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ListLayouts(ctx context.Context) ([]*service.LayoutInfo, error) {
	if m.ListLayoutsFunc != nil {
		return m.ListLayoutsFunc(ctx)
	}
	return []*service.LayoutInfo{}, nil
}

// Test helpers

func setupTestServer(t *testing.T, svc service.GameService) (*Server, *websocket.Hub) {
	t.Helper()
	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return NewServer(svc, hub, nil), hub
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	parseResponse(t, w, &resp)
	return resp["error"]
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session x: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %q", engine.ErrInvalidDirection, "north"), http.StatusBadRequest},
		{fmt.Errorf("layout 'x': %w", layouts.ErrLayoutNotFound), http.StatusBadRequest},
		{engine.ErrInvalidLayout, http.StatusBadRequest},
		{session.ErrInvalidSessionID, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	seed := int64(42)

	tests := []struct {
		name           string
		body           interface{}
		createFunc     func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
		expectedStatus int
		check          func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "no body uses defaults",
			createFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				assert.Nil(t, req.Seed)
				assert.Empty(t, req.Layout)
				return &service.SessionInfo{ID: "a1b2", Layout: "classic"}, nil
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "a1b2", resp.ID)
			},
		},
		{
			name: "seed and layout are passed through",
			body: service.CreateSessionRequest{Seed: &seed, Layout: "endgame"},
			createFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				require.NotNil(t, req.Seed)
				assert.Equal(t, seed, *req.Seed)
				assert.Equal(t, "endgame", req.Layout)
				return &service.SessionInfo{ID: "c3d4", Layout: req.Layout, Seed: *req.Seed}, nil
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "endgame", resp.Layout)
				assert.Equal(t, seed, resp.Seed)
			},
		},
		{
			name:           "malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown layout",
			body: map[string]string{"layout": "nope"},
			createFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				return nil, fmt.Errorf("layout 'nope': %w", layouts.ErrLayoutNotFound)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service error",
			createFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				return nil, errors.New("service error")
			},
			expectedStatus: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "service error", errorOf(t, w))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := setupTestServer(t, &MockGameService{CreateSessionFunc: tt.createFunc})

			w := do(t, server, "POST", "/api/sessions", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute), GameState: &engine.GameState{Score: 10}},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-time.Hour), GameState: &engine.GameState{Score: 500}},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now, GameState: &engine.GameState{Score: 100}},
			}, nil
		},
	}
	server, _ := setupTestServer(t, mock)

	ids := func(w *httptest.ResponseRecorder) []string {
		var resp struct {
			Count    int                    `json:"count"`
			Total    int                    `json:"total"`
			Sessions []*service.SessionInfo `json:"sessions"`
		}
		parseResponse(t, w, &resp)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, len(resp.Sessions), resp.Count)
		var out []string
		for _, s := range resp.Sessions {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"mid", "old", "new"}},
		{"?sort=created", []string{"new", "mid", "old"}},
		{"?sort=created&order=asc", []string{"old", "mid", "new"}},
		{"?sort=score", []string{"new", "mid", "old"}},
		{"?sort=score&limit=1", []string{"new"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, server, "GET", "/api/sessions"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, ids(w))
		})
	}
}

func TestListSessions_Error(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return nil, errors.New("storage error")
		},
	})

	w := do(t, server, "GET", "/api/sessions", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "storage error", errorOf(t, w))
}

func TestGetSession(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "abcd" {
				return nil, fmt.Errorf("session %s: %w", sessionID, session.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID, Layout: "classic"}, nil
		},
	})

	w := do(t, server, "GET", "/api/sessions/abcd", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp service.SessionInfo
	parseResponse(t, w, &resp)
	assert.Equal(t, "abcd", resp.ID)

	w = do(t, server, "GET", "/api/sessions/zzzz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, errorOf(t, w), "session not found")
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	server, _ := setupTestServer(t, &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return session.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	})

	w := do(t, server, "DELETE", "/api/sessions/abcd", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abcd", deleted)

	w = do(t, server, "DELETE", "/api/sessions/gone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Game Operation Tests

func TestGetGameState(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{Score: 128, Status: engine.Playing, MaxTile: 64}, nil
		},
	})

	w := do(t, server, "GET", "/api/sessions/abcd/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state engine.GameState
	parseResponse(t, w, &state)
	assert.Equal(t, 128, state.Score)
	assert.Equal(t, 64, state.MaxTile)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		moveFunc       func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error)
		expectedStatus int
	}{
		{
			name: "valid move",
			body: map[string]interface{}{"direction": "left"},
			moveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
				assert.Equal(t, "abcd", sessionID)
				assert.Equal(t, "left", direction)
				assert.False(t, restart)
				return &service.MoveResult{Moved: true, ScoreGained: 4, GameState: &engine.GameState{Score: 4}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "restart flag is forwarded",
			body: map[string]interface{}{"direction": "up", "restart": true},
			moveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
				assert.True(t, restart)
				return &service.MoveResult{GameState: &engine.GameState{}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid direction",
			body: map[string]interface{}{"direction": "north"},
			moveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
				return nil, fmt.Errorf("%w: %q", engine.ErrInvalidDirection, direction)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing session",
			body: map[string]interface{}{"direction": "left"},
			moveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
				return nil, session.ErrSessionNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed body",
			body:           "direction=left",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := setupTestServer(t, &MockGameService{MoveFunc: tt.moveFunc})
			w := do(t, server, "POST", "/api/sessions/abcd/move", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestBulkMove(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
			assert.Equal(t, []string{"up", "left", "up"}, moves)
			assert.True(t, restart)
			return &service.BulkMoveResult{
				MovesExecuted:  3,
				RequestedMoves: 3,
				GameState:      &engine.GameState{Score: 12},
				EndScore:       12,
				ScoreDelta:     12,
			}, nil
		},
	})

	w := do(t, server, "POST", "/api/sessions/abcd/bulk-move", map[string]interface{}{
		"moves":   []string{"up", "left", "up"},
		"restart": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	assert.Equal(t, 3, resp.MovesExecuted)
	assert.Equal(t, 12, resp.ScoreDelta)
}

func TestRestart(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "gone" {
				return nil, session.ErrSessionNotFound
			}
			return &engine.GameState{Status: engine.Playing, EmptyCells: 14}, nil
		},
	})

	w := do(t, server, "POST", "/api/sessions/abcd/restart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, "Game restarted", resp.Message)
	require.NotNil(t, resp.State)
	assert.Equal(t, 14, resp.State.EmptyCells)

	w = do(t, server, "POST", "/api/sessions/gone/restart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			server, _ := setupTestServer(t, &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			})

			w := do(t, server, "GET", "/api/sessions/abcd/history"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListLayouts(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		ListLayoutsFunc: func(ctx context.Context) ([]*service.LayoutInfo, error) {
			return []*service.LayoutInfo{
				{LayoutID: "classic", Name: "classic"},
				{LayoutID: "endgame", Name: "endgame", MaxTile: 1024},
			}, nil
		},
	})

	w := do(t, server, "GET", "/api/layouts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []*service.LayoutInfo
	parseResponse(t, w, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "endgame", resp[1].LayoutID)
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{})

	w := do(t, server, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	parseResponse(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{})

	w := do(t, server, "GET", "/api/sessions/abcd/move", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebSocket_Rejections(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, session.ErrSessionNotFound
		},
	})

	w := do(t, server, "GET", "/ws", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, server, "GET", "/ws?session=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	noHub := NewServer(&MockGameService{}, nil, nil)
	w = do(t, noHub, "GET", "/ws?session=abcd", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleCommand_UnknownAction(t *testing.T) {
	server, _ := setupTestServer(t, &MockGameService{})

	_, err := server.HandleCommand(context.Background(), "abcd", websocket.Command{Action: "jump"})
	assert.Error(t, err)
}

// Live tests against a real service

type liveServer struct {
	*httptest.Server
	svc service.GameService
	hub *websocket.Hub
}

func newLiveServer(t *testing.T) *liveServer {
	t.Helper()
	svc := service.NewGameService(session.NewManager(), layouts.NewManager("../layouts"))
	server, hub := setupTestServer(t, svc)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return &liveServer{Server: ts, svc: svc, hub: hub}
}

func (ls *liveServer) dial(t *testing.T, sessionID string) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ls.URL, "http") + "/ws?session=" + sessionID
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return ls.hub.ClientCount(sessionID) == 1
	}, time.Second, 5*time.Millisecond)
	return conn
}

func readWS(t *testing.T, conn *gorillaws.Conn) websocket.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestLive_RESTMoveReachesWebSocket(t *testing.T) {
	ls := newLiveServer(t)
	seed := int64(7)
	info, err := ls.svc.CreateSession(context.Background(), service.CreateSessionRequest{Seed: &seed, Layout: "endgame"})
	require.NoError(t, err)

	conn := ls.dial(t, info.ID)

	resp, err := http.Post(ls.URL+"/api/sessions/"+info.ID+"/move", "application/json", strings.NewReader(`{"direction":"left"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readWS(t, conn)
	assert.Equal(t, websocket.EventStateUpdate, msg.Event)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, 2048, msg.GameState.MaxTile)
	assert.Equal(t, engine.Won, msg.GameState.Status)

	win := readWS(t, conn)
	assert.Equal(t, service.EventWin, win.Event)
}

func TestLive_WebSocketCommands(t *testing.T) {
	ls := newLiveServer(t)
	seed := int64(1)
	info, err := ls.svc.CreateSession(context.Background(), service.CreateSessionRequest{Seed: &seed})
	require.NoError(t, err)

	conn := ls.dial(t, info.ID)

	require.NoError(t, conn.WriteJSON(websocket.Command{Action: websocket.ActionMove, Direction: "sideways"}))
	reply := readWS(t, conn)
	assert.Equal(t, websocket.EventError, reply.Event)
	assert.Contains(t, reply.Error, "invalid direction")

	require.NoError(t, conn.WriteJSON(websocket.Command{Action: websocket.ActionRestart}))
	update := readWS(t, conn)
	assert.Equal(t, websocket.EventStateUpdate, update.Event)
	require.NotNil(t, update.GameState)
	assert.Equal(t, 0, update.GameState.Score)
	assert.Equal(t, engine.BoardSize*engine.BoardSize-engine.InitialTiles, update.GameState.EmptyCells)

	state, err := ls.svc.GetGameState(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, update.GameState.Grid, state.Grid)
}

func TestLive_MixedCaseURLReachesWebSocket(t *testing.T) {
	ls := newLiveServer(t)
	seed := int64(7)
	info, err := ls.svc.CreateSession(context.Background(), service.CreateSessionRequest{Seed: &seed, Layout: "endgame"})
	require.NoError(t, err)

	conn := ls.dial(t, info.ID)
	upper := strings.ToUpper(info.ID)

	resp, err := http.Post(ls.URL+"/api/sessions/"+upper+"/move", "application/json", strings.NewReader(`{"direction":"left"}`))
	require.NoError(t, err)
	var result service.MoveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, info.ID, result.SessionID)

	msg := readWS(t, conn)
	assert.Equal(t, websocket.EventStateUpdate, msg.Event)
	assert.Equal(t, info.ID, msg.SessionID)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, engine.Won, msg.GameState.Status)
	assert.Equal(t, service.EventWin, readWS(t, conn).Event)

	resp, err = http.Post(ls.URL+"/api/sessions/"+upper+"/restart", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	restarted := readWS(t, conn)
	assert.Equal(t, websocket.EventStateUpdate, restarted.Event)
	require.NotNil(t, restarted.GameState)
	assert.Equal(t, engine.Playing, restarted.GameState.Status)
}
