package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/game2048/game/engine"
)

type handlerFunc func(ctx context.Context, sessionID string, cmd Command) (*engine.GameState, error)

func (f handlerFunc) HandleCommand(ctx context.Context, sessionID string, cmd Command) (*engine.GameState, error) {
	return f(ctx, sessionID, cmd)
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, hub *Hub, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	before := hub.ClientCount(sessionID)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ClientCount(sessionID) == before+1
	}, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)
	require.NotNil(t, hub)
	assert.NotNil(t, hub.sessions)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.logger)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(nil)
	a := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	b := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}

	hub.registerClient(a)
	hub.registerClient(b)
	assert.Len(t, hub.sessions["s1"], 2)

	hub.unregisterClient(a)
	assert.Len(t, hub.sessions["s1"], 1)
	_, open := <-a.send
	assert.False(t, open, "send channel is closed on unregister")

	// unregistering twice is harmless
	hub.unregisterClient(a)

	hub.unregisterClient(b)
	assert.NotContains(t, hub.sessions, "s1")
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, sessionID: "s", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s", Event: "one"})
	hub.broadcastMessage(&Message{SessionID: "s", Event: "two"})

	assert.NotContains(t, hub.sessions, "s")
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*2; i++ {
			hub.BroadcastEvent("s", "tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked without a running hub")
	}
}

func TestHub_BroadcastToSession(t *testing.T) {
	hub, server := startHub(t)
	watcher := dial(t, hub, server, "game")
	other := dial(t, hub, server, "other")

	state := &engine.GameState{Score: 128, MaxTile: 64, Status: engine.Playing}
	hub.BroadcastToSession("game", state)

	msg := readMessage(t, watcher)
	assert.Equal(t, "game", msg.SessionID)
	assert.Equal(t, EventStateUpdate, msg.Event)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, 128, msg.GameState.Score)
	assert.Equal(t, 64, msg.GameState.MaxTile)

	// the other session sees nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_SessionIDCaseInsensitive(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "07fe")
	assert.Equal(t, 1, hub.ClientCount("07FE"))

	hub.BroadcastToSession("07FE", &engine.GameState{Score: 4})

	msg := readMessage(t, conn)
	assert.Equal(t, EventStateUpdate, msg.Event)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, 4, msg.GameState.Score)
}

func TestHub_BroadcastEvent(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "events")

	hub.BroadcastEvent("events", "win", map[string]int{"value": 2048})

	msg := readMessage(t, conn)
	assert.Equal(t, "win", msg.Event)
	assert.Equal(t, map[string]interface{}{"value": float64(2048)}, msg.Data)
}

func TestHub_Commands(t *testing.T) {
	hub, server := startHub(t)

	var (
		mu   sync.Mutex
		seen []Command
	)
	hub.SetCommandHandler(handlerFunc(func(ctx context.Context, sessionID string, cmd Command) (*engine.GameState, error) {
		mu.Lock()
		seen = append(seen, cmd)
		mu.Unlock()
		if cmd.Direction == "sideways" {
			return nil, errors.New("invalid direction")
		}
		return &engine.GameState{Score: 4}, nil
	}))

	sender := dial(t, hub, server, "cmd")
	watcher := dial(t, hub, server, "cmd")

	t.Run("move is applied and broadcast", func(t *testing.T) {
		require.NoError(t, sender.WriteJSON(Command{Action: ActionMove, Direction: "left"}))

		for _, conn := range []*websocket.Conn{sender, watcher} {
			msg := readMessage(t, conn)
			assert.Equal(t, EventStateUpdate, msg.Event)
			require.NotNil(t, msg.GameState)
			assert.Equal(t, 4, msg.GameState.Score)
		}
	})

	t.Run("restart", func(t *testing.T) {
		require.NoError(t, sender.WriteJSON(Command{Action: ActionRestart}))
		msg := readMessage(t, watcher)
		assert.Equal(t, EventStateUpdate, msg.Event)
		readMessage(t, sender)
	})

	t.Run("handler error goes to the sender only", func(t *testing.T) {
		require.NoError(t, sender.WriteJSON(Command{Action: ActionMove, Direction: "sideways"}))

		msg := readMessage(t, sender)
		assert.Equal(t, EventError, msg.Event)
		assert.Contains(t, msg.Error, "invalid direction")
	})

	t.Run("unknown action", func(t *testing.T) {
		require.NoError(t, sender.WriteJSON(Command{Action: "undo"}))
		msg := readMessage(t, sender)
		assert.Equal(t, EventError, msg.Event)
		assert.Contains(t, msg.Error, "undo")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("{")))
		msg := readMessage(t, sender)
		assert.Equal(t, EventError, msg.Event)
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, "left", seen[0].Direction)
	assert.Equal(t, ActionRestart, seen[1].Action)
}

func TestHub_CommandsWithoutHandler(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "readonly")

	require.NoError(t, conn.WriteJSON(Command{Action: ActionMove, Direction: "up"}))
	msg := readMessage(t, conn)
	assert.Equal(t, EventError, msg.Event)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, hub, server, "bye")

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ClientCount("bye") == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "s")
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount("s") == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connection is closed once the hub stops")
	assert.Equal(t, 0, hub.ClientCount("s"))
}
