// Command game2048 serves and plays the 2048 sliding-tile game.
//
// Commands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server; spins up an internal HTTP API if none is reachable
//  3. "play" – local game in the terminal
//  4. "replay" – applies a move list to a seeded game and prints the result
//
// Settings come from an optional YAML file, the environment (a .env file is
// loaded first) and flags, in increasing order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/game2048/api"
	"github.com/wricardo/game2048/config"
	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/layouts"
	"github.com/wricardo/game2048/game/service"
	"github.com/wricardo/game2048/game/session"
	"github.com/wricardo/game2048/transport/mcp"
	"github.com/wricardo/game2048/transport/terminal"
	"github.com/wricardo/game2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (skipped when missing)",
				Value:   "config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "layouts-dir", Usage: "Directory containing starting layouts"},
			&cli.StringFlag{Name: "default-layout", Usage: "Layout new games start from when none is given"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action: runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run the MCP stdio server",
				Action:  runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Usage: "Random seed for reproducible spawns"},
					&cli.StringFlag{Name: "layout", Usage: "Starting layout"},
					&cli.BoolFlag{Name: "mute", Usage: "Disable sound"},
				},
				Action: runPlay,
			},
			{
				Name:  "replay",
				Usage: "Apply a comma-separated move list to a seeded game and print the result",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Usage: "Random seed", Required: true},
					&cli.StringFlag{Name: "moves", Usage: "Moves, e.g. left,up,up,right", Required: true},
					&cli.StringFlag{Name: "layout", Usage: "Starting layout"},
				},
				Action: runReplay,
			},
		},
	}
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.String("port")
	}
	if cmd.IsSet("layouts-dir") {
		cfg.Layouts.Dir = cmd.String("layouts-dir")
	}
	if cmd.IsSet("default-layout") {
		cfg.Layouts.Default = cmd.String("default-layout")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return cfg, cfg.Validate()
}

// newLayouts opens the layout directory and applies the configured default
func newLayouts(cfg *config.Config) (*layouts.Manager, error) {
	manager := layouts.NewManager(cfg.Layouts.Dir)
	if cfg.Layouts.Default != "" {
		if err := manager.SetDefault(cfg.Layouts.Default); err != nil {
			return nil, fmt.Errorf("default layout '%s': %w", cfg.Layouts.Default, err)
		}
	}
	return manager, nil
}

// newServices wires the session store, layouts and game service
func newServices(cfg *config.Config) (*session.Manager, service.GameService, error) {
	layoutManager, err := newLayouts(cfg)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.NewManager()
	return sessions, service.NewGameService(sessions, layoutManager), nil
}

// newHandler combines the REST API and the /mcp bridge
func newHandler(svc service.GameService, hub *websocket.Hub, baseURL string, logger *slog.Logger) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svc, hub, logger))
	mainRouter.Handle("/mcp", mcp.NewClient(baseURL).HTTPHandler())
	return mainRouter
}

// localURL is the URL this process reaches its own API on
func localURL(cfg *config.Config) string {
	host := cfg.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, cfg.Port)
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel. It
// shuts down gracefully on SIGINT/SIGTERM.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "app", AppName, "version", Version, "mode", "serve")

	sessions, svc, err := newServices(cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	handler := newHandler(svc, hub, localURL(cfg), logger)
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, sessions, cfg.Session.TTL, cfg.Session.CleanupInterval, logger)
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, cfg.Ngrok, handler, logger); err != nil {
				logger.Error("ngrok tunnel failed", "error", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			"addr", cfg.Addr(),
			"api", localURL(cfg)+"/api",
			"ws", strings.Replace(localURL(cfg), "http", "ws", 1)+"/ws?session=<session_id>",
			"mcp", localURL(cfg)+"/mcp")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		stop()
		wg.Wait()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl, until ctx is done
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed, "remaining", manager.Count())
			}
		}
	}
}

// serveNgrok serves handler through an ngrok tunnel until ctx is done
func serveNgrok(ctx context.Context, cfg config.Ngrok, handler http.Handler, logger *slog.Logger) error {
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", "domain", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	logger.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", url,
		"api", url+"/api",
		"ws", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("ngrok tunnel closed")
	return nil
}

// apiReachable reports whether a game API answers its health check at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves a fresh API on a random loopback port and returns its URL
func startInternalAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	sessions, svc, err := newServices(cfg)
	if err != nil {
		return "", err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	go sessionCleanupRoutine(ctx, sessions, cfg.Session.TTL, cfg.Session.CleanupInterval, logger)

	httpServer := &http.Server{Handler: api.NewServer(svc, hub, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	baseURL := "http://" + listener.Addr().String()
	logger.Info("internal HTTP server started", "url", baseURL)
	return baseURL, nil
}

// runStdioMCP runs an MCP stdio server. It reuses an API already running on
// the configured port, else starts an internal one. Logs go to stderr since
// stdout carries the protocol.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg, os.Stderr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := localURL(cfg)
	logger.Info("checking for external API server", "url", baseURL)
	if apiReachable(baseURL) {
		logger.Info("MCP stdio server ready", "api", baseURL, "internal", false)
	} else {
		baseURL, err = startInternalAPI(ctx, cfg, logger)
		if err != nil {
			return err
		}
		logger.Info("MCP stdio server ready", "api", baseURL, "internal", true)
	}

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// newLocalEngine builds an engine for the offline commands
func newLocalEngine(cfg *config.Config, seed int64, layoutName string) (*engine.GameEngine, error) {
	manager, err := newLayouts(cfg)
	if err != nil {
		return nil, err
	}

	layout := manager.GetDefault()
	if layoutName != "" {
		layout, err = manager.LoadLayout(layoutName)
		if err != nil {
			return nil, fmt.Errorf("layout '%s': %w", layoutName, err)
		}
	}

	return engine.NewEngineFromLayout(layout, engine.NewSeededSource(seed))
}

// runPlay runs the terminal client
func runPlay(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if cmd.IsSet("seed") {
		seed = cmd.Int64("seed")
	}
	eng, err := newLocalEngine(cfg, seed, cmd.String("layout"))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}

	var sound terminal.Sound = terminal.Silent{}
	if !cmd.Bool("mute") {
		if beeper, err := terminal.NewBeeper(); err == nil {
			sound = beeper
		}
	}
	defer sound.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = terminal.NewGame(screen, eng, sound).Run(ctx)
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	state := eng.GetState()
	fmt.Fprintf(cmd.Root().Writer, "Final score: %d (max tile %d, seed %d)\n", state.Score, state.MaxTile, seed)
	return nil
}

// parseMoves splits "left, up,RIGHT" into directions
func parseMoves(s string) ([]engine.Direction, error) {
	var moves []engine.Direction
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		dir, err := engine.ParseDirection(field)
		if err != nil {
			return nil, err
		}
		moves = append(moves, dir)
	}
	return moves, nil
}

// runReplay applies a move list to a seeded game and prints the outcome
func runReplay(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	moves, err := parseMoves(cmd.String("moves"))
	if err != nil {
		return err
	}

	eng, err := newLocalEngine(cfg, cmd.Int64("seed"), cmd.String("layout"))
	if err != nil {
		return err
	}

	outcomes, err := eng.BulkMove(moves)
	if err != nil {
		return err
	}

	printReplay(cmd.Root().Writer, eng, len(outcomes), len(moves))
	return nil
}

func printReplay(w io.Writer, eng *engine.GameEngine, applied, requested int) {
	state := eng.GetState()
	fmt.Fprint(w, eng.Board().String())
	fmt.Fprintf(w, "Score: %d\n", state.Score)
	fmt.Fprintf(w, "Max Tile: %d\n", state.MaxTile)
	fmt.Fprintf(w, "Moves: %d/%d\n", applied, requested)
	fmt.Fprintf(w, "Status: %s\n", state.Status)
}
