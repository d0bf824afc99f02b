// Package service provides the business logic layer for the 2048 game server.
//
// The service package implements:
//   - Multi-session game management
//   - Starting layout selection
//   - Move processing and event generation
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LayoutManager resolves starting layouts by name.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Each session owns its own engine, seeded from the session
// seed, so two sessions never share a board or a random source.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	layoutMgr := layouts.NewManager("layouts")
//	gameService := service.NewGameService(sessionMgr, layoutMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//
// Events:
//
// Every move reports a move event, one merge event per merge and a spawn event
// when a tile appeared. win and game_over are emitted on the move that
// changes the status, never again afterwards.
package service
