// Package session provides in-memory session management for the 2048 game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Idle session expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations.
// Sessions are service.Session values, each owning its own game engine
// seeded from the session seed. Get, Touch, List and Create hand out copies
// taken under the manager's lock, so only the manager writes LastAccessedAt.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand, two more
// whenever that width keeps colliding. Caller-chosen
// IDs may use letters, digits, '-' and '_'. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", 42, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Touch(sess.ID)
//
// Cleanup:
//
// Sessions are not persisted. CleanupExpiredSessions drops the ones that
// have not been touched within the given age.
package session
