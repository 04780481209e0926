package di

import (
	"github.com/redis/go-redis/v9"

	"psx_backend/internal/feature/auth/usecase"
	"psx_backend/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to an in-memory store.
func NewSessionRepository(rdb *redis.Client) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return session.NewSessionMemory()
}
