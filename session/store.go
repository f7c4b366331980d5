package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saocarlos/refribot/config"

	"github.com/redis/go-redis/v9"
)

// Store maps a customer phone number to its live session. It is the sole
// owner of sessions: at most one session per phone exists at a time.
// Session metadata is mirrored into Redis when available, so an operator
// can watch active conversations; the mirror is best-effort and the store
// runs fine without Redis.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	redis    *redis.Client
	config   *config.Config
}

// NewStore creates a session store with an optional Redis mirror.
func NewStore(cfg *config.Config) *Store {
	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Redis unavailable, continue without it
			redisClient = nil
		}
	}

	return &Store{
		sessions: make(map[string]*Session),
		redis:    redisClient,
		config:   cfg,
	}
}

// GetOrCreate returns the session for a phone number, creating a fresh one
// at the start stage when none exists. The second return value reports
// whether a session was created by this call.
func (st *Store) GetOrCreate(ctx context.Context, phone string) (*Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[phone]; ok {
		return sess, false, nil
	}

	if len(st.sessions) >= st.config.MaxSessions {
		return nil, false, fmt.Errorf("maximum sessions reached")
	}

	sess := newSession(phone)
	st.sessions[phone] = sess
	st.mirror(ctx, sess)
	return sess, true, nil
}

// Get retrieves an existing session without creating one.
func (st *Store) Get(phone string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[phone]
	return sess, ok
}

// Remove evicts a session from the store.
func (st *Store) Remove(ctx context.Context, phone string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[phone]; !ok {
		return
	}
	delete(st.sessions, phone)
	st.unmirror(ctx, phone)
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// mirror writes session metadata to Redis. Caller holds the store lock.
func (st *Store) mirror(ctx context.Context, sess *Session) {
	if st.redis == nil {
		return
	}
	st.redis.HSet(ctx, "session:"+sess.Phone, map[string]interface{}{
		"created_at":    sess.CreatedAt.Format(time.RFC3339),
		"last_activity": sess.LastActivity.Format(time.RFC3339),
		"stage":         string(sess.Stage),
	})
	st.redis.SAdd(ctx, "active_sessions", sess.Phone)
	st.redis.Expire(ctx, "session:"+sess.Phone, st.config.SessionTimeout)
}

// unmirror removes session metadata from Redis. Caller holds the store lock.
func (st *Store) unmirror(ctx context.Context, phone string) {
	if st.redis == nil {
		return
	}
	st.redis.Del(ctx, "session:"+phone)
	st.redis.SRem(ctx, "active_sessions", phone)
}

// CleanupInactive removes sessions idle past the configured timeout.
// Abandoned carts just disappear; nothing is recorded for them.
func (st *Store) CleanupInactive(ctx context.Context) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	for phone, sess := range st.sessions {
		if now.Sub(sess.LastActivity) > st.config.SessionTimeout {
			delete(st.sessions, phone)
			st.unmirror(ctx, phone)
		}
	}
}

// StartCleanupRoutine runs periodic cleanup of inactive sessions until the
// context is cancelled.
func (st *Store) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.CleanupInactive(ctx)
		}
	}
}

// Shutdown drops all sessions and closes the Redis connection.
func (st *Store) Shutdown() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions = make(map[string]*Session)

	if st.redis != nil {
		st.redis.Close()
	}
}
