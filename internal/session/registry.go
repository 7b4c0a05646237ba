package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/MegaGrindStone/asisten-kepsek/internal/metrics"
	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Registry keeps the live sessions of the process. It holds at most a fixed number of sessions; when a
// new one is created beyond that, the least recently used session is evicted and its conversation is
// gone. Nothing is persisted.
type Registry struct {
	mu       sync.Mutex
	cache    *lru.Cache
	defaults models.Settings
	notify   func(*Session)

	logger *slog.Logger
}

// NewRegistry creates a registry holding at most size sessions. New sessions start with defaults and
// report their changes to notify, which may be nil.
func NewRegistry(size int, defaults models.Settings, notify func(*Session), logger *slog.Logger) (*Registry, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default settings: %w", err)
	}

	r := &Registry{
		defaults: defaults,
		notify:   notify,
		logger:   logger.With(slog.String("module", "session")),
	}
	cache, err := lru.NewWithEvict(size, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) onEvict(key, _ any) {
	metrics.SessionsActive.Dec()
	r.logger.Info("Session ended", slog.Any("sessionID", key))
}

// Get returns the live session with the given ID.
func (r *Registry) Get(id string) (*Session, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// GetOrCreate returns the live session with the given ID, or starts a new session with a fresh ID when
// there is none. created reports whether a new session was started.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}

	s = New(uuid.New().String(), r.defaults, WithNotify(r.notify))
	r.cache.Add(s.ID(), s)
	metrics.SessionsActive.Inc()
	r.logger.Info("Session started", slog.String("sessionID", s.ID()))
	return s, true
}

// End removes the session with the given ID, discarding its conversation.
func (r *Registry) End(id string) {
	r.cache.Remove(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}
