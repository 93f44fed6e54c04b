package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Registry keeps live sessions in memory and rebuilds evicted ones from
// storage on their next request.
type Registry struct {
	factory *Factory
	idle    time.Duration
	logger  log.FieldLogger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(factory *Factory, idle time.Duration, logger log.FieldLogger) *Registry {
	return &Registry{
		factory:  factory,
		idle:     idle,
		logger:   logger.WithField("component", "sessions"),
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

func key(deviceID, sessionID string) string { return deviceID + "/" + sessionID }

// Get returns the live session or builds it. Building reads storage and
// runs without the registry lock; when two requests race, the first stored
// session wins and the other build is dropped.
func (r *Registry) Get(ctx context.Context, deviceID, sessionID string) *Session {
	k := key(deviceID, sessionID)

	r.mu.Lock()
	s, ok := r.sessions[k]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
		return s
	}

	built := r.factory.Build(ctx, deviceID, sessionID)

	r.mu.Lock()
	if s, ok = r.sessions[k]; !ok {
		s = built
		r.sessions[k] = s
		r.logger.WithField("session_id", sessionID).Debug("session loaded")
	}
	r.mu.Unlock()

	s.touch(r.now())
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were dropped.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, s := range r.sessions {
		if s.idleSince(now) > r.idle {
			delete(r.sessions, k)
			n++
		}
	}
	return n
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.WithField("evicted", n).Info("idle sessions evicted")
			}
		}
	}
}
