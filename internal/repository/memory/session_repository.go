package memory

import (
	"time"

	"poetic-camera-be/pkg/pipeline"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps pipeline sessions in memory. Cached results live as
// long as the session does; only the pipeline's reset-on-identity-change
// semantics invalidate them, not a per-result TTL.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions idle for an hour are purged, with a sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *pipeline.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*pipeline.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*pipeline.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
