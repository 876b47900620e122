package memory

import (
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps the sticky conversation state (last view, last
// resolved mode, recently discussed symbols) in process memory.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, expired items purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// RememberSymbols appends newly discussed symbols, most recent last,
// keeping at most the ten latest without duplicates.
func (r *SessionRepository) RememberSymbols(sessionID string, symbols []string) {
	s, ok := r.Get(sessionID)
	if !ok || len(symbols) == 0 {
		return
	}
	for _, sym := range symbols {
		s.RecentSymbols = appendSymbol(s.RecentSymbols, sym)
	}
	if len(s.RecentSymbols) > 10 {
		s.RecentSymbols = s.RecentSymbols[len(s.RecentSymbols)-10:]
	}
	r.Save(s)
}

func appendSymbol(symbols []string, sym string) []string {
	for i, existing := range symbols {
		if existing == sym {
			// Move to the end so recency ordering holds
			return append(append(symbols[:i:i], symbols[i+1:]...), sym)
		}
	}
	return append(symbols, sym)
}
