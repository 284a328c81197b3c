package suggestions

import (
	"fmt"
	"sync"
	"time"
)

// reasonWindow is how long a reviewer has to submit a reason before the
// outcome proceeds without one.
const reasonWindow = 5 * time.Minute

// ReviewSession tracks one reviewer's pending decision on one suggestion
// while a reason is being collected. It resolves exactly once: either with
// the submitted reason, or with an empty reason when the window expires.
type ReviewSession struct {
	GuildID    string
	Number     int
	ReviewerID string
	Verdict    string

	StartedAt time.Time

	timer *time.Timer
	once  sync.Once
}

// sessionKey identifies a session by guild, suggestion and reviewer, so two
// reviewers looking at the same suggestion never share state.
func sessionKey(guildID string, number int, reviewerID string) string {
	return fmt.Sprintf("%s:%d:%s", guildID, number, reviewerID)
}

// resolve fires fn at most once and stops the deadline timer. Returns true
// on the first call, false on every later one.
func (s *ReviewSession) resolve(reason string, fn func(reason string)) bool {
	fired := false
	s.once.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		fired = true
		fn(reason)
	})
	return fired
}

// sessionStore holds the in-flight review sessions in memory only. A restart
// drops them and the affected suggestions simply remain open for a fresh
// decision.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ReviewSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*ReviewSession)}
}

// open registers a new session and arms its deadline. onExpire runs in the
// timer goroutine when the window lapses with no submission; it goes through
// the same single-resolution gate as a submitted reason.
func (st *sessionStore) open(guildID string, number int, reviewerID, verdict string, window time.Duration, onExpire func(*ReviewSession)) *ReviewSession {
	key := sessionKey(guildID, number, reviewerID)

	session := &ReviewSession{
		GuildID:    guildID,
		Number:     number,
		ReviewerID: reviewerID,
		Verdict:    verdict,
		StartedAt:  time.Now(),
	}

	st.mu.Lock()
	// A repeated click replaces the previous session; the old timer must not
	// fire a second outcome for the same reviewer.
	if prev, ok := st.sessions[key]; ok {
		prev.resolve("", func(string) {})
	}
	// The timer is armed before the session is published, and the expiry
	// callback takes st.mu first, so every reader of session.timer is
	// ordered after this write.
	session.timer = time.AfterFunc(window, func() {
		st.remove(key, session)
		if session.resolve("", func(string) {}) {
			onExpire(session)
		}
	})
	st.sessions[key] = session
	st.mu.Unlock()
	return session
}

// take claims the session for (guild, number, reviewer) if one is waiting.
// The caller owns the resolution; later submissions find nothing.
func (st *sessionStore) take(guildID string, number int, reviewerID string) (*ReviewSession, bool) {
	key := sessionKey(guildID, number, reviewerID)

	st.mu.Lock()
	defer st.mu.Unlock()
	session, ok := st.sessions[key]
	if !ok {
		return nil, false
	}
	delete(st.sessions, key)
	return session, true
}

// remove deletes the session only if it is still the stored one, so an
// expiring timer never evicts a newer session under the same key.
func (st *sessionStore) remove(key string, session *ReviewSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sessions[key] == session {
		delete(st.sessions, key)
	}
}
