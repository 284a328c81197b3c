package suggestions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noExpire(*ReviewSession) {}

func TestSessionResolvesExactlyOnce(t *testing.T) {
	st := newSessionStore()
	session := st.open("g1", 1, "reviewer", VerdictDeny, time.Minute, noExpire)

	var got []string
	fired := session.resolve("duplicate of #3", func(reason string) {
		got = append(got, reason)
	})
	assert.True(t, fired)

	fired = session.resolve("second attempt", func(reason string) {
		got = append(got, reason)
	})
	assert.False(t, fired)

	require.Len(t, got, 1)
	assert.Equal(t, "duplicate of #3", got[0])
}

func TestSessionExpiresWithEmptyReason(t *testing.T) {
	st := newSessionStore()

	expired := make(chan *ReviewSession, 1)
	st.open("g1", 1, "reviewer", VerdictDeny, 10*time.Millisecond, func(s *ReviewSession) {
		expired <- s
	})

	select {
	case s := <-expired:
		assert.Equal(t, "g1", s.GuildID)
		assert.Equal(t, 1, s.Number)
		assert.Equal(t, VerdictDeny, s.Verdict)
	case <-time.After(time.Second):
		t.Fatal("session did not expire")
	}

	// The expired session is gone; a late submission finds nothing.
	_, ok := st.take("g1", 1, "reviewer")
	assert.False(t, ok)
}

func TestSubmissionBeatsTimer(t *testing.T) {
	st := newSessionStore()

	expired := make(chan struct{}, 1)
	st.open("g1", 1, "reviewer", VerdictDeny, 50*time.Millisecond, func(*ReviewSession) {
		expired <- struct{}{}
	})

	session, ok := st.take("g1", 1, "reviewer")
	require.True(t, ok)
	assert.True(t, session.resolve("too vague", func(string) {}))

	select {
	case <-expired:
		t.Fatal("timer fired after the reason was submitted")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestOpenPublishesSessionWithArmedTimer(t *testing.T) {
	st := newSessionStore()
	st.open("g1", 1, "reviewer", VerdictDeny, time.Minute, noExpire)

	// A submission immediately after the click must observe the deadline
	// timer, or resolving could leave it running.
	session, ok := st.take("g1", 1, "reviewer")
	require.True(t, ok)
	assert.NotNil(t, session.timer)
	assert.True(t, session.resolve("too vague", func(string) {}))
}

func TestRepeatedOpenReplacesSession(t *testing.T) {
	st := newSessionStore()

	first := st.open("g1", 1, "reviewer", VerdictDeny, time.Minute, noExpire)
	second := st.open("g1", 1, "reviewer", VerdictDeny, time.Minute, noExpire)

	taken, ok := st.take("g1", 1, "reviewer")
	require.True(t, ok)
	assert.Same(t, second, taken)

	// The replaced session was pre-resolved and can no longer fire.
	assert.False(t, first.resolve("late", func(string) {}))
}

func TestSessionsAreKeyedPerReviewer(t *testing.T) {
	st := newSessionStore()

	st.open("g1", 1, "alice", VerdictDeny, time.Minute, noExpire)
	st.open("g1", 1, "bob", VerdictApprove, time.Minute, noExpire)

	alice, ok := st.take("g1", 1, "alice")
	require.True(t, ok)
	assert.Equal(t, VerdictDeny, alice.Verdict)

	bob, ok := st.take("g1", 1, "bob")
	require.True(t, ok)
	assert.Equal(t, VerdictApprove, bob.Verdict)

	_, ok = st.take("g1", 1, "alice")
	assert.False(t, ok)
}
