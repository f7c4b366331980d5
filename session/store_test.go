package session

import (
	"context"
	"testing"
	"time"

	"github.com/saocarlos/refribot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxSessions:    10,
		SessionTimeout: 30 * time.Minute,
		// No Redis in tests
		RedisURL: "",
	}
}

func TestGetOrCreate(t *testing.T) {
	st := NewStore(testConfig())
	ctx := context.Background()

	sess, created, err := st.GetOrCreate(ctx, "+551199999")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StageStart, sess.Stage)
	assert.Empty(t, sess.Messages)
	assert.Empty(t, sess.Order.Flavors)

	again, created, err := st.GetOrCreate(ctx, "+551199999")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, sess, again)
	assert.Equal(t, 1, st.Count())
}

func TestGetOrCreateMaxSessions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	st := NewStore(cfg)
	ctx := context.Background()

	_, _, err := st.GetOrCreate(ctx, "+551100001")
	require.NoError(t, err)

	_, _, err = st.GetOrCreate(ctx, "+551100002")
	assert.Error(t, err)

	// Existing sessions are still reachable at the cap
	_, created, err := st.GetOrCreate(ctx, "+551100001")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRemove(t *testing.T) {
	st := NewStore(testConfig())
	ctx := context.Background()

	_, _, err := st.GetOrCreate(ctx, "+551199999")
	require.NoError(t, err)

	st.Remove(ctx, "+551199999")
	_, ok := st.Get("+551199999")
	assert.False(t, ok)
	assert.Zero(t, st.Count())

	// Removing an absent session is a no-op
	st.Remove(ctx, "+551199999")
}

func TestCleanupInactive(t *testing.T) {
	st := NewStore(testConfig())
	ctx := context.Background()

	stale, _, err := st.GetOrCreate(ctx, "+551100001")
	require.NoError(t, err)
	fresh, _, err := st.GetOrCreate(ctx, "+551100002")
	require.NoError(t, err)

	stale.LastActivity = time.Now().Add(-time.Hour)
	fresh.LastActivity = time.Now()

	st.CleanupInactive(ctx)

	_, ok := st.Get("+551100001")
	assert.False(t, ok)
	_, ok = st.Get("+551100002")
	assert.True(t, ok)
}

func TestSessionReset(t *testing.T) {
	sess := newSession("+551199999")
	sess.Append(RoleUser, "quero 2 uva")
	sess.Stage = StageFinalized
	sess.Order.Flavors = []string{"uva"}
	sess.Order.Quantities = []string{"2"}
	sess.Order.CEP = "13560-970"
	sess.Order.Payment = "Pix"

	sess.Reset()

	assert.Equal(t, StageStart, sess.Stage)
	assert.Empty(t, sess.Order.Flavors)
	assert.Empty(t, sess.Order.Quantities)
	assert.Empty(t, sess.Order.CEP)
	assert.Empty(t, sess.Order.Payment)
	// Transcript survives the reset
	assert.Len(t, sess.Messages, 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	sess := newSession("+551199999")
	sess.Append(RoleUser, "oi")

	snap := sess.Snapshot()
	sess.Append(RoleAssistant, "olá")

	assert.Len(t, snap, 1)
	assert.Len(t, sess.Messages, 2)
}
