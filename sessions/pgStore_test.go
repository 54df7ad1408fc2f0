package sessions

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPGStore connects to TEST_DATABASE_URL (a Postgres DSN) and recreates
// user_sessions. Tests using it are skipped when the variable is unset.
func newPGStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS user_sessions")
	require.NoError(t, err)

	store := NewPGStore(pool)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestPGStore_Lifecycle(t *testing.T) {
	store := newPGStore(t)
	ctx := context.Background()

	session, err := store.Create(ctx, 7, time.Hour)
	require.NoError(t, err)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, got.UserID)
	assert.WithinDuration(t, session.Expires, got.Expires, time.Second)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGStore_ExpiryAndPrune(t *testing.T) {
	store := newPGStore(t)
	ctx := context.Background()

	expired, err := store.Create(ctx, 1, -time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, 2, time.Hour)
	require.NoError(t, err)

	_, err = store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
