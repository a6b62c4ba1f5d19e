package pending

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, 10*time.Minute), mr
}

func TestStorePutTake(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sel := Selection{
		Action:  ActionCancel,
		Options: []uuid.UUID{uuid.New(), uuid.New()},
		Names:   []string{"Juan Pérez", "Juana García"},
	}
	require.NoError(t, store.Put(ctx, "+5218111222333", sel))

	got, err := store.Take(ctx, "+5218111222333")
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, got.Action)
	assert.Equal(t, sel.Options, got.Options)

	// Consumed: a second reply finds nothing.
	_, err = store.Take(ctx, "+5218111222333")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+5218111222333", Selection{Action: ActionSchedule}))
	mr.FastForward(11 * time.Minute)

	_, err := store.Get(ctx, "+5218111222333")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestStorePutReplaces(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "+5218111222333", Selection{Action: ActionSchedule}))
	require.NoError(t, store.Put(ctx, "+5218111222333", Selection{Action: ActionReschedule}))

	got, err := store.Get(ctx, "+5218111222333")
	require.NoError(t, err)
	assert.Equal(t, ActionReschedule, got.Action)
}

func TestStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx, "+5218111222333"))

	require.NoError(t, store.Put(ctx, "+5218111222333", Selection{Action: ActionCancel}))
	require.NoError(t, store.Clear(ctx, "+5218111222333"))
	_, err := store.Get(ctx, "+5218111222333")
	assert.ErrorIs(t, err, ErrNoSelection)
}
