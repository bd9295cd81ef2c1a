package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/poker/holdem"
)

func TestRegistry_createRoomValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.registry.CreateRoom(ctx, "bad", "p1", 1, 10, 0)
	assert.EqualError(t, err, "seat limit must be between 2 and 10")

	_, _, err = f.registry.CreateRoom(ctx, "bad", "p1", 11, 10, 0)
	assert.Error(t, err)

	_, _, err = f.registry.CreateRoom(ctx, "bad", "p1", 4, 0, 0)
	assert.EqualError(t, err, "minimum bet must be positive")

	_, _, err = f.registry.CreateRoom(ctx, "bad", "p1", 4, 10, 5)
	assert.EqualError(t, err, "maximum bet cannot be below the minimum bet")

	c, view, err := f.registry.CreateRoom(ctx, "good", "p1", 4, 10, 200)
	require.NoError(t, err)
	assert.Equal(t, holdem.StatusWaiting, view.Status)
	assert.Equal(t, "p1", view.Creator)
	assert.NotEmpty(t, c.RoomID())
}

func TestRegistry_coordinatorLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _, err := f.registry.CreateRoom(ctx, "lobby", "p1", 4, 10, 0)
	require.NoError(t, err)

	found, err := f.registry.Coordinator(ctx, c.RoomID())
	require.NoError(t, err)
	assert.Same(t, c, found)

	_, err = f.registry.Coordinator(ctx, "c0ffee00-0000-0000-0000-000000000000")
	assert.Equal(t, ErrRoomNotFound, err)
}

func TestRegistry_revivesRoomFromStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _, err := f.registry.CreateRoom(ctx, "sleepy", "p1", 4, 10, 0)
	require.NoError(t, err)
	_, err = c.Join(ctx, "p1", "p1", 1000)
	require.NoError(t, err)

	// a second registry over the same store picks the room up cold
	other := NewRegistry(f.store, Config{
		TurnTimeout:    30 * time.Second,
		ReconnectGrace: 60 * time.Second,
		Clock:          f.clock,
		RNG:            rng.NewSeeded(2),
	})

	revived, err := other.Coordinator(ctx, c.RoomID())
	require.NoError(t, err)

	view, err := revived.View(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, view.Players, 1)
	assert.Equal(t, "p1", view.Players[0].ID)
}

func TestRegistry_listOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, _, err := f.registry.CreateRoom(ctx, "older", "p1", 2, 10, 0)
	require.NoError(t, err)

	f.clock.Advance(time.Minute).MustWait(ctx)

	_, _, err = f.registry.CreateRoom(ctx, "newer", "p2", 4, 10, 0)
	require.NoError(t, err)

	list, err := f.registry.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// newest first
	assert.Equal(t, "newer", list[0].Name)
	assert.Equal(t, "older", list[1].Name)

	// a full room disappears from the lobby
	_, err = older.Join(ctx, "p1", "p1", 1000)
	require.NoError(t, err)
	_, err = older.Join(ctx, "p3", "p3", 1000)
	require.NoError(t, err)

	list, err = f.registry.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "newer", list[0].Name)
}

func TestRegistry_dropOnFinish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _, err := f.registry.CreateRoom(ctx, "brief", "p1", 2, 10, 0)
	require.NoError(t, err)

	_, err = c.End(ctx, "p1")
	require.NoError(t, err)

	_, err = f.registry.Coordinator(ctx, c.RoomID())
	assert.Equal(t, ErrRoomNotFound, err)
}
