package favorites

import (
	"appdeck/internal/components/chrono"
	"appdeck/internal/components/telemetry"
	"appdeck/internal/favorites/db"
	"appdeck/pkg/migrations"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func setup(t testing.TB) (*Store, *telemetry.RecorderAPI) {
	return setupWithClock(t, chrono.FixedTime{Time: epoch})
}

func setupWithClock(t testing.TB, clock chrono.TimeAPI) (*Store, *telemetry.RecorderAPI) {
	database, err := migrations.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	err = migrations.Migrate(database, db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})

	tel := telemetry.NewRecorderAPI()
	return NewStore(database, clock, tel), tel
}

func receive(t testing.TB, ch <-chan Set) Set {
	select {
	case set, ok := <-ch:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return set
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a favorites set")
	}
	return nil
}

func requireClosed(t testing.TB, ch <-chan Set) {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("stream was never closed")
		}
	}
}

func TestToggle(t *testing.T) {
	store, tel := setup(t)
	ctx := context.Background()

	favorited, err := store.Toggle(ctx, "com.example.a")
	require.NoError(t, err)
	require.True(t, favorited)

	favorited, err = store.Toggle(ctx, "com.example.b")
	require.NoError(t, err)
	require.True(t, favorited)

	set, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, NewSet("com.example.a", "com.example.b"), set)

	favorited, err = store.Toggle(ctx, "com.example.a")
	require.NoError(t, err)
	require.False(t, favorited)

	set, err = store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, NewSet("com.example.b"), set)

	_, err = store.Toggle(ctx, "")
	require.Error(t, err)

	require.Empty(t, tel.Reports("broken"))
}

func TestList(t *testing.T) {
	store, _ := setupWithClock(t, &steppingClock{now: epoch})
	ctx := context.Background()

	for _, id := range []string{"com.example.b", "com.example.a", "com.example.c"} {
		_, err := store.Toggle(ctx, id)
		require.NoError(t, err)
	}
	_, err := store.Toggle(ctx, "com.example.a")
	require.NoError(t, err)

	favorites, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	require.Equal(t, "com.example.b", favorites[0].Identifier)
	require.True(t, favorites[0].AddedAt.Equal(epoch.Add(time.Minute)))
	require.Equal(t, "com.example.c", favorites[1].Identifier)
	require.True(t, favorites[1].AddedAt.Equal(epoch.Add(3*time.Minute)))

	require.NoError(t, store.Close())
	_, err = store.List(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestObserve(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := store.Toggle(ctx, "com.example.a")
	require.NoError(t, err)

	stream := store.Observe(ctx)
	require.Equal(t, NewSet("com.example.a"), receive(t, stream))

	_, err = store.Toggle(ctx, "com.example.b")
	require.NoError(t, err)
	require.Equal(t, NewSet("com.example.a", "com.example.b"), receive(t, stream))

	_, err = store.Toggle(ctx, "com.example.a")
	require.NoError(t, err)
	require.Equal(t, NewSet("com.example.b"), receive(t, stream))

	cancel()
	requireClosed(t, stream)
}

func TestObserveConflates(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	stream := store.Observe(ctx)

	// nothing is received while these are committed
	for _, id := range []string{"com.a", "com.b", "com.c"} {
		_, err := store.Toggle(ctx, id)
		require.NoError(t, err)
	}

	require.Equal(t, NewSet("com.a", "com.b", "com.c"), receive(t, stream))

	select {
	case set := <-stream:
		t.Fatal("expected no pending sets, got", set)
	default:
	}
}

func TestCloseCompletesObservers(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	first := store.Observe(ctx)
	second := store.Observe(ctx)
	receive(t, first)
	receive(t, second)

	require.NoError(t, store.Close())
	requireClosed(t, first)
	requireClosed(t, second)

	// observing a closed store completes immediately
	requireClosed(t, store.Observe(ctx))

	_, err := store.Toggle(ctx, "com.example.a")
	require.ErrorIs(t, err, ErrClosed)
	_, err = store.Snapshot(ctx)
	require.ErrorIs(t, err, ErrClosed)

	require.NoError(t, store.Close())
}

func TestSet(t *testing.T) {
	set := NewSet("com.a", "com.a", "com.b")
	require.Len(t, set, 2)
	require.True(t, set.Has("com.a"))
	require.False(t, set.Has("com.c"))
	require.False(t, Set(nil).Has("com.a"))
}
