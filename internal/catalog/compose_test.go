package catalog

import (
	"appdeck/internal/favorites"
	"appdeck/internal/scrapers/playstore"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// subscription is one call to fakeFavorites.Observe, tests push sets into it.
type subscription struct {
	ctx  context.Context
	sets chan favorites.Set
}

type fakeFavorites struct {
	subscriptions chan *subscription
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{subscriptions: make(chan *subscription, 16)}
}

func (f *fakeFavorites) Observe(ctx context.Context) <-chan favorites.Set {
	sub := &subscription{ctx: ctx, sets: make(chan favorites.Set)}
	out := make(chan favorites.Set)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case set, ok := <-sub.sets:
				if !ok {
					return
				}
				select {
				case out <- set:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	f.subscriptions <- sub
	return out
}

func (f *fakeFavorites) next(t testing.TB) *subscription {
	select {
	case sub := <-f.subscriptions:
		return sub
	case <-time.After(2 * time.Second):
		t.Fatal("favorites were never observed")
	}
	return nil
}

func (s *subscription) push(t testing.TB, set favorites.Set) {
	select {
	case s.sets <- set:
	case <-time.After(2 * time.Second):
		t.Fatal("favorites subscription is not receiving")
	}
}

func feed(t testing.TB, outcomes chan<- Outcome, outcome Outcome) {
	select {
	case outcomes <- outcome:
	case <-time.After(2 * time.Second):
		t.Fatal("outcome was not consumed")
	}
}

func next(t testing.TB, ch <-chan Outcome) Outcome {
	select {
	case outcome, ok := <-ch:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an outcome")
	}
	return Outcome{}
}

func requireClosed(t testing.TB, ch <-chan Outcome) {
	select {
	case outcome, ok := <-ch:
		if ok {
			t.Fatalf("expected stream to be closed, got %v", outcome)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream was never closed")
	}
}

func requireSilent(t testing.TB, ch <-chan Outcome) {
	select {
	case outcome, ok := <-ch:
		t.Fatalf("expected no emission, got %v (open: %v)", outcome, ok)
	case <-time.After(50 * time.Millisecond):
	}
}

var (
	appA = record("A", "com.a")
	appB = record("B", "com.b")
	appC = record("C", "com.c")
)

func TestComposeFiltersByLatestSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)
	out := Compose(ctx, outcomes, fake)

	feed(t, outcomes, Loading())
	require.Equal(t, Loading(), next(t, out))

	feed(t, outcomes, Success([]playstore.AppRecord{appA, appB, appC}))
	sub := fake.next(t)

	sub.push(t, favorites.NewSet("com.b"))
	require.Equal(t, Success([]playstore.AppRecord{appB}), next(t, out))

	sub.push(t, favorites.NewSet())
	require.Equal(t, Success([]playstore.AppRecord{}), next(t, out))

	sub.push(t, favorites.NewSet("com.c", "com.a"))
	require.Equal(t, Success([]playstore.AppRecord{appA, appC}), next(t, out))
}

func TestComposeForwardsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)
	out := Compose(ctx, outcomes, fake)

	feed(t, outcomes, Loading())
	require.Equal(t, Loading(), next(t, out))

	failure := Failure(RequestTimeout, context.DeadlineExceeded, []playstore.AppRecord{appA})
	feed(t, outcomes, failure)
	require.Equal(t, failure, next(t, out))

	// the error replaces a live subscription too
	feed(t, outcomes, Success([]playstore.AppRecord{appA}))
	sub := fake.next(t)
	sub.push(t, favorites.NewSet("com.a"))
	require.Equal(t, Success([]playstore.AppRecord{appA}), next(t, out))

	feed(t, outcomes, failure)
	require.Equal(t, failure, next(t, out))
	require.Error(t, sub.ctx.Err())
}

func TestComposeSwitchesToLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)
	out := Compose(ctx, outcomes, fake)

	feed(t, outcomes, Success([]playstore.AppRecord{appA, appB}))
	first := fake.next(t)
	first.push(t, favorites.NewSet("com.a", "com.c"))
	require.Equal(t, Success([]playstore.AppRecord{appA}), next(t, out))

	feed(t, outcomes, Success([]playstore.AppRecord{appA, appB, appC}))
	second := fake.next(t)
	require.Error(t, first.ctx.Err(), "previous subscription must be cancelled")
	require.NoError(t, second.ctx.Err())

	second.push(t, favorites.NewSet("com.a", "com.c"))
	require.Equal(t, Success([]playstore.AppRecord{appA, appC}), next(t, out))
}

func TestComposeFallsBackToEmptySet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)
	out := Compose(ctx, outcomes, fake)

	feed(t, outcomes, Success([]playstore.AppRecord{appA, appB}))
	sub := fake.next(t)
	sub.push(t, favorites.NewSet("com.b"))
	require.Equal(t, Success([]playstore.AppRecord{appB}), next(t, out))

	close(sub.sets)
	require.Equal(t, Success([]playstore.AppRecord{}), next(t, out))
	requireSilent(t, out)
}

func TestComposeCompletesAfterInner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)
	out := Compose(ctx, outcomes, fake)

	feed(t, outcomes, Success([]playstore.AppRecord{appA}))
	sub := fake.next(t)
	close(outcomes)

	sub.push(t, favorites.NewSet("com.a"))
	require.Equal(t, Success([]playstore.AppRecord{appA}), next(t, out))

	close(sub.sets)
	require.Equal(t, Success([]playstore.AppRecord{}), next(t, out))
	requireClosed(t, out)
}

func TestComposeCompletesWithoutInner(t *testing.T) {
	outcomes := make(chan Outcome, 2)
	outcomes <- Loading()
	outcomes <- Failure(NetworkUnavailable, playstore.ErrNetworkUnavailable, nil)
	close(outcomes)

	out := Compose(context.Background(), outcomes, newFakeFavorites())
	require.Equal(t, Loading(), next(t, out))
	require.Equal(t, NetworkUnavailable, next(t, out).Kind)
	requireClosed(t, out)
}

func TestComposeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fake := newFakeFavorites()
	outcomes := make(chan Outcome)

	var innerErrAtTeardown error
	outerCancelled := make(chan struct{})
	var sub *subscription
	out := compose(ctx, outcomes, fake, func() {
		innerErrAtTeardown = sub.ctx.Err()
		close(outerCancelled)
	})

	feed(t, outcomes, Success([]playstore.AppRecord{appA}))
	sub = fake.next(t)
	sub.push(t, favorites.NewSet("com.a"))
	require.Equal(t, Success([]playstore.AppRecord{appA}), next(t, out))

	cancel()
	requireClosed(t, out)

	<-outerCancelled
	require.Error(t, innerErrAtTeardown, "inner subscription must be torn down before the outer stream")
}
