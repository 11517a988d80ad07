package catalog

import (
	"appdeck/internal/scrapers/playstore"
	"context"
)

// Compose restricts every Success of outcomes to the records that are in the
// latest favorite set. Loading and Error pass through unchanged.
//
// Each Success starts a new subscription to favorites, the previous one is
// cancelled and awaited first so a stale catalog never emits after a newer
// outcome. If the favorites stream completes on its own, the view falls back to
// an empty set once. The output closes after outcomes closes and the current
// subscription completes, or when ctx is done.
func Compose(ctx context.Context, outcomes <-chan Outcome, favorites FavoriteSource) <-chan Outcome {
	return compose(ctx, outcomes, favorites, func() {})
}

// inner is a running subscription to the favorites of one catalog.
type inner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (i *inner) stop() {
	if i == nil {
		return
	}
	i.cancel()
	<-i.done
}

func compose(
	ctx context.Context,
	outcomes <-chan Outcome,
	favorites FavoriteSource,
	cancelOuter func(),
) <-chan Outcome {
	out := make(chan Outcome)
	go func() {
		var active *inner

		defer close(out)
		defer cancelOuter()
		defer func() {
			active.stop()
		}()

		for outcomes != nil {
			select {
			case <-ctx.Done():
				return
			case outcome, ok := <-outcomes:
				if !ok {
					outcomes = nil
					break
				}

				active.stop()
				active = nil

				if outcome.State == StateSuccess {
					active = observe(ctx, outcome.Records, favorites, out)
					continue
				}
				if !send(ctx, out, outcome) {
					return
				}
			}
		}

		if active != nil {
			select {
			case <-ctx.Done():
			case <-active.done:
			}
		}
	}()
	return out
}

func observe(
	ctx context.Context,
	records []playstore.AppRecord,
	favorites FavoriteSource,
	out chan<- Outcome,
) *inner {
	innerCtx, cancel := context.WithCancel(ctx)
	i := &inner{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(i.done)
		defer cancel()

		sets := favorites.Observe(innerCtx)
		for {
			select {
			case <-innerCtx.Done():
				return
			case set, ok := <-sets:
				if !ok {
					send(innerCtx, out, Success(Filter(records, nil)))
					return
				}
				if !send(innerCtx, out, Success(Filter(records, set))) {
					return
				}
			}
		}
	}()

	return i
}
