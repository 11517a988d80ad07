package favorites

import (
	"appdeck/internal/components/assert"
	"appdeck/internal/components/chrono"
	"appdeck/internal/components/telemetry"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	report_store_observe     = "store.observe"
	report_store_toggle      = "store.toggle"
	report_store_list        = "store.list"
	report_store_subscribers = "store.subscribers"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("favorites store is closed")

// Store persists the set of favorite identifiers and broadcasts every change of it
// to its observers. It is the only owner of the set.
type Store struct {
	db   *sql.DB
	time chrono.TimeAPI
	tel  telemetry.API

	// mutex serializes writes with their broadcast so that observers see
	// sets in commit order.
	mutex       sync.Mutex
	subscribers map[uint64]chan Set
	nextId      uint64
	closed      bool
	done        chan struct{}
}

// NewStore creates a Store over a database already migrated with db.Schema.
func NewStore(database *sql.DB, time chrono.TimeAPI, tel telemetry.API) *Store {
	assert.NotNil(database)
	assert.NotNil(time)
	assert.NotNil(tel)

	return &Store{
		db:          database,
		time:        time,
		tel:         telemetry.NewScopedAPI("favorites", tel),
		subscribers: map[uint64]chan Set{},
		done:        make(chan struct{}),
	}
}

func (s *Store) snapshot(ctx context.Context) (Set, error) {
	rows, err := s.db.QueryContext(ctx, "select identifier from favorite")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := Set{}
	for rows.Next() {
		var identifier string
		err := rows.Scan(&identifier)
		if err != nil {
			return nil, err
		}
		set[identifier] = struct{}{}
	}
	return set, rows.Err()
}

// Snapshot returns the current set of favorites.
func (s *Store) Snapshot(ctx context.Context) (Set, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.snapshot(ctx)
}

// Favorite is a favorite identifier along with when it was added.
type Favorite struct {
	Identifier string
	AddedAt    time.Time
}

// List returns every favorite, oldest first.
func (s *Store) List(ctx context.Context) ([]Favorite, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(
		ctx,
		"select identifier, created_at from favorite order by created_at asc, identifier asc",
	)
	if err != nil {
		s.tel.ReportBroken(report_store_list, err)
		return nil, err
	}
	defer rows.Close()

	var out []Favorite
	for rows.Next() {
		var identifier string
		var createdAt int64
		err := rows.Scan(&identifier, &createdAt)
		if err != nil {
			s.tel.ReportBroken(report_store_list, err)
			return nil, err
		}
		out = append(out, Favorite{
			Identifier: identifier,
			AddedAt:    time.Unix(createdAt, 0),
		})
	}
	return out, rows.Err()
}

// Observe returns a stream that starts with the current set and then receives
// every committed change. Slow receivers only see the latest set. The channel is
// closed when ctx is done, when the store is closed, or when the current set
// could not be read.
func (s *Store) Observe(ctx context.Context) <-chan Set {
	ch := make(chan Set, 1)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		close(ch)
		return ch
	}

	current, err := s.snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.tel.ReportBroken(report_store_observe, fmt.Errorf("read current set: %w", err))
		}
		close(ch)
		return ch
	}
	ch <- current

	id := s.nextId
	s.nextId++
	s.subscribers[id] = ch
	s.tel.ReportCount(report_store_subscribers, int64(len(s.subscribers)))

	go func() {
		select {
		case <-ctx.Done():
			s.unsubscribe(id)
		case <-s.done:
		}
	}()

	return ch
}

func (s *Store) unsubscribe(id uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch, ok := s.subscribers[id]
	if !ok {
		return
	}
	delete(s.subscribers, id)
	close(ch)
}

// offer replaces whatever set is pending on ch with set. Callers must hold the mutex,
// which makes the store the only sender.
func offer(ch chan Set, set Set) {
	for {
		select {
		case ch <- set:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Toggle adds identifier to the favorites if it is absent and removes it otherwise.
// It returns whether the identifier is a favorite after the call.
func (s *Store) Toggle(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, fmt.Errorf("toggle favorite: identifier is empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	favorited, err := s.toggle(ctx, identifier)
	if err != nil {
		s.tel.ReportBroken(report_store_toggle, err, identifier)
		return false, fmt.Errorf("toggle favorite %s: %w", identifier, err)
	}

	current, err := s.snapshot(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_toggle, fmt.Errorf("read set after toggle: %w", err), identifier)
		return favorited, nil
	}
	for _, ch := range s.subscribers {
		offer(ch, current)
	}

	return favorited, nil
}

func (s *Store) toggle(ctx context.Context, identifier string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "delete from favorite where identifier = ?", identifier)
	if err != nil {
		return false, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	favorited := deleted == 0
	if favorited {
		_, err = tx.ExecContext(
			ctx,
			"insert into favorite(identifier, created_at) values (?, ?)",
			identifier, s.time.Now().Unix(),
		)
		if err != nil {
			return false, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// Close completes every observer stream, it does not close the underlying database.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	return nil
}
