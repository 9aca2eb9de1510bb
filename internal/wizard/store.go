package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[S any] struct {
	owner   string
	state   S
	ctx     context.Context
	cancel  context.CancelFunc
	busy    bool
	touched time.Time
}

// store keeps wizard sessions in memory. Each session owns a context that is cancelled
// when the session closes, which aborts any simulated delay in flight.
type store[S any] struct {
	mu       sync.Mutex
	sessions map[string]*entry[S]
	ttl      time.Duration
	now      func() time.Time
}

func newStore[S any](ttl time.Duration) *store[S] {
	return &store[S]{
		sessions: make(map[string]*entry[S]),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *store[S]) open(owner string, state S, view func(id string, st *S)) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry[S]{owner: owner, state: state, ctx: ctx, cancel: cancel, touched: s.now()}
	s.sessions[id] = e
	if view != nil {
		view(id, &e.state)
	}
	return id
}

func (s *store[S]) lookup(owner, id string) (*entry[S], error) {
	e, ok := s.sessions[id]
	if !ok || e.owner != owner {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// read runs fn under the lock without touching the session
func (s *store[S]) read(owner, id string, fn func(st *S, busy bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(owner, id)
	if err != nil {
		return err
	}
	fn(&e.state, e.busy)
	return nil
}

// update applies a synchronous change. The state is left as it was when fn fails.
func (s *store[S]) update(owner, id string, fn func(st *S) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(owner, id)
	if err != nil {
		return err
	}
	if e.busy {
		return ErrBusy
	}

	next := e.state
	if err := fn(&next); err != nil {
		return err
	}
	e.state = next
	e.touched = s.now()
	return nil
}

// begin marks the session busy for an asynchronous step after check approves it, and
// returns the session context to wait on
func (s *store[S]) begin(owner, id string, check func(st *S) error) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(owner, id)
	if err != nil {
		return nil, err
	}
	if e.busy {
		return nil, ErrBusy
	}
	if err := check(&e.state); err != nil {
		return nil, err
	}
	e.busy = true
	e.touched = s.now()
	return e.ctx, nil
}

// finish applies the result of an asynchronous step. It fails with ErrSessionClosed when
// the session begun with ctx no longer exists, in which case nothing is applied. When
// remove is set and fn succeeds the session is closed.
func (s *store[S]) finish(id string, ctx context.Context, remove bool, fn func(st *S) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || e.ctx != ctx || ctx.Err() != nil {
		return ErrSessionClosed
	}

	e.busy = false
	e.touched = s.now()

	next := e.state
	if err := fn(&next); err != nil {
		return err
	}
	e.state = next

	if remove {
		e.cancel()
		delete(s.sessions, id)
	}
	return nil
}

// release clears the busy flag after an asynchronous step was abandoned
func (s *store[S]) release(id string, ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok && e.ctx == ctx {
		e.busy = false
	}
}

// close discards the session and cancels anything waiting on it
func (s *store[S]) close(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(owner, id)
	if err != nil {
		return err
	}
	e.cancel()
	delete(s.sessions, id)
	return nil
}

func (s *store[S]) sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.sessions {
		if !e.busy && now.Sub(e.touched) > s.ttl {
			e.cancel()
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *store[S]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
