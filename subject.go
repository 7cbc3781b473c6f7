package reactor

import (
	"sync"

	"github.com/google/uuid"
)

// Subject is a hot object that is both a sink (Send) and a signal
// (AsSignal): PassthroughSubject, ReplaySubject and ReplayOneSubject all
// satisfy it.
type Subject[T, E any] interface {
	Send(Event[T, E])
	AsSignal() Signal[T, E]
}

type registryEntry[T, E any] struct {
	token    uuid.UUID
	observer Observer[T, E]
}

// registry is the token-keyed, insertion-ordered observer table shared by
// every subject variant. Removal during iteration is deferred: disposing a
// subscription only marks its token for removal, and the mark is applied
// at the next emission (pruneLocked, called from Send), so an observer that
// re-entrantly subscribes or disposes during its own callback never
// corrupts an in-flight iteration.
//
// Send snapshots the table and releases the lock before invoking any
// observer, so a re-entrant Send or AsSignal call from inside a callback
// takes a fresh lock rather than recursing into a held one. That gives
// callers the same reentrancy guarantee a literal recursive mutex would,
// without needing one — Go's sync.Mutex isn't reentrant.
type registry[T, E any] struct {
	mu             sync.Mutex
	entries        []registryEntry[T, E]
	pendingRemoval map[uuid.UUID]bool
	terminated     bool
}

func (r *registry[T, E]) pruneLocked() {
	if len(r.pendingRemoval) == 0 {
		return
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if r.pendingRemoval[e.token] {
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	r.pendingRemoval = nil
}

func (r *registry[T, E]) addLocked(o Observer[T, E]) uuid.UUID {
	token := uuid.New()
	r.entries = append(r.entries, registryEntry[T, E]{token: token, observer: o})
	return token
}

func (r *registry[T, E]) snapshotLocked() []registryEntry[T, E] {
	return append([]registryEntry[T, E](nil), r.entries...)
}

func (r *registry[T, E]) remove(token uuid.UUID) {
	r.mu.Lock()
	if r.pendingRemoval == nil {
		r.pendingRemoval = make(map[uuid.UUID]bool)
	}
	r.pendingRemoval[token] = true
	r.mu.Unlock()
}

func deliver[T, E any](snapshot []registryEntry[T, E], ev Event[T, E]) {
	for _, e := range snapshot {
		e.observer(ev)
	}
}

// PassthroughSubject buffers nothing: only observers present at the moment
// of a Send see that event. A subscriber arriving after termination gets
// no delivery at all, since there is nothing buffered to replay.
type PassthroughSubject[T, E any] struct {
	reg registry[T, E]
}

// NewPassthroughSubject returns an empty, non-terminated subject.
func NewPassthroughSubject[T, E any]() *PassthroughSubject[T, E] {
	return &PassthroughSubject[T, E]{}
}

// Send delivers ev to every observer currently registered. A no-op once a
// terminal event has already been sent.
func (s *PassthroughSubject[T, E]) Send(ev Event[T, E]) {
	s.reg.mu.Lock()
	if s.reg.terminated {
		s.reg.mu.Unlock()
		return
	}
	if ev.IsTerminal() {
		s.reg.terminated = true
	}
	s.reg.pruneLocked()
	snapshot := s.reg.snapshotLocked()
	s.reg.mu.Unlock()
	deliver(snapshot, ev)
}

// TrySend is Send but reports ErrSubjectTerminated instead of silently
// dropping the event once the subject has already terminated.
func (s *PassthroughSubject[T, E]) TrySend(ev Event[T, E]) error {
	s.reg.mu.Lock()
	terminated := s.reg.terminated
	s.reg.mu.Unlock()
	if terminated {
		return ErrSubjectTerminated
	}
	s.Send(ev)
	return nil
}

// AsSignal exposes the subject as a cold-looking Signal whose Observe
// subscribes to the live broadcast.
func (s *PassthroughSubject[T, E]) AsSignal() Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		s.reg.mu.Lock()
		if s.reg.terminated {
			s.reg.mu.Unlock()
			return NoopDisposable
		}
		token := s.reg.addLocked(observer)
		s.reg.mu.Unlock()
		return NewBlockDisposable(func() { s.reg.remove(token) })
	})
}

// ReplaySubject buffers the last N events it has seen (capped to N+1 so a
// terminal event sent after N non-terminal ones is never evicted) and
// replays that buffer synchronously to every new subscriber before
// admitting it to live delivery.
type ReplaySubject[T, E any] struct {
	reg    registry[T, E]
	buffer []Event[T, E]
	maxLen int
}

// NewReplaySubject returns a subject retaining the last n non-terminal
// events (plus the terminal, if any).
func NewReplaySubject[T, E any](n int) *ReplaySubject[T, E] {
	if n < 0 {
		n = 0
	}
	return &ReplaySubject[T, E]{maxLen: n + 1}
}

func (s *ReplaySubject[T, E]) Send(ev Event[T, E]) {
	s.reg.mu.Lock()
	if s.reg.terminated {
		s.reg.mu.Unlock()
		return
	}
	s.buffer = append(s.buffer, ev)
	limit := s.maxLen - 1
	if ev.IsTerminal() {
		limit = s.maxLen
	}
	if len(s.buffer) > limit {
		s.buffer = s.buffer[len(s.buffer)-limit:]
	}
	if ev.IsTerminal() {
		s.reg.terminated = true
	}
	s.reg.pruneLocked()
	snapshot := s.reg.snapshotLocked()
	s.reg.mu.Unlock()
	deliver(snapshot, ev)
}

func (s *ReplaySubject[T, E]) AsSignal() Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		s.reg.mu.Lock()
		buffered := append([]Event[T, E](nil), s.buffer...)
		terminated := s.reg.terminated
		var token uuid.UUID
		if !terminated {
			token = s.reg.addLocked(observer)
		}
		s.reg.mu.Unlock()

		for _, ev := range buffered {
			observer(ev)
		}
		if terminated {
			return NoopDisposable
		}
		return NewBlockDisposable(func() { s.reg.remove(token) })
	})
}

// ReplayOneSubject stores only the most recent non-terminal event and the
// terminal event (if any), tracked independently, and replays them in
// that order to every new subscriber.
type ReplayOneSubject[T, E any] struct {
	reg         registry[T, E]
	hasValue    bool
	lastNext    Event[T, E]
	hasTerminal bool
	terminal    Event[T, E]
}

// NewReplayOneSubject returns an empty, non-terminated subject.
func NewReplayOneSubject[T, E any]() *ReplayOneSubject[T, E] {
	return &ReplayOneSubject[T, E]{}
}

func (s *ReplayOneSubject[T, E]) Send(ev Event[T, E]) {
	s.reg.mu.Lock()
	if s.reg.terminated {
		s.reg.mu.Unlock()
		return
	}
	if ev.Kind() == KindNext {
		s.lastNext = ev
		s.hasValue = true
	} else {
		s.terminal = ev
		s.hasTerminal = true
		s.reg.terminated = true
	}
	s.reg.pruneLocked()
	snapshot := s.reg.snapshotLocked()
	s.reg.mu.Unlock()
	deliver(snapshot, ev)
}

func (s *ReplayOneSubject[T, E]) AsSignal() Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		s.reg.mu.Lock()
		hasValue, lastNext := s.hasValue, s.lastNext
		hasTerminal, terminal := s.hasTerminal, s.terminal
		var token uuid.UUID
		if !hasTerminal {
			token = s.reg.addLocked(observer)
		}
		s.reg.mu.Unlock()

		if hasValue {
			observer(lastNext)
		}
		if hasTerminal {
			observer(terminal)
			return NoopDisposable
		}
		return NewBlockDisposable(func() { s.reg.remove(token) })
	})
}
