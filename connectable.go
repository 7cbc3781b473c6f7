package reactor

import "sync"

// Connectable pairs a cold source with a hot bus Subject. Connect
// subscribes the bus to the source exactly once (idempotent while held);
// AsSignal subscribes observers to the bus, seeing only what the bus
// delivers — live broadcast, or buffered replay, depending on the bus.
type Connectable[T, E any] struct {
	source Signal[T, E]
	bus    Subject[T, E]
	logger Logger

	mu   sync.Mutex
	conn Disposable
}

// Publish wraps source with a PassthroughSubject bus: subscribers see only
// events emitted after they subscribe.
func Publish[T, E any](source Signal[T, E]) *Connectable[T, E] {
	return &Connectable[T, E]{source: source, bus: NewPassthroughSubject[T, E](), logger: NopLogger()}
}

// Replay wraps source with a buffering bus: ReplaySubject(n) in general,
// specializing to the lighter-weight ReplayOneSubject when n == 1.
func Replay[T, E any](source Signal[T, E], n int) *Connectable[T, E] {
	if n == 1 {
		return &Connectable[T, E]{source: source, bus: NewReplayOneSubject[T, E](), logger: NopLogger()}
	}
	return &Connectable[T, E]{source: source, bus: NewReplaySubject[T, E](n), logger: NopLogger()}
}

// WithLogger attaches a logger that records connect/disconnect lifecycle
// events; it returns c for chaining after Publish/Replay.
func (c *Connectable[T, E]) WithLogger(logger Logger) *Connectable[T, E] {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Connect subscribes the bus to the source if it isn't already connected,
// and returns the (possibly pre-existing) connection Disposable. Disposing
// it tears the source subscription down; a later Connect call reconnects.
func (c *Connectable[T, E]) Connect() Disposable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsDisposed() {
		c.logger.Debug("reactor: connectable connecting")
		c.conn = c.source.Observe(func(ev Event[T, E]) {
			if ev.Kind() == KindFailed {
				c.logger.Error("reactor: connectable source failed")
			}
			c.bus.Send(ev)
		})
	}
	return c.conn
}

// AsSignal exposes the bus: Observe subscribes to whatever the bus
// currently has to offer (live events, plus any buffered replay), without
// itself establishing the source connection.
func (c *Connectable[T, E]) AsSignal() Signal[T, E] {
	return c.bus.AsSignal()
}

// Share returns a cold-looking Signal that connects on the first
// subscriber and disconnects once the subscriber count drops back to
// limit or below, or never (kept alive for the life of the Connectable)
// when keepAlive is true.
func (c *Connectable[T, E]) Share(limit int, keepAlive bool) Signal[T, E] {
	var mu sync.Mutex
	count := 0

	return New(func(observer Observer[T, E]) Disposable {
		mu.Lock()
		count++
		first := count == 1
		mu.Unlock()
		if first {
			c.Connect()
		}

		sub := c.bus.AsSignal().Observe(observer)
		return NewBlockDisposable(func() {
			sub.Dispose()
			mu.Lock()
			count--
			disconnect := !keepAlive && count <= limit
			mu.Unlock()
			if disconnect {
				c.mu.Lock()
				conn := c.conn
				c.conn = nil
				c.mu.Unlock()
				if conn != nil {
					c.logger.Debug("reactor: connectable disconnecting, subscriber count reached the limit")
					conn.Dispose()
				}
			}
		})
	})
}

// Share is the common case: a passthrough bus connected on first
// subscriber and disconnected at zero subscribers.
func Share[T, E any](source Signal[T, E]) Signal[T, E] {
	return Publish(source).Share(0, false)
}

// ShareWithLimit is Share with a configurable disconnect threshold: the
// source connection is torn down once the subscriber count drops to limit
// or below, rather than only at zero.
func ShareWithLimit[T, E any](source Signal[T, E], limit int) Signal[T, E] {
	return Publish(source).Share(limit, false)
}

// ShareReplay is Share backed by a Replay(n) bus instead of a passthrough
// one, so subscribers arriving after the source has started still see the
// last n emissions.
func ShareReplay[T, E any](source Signal[T, E], n int) Signal[T, E] {
	return Replay(source, n).Share(0, false)
}

// ShareReplayWithLimit is ShareReplay with a configurable disconnect
// threshold, mirroring ShareWithLimit.
func ShareReplayWithLimit[T, E any](source Signal[T, E], n, limit int) Signal[T, E] {
	return Replay(source, n).Share(limit, false)
}
