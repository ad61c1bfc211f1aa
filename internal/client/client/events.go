package client

import "sync"

// Event is a cross-cutting condition observed at the transport boundary.
type Event int

const (
	// EventSessionExpired is emitted whenever the directory answers 401,
	// whatever the operation was.
	EventSessionExpired Event = iota + 1
)

func (e Event) String() string {
	switch e {
	case EventSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// emitter fans events out to subscribers. Handlers run synchronously on the
// goroutine that observed the event and must not call back into Subscribe.
type emitter struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func (e *emitter) subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.subs == nil {
		e.subs = make(map[int]func(Event))
	}
	id := e.nextID
	e.nextID++
	e.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	fns := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
