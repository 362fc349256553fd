// Package emitter is a small named-event notification channel.
//
// Listeners are plain func() callbacks grouped by event name. They run
// synchronously, in registration order, on the goroutine that calls Emit.
package emitter

import "sync"

// Listener is the handle returned by On and accepted by Off.
type Listener struct {
	fn func()
}

// Emitter dispatches named events to listeners.
// The zero value is ready to use and safe for concurrent use.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]*Listener
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{}
}

// On registers fn for event and returns a handle for Off.
func (e *Emitter) On(event string, fn func()) *Listener {
	l := &Listener{fn: fn}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*Listener)
	}
	e.listeners[event] = append(e.listeners[event], l)
	return l
}

// Once registers fn to run on the next emission of event only.
func (e *Emitter) Once(event string, fn func()) *Listener {
	var l *Listener
	l = e.On(event, func() {
		e.Off(event, l)
		fn()
	})
	return l
}

// Off removes a listener. Unknown or nil handles are ignored.
func (e *Emitter) Off(event string, l *Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[event]
	for i, x := range ls {
		if x == l {
			// Copy so that an Emit iterating the old slice is unaffected.
			next := make([]*Listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			if len(next) == 0 {
				delete(e.listeners, event)
			} else {
				e.listeners[event] = next
			}
			return
		}
	}
}

// Emit calls every listener registered for event.
// Listeners added or removed during Emit take effect on the next emission.
func (e *Emitter) Emit(event string) {
	e.mu.RLock()
	ls := e.listeners[event]
	e.mu.RUnlock()

	for _, l := range ls {
		l.fn()
	}
}

// Count returns the number of listeners registered for event.
func (e *Emitter) Count(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}
