// Package scols keeps the shorter columns of a multi-column container in view
// while the page scrolls past the tallest one.
//
// A [Sticky] binds a [Container] and its columns to a [Window]. On attach it
// snapshots every column's rectangle, sizes the container to its tallest
// column and subscribes to scroll notifications. Scroll bursts are coalesced
// into at most one recompute per rendering frame; each recompute asks
// [position.Compute] where every column goes and writes the result through
// [Column.SetStyle], then emits [EventPosition].
//
// # Surfaces
//
// The package only talks to the three small interfaces below. Package page
// provides an in-memory implementation; any renderer that can report
// viewport-relative rectangles and accept inline positioning can host it.
//
// # Failure model
//
// Nothing here returns an error. A nil container, a nil window or a selector
// matching no columns produce an inert instance whose methods do nothing.
//
// # Concurrency
//
// A Sticky is not safe for concurrent use. The window must deliver scroll
// notifications and frame callbacks on the goroutine that calls Attach and
// Detach.
package scols

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickycols/pkg/emitter"
	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/position"
	"github.com/matzehuels/stickycols/pkg/style"
)

// Event names emitted by a Sticky.
const (
	EventPosition = "position"
	EventAttach   = "attach"
	EventDetach   = "detach"
)

// DefaultColSelector selects the columns of a container when
// Options.ColSelector is empty.
const DefaultColSelector = "[data-scols-col]"

// Window is the viewport the container scrolls in.
type Window interface {
	// ScrollTop returns the current vertical document scroll offset.
	ScrollTop() float64
	// Viewport returns the viewport size.
	Viewport() geom.Size
	// OnScroll registers fn to be called after every scroll change and
	// returns a function that removes it.
	OnScroll(fn func()) (cancel func())
	// RequestFrame schedules fn to run once before the next repaint.
	RequestFrame(fn func())
}

// Container is the element holding the columns.
type Container interface {
	Rect() geom.Rect
	SetHeight(px float64)
	ClearHeight()
	// Columns returns the descendants matching selector, in document order.
	Columns(selector string) []Column
}

// Column is one of the sibling elements kept in view.
type Column interface {
	Rect() geom.Rect
	SetStyle(s style.Style)
}

// Options configures a Sticky.
type Options struct {
	// ColSelector selects the columns inside the container.
	ColSelector string `toml:"col_selector" json:"col_selector"`
	// FromTop is the distance from the top of the viewport at which columns
	// stick, in pixels.
	FromTop float64 `toml:"from_top" json:"from_top"`
	// Logger receives debug output. Nil disables logging.
	Logger *log.Logger `toml:"-" json:"-"`
}

// WithDefaults returns a copy of o with empty fields defaulted.
func (o Options) WithDefaults() Options {
	if o.ColSelector == "" {
		o.ColSelector = DefaultColSelector
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Sticky keeps the columns of one container in view.
type Sticky struct {
	win       Window
	container Container
	cols      []Column
	opts      Options
	events    *emitter.Emitter

	attached    bool
	pending     bool
	initial     []geom.Rect
	state       position.State
	last        position.Result
	unsubscribe func()
}

// New selects the container's columns and attaches.
// The returned Sticky is inert when win or container is nil or no column
// matches the selector.
func New(win Window, container Container, opts Options) *Sticky {
	s := &Sticky{
		win:       win,
		container: container,
		opts:      opts.WithDefaults(),
		events:    emitter.New(),
	}
	if win == nil || container == nil {
		s.opts.Logger.Debug("sticky columns inert", "reason", "no container")
		return s
	}

	s.cols = container.Columns(s.opts.ColSelector)
	if len(s.cols) == 0 {
		s.opts.Logger.Debug("sticky columns inert", "reason", "no columns", "selector", s.opts.ColSelector)
		return s
	}

	s.Attach()
	return s
}

// Attach starts tracking scroll. It does nothing if already attached or inert.
func (s *Sticky) Attach() {
	if s.attached || len(s.cols) == 0 {
		return
	}
	s.attached = true
	s.state = position.State{}
	s.last = position.Result{}
	s.initial = s.rects()
	_, height := geom.Tallest(s.initial)
	s.container.SetHeight(height)
	s.unsubscribe = s.win.OnScroll(s.scroll)

	s.opts.Logger.Debug("sticky columns attached", "columns", len(s.cols), "height", height)
	s.events.Emit(EventAttach)
}

// Detach stops tracking scroll and removes every override it applied.
// It does nothing if not attached.
func (s *Sticky) Detach() {
	if !s.attached {
		return
	}
	s.attached = false
	s.container.ClearHeight()
	for _, col := range s.cols {
		col.SetStyle(style.Style{})
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.opts.Logger.Debug("sticky columns detached")
	s.events.Emit(EventDetach)
}

// Refresh recomputes positions immediately instead of waiting for a scroll.
func (s *Sticky) Refresh() {
	if s.attached {
		s.position()
	}
}

// Attached reports whether the instance is tracking scroll.
func (s *Sticky) Attached() bool { return s.attached }

// Columns returns the number of columns selected at construction.
func (s *Sticky) Columns() int { return len(s.cols) }

// Options returns the effective options.
func (s *Sticky) Options() Options { return s.opts }

// State returns the scroll state carried into the next frame.
func (s *Sticky) State() position.State { return s.state }

// Last returns the result of the most recent recompute.
func (s *Sticky) Last() position.Result { return s.last }

// Initial returns a copy of the rectangles captured at attach.
func (s *Sticky) Initial() []geom.Rect {
	return append([]geom.Rect(nil), s.initial...)
}

// On subscribes fn to a named event such as EventPosition.
func (s *Sticky) On(event string, fn func()) *emitter.Listener {
	return s.events.On(event, fn)
}

// Off removes a listener registered with On.
func (s *Sticky) Off(event string, l *emitter.Listener) {
	s.events.Off(event, l)
}

// scroll is the coalescing gate: at most one frame is pending at a time.
func (s *Sticky) scroll() {
	if s.pending {
		return
	}
	s.pending = true
	s.win.RequestFrame(s.frame)
}

func (s *Sticky) frame() {
	s.pending = false
	if !s.attached {
		return
	}
	s.position()
}

func (s *Sticky) position() {
	in := position.Input{
		ScrollTop: s.win.ScrollTop(),
		Container: s.container.Rect(),
		Columns:   s.rects(),
		Initial:   s.initial,
		Viewport:  s.win.Viewport(),
	}
	res := position.Compute(in, s.state, s.opts.FromTop)

	for i, p := range res.Placements {
		if p.Apply {
			s.cols[i].SetStyle(p.Style)
		}
	}

	s.state = res.State
	s.last = res
	s.events.Emit(EventPosition)
}

func (s *Sticky) rects() []geom.Rect {
	rects := make([]geom.Rect, len(s.cols))
	for i, col := range s.cols {
		rects[i] = col.Rect()
	}
	return rects
}
