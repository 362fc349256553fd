// Package position implements the per-frame placement algorithm for sticky
// columns.
//
// Given the current scroll offset, the container rectangle, the current and
// initial rectangles of every column and the viewport size, [Compute] decides
// for each column which positioning mode and top offset it should take. The
// function is pure: the scroll direction state is passed in and the next state
// is returned, so the algorithm can be driven by synthetic inputs.
//
// # Coordinate frames
//
// Non-tallest columns move between three frames:
//   - absolute: anchored inside the container (top relative to its top edge)
//   - fixed: pinned to the viewport at the fromTop line, or at the viewport
//     bottom while a column taller than the viewport is scrolled into view
//   - resync: on a direction change every column is re-anchored absolutely at
//     its current position so the next frame starts from where it is drawn
//
// The tallest column defines the container's height and is always absolute
// at top 0.
//
// # Clamping
//
// A column whose bottom reaches the container's bottom while its top is at or
// above the fromTop line is clamped to the container's bottom edge, whatever
// the direction logic decided.
package position

import (
	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/style"
)

// Direction is the vertical scroll direction.
type Direction uint8

// Scroll directions. Down is the zero value, which is also the direction a
// fresh instance assumes.
const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	if string(b) == "up" {
		*d = Up
	} else {
		*d = Down
	}
	return nil
}

// State is the scroll state carried between frames.
// The zero value is the state of a freshly attached instance.
type State struct {
	LastScrollTop float64   `json:"last_scroll_top"`
	LastDirection Direction `json:"last_direction"`
}

// Input is the geometry observed at the start of a frame.
type Input struct {
	ScrollTop float64
	Container geom.Rect
	Columns   []geom.Rect
	// Initial holds the column rectangles captured at attach time,
	// index-aligned with Columns.
	Initial  []geom.Rect
	Viewport geom.Size
}

// Placement is the decision for one column.
// When Apply is false the column keeps whatever style it had.
type Placement struct {
	Apply bool        `json:"apply"`
	Style style.Style `json:"style"`
}

// Result is the outcome of one frame.
type Result struct {
	Placements []Placement `json:"placements"`
	// Tallest is the index of the tallest column, -1 if every column is empty.
	Tallest   int       `json:"tallest"`
	Direction Direction `json:"direction"`
	// State is the state to pass to the next Compute call.
	State State `json:"state"`
}

// Resolve returns the scroll direction for a frame observed at scrollTop.
// An unchanged offset keeps the previous direction. Leaving an unset (zero)
// offset always counts as scrolling down.
func Resolve(scrollTop float64, st State) Direction {
	switch {
	case scrollTop == st.LastScrollTop:
		return st.LastDirection
	case st.LastScrollTop == 0 || scrollTop > st.LastScrollTop:
		return Down
	}
	return Up
}

// Compute places every column for one frame.
func Compute(in Input, st State, fromTop float64) Result {
	dir := Resolve(in.ScrollTop, st)
	tallest, _ := geom.Tallest(in.Columns)

	res := Result{
		Placements: make([]Placement, len(in.Columns)),
		Tallest:    tallest,
		Direction:  dir,
		State:      State{LastScrollTop: in.ScrollTop, LastDirection: dir},
	}

	f := frame{
		container: in.Container,
		viewportH: in.Viewport.Height,
		fromTop:   fromTop,
		dir:       dir,
		flipped:   dir != st.LastDirection,
	}
	for i, r := range in.Columns {
		if i == tallest {
			res.Placements[i] = Placement{Apply: true, Style: style.Absolute(0)}
			continue
		}
		initial := r
		if i < len(in.Initial) {
			initial = in.Initial[i]
		}
		res.Placements[i] = f.place(r, initial)
	}
	return res
}

// frame holds the per-frame values shared by every column.
type frame struct {
	container geom.Rect
	viewportH float64
	fromTop   float64
	dir       Direction
	flipped   bool
}

func (f frame) place(r, initial geom.Rect) Placement {
	mode, top, ok := f.follow(r)

	if r.Bottom >= f.container.Bottom && r.Top <= f.fromTop {
		mode, top, ok = style.ModeAbsolute, f.container.Height()-r.Height(), true
	}

	if !ok {
		return Placement{}
	}
	if mode == style.ModeFixed {
		return Placement{Apply: true, Style: style.Fixed(top, initial.Left, initial.Width())}
	}
	return Placement{Apply: true, Style: style.Absolute(top)}
}

// follow applies the direction logic. ok is false when the column should keep
// its current style.
func (f frame) follow(r geom.Rect) (mode style.Mode, top float64, ok bool) {
	cr := f.container
	if f.flipped {
		return style.ModeAbsolute, r.Top - cr.Top, true
	}

	if f.dir == Down {
		switch {
		case cr.Top >= f.fromTop:
			return style.ModeAbsolute, 0, true
		case r.Top <= f.fromTop && r.Height() < f.viewportH:
			return style.ModeFixed, f.fromTop, true
		case r.Bottom <= f.viewportH:
			return style.ModeFixed, f.viewportH - r.Height(), true
		}
		return style.ModeDefault, 0, false
	}

	switch {
	case r.Top >= f.fromTop && cr.Top < f.fromTop:
		return style.ModeFixed, f.fromTop, true
	case r.Top <= cr.Top:
		return style.ModeAbsolute, 0, true
	}
	return style.ModeAbsolute, r.Top - cr.Top, true
}
