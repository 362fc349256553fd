// Package geom defines the rectangles and sizes exchanged between a rendering
// surface and the sticky column engine.
//
// All coordinates are in pixels. Rectangles returned by a surface are
// viewport-relative, the way a browser's getBoundingClientRect reports them:
// Top is the distance from the top of the viewport, so an element scrolled
// past the top edge has a negative Top.
package geom

import "fmt"

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// XYWH builds a rectangle from its origin and dimensions.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Top: y, Left: x, Bottom: y + h, Right: x + w}
}

// Height returns Bottom - Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Width returns Right - Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Height() <= 0 || r.Width() <= 0 }

// Offset returns the rectangle translated by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{Top: r.Top + dy, Left: r.Left + dx, Bottom: r.Bottom + dy, Right: r.Right + dx}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.Left, r.Top, r.Width(), r.Height())
}

// Size is a width and height pair, used for the viewport.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Tallest returns the index and height of the tallest rectangle.
// The scan uses a strict comparison, so the lowest index wins ties.
// Index is -1 when no rectangle has a positive height.
func Tallest(rects []Rect) (index int, height float64) {
	index = -1
	for i, r := range rects {
		if h := r.Height(); h > height {
			index, height = i, h
		}
	}
	return index, height
}
