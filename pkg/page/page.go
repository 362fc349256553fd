// Package page is an in-memory document that hosts sticky columns.
//
// A [Page] has a fixed-size viewport, an optional header and footer, and one
// container whose columns sit side by side at the container's top edge. It
// implements the surfaces package scols needs: [Page] is the window,
// [Box] the container and [Element] a column. Rectangles follow CSS
// positioning for the three modes the engine writes:
//
//   - static: at the container's top, at the column's natural x offset
//   - absolute: top and left relative to the container's top-left corner
//   - fixed: top and left relative to the viewport
//
// A width override replaces the natural width; heights never change.
//
// Scrolling fires the scroll listeners synchronously. Frame callbacks queue
// up until [Page.Flush] runs them, which stands in for one rendering frame.
// Callbacks run without the page lock held, so they may read geometry and
// request further frames; those run on the following Flush.
package page

import (
	"sync"

	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/scols"
	"github.com/matzehuels/stickycols/pkg/style"
)

// Layout describes the document.
type Layout struct {
	Viewport  geom.Size
	Header    float64
	Footer    float64
	Container BoxSpec
	Columns   []ColumnSpec
}

// BoxSpec positions the container horizontally.
type BoxSpec struct {
	Left  float64
	Width float64
}

// ColumnSpec describes one child of the container.
type ColumnSpec struct {
	Name    string
	ID      string
	Classes []string
	Attrs   map[string]string
	// X is the offset from the container's left edge.
	X      float64
	Width  float64
	Height float64
}

// Page is the document and its window.
type Page struct {
	mu        sync.Mutex
	viewport  geom.Size
	header    float64
	footer    float64
	scrollTop float64
	box       *Box

	listeners []*scrollListener
	frames    []func()
}

type scrollListener struct{ fn func() }

// New builds a page from a layout.
func New(l Layout) *Page {
	p := &Page{
		viewport: l.Viewport,
		header:   l.Header,
		footer:   l.Footer,
	}
	p.box = &Box{page: p, left: l.Container.Left, width: l.Container.Width}
	for _, cs := range l.Columns {
		attrs := make(map[string]string, len(cs.Attrs))
		for k, v := range cs.Attrs {
			attrs[k] = v
		}
		p.box.children = append(p.box.children, &Element{
			page:    p,
			name:    cs.Name,
			id:      cs.ID,
			classes: append([]string(nil), cs.Classes...),
			attrs:   attrs,
			x:       cs.X,
			width:   cs.Width,
			height:  cs.Height,
		})
	}
	return p
}

// Container returns the container box.
func (p *Page) Container() *Box { return p.box }

// ScrollTop returns the document scroll offset.
func (p *Page) ScrollTop() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollTop
}

// Viewport returns the viewport size.
func (p *Page) Viewport() geom.Size { return p.viewport }

// DocumentHeight is the height of the whole document.
func (p *Page) DocumentHeight() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.documentHeight()
}

// MaxScroll is the largest reachable scroll offset.
func (p *Page) MaxScroll() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxScroll()
}

func (p *Page) documentHeight() float64 {
	return p.header + p.box.height() + p.footer
}

func (p *Page) maxScroll() float64 {
	return max(0, p.documentHeight()-p.viewport.Height)
}

// ScrollTo moves the document to y, clamped to the scrollable range, and
// notifies scroll listeners if the offset changed. It returns the new offset.
func (p *Page) ScrollTo(y float64) float64 {
	p.mu.Lock()
	y = min(max(0, y), p.maxScroll())
	changed := y != p.scrollTop
	p.scrollTop = y
	listeners := p.listeners
	p.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l.fn()
		}
	}
	return y
}

// ScrollBy scrolls relative to the current offset.
func (p *Page) ScrollBy(dy float64) float64 {
	return p.ScrollTo(p.ScrollTop() + dy)
}

// OnScroll registers fn for scroll notifications.
func (p *Page) OnScroll(fn func()) (cancel func()) {
	l := &scrollListener{fn: fn}
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, x := range p.listeners {
			if x == l {
				p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// ScrollListeners returns the number of registered scroll listeners.
func (p *Page) ScrollListeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// RequestFrame queues fn for the next Flush.
func (p *Page) RequestFrame(fn func()) {
	p.mu.Lock()
	p.frames = append(p.frames, fn)
	p.mu.Unlock()
}

// PendingFrames returns the number of queued frame callbacks.
func (p *Page) PendingFrames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Flush runs the frame callbacks queued so far and returns how many ran.
func (p *Page) Flush() int {
	p.mu.Lock()
	frames := p.frames
	p.frames = nil
	p.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
	return len(frames)
}

var _ scols.Window = (*Page)(nil)

// Box is the container element.
type Box struct {
	page      *Page
	left      float64
	width     float64
	override  float64
	hasHeight bool
	children  []*Element
}

// Rect returns the viewport-relative rectangle of the container.
func (b *Box) Rect() geom.Rect {
	b.page.mu.Lock()
	defer b.page.mu.Unlock()
	return geom.XYWH(b.left, b.top(), b.width, b.height())
}

func (b *Box) top() float64 { return b.page.header - b.page.scrollTop }

// height is the explicit height if set, otherwise the tallest in-flow
// child. Positioned children are out of flow.
func (b *Box) height() float64 {
	if b.hasHeight {
		return b.override
	}
	var h float64
	for _, c := range b.children {
		if c.style.Position == style.ModeDefault {
			h = max(h, c.height)
		}
	}
	return h
}

// SetHeight sets an explicit height.
func (b *Box) SetHeight(px float64) {
	b.page.mu.Lock()
	defer b.page.mu.Unlock()
	b.override, b.hasHeight = px, true
}

// ClearHeight removes the explicit height.
func (b *Box) ClearHeight() {
	b.page.mu.Lock()
	defer b.page.mu.Unlock()
	b.override, b.hasHeight = 0, false
}

// Height returns the explicit height and whether one is set.
func (b *Box) Height() (float64, bool) {
	b.page.mu.Lock()
	defer b.page.mu.Unlock()
	return b.override, b.hasHeight
}

// Columns returns the children matching selector. An invalid selector
// matches nothing.
func (b *Box) Columns(selector string) []scols.Column {
	els := b.Select(selector)
	cols := make([]scols.Column, len(els))
	for i, e := range els {
		cols[i] = e
	}
	return cols
}

// Select returns the children matching selector, in document order.
func (b *Box) Select(selector string) []*Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	var out []*Element
	for _, c := range b.children {
		if sel.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Children returns every child in document order.
func (b *Box) Children() []*Element {
	return append([]*Element(nil), b.children...)
}

var _ scols.Container = (*Box)(nil)

// Element is a child of the container.
type Element struct {
	page    *Page
	name    string
	id      string
	classes []string
	attrs   map[string]string
	x       float64
	width   float64
	height  float64

	style  style.Style
	writes int
}

// Name returns the element's display name.
func (e *Element) Name() string { return e.name }

// Rect returns the viewport-relative rectangle.
func (e *Element) Rect() geom.Rect {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()

	b := e.page.box
	staticTop, staticLeft := b.top(), b.left+e.x
	top, left := staticTop, staticLeft

	switch e.style.Position {
	case style.ModeAbsolute:
		if v, ok := e.style.Top.Pixels(); ok {
			top = staticTop + v
		}
		if v, ok := e.style.Left.Pixels(); ok {
			left = b.left + v
		}
	case style.ModeFixed:
		if v, ok := e.style.Top.Pixels(); ok {
			top = v
		}
		if v, ok := e.style.Left.Pixels(); ok {
			left = v
		}
	}

	width := e.width
	if v, ok := e.style.Width.Pixels(); ok {
		width = v
	}
	return geom.XYWH(left, top, width, e.height)
}

// SetStyle replaces the element's positioning style.
func (e *Element) SetStyle(s style.Style) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.style = s
	e.writes++
}

// Style returns the current positioning style.
func (e *Element) Style() style.Style {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.style
}

// Writes returns how many times SetStyle was called.
func (e *Element) Writes() int {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.writes
}

var _ scols.Column = (*Element)(nil)
