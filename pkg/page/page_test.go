package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/style"
)

func testLayout() Layout {
	col := map[string]string{"data-scols-col": ""}
	return Layout{
		Viewport:  geom.Size{Width: 1200, Height: 800},
		Header:    100,
		Footer:    200,
		Container: BoxSpec{Left: 0, Width: 1000},
		Columns: []ColumnSpec{
			{Name: "main", ID: "main", Attrs: col, X: 0, Width: 500, Height: 1000},
			{Name: "side", Classes: []string{"side"}, Attrs: col, X: 500, Width: 500, Height: 600},
			{Name: "ad", Attrs: map[string]string{"role": "banner"}, X: 1000, Width: 0, Height: 50},
		},
	}
}

func TestStaticGeometry(t *testing.T) {
	p := New(testLayout())
	assert.Equal(t, 1300.0, p.DocumentHeight())
	assert.Equal(t, 500.0, p.MaxScroll())

	box := p.Container()
	assert.Equal(t, geom.XYWH(0, 100, 1000, 1000), box.Rect())

	side := box.Children()[1]
	assert.Equal(t, geom.XYWH(500, 100, 500, 600), side.Rect())

	p.ScrollTo(300)
	assert.Equal(t, geom.XYWH(0, -200, 1000, 1000), box.Rect())
	assert.Equal(t, geom.XYWH(500, -200, 500, 600), side.Rect())
}

func TestPositionedGeometry(t *testing.T) {
	p := New(testLayout())
	p.ScrollTo(300)
	side := p.Container().Children()[1]

	side.SetStyle(style.Absolute(250))
	assert.Equal(t, geom.XYWH(500, 50, 500, 600), side.Rect())

	side.SetStyle(style.Fixed(20, 40, 300))
	assert.Equal(t, geom.XYWH(40, 20, 300, 600), side.Rect())

	// Positioned children leave the flow; the explicit height keeps the
	// document from collapsing.
	main := p.Container().Children()[0]
	main.SetStyle(style.Absolute(0))
	assert.Equal(t, 50.0, p.Container().Rect().Height())
	p.Container().SetHeight(1000)
	assert.Equal(t, 1000.0, p.Container().Rect().Height())
	h, ok := p.Container().Height()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, h)

	side.SetStyle(style.Style{})
	assert.Equal(t, 3, side.Writes())
	assert.Equal(t, 1, main.Writes())
}

func TestScrollClampsAndNotifies(t *testing.T) {
	p := New(testLayout())
	calls := 0
	cancel := p.OnScroll(func() { calls++ })
	assert.Equal(t, 1, p.ScrollListeners())

	assert.Equal(t, 500.0, p.ScrollTo(900))
	assert.Equal(t, 500.0, p.ScrollBy(10))
	assert.Equal(t, 0.0, p.ScrollTo(-50))
	assert.Equal(t, 2, calls, "unchanged offsets do not notify")

	cancel()
	p.ScrollTo(100)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, p.ScrollListeners())
}

func TestFlushRunsOneFrame(t *testing.T) {
	p := New(testLayout())
	var ran []string
	p.RequestFrame(func() {
		ran = append(ran, "a")
		p.RequestFrame(func() { ran = append(ran, "c") })
	})
	p.RequestFrame(func() { ran = append(ran, "b") })
	require.Equal(t, 2, p.PendingFrames())

	assert.Equal(t, 2, p.Flush())
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, 1, p.Flush())
	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, 0, p.Flush())
}

func TestColumnsSelection(t *testing.T) {
	p := New(testLayout())
	box := p.Container()

	tests := []struct {
		selector string
		want     []string
	}{
		{"[data-scols-col]", []string{"main", "side"}},
		{"*", []string{"main", "side", "ad"}},
		{"#main", []string{"main"}},
		{".side", []string{"side"}},
		{".side[data-scols-col]", []string{"side"}},
		{"[role=banner]", []string{"ad"}},
		{`[role="banner"]`, []string{"ad"}},
		{"[role='nav']", nil},
		{"div > p", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			var got []string
			for _, e := range box.Select(tt.selector) {
				got = append(got, e.Name())
			}
			assert.Equal(t, tt.want, got)
			assert.Len(t, box.Columns(tt.selector), len(tt.want))
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, s := range []string{"", "[unterminated", "[=x]", ".", "#", "p"} {
		_, err := ParseSelector(s)
		assert.Error(t, err, "selector %q", s)
	}
}
