package scols_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/page"
	"github.com/matzehuels/stickycols/pkg/position"
	"github.com/matzehuels/stickycols/pkg/scols"
	"github.com/matzehuels/stickycols/pkg/style"
)

// newPage builds a 1000px container with a 1000px column and a 600px column
// in an 800px viewport, followed by a 500px footer.
func newPage() *page.Page {
	col := map[string]string{"data-scols-col": ""}
	return page.New(page.Layout{
		Viewport:  geom.Size{Width: 1200, Height: 800},
		Footer:    500,
		Container: page.BoxSpec{Width: 1000},
		Columns: []page.ColumnSpec{
			{Name: "main", Attrs: col, X: 0, Width: 500, Height: 1000},
			{Name: "side", Attrs: col, X: 500, Width: 500, Height: 600},
		},
	})
}

type counter struct{ n int }

func (c *counter) inc() { c.n++ }

func TestAttachSizesContainer(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})

	require.True(t, s.Attached())
	assert.Equal(t, 2, s.Columns())
	assert.Equal(t, scols.DefaultColSelector, s.Options().ColSelector)
	assert.Equal(t, 1, p.ScrollListeners())

	h, ok := p.Container().Height()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, h)
	assert.Equal(t, []geom.Rect{
		geom.XYWH(0, 0, 500, 1000),
		geom.XYWH(500, 0, 500, 600),
	}, s.Initial())
}

func TestScrollScenario(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	cols := p.Container().Children()
	main, side := cols[0], cols[1]

	s.Refresh()
	assert.Equal(t, style.Absolute(0), main.Style())
	assert.Equal(t, style.Absolute(0), side.Style())

	p.ScrollTo(300)
	require.Equal(t, 1, p.Flush())
	assert.Equal(t, style.Fixed(0, 500, 500), side.Style())
	assert.Equal(t, geom.XYWH(500, 0, 500, 600), side.Rect())
	assert.Equal(t, style.Absolute(0), main.Style())

	p.ScrollTo(250)
	p.Flush()
	assert.Equal(t, position.Up, s.State().LastDirection)
	assert.Equal(t, style.Absolute(250), side.Style())
	assert.Equal(t, geom.XYWH(500, 0, 500, 600), side.Rect(), "resync keeps the column in place")

	// Scrolling down to the end: the column pins again, then is clamped to
	// the container bottom once its bottom edge reaches it.
	for _, y := range []float64{500, 600, 700} {
		p.ScrollTo(y)
		p.Flush()
	}
	assert.Equal(t, position.Down, s.State().LastDirection)
	assert.Equal(t, style.Absolute(400), side.Style())
	assert.Equal(t, main.Rect().Bottom, side.Rect().Bottom)
}

func TestFixedUsesInitialRect(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{FromTop: 40})
	side := p.Container().Children()[1]

	p.ScrollTo(300)
	p.Flush()
	assert.Equal(t, style.Fixed(40, 500, 500), side.Style())
	assert.Equal(t, 300.0, s.State().LastScrollTop)
}

func TestFrameCoalescing(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	var positions counter
	s.On(scols.EventPosition, positions.inc)

	for _, y := range []float64{50, 100, 150, 200, 250} {
		p.ScrollTo(y)
	}
	assert.Equal(t, 1, p.PendingFrames())
	assert.Equal(t, 1, p.Flush())
	assert.Equal(t, 1, positions.n)
	assert.Equal(t, 250.0, s.State().LastScrollTop)

	// The gate reopens once the frame ran.
	p.ScrollTo(300)
	assert.Equal(t, 1, p.PendingFrames())
	p.Flush()
	assert.Equal(t, 2, positions.n)
}

// immediateWindow runs frame callbacks synchronously.
type immediateWindow struct{ *page.Page }

func (w immediateWindow) RequestFrame(fn func()) { fn() }

func TestSynchronousScheduler(t *testing.T) {
	p := newPage()
	s := scols.New(immediateWindow{p}, p.Container(), scols.Options{})
	var positions counter
	s.On(scols.EventPosition, positions.inc)

	p.ScrollTo(100)
	p.ScrollTo(200)
	assert.Equal(t, 2, positions.n)
}

func TestIdempotentLifecycle(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	var attaches, detaches counter
	s.On(scols.EventAttach, attaches.inc)
	s.On(scols.EventDetach, detaches.inc)

	s.Attach()
	s.Attach()
	assert.Equal(t, 0, attaches.n, "already attached by New")
	assert.Equal(t, 1, p.ScrollListeners())

	s.Detach()
	s.Detach()
	assert.Equal(t, 1, detaches.n)
	assert.Equal(t, 0, p.ScrollListeners())

	s.Attach()
	s.Attach()
	assert.Equal(t, 1, attaches.n)
	assert.Equal(t, 1, p.ScrollListeners())
}

func TestDetachResetsStyles(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	p.ScrollTo(300)
	p.Flush()

	s.Detach()
	for _, c := range p.Container().Children() {
		assert.True(t, c.Style().IsZero(), "%s keeps %s", c.Name(), c.Style().CSS())
	}
	_, ok := p.Container().Height()
	assert.False(t, ok)
}

func TestFrameAfterDetachWritesNothing(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	var positions counter
	s.On(scols.EventPosition, positions.inc)
	side := p.Container().Children()[1]

	p.ScrollTo(300)
	s.Detach()
	writes := side.Writes()

	assert.Equal(t, 1, p.Flush())
	assert.Equal(t, writes, side.Writes())
	assert.Equal(t, 0, positions.n)
	assert.True(t, side.Style().IsZero())

	// The gate is open again after reattaching.
	s.Attach()
	p.ScrollTo(310)
	assert.Equal(t, 1, p.PendingFrames())
}

func TestReattachStartsFresh(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	p.ScrollTo(300)
	p.Flush()
	p.ScrollTo(200)
	p.Flush()
	require.Equal(t, position.Up, s.State().LastDirection)

	s.Detach()
	s.Attach()
	assert.Equal(t, position.State{}, s.State())
	assert.Equal(t, geom.XYWH(500, -200, 500, 600), s.Initial()[1])
}

func TestDirectionStableAtRest(t *testing.T) {
	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{})
	p.ScrollTo(300)
	p.Flush()
	p.ScrollTo(200)
	p.Flush()

	before := s.State()
	s.Refresh()
	assert.Equal(t, before, s.State())
	assert.Equal(t, position.Up, s.Last().Direction)
}

func TestInertInstances(t *testing.T) {
	t.Run("nil container", func(t *testing.T) {
		p := newPage()
		s := scols.New(p, nil, scols.Options{})
		s.Attach()
		s.Refresh()
		s.Detach()
		assert.False(t, s.Attached())
		assert.Equal(t, 0, p.ScrollListeners())
	})

	t.Run("nil window", func(t *testing.T) {
		p := newPage()
		s := scols.New(nil, p.Container(), scols.Options{})
		s.Attach()
		assert.False(t, s.Attached())
		_, ok := p.Container().Height()
		assert.False(t, ok)
	})

	t.Run("no columns", func(t *testing.T) {
		p := newPage()
		s := scols.New(p, p.Container(), scols.Options{ColSelector: ".missing"})
		s.Attach()
		p.ScrollTo(300)
		p.Flush()
		s.Detach()

		assert.False(t, s.Attached())
		assert.Equal(t, 0, s.Columns())
		assert.Equal(t, 0, p.ScrollListeners())
		for _, c := range p.Container().Children() {
			assert.Equal(t, 0, c.Writes())
		}
		_, ok := p.Container().Height()
		assert.False(t, ok)
	})
}

func TestTallestPinnedEveryFrame(t *testing.T) {
	col := map[string]string{"data-scols-col": ""}
	p := page.New(page.Layout{
		Viewport:  geom.Size{Width: 1200, Height: 700},
		Header:    150,
		Footer:    400,
		Container: page.BoxSpec{Left: 100, Width: 900},
		Columns: []page.ColumnSpec{
			{Name: "a", Attrs: col, X: 0, Width: 300, Height: 900},
			{Name: "b", Attrs: col, X: 300, Width: 300, Height: 2400},
			{Name: "c", Attrs: col, X: 600, Width: 300, Height: 500},
		},
	})
	s := scols.New(p, p.Container(), scols.Options{FromTop: 20})
	tallest := p.Container().Children()[1]

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p.ScrollBy(float64(rng.Intn(400) - 180))
		p.Flush()
		if s.Last().Placements == nil {
			continue
		}
		require.Equal(t, 1, s.Last().Tallest)
		require.Equal(t, style.Absolute(0), tallest.Style())
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	p := newPage()
	s := scols.New(p, p.Container(), scols.Options{Logger: logger})
	s.Detach()
	scols.New(p, p.Container(), scols.Options{ColSelector: "#nothing", Logger: logger})

	out := buf.String()
	assert.Contains(t, out, "sticky columns attached")
	assert.Contains(t, out, "sticky columns detached")
	assert.Contains(t, out, "no columns")
}
