package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/position"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// Default frame size in cells.
const (
	DefaultFrameWidth  = 60
	DefaultFrameHeight = 24
)

// Cell glyphs.
const (
	GlyphStatic    = "░"
	GlyphAbsolute  = "▒"
	GlyphFixed     = "█"
	GlyphContainer = "·"
	GlyphEmpty     = " "
)

// FrameOptions controls terminal frame output.
type FrameOptions struct {
	// Width and Height are the grid size in cells.
	Width  int
	Height int
	// Renderer styles the output. Defaults to lipgloss.DefaultRenderer().
	Renderer *lipgloss.Renderer
}

func (o FrameOptions) withDefaults() FrameOptions {
	if o.Width <= 0 {
		o.Width = DefaultFrameWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultFrameHeight
	}
	if o.Renderer == nil {
		o.Renderer = lipgloss.DefaultRenderer()
	}
	return o
}

type cellKind uint8

const (
	kindEmpty cellKind = iota
	kindContainer
	kindStatic
	kindAbsolute
	kindFixed
	kindLabel
)

// cell holds what is printed in one grid position. The second half of a
// wide rune is an empty string.
type cell struct {
	s    string
	kind cellKind
}

// palette maps cell kinds to styles.
type palette map[cellKind]lipgloss.Style

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		kindEmpty:     r.NewStyle(),
		kindContainer: r.NewStyle().Foreground(lipgloss.Color("240")),
		kindStatic:    r.NewStyle().Foreground(lipgloss.Color("245")),
		kindAbsolute:  r.NewStyle().Foreground(lipgloss.Color("75")),
		kindFixed:     r.NewStyle().Foreground(lipgloss.Color("36")),
		kindLabel:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
	}
}

// Frame paints f as seen through a viewport of the given size. The first
// line is a status line; the grid follows, one line per row.
func Frame(f trace.Frame, viewport geom.Size, opts FrameOptions) string {
	opts = opts.withDefaults()
	w, h := opts.Width, opts.Height

	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{s: GlyphEmpty, kind: kindEmpty}
		}
	}

	sx, sy := 0.0, 0.0
	if viewport.Width > 0 {
		sx = float64(w) / viewport.Width
	}
	if viewport.Height > 0 {
		sy = float64(h) / viewport.Height
	}
	toCells := func(r geom.Rect) (x0, y0, x1, y1 int) {
		x0 = clamp(int(math.Round(r.Left*sx)), 0, w)
		x1 = clamp(int(math.Round(r.Right*sx)), 0, w)
		y0 = clamp(int(math.Round(r.Top*sy)), 0, h)
		y1 = clamp(int(math.Round(r.Bottom*sy)), 0, h)
		return
	}

	x0, y0, x1, y1 := toCells(f.Container)
	fill(grid, x0, y0, x1, y1, cell{s: GlyphContainer, kind: kindContainer})

	for _, c := range f.Columns {
		x0, y0, x1, y1 := toCells(c.Rect)
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		g, k := glyph(c.Mode)
		fill(grid, x0, y0, x1, y1, cell{s: g, kind: k})
		label(grid[y0][x0:x1], c.Name)
	}

	p := newPalette(opts.Renderer)
	var b strings.Builder
	b.WriteString(status(f))
	for _, row := range grid {
		b.WriteByte('\n')
		writeRow(&b, row, p)
	}
	return b.String()
}

// Legend explains the glyphs used by Frame.
func Legend(r *lipgloss.Renderer) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	p := newPalette(r)
	return strings.Join([]string{
		p[kindStatic].Render(GlyphStatic) + " static",
		p[kindAbsolute].Render(GlyphAbsolute) + " absolute",
		p[kindFixed].Render(GlyphFixed) + " fixed",
	}, "   ")
}

func status(f trace.Frame) string {
	arrow := "↓"
	if f.Direction == position.Up {
		arrow = "↑"
	}
	tallest := "-"
	if f.Tallest >= 0 && f.Tallest < len(f.Columns) {
		tallest = f.Columns[f.Tallest].Name
	}
	return fmt.Sprintf("scroll %g %s  tallest %s", f.ScrollTop, arrow, tallest)
}

func glyph(mode string) (string, cellKind) {
	switch mode {
	case "fixed":
		return GlyphFixed, kindFixed
	case "absolute":
		return GlyphAbsolute, kindAbsolute
	}
	return GlyphStatic, kindStatic
}

func fill(grid [][]cell, x0, y0, x1, y1 int, c cell) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			grid[y][x] = c
		}
	}
}

// label writes name over the start of row, truncated to fit.
func label(row []cell, name string) {
	name = runewidth.Truncate(name, len(row), "…")
	x := 0
	for _, r := range name {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > len(row) {
			break
		}
		row[x] = cell{s: string(r), kind: kindLabel}
		for i := 1; i < rw; i++ {
			row[x+i] = cell{kind: kindLabel}
		}
		x += rw
	}
}

// writeRow renders runs of equal kind with one style call each.
func writeRow(b *strings.Builder, row []cell, p palette) {
	var run strings.Builder
	kind := kindEmpty
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(p[kind].Render(run.String()))
			run.Reset()
		}
	}
	for i, c := range row {
		if i == 0 || c.kind != kind {
			flush()
			kind = c.kind
		}
		run.WriteString(c.s)
	}
	flush()
}

func clamp(v, lo, hi int) int { return min(max(v, lo), hi) }
