package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/position"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// plain renders without color so output can be compared as text.
func plain() *lipgloss.Renderer { return lipgloss.NewRenderer(&bytes.Buffer{}) }

// pinnedFrame is a 1200x800 viewport scrolled to 300, with a 1000px column
// at the container's top and a 600px column fixed at the viewport's top.
func pinnedFrame() trace.Frame {
	return trace.Frame{
		ScrollTop: 300,
		Direction: position.Down,
		Tallest:   0,
		Container: geom.XYWH(0, -300, 1000, 1000),
		Columns: []trace.ColumnFrame{
			{Name: "main", Mode: "absolute", Rect: geom.XYWH(0, -300, 500, 1000)},
			{Name: "side", Mode: "fixed", Rect: geom.XYWH(500, 0, 500, 600)},
		},
	}
}

func TestFrame(t *testing.T) {
	out := Frame(pinnedFrame(), geom.Size{Width: 1200, Height: 800}, FrameOptions{Width: 60, Height: 20, Renderer: plain()})
	lines := strings.Split(out, "\n")

	if len(lines) != 21 {
		t.Fatalf("got %d lines, want 21", len(lines))
	}
	if lines[0] != "scroll 300 ↓  tallest main" {
		t.Errorf("status = %q", lines[0])
	}

	tests := []struct {
		name string
		row  int
		want string
	}{
		{"labels", 1, "main" + strings.Repeat(GlyphAbsolute, 21) + "side" + strings.Repeat(GlyphFixed, 21) + strings.Repeat(" ", 10)},
		{"fixed column", 10, strings.Repeat(GlyphAbsolute, 25) + strings.Repeat(GlyphFixed, 25) + strings.Repeat(" ", 10)},
		{"below fixed column", 17, strings.Repeat(GlyphAbsolute, 25) + strings.Repeat(GlyphContainer, 25) + strings.Repeat(" ", 10)},
		{"below container", 20, strings.Repeat(" ", 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if lines[tt.row] != tt.want {
				t.Errorf("row %d:\n got %q\nwant %q", tt.row, lines[tt.row], tt.want)
			}
		})
	}
}

func TestFrameDefaults(t *testing.T) {
	out := Frame(pinnedFrame(), geom.Size{Width: 1200, Height: 800}, FrameOptions{Renderer: plain()})
	lines := strings.Split(out, "\n")
	if len(lines) != DefaultFrameHeight+1 {
		t.Errorf("got %d lines, want %d", len(lines), DefaultFrameHeight+1)
	}
	for i, l := range lines[1:] {
		if n := len([]rune(l)); n != DefaultFrameWidth {
			t.Errorf("row %d has %d cells, want %d", i, n, DefaultFrameWidth)
		}
	}
}

func TestLabelTruncation(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{"sidebar", 10, "sidebar   "},
		{"sidebar", 5, "side…"},
		{"日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		row := make([]cell, tt.width)
		for i := range row {
			row[i] = cell{s: " "}
		}
		label(row, tt.name)

		var b strings.Builder
		for _, c := range row {
			b.WriteString(c.s)
		}
		if got := b.String(); got != tt.want {
			t.Errorf("label(%q, %d) = %q, want %q", tt.name, tt.width, got, tt.want)
		}
	}
}

func TestLegend(t *testing.T) {
	got := Legend(plain())
	for _, want := range []string{"static", "absolute", "fixed", GlyphFixed} {
		if !strings.Contains(got, want) {
			t.Errorf("legend %q missing %q", got, want)
		}
	}
}

func sampleTrace() *trace.Trace {
	col := func(mode string) trace.ColumnFrame { return trace.ColumnFrame{Mode: mode} }
	return &trace.Trace{
		Scene:   "blog",
		Columns: []string{"article", "sidebar"},
		Frames: []trace.Frame{
			{Columns: []trace.ColumnFrame{col("absolute"), col("absolute")}},
			{Columns: []trace.ColumnFrame{col("absolute"), col("fixed")}},
			{Columns: []trace.ColumnFrame{col("absolute"), col("absolute")}},
			{Columns: []trace.ColumnFrame{col("absolute"), col("fixed")}},
		},
	}
}

func TestTransitionsDOT(t *testing.T) {
	dot := TransitionsDOT(sampleTrace())

	for _, want := range []string{
		"digraph G {",
		`label="blog";`,
		"subgraph cluster_0 {",
		`label="sidebar";`,
		`"0/static" -> "0/absolute" [label="1"];`,
		`"1/absolute" -> "1/fixed" [label="2"];`,
		`"1/fixed" -> "1/absolute" [label="1"];`,
		`"1/fixed" [label="fixed", fillcolor=palegreen];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"0/fixed"`) {
		t.Error("article never went fixed")
	}
}

func TestGraph(t *testing.T) {
	ctx := context.Background()
	tr := sampleTrace()

	dot, err := Graph(ctx, tr, "DOT")
	if err != nil || !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("Graph(dot) = %q, %v", dot, err)
	}

	svg, err := Graph(ctx, tr, "svg")
	if err != nil {
		t.Fatalf("Graph(svg): %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("SVG not normalized: %.200s", svg)
	}

	png, err := Graph(ctx, tr, "png")
	if err != nil {
		t.Fatalf("Graph(png): %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("PNG missing signature: % x", png[:min(8, len(png))])
	}

	_, err = Graph(ctx, tr, "pdf")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Graph(pdf) error = %v, want UNSUPPORTED", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox:\n got %s\nwant %s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg></svg>")); string(out) != "<svg></svg>" {
		t.Errorf("svg without viewBox changed: %s", out)
	}
}
