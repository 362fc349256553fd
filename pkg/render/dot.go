package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// modeColors fills mode nodes.
var modeColors = map[string]string{
	"static":   "white",
	"absolute": "lightblue",
	"fixed":    "palegreen",
}

// TransitionsDOT returns a digraph of the mode changes in t, one cluster per
// column.
func TransitionsDOT(t *trace.Trace) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", t.Scene)
	buf.WriteString("\n")

	byColumn := make(map[string][]trace.Transition)
	for _, tr := range t.Transitions() {
		byColumn[tr.Column] = append(byColumn[tr.Column], tr)
	}

	for i, col := range t.Columns {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", col)
		buf.WriteString("    style=\"rounded,dashed\";\n")

		seen := map[string]bool{"static": true}
		modes := []string{"static"}
		for _, tr := range byColumn[col] {
			if !seen[tr.To] {
				seen[tr.To] = true
				modes = append(modes, tr.To)
			}
		}
		for _, m := range modes {
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%s];\n", nodeID(i, m), m, fillColor(m))
		}
		for _, tr := range byColumn[col] {
			fmt.Fprintf(&buf, "    %q -> %q [label=\"%d\"];\n", nodeID(i, tr.From), nodeID(i, tr.To), tr.Count)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(column int, mode string) string {
	return strconv.Itoa(column) + "/" + mode
}

func fillColor(mode string) string {
	if c, ok := modeColors[mode]; ok {
		return c
	}
	return "white"
}

// RenderSVG lays out a DOT graph as SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out a DOT graph as PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one sized
// from the viewBox, so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Formats lists the outputs of the graph command.
var Formats = []string{"dot", "svg", "png"}

// Graph renders the mode graph of t in the given format.
func Graph(ctx context.Context, t *trace.Trace, format string) ([]byte, error) {
	dot := TransitionsDOT(t)
	switch strings.ToLower(format) {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return RenderSVG(ctx, dot)
	case "png":
		return RenderPNG(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q (must be one of: %s)", format, strings.Join(Formats, ", "))
}
