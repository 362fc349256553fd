// Package render draws simulation traces.
//
// # Overview
//
// Two kinds of output are supported:
//
//   - Terminal frames: [Frame] paints one recorded frame as a grid of
//     character cells scaled to the viewport, one glyph per positioning mode
//   - Mode graphs: [TransitionsDOT] turns a trace's mode changes into a
//     Graphviz digraph, and [RenderSVG] / [RenderPNG] lay it out
//
// # Terminal Frames
//
// Columns are painted at their viewport-relative rectangles, so a fixed
// column stays put while the rest of the page scrolls past it:
//
//	out := render.Frame(tr.Frames[i], tr.Viewport, render.FrameOptions{Width: 80, Height: 30})
//	fmt.Println(out)
//
// Labels are truncated to the column's cell width with East Asian wide
// characters counted as two cells.
//
// # Mode Graphs
//
// Each column becomes a cluster whose nodes are the modes it visited. Edges
// are labeled with how many times the transition happened:
//
//	dot := render.TransitionsDOT(tr)
//	svg, err := render.RenderSVG(ctx, dot)
package render
