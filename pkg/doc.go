// Package pkg provides the libraries behind stickycols, a simulator for
// sticky multi-column page layouts.
//
// # Overview
//
// A container holds columns of different heights side by side. As the page
// scrolls, every column shorter than the tallest one is pinned so that it
// stays in view: absolute inside the container while it scrolls with the
// page, fixed to the viewport while the reader is inside its range, and
// absolute again at the container's bottom edge. The pkg directory is
// organized into three areas:
//
//  1. Layout engine - [geom], [style], [position], [emitter], [scols]
//  2. Simulation - [page], [scene], [trace]
//  3. Surfaces - [render], [server], [cache], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow through a simulation:
//
//	TOML scene
//	     ↓
//	[scene] package (decode, default, validate)
//	     ↓
//	[page] package (simulated window, container and column elements)
//	     ↓
//	[scols] package (scroll listener, frame coalescing, events)
//	     ↓
//	[position] package (pure placement computation)
//	     ↓
//	[trace] package (recorded frames, cached by scene fingerprint)
//	     ↓
//	JSON / text frames / DOT, SVG, PNG mode graphs
//
// # Quick Start
//
// Play a scene and print its last frame:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stickycols/pkg/render"
//	    "github.com/matzehuels/stickycols/pkg/scene"
//	    "github.com/matzehuels/stickycols/pkg/trace"
//	)
//
//	s, _ := scene.Load("examples/blog.toml")
//	t, _ := trace.Play(context.Background(), s, nil)
//	last := t.Frames[len(t.Frames)-1]
//	fmt.Println(render.Frame(last, t.Viewport, render.FrameOptions{}))
//
// Attach sticky columns to a page of your own:
//
//	sticky := scols.New(win, container, scols.Options{FromTop: 16})
//	sticky.On(scols.EventPosition, func() { ... })
//	defer sticky.Detach()
//
// Any type implementing [scols.Window], [scols.Container] and
// [scols.Column] can be driven; [page] is the in-memory implementation
// used by the simulator.
//
// # Main Packages
//
// ## Layout Engine
//
// [position] - The placement rules. Given the scroll offset, the container
// and column rectangles and the previous scroll state, it returns one
// placement per column and the next state. It has no side effects.
//
// [scols] - The stateful wrapper: selects columns, listens for scroll,
// coalesces scroll bursts into one positioning pass per rendering frame,
// applies placements and emits attach, detach and position events.
//
// [style] - Positioning modes and the inline declarations they render to.
//
// [emitter] - Named synchronous events with ordered listeners.
//
// [geom] - Rectangles and sizes.
//
// ## Simulation
//
// [page] - A document with a header, a container of columns and a footer
// seen through a scrolling viewport. Frames requested during a scroll run
// when the page is flushed.
//
// [scene] - TOML scene files: viewport, page, options, columns and a scroll
// script.
//
// [trace] - Plays scenes, records frames and events, and caches traces.
//
// ## Surfaces
//
// [render] - Terminal frames and Graphviz mode graphs.
//
// [server] - The HTTP API.
//
// [cache] - File, Redis and null caches behind one interface.
//
// [errors] - Error codes shared by the CLI and the API.
//
// [observability] - Hooks for simulation, cache and server events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/position/...           # Specific package
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/geom
// [style]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/style
// [position]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/position
// [emitter]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/emitter
// [scols]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/scols
// [scols.Window]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/scols#Window
// [scols.Container]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/scols#Container
// [scols.Column]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/scols#Column
// [page]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/page
// [scene]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/scene
// [trace]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/trace
// [render]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stickycols/pkg/buildinfo
package pkg
