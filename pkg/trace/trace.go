// Package trace plays scene scripts against sticky columns and records what
// the positioning engine did on every frame.
//
// A [Trace] is the unit the CLI writes to disk, the API returns, and the
// renderers draw. It is a plain JSON document:
//
//	{
//	  "id": "6f1c...",
//	  "scene": "blog",
//	  "fingerprint": "9d2e4c0a1b7f3e55",
//	  "frames": [
//	    {"step": 0, "scroll_top": 40, "direction": "down", "tallest": 0, ...}
//	  ]
//	}
//
// Use [Runner] to produce traces with caching, or [Play] to run a scene
// directly.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/position"
)

// SetupStep is the step index of events and frames recorded before the
// script starts.
const SetupStep = -1

// Trace is the recorded result of one scene run.
type Trace struct {
	ID          string    `json:"id"`
	Scene       string    `json:"scene"`
	Fingerprint string    `json:"fingerprint"`
	Version     string    `json:"version,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Viewport    geom.Size `json:"viewport"`
	FromTop     float64   `json:"from_top"`
	Columns     []string  `json:"columns"`
	Events      []Event   `json:"events,omitempty"`
	Frames      []Frame   `json:"frames"`
}

// Event is a lifecycle notification seen during the run.
type Event struct {
	Step      int     `json:"step"`
	Name      string  `json:"name"`
	ScrollTop float64 `json:"scroll_top"`
}

// Frame is one positioning pass.
type Frame struct {
	Step      int                `json:"step"`
	ScrollTop float64            `json:"scroll_top"`
	Direction position.Direction `json:"direction"`
	Tallest   int                `json:"tallest"`
	Container geom.Rect          `json:"container"`
	Columns   []ColumnFrame      `json:"columns"`
}

// ColumnFrame is a column's style and geometry after a frame.
type ColumnFrame struct {
	Name    string    `json:"name"`
	Mode    string    `json:"mode"`
	Top     float64   `json:"top"`
	Applied bool      `json:"applied"`
	Rect    geom.Rect `json:"rect"`
	CSS     string    `json:"css,omitempty"`
}

// Transition counts how often a column went from one mode to another.
type Transition struct {
	Column string `json:"column"`
	From   string `json:"from"`
	To     string `json:"to"`
	Count  int    `json:"count"`
}

// ColumnSummary counts the frames a column spent in each mode.
type ColumnSummary struct {
	Name     string `json:"name"`
	Static   int    `json:"static"`
	Absolute int    `json:"absolute"`
	Fixed    int    `json:"fixed"`
}

// Transitions returns every mode change per column, in order of first
// occurrence. Columns start out static.
func (t *Trace) Transitions() []Transition {
	var out []Transition
	index := make(map[[3]string]int)

	for c, name := range t.Columns {
		prev := "static"
		for _, f := range t.Frames {
			if c >= len(f.Columns) {
				continue
			}
			mode := f.Columns[c].Mode
			if mode == prev {
				continue
			}
			k := [3]string{name, prev, mode}
			if i, ok := index[k]; ok {
				out[i].Count++
			} else {
				index[k] = len(out)
				out = append(out, Transition{Column: name, From: prev, To: mode, Count: 1})
			}
			prev = mode
		}
	}
	return out
}

// Summary counts modes per column over all frames.
func (t *Trace) Summary() []ColumnSummary {
	out := make([]ColumnSummary, len(t.Columns))
	for c, name := range t.Columns {
		out[c].Name = name
		for _, f := range t.Frames {
			if c >= len(f.Columns) {
				continue
			}
			switch f.Columns[c].Mode {
			case "absolute":
				out[c].Absolute++
			case "fixed":
				out[c].Fixed++
			default:
				out[c].Static++
			}
		}
	}
	return out
}

// Marshal encodes the trace as JSON.
func (t *Trace) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

// WriteJSON writes the trace as indented JSON.
func (t *Trace) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Unmarshal decodes a trace.
func Unmarshal(data []byte) (*Trace, error) {
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode trace")
	}
	return &t, nil
}

// ReadJSON decodes a trace from r.
func ReadJSON(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return Unmarshal(data)
}
