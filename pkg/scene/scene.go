// Package scene loads TOML descriptions of a page with sticky columns and a
// scroll script to play against it.
//
// A scene file looks like:
//
//	name = "blog"
//
//	[viewport]
//	width = 1280
//	height = 800
//
//	[page]
//	header = 120
//	footer = 400
//
//	[options]
//	from_top = 16
//
//	[[columns]]
//	name = "article"
//	width = 760
//	height = 2600
//
//	[[columns]]
//	name = "sidebar"
//	width = 320
//	height = 900
//
//	[[script]]
//	by = 40
//	repeat = 50
//
// Columns without attributes, classes or id get the default column marker
// attribute, so the default selector picks them up. Columns without an x
// offset are laid out left to right in file order.
package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/geom"
	"github.com/matzehuels/stickycols/pkg/page"
	"github.com/matzehuels/stickycols/pkg/scols"
)

// Limits applied by Validate.
const (
	MaxColumns = 64
	MaxSteps   = 10_000
	MaxRepeat  = 10_000

	// MaxFrames caps the frames a script can record.
	MaxFrames = 100_000
	// MaxFrameCells caps frames times columns, the column snapshots a
	// trace holds.
	MaxFrameCells = 1_000_000
)

// DefaultViewport is used when the scene does not set one.
var DefaultViewport = geom.Size{Width: 1280, Height: 800}

// ColumnMarker is the attribute given to columns that declare no selector
// hooks of their own.
const ColumnMarker = "data-scols-col"

// Scene is a page layout plus a scroll script.
type Scene struct {
	Name      string    `toml:"name" json:"name"`
	Viewport  geom.Size `toml:"viewport" json:"viewport"`
	Page      Page      `toml:"page" json:"page"`
	Container Container `toml:"container" json:"container"`
	Options   Options   `toml:"options" json:"options"`
	Columns   []Column  `toml:"columns" json:"columns"`
	Script    []Step    `toml:"script" json:"script"`
}

// Page holds the content above and below the container.
type Page struct {
	Header float64 `toml:"header" json:"header"`
	Footer float64 `toml:"footer" json:"footer"`
}

// Container positions the container horizontally. A zero width is the sum
// of the column widths.
type Container struct {
	Left  float64 `toml:"left" json:"left"`
	Width float64 `toml:"width" json:"width"`
}

// Options mirrors scols.Options.
type Options struct {
	FromTop     float64 `toml:"from_top" json:"from_top"`
	ColSelector string  `toml:"col_selector" json:"col_selector"`
}

// Column is one child of the container.
type Column struct {
	Name    string            `toml:"name" json:"name"`
	ID      string            `toml:"id" json:"id,omitempty"`
	Classes []string          `toml:"classes" json:"classes,omitempty"`
	Attrs   map[string]string `toml:"attrs" json:"attrs,omitempty"`
	X       *float64          `toml:"x" json:"x,omitempty"`
	Width   float64           `toml:"width" json:"width"`
	Height  float64           `toml:"height" json:"height"`
}

// Action is what a script step does.
type Action string

// Script actions.
const (
	ActionScroll  Action = "scroll"
	ActionAttach  Action = "attach"
	ActionDetach  Action = "detach"
	ActionRefresh Action = "refresh"
)

// Step is one script instruction. A scroll step moves to To when set,
// otherwise by By, Repeat times (at least once). Each scroll is followed by a
// rendering frame unless Coalesce is set, in which case all repeats happen
// before a single frame.
type Step struct {
	Action   Action   `toml:"action" json:"action,omitempty"`
	To       *float64 `toml:"to" json:"to,omitempty"`
	By       float64  `toml:"by" json:"by,omitempty"`
	Repeat   int      `toml:"repeat" json:"repeat,omitempty"`
	Coalesce bool     `toml:"coalesce" json:"coalesce,omitempty"`
}

// Times returns how many times the step runs.
func (s Step) Times() int { return max(1, s.Repeat) }

// Frames returns the most frames playing the script can record: one for
// the initial layout, one per uncoalesced scroll, and one for every other
// step.
func (s *Scene) Frames() int {
	n := 1
	for _, st := range s.Script {
		if st.Action == ActionScroll && !st.Coalesce {
			n += st.Times()
		} else {
			n++
		}
	}
	return n
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	return LoadWith(path, Options{})
}

// LoadWith is Load with base options for keys the file leaves out.
func LoadWith(path string, base Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	s, err := ParseWith(data, base)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes, defaults and validates a scene.
func Parse(data []byte) (*Scene, error) {
	return ParseWith(data, Options{})
}

// ParseWith is Parse with base options. A base value is used only when the
// scene does not set that key itself, so an explicit from_top = 0 wins over
// a non-zero base.
func ParseWith(data []byte, base Options) (*Scene, error) {
	var s Scene
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown key %q", undecoded[0].String())
	}
	if !md.IsDefined("options", "from_top") {
		s.Options.FromTop = base.FromTop
	}
	if !md.IsDefined("options", "col_selector") && base.ColSelector != "" {
		s.Options.ColSelector = base.ColSelector
	}
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetDefaults fills in the viewport, selector, column markers, column x
// offsets and container width.
func (s *Scene) SetDefaults() {
	if s.Name == "" {
		s.Name = "scene"
	}
	if s.Viewport.Width == 0 && s.Viewport.Height == 0 {
		s.Viewport = DefaultViewport
	}
	if s.Options.ColSelector == "" {
		s.Options.ColSelector = scols.DefaultColSelector
	}

	var x float64
	for i := range s.Columns {
		c := &s.Columns[i]
		if c.Attrs == nil && c.Classes == nil && c.ID == "" {
			c.Attrs = map[string]string{ColumnMarker: ""}
		}
		if c.X == nil {
			c.X = ptr(x)
		}
		x = *c.X + c.Width
	}
	if s.Container.Width == 0 {
		s.Container.Width = x
	}

	for i := range s.Script {
		if s.Script[i].Action == "" {
			s.Script[i].Action = ActionScroll
		}
	}
}

// Validate checks the scene for values the simulator cannot run.
func (s *Scene) Validate() error {
	if err := errors.ValidateName(s.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene name")
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "viewport must have a positive size, got %gx%g", s.Viewport.Width, s.Viewport.Height)
	}
	if s.Page.Header < 0 || s.Page.Footer < 0 {
		return errors.New(errors.ErrCodeInvalidScene, "header and footer cannot be negative")
	}
	if len(s.Columns) == 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene has no columns")
	}
	if len(s.Columns) > MaxColumns {
		return errors.New(errors.ErrCodeTooLarge, "scene has %d columns (max %d)", len(s.Columns), MaxColumns)
	}
	if _, err := page.ParseSelector(s.Options.ColSelector); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSelector, err, "options.col_selector")
	}

	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if err := errors.ValidateName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "column %d", i)
		}
		if seen[c.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if c.Width < 0 || c.Height < 0 {
			return errors.New(errors.ErrCodeInvalidScene, "column %q has a negative size", c.Name)
		}
	}

	if len(s.Script) > MaxSteps {
		return errors.New(errors.ErrCodeTooLarge, "script has %d steps (max %d)", len(s.Script), MaxSteps)
	}
	for i, st := range s.Script {
		switch st.Action {
		case ActionScroll:
			if st.To == nil && st.By == 0 {
				return errors.New(errors.ErrCodeInvalidScene, "script step %d: scroll needs to or by", i)
			}
		case ActionAttach, ActionDetach, ActionRefresh:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "script step %d: unknown action %q", i, st.Action)
		}
		if st.Repeat < 0 || st.Repeat > MaxRepeat {
			return errors.New(errors.ErrCodeInvalidScene, "script step %d: repeat must be between 0 and %d", i, MaxRepeat)
		}
	}
	frames := s.Frames()
	if frames > MaxFrames {
		return errors.New(errors.ErrCodeTooLarge, "script records up to %d frames (max %d)", frames, MaxFrames)
	}
	if cells := frames * len(s.Columns); cells > MaxFrameCells {
		return errors.New(errors.ErrCodeTooLarge, "script records %d column snapshots (max %d)", cells, MaxFrameCells)
	}
	return nil
}

// Layout converts the scene to a page layout.
func (s *Scene) Layout() page.Layout {
	l := page.Layout{
		Viewport:  s.Viewport,
		Header:    s.Page.Header,
		Footer:    s.Page.Footer,
		Container: page.BoxSpec{Left: s.Container.Left, Width: s.Container.Width},
	}
	for _, c := range s.Columns {
		var x float64
		if c.X != nil {
			x = *c.X
		}
		l.Columns = append(l.Columns, page.ColumnSpec{
			Name:    c.Name,
			ID:      c.ID,
			Classes: c.Classes,
			Attrs:   c.Attrs,
			X:       x,
			Width:   c.Width,
			Height:  c.Height,
		})
	}
	return l
}

// Build creates a fresh page for the scene.
func (s *Scene) Build() *page.Page {
	return page.New(s.Layout())
}

// StickyOptions returns the options to attach with.
func (s *Scene) StickyOptions() scols.Options {
	return scols.Options{FromTop: s.Options.FromTop, ColSelector: s.Options.ColSelector}
}

// Fingerprint identifies the scene's content. Scenes that differ only in
// name share a fingerprint.
func (s *Scene) Fingerprint() (string, error) {
	c := *s
	c.Name = ""
	h, err := hashstructure.Hash(c, hashstructure.FormatV2, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash scene")
	}
	return fmt.Sprintf("%016x", h), nil
}

// Encode writes the scene as TOML.
func (s *Scene) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// String returns the scene as TOML.
func (s *Scene) String() string {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return fmt.Sprintf("scene %q: %v", s.Name, err)
	}
	return buf.String()
}

// Example returns a two column blog layout with a script that scrolls to
// the bottom, back up, and down again.
func Example() *Scene {
	s := &Scene{
		Name:     "blog",
		Viewport: DefaultViewport,
		Page:     Page{Header: 120, Footer: 400},
		Container: Container{
			Left: 100,
		},
		Options: Options{FromTop: 16},
		Columns: []Column{
			{Name: "article", Width: 760, Height: 2600},
			{Name: "sidebar", Width: 320, Height: 900},
		},
		Script: []Step{
			{By: 40, Repeat: 60},
			{By: -40, Repeat: 30},
			{By: 40, Repeat: 40},
		},
	}
	s.SetDefaults()
	return s
}

func ptr[T any](v T) *T { return &v }
