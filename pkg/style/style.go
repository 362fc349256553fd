// Package style defines the positioning instructions written to a column.
//
// A [Style] is the complete set of inline positioning fields the sticky
// column engine owns: position mode, top, left, right and width. Every other
// property of an element is left to the surface. The zero Style means "no
// override" for every field, which is what a column is reset to on detach.
package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is a CSS-like position mode.
type Mode string

// Position modes used by the engine.
const (
	ModeDefault  Mode = ""
	ModeAbsolute Mode = "absolute"
	ModeFixed    Mode = "fixed"
)

// String returns the mode name, "static" for the default mode.
func (m Mode) String() string {
	if m == ModeDefault {
		return "static"
	}
	return string(m)
}

// ParseMode parses a mode name as produced by [Mode.String].
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "static":
		return ModeDefault, nil
	case "absolute":
		return ModeAbsolute, nil
	case "fixed":
		return ModeFixed, nil
	}
	return ModeDefault, fmt.Errorf("unknown position mode %q", s)
}

type lengthKind uint8

const (
	lengthUnset lengthKind = iota
	lengthPx
	lengthAuto
)

// Length is an optional pixel length. The zero value is unset.
type Length struct {
	px   float64
	kind lengthKind
}

// Px returns a pixel length.
func Px(v float64) Length { return Length{px: v, kind: lengthPx} }

// Auto is the "auto" keyword.
var Auto = Length{kind: lengthAuto}

// Unset is the absence of an override.
var Unset = Length{}

// IsSet reports whether the length overrides the natural value.
func (l Length) IsSet() bool { return l.kind != lengthUnset }

// IsAuto reports whether the length is the "auto" keyword.
func (l Length) IsAuto() bool { return l.kind == lengthAuto }

// Pixels returns the pixel value and whether the length is a pixel length.
func (l Length) Pixels() (float64, bool) { return l.px, l.kind == lengthPx }

// String formats the length the way an inline style would hold it.
func (l Length) String() string {
	switch l.kind {
	case lengthPx:
		return strconv.FormatFloat(l.px, 'f', -1, 64) + "px"
	case lengthAuto:
		return "auto"
	}
	return ""
}

// ParseLength parses "", "auto" or "<n>px".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Unset, nil
	case "auto":
		return Auto, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return Unset, fmt.Errorf("invalid length %q: %w", s, err)
	}
	return Px(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Length) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Length) UnmarshalText(b []byte) error {
	v, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Style is the set of positioning fields applied to a column.
type Style struct {
	Position Mode   `json:"position,omitempty"`
	Top      Length `json:"top"`
	Left     Length `json:"left"`
	Right    Length `json:"right"`
	Width    Length `json:"width"`
}

// Absolute anchors an element inside its container at the given top offset.
// Horizontal overrides are cleared.
func Absolute(top float64) Style {
	return Style{Position: ModeAbsolute, Top: Px(top)}
}

// Fixed pins an element to the viewport. Right is forced to auto so that the
// explicit left and width fully determine the horizontal extent.
func Fixed(top, left, width float64) Style {
	return Style{Position: ModeFixed, Top: Px(top), Left: Px(left), Right: Auto, Width: Px(width)}
}

// IsZero reports whether no field is overridden.
func (s Style) IsZero() bool { return s == Style{} }

// CSS renders the style as an inline declaration list. Unset fields are
// omitted; the zero Style renders as the empty string.
func (s Style) CSS() string {
	var parts []string
	if s.Position != ModeDefault {
		parts = append(parts, "position: "+string(s.Position))
	}
	for _, f := range []struct {
		name string
		l    Length
	}{{"top", s.Top}, {"left", s.Left}, {"right", s.Right}, {"width", s.Width}} {
		if f.l.IsSet() {
			parts = append(parts, f.name+": "+f.l.String())
		}
	}
	return strings.Join(parts, "; ")
}
