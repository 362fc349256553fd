package page

import (
	"fmt"
	"slices"
	"strings"
)

// Selector is a compound selector: every part must match.
//
// Supported parts are "*", "#id", ".class", "[attr]" and "[attr=value]"
// with an optionally quoted value. Parts can be chained without spaces, as
// in ".col[data-scols-col]". Combinators and selector lists are not
// supported.
type Selector struct {
	parts []part
}

type partKind uint8

const (
	partAny partKind = iota
	partID
	partClass
	partAttr
	partAttrValue
)

type part struct {
	kind  partKind
	name  string
	value string
}

// ParseSelector parses s.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	var sel Selector
	for len(s) > 0 {
		switch s[0] {
		case '*':
			sel.parts = append(sel.parts, part{kind: partAny})
			s = s[1:]
		case '#', '.':
			name, rest := ident(s[1:])
			if name == "" {
				return Selector{}, fmt.Errorf("selector %q: missing name after %q", s, s[0])
			}
			kind := partID
			if s[0] == '.' {
				kind = partClass
			}
			sel.parts = append(sel.parts, part{kind: kind, name: name})
			s = rest
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return Selector{}, fmt.Errorf("selector %q: unterminated attribute", s)
			}
			p, err := parseAttr(s[1:end])
			if err != nil {
				return Selector{}, err
			}
			sel.parts = append(sel.parts, p)
			s = s[end+1:]
		default:
			return Selector{}, fmt.Errorf("selector %q: unsupported syntax", s)
		}
	}
	return sel, nil
}

func parseAttr(body string) (part, error) {
	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return part{}, fmt.Errorf("attribute selector [%s]: missing name", body)
	}
	if !hasValue {
		return part{kind: partAttr, name: name}, nil
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	}
	return part{kind: partAttrValue, name: name, value: value}, nil
}

func ident(s string) (name, rest string) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return r == '.' || r == '#' || r == '[' || r == '*' || r == ' '
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// Match reports whether e matches every part of the selector.
func (s Selector) Match(e *Element) bool {
	for _, p := range s.parts {
		switch p.kind {
		case partID:
			if e.id != p.name {
				return false
			}
		case partClass:
			if !slices.Contains(e.classes, p.name) {
				return false
			}
		case partAttr:
			if _, ok := e.attrs[p.name]; !ok {
				return false
			}
		case partAttrValue:
			if v, ok := e.attrs[p.name]; !ok || v != p.value {
				return false
			}
		}
	}
	return true
}
