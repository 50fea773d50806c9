// Package layout parses tmux's compact window-layout descriptor string into
// a flat list of pane boxes in absolute cell coordinates.
package layout

import (
	"strconv"
	"strings"
)

// PaneBox is one pane's geometry within a window, in cells, given as
// absolute coordinates from the window's top-left corner.
type PaneBox struct {
	PaneID string
	X, Y   int
	Width  int
	Height int
}

// Parse decodes a tmux layout descriptor such as
// "c3b2,80x24,0,0{40x24,0,0,1,39x24,41,0,2}" into a flat list of PaneBox
// values in depth-first, left/top-first traversal order. Unknown fragments
// are skipped and contribute no box; Parse never returns a parse error for
// malformed input, matching the emulator's "absorb and continue" policy,
// since a bad layout string should never take down a connection.
func Parse(descriptor string) []PaneBox {
	s := stripChecksum(descriptor)
	p := &parser{s: s}
	var boxes []PaneBox
	p.parseNode(&boxes)
	return boxes
}

// stripChecksum removes the leading "<4 hex digits>," checksum prefix real
// tmux always sends. If the prefix isn't present (e.g. synthetic test
// input already stripped it), the string is returned unchanged.
func stripChecksum(s string) string {
	idx := strings.IndexByte(s, ',')
	if idx != 4 {
		return s
	}
	if !isHex(s[:4]) {
		return s
	}
	return s[idx+1:]
}

func isHex(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return len(s) > 0
}

type parser struct {
	s   string
	pos int
}

// parseNode consumes one node (leaf or split) starting at p.pos. It does not
// itself recurse into further siblings — the caller's split handling does
// that.
func (p *parser) parseNode(boxes *[]PaneBox) {
	if p.pos >= len(p.s) {
		return
	}

	w, h, x, y, rest, ok := p.parseSize()
	if !ok {
		return
	}
	p.pos = rest

	if p.pos < len(p.s) && (p.s[p.pos] == '{' || p.s[p.pos] == '[') {
		p.parseSplit(boxes)
		return
	}

	// Leaf: next token is the pane id, introduced by a comma.
	if p.pos < len(p.s) && p.s[p.pos] == ',' {
		p.pos++
	}
	id, rest2, ok := p.parseNumber()
	if !ok {
		return
	}
	p.pos = rest2

	*boxes = append(*boxes, PaneBox{
		PaneID: id,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
	})
}

// parseSplit consumes children inside `{...}` (horizontal split) or
// `[...]` (vertical split). Every node, leaf or split, carries its own
// absolute X/Y in the descriptor already, so there's no origin to
// accumulate here — only the closing bracket differs between the two
// split kinds.
func (p *parser) parseSplit(boxes *[]PaneBox) {
	open := p.s[p.pos]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	p.pos++ // consume opener

	for p.pos < len(p.s) && p.s[p.pos] != close {
		before := len(*boxes)
		startPos := p.pos
		w, h, x, y, rest, ok := p.parseSize()
		if !ok {
			// Can't make progress; bail out rather than loop forever.
			p.pos = len(p.s)
			return
		}
		p.pos = rest

		if p.pos < len(p.s) && (p.s[p.pos] == '{' || p.s[p.pos] == '[') {
			p.parseSplit(boxes)
		} else {
			if p.pos < len(p.s) && p.s[p.pos] == ',' {
				p.pos++
			}
			id, rest2, ok := p.parseNumber()
			if ok {
				p.pos = rest2
				*boxes = append(*boxes, PaneBox{PaneID: id, X: x, Y: y, Width: w, Height: h})
			}
		}

		if len(*boxes) == before && p.pos == startPos {
			// No progress made at all: avoid an infinite loop on malformed
			// input.
			p.pos = len(p.s)
			return
		}

		if p.pos < len(p.s) && p.s[p.pos] == ',' {
			p.pos++
		}
	}
	if p.pos < len(p.s) {
		p.pos++ // consume closer
	}
}

// parseSize parses "WxH,X,Y" starting at p.pos and returns the parsed
// values plus the position just past them (not yet committed to p.pos, so
// callers can look ahead before deciding leaf vs split).
func (p *parser) parseSize() (w, h, x, y int, newPos int, ok bool) {
	rest := p.s[p.pos:]
	wStr, rest, ok1 := splitNumber(rest, 'x')
	hStr, rest, ok2 := splitNumber(rest, ',')
	xStr, rest, ok3 := splitNumber(rest, ',')
	yStr, rest, ok4 := splitNumberEnd(rest)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, 0, 0, 0, p.pos, false
	}
	w, e1 := strconv.Atoi(wStr)
	h, e2 := strconv.Atoi(hStr)
	x, e3 := strconv.Atoi(xStr)
	y, e4 := strconv.Atoi(yStr)
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return 0, 0, 0, 0, p.pos, false
	}
	newPos = len(p.s) - len(rest)
	return w, h, x, y, newPos, true
}

// parseNumber parses a decimal number (the pane id) at p.pos, stopping at
// the first byte that isn't a digit.
func (p *parser) parseNumber() (string, int, bool) {
	start := p.pos
	i := p.pos
	for i < len(p.s) && isDigit(p.s[i]) {
		i++
	}
	if i == start {
		return "", p.pos, false
	}
	return p.s[start:i], i, true
}

// splitNumber consumes digits up to and including the next occurrence of
// sep, returning the digit string and the remainder after sep.
func splitNumber(s string, sep byte) (string, string, bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != sep {
		return "", s, false
	}
	return s[:i], s[i+1:], true
}

// splitNumberEnd consumes digits up to the first non-digit byte (or end of
// string) without requiring a separator, for the final field in "WxH,X,Y".
func splitNumberEnd(s string) (string, string, bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
