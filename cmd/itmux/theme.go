package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"itmux/pkg/term"
)

// styleFor converts one cell's term.Style into the lipgloss.Style that
// renders it, letting lipgloss's termenv-backed color profile detection
// downgrade 24-bit/256/basic colors to whatever this terminal supports.
func styleFor(s term.Style) lipgloss.Style {
	out := lipgloss.NewStyle()

	if fg, ok := lipglossColor(s.Fg); ok {
		out = out.Foreground(fg)
	}
	if bg, ok := lipglossColor(s.Bg); ok {
		out = out.Background(bg)
	}
	if s.Bold {
		out = out.Bold(true)
	}
	if s.Dim {
		out = out.Faint(true)
	}
	if s.Italic {
		out = out.Italic(true)
	}
	if s.Underline {
		out = out.Underline(true)
	}
	if s.Blink {
		out = out.Blink(true)
	}
	if s.Strikethrough {
		out = out.Strikethrough(true)
	}
	if s.Reverse {
		out = reverseStyle(out, s)
	}
	return out
}

// reverseStyle swaps foreground and background the way SGR reverse video
// does, by re-deriving the style with fg/bg swapped (a default fg or bg
// becomes color 0 or 7 respectively).
func reverseStyle(base lipgloss.Style, s term.Style) lipgloss.Style {
	out := base
	if fg, ok := lipglossColor(s.Bg); ok {
		out = out.Foreground(fg)
	} else {
		out = out.Foreground(lipgloss.Color("0"))
	}
	if bg, ok := lipglossColor(s.Fg); ok {
		out = out.Background(bg)
	} else {
		out = out.Background(lipgloss.Color("7"))
	}
	return out
}

func lipglossColor(c term.Color) (lipgloss.Color, bool) {
	switch c.Kind {
	case term.ColorDefault:
		return "", false
	case term.ColorBasic:
		return lipgloss.Color(strconv.Itoa(int(c.Index))), true
	case term.ColorBright:
		return lipgloss.Color(strconv.Itoa(int(c.Index) + 8)), true
	case term.ColorIndexed:
		return lipgloss.Color(strconv.Itoa(int(c.Index))), true
	case term.ColorRGB:
		return lipgloss.Color(hexColor(c.R, c.G, c.B)), true
	default:
		return "", false
	}
}

func hexColor(r, g, b uint8) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 7)
	buf[0] = '#'
	for i, v := range []uint8{r, g, b} {
		buf[1+i*2] = hexDigits[v>>4]
		buf[2+i*2] = hexDigits[v&0xf]
	}
	return string(buf)
}

// renderRow turns one row of term.Cell values into a single ANSI-styled
// string, grouping consecutive cells that share a style into one
// lipgloss.Render call rather than styling cell-by-cell.
func renderRow(row []term.Cell) string {
	if len(row) == 0 {
		return ""
	}
	var b strings.Builder
	runStart := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].Style == row[runStart].Style {
			continue
		}
		b.WriteString(styleFor(row[runStart].Style).Render(runeString(row[runStart:i])))
		runStart = i
	}
	return b.String()
}

func runeString(cells []term.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if c.Rune == 0 {
			b.WriteRune(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}
