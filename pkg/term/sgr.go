package term

// applySGR applies a full sequence of Select Graphic Rendition parameters
// to the current style. Parameters are iterated left to right; 38/48
// consume the following one or more parameters to build an indexed or
// truecolor color. Any unrecognized number is ignored and iteration
// continues.
func (s *Screen) applySGR(params []int) {
	if len(params) == 0 {
		s.style = DefaultStyle
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s.style = DefaultStyle
		case p == 1:
			s.style.Bold = true
		case p == 2:
			s.style.Dim = true
		case p == 3:
			s.style.Italic = true
		case p == 4:
			s.style.Underline = true
		case p == 5 || p == 6:
			s.style.Blink = true
		case p == 7:
			s.style.Reverse = true
		case p == 8:
			s.style.Hidden = true
		case p == 9:
			s.style.Strikethrough = true
		case p == 21:
			s.style.Bold = false
		case p == 22:
			s.style.Bold = false
			s.style.Dim = false
		case p == 23:
			s.style.Italic = false
		case p == 24:
			s.style.Underline = false
		case p == 25:
			s.style.Blink = false
		case p == 27:
			s.style.Reverse = false
		case p == 28:
			s.style.Hidden = false
		case p == 29:
			s.style.Strikethrough = false
		case p >= 30 && p <= 37:
			s.style.Fg = Basic(uint8(p - 30))
		case p == 38:
			if c, consumed := parseExtendedColor(params[i+1:]); consumed > 0 {
				s.style.Fg = c
				i += consumed
			}
		case p == 39:
			s.style.Fg = DefaultColor
		case p >= 40 && p <= 47:
			s.style.Bg = Basic(uint8(p - 40))
		case p == 48:
			if c, consumed := parseExtendedColor(params[i+1:]); consumed > 0 {
				s.style.Bg = c
				i += consumed
			}
		case p == 49:
			s.style.Bg = DefaultColor
		case p >= 90 && p <= 97:
			s.style.Fg = Bright(uint8(p - 90))
		case p >= 100 && p <= 107:
			s.style.Bg = Bright(uint8(p - 100))
		default:
			// Unrecognized: ignored, continue iterating.
		}
	}
}

// parseExtendedColor reads the parameters following a 38 or 48, returning
// the decoded color and how many additional parameters it consumed. It
// recognizes "5;N" (256-indexed) and "2;R;G;B" (truecolor); anything else
// consumes nothing and is left for the caller to ignore.
func parseExtendedColor(rest []int) (Color, int) {
	if len(rest) == 0 {
		return Color{}, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return Color{}, 0
		}
		return Indexed(uint8(rest[1])), 2
	case 2:
		if len(rest) < 4 {
			return Color{}, 0
		}
		return RGB(uint8(rest[1]), uint8(rest[2]), uint8(rest[3])), 4
	default:
		return Color{}, 0
	}
}
