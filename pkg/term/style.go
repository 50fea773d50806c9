package term

// Style is the set of SGR attributes applied to a cell.
type Style struct {
	Fg Color
	Bg Color

	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Blink         bool
	Reverse       bool
	Hidden        bool
	Strikethrough bool
}

// DefaultStyle is the style a fresh cell or a post-reset cursor carries.
var DefaultStyle = Style{Fg: DefaultColor, Bg: DefaultColor}
