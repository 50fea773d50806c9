package term

// Cell is one grid position: a single rune plus the style it was written
// with. A blank, never-written cell has Rune == ' ' and DefaultStyle.
type Cell struct {
	Rune  rune
	Style Style
}

// blankCell is what a cleared or newly allocated position holds.
var blankCell = Cell{Rune: ' ', Style: DefaultStyle}
