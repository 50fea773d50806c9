package term

// ColorKind discriminates the tagged-union Color value.
type ColorKind uint8

const (
	// ColorDefault is the terminal's default foreground/background.
	ColorDefault ColorKind = iota
	// ColorBasic is one of the 8 named ANSI colors (0-7).
	ColorBasic
	// ColorBright is one of the 8 bright ANSI colors (0-7).
	ColorBright
	// ColorIndexed is one of the 256 palette entries.
	ColorIndexed
	// ColorRGB is a 24-bit truecolor triple.
	ColorRGB
)

// Color is a tagged variant covering every form SGR can select: the
// terminal default, a basic or bright named color, a 256-color palette
// index, or a 24-bit RGB triple. Only the field matching Kind is
// meaningful.
type Color struct {
	Kind  ColorKind
	Index uint8 // ColorBasic (0-7), ColorBright (0-7), or ColorIndexed (0-255)
	R, G, B uint8 // ColorRGB
}

// DefaultColor is the zero value, equal to an unset/default color.
var DefaultColor = Color{Kind: ColorDefault}

// Basic returns a basic (30-37/40-47) named color.
func Basic(n uint8) Color { return Color{Kind: ColorBasic, Index: n & 7} }

// Bright returns a bright (90-97/100-107) named color.
func Bright(n uint8) Color { return Color{Kind: ColorBright, Index: n & 7} }

// Indexed returns a 256-palette color.
func Indexed(n uint8) Color { return Color{Kind: ColorIndexed, Index: n} }

// RGB returns a 24-bit truecolor.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }
