package term

const (
	defaultTabWidth = 8
	maxOSCBytes     = 8192 // bounds invariant 7: one incomplete OSC sequence
	maxCSIBytes     = 256  // bounds invariant 7: one incomplete CSI sequence
)

// Result reports what a single Process call changed, for a presentation
// layer deciding what to redraw.
type Result struct {
	ChangedRows []int
	CursorMoved bool
	FullRedraw  bool
}

// Screen is the per-pane emulator state: the primary and (when active)
// alternate cell grids, cursor, saved-cursor slot, current SGR style,
// scroll region, tab stops, and the byte-level parser continuation state
// needed to resume correctly across arbitrarily chunked writes.
type Screen struct {
	rows, cols int

	primary   *grid
	alternate *grid

	cursorRow, cursorCol int
	savedRow, savedCol   int
	pendingWrap          bool

	style Style

	scrollTop, scrollBottom int
	tabStops                map[int]bool

	workingDirectory string

	// parser continuation
	mode       parserMode
	csiPrivate byte
	csiParams  []int
	csiCur     int
	csiCurSet  bool
	csiStarted bool
	csiBytes   int
	oscBuf     []byte
	oscEscPend bool

	utf8Remainder [4]byte
	utf8RemLen    int

	// accumulated across the current Process call
	dirty       map[int]bool
	resultFull  bool
	startRow    int
	startCol    int
}

type parserMode uint8

const (
	modeGround parserMode = iota
	modeEscape
	modeCSI
	modeOSC
)

// NewScreen allocates a screen of the given size, cursor at the origin,
// full-screen scroll region, default tab stops every 8 columns.
func NewScreen(rows, cols int) *Screen {
	rows, cols = sanitizeDims(rows, cols)
	s := &Screen{
		rows:          rows,
		cols:          cols,
		primary:       newGrid(rows, cols),
		scrollBottom:  rows - 1,
		style:         DefaultStyle,
	}
	s.resetTabStops()
	return s
}

func sanitizeDims(rows, cols int) (int, int) {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return rows, cols
}

func (s *Screen) resetTabStops() {
	s.tabStops = make(map[int]bool)
	for c := defaultTabWidth; c < s.cols; c += defaultTabWidth {
		s.tabStops[c] = true
	}
}

// cur returns the currently rendered grid: the alternate grid when active,
// the primary grid otherwise.
func (s *Screen) cur() *grid {
	if s.alternate != nil {
		return s.alternate
	}
	return s.primary
}

// Dims returns the screen's current (rows, cols).
func (s *Screen) Dims() (int, int) { return s.rows, s.cols }

// Cursor returns the cursor's current (row, col), both 0-based.
func (s *Screen) Cursor() (int, int) { return s.cursorRow, s.cursorCol }

// WorkingDirectory returns the last directory hint received via OSC 7.
func (s *Screen) WorkingDirectory() string { return s.workingDirectory }

// Row returns a copy of one row of the currently displayed grid.
func (s *Screen) Row(row int) []Cell {
	g := s.cur()
	if row < 0 || row >= g.rows {
		return nil
	}
	out := make([]Cell, g.cols)
	copy(out, g.cells[row])
	return out
}

// Rows returns a copy of every row of the currently displayed grid, in
// order, suitable for handing to a presentation-layer snapshot.
func (s *Screen) Rows() [][]Cell {
	g := s.cur()
	out := make([][]Cell, g.rows)
	for i := range out {
		out[i] = make([]Cell, g.cols)
		copy(out[i], g.cells[i])
	}
	return out
}

// Resize reallocates the primary grid preserving overlapping top-left
// content, clamps the cursor into range, and resets the scroll region to
// the full screen. The alternate grid, if present, is reallocated blank.
func (s *Screen) Resize(rows, cols int) {
	rows, cols = sanitizeDims(rows, cols)
	s.primary.resize(rows, cols)
	if s.alternate != nil {
		s.alternate = newGrid(rows, cols)
	}
	s.rows = rows
	s.cols = cols
	s.scrollTop = 0
	s.scrollBottom = rows - 1
	s.resetTabStops()
	s.pendingWrap = false
	if s.cursorRow >= rows {
		s.cursorRow = rows - 1
	}
	if s.cursorCol >= cols {
		s.cursorCol = cols - 1
	}
}

func (s *Screen) markDirty(row int) {
	if row < 0 || row >= s.rows {
		return
	}
	if s.dirty == nil {
		s.dirty = make(map[int]bool)
	}
	s.dirty[row] = true
}

func (s *Screen) markDirtyRange(top, bottom int) {
	for r := top; r <= bottom; r++ {
		s.markDirty(r)
	}
}

func (s *Screen) clampCursor() {
	if s.cursorRow < 0 {
		s.cursorRow = 0
	}
	if s.cursorRow >= s.rows {
		s.cursorRow = s.rows - 1
	}
	if s.cursorCol < 0 {
		s.cursorCol = 0
	}
	if s.cursorCol >= s.cols {
		s.cursorCol = s.cols - 1
	}
}

func (s *Screen) setCursor(row, col int) {
	s.cursorRow = row
	s.cursorCol = col
	s.clampCursor()
	s.pendingWrap = false
}

// index performs a line feed: advance the cursor row, scrolling the
// scroll region up by one if already at its bottom. Column is untouched.
func (s *Screen) index() {
	if s.cursorRow == s.scrollBottom {
		s.cur().scrollUp(s.scrollTop, s.scrollBottom, 1)
		s.markDirtyRange(s.scrollTop, s.scrollBottom)
		return
	}
	if s.cursorRow < s.rows-1 {
		s.cursorRow++
	}
}

// newLine is index plus a return to column 0, the behavior pane output's
// LF/VT/FF bytes actually need: tmux panes run ttys in cooked-adjacent
// modes where a bare newline is expected to behave like a teletype one.
func (s *Screen) newLine() {
	s.index()
	s.cursorCol = 0
	s.pendingWrap = false
}

// reverseIndex moves the cursor up, scrolling the scroll region down by
// one if already at its top.
func (s *Screen) reverseIndex() {
	if s.cursorRow == s.scrollTop {
		s.cur().scrollDown(s.scrollTop, s.scrollBottom, 1)
		s.markDirtyRange(s.scrollTop, s.scrollBottom)
		return
	}
	if s.cursorRow > 0 {
		s.cursorRow--
	}
}

func (s *Screen) saveCursor() {
	s.savedRow, s.savedCol = s.cursorRow, s.cursorCol
}

func (s *Screen) restoreCursor() {
	s.cursorRow, s.cursorCol = s.savedRow, s.savedCol
	s.clampCursor()
	s.pendingWrap = false
}

func (s *Screen) nextTabStop() int {
	for c := s.cursorCol + 1; c < s.cols; c++ {
		if s.tabStops[c] {
			return c
		}
	}
	return s.cols - 1
}

// enterAlternate swaps to a freshly cleared alternate grid, preserving
// cursor position per the common 1049 convention. A no-op if already
// active.
func (s *Screen) enterAlternate() {
	if s.alternate != nil {
		return
	}
	s.alternate = newGrid(s.rows, s.cols)
	s.resultFull = true
}

// exitAlternate discards the alternate grid and reveals the primary grid
// unchanged. A no-op if not active.
func (s *Screen) exitAlternate() {
	if s.alternate == nil {
		return
	}
	s.alternate = nil
	s.resultFull = true
}

// fullReset clears the screen, resets the cursor, style, scroll region,
// and tab stops, and discards any alternate grid, matching ESC c (RIS).
func (s *Screen) fullReset() {
	s.primary.clearAll()
	s.alternate = nil
	s.cursorRow, s.cursorCol = 0, 0
	s.savedRow, s.savedCol = 0, 0
	s.pendingWrap = false
	s.style = DefaultStyle
	s.scrollTop = 0
	s.scrollBottom = s.rows - 1
	s.resetTabStops()
	s.resultFull = true
}
