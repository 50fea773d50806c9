package term

// dispatchCSI applies one complete CSI sequence. params always has at
// least one entry (the trailing accumulator is pushed before dispatch);
// an omitted or explicit-zero parameter both read back as 0 and are
// reinterpreted per-command via paramOr.
func (s *Screen) dispatchCSI(final byte, params []int) {
	private := s.csiPrivate

	if private == '?' && (final == 'h' || final == 'l') {
		s.dispatchPrivateMode(final == 'h', params)
		return
	}

	n := paramOr(params, 0, 1)
	if n < 1 {
		n = 1
	}

	switch final {
	case 'A':
		s.setCursor(s.cursorRow-n, s.cursorCol)
	case 'B':
		s.setCursor(s.cursorRow+n, s.cursorCol)
	case 'C':
		s.setCursor(s.cursorRow, s.cursorCol+n)
	case 'D':
		s.setCursor(s.cursorRow, s.cursorCol-n)
	case 'E':
		s.setCursor(s.cursorRow+n, 0)
	case 'F':
		s.setCursor(s.cursorRow-n, 0)
	case 'G':
		s.setCursor(s.cursorRow, n-1)
	case 'H', 'f':
		row := paramOr(params, 0, 1)
		col := paramOr(params, 1, 1)
		s.setCursor(row-1, col-1)
	case 'd':
		s.setCursor(n-1, s.cursorCol)
	case 'J':
		s.eraseDisplay(paramOr(params, 0, 0))
	case 'K':
		s.eraseLine(paramOr(params, 0, 0))
	case 'L':
		s.cur().insertLines(s.cursorRow, s.scrollTop, s.scrollBottom, n)
		s.markDirtyRange(s.cursorRow, s.scrollBottom)
	case 'M':
		s.cur().deleteLines(s.cursorRow, s.scrollTop, s.scrollBottom, n)
		s.markDirtyRange(s.cursorRow, s.scrollBottom)
	case 'P':
		s.deleteChars(n)
	case '@':
		s.insertChars(n)
	case 'X':
		s.eraseChars(n)
	case 'S':
		s.cur().scrollUp(s.scrollTop, s.scrollBottom, n)
		s.markDirtyRange(s.scrollTop, s.scrollBottom)
	case 'T':
		s.cur().scrollDown(s.scrollTop, s.scrollBottom, n)
		s.markDirtyRange(s.scrollTop, s.scrollBottom)
	case 'r':
		top := paramOr(params, 0, 1) - 1
		bottom := paramOr(params, 1, s.rows) - 1
		s.setScrollRegion(top, bottom)
	case 's':
		if private == 0 {
			s.saveCursor()
		}
	case 'u':
		if private == 0 {
			s.restoreCursor()
		}
	case 'm':
		s.applySGR(params)
	case 'c', 'n':
		// Device attributes / status reports: no response is written back.
	default:
		// Unrecognized final byte: ignored.
	}
}

// paramOr returns params[i] if present and non-zero, otherwise def.
func paramOr(params []int, i, def int) int {
	if i >= len(params) {
		return def
	}
	if params[i] == 0 {
		return def
	}
	return params[i]
}

func (s *Screen) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= s.rows {
		bottom = s.rows - 1
	}
	if top > bottom {
		top, bottom = 0, s.rows-1
	}
	s.scrollTop = top
	s.scrollBottom = bottom
	s.setCursor(0, 0)
}

func (s *Screen) eraseDisplay(mode int) {
	g := s.cur()
	fill := Cell{Rune: ' ', Style: s.style}
	switch mode {
	case 0:
		s.eraseLineCells(s.cursorRow, s.cursorCol, s.cols-1, fill)
		for r := s.cursorRow + 1; r < s.rows; r++ {
			g.cells[r] = fillRow(s.cols, fill)
			s.markDirty(r)
		}
	case 1:
		for r := 0; r < s.cursorRow; r++ {
			g.cells[r] = fillRow(s.cols, fill)
			s.markDirty(r)
		}
		s.eraseLineCells(s.cursorRow, 0, s.cursorCol, fill)
	case 2, 3:
		// 3 additionally discards scrollback, which this emulator never
		// retains, so it is equivalent to 2.
		for r := 0; r < s.rows; r++ {
			g.cells[r] = fillRow(s.cols, fill)
		}
		s.markDirtyRange(0, s.rows-1)
	}
}

func (s *Screen) eraseLine(mode int) {
	fill := Cell{Rune: ' ', Style: s.style}
	switch mode {
	case 0:
		s.eraseLineCells(s.cursorRow, s.cursorCol, s.cols-1, fill)
	case 1:
		s.eraseLineCells(s.cursorRow, 0, s.cursorCol, fill)
	case 2:
		s.eraseLineCells(s.cursorRow, 0, s.cols-1, fill)
	}
}

func (s *Screen) eraseLineCells(row, from, to int, fill Cell) {
	if row < 0 || row >= s.rows {
		return
	}
	if from < 0 {
		from = 0
	}
	if to >= s.cols {
		to = s.cols - 1
	}
	g := s.cur()
	for c := from; c <= to; c++ {
		g.cells[row][c] = fill
	}
	s.markDirty(row)
}

func fillRow(cols int, fill Cell) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = fill
	}
	return row
}

func (s *Screen) deleteChars(n int) {
	g := s.cur()
	row := g.cells[s.cursorRow]
	if n > s.cols-s.cursorCol {
		n = s.cols - s.cursorCol
	}
	copy(row[s.cursorCol:], row[s.cursorCol+n:])
	for c := s.cols - n; c < s.cols; c++ {
		row[c] = Cell{Rune: ' ', Style: s.style}
	}
	s.markDirty(s.cursorRow)
}

func (s *Screen) insertChars(n int) {
	g := s.cur()
	row := g.cells[s.cursorRow]
	if n > s.cols-s.cursorCol {
		n = s.cols - s.cursorCol
	}
	copy(row[s.cursorCol+n:], row[s.cursorCol:s.cols-n])
	for c := s.cursorCol; c < s.cursorCol+n; c++ {
		row[c] = Cell{Rune: ' ', Style: s.style}
	}
	s.markDirty(s.cursorRow)
}

func (s *Screen) eraseChars(n int) {
	s.eraseLineCells(s.cursorRow, s.cursorCol, s.cursorCol+n-1, Cell{Rune: ' ', Style: s.style})
}

func (s *Screen) dispatchPrivateMode(set bool, params []int) {
	for _, p := range params {
		switch p {
		case 1049:
			if set {
				s.enterAlternate()
			} else {
				s.exitAlternate()
			}
		default:
			// Other private modes (cursor visibility, bracketed paste,
			// mouse reporting, ...) aren't modeled; ignored.
		}
	}
}
