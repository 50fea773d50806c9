package term

import "unicode/utf8"

// Process consumes a chunk of pane output bytes, applying every complete
// escape sequence and printable rune to the screen, and reports which rows
// changed, whether the cursor moved, and whether a full redraw is needed.
// Process never fails: malformed sequences are absorbed silently, leaving
// screen state unchanged beyond whatever was already committed.
func (s *Screen) Process(data []byte) Result {
	s.dirty = nil
	s.resultFull = false
	s.startRow, s.startCol = s.cursorRow, s.cursorCol

	if s.utf8RemLen > 0 {
		need := utf8NeedBytes(s.utf8Remainder[0]) - s.utf8RemLen
		if need > len(data) {
			copy(s.utf8Remainder[s.utf8RemLen:], data)
			s.utf8RemLen += len(data)
			return s.collectResult()
		}
		copy(s.utf8Remainder[s.utf8RemLen:], data[:need])
		r, _ := utf8.DecodeRune(s.utf8Remainder[:s.utf8RemLen+need])
		s.consumeRune(r)
		data = data[need:]
		s.utf8RemLen = 0
	}

	for len(data) > 0 {
		b := data[0]
		if b < utf8.RuneSelf {
			s.consumeRune(rune(b))
			data = data[1:]
			continue
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(data) {
				s.utf8RemLen = copy(s.utf8Remainder[:], data)
				break
			}
			// Invalid byte in the middle of the stream: drop it and move on.
			data = data[1:]
			continue
		}
		s.consumeRune(r)
		data = data[size:]
	}

	return s.collectResult()
}

func (s *Screen) collectResult() Result {
	res := Result{
		CursorMoved: s.cursorRow != s.startRow || s.cursorCol != s.startCol,
		FullRedraw:  s.resultFull,
	}
	if len(s.dirty) > 0 {
		rows := make([]int, 0, len(s.dirty))
		for r := range s.dirty {
			rows = append(rows, r)
		}
		sortInts(rows)
		res.ChangedRows = rows
	}
	return res
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

func utf8NeedBytes(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

func (s *Screen) consumeRune(r rune) {
	switch s.mode {
	case modeEscape:
		s.consumeEscape(r)
		return
	case modeCSI:
		s.consumeCSI(r)
		return
	case modeOSC:
		s.consumeOSC(r)
		return
	}

	switch r {
	case 0x1b:
		s.mode = modeEscape
	case '\r':
		s.cursorCol = 0
		s.pendingWrap = false
	case '\n', '\v', '\f':
		s.newLine()
	case '\b':
		if s.cursorCol > 0 {
			s.cursorCol--
		}
		s.pendingWrap = false
	case '\t':
		s.cursorCol = s.nextTabStop()
		s.pendingWrap = false
	case 0x07, 0x00:
		// BEL, NUL: ignored.
	default:
		if r < 0x20 || r == 0x7f {
			return
		}
		s.writeRune(r)
	}
}

// writeRune implements the Ground-state printable-character contract: if
// latched at the pending-wrap position, wrap to column 0 and index first;
// write the cell at the cursor; advance the cursor, or set the pending-wrap
// latch instead of overrunning the last column.
func (s *Screen) writeRune(r rune) {
	if s.pendingWrap {
		s.cursorCol = 0
		s.index()
		s.pendingWrap = false
	}
	g := s.cur()
	g.cells[s.cursorRow][s.cursorCol] = Cell{Rune: r, Style: s.style}
	s.markDirty(s.cursorRow)
	if s.cursorCol == s.cols-1 {
		s.pendingWrap = true
	} else {
		s.cursorCol++
	}
}

func (s *Screen) consumeEscape(r rune) {
	switch r {
	case '[':
		s.mode = modeCSI
		s.resetCSI()
	case ']':
		s.mode = modeOSC
		s.oscBuf = s.oscBuf[:0]
		s.oscEscPend = false
	case '7':
		s.saveCursor()
		s.mode = modeGround
	case '8':
		s.restoreCursor()
		s.mode = modeGround
	case 'M':
		s.reverseIndex()
		s.mode = modeGround
	case 'D':
		s.index()
		s.mode = modeGround
	case 'c':
		s.fullReset()
		s.mode = modeGround
	default:
		// Unrecognized introducer: absorb and return to ground.
		s.mode = modeGround
	}
}

func (s *Screen) resetCSI() {
	s.csiPrivate = 0
	s.csiParams = s.csiParams[:0]
	s.csiCur = 0
	s.csiCurSet = false
	s.csiStarted = false
	s.csiBytes = 0
}

func (s *Screen) consumeCSI(r rune) {
	s.csiBytes++
	if s.csiBytes > maxCSIBytes {
		s.mode = modeGround
		return
	}

	if !s.csiStarted {
		s.csiStarted = true
		switch r {
		case '?', '>', '!', '=':
			s.csiPrivate = byte(r)
			return
		}
	}

	switch {
	case r >= '0' && r <= '9':
		s.csiCur = s.csiCur*10 + int(r-'0')
		s.csiCurSet = true
	case r == ';' || r == ':':
		s.csiParams = append(s.csiParams, s.csiCur)
		s.csiCur = 0
		s.csiCurSet = false
	case r >= 0x40 && r <= 0x7e:
		s.csiParams = append(s.csiParams, s.csiCur)
		s.dispatchCSI(byte(r), s.csiParams)
		s.mode = modeGround
	default:
		// Intermediate bytes (e.g. space) between params and final byte:
		// tolerated and ignored.
	}
}

func (s *Screen) consumeOSC(r rune) {
	if r == 0x07 {
		s.finishOSC()
		s.mode = modeGround
		return
	}
	if s.oscEscPend {
		if r == '\\' {
			s.finishOSC()
			s.mode = modeGround
			return
		}
		s.oscEscPend = false
		s.oscBuf = utf8.AppendRune(s.oscBuf, 0x1b)
	}
	if r == 0x1b {
		s.oscEscPend = true
		return
	}
	if len(s.oscBuf) > maxOSCBytes {
		s.mode = modeGround
		return
	}
	s.oscBuf = utf8.AppendRune(s.oscBuf, r)
}

func (s *Screen) finishOSC() {
	payload := string(s.oscBuf)
	// OS-command number, then ';', then the command's argument.
	sep := -1
	for i := 0; i < len(payload); i++ {
		if payload[i] == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return
	}
	code := payload[:sep]
	arg := payload[sep+1:]
	switch code {
	case "7":
		s.workingDirectory = arg
	default:
		// Window title (0/1/2) and anything else: discarded.
	}
}
