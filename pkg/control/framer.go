package control

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

// MaxFrameBytes bounds the size of a single unterminated line the Framer
// will buffer before giving up. A remote that never sends the terminating
// LF for this many bytes is either misbehaving or hostile; either way the
// connection should be torn down rather than let the buffer grow without
// bound (invariant 7 in the data model).
const MaxFrameBytes = 4 * 1024 * 1024

// ErrOverlongFrame is returned by Feed when the unterminated-line buffer
// exceeds MaxFrameBytes.
var ErrOverlongFrame = errors.New("control: overlong frame")

// Framer turns a byte stream into a sequence of decoded Messages. It keeps
// any trailing incomplete line across calls to Feed, so callers may hand it
// arbitrarily chunked input (including mid-escape, mid-line chunks) and get
// identical results to feeding the same bytes in one call.
//
// A Framer is not safe for concurrent use; callers serialize access to it
// (in this module, the connection manager's single ingest goroutine per
// host does this).
type Framer struct {
	buf []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends data to the framer's internal buffer, extracts every
// complete line, decodes each line that begins with '%' into a Message, and
// returns them in order. Lines not beginning with '%' are tmux's own chatter
// and are dropped without producing a Message. Any trailing partial line is
// retained for the next call. Feed never
// returns an error for malformed records — those become Unknown messages.
// It returns ErrOverlongFrame only when the buffered, still-incomplete line
// exceeds MaxFrameBytes; the caller should treat the connection as fatal in
// that case (the Framer's state is left as-is and must not be reused).
func (f *Framer) Feed(data []byte) ([]Message, error) {
	f.buf = append(f.buf, data...)

	var out []Message
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}
		line := f.buf[:idx]
		f.buf = f.buf[idx+1:]
		if len(line) == 0 || line[0] != '%' {
			continue
		}
		out = append(out, decodeLine(line))
	}

	if len(f.buf) > MaxFrameBytes {
		return out, ErrOverlongFrame
	}
	return out, nil
}

// decodeLine decodes one LF-terminated (LF already stripped) control-mode
// record. Feed only passes lines beginning with '%'; any other line given
// to decodeLine comes back as an Unknown message carrying the raw text.
func decodeLine(line []byte) Message {
	s := string(line)
	s = strings.TrimSuffix(s, "\r")

	if !strings.HasPrefix(s, "%") {
		return Message{Kind: KindUnknown, Raw: s}
	}

	// First token is the command; rest is space-separated arguments, with
	// the final field (if any) left intact for payload-bearing commands.
	fields := strings.SplitN(s, " ", 2)
	cmd := fields[0]
	rest := ""
	if len(fields) == 2 {
		rest = fields[1]
	}

	switch cmd {
	case "%output":
		return decodeOutput(rest, s)
	case "%layout-change":
		return decodeLayoutChange(rest, s)
	case "%window-add":
		return decodeWindowAdd(rest, s)
	case "%window-close":
		return decodeSingleArg(rest, s, KindWindowClose, func(m *Message, a string) { m.WindowID = a })
	case "%window-renamed":
		return decodeWindowRenamed(rest, s)
	case "%session-changed":
		return decodeSessionChanged(rest, s)
	case "%session-closed":
		return decodeSingleArg(rest, s, KindSessionClosed, func(m *Message, a string) { m.SessionID = a })
	case "%pane-mode-changed":
		return decodePaneMode(rest, s)
	case "%pane-focus-in":
		return decodeSingleArg(rest, s, KindPaneFocusIn, func(m *Message, a string) { m.PaneID = a })
	case "%pane-focus-out":
		return decodeSingleArg(rest, s, KindPaneFocusOut, func(m *Message, a string) { m.PaneID = a })
	case "%pane-set-clipboard":
		return decodePaneSetClipboard(rest, s)
	case "%exit":
		return Message{Kind: KindExit, Reason: rest, Raw: s}
	case "%subscription-changed":
		return Message{Kind: KindSubscriptions, Raw: s}
	case "%client-session-changed", "%features":
		return Message{Kind: KindFeatures, Raw: s}
	default:
		return Message{Kind: KindUnknown, Raw: s}
	}
}

func decodeOutput(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	return Message{
		Kind:       KindOutput,
		PaneID:     fields[0],
		Payload:    decodeOutputPayload(fields[1]),
		HasPayload: true,
	}
}

func decodeLayoutChange(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	// Real tmux sends additional trailing fields (window flags, visible
	// layout) after the layout descriptor; only the first token of the
	// remainder is the layout string.
	layoutFields := strings.SplitN(fields[1], " ", 2)
	return Message{
		Kind:     KindLayoutChange,
		WindowID: fields[0],
		Layout:   layoutFields[0],
	}
}

func decodeWindowAdd(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	m := Message{Kind: KindWindowAdd, WindowID: fields[0]}
	if len(fields) == 2 {
		m.WindowName = fields[1]
	}
	return m
}

func decodeWindowRenamed(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	return Message{Kind: KindWindowRenamed, WindowID: fields[0], WindowName: fields[1]}
}

func decodeSessionChanged(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	m := Message{Kind: KindSessionChanged, SessionID: fields[0]}
	if len(fields) == 2 {
		m.SessionName = fields[1]
	}
	return m
}

func decodePaneMode(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	return Message{Kind: KindPaneMode, PaneID: fields[0], ModeName: fields[1]}
}

func decodePaneSetClipboard(rest, raw string) Message {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	m := Message{Kind: KindPaneSetClipboard, PaneID: fields[0]}
	if len(fields) == 2 && fields[1] != "" {
		decoded, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil {
			return Message{Kind: KindUnknown, Raw: raw}
		}
		m.Payload = decoded
		m.HasPayload = true
	}
	return m
}

func decodeSingleArg(rest, raw string, kind Kind, set func(m *Message, a string)) Message {
	if rest == "" {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	m := Message{Kind: kind}
	set(&m, strings.TrimSpace(strings.SplitN(rest, " ", 2)[0]))
	return m
}
