package control

import (
	"bytes"
	"testing"
)

func TestFramer_SessionChanged(t *testing.T) {
	f := NewFramer()
	msgs, err := f.Feed([]byte("%session-changed $1 itmux\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Kind != KindSessionChanged || m.SessionID != "$1" || m.SessionName != "itmux" {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestFramer_OutputDecoding(t *testing.T) {
	f := NewFramer()
	msgs, err := f.Feed([]byte("%output %0 hello\\040world\\012\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Kind != KindOutput || m.PaneID != "%0" {
		t.Fatalf("unexpected message: %+v", m)
	}
	want := []byte("hello world\n")
	if !bytes.Equal(m.Payload, want) {
		t.Fatalf("payload = %q, want %q", m.Payload, want)
	}
	if len(m.Payload) != 12 || m.Payload[len(m.Payload)-1] != 0x0A {
		t.Fatalf("payload shape unexpected: %v", m.Payload)
	}
}

func TestFramer_DiscardsNonPercentLines(t *testing.T) {
	f := NewFramer()
	msgs, err := f.Feed([]byte("this is tmux's own chatter\n%exit detached\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Kind == KindUnknown {
		t.Fatalf("expected the non-%% line to be discarded, got %+v", msgs[0])
	}
	if msgs[0].Kind != KindExit || msgs[0].Reason != "detached" {
		t.Fatalf("unexpected exit message: %+v", msgs[0])
	}
}

func TestFramer_ResumptionAcrossChunks(t *testing.T) {
	whole := "%output %0 hello\\040world\\012\n%session-changed $1 itmux\n%window-add @1 bash\n"

	// Property 1: parse(whole) must equal the concatenation of parse(chunk)
	// for any splitting of whole into chunks.
	splits := [][]int{
		{len(whole)},
		{1, len(whole) - 1},
		{5, 10, len(whole) - 15},
		{len(whole) / 2, len(whole) - len(whole)/2},
	}

	base := NewFramer()
	wantAll, err := base.Feed([]byte(whole))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, split := range splits {
		f := NewFramer()
		var got []Message
		pos := 0
		for _, n := range split {
			chunk := whole[pos : pos+n]
			pos += n
			msgs, err := f.Feed([]byte(chunk))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got = append(got, msgs...)
		}
		if len(got) != len(wantAll) {
			t.Fatalf("split %v: got %d messages, want %d", split, len(got), len(wantAll))
		}
		for i := range got {
			if got[i].Kind != wantAll[i].Kind {
				t.Fatalf("split %v msg %d: kind mismatch %v vs %v", split, i, got[i].Kind, wantAll[i].Kind)
			}
		}
	}
}

// Also feed the bytes one at a time to stress the continuation buffer.
func TestFramer_ResumptionByteAtATime(t *testing.T) {
	whole := []byte("%output %0 a\\134b\\012\n")
	f := NewFramer()
	var got []Message
	for _, b := range whole {
		msgs, err := f.Feed([]byte{b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, msgs...)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	want := []byte("a\\b\n")
	if !bytes.Equal(got[0].Payload, want) {
		t.Fatalf("payload = %q, want %q", got[0].Payload, want)
	}
}

func TestFramer_OverlongFrame(t *testing.T) {
	f := NewFramer()
	big := bytes.Repeat([]byte("x"), MaxFrameBytes+1)
	_, err := f.Feed(big)
	if err != ErrOverlongFrame {
		t.Fatalf("expected ErrOverlongFrame, got %v", err)
	}
}

func TestFramer_PaneSetClipboard(t *testing.T) {
	f := NewFramer()
	// base64("hi") == "aGk="
	msgs, err := f.Feed([]byte("%pane-set-clipboard %3 aGk=\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != KindPaneSetClipboard {
		t.Fatalf("unexpected: %+v", msgs)
	}
	if !msgs[0].HasPayload || string(msgs[0].Payload) != "hi" {
		t.Fatalf("unexpected payload: %+v", msgs[0])
	}
}

func TestFramer_PaneSetClipboardAbsent(t *testing.T) {
	f := NewFramer()
	msgs, err := f.Feed([]byte("%pane-set-clipboard %3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != KindPaneSetClipboard {
		t.Fatalf("unexpected: %+v", msgs)
	}
	if msgs[0].HasPayload {
		t.Fatalf("expected no payload, got %+v", msgs[0])
	}
}

// Property 2: round-tripping arbitrary bytes through the %output encoding
// must reproduce them exactly.
func TestOutputPayloadRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("plain ascii"),
		[]byte("tabs\tand\nnewlines\r"),
		{0x00, 0x01, 0x7f, 0xff, 0x80},
		[]byte(`backslash \ and percent % and space   runs`),
		bytes.Repeat([]byte{0x1b}, 10),
	}
	for _, b := range cases {
		encoded := EncodeOutputPayload(b)
		line := "%output %0 " + encoded + "\n"
		f := NewFramer()
		msgs, err := f.Feed([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message for %q, got %d", b, len(msgs))
		}
		if !bytes.Equal(msgs[0].Payload, b) {
			t.Fatalf("round trip mismatch: got %v, want %v", msgs[0].Payload, b)
		}
	}
}

func TestFramer_LayoutChange(t *testing.T) {
	f := NewFramer()
	msgs, err := f.Feed([]byte("%layout-change @3 c3b2,80x24,0,0,1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != KindLayoutChange {
		t.Fatalf("unexpected: %+v", msgs)
	}
	if msgs[0].WindowID != "@3" || msgs[0].Layout != "c3b2,80x24,0,0,1" {
		t.Fatalf("unexpected layout message: %+v", msgs[0])
	}
}
