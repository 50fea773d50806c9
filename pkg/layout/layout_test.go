package layout

import "testing"

func TestParse_SinglePane(t *testing.T) {
	boxes := Parse("c3b2,80x24,0,0,1")
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d: %+v", len(boxes), boxes)
	}
	want := PaneBox{PaneID: "1", X: 0, Y: 0, Width: 80, Height: 24}
	if boxes[0] != want {
		t.Fatalf("box = %+v, want %+v", boxes[0], want)
	}
}

func TestParse_NoChecksumPrefix(t *testing.T) {
	// Synthetic input with the checksum already stripped should parse the
	// same way as the real tmux form.
	boxes := Parse("80x24,0,0,1")
	if len(boxes) != 1 || boxes[0].PaneID != "1" {
		t.Fatalf("unexpected boxes: %+v", boxes)
	}
}

func TestParse_HorizontalSplit(t *testing.T) {
	// Two panes side by side: left 39 cols, right 40 cols, 1 col separator.
	boxes := Parse("a1b2,80x24,0,0{39x24,0,0,1,40x24,40,0,2}")
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %+v", len(boxes), boxes)
	}
	if boxes[0] != (PaneBox{PaneID: "1", X: 0, Y: 0, Width: 39, Height: 24}) {
		t.Fatalf("box 0 = %+v", boxes[0])
	}
	if boxes[1] != (PaneBox{PaneID: "2", X: 40, Y: 0, Width: 40, Height: 24}) {
		t.Fatalf("box 1 = %+v", boxes[1])
	}
}

func TestParse_VerticalSplit(t *testing.T) {
	boxes := Parse("a1b2,80x24,0,0[80x11,0,0,1,80x12,0,12,2]")
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %+v", len(boxes), boxes)
	}
	if boxes[0] != (PaneBox{PaneID: "1", X: 0, Y: 0, Width: 80, Height: 11}) {
		t.Fatalf("box 0 = %+v", boxes[0])
	}
	if boxes[1] != (PaneBox{PaneID: "2", X: 0, Y: 12, Width: 80, Height: 12}) {
		t.Fatalf("box 1 = %+v", boxes[1])
	}
}

// Depth-first, left/top-first traversal order: a vertical split whose
// second child is itself split horizontally should yield the top pane
// first, then the bottom-left pane, then the bottom-right pane.
func TestParse_NestedSplit_TraversalOrder(t *testing.T) {
	descriptor := "a1b2,158x88,0,0[158x44,0,0,1,158x43,0,45{79x43,0,45,2,78x43,80,45,3}]"
	boxes := Parse(descriptor)
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d: %+v", len(boxes), boxes)
	}
	wantIDs := []string{"1", "2", "3"}
	for i, id := range wantIDs {
		if boxes[i].PaneID != id {
			t.Fatalf("box %d id = %q, want %q (full: %+v)", i, boxes[i].PaneID, id, boxes)
		}
	}
	if boxes[0] != (PaneBox{PaneID: "1", X: 0, Y: 0, Width: 158, Height: 44}) {
		t.Fatalf("box 0 = %+v", boxes[0])
	}
	if boxes[1] != (PaneBox{PaneID: "2", X: 0, Y: 45, Width: 79, Height: 43}) {
		t.Fatalf("box 1 = %+v", boxes[1])
	}
	if boxes[2] != (PaneBox{PaneID: "3", X: 80, Y: 45, Width: 78, Height: 43}) {
		t.Fatalf("box 2 = %+v", boxes[2])
	}
}

func TestParse_EmptyDescriptor(t *testing.T) {
	if boxes := Parse(""); len(boxes) != 0 {
		t.Fatalf("expected no boxes, got %+v", boxes)
	}
}

func TestParse_MalformedInput_NoBoxes(t *testing.T) {
	cases := []string{
		"not a layout at all",
		"c3b2,",
		"c3b2,80x24,0",
		"c3b2,80x24,0,0{unterminated",
		"c3b2,80x24,0,0,",
	}
	for _, c := range cases {
		// Must not panic or hang, and none of these inputs holds a
		// complete pane node, so no box is emitted.
		if boxes := Parse(c); len(boxes) != 0 {
			t.Fatalf("Parse(%q) = %+v, want no boxes", c, boxes)
		}
	}
}

func TestParse_MalformedChildDoesNotHangSplit(t *testing.T) {
	// A split whose second child is garbage: the first child should still
	// be recovered and parsing must terminate rather than loop forever.
	boxes := Parse("a1b2,80x24,0,0{39x24,0,0,1,garbage}")
	if len(boxes) != 1 || boxes[0].PaneID != "1" {
		t.Fatalf("unexpected boxes: %+v", boxes)
	}
}

func TestParse_UnknownFragmentSkipped(t *testing.T) {
	// A bad checksum-looking prefix that isn't actually hex should be left
	// in place rather than misinterpreted as a checksum.
	boxes := Parse("zzzz,80x24,0,0,1")
	if len(boxes) != 0 {
		t.Fatalf("expected no boxes from unparsable input, got %+v", boxes)
	}
}
