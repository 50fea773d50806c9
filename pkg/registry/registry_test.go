package registry

import (
	"testing"

	"itmux/pkg/layout"
)

func TestAddWindow_RequiresCurrentSession(t *testing.T) {
	r := New()
	r.AddWindow("@1", "bash") // no session yet: must be dropped
	if _, ok := r.Window("@1"); ok {
		t.Fatalf("expected window not to be created without a current session")
	}

	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "bash")
	w, ok := r.Window("@1")
	if !ok || w.SessionID != "$1" {
		t.Fatalf("window = %+v, ok=%v", w, ok)
	}
	sessions := r.Sessions()
	if len(sessions) != 1 || len(sessions[0].WindowIDs) != 1 || sessions[0].WindowIDs[0] != "@1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestApplyLayout_SinglePane(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@3", "bash")

	boxes := layout.Parse("c3b2,80x24,0,0,1")
	r.ApplyLayout("@3", "c3b2,80x24,0,0,1", boxes)

	w, ok := r.Window("@3")
	if !ok {
		t.Fatalf("window missing")
	}
	if w.Width != 80 || w.Height != 24 {
		t.Fatalf("window dims = %dx%d, want 80x24", w.Width, w.Height)
	}
	panes := r.Panes("@3")
	if len(panes) != 1 || panes[0].ID != "1" {
		t.Fatalf("unexpected panes: %+v", panes)
	}
	if panes[0].Rows != 24 || panes[0].Cols != 80 {
		t.Fatalf("pane dims = %dx%d", panes[0].Rows, panes[0].Cols)
	}
}

// Testable property 7 — registry cascade.
func TestCloseWindow_RemovesOnlyItsPanes(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "one")
	r.AddWindow("@2", "two")
	r.ApplyLayout("@1", "", layout.Parse("80x24,0,0{40x24,0,0,1,39x24,41,0,2}"))
	r.ApplyLayout("@2", "", layout.Parse("80x24,0,0,3"))

	r.CloseWindow("@1")

	if _, ok := r.Window("@1"); ok {
		t.Fatalf("expected @1 to be gone")
	}
	if _, ok := r.Window("@2"); !ok {
		t.Fatalf("expected @2 to survive")
	}
	for _, pid := range []string{"1", "2"} {
		if _, ok := r.Pane(pid); ok {
			t.Fatalf("expected pane %s to be removed with its window", pid)
		}
	}
	if _, ok := r.Pane("3"); !ok {
		t.Fatalf("expected pane 3 (belonging to @2) to survive")
	}
}

func TestCloseSession_RemovesItsWindowsAndPanes(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "one")
	r.ApplyLayout("@1", "", layout.Parse("80x24,0,0,1"))

	r.SetSession("$2", "other")
	r.AddWindow("@2", "two")
	r.ApplyLayout("@2", "", layout.Parse("80x24,0,0,2"))

	r.CloseSession("$1")

	if _, ok := r.Window("@1"); ok {
		t.Fatalf("expected @1 to be gone with its session")
	}
	if _, ok := r.Pane("1"); ok {
		t.Fatalf("expected pane 1 to be gone with its window")
	}
	if _, ok := r.Window("@2"); !ok {
		t.Fatalf("expected @2 (different session) to survive")
	}
}

func TestApplyLayout_DropsPanesMissingFromNewLayout(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "one")
	r.ApplyLayout("@1", "", layout.Parse("80x24,0,0{40x24,0,0,1,39x24,41,0,2}"))
	if len(r.Panes("@1")) != 2 {
		t.Fatalf("expected 2 panes initially")
	}

	// Pane 2 got killed; layout-change now shows only pane 1, full width.
	r.ApplyLayout("@1", "", layout.Parse("80x24,0,0,1"))
	panes := r.Panes("@1")
	if len(panes) != 1 || panes[0].ID != "1" {
		t.Fatalf("unexpected panes after shrink: %+v", panes)
	}
	if _, ok := r.Pane("2"); ok {
		t.Fatalf("expected pane 2 to be freed")
	}
}

// Testable property 8 — active-pane uniqueness.
func TestSetActivePane_ClearsOthers(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "one")
	r.ApplyLayout("@1", "", layout.Parse("80x24,0,0{40x24,0,0,1,39x24,41,0,2}"))

	r.SetActivePane("@1", "1")
	r.SetActivePane("@1", "2")

	panes := r.Panes("@1")
	active := 0
	var activeID string
	for _, p := range panes {
		if p.IsActive {
			active++
			activeID = p.ID
		}
	}
	if active != 1 || activeID != "2" {
		t.Fatalf("expected exactly pane 2 active, got %d active (%s)", active, activeID)
	}
}

func TestUnknownIdsAreIgnoredNotFatal(t *testing.T) {
	r := New()
	// None of these should panic.
	r.CloseSession("$nope")
	r.RenameWindow("@nope", "x")
	r.CloseWindow("@nope")
	r.ApplyLayout("@nope", "", nil)
	r.SetActivePane("@nope", "%nope")
}

func TestPaneScreen_ReturnsLiveScreen(t *testing.T) {
	r := New()
	r.SetSession("$1", "itmux")
	r.AddWindow("@1", "one")
	r.ApplyLayout("@1", "", layout.Parse("c3b2,80x24,0,0,1"))

	scr, ok := r.PaneScreen("1")
	if !ok {
		t.Fatalf("expected pane screen")
	}
	scr.Process([]byte("hi"))

	snap, _ := r.Pane("1")
	if snap.GridRows[0][0].Rune != 'h' {
		t.Fatalf("expected snapshot to reflect the processed bytes")
	}
}
