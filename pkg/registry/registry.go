package registry

import (
	"log/slog"
	"sync"

	"itmux/pkg/layout"
	"itmux/pkg/term"
)

// Registry is the typed store for one connection's sessions, windows,
// and panes. The connection's single ingest goroutine performs every
// mutation; reads (via the snapshot accessors) may come concurrently
// from the presentation layer through C6, so all access is guarded by
// an RWMutex, following the coarse-lock-plus-value-copy pattern the
// pane-state manager in the example pack uses for the same kind of
// split between a mutating producer and read-only consumers.
type Registry struct {
	mu sync.RWMutex

	sessions map[string]*Session
	windows  map[string]*Window
	panes    map[string]*Pane

	// currentSessionID is the session new windows attach to. Control-mode
	// WindowAdd messages don't carry a session id (a control client is
	// attached to exactly one session at a time), so the registry tracks
	// whichever session the most recent SetSession named.
	currentSessionID string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		windows:  make(map[string]*Window),
		panes:    make(map[string]*Pane),
	}
}

// SetSession creates or renames a session and marks it current.
func (r *Registry) SetSession(id, name string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	if s == nil {
		s = &Session{ID: id}
		r.sessions[id] = s
	}
	s.Name = name
	r.currentSessionID = id
}

// CloseSession removes a session and cascades to its windows and panes.
// An unknown id is logged and ignored rather than treated as an error.
func (r *Registry) CloseSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	if s == nil {
		slog.Warn("registry: closeSession on unknown session", "sessionId", id)
		return
	}
	for _, wid := range append([]string(nil), s.WindowIDs...) {
		r.closeWindowLocked(wid)
	}
	delete(r.sessions, id)
	if r.currentSessionID == id {
		r.currentSessionID = ""
	}
}

// AddWindow creates a window attached to the current session. If there is
// no current session yet, the window is logged and dropped: every window
// must have a parent session per invariant 1.
func (r *Registry) AddWindow(id, name string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentSessionID == "" {
		slog.Warn("registry: addWindow with no current session", "windowId", id)
		return
	}
	if _, exists := r.windows[id]; exists {
		return
	}
	w := &Window{ID: id, Name: name, SessionID: r.currentSessionID}
	r.windows[id] = w
	s := r.sessions[r.currentSessionID]
	s.WindowIDs = append(s.WindowIDs, id)
}

// RenameWindow updates a window's name. An unknown id is logged and
// ignored.
func (r *Registry) RenameWindow(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.windows[id]
	if w == nil {
		slog.Warn("registry: renameWindow on unknown window", "windowId", id)
		return
	}
	w.Name = name
}

// CloseWindow removes a window, cascading to its panes. An unknown id is
// logged and ignored.
func (r *Registry) CloseWindow(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.windows[id] == nil {
		slog.Warn("registry: closeWindow on unknown window", "windowId", id)
		return
	}
	r.closeWindowLocked(id)
}

func (r *Registry) closeWindowLocked(id string) {
	w := r.windows[id]
	if w == nil {
		return
	}
	for _, pid := range w.PaneIDs {
		delete(r.panes, pid)
	}
	delete(r.windows, id)
	if s := r.sessions[w.SessionID]; s != nil {
		s.WindowIDs = removeString(s.WindowIDs, id)
		if s.ActiveWindowID == id {
			s.ActiveWindowID = ""
		}
	}
}

// ApplyLayout reconciles a window's panes against a freshly parsed
// layout: it creates any pane missing from the registry, updates every
// pane's dimensions (resizing its screen to match), and drops any pane no
// longer present in the layout, freeing its screen. descriptor is the raw
// layout string the boxes were parsed from, recorded on the window
// verbatim.
func (r *Registry) ApplyLayout(windowID, descriptor string, boxes []layout.PaneBox) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windows[windowID]
	if w == nil {
		slog.Warn("registry: applyLayout on unknown window", "windowId", windowID)
		return
	}
	w.Layout = descriptor

	present := make(map[string]bool, len(boxes))
	ids := make([]string, 0, len(boxes))
	for _, box := range boxes {
		present[box.PaneID] = true
		ids = append(ids, box.PaneID)

		p := r.panes[box.PaneID]
		if p == nil {
			p = &Pane{
				ID:       box.PaneID,
				WindowID: windowID,
				Rows:     box.Height,
				Cols:     box.Width,
				Screen:   term.NewScreen(box.Height, box.Width),
			}
			r.panes[box.PaneID] = p
			continue
		}
		p.WindowID = windowID
		if p.Rows != box.Height || p.Cols != box.Width {
			p.Rows = box.Height
			p.Cols = box.Width
			p.Screen.Resize(box.Height, box.Width)
		}
	}

	// Drop panes that used to belong to this window but aren't in the new
	// layout.
	for _, pid := range w.PaneIDs {
		if !present[pid] {
			delete(r.panes, pid)
		}
	}

	w.PaneIDs = ids
	if w.ActivePaneID != "" && !present[w.ActivePaneID] {
		w.ActivePaneID = ""
	}

	// The layout descriptor's root node (the whole window's own size)
	// isn't emitted as a box by the layout parser — only leaves are — so
	// the window's overall dimensions are recovered as the bounding box
	// of its panes.
	var maxX, maxY int
	for _, box := range boxes {
		if r := box.X + box.Width; r > maxX {
			maxX = r
		}
		if b := box.Y + box.Height; b > maxY {
			maxY = b
		}
	}
	w.Width = maxX
	w.Height = maxY
}

// SetActivePane marks paneID as the sole active pane of windowID,
// clearing any other pane's active flag in the same window atomically.
// Unknown ids are logged and ignored.
func (r *Registry) SetActivePane(windowID, paneID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windows[windowID]
	if w == nil {
		slog.Warn("registry: setActivePane on unknown window", "windowId", windowID)
		return
	}
	if _, ok := r.panes[paneID]; !ok {
		slog.Warn("registry: setActivePane on unknown pane", "paneId", paneID)
		return
	}
	for _, pid := range w.PaneIDs {
		if p := r.panes[pid]; p != nil {
			p.Active = pid == paneID
		}
	}
	w.ActivePaneID = paneID
}

// PaneScreen returns the live, mutable screen for a pane, for the
// connection's own event-routing code to feed output bytes into. Callers
// outside the connection must use the Snapshot accessors instead.
func (r *Registry) PaneScreen(paneID string) (*term.Screen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.panes[paneID]
	if p == nil {
		return nil, false
	}
	return p.Screen, true
}

// SetPaneWorkingDirectory and SetPaneTitle let the connection push
// metadata the terminal emulator or control protocol discovered back
// onto the registry's copy of pane state.
func (r *Registry) SetPaneWorkingDirectory(paneID, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.panes[paneID]; p != nil {
		p.WorkingDirectory = dir
	}
}

func (r *Registry) SetPaneTitle(paneID, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.panes[paneID]; p != nil {
		p.Title = title
	}
}

func removeString(ss []string, target string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
