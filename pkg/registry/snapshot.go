package registry

import "itmux/pkg/term"

// SessionSnapshot is an immutable copy of a Session.
type SessionSnapshot struct {
	ID             string
	Name           string
	WindowIDs      []string
	ActiveWindowID string
}

// WindowSnapshot is an immutable copy of a Window.
type WindowSnapshot struct {
	ID           string
	Name         string
	SessionID    string
	Layout       string
	PaneIDs      []string
	ActivePaneID string
	Width        int
	Height       int
}

// PaneSnapshot is an immutable copy of a Pane, including its screen's
// current grid and cursor, suitable for a presentation layer to render
// directly without touching any live state.
type PaneSnapshot struct {
	ID               string
	WindowID         string
	Rows             int
	Cols             int
	IsActive         bool
	WorkingDirectory string
	Title            string
	GridRows         [][]term.Cell
	CursorRow        int
	CursorCol        int
}

// Sessions returns a snapshot of every known session.
func (r *Registry) Sessions() []SessionSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionSnapshot, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, SessionSnapshot{
			ID:             s.ID,
			Name:           s.Name,
			WindowIDs:      append([]string(nil), s.WindowIDs...),
			ActiveWindowID: s.ActiveWindowID,
		})
	}
	return out
}

// Windows returns a snapshot of every known window.
func (r *Registry) Windows() []WindowSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WindowSnapshot, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, windowSnapshotLocked(w))
	}
	return out
}

// Window returns a snapshot of a single window, if known.
func (r *Registry) Window(id string) (WindowSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.windows[id]
	if w == nil {
		return WindowSnapshot{}, false
	}
	return windowSnapshotLocked(w), true
}

func windowSnapshotLocked(w *Window) WindowSnapshot {
	return WindowSnapshot{
		ID:           w.ID,
		Name:         w.Name,
		SessionID:    w.SessionID,
		Layout:       w.Layout,
		PaneIDs:      append([]string(nil), w.PaneIDs...),
		ActivePaneID: w.ActivePaneID,
		Width:        w.Width,
		Height:       w.Height,
	}
}

// Panes returns a snapshot of every pane belonging to the given window,
// in the window's pane order.
func (r *Registry) Panes(windowID string) []PaneSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.windows[windowID]
	if w == nil {
		return nil
	}
	out := make([]PaneSnapshot, 0, len(w.PaneIDs))
	for _, pid := range w.PaneIDs {
		if p := r.panes[pid]; p != nil {
			out = append(out, paneSnapshotLocked(p))
		}
	}
	return out
}

// Pane returns a snapshot of a single pane, if known.
func (r *Registry) Pane(paneID string) (PaneSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.panes[paneID]
	if p == nil {
		return PaneSnapshot{}, false
	}
	return paneSnapshotLocked(p), true
}

func paneSnapshotLocked(p *Pane) PaneSnapshot {
	row, col := p.Screen.Cursor()
	return PaneSnapshot{
		ID:               p.ID,
		WindowID:         p.WindowID,
		Rows:             p.Rows,
		Cols:             p.Cols,
		IsActive:         p.Active,
		WorkingDirectory: p.WorkingDirectory,
		Title:            p.Title,
		GridRows:         p.Screen.Rows(),
		CursorRow:        row,
		CursorCol:        col,
	}
}
