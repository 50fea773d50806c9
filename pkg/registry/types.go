// Package registry is the in-memory typed model of one connection's
// remote tmux state: its sessions, windows, panes, and each pane's
// terminal screen. It is owned exclusively by the connection that
// created it; other components only ever see copies returned by its
// snapshot accessors.
package registry

import "itmux/pkg/term"

// Session mirrors one tmux session.
type Session struct {
	ID            string
	Name          string
	WindowIDs     []string
	ActiveWindowID string
}

// Window mirrors one tmux window.
type Window struct {
	ID           string
	Name         string
	SessionID    string
	Layout       string
	PaneIDs      []string
	ActivePaneID string
	Width        int
	Height       int
}

// Pane mirrors one tmux pane. Screen is the pane's owned terminal
// emulator; it is never copied into a PaneSnapshot by reference — C6
// reads its rows through Screen.Rows(), which already copies.
type Pane struct {
	ID               string
	WindowID         string
	Rows             int
	Cols             int
	Active           bool
	WorkingDirectory string
	Title            string
	Screen           *term.Screen
}
