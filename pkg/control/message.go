// Package control decodes tmux control-mode ("-CC") output into typed
// messages. It never blocks and never fails the stream: malformed input
// becomes an Unknown message rather than an error.
package control

// Kind identifies which control-mode message a Message carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindOutput
	KindLayoutChange
	KindWindowAdd
	KindWindowClose
	KindWindowRenamed
	KindSessionChanged
	KindSessionClosed
	KindPaneMode
	KindPaneFocusIn
	KindPaneFocusOut
	KindPaneSetClipboard
	KindExit
	KindFeatures
	KindSubscriptions
)

// Message is a decoded tmux control-mode record. Only the fields relevant
// to Kind are populated; the rest are zero values.
type Message struct {
	Kind Kind

	// Output
	PaneID  string
	Payload []byte // Output payload, or PaneSetClipboard payload (nil if absent)

	// LayoutChange
	WindowID string
	Layout   string

	// WindowAdd / WindowRenamed
	WindowName string

	// SessionChanged
	SessionID   string
	SessionName string

	// PaneMode
	ModeName string

	// Exit
	Reason string

	// Features / Subscriptions / Unknown
	Raw string

	// HasPayload distinguishes an absent PaneSetClipboard payload from an
	// empty one.
	HasPayload bool
}

func (m Message) String() string {
	return kindNames[m.Kind]
}

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindOutput:           "output",
	KindLayoutChange:     "layout-change",
	KindWindowAdd:        "window-add",
	KindWindowClose:      "window-close",
	KindWindowRenamed:    "window-renamed",
	KindSessionChanged:   "session-changed",
	KindSessionClosed:    "session-closed",
	KindPaneMode:         "pane-mode-changed",
	KindPaneFocusIn:      "pane-focus-in",
	KindPaneFocusOut:     "pane-focus-out",
	KindPaneSetClipboard: "pane-set-clipboard",
	KindExit:             "exit",
	KindFeatures:         "features",
	KindSubscriptions:    "subscriptions",
}
