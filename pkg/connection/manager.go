// Package connection owns the lifecycle of one connection per remote host:
// dialing the transport, running the per-host ingest goroutine that feeds
// bytes through the control-mode framer and routes decoded messages to the
// terminal emulator and registry, and exposing read-only snapshots plus a
// level-triggered change notification to a presentation layer.
package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"itmux/pkg/control"
	"itmux/pkg/hostprofile"
	"itmux/pkg/layout"
	"itmux/pkg/registry"
)

// conn holds everything one live (or once-live) host connection owns. Its
// ingest goroutine applies decoded messages to record/registry state;
// Connect and Disconnect also update it. Manager's public methods that
// touch a conn take its mutex.
type conn struct {
	mu sync.Mutex

	hostID string
	record Record

	transport io.ReadWriteCloser
	framer    *control.Framer
	registry  *registry.Registry

	cancel   context.CancelFunc
	closed   bool
	closeErr error
}

// Manager maintains a process-wide collection of host profiles and, for
// each, at most one connection record.
type Manager struct {
	mu sync.RWMutex

	transport Transport
	clipboard ClipboardSink

	hosts map[string]hostprofile.Profile
	conns map[string]*conn

	subMu       sync.Mutex
	subscribers map[chan struct{}]struct{}
}

// NewManager returns an empty Manager. clipboard may be nil, in which case
// PaneSetClipboard payloads are discarded.
func NewManager(transport Transport, clipboard ClipboardSink) *Manager {
	if clipboard == nil {
		clipboard = NopClipboard{}
	}
	return &Manager{
		transport:   transport,
		clipboard:   clipboard,
		hosts:       make(map[string]hostprofile.Profile),
		conns:       make(map[string]*conn),
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// AddHost registers a host profile.
func (m *Manager) AddHost(p hostprofile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hosts[p.ID] = p
}

// UpdateHost replaces a host profile's stored fields. Returns HostUnknown if
// the id isn't registered.
func (m *Manager) UpdateHost(p hostprofile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hosts[p.ID]; !ok {
		return newError(ErrHostUnknown, p.ID)
	}
	m.hosts[p.ID] = p
	return nil
}

// RemoveHost disconnects the host (if connected) and forgets its profile.
func (m *Manager) RemoveHost(id string) error {
	_ = m.Disconnect(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hosts, id)
	return nil
}

// Connect opens the transport, authenticates, starts tmux in control mode,
// and spawns the ingest goroutine. It returns once the transport is dialed
// and ingest has started, with the record in StartingTmux; the ingest
// goroutine moves it to Connected when %session-changed arrives. A dial
// failure leaves the record Failed and is returned.
func (m *Manager) Connect(ctx context.Context, hostID string, cred Credential, sessionName string) error {
	m.mu.Lock()
	host, ok := m.hosts[hostID]
	if !ok {
		m.mu.Unlock()
		return newError(ErrHostUnknown, hostID)
	}
	if existing, ok := m.conns[hostID]; ok {
		existing.mu.Lock()
		phase := existing.record.Phase
		existing.mu.Unlock()
		if phase != PhaseClosed && phase != PhaseFailed {
			m.mu.Unlock()
			return nil
		}
	}

	c := &conn{
		hostID:   hostID,
		record:   Record{HostID: hostID, Phase: PhaseConnecting},
		framer:   control.NewFramer(),
		registry: registry.New(),
	}
	m.conns[hostID] = c
	m.mu.Unlock()

	cmdLine := fmt.Sprintf("tmux -CC new-session -A -s %s", shellQuote(sessionName))
	if cred.Username == "" {
		cred.Username = host.Username
	}

	ingestCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.setPhase(PhaseAuthenticating)
	rwc, err := m.transport.Dial(ctx, host.Hostname, resolvePort(host), cred, cmdLine)
	if err != nil {
		cancel()
		c.fail(transportDialError(err))
		m.notify()
		return c.lastError()
	}

	c.mu.Lock()
	c.transport = rwc
	c.record.Phase = PhaseStartingTmux
	c.mu.Unlock()
	m.notify()

	go m.ingest(ingestCtx, c, rwc)
	return nil
}

func resolvePort(p hostprofile.Profile) int {
	if p.Port > 0 {
		return p.Port
	}
	return 22
}

// transportDialError preserves a Transport's own error classification
// (e.g. sshtransport distinguishing AuthError from TransportError) when it
// already returns an *Error, and falls back to TransportError otherwise.
func transportDialError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return newError(ErrTransportError, err.Error())
}

// Send enqueues raw bytes to the host's transport. Only legal while
// Connected.
func (m *Manager) Send(hostID string, data []byte) error {
	c, err := m.lookupConn(hostID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.record.Phase != PhaseConnected {
		c.mu.Unlock()
		return newError(ErrNotConnected, c.record.Phase.String())
	}
	rwc := c.transport
	c.mu.Unlock()

	if _, err := rwc.Write(data); err != nil {
		return newError(ErrTransportError, err.Error())
	}
	return nil
}

// SendCommand serializes cmd into its wire form and sends it.
func (m *Manager) SendCommand(hostID string, cmd Command) error {
	return m.Send(hostID, encodeCommand(cmd))
}

// Disconnect cancels the ingest goroutine, closes the transport, and
// discards the registry. It is idempotent: calling it twice (or on a host
// that was never connected) is a no-op the second time.
func (m *Manager) Disconnect(hostID string) error {
	m.mu.RLock()
	c, ok := m.conns[hostID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	rwc := c.transport
	c.record.Phase = PhaseClosed
	c.record.WindowCount = 0
	c.record.PaneCount = 0
	c.registry = registry.New()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if rwc != nil {
		_ = rwc.Close()
	}
	m.notify()
	return nil
}

func (m *Manager) lookupConn(hostID string) (*conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[hostID]
	if !ok {
		return nil, newError(ErrHostUnknown, hostID)
	}
	return c, nil
}

// ListHosts returns every registered host's id.
func (m *Manager) ListHosts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.hosts))
	for id := range m.hosts {
		out = append(out, id)
	}
	return out
}

// HostConnectionState returns a snapshot of a host's connection record.
func (m *Manager) HostConnectionState(hostID string) (Record, bool) {
	m.mu.RLock()
	c, ok := m.conns[hostID]
	m.mu.RUnlock()
	if !ok {
		return Record{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record, true
}

// Panes returns a snapshot of every pane known for a connected host.
func (m *Manager) Panes(hostID string) ([]registry.PaneSnapshot, error) {
	c, err := m.lookupConn(hostID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	reg := c.registry
	c.mu.Unlock()

	var out []registry.PaneSnapshot
	for _, w := range reg.Windows() {
		out = append(out, reg.Panes(w.ID)...)
	}
	return out, nil
}

// Subscribe returns a channel that receives a level-triggered signal
// (buffered, coalesced) after any registry or connection-record mutation.
// The returned cancel function unsubscribes and must be called to avoid
// leaking the channel's registration.
func (m *Manager) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()
	return ch, func() {
		m.subMu.Lock()
		delete(m.subscribers, ch)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *conn) setPhase(p Phase) {
	c.mu.Lock()
	c.record.Phase = p
	if p == PhaseConnected && c.record.FirstConnectedAt.IsZero() {
		c.record.FirstConnectedAt = time.Now()
	}
	c.mu.Unlock()
}

// fail records a terminal error encountered while establishing the
// connection (Connecting/Authenticating/StartingTmux): the connection
// never reached Connected, so it lands in Failed.
func (c *conn) fail(e *Error) {
	c.mu.Lock()
	c.record.Phase = PhaseFailed
	c.record.LastError = e
	c.mu.Unlock()
}

// closeFromIngest records a terminal error encountered after the
// connection reached Connected (remote exit, transport EOF, an overlong
// frame): per the propagation policy these transition to Closed, not
// Failed, and free every pane grid by discarding the registry.
func (c *conn) closeFromIngest(e *Error) {
	c.mu.Lock()
	c.record.Phase = PhaseClosed
	c.record.LastError = e
	c.record.WindowCount = 0
	c.record.PaneCount = 0
	c.registry = registry.New()
	c.mu.Unlock()
}

func (c *conn) phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.Phase
}

func (c *conn) lastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record.LastError == nil {
		return nil
	}
	return c.record.LastError
}

// ingest pumps transport bytes into the control-mode framer and dispatches
// every decoded message, until the context is cancelled or the transport
// ends.
func (m *Manager) ingest(ctx context.Context, c *conn, rwc io.ReadWriteCloser) {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := rwc.Read(buf)
		if n > 0 {
			msgs, ferr := c.framer.Feed(buf[:n])
			for _, msg := range msgs {
				m.route(c, msg)
			}
			m.notify()
			if ferr != nil {
				c.closeFromIngest(newError(ErrOverlongFrame, ferr.Error()))
				_ = rwc.Close()
				m.notify()
				return
			}
			if c.phase() == PhaseClosed {
				_ = rwc.Close()
				return
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if err == io.EOF {
				c.closeFromIngest(newError(ErrRemoteExit, "transport closed"))
			} else {
				c.closeFromIngest(newError(ErrTransportError, err.Error()))
			}
			m.notify()
			return
		}
	}
}

// route applies one decoded message to the connection's terminal emulators
// and registry, per the event-routing table in spec.md §4.5.
func (m *Manager) route(c *conn, msg control.Message) {
	c.mu.Lock()
	reg := c.registry
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	switch msg.Kind {
	case control.KindOutput:
		paneID := normalizePaneID(msg.PaneID)
		scr, ok := reg.PaneScreen(paneID)
		if !ok {
			slog.Warn("connection: output for unknown pane", "paneId", paneID)
			return
		}
		scr.Process(msg.Payload)
		if dir := scr.WorkingDirectory(); dir != "" {
			reg.SetPaneWorkingDirectory(paneID, dir)
		}

	case control.KindLayoutChange:
		boxes := layout.Parse(msg.Layout)
		reg.ApplyLayout(msg.WindowID, msg.Layout, boxes)
		paneCount := 0
		windows := reg.Windows()
		for _, w := range windows {
			paneCount += len(reg.Panes(w.ID))
		}
		c.mu.Lock()
		c.record.WindowCount = len(windows)
		c.record.PaneCount = paneCount
		c.mu.Unlock()

	case control.KindWindowAdd:
		reg.AddWindow(msg.WindowID, msg.WindowName)

	case control.KindWindowClose:
		reg.CloseWindow(msg.WindowID)

	case control.KindWindowRenamed:
		reg.RenameWindow(msg.WindowID, msg.WindowName)

	case control.KindSessionChanged:
		reg.SetSession(msg.SessionID, msg.SessionName)
		c.mu.Lock()
		c.record.SessionName = msg.SessionName
		if c.record.Phase == PhaseStartingTmux {
			c.record.Phase = PhaseConnected
			if c.record.FirstConnectedAt.IsZero() {
				c.record.FirstConnectedAt = time.Now()
			}
		}
		c.mu.Unlock()

	case control.KindSessionClosed:
		reg.CloseSession(msg.SessionID)

	case control.KindPaneFocusIn:
		paneID := normalizePaneID(msg.PaneID)
		if windowID, ok := windowOwning(reg, paneID); ok {
			reg.SetActivePane(windowID, paneID)
		}

	case control.KindPaneFocusOut:
		// No registry effect: the next PaneFocusIn establishes the new
		// active pane; there's nothing additional to clear here since
		// SetActivePane already enforces single-active-pane atomically.

	case control.KindPaneSetClipboard:
		if msg.HasPayload {
			paneID := normalizePaneID(msg.PaneID)
			if err := m.clipboard.Put(paneID, msg.Payload); err != nil {
				slog.Warn("connection: clipboard sink failed", "paneId", paneID, "error", err)
			}
		}

	case control.KindExit:
		c.closeFromIngest(newError(ErrRemoteExit, msg.Reason))

	case control.KindUnknown:
		c.mu.Lock()
		c.record.UnknownMessages++
		c.mu.Unlock()

	case control.KindPaneMode, control.KindFeatures, control.KindSubscriptions:
		// Informational only; no registry or emulator state to update.
	}
}

// normalizePaneID strips control-mode's "%" pane-address prefix, since
// layout descriptors (and therefore the registry's pane identity) use the
// bare numeric form.
func normalizePaneID(id string) string {
	return strings.TrimPrefix(id, "%")
}

// windowOwning finds which window a pane currently belongs to, scanning the
// small per-connection window set. PaneFocusIn doesn't carry a window id, so
// this is the only way to resolve it against the registry's
// windowId-scoped SetActivePane.
func windowOwning(reg *registry.Registry, paneID string) (string, bool) {
	for _, w := range reg.Windows() {
		for _, pid := range w.PaneIDs {
			if pid == paneID {
				return w.ID, true
			}
		}
	}
	return "", false
}
