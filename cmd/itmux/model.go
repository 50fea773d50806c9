package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"itmux/pkg/connection"
	"itmux/pkg/credential"
	"itmux/pkg/hostprofile"
	"itmux/pkg/registry"
)

// focusPane is which half of the split-screen layout owns keystrokes:
// the host picker/command bar, or the connected pane grid.
type focusPane int

const (
	focusPicker focusPane = iota
	focusTerminal
)

// model is the bubbletea Elm-architecture state for the whole program, the
// way the teacher's own tui_bubble.go model owns every piece of UI state in
// one struct. It never touches the wire protocol directly: everything about
// a connected host comes from connection.Manager snapshots.
type model struct {
	cfg   *Config
	hosts *hostprofile.Store
	keys  *credential.Store
	conns *connection.Manager

	width, height int
	focus         focusPane

	filter   textinput.Model
	cmdInput textinput.Model
	cmdMode  bool

	candidates []hostprofile.Profile
	cursor     int

	activeHostID string

	status   string
	statusAt time.Time
}

// connSubscriptionMsg is delivered whenever connection.Manager.notify fires;
// Update listens on the same channel again after each one; the channel's
// one-slot buffer holds any signal sent in between.
type connSubscriptionMsg struct {
	ch <-chan struct{}
}

type connectResultMsg struct {
	hostID string
	err    error
}

func newModel(cfg *Config, hosts *hostprofile.Store, keys *credential.Store, conns *connection.Manager) model {
	filter := textinput.New()
	filter.Placeholder = "filter hosts"
	filter.Focus()

	cmdInput := textinput.New()
	cmdInput.Placeholder = "command"

	m := model{
		cfg:      cfg,
		hosts:    hosts,
		keys:     keys,
		conns:    conns,
		filter:   filter,
		cmdInput: cmdInput,
		focus:    focusPicker,
	}
	m.recomputeCandidates()
	return m
}

func (m model) Init() tea.Cmd {
	ch, _ := m.conns.Subscribe()
	return listenForUpdates(ch)
}

func listenForUpdates(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return connSubscriptionMsg{ch: ch}
	}
}

func (m *model) recomputeCandidates() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	all := m.hosts.List()
	sort.Slice(all, func(i, j int) bool { return all[i].DisplayName < all[j].DisplayName })

	m.candidates = m.candidates[:0]
	for _, p := range all {
		if q == "" || strings.Contains(strings.ToLower(p.DisplayName), q) || strings.Contains(strings.ToLower(p.Hostname), q) {
			m.candidates = append(m.candidates, p)
		}
	}
	if m.cursor >= len(m.candidates) {
		m.cursor = len(m.candidates) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusAt = time.Now()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case connSubscriptionMsg:
		return m, listenForUpdates(msg.ch)

	case connectResultMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("connect %s: %v", msg.hostID, msg.err))
		} else {
			m.activeHostID = msg.hostID
			m.focus = focusTerminal
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.cmdMode {
			m.cmdMode = false
			m.cmdInput.Blur()
			return m, nil
		}
		if m.focus == focusTerminal {
			m.focus = focusPicker
			m.filter.Focus()
			return m, nil
		}
	}

	if m.cmdMode {
		return m.handleCommandBarKey(k)
	}

	switch m.focus {
	case focusPicker:
		return m.handlePickerKey(k)
	case focusTerminal:
		return m.handleTerminalKey(k)
	}
	return m, nil
}

func (m model) handlePickerKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.cursor >= 0 && m.cursor < len(m.candidates) {
			return m, m.connectCmd(m.candidates[m.cursor])
		}
		return m, nil
	case "tab":
		if m.activeHostID != "" {
			m.focus = focusTerminal
			m.filter.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(k)
	m.recomputeCandidates()
	return m, cmd
}

func (m model) handleTerminalKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "tab":
		m.focus = focusPicker
		m.filter.Focus()
		return m, nil
	case ":":
		m.cmdMode = true
		m.cmdInput.Focus()
		return m, nil
	}
	if m.activeHostID == "" {
		return m, nil
	}
	data := keyBytes(k)
	if len(data) > 0 {
		_ = m.conns.Send(m.activeHostID, data)
	}
	return m, nil
}

func (m model) handleCommandBarKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "enter":
		line := strings.TrimSpace(m.cmdInput.Value())
		m.cmdInput.SetValue("")
		m.cmdInput.Blur()
		m.cmdMode = false
		if line == "" || m.activeHostID == "" {
			return m, nil
		}
		if macro, ok := m.cfg.MacroByName(line); ok {
			for _, c := range macro.Commands {
				_ = m.conns.Send(m.activeHostID, []byte(c+"\n"))
			}
			m.setStatus("ran macro " + macro.Name)
			return m, nil
		}
		_ = m.conns.Send(m.activeHostID, []byte(line+"\n"))
		return m, nil
	}
	var cmd tea.Cmd
	m.cmdInput, cmd = m.cmdInput.Update(k)
	return m, cmd
}

// connectCmd dials a Transport through connection.Manager off the bubbletea
// event loop, the same "Cmd returns a completion message" pattern the
// teacher's own tmuxSplitH/tmuxNewWindow helpers approximate with direct
// exec.Command calls, here routed through the Manager's async Connect.
func (m model) connectCmd(p hostprofile.Profile) tea.Cmd {
	hostID := p.ID
	cred := credentialFor(m.keys, p)
	sessionName := p.SessionName
	if sessionName == "" {
		sessionName = "itmux"
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := m.conns.Connect(ctx, hostID, cred, sessionName)
		return connectResultMsg{hostID: hostID, err: err}
	}
}

func credentialFor(keys *credential.Store, p hostprofile.Profile) connection.Credential {
	if p.Auth == hostprofile.AuthKey && p.CredentialKeyID != "" {
		if pem, err := keys.Reveal(p.CredentialKeyID); err == nil {
			return connection.Credential{Kind: connection.CredentialPrivateKey, Username: p.Username, PrivateKeyPEM: pem}
		}
	}
	return connection.Credential{Kind: connection.CredentialPassword, Username: p.Username}
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	pickerWidth := m.width / 3
	if pickerWidth < 24 {
		pickerWidth = 24
	}

	left := m.renderPicker(pickerWidth, m.height-1)
	right := m.renderTerminal(m.width-pickerWidth-1, m.height-1)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	return body + "\n" + m.renderStatusLine()
}

func (m model) renderPicker(width, height int) string {
	var b strings.Builder
	b.WriteString(m.filter.View())
	b.WriteString("\n")
	for i, p := range m.candidates {
		if i >= height-1 {
			break
		}
		line := fmt.Sprintf("%s (%s)", p.DisplayName, p.Hostname)
		style := lipgloss.NewStyle().Width(width).MaxWidth(width)
		if i == m.cursor {
			style = style.Reverse(true)
		}
		if rec, ok := m.conns.HostConnectionState(p.ID); ok {
			line = fmt.Sprintf("[%s] %s", rec.Phase, line)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (m model) renderTerminal(width, height int) string {
	if m.activeHostID == "" {
		return lipgloss.NewStyle().Width(width).Height(height).Render("no active connection")
	}
	panes, err := m.conns.Panes(m.activeHostID)
	if err != nil || len(panes) == 0 {
		return lipgloss.NewStyle().Width(width).Height(height).Render("connected, no panes yet")
	}
	active := activePane(panes)
	var b strings.Builder
	for i, row := range active.GridRows {
		if i >= height {
			break
		}
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	if m.cmdMode {
		b.WriteString(m.cmdInput.View())
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func activePane(panes []registry.PaneSnapshot) registry.PaneSnapshot {
	for _, p := range panes {
		if p.IsActive {
			return p
		}
	}
	return panes[0]
}

func (m model) renderStatusLine() string {
	if m.status != "" && time.Since(m.statusAt) < 5*time.Second {
		return lipgloss.NewStyle().Faint(true).Render(m.status)
	}
	return lipgloss.NewStyle().Faint(true).Render("tab: switch focus  :  command bar  ctrl+c: quit")
}

// keyBytes turns a bubbletea KeyMsg into the raw bytes handleTerminalKey
// writes to the connection with Manager.Send, covering the control characters a pane expects
// (enter, tab, backspace, ctrl+letter) plus plain runes.
func keyBytes(k tea.KeyMsg) []byte {
	switch k.Type {
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyTab:
		return []byte("\t")
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeySpace:
		return []byte(" ")
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeyCtrlD:
		return []byte{0x04}
	case tea.KeyCtrlU:
		return []byte{0x15}
	case tea.KeyEsc:
		return []byte{0x1b}
	case tea.KeyRunes:
		return []byte(string(k.Runes))
	}
	return nil
}
