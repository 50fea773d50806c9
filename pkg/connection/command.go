package connection

import (
	"fmt"
	"strings"
)

// Command is a typed tmux command, serialized to the wire text form §4.5/§6
// describe: plain text lines terminated by "\n", with single-quote wrapping
// for send-keys payloads (escaping `'` as `'\''`) and `-l` for literal mode.
type Command interface {
	wireLine() string
}

// shellQuote wraps s in single quotes for a tmux command-line argument,
// escaping any embedded single quote the classic way.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

type ListSessions struct{}

func (ListSessions) wireLine() string { return "list-sessions" }

type ListWindows struct{ SessionID string }

func (c ListWindows) wireLine() string {
	return fmt.Sprintf("list-windows -t %s", shellQuote(c.SessionID))
}

type NewWindow struct {
	SessionID string
	Name      string
}

func (c NewWindow) wireLine() string {
	s := fmt.Sprintf("new-window -t %s", shellQuote(c.SessionID))
	if c.Name != "" {
		s += " -n " + shellQuote(c.Name)
	}
	return s
}

type SelectPane struct{ PaneID string }

func (c SelectPane) wireLine() string {
	return fmt.Sprintf("select-pane -t %s", shellQuote(c.PaneID))
}

type ResizePane struct {
	PaneID string
	// Direction is one of "U", "D", "L", "R" (tmux resize-pane -U/-D/-L/-R).
	Direction string
	Amount    int
}

func (c ResizePane) wireLine() string {
	flag := "-" + c.Direction
	return fmt.Sprintf("resize-pane -t %s %s %d", shellQuote(c.PaneID), flag, c.Amount)
}

// SendKeys sends either a literal string (Literal true, -l flag) or a
// sequence of named tmux keys (Literal false, one send-keys argument per
// key, e.g. "Enter", "C-c").
type SendKeys struct {
	PaneID  string
	Keys    []string
	Literal bool
}

func (c SendKeys) wireLine() string {
	var b strings.Builder
	b.WriteString("send-keys -t ")
	b.WriteString(shellQuote(c.PaneID))
	if c.Literal {
		b.WriteString(" -l")
	}
	for _, k := range c.Keys {
		b.WriteByte(' ')
		b.WriteString(shellQuote(k))
	}
	return b.String()
}

type KillPane struct{ PaneID string }

func (c KillPane) wireLine() string { return fmt.Sprintf("kill-pane -t %s", shellQuote(c.PaneID)) }

type KillWindow struct{ WindowID string }

func (c KillWindow) wireLine() string {
	return fmt.Sprintf("kill-window -t %s", shellQuote(c.WindowID))
}

type KillSession struct{ SessionID string }

func (c KillSession) wireLine() string {
	return fmt.Sprintf("kill-session -t %s", shellQuote(c.SessionID))
}

type DetachClient struct{}

func (DetachClient) wireLine() string { return "detach-client" }

type RefreshClient struct{}

func (RefreshClient) wireLine() string { return "refresh-client" }

type SetOptionGlobal struct{ Name, Value string }

func (c SetOptionGlobal) wireLine() string {
	return fmt.Sprintf("set-option -g %s %s", c.Name, shellQuote(c.Value))
}

type SetOptionWindow struct {
	WindowID    string
	Name, Value string
}

func (c SetOptionWindow) wireLine() string {
	return fmt.Sprintf("set-option -w -t %s %s %s", shellQuote(c.WindowID), c.Name, shellQuote(c.Value))
}

// encodeCommand renders a Command to the exact bytes written to the
// transport, including the trailing newline the wire format requires.
func encodeCommand(c Command) []byte {
	return []byte(c.wireLine() + "\n")
}
