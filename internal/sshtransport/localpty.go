package sshtransport

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"itmux/pkg/connection"
)

// LocalPTYTransport runs commandLine as a local process behind a
// pseudo-terminal instead of opening a network connection, letting
// connection.Manager be driven end-to-end against a real `tmux -CC`
// without a reachable SSH server. host/port/cred are ignored; this exists
// purely for local development and integration testing.
type LocalPTYTransport struct{}

func (LocalPTYTransport) Dial(ctx context.Context, host string, port int, cred connection.Credential, commandLine string) (io.ReadWriteCloser, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", commandLine)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}
	return &ptyStream{cmd: cmd, ptmx: ptmx}, nil
}

type ptyStream struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

func (s *ptyStream) Read(p []byte) (int, error)  { return s.ptmx.Read(p) }
func (s *ptyStream) Write(p []byte) (int, error) { return s.ptmx.Write(p) }

func (s *ptyStream) Close() error {
	_ = s.ptmx.Close()
	return s.cmd.Process.Kill()
}
