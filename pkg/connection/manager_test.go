package connection

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"itmux/pkg/hostprofile"
)

// pipeTransport hands the manager one end of an in-memory net.Pipe and
// keeps the other end so tests can push synthetic control-mode lines and
// observe what the manager writes back.
type pipeTransport struct {
	serverSide net.Conn
}

func (t *pipeTransport) Dial(ctx context.Context, host string, port int, cred Credential, commandLine string) (io.ReadWriteCloser, error) {
	client, server := net.Pipe()
	t.serverSide = server
	return client, nil
}

func newTestManager(t *testing.T) (*Manager, *pipeTransport, hostprofile.Profile) {
	t.Helper()
	pt := &pipeTransport{}
	m := NewManager(pt, nil)
	host := hostprofile.Profile{ID: "host-1", Hostname: "example.test", Port: 22}
	m.AddHost(host)
	return m, pt, host
}

func waitFor(t *testing.T, ch <-chan struct{}, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	if cond() {
		return
	}
	for {
		select {
		case <-ch:
			if cond() {
				return
			}
		case <-deadline:
			t.Fatalf("condition not met before deadline")
		}
	}
}

func TestConnect_SessionChangedReachesConnected(t *testing.T) {
	m, pt, host := newTestManager(t)
	sub, cancel := m.Subscribe()
	defer cancel()

	err := m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword, Password: "x"}, "work")
	require.NoError(t, err)

	rec, ok := m.HostConnectionState(host.ID)
	require.True(t, ok)
	require.Equal(t, PhaseStartingTmux, rec.Phase)

	_, err = pt.serverSide.Write([]byte("%session-changed $0 work\n"))
	require.NoError(t, err)

	waitFor(t, sub, func() bool {
		rec, _ := m.HostConnectionState(host.ID)
		return rec.Phase == PhaseConnected
	})

	rec, _ = m.HostConnectionState(host.ID)
	require.Equal(t, "work", rec.SessionName)
}

func TestIngest_OutputReachesPaneScreen(t *testing.T) {
	m, pt, host := newTestManager(t)
	sub, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword}, "work"))

	lines := "" +
		"%session-changed $0 work\n" +
		"%window-add @1\n" +
		"%layout-change @1 80x24,0,0,2\n" +
		"%output %2 hello\n"
	_, err := pt.serverSide.Write([]byte(lines))
	require.NoError(t, err)

	waitFor(t, sub, func() bool {
		panes, err := m.Panes(host.ID)
		if err != nil || len(panes) == 0 {
			return false
		}
		return string(panes[0].GridRows[0][0].Rune) == "h"
	})

	panes, err := m.Panes(host.ID)
	require.NoError(t, err)
	require.Len(t, panes, 1)
	require.Equal(t, "2", panes[0].ID)
}

func TestIngest_LayoutChangeUpdatesPaneCount(t *testing.T) {
	m, pt, host := newTestManager(t)
	sub, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword}, "work"))

	lines := "" +
		"%session-changed $0 work\n" +
		"%window-add @1\n" +
		"%layout-change @1 80x24,0,0{40x24,0,0,2,39x24,41,0,3}\n"
	_, err := pt.serverSide.Write([]byte(lines))
	require.NoError(t, err)

	waitFor(t, sub, func() bool {
		rec, _ := m.HostConnectionState(host.ID)
		return rec.PaneCount == 2
	})

	panes, err := m.Panes(host.ID)
	require.NoError(t, err)
	require.Len(t, panes, 2)
}

func TestIngest_RemoteExitClosesConnection(t *testing.T) {
	m, pt, host := newTestManager(t)
	sub, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword}, "work"))

	_, err := pt.serverSide.Write([]byte("%exit\n"))
	require.NoError(t, err)

	waitFor(t, sub, func() bool {
		rec, _ := m.HostConnectionState(host.ID)
		return rec.Phase == PhaseClosed
	})

	rec, _ := m.HostConnectionState(host.ID)
	require.NotNil(t, rec.LastError)
	require.Equal(t, ErrRemoteExit, rec.LastError.Kind)
	require.Equal(t, 0, rec.PaneCount)
}

func TestDisconnect_IsIdempotent(t *testing.T) {
	m, _, host := newTestManager(t)
	require.NoError(t, m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword}, "work"))

	require.NoError(t, m.Disconnect(host.ID))
	require.NoError(t, m.Disconnect(host.ID))

	rec, ok := m.HostConnectionState(host.ID)
	require.True(t, ok)
	require.Equal(t, PhaseClosed, rec.Phase)
}

func TestSend_NotConnectedBeforeHandshakeCompletes(t *testing.T) {
	m, _, host := newTestManager(t)
	require.NoError(t, m.Connect(context.Background(), host.ID, Credential{Kind: CredentialPassword}, "work"))

	err := m.Send(host.ID, []byte("ignored"))
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ErrNotConnected, cerr.Kind)
}
