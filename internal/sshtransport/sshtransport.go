// Package sshtransport is the connection.Transport implementation that
// dials a real SSH server, authenticates, and execs the remote tmux
// control-mode command.
package sshtransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"itmux/pkg/connection"
)

// HostKeyCallback is exposed so cmd/itmux can wire in known_hosts
// verification; tests and quick connections may pass
// ssh.InsecureIgnoreHostKey().
type HostKeyCallback = ssh.HostKeyCallback

var defaultDialTimeout = 10 * time.Second

// Transport dials real SSH servers. It satisfies connection.Transport.
type Transport struct {
	HostKeyCallback HostKeyCallback
	DialTimeout     time.Duration
}

// New returns a Transport using cb for host key verification. With a nil cb,
// Dial falls back to ssh.InsecureIgnoreHostKey() and accepts any host key.
func New(cb HostKeyCallback) *Transport {
	return &Transport{HostKeyCallback: cb, DialTimeout: defaultDialTimeout}
}

// Dial opens a TCP connection, completes the SSH handshake and
// authentication, opens a session channel, and execs commandLine. The
// returned stream is the session's combined stdin/stdout; closing it closes
// the underlying SSH client connection too.
func (t *Transport) Dial(ctx context.Context, host string, port int, cred connection.Credential, commandLine string) (io.ReadWriteCloser, error) {
	authMethod, err := authMethodFor(cred)
	if err != nil {
		return nil, &connection.Error{Kind: connection.ErrAuthError, Detail: err.Error()}
	}

	cb := t.HostKeyCallback
	if cb == nil {
		cb = ssh.InsecureIgnoreHostKey()
	}
	timeout := t.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	cfg := &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: cb,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	dialer := net.Dialer{Timeout: timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, cfg)
	if err != nil {
		_ = rawConn.Close()
		return nil, classifyHandshakeError(err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}

	if err := session.Start(commandLine); err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, &connection.Error{Kind: connection.ErrTransportError, Detail: err.Error()}
	}

	return &sessionStream{client: client, session: session, stdin: stdin, stdout: stdout}, nil
}

// sessionStream adapts an ssh.Session's stdin/stdout pipes plus its parent
// client into the single io.ReadWriteCloser connection.Transport promises.
type sessionStream struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
}

func (s *sessionStream) Read(p []byte) (int, error)  { return s.stdout.Read(p) }
func (s *sessionStream) Write(p []byte) (int, error) { return s.stdin.Write(p) }

func (s *sessionStream) Close() error {
	_ = s.stdin.Close()
	_ = s.session.Close()
	return s.client.Close()
}

func authMethodFor(cred connection.Credential) (ssh.AuthMethod, error) {
	switch cred.Kind {
	case connection.CredentialPassword:
		return ssh.Password(cred.Password), nil
	case connection.CredentialPrivateKey:
		var signer ssh.Signer
		var err error
		if cred.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(cred.PrivateKeyPEM, []byte(cred.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(cred.PrivateKeyPEM)
		}
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil
	default:
		return nil, errors.New("unknown credential kind")
	}
}

// classifyHandshakeError distinguishes an authentication rejection from any
// other handshake-time transport failure, so the connection manager can
// report the right ErrorKind.
func classifyHandshakeError(err error) *connection.Error {
	if _, ok := err.(*ssh.PassphraseMissingError); ok {
		return &connection.Error{Kind: connection.ErrAuthError, Detail: err.Error()}
	}
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") {
		return &connection.Error{Kind: connection.ErrAuthError, Detail: msg}
	}
	return &connection.Error{Kind: connection.ErrTransportError, Detail: msg}
}
