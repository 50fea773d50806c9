package connection

import (
	"context"
	"io"
)

// CredentialKind tags how a Credential authenticates.
type CredentialKind int

const (
	CredentialPassword CredentialKind = iota
	CredentialPrivateKey
)

// Credential is the auth payload handed to Transport.Dial, matching
// spec.md §6's `credential ∈ {Password(s), PrivateKey(pemBlob, optional
// passphrase)}`.
type Credential struct {
	Kind          CredentialKind
	Username      string
	Password      string
	PrivateKeyPEM []byte
	Passphrase    string
}

// Transport is the SSH collaborator this module treats as external (see
// spec.md §1, §6): opening the network connection, completing the
// handshake and authentication, and execing the remote command that starts
// tmux in control mode. The returned stream is the exec'd command's
// combined stdin/stdout; Manager treats it as an opaque bidirectional byte
// channel from here on.
//
// This collapses the spec's Session/Channel step sequence (open,
// authenticate, openChannel, exec) into one call: a Transport
// implementation performs all four steps before returning, which is the
// natural shape for a blocking SSH client handshake in Go and avoids
// exposing intermediate session/channel handles that no caller in this
// module ever needs independently.
type Transport interface {
	Dial(ctx context.Context, host string, port int, cred Credential, commandLine string) (io.ReadWriteCloser, error)
}

// ClipboardSink is the external collaborator PaneSetClipboard payloads are
// forwarded to.
type ClipboardSink interface {
	Put(paneID string, data []byte) error
}

// NopClipboard discards every clipboard payload. Used when no clipboard
// sink is wired in (e.g. headless use of the connection manager).
type NopClipboard struct{}

func (NopClipboard) Put(string, []byte) error { return nil }
