//go:build linux
// +build linux

package credential

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBackend returns the Linux Secret Service-backed Backend, via
// `secret-tool`, addressing items by credential id — the same shell-out
// strategy the teacher's linux credential file uses for its Secret Service
// path, now keyed by a Key.ID instead of a host/account/kind triple.
func DefaultBackend() Backend { return secretServiceBackend{} }

const secretServiceApp = "itmux-ssh-key"

type secretServiceBackend struct{}

func secretTool() (string, error) {
	if p, err := exec.LookPath("secret-tool"); err == nil && p != "" {
		return p, nil
	}
	return "", fmt.Errorf("secret-tool not found: install libsecret tools")
}

func (secretServiceBackend) Set(id string, secret []byte) error {
	path, err := secretTool()
	if err != nil {
		return err
	}
	_ = secretServiceBackend{}.Delete(id)
	cmd := exec.Command(path, "store", "--label="+secretServiceApp+" "+id, "app", secretServiceApp, "id", id)
	cmd.Stdin = bytes.NewReader(secret)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("secret-tool store: %s", msg)
	}
	return nil
}

func (secretServiceBackend) Has(id string) (bool, error) {
	path, err := secretTool()
	if err != nil {
		return false, err
	}
	cmd := exec.Command(path, "lookup", "app", secretServiceApp, "id", id)
	if err := cmd.Run(); err != nil {
		return false, nil
	}
	return true, nil
}

func (secretServiceBackend) Reveal(id string) ([]byte, error) {
	path, err := secretTool()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, "lookup", "app", secretServiceApp, "id", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "credential not found"
		}
		return nil, fmt.Errorf("secret-tool lookup: %s", msg)
	}
	return stdout.Bytes(), nil
}

func (secretServiceBackend) Delete(id string) error {
	path, err := secretTool()
	if err != nil {
		return err
	}
	cmd := exec.Command(path, "clear", "app", secretServiceApp, "id", id)
	return cmd.Run()
}
