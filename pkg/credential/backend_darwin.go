//go:build darwin
// +build darwin

package credential

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBackend returns the macOS Keychain-backed Backend, addressing
// items by credential id via the built-in `security` tool — the same
// shell-out strategy the teacher's darwin credential file uses, now keyed
// by a Key.ID instead of a host/account/kind triple.
func DefaultBackend() Backend { return keychainBackend{} }

const keychainService = "itmux-ssh-key"

type keychainBackend struct{}

func (keychainBackend) Set(id string, secret []byte) error {
	args := []string{
		"add-generic-password", "-U",
		"-s", keychainService,
		"-a", id,
		"-w", string(secret),
	}
	return runSecurity(args...)
}

func (keychainBackend) Has(id string) (bool, error) {
	err := runSecurity("find-generic-password", "-s", keychainService, "-a", id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (keychainBackend) Reveal(id string) ([]byte, error) {
	path := securityPath()
	cmd := exec.Command(path, "find-generic-password", "-w", "-s", keychainService, "-a", id)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("keychain: %s", msg)
	}
	return bytes.TrimRight(stdout.Bytes(), "\r\n"), nil
}

func (keychainBackend) Delete(id string) error {
	return runSecurity("delete-generic-password", "-s", keychainService, "-a", id)
}

func securityPath() string {
	if _, err := os.Stat("/usr/bin/security"); err == nil {
		return "/usr/bin/security"
	}
	return "security"
}

func runSecurity(args ...string) error {
	cmd := exec.Command(securityPath(), args...)
	cmd.Stdin = nil
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}
